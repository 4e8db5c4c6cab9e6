package sender

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/monyorojoseph/money-lock/internal/lib/smtp"
	"github.com/monyorojoseph/money-lock/internal/services/notifier"
)

type fakeClient struct {
	from  string
	rcpts []string
	data  bytes.Buffer
}

type nopWriteCloser struct{ *bytes.Buffer }

func (nopWriteCloser) Close() error { return nil }

func (c *fakeClient) Mail(from string) error { c.from = from; return nil }
func (c *fakeClient) Rcpt(to string) error   { c.rcpts = append(c.rcpts, to); return nil }
func (c *fakeClient) Data() (io.WriteCloser, error) {
	return nopWriteCloser{&c.data}, nil
}
func (c *fakeClient) Quit() error  { return nil }
func (c *fakeClient) Close() error { return nil }

type fakeTransport struct {
	client  *fakeClient
	connErr error
}

func (t *fakeTransport) Connect() (smtp.Client, error) {
	if t.connErr != nil {
		return nil, t.connErr
	}
	return t.client, nil
}

func (t *fakeTransport) GetSMTPUser() string { return "noreply@money-lock.io" }

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestSenderService_HandleEmailMessage(t *testing.T) {
	msg := notifier.Message{
		Kind: notifier.KindVerification,
		Content: notifier.Content{
			Subject: "Email Verification",
			HTML:    "<html><h1>Hello Alice.</h1></html>",
		},
		Recipients: []notifier.Recipient{
			{Address: "alice@example.com", DisplayName: "Alice"},
		},
	}
	body, err := json.Marshal(msg)
	require.NoError(t, err)

	t.Run("delivers html email to recipient", func(t *testing.T) {
		client := &fakeClient{}
		svc := NewSenderService(newNoopLogger(), &fakeTransport{client: client})

		require.NoError(t, svc.HandleEmailMessage(body))

		assert.Equal(t, "noreply@money-lock.io", client.from)
		assert.Equal(t, []string{"alice@example.com"}, client.rcpts)
		assert.Contains(t, client.data.String(), "Subject: Email Verification")
		assert.Contains(t, client.data.String(), "Content-Type: text/html")
		assert.Contains(t, client.data.String(), "<h1>Hello Alice.</h1>")
	})

	t.Run("invalid payload is an error", func(t *testing.T) {
		svc := NewSenderService(newNoopLogger(), &fakeTransport{client: &fakeClient{}})
		require.Error(t, svc.HandleEmailMessage([]byte("not a json")))
	})

	t.Run("message without recipients is dropped", func(t *testing.T) {
		empty, err := json.Marshal(notifier.Message{Kind: notifier.KindOnboarding})
		require.NoError(t, err)
		svc := NewSenderService(newNoopLogger(), &fakeTransport{client: &fakeClient{}})
		require.NoError(t, svc.HandleEmailMessage(empty))
	})

	t.Run("transport failure propagates for redelivery", func(t *testing.T) {
		svc := NewSenderService(newNoopLogger(), &fakeTransport{connErr: errors.New("smtp down")})
		require.Error(t, svc.HandleEmailMessage(body))
	})
}
