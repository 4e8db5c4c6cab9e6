package token

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name    string
		exists  ExistsFunc
		wantErr error
	}{
		{
			name:   "free value on first attempt",
			exists: func(_ string) (bool, error) { return false, nil },
		},
		{
			name: "collisions resolved by regeneration",
			exists: func() ExistsFunc {
				collisions := 3
				return func(_ string) (bool, error) {
					if collisions > 0 {
						collisions--
						return true, nil
					}
					return false, nil
				}
			}(),
		},
		{
			name:    "every value taken",
			exists:  func(_ string) (bool, error) { return true, nil },
			wantErr: ErrExhausted,
		},
		{
			name:    "storage check fails",
			exists:  func(_ string) (bool, error) { return false, errors.New("storage down") },
			wantErr: nil, // ошибка хранилища оборачивается, проверяем отдельно
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Generate(tt.exists)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			if tt.name == "storage check fails" {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, Length)
			for _, r := range got {
				assert.True(t, strings.ContainsRune(alphabet, r), "unexpected symbol %q", r)
			}
		})
	}
}

func TestGenerate_Distinct(t *testing.T) {
	seen := make(map[string]struct{})
	exists := func(v string) (bool, error) {
		_, ok := seen[v]
		return ok, nil
	}
	for range 100 {
		v, err := Generate(exists)
		require.NoError(t, err)
		_, dup := seen[v]
		require.False(t, dup)
		seen[v] = struct{}{}
	}
}
