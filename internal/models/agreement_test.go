package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAgreementStatus_CanTransition(t *testing.T) {
	tests := []struct {
		name string
		from AgreementStatus
		next AgreementStatus
		want bool
	}{
		{"pending to active", StatusPending, StatusActive, true},
		{"pending to canceled", StatusPending, StatusCanceled, true},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"pending to disputed", StatusPending, StatusDisputed, false},
		{"active to completed", StatusActive, StatusCompleted, true},
		{"active to disputed", StatusActive, StatusDisputed, true},
		{"active to canceled", StatusActive, StatusCanceled, true},
		{"active to pending", StatusActive, StatusPending, false},
		{"completed is terminal", StatusCompleted, StatusActive, false},
		{"disputed is terminal", StatusDisputed, StatusCompleted, false},
		{"canceled is terminal", StatusCanceled, StatusActive, false},
		{"no self transition", StatusActive, StatusActive, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransition(tt.next))
		})
	}
}

func TestTransactionType_Valid(t *testing.T) {
	assert.True(t, DownPayment.Valid())
	assert.True(t, FullPayment.Valid())
	assert.False(t, TransactionType("installments").Valid())
	assert.False(t, TransactionType("").Valid())
}
