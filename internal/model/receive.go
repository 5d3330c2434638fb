package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ReceiveType string

const (
	ReceiveIncome  ReceiveType = "income"
	ReceiveExpense ReceiveType = "expense"
)

func (t ReceiveType) Valid() bool {
	return t == ReceiveIncome || t == ReceiveExpense
}

type Receive struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Type        ReceiveType     `json:"type"`
	Date        string          `json:"date"`
	UserID      string          `json:"user_id"`
	User        *UserRef        `json:"user,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Effect is the signed amount the receive contributes to its owner's balance.
// Unknown types contribute nothing.
func (r *Receive) Effect() decimal.Decimal {
	switch r.Type {
	case ReceiveIncome:
		return r.Value
	case ReceiveExpense:
		return r.Value.Neg()
	default:
		return decimal.Zero
	}
}
