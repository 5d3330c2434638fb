package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

type CreateUserInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserInput holds the fields a client asked to change; nil means keep.
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type CreateReceiveInput struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Type        string          `json:"type"`
	Date        string          `json:"date"`
	UserID      string          `json:"user_id"`
}

type UpdateReceiveInput struct {
	Description *string          `json:"description"`
	Value       *decimal.Decimal `json:"value"`
	Type        *string          `json:"type"`
	Date        *string          `json:"date"`
}

// Apply copies the provided fields onto u. Password changes are handled by
// the caller since they need hashing.
func (in UpdateUserInput) Apply(u *User) {
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		u.Email = NormalizeEmail(*in.Email)
	}
}

func (in UpdateReceiveInput) Apply(r *Receive) {
	if in.Description != nil {
		r.Description = strings.TrimSpace(*in.Description)
	}
	if in.Value != nil {
		r.Value = *in.Value
	}
	if in.Type != nil {
		r.Type = ReceiveType(*in.Type)
	}
	if in.Date != nil {
		r.Date = strings.TrimSpace(*in.Date)
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
