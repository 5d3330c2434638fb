package service

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/Evgen-Mutagen/finances/internal/core"
	"github.com/Evgen-Mutagen/finances/internal/model"
	"github.com/shopspring/decimal"
)

const (
	minPasswordLength = 6
	// bcrypt input limit
	maxPasswordBytes = 72
	passwordSpecials = "@$!%*?&"
	maxValueScale    = 2
)

// maxAmount is the largest magnitude NUMERIC(14,2) holds, for values and balances.
var maxAmount = decimal.RequireFromString("999999999999.99")

func validateCreateUser(in model.CreateUserInput) error {
	verr := &core.ValidationError{}
	checkName(verr, in.Name)
	checkEmail(verr, in.Email)
	checkPassword(verr, in.Password)
	return verr.Err()
}

func validateUpdateUser(in model.UpdateUserInput) error {
	verr := &core.ValidationError{}
	if in.Name != nil {
		checkName(verr, *in.Name)
	}
	if in.Email != nil {
		checkEmail(verr, *in.Email)
	}
	if in.Password != nil {
		checkPassword(verr, *in.Password)
	}
	return verr.Err()
}

// validateCreateReceive checks the input shape only. Whether the type is a
// recognized kind is decided after the owner has been resolved.
func validateCreateReceive(in model.CreateReceiveInput) error {
	verr := &core.ValidationError{}
	if strings.TrimSpace(in.Description) == "" {
		verr.Add("description", "description must not be empty")
	}
	checkValue(verr, in.Value)
	if strings.TrimSpace(in.Type) == "" {
		verr.Add("type", "type must not be empty")
	}
	if strings.TrimSpace(in.Date) == "" {
		verr.Add("date", "date must not be empty")
	}
	if strings.TrimSpace(in.UserID) == "" {
		verr.Add("user_id", "user_id must not be empty")
	}
	return verr.Err()
}

func validateUpdateReceive(in model.UpdateReceiveInput) error {
	verr := &core.ValidationError{}
	if in.Description != nil && strings.TrimSpace(*in.Description) == "" {
		verr.Add("description", "description must not be empty")
	}
	if in.Value != nil {
		checkValue(verr, *in.Value)
	}
	if in.Type != nil && !model.ReceiveType(*in.Type).Valid() {
		verr.Add("type", errInvalidTransactionType)
	}
	if in.Date != nil && strings.TrimSpace(*in.Date) == "" {
		verr.Add("date", "date must not be empty")
	}
	return verr.Err()
}

const errInvalidTransactionType = "invalid transaction type"

func checkName(verr *core.ValidationError, name string) {
	if strings.TrimSpace(name) == "" {
		verr.Add("name", "name must not be empty")
	}
}

func checkEmail(verr *core.ValidationError, email string) {
	email = strings.TrimSpace(email)
	if email == "" {
		verr.Add("email", "email must not be empty")
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		verr.Add("email", "email is not a valid address")
	}
}

func checkPassword(verr *core.ValidationError, password string) {
	if utf8.RuneCountInString(password) < minPasswordLength {
		verr.Add("password", "password must be at least 6 characters long")
		return
	}
	if len(password) > maxPasswordBytes {
		verr.Add("password", "password must be at most 72 bytes long")
		return
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		default:
			verr.Add("password", "password may only contain letters, digits and "+passwordSpecials)
			return
		}
	}
	if !lower || !upper || !digit || !special {
		verr.Add("password", "password must contain a lowercase letter, an uppercase letter, a digit and one of "+passwordSpecials)
	}
}

func checkValue(verr *core.ValidationError, value decimal.Decimal) {
	if !value.IsPositive() {
		verr.Add("value", "value must be greater than zero")
		return
	}
	if !value.Equal(value.Round(maxValueScale)) {
		verr.Add("value", "value must have at most two decimal places")
		return
	}
	if value.GreaterThan(maxAmount) {
		verr.Add("value", "value must not exceed "+maxAmount.String())
	}
}

func checkBalance(balance decimal.Decimal) error {
	if balance.Abs().GreaterThan(maxAmount) {
		return core.NewValidationError("value", "resulting balance is out of range")
	}
	return nil
}
