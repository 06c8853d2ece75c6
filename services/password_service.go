package services

import (
	"errors"
	"unicode"
)

var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters long")
	ErrPasswordNoUpper   = errors.New("password must contain at least one uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain at least one lowercase letter")
	ErrPasswordNoNumber  = errors.New("password must contain at least one number")
	ErrPasswordCommon    = errors.New("password is too common")
	ErrPasswordRepeating = errors.New("password contains repeating characters")
)

// PasswordValidator validates passwords against security requirements
type PasswordValidator struct {
	minLength       int
	requireUpper    bool
	requireLower    bool
	requireNumber   bool
	commonPasswords map[string]bool
}

// NewPasswordValidator creates a new password validator with default settings
func NewPasswordValidator() *PasswordValidator {
	return &PasswordValidator{
		minLength:     8,
		requireUpper:  true,
		requireLower:  true,
		requireNumber: true,
		commonPasswords: map[string]bool{
			"password":  true,
			"password1": true,
			"12345678":  true,
			"qwerty123": true,
			"admin123":  true,
			"welcome1":  true,
		},
	}
}

// ValidatePassword checks if a password meets all security requirements
func (pv *PasswordValidator) ValidatePassword(password string) error {
	if len(password) < pv.minLength {
		return ErrPasswordTooShort
	}

	var hasUpper, hasLower, hasNumber bool
	var prevChar rune
	var repeatCount int

	for i, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}

		// Reject 3+ of the same character in a row
		if i > 0 && char == prevChar {
			repeatCount++
			if repeatCount >= 3 {
				return ErrPasswordRepeating
			}
		} else {
			repeatCount = 1
		}

		prevChar = char
	}

	if pv.requireUpper && !hasUpper {
		return ErrPasswordNoUpper
	}
	if pv.requireLower && !hasLower {
		return ErrPasswordNoLower
	}
	if pv.requireNumber && !hasNumber {
		return ErrPasswordNoNumber
	}

	if pv.commonPasswords[password] {
		return ErrPasswordCommon
	}

	return nil
}
