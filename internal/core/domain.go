package core

import (
	"errors"
	"strings"
	"unicode"
)

const maxCategoryLen = 50

type (
	Money struct {
		Cents int64
	}

	// Transaction is a single expense entry. It is a plain value: two
	// transactions with the same amount and category are the same entry
	// as far as removal is concerned.
	Transaction struct {
		Amount   Money
		Category string
	}
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCategory = errors.New("invalid category")
)

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsValidAmount reports whether m is a positive amount.
func IsValidAmount(m Money) bool {
	return m.Cents > 0
}

// IsValidCategory reports whether s is an acceptable category label:
// non-empty after trimming, at most 50 runes, letters, digits and spaces only.
func IsValidCategory(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	runes := []rune(s)
	if len(runes) > maxCategoryLen {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			return false
		}
	}
	return true
}

func (t Transaction) Validate() error {
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if !IsValidCategory(t.Category) {
		return ErrInvalidCategory
	}
	return nil
}

// IsZero reports whether t is the zero value, the closest Go analogue of a
// missing transaction.
func (t Transaction) IsZero() bool {
	return t == Transaction{}
}
