package core

import (
	"errors"
	"strings"
	"testing"
)

func TestIsValidCategory(t *testing.T) {
	tests := []struct {
		name     string
		category string
		want     bool
	}{
		{name: "simple word", category: "Food", want: true},
		{name: "with digits and spaces", category: "Rent 2026", want: true},
		{name: "empty", category: "", want: false},
		{name: "whitespace only", category: "   ", want: false},
		{name: "punctuation rejected", category: "Food!", want: false},
		{name: "too long", category: strings.Repeat("a", 51), want: false},
		{name: "exactly max length", category: strings.Repeat("a", 50), want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidCategory(tt.category); got != tt.want {
				t.Errorf("IsValidCategory(%q) = %v, want %v", tt.category, got, tt.want)
			}
		})
	}
}

func TestIsValidAmount(t *testing.T) {
	if !IsValidAmount(Money{Cents: 1}) {
		t.Error("one cent should be valid")
	}
	if IsValidAmount(Money{Cents: 0}) {
		t.Error("zero should be invalid")
	}
	if IsValidAmount(Money{Cents: -500}) {
		t.Error("negative amounts should be invalid")
	}
}

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr error
	}{
		{
			name: "valid",
			tx:   Transaction{Amount: Money{Cents: 2500}, Category: "Food"},
		},
		{
			name:    "non-positive amount",
			tx:      Transaction{Amount: Money{Cents: 0}, Category: "Food"},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "bad category",
			tx:      Transaction{Amount: Money{Cents: 2500}, Category: ""},
			wantErr: ErrInvalidCategory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTransaction_IsZero(t *testing.T) {
	if !(Transaction{}).IsZero() {
		t.Error("zero value should report IsZero")
	}
	if (Transaction{Amount: Money{Cents: 100}, Category: "Food"}).IsZero() {
		t.Error("populated transaction should not report IsZero")
	}
}
