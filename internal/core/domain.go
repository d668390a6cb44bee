package core

import (
	"fmt"
	"strings"
)

// UncategorizedID is the category_id stored on transactions that belong to no category.
const UncategorizedID int64 = 0

// StartingBalancePayee is the payee of the transaction created together with an account.
const StartingBalancePayee = "Starting Balance"

type (
	Account struct {
		ID          int64
		DisplayName string
	}

	Category struct {
		ID          int64
		DisplayName string
	}

	// Transaction amounts are signed cents: negative is an outflow, positive an inflow.
	Transaction struct {
		ID         int64
		Payee      string
		Notes      string
		AccountID  int64
		CategoryID int64
		Date       int64 // unix seconds
		Amount     int64
	}

	// CategoryTransfer moves budgeted funds between categories without touching an account.
	CategoryTransfer struct {
		ID     int64
		Source int64
		Dest   int64
		Amount int64
	}
)

var (
	ErrInvalidFlow     = fmt.Errorf("%w: exactly one of inflow and outflow must be positive", ErrValidation)
	ErrZeroAmount      = fmt.Errorf("%w: amount must not be zero", ErrValidation)
	ErrEmptyPayee      = fmt.Errorf("%w: empty payee", ErrValidation)
	ErrEmptyName       = fmt.Errorf("%w: empty display name", ErrValidation)
	ErrInvalidTransfer = fmt.Errorf("%w: invalid category transfer", ErrValidation)
)

// NewTransaction builds an uncategorized transaction from an inflow/outflow pair.
// Exactly one of inflow and outflow must be strictly positive and the other zero.
func NewTransaction(payee string, inflow, outflow, date, accountID int64) (Transaction, error) {
	var amount int64
	switch {
	case inflow > 0 && outflow == 0:
		amount = inflow
	case outflow > 0 && inflow == 0:
		amount = -outflow
	default:
		return Transaction{}, fmt.Errorf("inflow %d, outflow %d: %w", inflow, outflow, ErrInvalidFlow)
	}

	return Transaction{
		Payee:      strings.TrimSpace(payee),
		AccountID:  accountID,
		CategoryID: UncategorizedID,
		Date:       date,
		Amount:     amount,
	}, nil
}

// IsOutflow reports whether the transaction takes money out of its account.
func (t Transaction) IsOutflow() bool {
	return t.Amount < 0
}

// Validate is checked before every insert.
func (t Transaction) Validate() error {
	if t.Amount == 0 {
		return ErrZeroAmount
	}
	if strings.TrimSpace(t.Payee) == "" {
		return ErrEmptyPayee
	}
	return nil
}

// NewCategory trims the name and rejects empty ones.
func NewCategory(name string) (Category, error) {
	name, err := ValidateName(name)
	if err != nil {
		return Category{}, err
	}
	return Category{DisplayName: name}, nil
}

func NewAccount(name string) (Account, error) {
	name, err := ValidateName(name)
	if err != nil {
		return Account{}, err
	}
	return Account{DisplayName: name}, nil
}

// ValidateName returns the trimmed display name or ErrEmptyName.
func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

func NewCategoryTransfer(source, dest, amount int64) (CategoryTransfer, error) {
	if amount <= 0 {
		return CategoryTransfer{}, fmt.Errorf("amount %d: %w", amount, ErrInvalidTransfer)
	}
	if source == dest {
		return CategoryTransfer{}, fmt.Errorf("source and destination are both %d: %w", source, ErrInvalidTransfer)
	}
	return CategoryTransfer{Source: source, Dest: dest, Amount: amount}, nil
}
