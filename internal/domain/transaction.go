package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType distinguishes money entering the ledger from money leaving it.
type TransactionType string

const (
	TransactionIncome  TransactionType = "income"
	TransactionExpense TransactionType = "expense"
)

// CategoryDonation is the ledger category applied to gateway-confirmed donations.
const CategoryDonation = "donation"

// MonetaryTransaction is a single immutable ledger movement. Reference is the
// gateway-assigned payment reference and is unique across the whole table; it
// is the idempotency key for reconciliation.
type MonetaryTransaction struct {
	ID          string
	Type        TransactionType
	Category    string
	Amount      decimal.Decimal
	Description string
	Reference   string
	OccurredAt  time.Time
	BudgetID    *string
	CreatedAt   time.Time
}
