package domain

import "github.com/shopspring/decimal"

// Budget tracks an allocation for a year/quarter/category. Spent only ever
// grows here: confirmed expense-typed transactions linked to a budget add to
// it, nothing in this service subtracts from it.
type Budget struct {
	ID        string
	Year      int
	Quarter   int
	Category  string
	Allocated decimal.Decimal
	Spent     decimal.Decimal
}
