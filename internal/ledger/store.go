package ledger

import (
	"context"

	"server/internal/domain"
)

// DonationPair couples a monetary transaction with its owning donation row.
// The two are only ever created together.
type DonationPair struct {
	Transaction domain.MonetaryTransaction
	Donation    domain.Donation
}

// Store is the durable ledger. CreateDonationPair is the heart of the
// idempotency guarantee: the existence check and the insert happen in one
// atomic unit against the backing store, and a uniqueness conflict on the
// transaction reference resolves to the already-stored pair rather than an
// error. Any storage backend without atomic check-and-insert or a unique
// reference constraint cannot implement this interface correctly.
type Store interface {
	// FindByReference returns the pair recorded for a payment reference, or
	// domain.ErrNotFound.
	FindByReference(ctx context.Context, reference string) (*DonationPair, error)

	// CreateDonationPair inserts the pair unless a transaction with the same
	// reference already exists. It returns the stored pair and whether this
	// call created it. When the transaction is expense-typed and linked to a
	// budget, the budget's spent amount is incremented in the same unit.
	CreateDonationPair(ctx context.Context, pair DonationPair) (*DonationPair, bool, error)

	// ListRecentDonations returns the newest non-anonymous pairs, newest
	// first, limited by the input value.
	ListRecentDonations(ctx context.Context, limit int) ([]DonationPair, error)
}
