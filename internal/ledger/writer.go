package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"server/internal/domain"
)

// minorUnitsPerMajor converts gateway amounts (kobo/cents) to ledger decimals.
var minorUnitsPerMajor = decimal.NewFromInt(100)

// ConfirmedPayment is everything the gateway reported about a settled payment,
// plus the portal metadata attached when the payment was initialized. Amounts
// stay in minor units until the writer converts them, once.
type ConfirmedPayment struct {
	Reference    string
	AmountMinor  int64
	Donor        domain.DonorInfo
	DonationType string
	IsAnonymous  bool
	Purpose      string
	Notes        string
	BudgetID     *string
	PaidAt       time.Time
}

// RecordResult reports the ledger state for a reference after a write attempt.
// AlreadyRecorded means some earlier attempt won and this one was a no-op.
type RecordResult struct {
	Transaction     domain.MonetaryTransaction
	Donation        domain.Donation
	AlreadyRecorded bool
}

// Writer owns the single point where confirmed payments enter the ledger.
type Writer struct {
	store  Store
	logger zerolog.Logger
}

// NewWriter constructs a ledger writer over the given store.
func NewWriter(store Store, logger zerolog.Logger) *Writer {
	return &Writer{store: store, logger: logger}
}

// RecordConfirmedPayment records a gateway-confirmed payment exactly once.
// Replays for the same reference return the existing pair with
// AlreadyRecorded set; they never error and never write.
func (w *Writer) RecordConfirmedPayment(ctx context.Context, p ConfirmedPayment) (*RecordResult, error) {
	reference := strings.TrimSpace(p.Reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: payment reference is required", domain.ErrValidation)
	}
	if p.AmountMinor <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", domain.ErrValidation)
	}

	amount := decimal.NewFromInt(p.AmountMinor).Div(minorUnitsPerMajor)
	occurredAt := p.PaidAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	txID := uuid.NewString()
	now := time.Now().UTC()
	pair := DonationPair{
		Transaction: domain.MonetaryTransaction{
			ID:          txID,
			Type:        domain.TransactionIncome,
			Category:    domain.CategoryDonation,
			Amount:      amount,
			Description: describeDonation(p),
			Reference:   reference,
			OccurredAt:  occurredAt,
			BudgetID:    p.BudgetID,
			CreatedAt:   now,
		},
		Donation: domain.Donation{
			ID:            uuid.NewString(),
			TransactionID: txID,
			DonorName:     p.Donor.Name,
			DonorEmail:    p.Donor.Email,
			DonorPhone:    p.Donor.Phone,
			DonationType:  p.DonationType,
			IsAnonymous:   p.IsAnonymous,
			Purpose:       p.Purpose,
			Notes:         p.Notes,
			CreatedAt:     now,
		},
	}

	stored, created, err := w.store.CreateDonationPair(ctx, pair)
	if err != nil {
		return nil, fmt.Errorf("record confirmed payment: %w", err)
	}
	if !created {
		w.logger.Debug().Str("reference", reference).Msg("ledger: reference already recorded")
	} else {
		w.logger.Info().
			Str("reference", reference).
			Str("transaction_id", stored.Transaction.ID).
			Str("amount", stored.Transaction.Amount.StringFixed(2)).
			Msg("ledger: donation recorded")
	}
	return &RecordResult{
		Transaction:     stored.Transaction,
		Donation:        stored.Donation,
		AlreadyRecorded: !created,
	}, nil
}

// FindByReference is the cheap ledger lookup used before any gateway call.
func (w *Writer) FindByReference(ctx context.Context, reference string) (*RecordResult, error) {
	pair, err := w.store.FindByReference(ctx, strings.TrimSpace(reference))
	if err != nil {
		return nil, err
	}
	return &RecordResult{
		Transaction:     pair.Transaction,
		Donation:        pair.Donation,
		AlreadyRecorded: true,
	}, nil
}

// ListRecentDonations returns the newest non-anonymous donations for display.
func (w *Writer) ListRecentDonations(ctx context.Context, limit int) ([]DonationPair, error) {
	return w.store.ListRecentDonations(ctx, limit)
}

func describeDonation(p ConfirmedPayment) string {
	if p.IsAnonymous || strings.TrimSpace(p.Donor.Name) == "" {
		return "Anonymous donation"
	}
	return "Donation from " + strings.TrimSpace(p.Donor.Name)
}
