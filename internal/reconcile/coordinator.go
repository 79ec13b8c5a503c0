// Package reconcile converges the two independent confirmation paths for a
// payment, the gateway's webhook and the donor's verify poll, onto a single
// ledger write. Whichever path observes gateway confirmation first wins; the
// other becomes a no-op that reports the same donation.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/events"
	"server/internal/ledger"
	"server/internal/paystack"
)

// SignatureVerifier authenticates raw webhook bodies.
type SignatureVerifier interface {
	Verify(rawBody []byte, signature string) bool
}

// GatewayVerifier fetches the canonical transaction state from the gateway.
type GatewayVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifiedPayment, error)
}

// EventPublisher emits downstream events for first-time ledger writes.
type EventPublisher interface {
	PublishDonationRecorded(ctx context.Context, ev events.DonationRecorded) error
}

// Result sources.
const (
	SourceLedger  = "ledger"
	SourceGateway = "gateway"
)

// Result statuses.
const (
	StatusConfirmed = "confirmed"
	StatusPending   = "pending"
)

// Result is what a verify caller learns about a payment. Donation and
// Transaction are set only when Status is confirmed. Source records whether
// the answer came straight from the ledger or required a gateway round-trip.
type Result struct {
	Status      string
	Source      string
	Transaction domain.MonetaryTransaction
	Donation    domain.Donation
}

// Coordinator orchestrates the webhook and verify entry points.
type Coordinator struct {
	signatures SignatureVerifier
	gateway    GatewayVerifier
	ledger     *ledger.Writer
	publisher  EventPublisher
	logger     zerolog.Logger
}

// NewCoordinator wires the reconciliation dependencies. publisher may be nil
// when event publishing is not configured.
func NewCoordinator(signatures SignatureVerifier, gateway GatewayVerifier, writer *ledger.Writer, publisher EventPublisher, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		signatures: signatures,
		gateway:    gateway,
		ledger:     writer,
		publisher:  publisher,
		logger:     logger,
	}
}

// HandleWebhook authenticates and processes one webhook delivery. A nil
// return means the event was handled, including the idempotent replay and
// the ignored-event-type cases: once a delivery is authenticated, reporting
// an error would only make the gateway redeliver work that is already done.
func (c *Coordinator) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if strings.TrimSpace(signature) == "" {
		return domain.ErrMissingSignature
	}
	if !c.signatures.Verify(rawBody, signature) {
		return domain.ErrInvalidSignature
	}

	ev, err := paystack.ParseWebhookEvent(rawBody)
	if err != nil {
		return fmt.Errorf("%w: undecodable webhook body", domain.ErrValidation)
	}
	if ev.Event != paystack.EventChargeSuccess {
		c.logger.Debug().Str("event", ev.Event).Msg("reconcile: ignoring webhook event type")
		return nil
	}
	if strings.TrimSpace(ev.Data.Reference) == "" {
		return fmt.Errorf("%w: webhook event missing reference", domain.ErrValidation)
	}
	if ev.Data.AmountMinor <= 0 {
		return fmt.Errorf("%w: webhook event missing amount", domain.ErrValidation)
	}

	payment := confirmedPayment(ev.Data.Reference, ev.Data.AmountMinor, ev.Data.PaidAt, ev.Data.Customer, ev.Data.Metadata)
	result, err := c.ledger.RecordConfirmedPayment(ctx, payment)
	if err != nil {
		return err
	}
	if result.AlreadyRecorded {
		c.logger.Info().Str("reference", payment.Reference).Msg("reconcile: webhook replay, ledger unchanged")
		return nil
	}
	c.publishRecorded(ctx, result)
	return nil
}

// HandleVerify resolves a donor-initiated verification poll. The ledger is
// consulted before the gateway, and again after a gateway confirmation, so a
// webhook landing mid-flight costs at most one redundant gateway call, never
// a second ledger row.
func (c *Coordinator) HandleVerify(ctx context.Context, reference string) (*Result, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference is required", domain.ErrValidation)
	}

	if found, err := c.ledger.FindByReference(ctx, reference); err == nil {
		return &Result{
			Status:      StatusConfirmed,
			Source:      SourceLedger,
			Transaction: found.Transaction,
			Donation:    found.Donation,
		}, nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	verified, err := c.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, err
	}

	switch verified.Status {
	case paystack.StatusConfirmed:
		// The webhook may have landed while we were talking to the gateway.
		if found, err := c.ledger.FindByReference(ctx, reference); err == nil {
			return &Result{
				Status:      StatusConfirmed,
				Source:      SourceLedger,
				Transaction: found.Transaction,
				Donation:    found.Donation,
			}, nil
		} else if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}

		payment := confirmedPayment(reference, verified.AmountMinor, verified.PaidAt.Format(time.RFC3339), verified.Customer, verified.Metadata)
		result, err := c.ledger.RecordConfirmedPayment(ctx, payment)
		if err != nil {
			return nil, err
		}
		source := SourceGateway
		if result.AlreadyRecorded {
			source = SourceLedger
		} else {
			c.publishRecorded(ctx, result)
		}
		return &Result{
			Status:      StatusConfirmed,
			Source:      source,
			Transaction: result.Transaction,
			Donation:    result.Donation,
		}, nil
	case paystack.StatusPending:
		return &Result{Status: StatusPending, Source: SourceGateway}, nil
	case paystack.StatusFailed:
		return nil, fmt.Errorf("%w: reference %s", domain.ErrPaymentFailed, reference)
	default:
		return nil, fmt.Errorf("%w: gateway has no successful payment for %s", domain.ErrNotFound, reference)
	}
}

func (c *Coordinator) publishRecorded(ctx context.Context, result *ledger.RecordResult) {
	if c.publisher == nil {
		return
	}
	ev := events.DonationRecorded{
		Reference:     result.Transaction.Reference,
		TransactionID: result.Transaction.ID,
		DonationID:    result.Donation.ID,
		Amount:        result.Transaction.Amount.StringFixed(2),
		DonorEmail:    result.Donation.DonorEmail,
		IsAnonymous:   result.Donation.IsAnonymous,
		Purpose:       result.Donation.Purpose,
		RecordedAt:    result.Transaction.CreatedAt,
	}
	// Publishing is best-effort: the ledger write already committed and a
	// webhook redelivery will not republish, so a failure here only costs
	// the downstream consumer one event.
	if err := c.publisher.PublishDonationRecorded(ctx, ev); err != nil {
		c.logger.Error().Err(err).Str("reference", ev.Reference).Msg("reconcile: event publish failed")
	}
}

func confirmedPayment(reference string, amountMinor int64, paidAt string, customer paystack.Customer, rawMeta []byte) ledger.ConfirmedPayment {
	md := paystack.ParseMetadata(rawMeta)
	name := strings.TrimSpace(md.DonorName)
	if name == "" {
		name = strings.TrimSpace(strings.TrimSpace(customer.FirstName) + " " + strings.TrimSpace(customer.LastName))
	}
	donationType := md.DonationType
	if donationType == "" {
		donationType = "one_time"
	}
	parsedPaidAt, _ := time.Parse(time.RFC3339, paidAt)
	return ledger.ConfirmedPayment{
		Reference:    reference,
		AmountMinor:  amountMinor,
		Donor:        domain.DonorInfo{Name: name, Email: customer.Email, Phone: customer.Phone},
		DonationType: donationType,
		IsAnonymous:  md.IsAnonymous,
		Purpose:      md.Purpose,
		Notes:        md.Notes,
		BudgetID:     md.BudgetID,
		PaidAt:       parsedPaidAt,
	}
}
