package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"server/internal/domain"
	"server/internal/ledger"
	"server/internal/ledger/memory"
)

func newWriter(store ledger.Store) *ledger.Writer {
	return ledger.NewWriter(store, zerolog.Nop())
}

func confirmedPayment(reference string, amountMinor int64) ledger.ConfirmedPayment {
	return ledger.ConfirmedPayment{
		Reference:   reference,
		AmountMinor: amountMinor,
		Donor: domain.DonorInfo{
			Name:  "Ada Obi",
			Email: "donor@example.com",
			Phone: "+2348012345678",
		},
		DonationType: "one_time",
		Purpose:      "tuition",
	}
}

func TestRecordConfirmedPaymentConvertsMinorUnitsOnce(t *testing.T) {
	store := memory.NewStore()
	writer := newWriter(store)

	result, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_001", 500000))
	if err != nil {
		t.Fatalf("RecordConfirmedPayment returned error: %v", err)
	}
	if result.AlreadyRecorded {
		t.Fatalf("first write reported AlreadyRecorded")
	}
	if got := result.Transaction.Amount.StringFixed(2); got != "5000.00" {
		t.Fatalf("amount = %s, want 5000.00", got)
	}
	if result.Transaction.Type != domain.TransactionIncome {
		t.Fatalf("type = %q, want income", result.Transaction.Type)
	}
	if result.Donation.TransactionID != result.Transaction.ID {
		t.Fatalf("donation does not own its transaction")
	}
}

func TestRecordConfirmedPaymentIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	writer := newWriter(store)

	first, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_001", 500000))
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	second, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_001", 500000))
	if err != nil {
		t.Fatalf("replay: %v", err)
	}

	if !second.AlreadyRecorded {
		t.Fatalf("replay did not report AlreadyRecorded")
	}
	if second.Donation.ID != first.Donation.ID {
		t.Fatalf("replay returned a different donation: %s vs %s", second.Donation.ID, first.Donation.ID)
	}
	if store.Count() != 1 {
		t.Fatalf("ledger holds %d pairs, want 1", store.Count())
	}
}

func TestRecordConfirmedPaymentValidation(t *testing.T) {
	writer := newWriter(memory.NewStore())

	if _, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment(" ", 1000)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty reference, got %v", err)
	}
	if _, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_001", 0)); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero amount, got %v", err)
	}
}

func TestRecordConfirmedPaymentConcurrentWritersCreateOnePair(t *testing.T) {
	store := memory.NewStore()
	writer := newWriter(store)

	const writers = 16
	results := make([]*ledger.RecordResult, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_race", 250000))
			if err != nil {
				t.Errorf("writer %d: %v", i, err)
				return
			}
			results[i] = result
		}(i)
	}
	wg.Wait()

	if store.Count() != 1 {
		t.Fatalf("ledger holds %d pairs, want 1", store.Count())
	}
	created := 0
	for i, result := range results {
		if result == nil {
			t.Fatalf("writer %d produced no result", i)
		}
		if !result.AlreadyRecorded {
			created++
		}
		if result.Donation.ID != results[0].Donation.ID {
			t.Fatalf("writer %d saw donation %s, want %s", i, result.Donation.ID, results[0].Donation.ID)
		}
	}
	if created != 1 {
		t.Fatalf("%d writers claimed the create, want exactly 1", created)
	}
}

func TestFindByReference(t *testing.T) {
	store := memory.NewStore()
	writer := newWriter(store)

	if _, err := writer.FindByReference(context.Background(), "ref_unknown"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	written, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_001", 500000))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	found, err := writer.FindByReference(context.Background(), "ref_001")
	if err != nil {
		t.Fatalf("FindByReference: %v", err)
	}
	if !found.AlreadyRecorded || found.Donation.ID != written.Donation.ID {
		t.Fatalf("lookup mismatch: %+v", found)
	}
}

func TestExpenseWithLinkedBudgetIncrementsSpent(t *testing.T) {
	store := memory.NewStore()
	budgetID := "1f0d7f8a-9a55-4a5e-a6b1-0d9954ec62a4"
	store.SeedBudget(domain.Budget{
		ID:        budgetID,
		Year:      2026,
		Quarter:   3,
		Category:  "outreach",
		Allocated: decimal.NewFromInt(10000),
	})

	pair := ledger.DonationPair{
		Transaction: domain.MonetaryTransaction{
			ID:        "tx-1",
			Type:      domain.TransactionExpense,
			Category:  "outreach",
			Amount:    decimal.RequireFromString("1500.00"),
			Reference: "ref_expense",
			BudgetID:  &budgetID,
		},
		Donation: domain.Donation{ID: "don-1", TransactionID: "tx-1"},
	}
	if _, created, err := store.CreateDonationPair(context.Background(), pair); err != nil || !created {
		t.Fatalf("create pair: created=%v err=%v", created, err)
	}

	budget, ok := store.Budget(budgetID)
	if !ok {
		t.Fatalf("budget disappeared")
	}
	if got := budget.Spent.StringFixed(2); got != "1500.00" {
		t.Fatalf("spent = %s, want 1500.00", got)
	}

	// Replays do not touch the budget a second time.
	if _, created, err := store.CreateDonationPair(context.Background(), pair); err != nil || created {
		t.Fatalf("replay: created=%v err=%v", created, err)
	}
	budget, _ = store.Budget(budgetID)
	if got := budget.Spent.StringFixed(2); got != "1500.00" {
		t.Fatalf("spent after replay = %s, want 1500.00", got)
	}
}

func TestListRecentDonationsSkipsAnonymous(t *testing.T) {
	store := memory.NewStore()
	writer := newWriter(store)

	if _, err := writer.RecordConfirmedPayment(context.Background(), confirmedPayment("ref_public", 100000)); err != nil {
		t.Fatalf("write public: %v", err)
	}
	anon := confirmedPayment("ref_anon", 200000)
	anon.IsAnonymous = true
	if _, err := writer.RecordConfirmedPayment(context.Background(), anon); err != nil {
		t.Fatalf("write anonymous: %v", err)
	}

	items, err := writer.ListRecentDonations(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListRecentDonations: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d donations, want 1", len(items))
	}
	if items[0].Transaction.Reference != "ref_public" {
		t.Fatalf("unexpected donation listed: %s", items[0].Transaction.Reference)
	}
}
