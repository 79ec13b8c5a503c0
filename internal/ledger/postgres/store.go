// Package postgres implements the ledger store over pgx. The unique index on
// transactions.reference is the backstop for concurrent writers: two requests
// can both pass the in-transaction existence check, but only one insert
// commits, and the loser resolves the conflict by re-reading the winner's row.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/ledger"
)

const uniqueViolation = "23505"

type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const selectPairByReference = `
SELECT t.id, t.type, t.category, t.amount, t.description, t.reference, t.occurred_at, t.budget_id, t.created_at,
       d.id, d.transaction_id, d.donor_name, d.donor_email, d.donor_phone, d.donation_type, d.is_anonymous, d.purpose, d.notes, d.created_at
FROM transactions t
JOIN donations d ON d.transaction_id = t.id
WHERE t.reference = $1;
`

const insertTransaction = `
INSERT INTO transactions (id, type, category, amount, description, reference, occurred_at, budget_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
`

const insertDonation = `
INSERT INTO donations (id, transaction_id, donor_name, donor_email, donor_phone, donation_type, is_anonymous, purpose, notes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
`

const incrementBudgetSpent = `
UPDATE budgets SET spent = spent + $2 WHERE id = $1;
`

func (s *Store) FindByReference(ctx context.Context, reference string) (*ledger.DonationPair, error) {
	return scanPair(s.pool.QueryRow(ctx, selectPairByReference, reference))
}

func (s *Store) CreateDonationPair(ctx context.Context, pair ledger.DonationPair) (*ledger.DonationPair, bool, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	// Existence check inside the transaction, not a separate earlier read.
	existing, err := scanPair(tx.QueryRow(ctx, selectPairByReference, pair.Transaction.Reference))
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, err
	}

	t := pair.Transaction
	if _, err := tx.Exec(ctx, insertTransaction,
		t.ID, string(t.Type), t.Category, t.Amount, t.Description, t.Reference, t.OccurredAt, t.BudgetID, t.CreatedAt,
	); err != nil {
		return s.resolveConflict(ctx, t.Reference, err)
	}

	d := pair.Donation
	if _, err := tx.Exec(ctx, insertDonation,
		d.ID, d.TransactionID, d.DonorName, d.DonorEmail, d.DonorPhone, d.DonationType, d.IsAnonymous, d.Purpose, d.Notes, d.CreatedAt,
	); err != nil {
		return nil, false, fmt.Errorf("insert donation: %w", err)
	}

	if t.Type == domain.TransactionExpense && t.BudgetID != nil {
		if _, err := tx.Exec(ctx, incrementBudgetSpent, *t.BudgetID, t.Amount); err != nil {
			return nil, false, fmt.Errorf("increment budget spent: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return s.resolveConflict(ctx, t.Reference, err)
	}
	stored := pair
	return &stored, true, nil
}

// resolveConflict turns a unique-reference violation into the already-recorded
// outcome by re-fetching the row the concurrent writer committed. Any other
// error propagates.
func (s *Store) resolveConflict(ctx context.Context, reference string, cause error) (*ledger.DonationPair, bool, error) {
	var pgErr *pgconn.PgError
	if !errors.As(cause, &pgErr) || pgErr.Code != uniqueViolation {
		return nil, false, fmt.Errorf("insert transaction: %w", cause)
	}
	existing, err := s.FindByReference(ctx, reference)
	if err != nil {
		return nil, false, fmt.Errorf("refetch after conflict: %w", err)
	}
	return existing, false, nil
}

func scanPair(row pgx.Row) (*ledger.DonationPair, error) {
	var pair ledger.DonationPair
	var txType string
	err := row.Scan(
		&pair.Transaction.ID,
		&txType,
		&pair.Transaction.Category,
		&pair.Transaction.Amount,
		&pair.Transaction.Description,
		&pair.Transaction.Reference,
		&pair.Transaction.OccurredAt,
		&pair.Transaction.BudgetID,
		&pair.Transaction.CreatedAt,
		&pair.Donation.ID,
		&pair.Donation.TransactionID,
		&pair.Donation.DonorName,
		&pair.Donation.DonorEmail,
		&pair.Donation.DonorPhone,
		&pair.Donation.DonationType,
		&pair.Donation.IsAnonymous,
		&pair.Donation.Purpose,
		&pair.Donation.Notes,
		&pair.Donation.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan ledger pair: %w", err)
	}
	pair.Transaction.Type = domain.TransactionType(txType)
	return &pair, nil
}

const selectRecentDonations = `
SELECT t.id, t.type, t.category, t.amount, t.description, t.reference, t.occurred_at, t.budget_id, t.created_at,
       d.id, d.transaction_id, d.donor_name, d.donor_email, d.donor_phone, d.donation_type, d.is_anonymous, d.purpose, d.notes, d.created_at
FROM donations d
JOIN transactions t ON t.id = d.transaction_id
WHERE NOT d.is_anonymous
ORDER BY d.created_at DESC
LIMIT $1;
`

func (s *Store) ListRecentDonations(ctx context.Context, limit int) ([]ledger.DonationPair, error) {
	rows, err := s.pool.Query(ctx, selectRecentDonations, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent donations: %w", err)
	}
	defer rows.Close()

	var items []ledger.DonationPair
	for rows.Next() {
		pair, err := scanPair(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *pair)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var _ ledger.Store = (*Store)(nil)
