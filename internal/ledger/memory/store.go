// Package memory provides an in-process ledger store for tests and local
// development. The mutex plays the role the unique constraint plays in
// Postgres: check and insert are atomic per store instance.
package memory

import (
	"context"
	"sort"
	"sync"

	"server/internal/domain"
	"server/internal/ledger"
)

type Store struct {
	mu      sync.Mutex
	byRef   map[string]*ledger.DonationPair
	budgets map[string]*domain.Budget
}

func NewStore() *Store {
	return &Store{
		byRef:   make(map[string]*ledger.DonationPair),
		budgets: make(map[string]*domain.Budget),
	}
}

// SeedBudget installs a budget so expense-typed pairs can link against it.
func (s *Store) SeedBudget(b domain.Budget) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := b
	s.budgets[b.ID] = &copied
}

// Budget returns a snapshot of a seeded budget.
func (s *Store) Budget(id string) (domain.Budget, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return domain.Budget{}, false
	}
	return *b, true
}

// Count reports how many pairs the store holds.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byRef)
}

func (s *Store) FindByReference(_ context.Context, reference string) (*ledger.DonationPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.byRef[reference]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *pair
	return &copied, nil
}

func (s *Store) CreateDonationPair(_ context.Context, pair ledger.DonationPair) (*ledger.DonationPair, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.byRef[pair.Transaction.Reference]; ok {
		copied := *existing
		return &copied, false, nil
	}

	if pair.Transaction.Type == domain.TransactionExpense && pair.Transaction.BudgetID != nil {
		if budget, ok := s.budgets[*pair.Transaction.BudgetID]; ok {
			budget.Spent = budget.Spent.Add(pair.Transaction.Amount)
		}
	}

	stored := pair
	s.byRef[pair.Transaction.Reference] = &stored
	copied := stored
	return &copied, true, nil
}

func (s *Store) ListRecentDonations(_ context.Context, limit int) ([]ledger.DonationPair, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var items []ledger.DonationPair
	for _, pair := range s.byRef {
		if pair.Donation.IsAnonymous {
			continue
		}
		items = append(items, *pair)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].Donation.CreatedAt.After(items[j].Donation.CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

var _ ledger.Store = (*Store)(nil)
