package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	domain "github.com/donaldgifford/ebay-seller-connect/pkg/types"
)

// MemoryStore is a process-local Store for development and tests. Every
// method returns copies so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
	events   map[string][]domain.AuthEvent
	nowFunc  func() time.Time
}

// MemoryOption configures the MemoryStore.
type MemoryOption func(*MemoryStore)

// WithMemoryNowFunc overrides the time function for testing.
func WithMemoryNowFunc(f func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.nowFunc = f
	}
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		accounts: make(map[string]*domain.Account),
		events:   make(map[string][]domain.AuthEvent),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ping always succeeds.
func (*MemoryStore) Ping(context.Context) error { return nil }

// Migrate is a no-op.
func (*MemoryStore) Migrate(context.Context) error { return nil }

// CreatePlaceholderAccount stores a new pending account.
func (s *MemoryStore) CreatePlaceholderAccount(
	_ context.Context,
	p *domain.PlaceholderAccount,
) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.nowFunc()
	id := uuid.NewString()
	ext := domain.PlaceholderExternalID(id)
	scopes := slices.Clone(p.UserSelectedScopes)
	if scopes == nil {
		scopes = []string{}
	}

	a := &domain.Account{
		ID:                 id,
		OwnerUserID:        p.OwnerUserID,
		Label:              p.Label,
		ExternalAccountID:  &ext,
		GrantedScopes:      []string{},
		UserSelectedScopes: scopes,
		Status:             domain.StatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.accounts[id] = a
	return cloneAccount(a), nil
}

// GetAccount returns a copy of the account.
func (s *MemoryStore) GetAccount(_ context.Context, id string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return cloneAccount(a), nil
}

// ListAccounts filters, orders and pages accounts like the SQL implementation.
func (s *MemoryStore) ListAccounts(_ context.Context, q *AccountQuery) ([]domain.Account, int, error) {
	if q == nil {
		q = &AccountQuery{}
	}

	s.mu.RLock()
	var matched []*domain.Account
	for _, a := range s.accounts {
		if q.Matches(a) {
			matched = append(matched, cloneAccount(a))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(matched, func(a, b *domain.Account) int {
		switch {
		case q.less(a, b):
			return -1
		case q.less(b, a):
			return 1
		default:
			return 0
		}
	})

	total := len(matched)
	offset := min(max(q.Offset, 0), total)
	end := min(offset+clampLimit(q.Limit, defaultLimit, maxLimit), total)

	out := make([]domain.Account, 0, end-offset)
	for _, a := range matched[offset:end] {
		out = append(out, *a)
	}
	return out, total, nil
}

// UpdateAccount applies u under the write lock.
func (s *MemoryStore) UpdateAccount(
	_ context.Context,
	id string,
	u *AccountUpdate,
) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}

	if u.ExternalAccountID != nil {
		for otherID, other := range s.accounts {
			if otherID != id && other.ExternalAccountID != nil &&
				*other.ExternalAccountID == *u.ExternalAccountID {
				return nil, ErrExternalAccountTaken
			}
		}
	}

	u.Apply(a)
	a.UpdatedAt = s.nowFunc()
	return cloneAccount(a), nil
}

// DeleteAccount removes the account and its events.
func (s *MemoryStore) DeleteAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[id]; !ok {
		return ErrAccountNotFound
	}
	delete(s.accounts, id)
	delete(s.events, id)
	return nil
}

// ListExpiringAccounts returns active refreshable accounts expiring before
// the given time, soonest first.
func (s *MemoryStore) ListExpiringAccounts(
	_ context.Context,
	before time.Time,
	limit int,
) ([]domain.Account, error) {
	s.mu.RLock()
	var out []domain.Account
	for _, a := range s.accounts {
		if a.Status == domain.StatusActive && a.RefreshToken != "" && a.ExpiresAt.Before(before) {
			out = append(out, *cloneAccount(a))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.Account) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	if n := clampLimit(limit, defaultLimit, maxLimit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// RecordAuthEvent appends e to the account's trail.
func (s *MemoryStore) RecordAuthEvent(_ context.Context, e *domain.AuthEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[e.AccountID]; !ok {
		return ErrAccountNotFound
	}
	e.ID = uuid.NewString()
	e.CreatedAt = s.nowFunc()
	s.events[e.AccountID] = append(s.events[e.AccountID], *e)
	return nil
}

// ListAuthEvents returns the account's events, newest first.
func (s *MemoryStore) ListAuthEvents(
	_ context.Context,
	accountID string,
	limit int,
) ([]domain.AuthEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.events[accountID]
	n := min(clampLimit(limit, defaultEventLimit, maxEventLimit), len(src))
	out := make([]domain.AuthEvent, 0, n)
	for i := len(src) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, src[i])
	}
	return out, nil
}

func cloneAccount(a *domain.Account) *domain.Account {
	c := *a
	c.GrantedScopes = slices.Clone(a.GrantedScopes)
	c.UserSelectedScopes = slices.Clone(a.UserSelectedScopes)
	if a.ExternalAccountID != nil {
		v := *a.ExternalAccountID
		c.ExternalAccountID = &v
	}
	if a.ExternalUsername != nil {
		v := *a.ExternalUsername
		c.ExternalUsername = &v
	}
	if a.LastUsedAt != nil {
		v := *a.LastUsedAt
		c.LastUsedAt = &v
	}
	return &c
}
