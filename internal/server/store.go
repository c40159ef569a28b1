package server

import (
	"sync"

	"github.com/rezonia/einvoice-client/internal/model"
)

// Store keeps the vouchers accepted by the sandbox in memory.
type Store struct {
	mu       sync.RWMutex
	vouchers map[string]*model.Voucher
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{vouchers: make(map[string]*model.Voucher)}
}

// Add stores v. It returns false if a voucher with the same key exists.
func (s *Store) Add(v *model.Voucher) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.vouchers[v.Key()]; exists {
		return false
	}
	s.vouchers[v.Key()] = v
	return true
}

// Get returns a copy of the voucher stored under key.
func (s *Store) Get(key string) (model.Voucher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.vouchers[key]
	if !ok {
		return model.Voucher{}, false
	}
	cp := *v
	cp.MailRecipients = append([]string(nil), v.MailRecipients...)
	return cp, true
}

// Update applies fn to the voucher stored under key while holding the lock.
// It returns false if no such voucher exists; otherwise fn's error.
func (s *Store) Update(key string, fn func(*model.Voucher) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.vouchers[key]
	if !ok {
		return false, nil
	}
	return true, fn(v)
}

// Len returns the number of stored vouchers.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vouchers)
}
