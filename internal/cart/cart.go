// Package cart holds the purely local line-item state. Nothing here is
// persisted remotely until checkout snapshots the lines into an order.
package cart

import (
	"sync"

	"storefront/internal/models"
	"storefront/internal/policy"
	"storefront/internal/util"
)

// Store is the mutable cart. It is only ever mutated by user-triggered
// calls, never by a remote push.
type Store struct {
	policy  policy.Policy
	session func() *models.UserProfile

	mu    sync.RWMutex
	items []models.CartItem

	nmu    sync.Mutex
	nextID int
	subs   map[int]func()
}

// NewStore builds a cart gated by the given policy. session supplies the
// current profile (nil when anonymous).
func NewStore(p policy.Policy, session func() *models.UserProfile) *Store {
	return &Store{policy: p, session: session, subs: make(map[int]func())}
}

// Add puts one unit of product in the cart, merging into an existing line.
// The returned decision is denied (and the cart untouched) when policy
// refuses add-to-cart for the current session.
func (s *Store) Add(product models.Product) policy.Decision {
	decision := s.policy.Check(s.session(), policy.ActionAddToCart)
	if !decision.Allowed {
		util.PolicyDenialsTotal.WithLabelValues(string(policy.ActionAddToCart), string(decision.Reason)).Inc()
		return decision
	}

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].ID == product.ID {
			s.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, models.CartItem{Product: product, Quantity: 1})
	}
	s.mu.Unlock()

	s.notify()
	return decision
}

// Remove deletes the line unconditionally.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// AdjustQuantity applies delta to a line's quantity, clamped at 1. Reaching
// the floor never removes the line; Remove is the only way out.
func (s *Store) AdjustQuantity(productID string, delta int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == productID {
			q := s.items[i].Quantity + delta
			if q < 1 {
				q = 1
			}
			s.items[i].Quantity = q
			break
		}
	}
	s.mu.Unlock()
	s.notify()
}

// Items returns a value copy of the current lines.
func (s *Store) Items() []models.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of lines.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Count returns the total unit count across lines.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

// Total sums price times quantity over current lines, computed on demand.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Clear empties the cart. Called after successful checkout only.
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
	s.notify()
}

// Subscribe registers fn for cart changes.
func (s *Store) Subscribe(fn func()) func() {
	s.nmu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.nmu.Unlock()

	return func() {
		s.nmu.Lock()
		delete(s.subs, id)
		s.nmu.Unlock()
	}
}

func (s *Store) notify() {
	s.nmu.Lock()
	subs := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.nmu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
