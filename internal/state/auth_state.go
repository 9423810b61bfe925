// Package state holds the single-writer session state container. It replaces
// ad-hoc global mutable auth state with an explicitly owned value plus a
// subscribe/notify contract: subscribers receive the current value and every
// subsequent update, and unregistration is guaranteed on context teardown.
package state

import (
	"context"
	"sync"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

// AuthState owns the current authenticated-user value. AuthService is the
// only writer; everything else observes through Subscribe.
type AuthState struct {
	mu          sync.RWMutex
	current     *core.AuthUser
	subscribers map[string]chan *core.AuthUser
}

// NewAuthState creates an empty state container.
func NewAuthState() *AuthState {
	return &AuthState{
		subscribers: make(map[string]chan *core.AuthUser),
	}
}

// Current returns the latest published value, nil when signed out.
func (s *AuthState) Current() *core.AuthUser {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set publishes a new value to all subscribers. The authoritative merge path
// and the optimistic session path both land here; last write wins.
func (s *AuthState) Set(user *core.AuthUser) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = user
	for _, ch := range s.subscribers {
		select {
		case ch <- user:
		default:
			// Skip slow subscribers rather than block the writer.
		}
	}
}

// Clear resets the container to signed-out and notifies subscribers.
func (s *AuthState) Clear() {
	s.Set(nil)
}

// Subscribe registers a subscriber under id and returns a channel that
// yields the current value first, then every update. Re-subscribing under
// an existing id closes the previous channel. The subscription is removed
// when ctx is done.
func (s *AuthState) Subscribe(ctx context.Context, id string) <-chan *core.AuthUser {
	s.mu.Lock()
	if prev, exists := s.subscribers[id]; exists {
		close(prev)
	}
	ch := make(chan *core.AuthUser, 8)
	s.subscribers[id] = ch
	current := s.current
	s.mu.Unlock()

	ch <- current

	go func() {
		<-ctx.Done()
		// Only remove the subscription this context created; a
		// replacement registered under the same id stays.
		s.mu.Lock()
		defer s.mu.Unlock()
		if current, exists := s.subscribers[id]; exists && current == ch {
			close(current)
			delete(s.subscribers, id)
		}
	}()

	return ch
}

// Unsubscribe removes a subscriber and closes its channel.
func (s *AuthState) Unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ch, exists := s.subscribers[id]; exists {
		close(ch)
		delete(s.subscribers, id)
	}
}
