package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilimo-tech/farmgate-pos/internal/core"
)

func TestAuthStateCurrent(t *testing.T) {
	s := NewAuthState()
	assert.Nil(t, s.Current())

	user := &core.AuthUser{ID: "user-1"}
	s.Set(user)
	assert.Equal(t, user, s.Current())

	s.Clear()
	assert.Nil(t, s.Current())
}

func TestSubscribeDeliversCurrentFirst(t *testing.T) {
	s := NewAuthState()
	s.Set(&core.AuthUser{ID: "user-1"})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx, "sub-1")

	first := <-ch
	require.NotNil(t, first)
	assert.Equal(t, "user-1", first.ID)

	s.Set(&core.AuthUser{ID: "user-2"})
	second := <-ch
	require.NotNil(t, second)
	assert.Equal(t, "user-2", second.ID)
}

func TestSubscribeSignedOutDeliversNil(t *testing.T) {
	s := NewAuthState()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx, "sub-1")
	assert.Nil(t, <-ch)
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	s := NewAuthState()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.Subscribe(ctx, "sub-1")
	<-ch

	s.Unsubscribe("sub-1")
	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe is a no-op.
	s.Unsubscribe("sub-1")
}

func TestResubscribeClosesPreviousChannel(t *testing.T) {
	s := NewAuthState()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := s.Subscribe(ctx, "sub-1")
	<-first

	second := s.Subscribe(ctx, "sub-1")
	<-second

	_, open := <-first
	assert.False(t, open, "replaced subscription channel should be closed")

	// Updates flow to the replacement only.
	s.Set(&core.AuthUser{ID: "user-1"})
	got := <-second
	require.NotNil(t, got)
	assert.Equal(t, "user-1", got.ID)
}

func TestContextCancelUnsubscribes(t *testing.T) {
	s := NewAuthState()
	ctx, cancel := context.WithCancel(context.Background())

	ch := s.Subscribe(ctx, "sub-1")
	<-ch

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, open := <-ch:
			return !open
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSlowSubscriberDoesNotBlockWriter(t *testing.T) {
	s := NewAuthState()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never drained: fill the buffer and keep writing.
	s.Subscribe(ctx, "slow")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			s.Set(&core.AuthUser{ID: "user-1"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Set blocked on a slow subscriber")
	}
}
