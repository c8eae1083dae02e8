package signupform

import (
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm/signupform/form"
)

func newStore(capacity int, ttl time.Duration) *SessionStore {
	return NewSessionStore(capacity, ttl, func() *form.Form {
		return form.New(&stubAPI{})
	}, zerolog.Nop())
}

func TestSessionStore(t *testing.T) {
	s := newStore(10, time.Minute)

	a := s.Create()
	b := s.Create()
	require.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Form, b.Form)
	assert.Equal(t, 2, s.Len())

	got, ok := s.Get(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	assert.True(t, s.Discard(a.ID))
	assert.False(t, s.Discard(a.ID))
	_, ok = s.Get(a.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestSessionStoreCapacity(t *testing.T) {
	s := newStore(2, time.Minute)

	first := s.Create()
	second := s.Create()
	_, _ = s.Get(first.ID)
	s.Create()

	_, ok := s.Get(first.ID)
	assert.True(t, ok, "recently used session was evicted")
	_, ok = s.Get(second.ID)
	assert.False(t, ok, "least recently used session survived")
}

func TestSessionStoreTTL(t *testing.T) {
	s := newStore(10, 30*time.Millisecond)
	sess := s.Create()

	time.Sleep(80 * time.Millisecond)

	_, ok := s.Get(sess.ID)
	assert.False(t, ok)
}

func TestSessionStoreGetRefreshesTTL(t *testing.T) {
	s := newStore(10, 150*time.Millisecond)
	sess := s.Create()

	for range 3 {
		time.Sleep(75 * time.Millisecond)
		_, ok := s.Get(sess.ID)
		require.True(t, ok, "session expired while in use")
	}
}

func TestSessionStoreDiscardDuringGet(t *testing.T) {
	s := newStore(10, time.Minute)

	for range 50 {
		sess := s.Create()

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for range 20 {
					s.Get(sess.ID)
				}
			}()
		}
		s.Discard(sess.ID)
		wg.Wait()

		_, ok := s.Get(sess.ID)
		require.False(t, ok, "discarded session came back")
	}
}
