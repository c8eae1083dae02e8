package signupform

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	"github.com/pthm/signupform/form"
)

// Session is one browser's form instance.
type Session struct {
	ID      string
	Form    *form.Form
	Created time.Time
}

// SessionStore keeps sessions in memory with a capacity bound and an
// idle TTL. Entries are refreshed on every Get.
type SessionStore struct {
	// mu makes Get's lookup and refresh atomic with respect to Discard.
	mu      sync.Mutex
	cache   *expirable.LRU[string, *Session]
	newForm func() *form.Form
	log     zerolog.Logger
}

// NewSessionStore creates a store holding at most capacity sessions for ttl.
// newForm builds the form of each new session.
func NewSessionStore(capacity int, ttl time.Duration, newForm func() *form.Form, log zerolog.Logger) *SessionStore {
	s := &SessionStore{newForm: newForm, log: log}
	s.cache = expirable.NewLRU[string, *Session](capacity, s.evicted, ttl)
	return s
}

func (s *SessionStore) evicted(id string, _ *Session) {
	s.log.Debug().Str("session", id).Msg("session evicted")
}

// Create starts a new session with an empty form.
func (s *SessionStore) Create() *Session {
	sess := &Session{
		ID:      uuid.NewString(),
		Form:    s.newForm(),
		Created: time.Now(),
	}
	s.cache.Add(sess.ID, sess)
	return sess
}

// Get returns a live session and marks it recently used.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	// Re-adding resets the TTL.
	s.cache.Add(id, sess)
	return sess, true
}

// Discard drops a session and its form state.
func (s *SessionStore) Discard(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	return s.cache.Len()
}
