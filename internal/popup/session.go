package popup

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/ziadkadry99/stylelens/internal/analysis"
	"github.com/ziadkadry99/stylelens/internal/capture"
	"github.com/ziadkadry99/stylelens/internal/conversation"
)

// Session is one popup's worth of state: the captured page, the last
// parsed response and the conversation grounded on it.
type Session struct {
	ID        string
	CreatedAt time.Time

	conv conversation.State

	mu       sync.RWMutex
	snapshot *capture.PageSnapshot
	last     *analysis.Sections
	lastRaw  string

	// suggesting and asking are the disabled-control flags: set while a
	// call of that kind is in flight.
	suggesting atomic.Bool
	asking     atomic.Bool
}

// NewSession creates a session with a fresh id.
func NewSession() *Session {
	return &Session{ID: uuid.New().String(), CreatedAt: time.Now()}
}

// Conversation returns the session's follow-up context.
func (s *Session) Conversation() *conversation.State { return &s.conv }

// Snapshot returns the captured page, or nil before a successful extract.
func (s *Session) Snapshot() *capture.PageSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// LastResponse returns the most recent parsed response and its raw text.
func (s *Session) LastResponse() (analysis.Sections, string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return analysis.Sections{}, "", false
	}
	return *s.last, s.lastRaw, true
}

// Busy reports whether a suggestion or follow-up call is in flight.
func (s *Session) Busy() (suggesting, asking bool) {
	return s.suggesting.Load(), s.asking.Load()
}

func (s *Session) setSnapshot(snap *capture.PageSnapshot) {
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()
}

func (s *Session) setLast(sections analysis.Sections, raw string) {
	s.mu.Lock()
	s.last = &sections
	s.lastRaw = raw
	s.mu.Unlock()
}

// Sessions keeps live sessions in memory. A session idle for longer than
// the TTL is dropped, the same as closing the popup.
type Sessions struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewSessions creates a store whose sessions expire after ttl of inactivity.
func NewSessions(ttl time.Duration) *Sessions {
	cleanup := 10 * time.Minute
	if ttl < cleanup {
		cleanup = ttl
	}
	return &Sessions{cache: cache.New(ttl, cleanup), ttl: ttl}
}

// Create starts a new session.
func (s *Sessions) Create() *Session {
	sess := NewSession()
	s.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess
}

// Get returns a live session and extends its lifetime.
func (s *Sessions) Get(id string) (*Session, bool) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}
	sess := v.(*Session)
	s.cache.Set(id, sess, cache.DefaultExpiration)
	return sess, true
}

// Delete closes a session. Calls already in flight finish but their
// results are no longer reachable.
func (s *Sessions) Delete(id string) {
	s.cache.Delete(id)
}

// Count returns the number of live sessions.
func (s *Sessions) Count() int {
	return s.cache.ItemCount()
}

// OnEvicted registers f to run when a session expires or is deleted.
func (s *Sessions) OnEvicted(f func(id string)) {
	s.cache.OnEvicted(func(k string, _ interface{}) { f(k) })
}
