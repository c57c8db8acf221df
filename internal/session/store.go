// Package session keeps per-conversation history in memory, keyed by the
// session id the client supplies.
package session

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// Turn sources.
const (
	SourceUser      = "user"
	SourceAssistant = "assistant"
	SourceTool      = "tool"
)

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
}

// Turn is one entry of a conversation. Assistant turns may carry ToolCalls;
// tool turns carry the ToolCallID they answer.
type Turn struct {
	Source     string     `json:"source"`
	Transcript string     `json:"transcript"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	IsError    bool       `json:"is_error,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Default limits for NewStore.
const (
	DefaultTTL         = time.Hour
	DefaultMaxSessions = 1000

	sweepInterval = time.Minute
)

type conversation struct {
	created time.Time
	updated time.Time
	turns   []Turn
}

type turnLock struct {
	mu   sync.Mutex
	refs int
}

// Store is a concurrency-safe in-memory session store. Sessions idle for
// longer than the TTL are dropped, and once MaxSessions is reached the least
// recently updated session is evicted to make room for a new one.
type Store struct {
	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	mu        sync.RWMutex
	sessions  map[string]*conversation
	locks     map[string]*turnLock
	lastSweep time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets the idle lifetime of a session. Zero or less keeps sessions
// until they are evicted by the size cap.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// WithMaxSessions caps the number of sessions held. Zero or less means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Store) { s.maxSessions = n }
}

// NewStore creates an empty Store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		ttl:         DefaultTTL,
		maxSessions: DefaultMaxSessions,
		now:         func() time.Time { return time.Now().UTC() },
		sessions:    make(map[string]*conversation),
		locks:       make(map[string]*turnLock),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Lock serialises conversation turns on one session. The returned func
// releases it. Sessions are locked independently.
func (s *Store) Lock(id string) (unlock func()) {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &turnLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// Append adds turns to a session, creating it on first use. Zero timestamps
// are set to now.
func (s *Store) Append(id string, turns ...Turn) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(now)

	c, ok := s.sessions[id]
	if ok && s.expired(c, now) {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		if s.maxSessions > 0 && len(s.sessions) >= s.maxSessions {
			s.evictOldestLocked()
		}
		c = &conversation{created: now}
		s.sessions[id] = c
	}
	c.updated = now
	for _, t := range turns {
		if t.Timestamp.IsZero() {
			t.Timestamp = now
		}
		c.turns = append(c.turns, t)
	}
}

func (s *Store) expired(c *conversation, now time.Time) bool {
	return s.ttl > 0 && now.Sub(c.updated) > s.ttl
}

// sweepLocked drops expired sessions at most once per sweepInterval.
func (s *Store) sweepLocked(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for id, c := range s.sessions {
		if s.expired(c, now) {
			delete(s.sessions, id)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var (
		oldest string
		at     time.Time
	)
	for id, c := range s.sessions {
		if oldest == "" || c.updated.Before(at) || (c.updated.Equal(at) && id < oldest) {
			oldest, at = id, c.updated
		}
	}
	delete(s.sessions, oldest)
}

// History returns a copy of a session's turns and whether it exists.
func (s *Store) History(id string) ([]Turn, bool) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.sessions[id]
	if !ok || s.expired(c, now) {
		return nil, false
	}
	return append([]Turn(nil), c.turns...), true
}

// Recent returns at most the last n turns of a session, trimmed so the window
// opens on a user turn. A window never starts with a tool result whose call
// was cut off.
func (s *Store) Recent(id string, n int) []Turn {
	turns, _ := s.History(id)
	if n > 0 && len(turns) > n {
		turns = turns[len(turns)-n:]
	}
	for len(turns) > 0 && turns[0].Source != SourceUser {
		turns = turns[1:]
	}
	return turns
}

// IDs lists live session ids in creation order.
func (s *Store) IDs() []string {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id, c := range s.sessions {
		if !s.expired(c, now) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := s.sessions[ids[i]].created, s.sessions[ids[j]].created
		if a.Equal(b) {
			return ids[i] < ids[j]
		}
		return a.Before(b)
	})
	return ids
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int
	for _, c := range s.sessions {
		if !s.expired(c, now) {
			n++
		}
	}
	return n
}
