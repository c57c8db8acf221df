package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndHistory(t *testing.T) {
	s := NewStore()

	_, ok := s.History("missing")
	assert.False(t, ok)

	s.Append("a", Turn{Source: SourceUser, Transcript: "hi"}, Turn{Source: SourceAssistant, Transcript: "hello"})
	h, ok := s.History("a")
	require.True(t, ok)
	require.Len(t, h, 2)
	assert.Equal(t, "hi", h[0].Transcript)
	assert.False(t, h[0].Timestamp.IsZero())

	// Returned slices are copies.
	h[0].Transcript = "changed"
	h2, _ := s.History("a")
	assert.Equal(t, "hi", h2[0].Transcript)
}

func TestStore_RecentWindow(t *testing.T) {
	s := NewStore()
	s.Append("a",
		Turn{Source: SourceUser, Transcript: "1"},
		Turn{Source: SourceAssistant, Transcript: "2"},
		Turn{Source: SourceUser, Transcript: "3"},
		Turn{Source: SourceAssistant, ToolCalls: []ToolCall{{ID: "t1", Name: "calculate_profile"}}},
		Turn{Source: SourceTool, ToolCallID: "t1", Transcript: "{}"},
		Turn{Source: SourceAssistant, Transcript: "6"},
	)

	tests := []struct {
		n     int
		first string
		size  int
	}{
		{n: 0, first: "1", size: 6},
		{n: 10, first: "1", size: 6},
		{n: 4, first: "3", size: 4},
		// Window of 3 starts on the tool-call turn; trimmed to nothing
		// user-led remains.
		{n: 3, size: 0},
		{n: 6, first: "1", size: 6},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("n=%d", tt.n), func(t *testing.T) {
			got := s.Recent("a", tt.n)
			require.Len(t, got, tt.size)
			if tt.size > 0 {
				assert.Equal(t, SourceUser, got[0].Source)
				assert.Equal(t, tt.first, got[0].Transcript)
			}
		})
	}

	assert.Empty(t, s.Recent("missing", 10))
}

func TestStore_IDsAndLen(t *testing.T) {
	s := NewStore()
	s.Append("b", Turn{Source: SourceUser})
	s.Append("a", Turn{Source: SourceUser})
	s.Append("b", Turn{Source: SourceAssistant})

	assert.Equal(t, 2, s.Len())
	ids := s.IDs()
	assert.ElementsMatch(t, []string{"a", "b"}, ids)
}

func TestStore_Concurrent(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", i%4)
			s.Append(id, Turn{Source: SourceUser, Transcript: "x"})
			_ = s.Recent(id, 5)
			_ = s.IDs()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 4, s.Len())
	total := 0
	for _, id := range s.IDs() {
		h, _ := s.History(id)
		total += len(h)
	}
	assert.Equal(t, 20, total)
}

// fakeClock is a settable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newClockStore(opts ...Option) (*Store, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := NewStore(opts...)
	s.now = clock.now
	return s, clock
}

func TestStore_ExpiresIdleSessions(t *testing.T) {
	s, clock := newClockStore(WithTTL(30 * time.Minute))

	s.Append("old", Turn{Source: SourceUser, Transcript: "hi"})
	clock.advance(20 * time.Minute)
	s.Append("fresh", Turn{Source: SourceUser, Transcript: "hi"})
	clock.advance(15 * time.Minute)

	_, ok := s.History("old")
	assert.False(t, ok)
	assert.Equal(t, []string{"fresh"}, s.IDs())
	assert.Equal(t, 1, s.Len())

	// The next write sweeps expired sessions from memory.
	s.Append("fresh", Turn{Source: SourceAssistant, Transcript: "hello"})
	s.mu.RLock()
	_, held := s.sessions["old"]
	s.mu.RUnlock()
	assert.False(t, held)

	// A returning client starts over.
	clock.advance(time.Hour)
	s.Append("fresh", Turn{Source: SourceUser, Transcript: "back"})
	h, ok := s.History("fresh")
	require.True(t, ok)
	require.Len(t, h, 1)
	assert.Equal(t, "back", h[0].Transcript)
}

func TestStore_EvictsLeastRecentlyUpdated(t *testing.T) {
	s, clock := newClockStore(WithMaxSessions(2), WithTTL(0))

	s.Append("a", Turn{Source: SourceUser})
	clock.advance(time.Second)
	s.Append("b", Turn{Source: SourceUser})
	clock.advance(time.Second)
	s.Append("a", Turn{Source: SourceAssistant})
	clock.advance(time.Second)
	s.Append("c", Turn{Source: SourceUser})

	assert.Equal(t, 2, s.Len())
	_, ok := s.History("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"a", "c"}, s.IDs())
}

func TestStore_LockSerialisesTurns(t *testing.T) {
	s := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			unlock := s.Lock("shared")
			defer unlock()
			n := len(s.Recent("shared", 0))
			s.Append("shared",
				Turn{Source: SourceUser, Transcript: fmt.Sprintf("q%d", n)},
				Turn{Source: SourceAssistant, Transcript: fmt.Sprintf("a%d", n)})
		}(i)
	}
	wg.Wait()

	h, ok := s.History("shared")
	require.True(t, ok)
	require.Len(t, h, 20)
	for i := 0; i < len(h); i += 2 {
		assert.Equal(t, SourceUser, h[i].Source)
		assert.Equal(t, fmt.Sprintf("q%d", i), h[i].Transcript)
		assert.Equal(t, fmt.Sprintf("a%d", i), h[i+1].Transcript)
	}

	s.mu.RLock()
	assert.Empty(t, s.locks)
	s.mu.RUnlock()
}
