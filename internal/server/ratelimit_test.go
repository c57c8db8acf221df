package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClientLimiter_Refills(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter("test", 60)
	l.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		assert.True(t, l.allow("a"))
	}
	assert.False(t, l.allow("a"))
	assert.True(t, l.allow("b"))

	now = now.Add(time.Second)
	assert.True(t, l.allow("a"))
	assert.False(t, l.allow("a"))
}

func TestClientLimiter_Disabled(t *testing.T) {
	l := newClientLimiter("test", 0)
	for i := 0; i < 1000; i++ {
		assert.True(t, l.allow("a"))
	}
}

func TestClientLimiter_SweepsIdleClients(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newClientLimiter("test", 5)
	l.now = func() time.Time { return now }

	l.allow("a")
	now = now.Add(visitorTTL + time.Minute)
	l.allow("b")

	l.mu.Lock()
	defer l.mu.Unlock()
	assert.NotContains(t, l.visitors, "a")
	assert.Contains(t, l.visitors, "b")
}
