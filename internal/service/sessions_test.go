package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore_Get(t *testing.T) {
	st := NewSessionStore(time.Hour, testLogger())

	first, created := st.Get("")
	require.True(t, created)
	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)

	same, created := st.Get(first.ID)
	assert.False(t, created)
	assert.Same(t, first, same)

	other, created := st.Get("not-a-uuid")
	assert.True(t, created)
	assert.NotEqual(t, "not-a-uuid", other.ID)

	known := uuid.NewString()
	kept, created := st.Get("  " + known + " ")
	assert.True(t, created)
	assert.Equal(t, known, kept.ID)

	assert.Equal(t, 3, st.Len())
}

func TestSessionStore_EvictIdle(t *testing.T) {
	clock := fixedNow
	st := NewSessionStore(30*time.Minute, testLogger())
	st.now = func() time.Time { return clock }

	idle, _ := st.Get("")
	active, _ := st.Get("")

	clock = clock.Add(20 * time.Minute)
	active.BeginFetch()

	clock = clock.Add(20 * time.Minute)
	assert.Equal(t, 1, st.EvictIdle())
	assert.Equal(t, 1, st.Len())

	_, created := st.Get(active.ID)
	assert.False(t, created)
	replacement, created := st.Get(idle.ID)
	assert.True(t, created)
	assert.NotSame(t, idle, replacement)
}

func TestSessionStore_NoIdleTimeoutKeepsSessions(t *testing.T) {
	st := NewSessionStore(0, nil)
	st.Get("")
	assert.Zero(t, st.EvictIdle())
	assert.Equal(t, 1, st.Len())
}
