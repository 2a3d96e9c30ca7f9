package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversationStoreLifecycle(t *testing.T) {
	store := NewConversationStore(time.Minute)

	_, ok := store.Get(1, 2)
	assert.False(t, ok)

	conv := store.Begin(1, 2, StateWaitingTitle)
	conv.Title = "draft"
	store.Put(1, 2, conv)

	got, ok := store.Get(1, 2)
	require.True(t, ok)
	assert.Equal(t, StateWaitingTitle, got.State)
	assert.Equal(t, "draft", got.Title)

	// Keys are per (chat, user).
	_, ok = store.Get(1, 3)
	assert.False(t, ok)
	_, ok = store.Get(9, 2)
	assert.False(t, ok)

	store.Clear(1, 2)
	_, ok = store.Get(1, 2)
	assert.False(t, ok)
}

func TestConversationBeginSupersedes(t *testing.T) {
	store := NewConversationStore(time.Minute)

	conv := store.Begin(1, 2, StateWaitingTitle)
	conv.Title = "stale"
	conv.TaskID = 99
	conv.MessageIDs = []int{5, 6}
	store.Put(1, 2, conv)

	// A new flow must not inherit the old payload.
	fresh := store.Begin(1, 2, StateWaitingUsername)
	assert.Equal(t, StateWaitingUsername, fresh.State)
	assert.Empty(t, fresh.Title)
	assert.Zero(t, fresh.TaskID)
	assert.Empty(t, fresh.MessageIDs)

	got, ok := store.Get(1, 2)
	require.True(t, ok)
	assert.Equal(t, StateWaitingUsername, got.State)
	assert.Empty(t, got.Title)
}

func TestConversationCaptureCount(t *testing.T) {
	store := NewConversationStore(time.Minute)

	conv := store.Begin(1, 2, StateNone)
	conv.CollectingAttachments = true
	store.Put(1, 2, conv)

	// Each stored file bumps the count; Done only notifies when it is
	// nonzero, so a fresh collection session must start at zero.
	got, ok := store.Get(1, 2)
	require.True(t, ok)
	assert.Zero(t, got.CapturedCount)

	got.CapturedCount++
	store.Put(1, 2, got)

	got, ok = store.Get(1, 2)
	require.True(t, ok)
	assert.Equal(t, 1, got.CapturedCount)
}

func TestConversationTTL(t *testing.T) {
	store := NewConversationStore(10 * time.Millisecond)

	store.Begin(1, 2, StateWaitingTitle)
	_, ok := store.Get(1, 2)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	// Expired entries are dropped lazily on read.
	_, ok = store.Get(1, 2)
	assert.False(t, ok)
}

func TestConversationSweep(t *testing.T) {
	store := NewConversationStore(10 * time.Millisecond)

	store.Begin(1, 2, StateWaitingTitle)
	store.Begin(3, 4, StateWaitingDesc)
	time.Sleep(20 * time.Millisecond)
	store.Begin(5, 6, StateWaitingEnd)

	store.sweep()

	store.mu.RLock()
	defer store.mu.RUnlock()
	assert.Len(t, store.m, 1)
	_, ok := store.m[convKey{5, 6}]
	assert.True(t, ok)
}
