package app

import (
	"context"
	"sync"
	"time"
)

// ConvState names the step a multi-turn flow is waiting on.
type ConvState string

const (
	StateNone             ConvState = ""
	StateWaitingTitle     ConvState = "waiting_for_title"
	StateConfirmingTask   ConvState = "confirming_task"
	StateWaitingName      ConvState = "waiting_for_name"
	StateWaitingDesc      ConvState = "waiting_for_desc"
	StateWaitingEnd       ConvState = "waiting_for_end"
	StateWaitingTopicName ConvState = "waiting_for_topic_name"
	StateWaitingUsername  ConvState = "waiting_for_username"
)

// Conversation is the payload of one in-flight flow for a (chat, user) key.
type Conversation struct {
	State ConvState

	TaskID          int
	PromptMessageID int // message edited in place with the result
	MessageIDs      []int

	// add-task flow
	Title     string
	UserID    int
	UserAdmin bool
	ChatType  string

	// topic registration
	GroupID       int
	TopicThreadID int
	TopicLink     string

	// add-user flow
	ManageMessageID int
	RequesterTgID   int64

	// attachment collection mode
	CollectingAttachments bool
	CapturedCount         int

	updatedAt time.Time
}

type convKey struct {
	chatID int64
	userID int64
}

// ConversationStore keeps per-(chat,user) flow state in memory. Beginning a
// new flow supersedes whatever was there: stale payload never leaks into the
// next flow. Entries not touched within ttl are swept.
type ConversationStore struct {
	mu  sync.RWMutex
	m   map[convKey]Conversation
	ttl time.Duration
}

func NewConversationStore(ttl time.Duration) *ConversationStore {
	return &ConversationStore{
		m:   make(map[convKey]Conversation),
		ttl: ttl,
	}
}

// Begin replaces any prior conversation for the key with a fresh one.
func (s *ConversationStore) Begin(chatID, userID int64, state ConvState) Conversation {
	conv := Conversation{State: state, updatedAt: time.Now()}
	s.mu.Lock()
	s.m[convKey{chatID, userID}] = conv
	s.mu.Unlock()
	return conv
}

func (s *ConversationStore) Get(chatID, userID int64) (Conversation, bool) {
	s.mu.RLock()
	conv, ok := s.m[convKey{chatID, userID}]
	s.mu.RUnlock()
	if !ok {
		return Conversation{}, false
	}
	if s.ttl > 0 && time.Since(conv.updatedAt) > s.ttl {
		s.Clear(chatID, userID)
		return Conversation{}, false
	}
	return conv, true
}

// Put stores the updated payload, refreshing the TTL clock.
func (s *ConversationStore) Put(chatID, userID int64, conv Conversation) {
	conv.updatedAt = time.Now()
	s.mu.Lock()
	s.m[convKey{chatID, userID}] = conv
	s.mu.Unlock()
}

func (s *ConversationStore) Clear(chatID, userID int64) {
	s.mu.Lock()
	delete(s.m, convKey{chatID, userID})
	s.mu.Unlock()
}

// StartSweeper evicts expired conversations until ctx is done. A stalled flow
// (user never replied) disappears instead of lingering forever.
func (s *ConversationStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *ConversationStore) sweep() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	for key, conv := range s.m {
		if conv.updatedAt.Before(cutoff) {
			delete(s.m, key)
		}
	}
	s.mu.Unlock()
}
