package agent

import (
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/cortexai/roster/internal/llm"
	"github.com/cortexai/roster/internal/store"
)

// Session threads one record store and one conversation through successive
// turns. Turns must be serialised by the caller; reading the conversation
// while a turn runs is safe.
type Session struct {
	ID    string
	store *store.Context

	mu       sync.RWMutex
	messages []llm.Message
}

// NewSession starts a conversation over st. An empty systemPrompt adds no
// system message.
func NewSession(systemPrompt string, st *store.Context) *Session {
	s := &Session{ID: uuid.NewString(), store: st}
	if systemPrompt != "" {
		s.messages = append(s.messages, llm.SystemMessage(systemPrompt))
	}
	return s
}

func (s *Session) Store() *store.Context {
	return s.store
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.messages)
}

func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

func (s *Session) append(msgs ...llm.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
}

// truncate drops everything after the first n messages.
func (s *Session) truncate(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = s.messages[:n]
}
