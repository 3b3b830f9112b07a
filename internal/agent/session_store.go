package agent

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/soyeahso/toolchat/internal/domain"
	"github.com/soyeahso/toolchat/internal/llm"
)

// SessionStore manages conversation sessions.
type SessionStore interface {
	// GetOrCreate finds an existing session by key or creates a new one.
	GetOrCreate(key domain.SessionKey) *domain.Session

	// Append adds messages to a session.
	Append(sessionID string, msgs ...domain.Message)

	// History returns the message history for a session as LLM messages.
	History(sessionID string) []llm.Message
}

// MemorySessionStore is an in-memory SessionStore implementation. Sessions
// live as long as the process.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session // id → session
	byKey    map[string]string          // key string → session id
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*domain.Session),
		byKey:    make(map[string]string),
	}
}

func (s *MemorySessionStore) GetOrCreate(key domain.SessionKey) *domain.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	keyStr := key.String()
	if id, ok := s.byKey[keyStr]; ok {
		if sess, ok := s.sessions[id]; ok {
			return sess
		}
	}

	now := time.Now()
	sess := &domain.Session{
		ID:        uuid.New().String(),
		Key:       key,
		AgentID:   key.AgentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions[sess.ID] = sess
	s.byKey[keyStr] = sess.ID
	return sess
}

func (s *MemorySessionStore) Append(sessionID string, msgs ...domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionID]; ok {
		sess.Messages = append(sess.Messages, msgs...)
		sess.UpdatedAt = time.Now()
	}
}

func (s *MemorySessionStore) History(sessionID string) []llm.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	return toLLMMessages(sess.Messages)
}

func toLLMMessages(msgs []domain.Message) []llm.Message {
	out := make([]llm.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, llm.Message{Role: m.Role, Content: m.Content})
	}
	return out
}
