package lab

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// SessionID identifies one player's session
type SessionID string

var (
	ErrSessionExists   = errors.New("session already exists")
	ErrSessionNotFound = errors.New("session not found")
)

// SessionManager keeps isolated sessions, one Controller each.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[SessionID]*Controller
	content  Content
	cfg      ControllerConfig
	logger   Logger
}

// NewSessionManager creates a manager whose sessions share content and
// controller settings.
func NewSessionManager(content Content, cfg ControllerConfig) *SessionManager {
	return &SessionManager{
		sessions: make(map[SessionID]*Controller),
		content:  content,
		cfg:      cfg,
		logger:   orNoOp(cfg.Logger),
	}
}

// CreateSession starts a new session in the menu. An empty id gets a
// generated one.
func (sm *SessionManager) CreateSession(id SessionID) (*Controller, error) {
	if id == "" {
		id = SessionID(NewRandomID())
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, exists := sm.sessions[id]; exists {
		return nil, fmt.Errorf("session %s: %w", id, ErrSessionExists)
	}

	ctrl := NewController(id, sm.content, sm.cfg)
	sm.sessions[id] = ctrl
	sm.logger.Infof("Session created: session_id=%s", id)
	return ctrl, nil
}

func (sm *SessionManager) GetSession(id SessionID) (*Controller, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ctrl, exists := sm.sessions[id]
	return ctrl, exists
}

// DeleteSession closes and forgets a session.
func (sm *SessionManager) DeleteSession(id SessionID) error {
	sm.mu.Lock()
	ctrl, exists := sm.sessions[id]
	if exists {
		delete(sm.sessions, id)
	}
	sm.mu.Unlock()

	if !exists {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	ctrl.Close()
	sm.logger.Infof("Session deleted: session_id=%s", id)
	return nil
}

// ListSessions returns the session ids in sorted order.
func (sm *SessionManager) ListSessions() []SessionID {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	ids := make([]SessionID, 0, len(sm.sessions))
	for id := range sm.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Close shuts every session down.
func (sm *SessionManager) Close() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[SessionID]*Controller)
	sm.mu.Unlock()

	for _, ctrl := range sessions {
		ctrl.Close()
	}
}
