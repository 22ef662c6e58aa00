package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/trucogame/internal/dependencies/clock"
	"github.com/mcoot/trucogame/internal/dependencies/random"
	"github.com/mcoot/trucogame/internal/model"
)

// Errors
var (
	ErrInvalidSession = errors.New("invalid or expired session")
)

const tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Session binds a bearer token to one seat occupant of one room
type Session struct {
	Token     string
	ID        model.SessionID
	Room      model.RoomCode
	Name      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service issues and validates sessions
type Service struct {
	clock  clock.Clock
	random random.Random

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new auth Service
func New(clock clock.Clock, random random.Random, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		clock:           clock,
		random:          random,
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// NewSessionID returns a fresh session identifier
func NewSessionID() model.SessionID {
	return model.SessionID(uuid.NewString())
}

// CreateSession issues a token for a player joining room under name
func (s *Service) CreateSession(room model.RoomCode, name string) *Session {
	now := s.clock.Now()
	session := &Session{
		Token:     "sess_" + s.random.String(32, tokenAlphabet),
		ID:        NewSessionID(),
		Room:      room,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// InvalidateRoom removes every session bound to a room
func (s *Service) InvalidateRoom(room model.RoomCode) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for token, session := range s.sessions {
		if session.Room == room {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
