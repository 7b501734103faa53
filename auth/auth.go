// Copyright (c) 2026 M. Howell.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mhowell/story-poker/domain"
)

const (
	minUserNameLen = 2
	maxUserNameLen = 20
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// SessionStore tracks logged-in users by bearer token. It is an
// explicit, injected component: created at process start, discarded at
// shutdown. Sessions are not persisted.
type SessionStore struct {
	mu      sync.RWMutex
	byToken map[string]string // token -> user name
	byName  map[string]string // user name -> token
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{
		byToken: make(map[string]string),
		byName:  make(map[string]string),
	}
}

// Login validates the user name and issues a bearer token. Logging in
// again with the same name returns the existing token.
func (s *SessionStore) Login(userName string) (string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return "", fmt.Errorf("user name is required: %w", domain.ErrInvalidArgument)
	}
	if n := len([]rune(userName)); n < minUserNameLen || n > maxUserNameLen {
		return "", fmt.Errorf("user name must be %d-%d characters: %w", minUserNameLen, maxUserNameLen, domain.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token, ok := s.byName[userName]; ok {
		return token, nil
	}

	token := uuid.NewString()
	s.byToken[token] = userName
	s.byName[userName] = token
	return token, nil
}

// UserName resolves a token to the logged-in user name.
func (s *SessionStore) UserName(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	name, ok := s.byToken[token]
	return name, ok
}

// Logout revokes a token. Unknown tokens are ignored.
func (s *SessionStore) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.byToken[token]; ok {
		delete(s.byToken, token)
		delete(s.byName, name)
	}
}

// OnlineCount returns the number of logged-in users.
func (s *SessionStore) OnlineCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byToken)
}
