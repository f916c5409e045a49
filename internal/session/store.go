package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"nebula-cli/internal/logger"
	"nebula-cli/internal/models"
)

// Store holds the authenticated session for the lifetime of the
// process and persists it to a JSON file so the next run rehydrates it
// at startup. Mutation happens from the single UI goroutine plus the
// API client's unauthorized hook, so everything is guarded by one lock.
//
// Lifecycle: Load (rehydrate) -> active -> Clear (logout or rejected
// credential). Clearing is broadcast to subscribers instead of letting
// every view re-read ambient state.
type Store struct {
	mu      sync.RWMutex
	path    string
	session *models.Session
	logger  *logger.Logger
	subs    map[chan struct{}]struct{}
}

func NewStore(path string, log *logger.Logger) *Store {
	return &Store{
		path:   path,
		logger: log,
		subs:   make(map[chan struct{}]struct{}),
	}
}

// Load rehydrates the session from disk. A missing file just means
// nobody is logged in. A stored session whose token is expired or whose
// role claim disagrees with the stored role is discarded: better to ask
// for a fresh login than to start with a credential the backend will
// bounce on the first call.
func (s *Store) Load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read session file: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		s.logger.Warn("SESSION", fmt.Sprintf("Discarding unreadable session file: %v", err))
		os.Remove(s.path)
		return nil
	}
	if !session.Authenticated() || !session.User.Role.Valid() {
		s.logger.Warn("SESSION", "Discarding stored session without a usable credential")
		os.Remove(s.path)
		return nil
	}

	claims, err := ParseClaims(session.Token)
	if err != nil || claims.Expired() || claims.Role != session.User.Role {
		s.logger.Warn("SESSION", "Stored credential expired or inconsistent, login required")
		os.Remove(s.path)
		return nil
	}

	s.mu.Lock()
	s.session = &session
	s.mu.Unlock()
	s.logger.Info("SESSION", fmt.Sprintf("Session restored for %s (%s)", session.User.Email, session.User.Role))
	return nil
}

// Set stores a fresh session (after a successful login) and persists it.
func (s *Store) Set(session *models.Session) error {
	if !session.Authenticated() {
		return fmt.Errorf("refusing to store a session without a token")
	}

	s.mu.Lock()
	s.session = session
	s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	s.logger.Info("SESSION", fmt.Sprintf("Session stored for %s (%s)", session.User.Email, session.User.Role))
	return nil
}

// Clear wipes the session (logout or rejected credential) and tells
// every subscriber. Safe to call when nothing is stored.
func (s *Store) Clear() {
	s.mu.Lock()
	hadSession := s.session != nil
	s.session = nil
	subs := make([]chan struct{}, 0, len(s.subs))
	for ch := range s.subs {
		subs = append(subs, ch)
	}
	s.mu.Unlock()

	os.Remove(s.path)
	if hadSession {
		s.logger.Info("SESSION", "Session cleared")
	}
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber hasn't drained the last notification yet.
		}
	}
}

// Current returns the active session, or nil when logged out.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token implements the API client's TokenSource.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Subscribe returns a channel that receives a signal whenever the
// session is cleared. The subscription is dropped when ctx is done.
func (s *Store) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, ch)
		s.mu.Unlock()
	}()

	return ch
}
