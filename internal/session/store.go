// Package session is the single source of truth for "who is logged in".
// It holds the authenticated user and bearer token as one atomic pair,
// persists them through a storage.Store, and derives the authentication
// flag lazily from token expiry.
package session

import (
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bitevents/bitevents/internal/model"
	"github.com/bitevents/bitevents/internal/storage"
)

// Storage keys, shared with the browser client this mirrors.
const (
	keyUser  = "user"
	keyToken = "authToken"
)

// Session is an immutable snapshot of the current auth state.
type Session struct {
	User  *model.User
	Token string
}

// Store owns the session pair. All mutation goes through Login and Logout,
// which update both fields, persist them, and notify subscribers under one
// lock so no caller ever observes a half-set pair.
type Store struct {
	mu      sync.RWMutex
	storage storage.Store
	logger  *zap.Logger
	now     func() time.Time

	user  *model.User
	token string

	subMu   sync.Mutex
	nextSub int
	subs    map[int]func(Session)
}

// NewStore hydrates a Store from persisted state. A persisted token whose
// embedded expiry has already passed is discarded together with its user.
func NewStore(st storage.Store, logger *zap.Logger) *Store {
	s := &Store{
		storage: st,
		logger:  logger,
		now:     time.Now,
		subs:    map[int]func(Session){},
	}

	token, ok := st.Get(keyToken)
	if !ok {
		return s
	}
	if tokenExpired(token, s.now()) {
		logger.Info("discarding expired persisted session")
		_ = st.Delete(keyUser)
		_ = st.Delete(keyToken)
		return s
	}

	s.token = token
	if raw, ok := st.Get(keyUser); ok {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			logger.Warn("persisted user is unreadable", zap.Error(err))
		} else {
			s.user = &u
		}
	}
	return s
}

// Login sets the user/token pair and persists both.
func (s *Store) Login(user model.User, token string) {
	s.mu.Lock()
	u := user
	s.user = &u
	s.token = token

	raw, err := json.Marshal(u)
	if err == nil {
		err = s.storage.Set(keyUser, string(raw))
	}
	if err == nil {
		err = s.storage.Set(keyToken, token)
	}
	if err != nil {
		s.logger.Warn("persisting session failed", zap.Error(err))
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("logged in", zap.Int64("user_id", user.ID), zap.String("email", user.Email))
	s.notify(snap)
}

// SetUser replaces the stored user while keeping the token, for profile
// edits that come back with a fresher server copy. A no-op when anonymous:
// updating a user without a session makes no sense.
func (s *Store) SetUser(user model.User) {
	s.mu.Lock()
	if s.user == nil && s.token == "" {
		s.mu.Unlock()
		return
	}
	u := user
	s.user = &u

	raw, err := json.Marshal(u)
	if err == nil {
		err = s.storage.Set(keyUser, string(raw))
	}
	if err != nil {
		s.logger.Warn("persisting session failed", zap.Error(err))
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Debug("session user updated", zap.Int64("user_id", user.ID))
	s.notify(snap)
}

// Logout clears the pair and removes both persisted entries.
func (s *Store) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	if err := s.storage.Delete(keyUser); err != nil {
		s.logger.Warn("clearing persisted user failed", zap.Error(err))
	}
	if err := s.storage.Delete(keyToken); err != nil {
		s.logger.Warn("clearing persisted token failed", zap.Error(err))
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.logger.Info("logged out")
	s.notify(snap)
}

// Current returns a snapshot of the session pair.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Token returns the raw bearer token, or "" when anonymous.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user, or nil when anonymous.
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated is true iff both fields are set and the token has not
// expired. It is computed on every call, never cached, so an expiring token
// flips the answer without any background timer.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.token != "" && !tokenExpired(s.token, s.now())
}

// Subscribe registers fn to run after every login/logout. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Session)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) snapshotLocked() Session {
	snap := Session{Token: s.token}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	return snap
}

func (s *Store) notify(snap Session) {
	s.subMu.Lock()
	fns := make([]func(Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}
