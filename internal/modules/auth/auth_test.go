package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mx-space/landing/internal/models"
	jwtpkg "github.com/mx-space/landing/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type memSession struct {
	userID  string
	expires time.Time
	revoked *time.Time
	touched int
}

// memRepository is an in-process Repository for tests.
type memRepository struct {
	mu       sync.Mutex
	users    map[string]*models.UserModel
	sessions map[string]*memSession
}

var _ Repository = (*memRepository)(nil)

func newMemRepository() *memRepository {
	return &memRepository{users: map[string]*models.UserModel{}, sessions: map[string]*memSession{}}
}

func (r *memRepository) UserByUsername(_ context.Context, username string) (*models.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memRepository) UserByID(_ context.Context, id string) (*models.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *memRepository) CountUsers(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

func (r *memRepository) CreateUser(_ context.Context, u *models.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memRepository) RecordLogin(_ context.Context, userID, ip string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[userID]; ok {
		u.LastLoginIP = ip
		u.LastLoginTime = &at
	}
	return nil
}

func (r *memRepository) IssueSession(_ context.Context, userID, _, _ string, ttl time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.NewString()
	r.sessions[id] = &memSession{userID: userID, expires: time.Now().Add(ttl)}
	return jwtpkg.SignSession(userID, id, ttl)
}

func (r *memRepository) SessionActive(_ context.Context, userID, sessionID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[sessionID]
	return ok && s.userID == userID && s.revoked == nil && s.expires.After(time.Now()), nil
}

func (r *memRepository) TouchSession(_ context.Context, _, sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok {
		s.touched++
	}
}

func (r *memRepository) RevokeSession(_ context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[sessionID]; ok && s.userID == userID {
		now := time.Now()
		s.revoked = &now
	}
	return nil
}

func (r *memRepository) PurgeSessions(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.sessions {
		if s.expires.Before(cutoff) || (s.revoked != nil && s.revoked.Before(cutoff)) {
			delete(r.sessions, id)
			n++
		}
	}
	return n, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, WithBcryptCost(bcrypt.MinCost))
}
