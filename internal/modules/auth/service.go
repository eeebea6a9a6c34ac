package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mx-space/landing/internal/models"
	jwtpkg "github.com/mx-space/landing/internal/pkg/jwt"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL = 30 * 24 * time.Hour
	// sessionRetention keeps revoked and expired rows around for auditing.
	sessionRetention = 7 * 24 * time.Hour
)

type Service struct {
	repo   Repository
	ttl    time.Duration
	cost   int
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithBcryptCost lowers the hashing cost, used by tests.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.cost = cost }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger.Named("AuthService")
		}
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		ttl:    DefaultSessionTTL,
		cost:   bcrypt.DefaultCost,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SessionTTL is how long issued tokens stay valid.
func (s *Service) SessionTTL() time.Duration { return s.ttl }

func (s *Service) Login(ctx context.Context, username, password, ip, ua string) (string, *models.UserModel, error) {
	u, err := s.repo.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", nil, err
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		s.logger.Warn("login rejected", zap.String("username", u.Username), zap.String("ip", ip))
		return "", nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.RecordLogin(ctx, u.ID, ip, now); err != nil {
		s.logger.Warn("record login failed", zap.String("user", u.ID), zap.Error(err))
	}
	u.LastLoginTime = &now
	u.LastLoginIP = ip

	token, err := s.repo.IssueSession(ctx, u.ID, ip, ua, s.ttl)
	if err != nil {
		return "", nil, fmt.Errorf("issue session: %w", err)
	}
	s.logger.Info("signed in", zap.String("user", u.ID), zap.String("ip", ip))
	return token, u, nil
}

// Register creates the owner account. It only succeeds while no user exists.
func (s *Service) Register(ctx context.Context, dto *RegisterDTO) (*models.UserModel, error) {
	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyRegistered
	}
	return s.CreateUser(ctx, dto.Username, dto.Password, dto.Name, models.RoleOwner)
}

// CreateUser adds an account with the given role.
func (s *Service) CreateUser(ctx context.Context, username, password, name string, role models.UserRole) (*models.UserModel, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("username and password are required")
	}
	existing, err := s.repo.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name == "" {
		name = username
	}
	if role == "" {
		role = models.RoleEditor
	}
	u := &models.UserModel{Username: username, Password: string(hash), Name: name, Role: role}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user created", zap.String("user", u.ID), zap.String("role", string(role)))
	return u, nil
}

func (s *Service) Logout(ctx context.Context, userID, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.repo.RevokeSession(ctx, userID, sessionID)
}

func (s *Service) User(ctx context.Context, id string) (*models.UserModel, error) {
	return s.repo.UserByID(ctx, id)
}

// ValidateToken checks the signature and that the bound session is still active.
func (s *Service) ValidateToken(ctx context.Context, token string) (*jwtpkg.Claims, error) {
	claims, err := jwtpkg.Parse(token)
	if err != nil {
		return nil, err
	}
	active, err := s.repo.SessionActive(ctx, claims.UserID, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, ErrInvalidToken
	}
	s.repo.TouchSession(ctx, claims.UserID, claims.SessionID)
	return claims, nil
}

// PurgeSessions drops sessions that ended more than a week ago.
func (s *Service) PurgeSessions(ctx context.Context) (int64, error) {
	n, err := s.repo.PurgeSessions(ctx, s.now().Add(-sessionRetention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("purged sessions", zap.Int64("count", n))
	}
	return n, nil
}
