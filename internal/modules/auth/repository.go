package auth

import (
	"context"
	"errors"
	"time"

	"github.com/mx-space/landing/internal/models"
	"github.com/mx-space/landing/internal/pkg/session"
	"gorm.io/gorm"
)

// Repository is the persistence the auth service needs. Lookups return
// (nil, nil) when the user does not exist.
type Repository interface {
	UserByUsername(ctx context.Context, username string) (*models.UserModel, error)
	UserByID(ctx context.Context, id string) (*models.UserModel, error)
	CountUsers(ctx context.Context) (int64, error)
	CreateUser(ctx context.Context, u *models.UserModel) error
	RecordLogin(ctx context.Context, userID, ip string, at time.Time) error

	IssueSession(ctx context.Context, userID, ip, ua string, ttl time.Duration) (string, error)
	SessionActive(ctx context.Context, userID, sessionID string) (bool, error)
	TouchSession(ctx context.Context, userID, sessionID string)
	RevokeSession(ctx context.Context, userID, sessionID string) error
	PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormRepository keeps users and sessions in MySQL.
type GormRepository struct{ db *gorm.DB }

var _ Repository = (*GormRepository)(nil)

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{db: db} }

func (r *GormRepository) UserByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *GormRepository) UserByID(ctx context.Context, id string) (*models.UserModel, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormRepository) first(ctx context.Context, query string, arg string) (*models.UserModel, error) {
	var u models.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.UserModel{}).Count(&count).Error
	return count, err
}

func (r *GormRepository) CreateUser(ctx context.Context, u *models.UserModel) error {
	return r.db.WithContext(ctx).Create(u).Error
}

func (r *GormRepository) RecordLogin(ctx context.Context, userID, ip string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", userID).
		Updates(map[string]interface{}{"last_login_time": at, "last_login_ip": ip}).Error
}

func (r *GormRepository) IssueSession(ctx context.Context, userID, ip, ua string, ttl time.Duration) (string, error) {
	token, _, err := session.Issue(ctx, r.db, userID, ip, ua, ttl)
	return token, err
}

func (r *GormRepository) SessionActive(ctx context.Context, userID, sessionID string) (bool, error) {
	return session.IsActive(ctx, r.db, userID, sessionID)
}

func (r *GormRepository) TouchSession(ctx context.Context, userID, sessionID string) {
	session.Touch(ctx, r.db, userID, sessionID)
}

func (r *GormRepository) RevokeSession(ctx context.Context, userID, sessionID string) error {
	return session.Revoke(ctx, r.db, userID, sessionID)
}

func (r *GormRepository) PurgeSessions(ctx context.Context, cutoff time.Time) (int64, error) {
	return session.PurgeExpired(ctx, r.db, cutoff)
}
