package session

import (
	"context"
	"strings"
	"time"

	"github.com/mx-space/landing/internal/models"
	jwtpkg "github.com/mx-space/landing/internal/pkg/jwt"
	"gorm.io/gorm"
)

const DefaultTTL = 30 * 24 * time.Hour

// Issue creates a DB session and signs a JWT bound to that session.
func Issue(ctx context.Context, db *gorm.DB, userID, ip, ua string, ttl time.Duration) (string, *models.UserSession, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &models.UserSession{
		UserID:    userID,
		IP:        strings.TrimSpace(ip),
		UA:        strings.TrimSpace(ua),
		ExpiresAt: time.Now().Add(ttl),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return "", nil, err
	}

	token, err := jwtpkg.SignSession(userID, s.ID, ttl)
	if err != nil {
		_ = db.WithContext(ctx).Delete(s).Error
		return "", nil, err
	}
	return token, s, nil
}

func IsActive(ctx context.Context, db *gorm.DB, userID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}

	var count int64
	err := db.WithContext(ctx).Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func Touch(ctx context.Context, db *gorm.DB, userID, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	_ = db.WithContext(ctx).Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL AND expires_at > ?", sessionID, userID, time.Now()).
		Update("updated_at", time.Now()).Error
}

func Revoke(ctx context.Context, db *gorm.DB, userID, sessionID string) error {
	now := time.Now()
	res := db.WithContext(ctx).Model(&models.UserSession{}).
		Where("id = ? AND user_id = ? AND revoked_at IS NULL", sessionID, userID).
		Update("revoked_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PurgeExpired hard-deletes sessions that expired or were revoked before cutoff.
func PurgeExpired(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).Unscoped().
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&models.UserSession{})
	return res.RowsAffected, res.Error
}
