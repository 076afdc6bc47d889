package auth

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Session is one persisted login. Tokens are revocable: logout deletes the
// row and the middleware refuses tokens whose row is gone or expired.
type Session struct {
	Token     string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	ExpiresAt time.Time `gorm:"not null" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Migrate creates the session table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Session{})
}

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore persists and resolves login sessions.
type SessionStore struct {
	DB *gorm.DB
}

func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{DB: db}
}

func (s *SessionStore) Create(ctx context.Context, token string, userID uint, expiresAt time.Time) error {
	sess := Session{Token: token, UserID: userID, ExpiresAt: expiresAt}
	return s.DB.WithContext(ctx).Create(&sess).Error
}

// Find returns the session only while it is unexpired.
func (s *SessionStore) Find(ctx context.Context, token string) (*Session, error) {
	var sess Session
	err := s.DB.WithContext(ctx).
		Where("token = ? AND expires_at > ?", token, time.Now()).
		First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.DB.WithContext(ctx).Delete(&Session{}, "token = ?", token).Error
}

// DeleteExpired clears out stale rows; callers may run it opportunistically.
func (s *SessionStore) DeleteExpired(ctx context.Context) error {
	return s.DB.WithContext(ctx).Where("expires_at <= ?", time.Now()).Delete(&Session{}).Error
}
