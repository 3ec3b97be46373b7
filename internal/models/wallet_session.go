// internal/models/wallet_session.go
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// WalletSession is one issued dashboard session. Only the bcrypt hash of the
// refresh token is stored.
type WalletSession struct {
	BaseModel
	Account          string     `json:"account" gorm:"size:13;not null;index"`
	RefreshTokenHash string     `json:"-" gorm:"size:60;not null"`
	ExpiresAt        time.Time  `json:"expires_at" gorm:"not null;index"`
	RevokedAt        *time.Time `json:"revoked_at,omitempty"`
	UserAgent        string     `json:"user_agent,omitempty" gorm:"size:255"`
	IPAddress        string     `json:"ip_address,omitempty" gorm:"size:45"`
}

func (s *WalletSession) SetRefreshToken(token string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.RefreshTokenHash = string(hash)
	return nil
}

func (s *WalletSession) CheckRefreshToken(token string) bool {
	return bcrypt.CompareHashAndPassword([]byte(s.RefreshTokenHash), []byte(token)) == nil
}

func (s *WalletSession) IsValid() bool {
	return s.RevokedAt == nil && time.Now().Before(s.ExpiresAt)
}
