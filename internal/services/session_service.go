// internal/services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/models"
	"github.com/nice1tools/market-backend/internal/utils"
)

// SessionService issues dashboard sessions. The wallet bridge verifies the
// login proof (the user's wallet signed it); this service never touches key
// material itself.
type SessionService struct {
	db        *gorm.DB
	cfg       *config.Config
	bridge    *chain.Bridge
	inventory *InventoryService
}

type LoginRequest struct {
	Account string `json:"account" validate:"required,chain_account"`
	Proof   string `json:"proof" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Account      string `json:"account"`
	Whitelisted  bool   `json:"whitelisted"`
}

func NewSessionService(db *gorm.DB, cfg *config.Config, bridge *chain.Bridge, inventory *InventoryService) *SessionService {
	return &SessionService{
		db:        db,
		cfg:       cfg,
		bridge:    bridge,
		inventory: inventory,
	}
}

func (s *SessionService) Login(ctx context.Context, req *LoginRequest, userAgent, ipAddress string) (*TokenPair, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	if err := s.bridge.VerifyProof(ctx, req.Account, req.Proof); err != nil {
		return nil, fmt.Errorf("wallet proof rejected: %w", err)
	}

	// Whitelist membership is baked into the token so creator-only routes
	// skip a chain round-trip on every request.
	whitelisted := false
	if s.inventory != nil {
		rpcSession := chain.NewRPCSession(s.cfg.Chain, req.Account)
		if wl, err := s.inventory.IsWhitelisted(ctx, rpcSession); err == nil {
			whitelisted = wl
		} else {
			logrus.WithError(err).WithField("account", req.Account).Warn("Whitelist check failed during login")
		}
	}

	accessToken, err := utils.GenerateJWT(req.Account, whitelisted, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := utils.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	walletSession := &models.WalletSession{
		Account:   req.Account,
		ExpiresAt: time.Now().Add(time.Duration(s.cfg.JWT.RefreshTokenTTL) * time.Hour),
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}
	if err := walletSession.SetRefreshToken(refreshToken); err != nil {
		return nil, fmt.Errorf("failed to hash refresh token: %w", err)
	}

	if s.db != nil {
		if err := s.db.Create(walletSession).Error; err != nil {
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"account":     req.Account,
		"whitelisted": whitelisted,
	}).Info("Wallet session issued")

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      req.Account,
		Whitelisted:  whitelisted,
	}, nil
}

func (s *SessionService) Refresh(ctx context.Context, account, refreshToken string) (*TokenPair, error) {
	if s.db == nil {
		return nil, errors.New("session persistence is not configured")
	}

	var sessions []models.WalletSession
	if err := s.db.Where("account = ? AND revoked_at IS NULL AND expires_at > ?", account, time.Now()).
		Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	var matched *models.WalletSession
	for i := range sessions {
		if sessions[i].IsValid() && sessions[i].CheckRefreshToken(refreshToken) {
			matched = &sessions[i]
			break
		}
	}
	if matched == nil {
		return nil, errors.New("invalid refresh token")
	}

	whitelisted := false
	if s.inventory != nil {
		rpcSession := chain.NewRPCSession(s.cfg.Chain, account)
		if wl, err := s.inventory.IsWhitelisted(ctx, rpcSession); err == nil {
			whitelisted = wl
		}
	}

	accessToken, err := utils.GenerateJWT(account, whitelisted, s.cfg.JWT.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Account:      account,
		Whitelisted:  whitelisted,
	}, nil
}

func (s *SessionService) Logout(account string) error {
	if s.db == nil {
		return nil
	}

	now := time.Now()
	if err := s.db.Model(&models.WalletSession{}).
		Where("account = ? AND revoked_at IS NULL", account).
		Update("revoked_at", &now).Error; err != nil {
		return fmt.Errorf("failed to revoke sessions: %w", err)
	}
	return nil
}
