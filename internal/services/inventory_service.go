// internal/services/inventory_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nice1tools/market-backend/internal/assets"
	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
)

type InventoryService struct {
	cfg *config.Config
	log *logrus.Entry
}

// GroupView is a grouped asset together with its reference/stock partition,
// which the dashboard renders as "1 reference + N sellable copies".
type GroupView struct {
	assets.GroupedAsset
	ReferenceID  uint64   `json:"reference_id"`
	AvailableIDs []uint64 `json:"available_ids"`
}

func NewInventoryService(cfg *config.Config) *InventoryService {
	return &InventoryService{
		cfg: cfg,
		log: logrus.WithField("component", "inventory"),
	}
}

// ListRawAssets fetches the account's sassets rows. A missing table or
// scope means the account simply owns nothing yet and yields an empty list.
func (s *InventoryService) ListRawAssets(ctx context.Context, session chain.Session) ([]chain.RawAsset, error) {
	if session == nil || session.Account() == "" {
		return nil, chain.ErrNoSession
	}

	rows, err := session.GetTableRows(ctx, chain.TableQuery{
		Code:  s.cfg.Chain.AssetContract,
		Table: "sassets",
		Scope: session.Account(),
		Limit: s.cfg.Chain.TableRowLimit,
	})
	if err != nil {
		if chain.IsTableNotFound(err) {
			return []chain.RawAsset{}, nil
		}
		return nil, fmt.Errorf("failed to fetch assets: %w", err)
	}

	rawAssets := make([]chain.RawAsset, 0, len(rows))
	for _, row := range rows {
		var asset chain.RawAsset
		if err := json.Unmarshal(row, &asset); err != nil {
			s.log.WithError(err).Warn("Skipping undecodable asset row")
			continue
		}
		rawAssets = append(rawAssets, asset)
	}

	return rawAssets, nil
}

// ListGrouped returns the account's inventory folded into logical products,
// each with its partition computed.
func (s *InventoryService) ListGrouped(ctx context.Context, session chain.Session) ([]GroupView, error) {
	rawAssets, err := s.ListRawAssets(ctx, session)
	if err != nil {
		return nil, err
	}

	grouped := assets.Group(rawAssets)
	views := make([]GroupView, 0, len(grouped))
	for _, group := range grouped {
		part, err := assets.Split(group)
		if err != nil {
			return nil, fmt.Errorf("failed to partition group %q: %w", group.Name, err)
		}
		views = append(views, GroupView{
			GroupedAsset: group,
			ReferenceID:  part.ReferenceID,
			AvailableIDs: part.AvailableIDs,
		})
	}

	return views, nil
}

type whitelistRow struct {
	Account string `json:"account"`
	User    string `json:"user"`
}

// IsWhitelisted checks the creator whitelist gating access to publisher
// features. A missing whitelist table is "not whitelisted", not an error.
func (s *InventoryService) IsWhitelisted(ctx context.Context, session chain.Session) (bool, error) {
	if session == nil || session.Account() == "" {
		return false, chain.ErrNoSession
	}

	rows, err := session.GetTableRows(ctx, chain.TableQuery{
		Code:       s.cfg.Chain.WhitelistContract,
		Table:      "gamedevwl",
		Scope:      s.cfg.Chain.WhitelistContract,
		LowerBound: session.Account(),
		Limit:      1,
	})
	if err != nil {
		if chain.IsTableNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check whitelist: %w", err)
	}

	for _, row := range rows {
		var entry whitelistRow
		if err := json.Unmarshal(row, &entry); err != nil {
			continue
		}
		if entry.Account == session.Account() || entry.User == session.Account() {
			return true, nil
		}
	}

	return false, nil
}
