// internal/market/actions.go
package market

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nice1tools/market-backend/internal/assets"
	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/models"
)

// The chain runtime bounds how many actions fit in one transaction; larger
// batches are split across sequential transactions, each independently
// signed by the user.
const maxActionsPerTransaction = 50

// Executor wraps the single-transaction marketplace operations: product
// toggling and updates on the license contracts, burn/duplicate/modify on
// the asset contract. No operation retries on failure; the caller re-invokes.
type Executor struct {
	cfg       config.ChainConfig
	contracts map[models.FlowKind]string
	log       *logrus.Entry
}

func NewExecutor(cfg config.ChainConfig) *Executor {
	return &Executor{
		cfg: cfg,
		contracts: map[models.FlowKind]string{
			models.FlowKindSale:   cfg.SaleContract,
			models.FlowKindRental: cfg.RentalContract,
			models.FlowKindDemo:   cfg.DemoContract,
		},
		log: logrus.WithField("component", "executor"),
	}
}

// ToggleProduct flips a product's active flag on the flow contract.
func (e *Executor) ToggleProduct(ctx context.Context, session chain.Session, kind models.FlowKind, product string, intRef uint64) (string, error) {
	if session == nil || session.Account() == "" {
		return "", chain.ErrNoSession
	}

	contract, err := e.contract(kind)
	if err != nil {
		return "", err
	}

	return e.single(ctx, session, chain.Action{
		Account:       contract,
		Name:          "toggleprod",
		Authorization: chain.Auth(session),
		Data: map[string]interface{}{
			"owner":   session.Account(),
			"product": product,
			"int_ref": intRef,
		},
	})
}

func (e *Executor) UpdatePrice(ctx context.Context, session chain.Session, kind models.FlowKind, product string, intRef uint64, price float64) (string, error) {
	if session == nil || session.Account() == "" {
		return "", chain.ErrNoSession
	}
	if price <= 0 {
		return "", chain.NewError(chain.KindValidation, "price must be greater than zero")
	}

	contract, err := e.contract(kind)
	if err != nil {
		return "", err
	}

	return e.single(ctx, session, chain.Action{
		Account:       contract,
		Name:          "updateprice",
		Authorization: chain.Auth(session),
		Data: map[string]interface{}{
			"owner":   session.Account(),
			"product": product,
			"int_ref": intRef,
			"price":   formatAsset(price, e.cfg),
		},
	})
}

// UpdateSplit rewrites the two-receiver revenue split. Each percentage must
// lie in [0,100] and the pair must sum to at most 100.
func (e *Executor) UpdateSplit(ctx context.Context, session chain.Session, kind models.FlowKind, product string, intRef uint64, receiver1 string, percent1 uint, receiver2 string, percent2 uint) (string, error) {
	if session == nil || session.Account() == "" {
		return "", chain.ErrNoSession
	}
	if percent1 > 100 || percent2 > 100 {
		return "", chain.NewError(chain.KindValidation, "each revenue split must be between 0 and 100")
	}
	if percent1+percent2 > 100 {
		return "", chain.NewError(chain.KindValidation,
			fmt.Sprintf("revenue split sums to %d%%, must not exceed 100%%", percent1+percent2))
	}

	contract, err := e.contract(kind)
	if err != nil {
		return "", err
	}

	return e.single(ctx, session, chain.Action{
		Account:       contract,
		Name:          "updateperc",
		Authorization: chain.Auth(session),
		Data: map[string]interface{}{
			"owner":     session.Account(),
			"product":   product,
			"int_ref":   intRef,
			"receiver1": receiver1,
			"percentr1": percent1,
			"receiver2": receiver2,
			"percentr2": percent2,
		},
	})
}

func (e *Executor) SetDemoPeriod(ctx context.Context, session chain.Session, product string, intRef uint64, period uint) (string, error) {
	if session == nil || session.Account() == "" {
		return "", chain.ErrNoSession
	}
	if period == 0 {
		return "", chain.NewError(chain.KindValidation, "period must be at least one day")
	}

	return e.single(ctx, session, chain.Action{
		Account:       e.cfg.DemoContract,
		Name:          "setdemoper",
		Authorization: chain.Auth(session),
		Data: map[string]interface{}{
			"owner":   session.Account(),
			"product": product,
			"int_ref": intRef,
			"period":  period,
		},
	})
}

// BurnAssets destroys the given assets. Batches above the per-transaction
// cap are split across sequential transactions.
func (e *Executor) BurnAssets(ctx context.Context, session chain.Session, ids []uint64, memo string) ([]string, error) {
	if len(ids) == 0 {
		return nil, chain.NewError(chain.KindValidation, "no asset ids to burn")
	}
	if session == nil || session.Account() == "" {
		return nil, chain.ErrNoSession
	}

	actions := make([]chain.Action, 0, len(ids))
	for _, id := range ids {
		actions = append(actions, chain.Action{
			Account:       e.cfg.AssetContract,
			Name:          "burn",
			Authorization: chain.Auth(session),
			Data: map[string]interface{}{
				"owner":    session.Account(),
				"assetids": []uint64{id},
				"memo":     memo,
			},
		})
	}

	return e.submitBatched(ctx, session, actions)
}

// DuplicateAsset mints count additional copies of the group, reusing the
// seed row's immutable and mutable payloads.
func (e *Executor) DuplicateAsset(ctx context.Context, session chain.Session, asset assets.GroupedAsset, count int) ([]string, error) {
	if count < 1 {
		return nil, chain.NewError(chain.KindValidation, "copy count must be at least 1")
	}
	if session == nil || session.Account() == "" {
		return nil, chain.ErrNoSession
	}

	idata, err := encodeData(asset.IData)
	if err != nil {
		return nil, chain.NewError(chain.KindValidation, fmt.Sprintf("failed to encode idata: %v", err))
	}
	mdata, err := encodeData(asset.MData)
	if err != nil {
		return nil, chain.NewError(chain.KindValidation, fmt.Sprintf("failed to encode mdata: %v", err))
	}

	actions := make([]chain.Action, 0, count)
	for i := 0; i < count; i++ {
		actions = append(actions, chain.Action{
			Account:       e.cfg.AssetContract,
			Name:          "create",
			Authorization: chain.Auth(session),
			Data: map[string]interface{}{
				"author":       session.Account(),
				"category":     asset.Category,
				"owner":        session.Account(),
				"idata":        idata,
				"mdata":        mdata,
				"requireclaim": false,
			},
		})
	}

	return e.submitBatched(ctx, session, actions)
}

// ModifyAssetData rewrites the mutable payload of each asset. Only the
// author may do this; the contract enforces it.
func (e *Executor) ModifyAssetData(ctx context.Context, session chain.Session, owner string, ids []uint64, mdata map[string]interface{}) ([]string, error) {
	if len(ids) == 0 {
		return nil, chain.NewError(chain.KindValidation, "no asset ids to modify")
	}
	if session == nil || session.Account() == "" {
		return nil, chain.ErrNoSession
	}

	encoded, err := encodeData(mdata)
	if err != nil {
		return nil, chain.NewError(chain.KindValidation, fmt.Sprintf("failed to encode mdata: %v", err))
	}

	if owner == "" {
		owner = session.Account()
	}

	actions := make([]chain.Action, 0, len(ids))
	for _, id := range ids {
		actions = append(actions, chain.Action{
			Account:       e.cfg.AssetContract,
			Name:          "update",
			Authorization: chain.Auth(session),
			Data: map[string]interface{}{
				"author":  session.Account(),
				"owner":   owner,
				"assetid": id,
				"mdata":   encoded,
			},
		})
	}

	return e.submitBatched(ctx, session, actions)
}

// submitBatched splits actions into transaction-sized chunks and submits
// them strictly sequentially: the next chunk is not attempted until the
// previous one resolved. On failure the transaction ids already broadcast
// are returned alongside the error.
func (e *Executor) submitBatched(ctx context.Context, session chain.Session, actions []chain.Action) ([]string, error) {
	var txIDs []string

	for start := 0; start < len(actions); start += maxActionsPerTransaction {
		end := start + maxActionsPerTransaction
		if end > len(actions) {
			end = len(actions)
		}

		result, err := session.Transact(ctx, actions[start:end])
		if err != nil {
			return txIDs, chain.Normalize(err)
		}
		txIDs = append(txIDs, result.TransactionID)
	}

	return txIDs, nil
}

func (e *Executor) single(ctx context.Context, session chain.Session, action chain.Action) (string, error) {
	if session == nil || session.Account() == "" {
		return "", chain.ErrNoSession
	}

	result, err := session.Transact(ctx, []chain.Action{action})
	if err != nil {
		return "", chain.Normalize(err)
	}
	return result.TransactionID, nil
}

func (e *Executor) contract(kind models.FlowKind) (string, error) {
	contract, ok := e.contracts[kind]
	if !ok {
		return "", chain.NewError(chain.KindValidation, fmt.Sprintf("unknown flow kind %q", kind))
	}
	return contract, nil
}

func encodeData(data map[string]interface{}) (string, error) {
	if data == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
