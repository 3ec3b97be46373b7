// internal/market/flow.go
package market

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nice1tools/market-backend/internal/assets"
	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/models"
)

// Step is the observable progress of one flow execution. Callers branch on
// it, so it is an explicit value rather than something inferred from
// booleans.
type Step string

const (
	StepIdle         Step = "idle"
	StepRegistering  Step = "registering"
	StepTransferring Step = "transferring"
	StepCompleted    Step = "completed"
	StepError        Step = "error"
)

type FlowResult struct {
	Kind         models.FlowKind `json:"kind"`
	Product      string          `json:"product"`
	IntRef       uint64          `json:"int_ref"`
	ExtRef       uint64          `json:"ext_ref"`
	ReferenceID  uint64          `json:"reference_id"`
	Transferred  []uint64        `json:"transferred,omitempty"`
	Step         Step            `json:"step"`
	RegisterTxID string          `json:"register_tx_id,omitempty"`
	TransferTxID string          `json:"transfer_tx_id,omitempty"`
	Error        string          `json:"error,omitempty"`
}

// Flow orchestrates the two-transaction sequence that brings a grouped
// asset onto one of the license contracts: register the product and bind
// the reference token, then transfer the available stock.
type Flow struct {
	kind     models.FlowKind
	contract string
	cfg      config.ChainConfig
	store    FlowStore
	log      *logrus.Entry
}

func NewSaleFlow(cfg config.ChainConfig, store FlowStore) *Flow {
	return newFlow(models.FlowKindSale, cfg.SaleContract, cfg, store)
}

func NewRentalFlow(cfg config.ChainConfig, store FlowStore) *Flow {
	return newFlow(models.FlowKindRental, cfg.RentalContract, cfg, store)
}

func NewDemoFlow(cfg config.ChainConfig, store FlowStore) *Flow {
	return newFlow(models.FlowKindDemo, cfg.DemoContract, cfg, store)
}

func newFlow(kind models.FlowKind, contract string, cfg config.ChainConfig, store FlowStore) *Flow {
	if store == nil {
		store = NewMemoryFlowStore()
	}
	return &Flow{
		kind:     kind,
		contract: contract,
		cfg:      cfg,
		store:    store,
		log:      logrus.WithField("flow", string(kind)),
	}
}

func (f *Flow) Kind() models.FlowKind {
	return f.kind
}

// Execute runs the two-step protocol. Step one submits the product
// registration and the reference binding together in a single atomic
// transaction. Step two transfers the requested stock in an independent
// transaction whose memo carries the decimal IntRef, the only linkage the
// contract uses to attribute incoming stock.
//
// A step-one failure leaves no external state. A step-two failure leaves
// the product registered with zero stock; the persisted record stays at
// "registered" and Restock with the returned IntRef is the retry path. No
// rollback of step one exists or is attempted.
func (f *Flow) Execute(ctx context.Context, session chain.Session, asset assets.GroupedAsset, params FlowParams) (*FlowResult, error) {
	result := &FlowResult{Kind: f.kind, Step: StepIdle}

	if session == nil || session.Account() == "" {
		result.Step = StepError
		result.Error = chain.ErrNoSession.Message
		return result, chain.ErrNoSession
	}

	if err := params.Validate(f.kind); err != nil {
		result.Step = StepError
		result.Error = err.Error()
		return result, err
	}

	part, err := assets.Split(asset)
	if err != nil {
		verr := chain.NewError(chain.KindValidation, err.Error())
		result.Step = StepError
		result.Error = verr.Message
		return result, verr
	}

	if len(part.AvailableIDs) == 0 {
		verr := chain.NewError(chain.KindValidation,
			"single-copy asset: the reference token cannot be sold, rented or demoed")
		result.Step = StepError
		result.Error = verr.Message
		return result, verr
	}

	if params.Copies > len(part.AvailableIDs) {
		verr := chain.NewError(chain.KindValidation,
			fmt.Sprintf("requested %d copies but only %d are available", params.Copies, len(part.AvailableIDs)))
		result.Step = StepError
		result.Error = verr.Message
		return result, verr
	}

	refs, err := NewProductRefs()
	if err != nil {
		result.Step = StepError
		result.Error = err.Error()
		return result, fmt.Errorf("failed to generate product references: %w", err)
	}

	product := strings.ToLower(params.Product)
	result.Product = product
	result.IntRef = refs.IntRef
	result.ExtRef = refs.ExtRef
	result.ReferenceID = part.ReferenceID

	// Step one: register product and bind the reference token atomically.
	result.Step = StepRegistering
	registerActions := []chain.Action{
		f.setProductAction(session, product, refs, params),
		f.bindReferenceAction(session, refs.IntRef, part.ReferenceID),
	}

	registerTx, err := session.Transact(ctx, registerActions)
	if err != nil {
		nerr := chain.Normalize(err)
		result.Step = StepError
		result.Error = nerr.Message
		f.log.WithError(nerr).WithField("product", product).Warn("Product registration failed")
		return result, nerr
	}
	result.RegisterTxID = registerTx.TransactionID

	record := &models.FlowRecord{
		Account:      session.Account(),
		Kind:         f.kind,
		Product:      product,
		IntRef:       refs.IntRef,
		ExtRef:       refs.ExtRef,
		ReferenceID:  part.ReferenceID,
		Step:         models.RecordStepRegistered,
		RegisterTxID: registerTx.TransactionID,
	}
	if err := f.store.Save(record); err != nil {
		// Registration already happened on chain; losing the record must not
		// abort the transfer.
		f.log.WithError(err).Error("Failed to persist flow record")
	}

	// Step two: independent stock transfer, memo = IntRef.
	result.Step = StepTransferring
	stock := part.AvailableIDs[:params.Copies]
	result.Transferred = stock

	transferTx, err := session.Transact(ctx, []chain.Action{
		f.transferAction(session, stock, refs.IntRef),
	})
	if err != nil {
		nerr := chain.Normalize(err)
		result.Step = StepError
		result.Error = nerr.Message
		record.LastError = nerr.Message
		if uerr := f.store.Update(record); uerr != nil {
			f.log.WithError(uerr).Error("Failed to update flow record")
		}
		f.log.WithError(nerr).WithFields(logrus.Fields{
			"product": product,
			"int_ref": refs.IntRef,
		}).Warn("Stock transfer failed after registration; product is live with zero stock")
		return result, nerr
	}

	result.TransferTxID = transferTx.TransactionID
	result.Step = StepCompleted

	record.Step = models.RecordStepStocked
	record.TransferTxID = transferTx.TransactionID
	record.LastError = ""
	if err := f.store.Update(record); err != nil {
		f.log.WithError(err).Error("Failed to update flow record")
	}

	f.log.WithFields(logrus.Fields{
		"product": product,
		"int_ref": refs.IntRef,
		"stock":   len(stock),
	}).Info("Flow completed")

	return result, nil
}

// Restock transfers additional stock to the flow contract for an already
// registered product. Independently callable any number of times; it is
// also the manual retry path after a step-two failure.
func (f *Flow) Restock(ctx context.Context, session chain.Session, ids []uint64, intRef uint64) (*FlowResult, error) {
	result := &FlowResult{Kind: f.kind, IntRef: intRef, Step: StepIdle}

	if session == nil || session.Account() == "" {
		result.Step = StepError
		result.Error = chain.ErrNoSession.Message
		return result, chain.ErrNoSession
	}

	if len(ids) == 0 {
		verr := chain.NewError(chain.KindValidation, "no asset ids to transfer")
		result.Step = StepError
		result.Error = verr.Message
		return result, verr
	}

	result.Step = StepTransferring
	result.Transferred = ids

	transferTx, err := session.Transact(ctx, []chain.Action{
		f.transferAction(session, ids, intRef),
	})
	if err != nil {
		nerr := chain.Normalize(err)
		result.Step = StepError
		result.Error = nerr.Message
		return result, nerr
	}

	result.TransferTxID = transferTx.TransactionID
	result.Step = StepCompleted

	if record, err := f.store.FindByIntRef(intRef); err == nil {
		record.Step = models.RecordStepStocked
		record.TransferTxID = transferTx.TransactionID
		record.LastError = ""
		if uerr := f.store.Update(record); uerr != nil {
			f.log.WithError(uerr).Error("Failed to update flow record")
		}
	}

	return result, nil
}

// Records returns the persisted flow trail for the account, newest first in
// the database-backed store. The dashboard uses it to offer resuming flows
// stranded at the registered step.
func (f *Flow) Records(account string) ([]models.FlowRecord, error) {
	return f.store.ListByAccount(account)
}

func (f *Flow) setProductAction(session chain.Session, product string, refs ProductRefs, params FlowParams) chain.Action {
	data := map[string]interface{}{
		"owner":   session.Account(),
		"product": product,
		"int_ref": refs.IntRef,
		"ext_ref": refs.ExtRef,
	}

	switch f.kind {
	case models.FlowKindSale:
		data["price"] = formatAsset(params.Price, f.cfg)
		data["receiver1"] = params.Receiver1
		data["percentr1"] = params.Percent1
		data["receiver2"] = params.Receiver2
		data["percentr2"] = params.Percent2
	case models.FlowKindRental:
		data["price"] = formatAsset(params.Price, f.cfg)
		data["receiver1"] = params.Receiver1
		data["percentr1"] = params.Percent1
		data["receiver2"] = params.Receiver2
		data["percentr2"] = params.Percent2
		data["period"] = params.Period
	case models.FlowKindDemo:
		data["period"] = params.Period
	}

	return chain.Action{
		Account:       f.contract,
		Name:          "setproduct",
		Authorization: chain.Auth(session),
		Data:          data,
	}
}

func (f *Flow) bindReferenceAction(session chain.Session, intRef, referenceID uint64) chain.Action {
	return chain.Action{
		Account:       f.contract,
		Name:          "addproddata",
		Authorization: chain.Auth(session),
		Data: map[string]interface{}{
			"owner":    session.Account(),
			"int_ref":  intRef,
			"asset_id": referenceID,
		},
	}
}

func (f *Flow) transferAction(session chain.Session, ids []uint64, intRef uint64) chain.Action {
	return chain.Action{
		Account:       f.cfg.AssetContract,
		Name:          "transfer",
		Authorization: chain.Auth(session),
		Data: map[string]interface{}{
			"from":     session.Account(),
			"to":       f.contract,
			"assetids": ids,
			"memo":     strconv.FormatUint(intRef, 10),
		},
	}
}

func formatAsset(amount float64, cfg config.ChainConfig) string {
	return fmt.Sprintf("%.*f %s", cfg.TokenPrecision, amount, cfg.TokenSymbol)
}
