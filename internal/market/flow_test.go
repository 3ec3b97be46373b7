// internal/market/flow_test.go
package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nice1tools/market-backend/internal/assets"
	"github.com/nice1tools/market-backend/internal/chain"
	"github.com/nice1tools/market-backend/internal/config"
	"github.com/nice1tools/market-backend/internal/models"
)

// mockSession records every submitted transaction and can be programmed to
// fail at a given call index.
type mockSession struct {
	account      string
	transactions [][]chain.Action
	failAt       int // 1-based call index to fail at; 0 never fails
	failWith     error
}

func (m *mockSession) Account() string { return m.account }

func (m *mockSession) GetTableRows(ctx context.Context, q chain.TableQuery) ([]json.RawMessage, error) {
	return nil, nil
}

func (m *mockSession) Transact(ctx context.Context, actions []chain.Action) (*chain.TransactResult, error) {
	m.transactions = append(m.transactions, actions)
	if m.failAt > 0 && len(m.transactions) == m.failAt {
		if m.failWith != nil {
			return nil, m.failWith
		}
		return nil, errors.New("transaction declined by wallet")
	}
	return &chain.TransactResult{
		TransactionID: fmt.Sprintf("tx-%d", len(m.transactions)),
	}, nil
}

func testChainConfig() config.ChainConfig {
	return config.ChainConfig{
		AssetContract:  "nice2simplea",
		SaleContract:   "n1licensepos",
		RentalContract: "n1licenseren",
		DemoContract:   "n1licensedem",
		TokenSymbol:    "NICEONE",
		TokenPrecision: 4,
	}
}

func testGroup(ids ...uint64) assets.GroupedAsset {
	return assets.GroupedAsset{
		Name:      "Sword",
		Category:  "weapon",
		CopyCount: len(ids),
		IDs:       ids,
	}
}

func saleParams(copies int) FlowParams {
	return FlowParams{
		Product:   "Sword",
		Price:     5.5,
		Receiver1: "alice",
		Percent1:  80,
		Copies:    copies,
	}
}

func TestSaleFlowCompletes(t *testing.T) {
	session := &mockSession{account: "alice"}
	store := NewMemoryFlowStore()
	flow := NewSaleFlow(testChainConfig(), store)

	result, err := flow.Execute(context.Background(), session, testGroup(300, 100, 200), saleParams(2))
	require.NoError(t, err)

	assert.Equal(t, StepCompleted, result.Step)
	assert.Equal(t, "sword", result.Product)
	assert.Equal(t, uint64(100), result.ReferenceID)
	assert.Equal(t, []uint64{200, 300}, result.Transferred)
	assert.NotEmpty(t, result.RegisterTxID)
	assert.NotEmpty(t, result.TransferTxID)
	assert.NotEqual(t, result.RegisterTxID, result.TransferTxID)

	record, err := store.FindByIntRef(result.IntRef)
	require.NoError(t, err)
	assert.Equal(t, models.RecordStepStocked, record.Step)
}

func TestSaleFlowRegistrationIsAtomic(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200), saleParams(1))
	require.NoError(t, err)

	// First transaction carries setproduct and addproddata together.
	require.Len(t, session.transactions, 2)
	register := session.transactions[0]
	require.Len(t, register, 2)
	assert.Equal(t, "setproduct", register[0].Name)
	assert.Equal(t, "n1licensepos", register[0].Account)
	assert.Equal(t, "addproddata", register[1].Name)
	assert.Equal(t, result.ReferenceID, register[1].Data["asset_id"])
	assert.Equal(t, result.IntRef, register[1].Data["int_ref"])
}

func TestSaleFlowTransferMemoCarriesIntRef(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200, 300), saleParams(2))
	require.NoError(t, err)

	transfer := session.transactions[1]
	require.Len(t, transfer, 1)
	assert.Equal(t, "transfer", transfer[0].Name)
	assert.Equal(t, "nice2simplea", transfer[0].Account)
	assert.Equal(t, "n1licensepos", transfer[0].Data["to"])
	assert.Equal(t, strconv.FormatUint(result.IntRef, 10), transfer[0].Data["memo"])
	assert.Equal(t, []uint64{200, 300}, transfer[0].Data["assetids"])
}

func TestSaleFlowPriceFormatting(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	_, err := flow.Execute(context.Background(), session, testGroup(100, 200), saleParams(1))
	require.NoError(t, err)

	setproduct := session.transactions[0][0]
	assert.Equal(t, "5.5000 NICEONE", setproduct.Data["price"])
}

func TestFlowRefsWithinRange(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200), saleParams(1))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, result.IntRef, uint64(10_000_000))
	assert.LessOrEqual(t, result.IntRef, uint64(99_999_999))
	assert.GreaterOrEqual(t, result.ExtRef, uint64(10_000_000))
	assert.LessOrEqual(t, result.ExtRef, uint64(99_999_999))
}

func TestFlowNoSession(t *testing.T) {
	flow := NewSaleFlow(testChainConfig(), nil)

	result, err := flow.Execute(context.Background(), nil, testGroup(100, 200), saleParams(1))
	require.Error(t, err)

	var cerr *chain.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, chain.KindNoSession, cerr.Kind)
	assert.Equal(t, StepError, result.Step)
}

func TestFlowRefusesSingleCopyGroup(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	_, err := flow.Execute(context.Background(), session, testGroup(42), saleParams(1))
	require.Error(t, err)

	var cerr *chain.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, chain.KindValidation, cerr.Kind)
	assert.Empty(t, session.transactions)
}

func TestFlowRefusesOverAllocation(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	_, err := flow.Execute(context.Background(), session, testGroup(100, 200), saleParams(5))
	require.Error(t, err)

	var cerr *chain.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, chain.KindValidation, cerr.Kind)
	assert.Empty(t, session.transactions)
}

func TestFlowRegistrationFailureLeavesNoRecord(t *testing.T) {
	session := &mockSession{account: "alice", failAt: 1}
	store := NewMemoryFlowStore()
	flow := NewSaleFlow(testChainConfig(), store)

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200), saleParams(1))
	require.Error(t, err)

	assert.Equal(t, StepError, result.Step)
	assert.Empty(t, result.RegisterTxID)

	records, err := store.ListByAccount("alice")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFlowTransferFailureLeavesRegisteredRecord(t *testing.T) {
	session := &mockSession{account: "alice", failAt: 2}
	store := NewMemoryFlowStore()
	flow := NewSaleFlow(testChainConfig(), store)

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200, 300), saleParams(2))
	require.Error(t, err)

	// Registration went through; no rollback is attempted.
	assert.Equal(t, StepError, result.Step)
	assert.NotEmpty(t, result.RegisterTxID)
	assert.Empty(t, result.TransferTxID)
	require.Len(t, session.transactions, 2)

	record, ferr := store.FindByIntRef(result.IntRef)
	require.NoError(t, ferr)
	assert.Equal(t, models.RecordStepRegistered, record.Step)
	assert.NotEmpty(t, record.LastError)
}

func TestRestockResumesStrandedFlow(t *testing.T) {
	session := &mockSession{account: "alice", failAt: 2}
	store := NewMemoryFlowStore()
	flow := NewSaleFlow(testChainConfig(), store)

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200, 300), saleParams(2))
	require.Error(t, err)

	// Retry with the same IntRef succeeds and advances the record.
	session.failAt = 0
	restock, err := flow.Restock(context.Background(), session, []uint64{200, 300}, result.IntRef)
	require.NoError(t, err)

	assert.Equal(t, StepCompleted, restock.Step)
	assert.Equal(t, result.IntRef, restock.IntRef)

	record, err := store.FindByIntRef(result.IntRef)
	require.NoError(t, err)
	assert.Equal(t, models.RecordStepStocked, record.Step)
	assert.Empty(t, record.LastError)
}

func TestRestockWithoutIDs(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	_, err := flow.Restock(context.Background(), session, nil, 12345678)
	require.Error(t, err)

	var cerr *chain.Error
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, chain.KindValidation, cerr.Kind)
}

func TestRentalFlowCarriesPeriod(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewRentalFlow(testChainConfig(), nil)

	params := saleParams(1)
	params.Period = 30

	_, err := flow.Execute(context.Background(), session, testGroup(100, 200), params)
	require.NoError(t, err)

	setproduct := session.transactions[0][0]
	assert.Equal(t, "n1licenseren", setproduct.Account)
	assert.Equal(t, uint(30), setproduct.Data["period"])
}

func TestDemoFlowOmitsPricing(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewDemoFlow(testChainConfig(), nil)

	params := FlowParams{Product: "Sword", Period: 7, Copies: 1}

	_, err := flow.Execute(context.Background(), session, testGroup(100, 200), params)
	require.NoError(t, err)

	setproduct := session.transactions[0][0]
	assert.Equal(t, "n1licensedem", setproduct.Account)
	assert.Equal(t, uint(7), setproduct.Data["period"])
	assert.NotContains(t, setproduct.Data, "price")
	assert.NotContains(t, setproduct.Data, "receiver1")
}

func TestFlowLowercasesProductName(t *testing.T) {
	session := &mockSession{account: "alice"}
	flow := NewSaleFlow(testChainConfig(), nil)

	params := saleParams(1)
	params.Product = "GoldenSword"

	result, err := flow.Execute(context.Background(), session, testGroup(100, 200), params)
	require.NoError(t, err)

	assert.Equal(t, "goldensword", result.Product)
	assert.Equal(t, "goldensword", session.transactions[0][0].Data["product"])
}
