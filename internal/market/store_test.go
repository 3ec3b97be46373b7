// internal/market/store_test.go
package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nice1tools/market-backend/internal/models"
)

func TestMemoryFlowStoreListNewestFirst(t *testing.T) {
	store := NewMemoryFlowStore()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, intRef := range []uint64{11111111, 22222222, 33333333} {
		record := &models.FlowRecord{
			Account: "alice",
			Kind:    models.FlowKindSale,
			Product: "sword",
			IntRef:  intRef,
			Step:    models.RecordStepStocked,
		}
		record.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Save(record))
	}

	records, err := store.ListByAccount("alice")
	require.NoError(t, err)

	require.Len(t, records, 3)
	assert.Equal(t, uint64(33333333), records[0].IntRef)
	assert.Equal(t, uint64(22222222), records[1].IntRef)
	assert.Equal(t, uint64(11111111), records[2].IntRef)
}

func TestMemoryFlowStoreCopiesRecords(t *testing.T) {
	store := NewMemoryFlowStore()

	record := &models.FlowRecord{Account: "alice", IntRef: 12345678, Step: models.RecordStepRegistered}
	require.NoError(t, store.Save(record))

	// Mutating the caller's struct must not leak into the store.
	record.Step = models.RecordStepStocked

	stored, err := store.FindByIntRef(12345678)
	require.NoError(t, err)
	assert.Equal(t, models.RecordStepRegistered, stored.Step)
}
