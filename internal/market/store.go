// internal/market/store.go
package market

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/nice1tools/market-backend/internal/models"
)

var ErrRecordNotFound = errors.New("flow record not found")

// FlowStore persists the resumable trail of two-step flow executions so a
// flow stranded between registration and stock transfer can be detected and
// resumed rather than silently lost.
type FlowStore interface {
	Save(record *models.FlowRecord) error
	Update(record *models.FlowRecord) error
	FindByIntRef(intRef uint64) (*models.FlowRecord, error)
	ListByAccount(account string) ([]models.FlowRecord, error)
}

type GormFlowStore struct {
	db *gorm.DB
}

func NewGormFlowStore(db *gorm.DB) *GormFlowStore {
	return &GormFlowStore{db: db}
}

func (s *GormFlowStore) Save(record *models.FlowRecord) error {
	if err := s.db.Create(record).Error; err != nil {
		return fmt.Errorf("failed to save flow record: %w", err)
	}
	return nil
}

func (s *GormFlowStore) Update(record *models.FlowRecord) error {
	if err := s.db.Save(record).Error; err != nil {
		return fmt.Errorf("failed to update flow record: %w", err)
	}
	return nil
}

func (s *GormFlowStore) FindByIntRef(intRef uint64) (*models.FlowRecord, error) {
	var record models.FlowRecord
	if err := s.db.Where("int_ref = ?", intRef).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &record, nil
}

func (s *GormFlowStore) ListByAccount(account string) ([]models.FlowRecord, error) {
	var records []models.FlowRecord
	if err := s.db.Where("account = ?", account).
		Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return records, nil
}

// MemoryFlowStore keeps records in process memory. Used when no database is
// configured, and by tests.
type MemoryFlowStore struct {
	mtx     sync.RWMutex
	records map[uint64]*models.FlowRecord
}

func NewMemoryFlowStore() *MemoryFlowStore {
	return &MemoryFlowStore{records: make(map[uint64]*models.FlowRecord)}
}

func (s *MemoryFlowStore) Save(record *models.FlowRecord) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	cp := *record
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.records[record.IntRef] = &cp
	return nil
}

func (s *MemoryFlowStore) Update(record *models.FlowRecord) error {
	return s.Save(record)
}

func (s *MemoryFlowStore) FindByIntRef(intRef uint64) (*models.FlowRecord, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	record, ok := s.records[intRef]
	if !ok {
		return nil, ErrRecordNotFound
	}
	cp := *record
	return &cp, nil
}

func (s *MemoryFlowStore) ListByAccount(account string) ([]models.FlowRecord, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	var records []models.FlowRecord
	for _, record := range s.records {
		if record.Account == account {
			records = append(records, *record)
		}
	}
	// Newest first, matching the database-backed store.
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
