// internal/models/flow_record.go
package models

// FlowRecord is the persisted trail of one two-step flow execution. It is
// written after the register transaction succeeds and advanced after the
// stock transfer, so a flow that failed between the two steps can be found
// and resumed after a reload or process restart.
type FlowRecord struct {
	BaseModel
	Account      string     `json:"account" gorm:"size:13;not null;index"`
	Kind         FlowKind   `json:"kind" gorm:"type:varchar(10);not null;index"`
	Product      string     `json:"product" gorm:"size:255;not null"`
	IntRef       uint64     `json:"int_ref" gorm:"uniqueIndex;not null"`
	ExtRef       uint64     `json:"ext_ref" gorm:"not null"`
	ReferenceID  uint64     `json:"reference_id" gorm:"not null"`
	Step         RecordStep `json:"step" gorm:"type:varchar(20);not null;index"`
	RegisterTxID string     `json:"register_tx_id" gorm:"size:64"`
	TransferTxID string     `json:"transfer_tx_id" gorm:"size:64"`
	LastError    string     `json:"last_error,omitempty" gorm:"type:text"`
}
