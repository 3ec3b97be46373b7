// internal/chain/types.go
package chain

import (
	"context"
	"encoding/json"
)

// TableQuery describes one read against a contract table. Scope is usually
// the account whose rows are wanted.
type TableQuery struct {
	Code       string `json:"code"`
	Table      string `json:"table"`
	Scope      string `json:"scope"`
	Limit      int    `json:"limit,omitempty"`
	LowerBound string `json:"lower_bound,omitempty"`
	UpperBound string `json:"upper_bound,omitempty"`
	Reverse    bool   `json:"reverse,omitempty"`
	ShowPayer  bool   `json:"show_payer,omitempty"`
}

type PermissionLevel struct {
	Actor      string `json:"actor"`
	Permission string `json:"permission"`
}

// Action is one contract action descriptor as submitted to the wallet
// bridge for signing and broadcast.
type Action struct {
	Account       string                 `json:"account"`
	Name          string                 `json:"name"`
	Authorization []PermissionLevel      `json:"authorization"`
	Data          map[string]interface{} `json:"data"`
}

type TransactResult struct {
	TransactionID string `json:"transaction_id"`
}

// RawAsset is one sassets ledger row. IData is set at mint time and never
// changes; MData may be rewritten by the asset author.
type RawAsset struct {
	ID       uint64 `json:"id,string"`
	Owner    string `json:"owner"`
	Author   string `json:"author"`
	Category string `json:"category"`
	IData    string `json:"idata"`
	MData    string `json:"mdata"`
}

// Session is the wallet-session capability every contract-touching operation
// receives explicitly. Reads go to the chain RPC; Transact hands the actions
// to the user's wallet for signing and broadcast and suspends until the user
// approves or rejects.
type Session interface {
	Account() string
	GetTableRows(ctx context.Context, q TableQuery) ([]json.RawMessage, error)
	Transact(ctx context.Context, actions []Action) (*TransactResult, error)
}

// Auth builds the active-permission authorization for the session account.
func Auth(s Session) []PermissionLevel {
	return []PermissionLevel{{Actor: s.Account(), Permission: "active"}}
}
