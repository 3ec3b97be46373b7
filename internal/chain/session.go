// internal/chain/session.go
package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nice1tools/market-backend/internal/config"
)

// RPCSession is the production Session: table reads go straight to the chain
// RPC, transactions are handed to the wallet bridge, which holds the user's
// authenticated wallet session, signs, broadcasts and returns the
// transaction id.
type RPCSession struct {
	account string
	cfg     config.ChainConfig
	client  *http.Client
}

func NewRPCSession(cfg config.ChainConfig, account string) *RPCSession {
	return &RPCSession{
		account: account,
		cfg:     cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *RPCSession) Account() string {
	return s.account
}

type tableRowsResponse struct {
	Rows []json.RawMessage `json:"rows"`
	More bool              `json:"more"`
}

func (s *RPCSession) GetTableRows(ctx context.Context, q TableQuery) ([]json.RawMessage, error) {
	if s.account == "" {
		return nil, ErrNoSession
	}

	payload := map[string]interface{}{
		"json":        true,
		"code":        q.Code,
		"table":       q.Table,
		"scope":       q.Scope,
		"limit":       q.Limit,
		"reverse":     q.Reverse,
		"show_payer":  q.ShowPayer,
		"lower_bound": q.LowerBound,
		"upper_bound": q.UpperBound,
	}

	body, err := s.post(ctx, s.cfg.RPCURL+"/v1/chain/get_table_rows", payload)
	if err != nil {
		return nil, err
	}

	var resp tableRowsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, NewError(KindTransactionFailed, fmt.Sprintf("malformed table rows response: %v", err))
	}

	return resp.Rows, nil
}

func (s *RPCSession) Transact(ctx context.Context, actions []Action) (*TransactResult, error) {
	if s.account == "" {
		return nil, ErrNoSession
	}

	payload := map[string]interface{}{
		"account": s.account,
		"actions": actions,
	}

	body, err := s.post(ctx, s.cfg.BridgeURL+"/v1/bridge/transact", payload)
	if err != nil {
		return nil, err
	}

	var result TransactResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, NewError(KindTransactionFailed, fmt.Sprintf("malformed transact response: %v", err))
	}

	if result.TransactionID == "" {
		return nil, NewError(KindTransactionFailed, "bridge returned no transaction id")
	}

	logrus.WithFields(logrus.Fields{
		"account":        s.account,
		"actions":        len(actions),
		"transaction_id": result.TransactionID,
	}).Info("Transaction broadcast")

	return &result, nil
}

func (s *RPCSession) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, NewError(KindValidation, fmt.Sprintf("failed to encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, NewError(KindTransactionFailed, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewError(KindTransactionFailed, err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(KindTransactionFailed, err.Error())
	}

	if resp.StatusCode != http.StatusOK {
		msg := ExtractMessage(body)
		if isTableNotFoundMessage(msg) {
			return nil, NewError(KindNotFound, msg)
		}
		return nil, NewError(KindTransactionFailed, msg)
	}

	return body, nil
}

// Bridge is a thin client for the wallet bridge's session-verification
// endpoint, used at login to check a wallet proof before a token is issued.
type Bridge struct {
	url    string
	client *http.Client
}

func NewBridge(cfg config.ChainConfig) *Bridge {
	return &Bridge{
		url:    cfg.BridgeURL,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (b *Bridge) VerifyProof(ctx context.Context, account, proof string) error {
	payload := map[string]interface{}{
		"account": account,
		"proof":   proof,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return NewError(KindValidation, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url+"/v1/bridge/verify", bytes.NewReader(data))
	if err != nil {
		return NewError(KindTransactionFailed, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return NewError(KindTransactionFailed, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return NewError(KindNoSession, ExtractMessage(body))
	}

	return nil
}
