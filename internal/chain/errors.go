// internal/chain/errors.go
package chain

import (
	"encoding/json"
	"errors"
	"strings"
)

type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNoSession         ErrorKind = "no-session"
	KindTransactionFailed ErrorKind = "transaction-failed"
	KindNotFound          ErrorKind = "not-found"
)

// Error is the flat, string-message error every chain-touching operation
// surfaces. Kind is the only structure callers branch on.
type Error struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

func NewError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

var ErrNoSession = NewError(KindNoSession, "no active wallet session")

// rpcError mirrors the nested error body the chain RPC and wallet bridge
// return. Only the deepest available message is surfaced.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		What    string `json:"what"`
		Details []struct {
			Message string `json:"message"`
		} `json:"details"`
	} `json:"error"`
}

// ExtractMessage digs the human-readable message out of a raw RPC error
// body, falling back through the known shapes.
func ExtractMessage(body []byte) string {
	var re rpcError
	if err := json.Unmarshal(body, &re); err == nil {
		if len(re.Error.Details) > 0 && re.Error.Details[0].Message != "" {
			return re.Error.Details[0].Message
		}
		if re.Error.What != "" {
			return re.Error.What
		}
		if re.Message != "" {
			return re.Message
		}
	}
	return strings.TrimSpace(string(body))
}

// Normalize maps any error raised at the transact/read boundary onto the
// tagged error union. Already-normalized errors pass through unchanged.
func Normalize(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}

	msg := err.Error()
	if isTableNotFoundMessage(msg) {
		return NewError(KindNotFound, msg)
	}

	return NewError(KindTransactionFailed, msg)
}

// IsTableNotFound reports whether err is the normal "no data yet" condition:
// the queried table or scope does not exist on chain. The RPC only exposes
// this as message text, so the check is a substring heuristic kept in this
// one place.
func IsTableNotFound(err error) bool {
	if err == nil {
		return false
	}

	var ce *Error
	if errors.As(err, &ce) {
		if ce.Kind == KindNotFound {
			return true
		}
		return isTableNotFoundMessage(ce.Message)
	}

	return isTableNotFoundMessage(err.Error())
}

func isTableNotFoundMessage(msg string) bool {
	lower := strings.ToLower(msg)
	if !strings.Contains(lower, "not found") && !strings.Contains(lower, "unknown") {
		return false
	}
	return strings.Contains(lower, "table") || strings.Contains(lower, "scope")
}
