// internal/chain/errors_test.go
package chain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractMessageDetail(t *testing.T) {
	body := []byte(`{"code":500,"message":"Internal Service Error","error":{"code":3050003,"name":"eosio_assert_message_exception","what":"eosio_assert_message assertion failure","details":[{"message":"assertion failure with message: product already exists"}]}}`)
	assert.Equal(t, "assertion failure with message: product already exists", ExtractMessage(body))
}

func TestExtractMessageWhatFallback(t *testing.T) {
	body := []byte(`{"code":500,"message":"Internal Service Error","error":{"what":"unknown key","details":[]}}`)
	assert.Equal(t, "unknown key", ExtractMessage(body))
}

func TestExtractMessageTopLevelFallback(t *testing.T) {
	body := []byte(`{"code":401,"message":"signature rejected"}`)
	assert.Equal(t, "signature rejected", ExtractMessage(body))
}

func TestExtractMessageNonJSON(t *testing.T) {
	assert.Equal(t, "bad gateway", ExtractMessage([]byte("  bad gateway\n")))
}

func TestNormalizePassesThrough(t *testing.T) {
	original := NewError(KindValidation, "price must be greater than zero")

	normalized := Normalize(original)
	assert.Same(t, original, normalized)

	wrapped := fmt.Errorf("executing flow: %w", original)
	assert.Same(t, original, Normalize(wrapped))
}

func TestNormalizeDefaultsToTransactionFailed(t *testing.T) {
	normalized := Normalize(errors.New("transaction declined by wallet"))
	require.NotNil(t, normalized)
	assert.Equal(t, KindTransactionFailed, normalized.Kind)
	assert.Equal(t, "transaction declined by wallet", normalized.Message)
}

func TestNormalizeDetectsMissingTable(t *testing.T) {
	normalized := Normalize(errors.New("table products not found in scope alice"))
	assert.Equal(t, KindNotFound, normalized.Kind)
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}

func TestIsTableNotFound(t *testing.T) {
	cases := []struct {
		msg   string
		match bool
	}{
		{"table products not found", true},
		{"Table Not Found", true},
		{"unknown table sassets", true},
		{"scope alice not found", true},
		{"unknown key in scope", true},
		{"account not found", false},
		{"unknown action", false},
		{"table is locked", false},
		{"insufficient funds", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.match, IsTableNotFound(errors.New(tc.msg)), tc.msg)
	}
}

func TestIsTableNotFoundTaggedError(t *testing.T) {
	assert.True(t, IsTableNotFound(NewError(KindNotFound, "anything at all")))
	assert.False(t, IsTableNotFound(NewError(KindValidation, "bad input")))
	assert.False(t, IsTableNotFound(nil))
}
