// internal/market/refs.go
package market

import (
	"crypto/rand"
	"math/big"
)

const (
	refMin = 10_000_000
	refMax = 99_999_999
)

// ProductRefs are the two client-generated correlation numbers bound to a
// product registration: IntRef links stock transfers to the product through
// the transaction memo, ExtRef ties into the external reference system.
type ProductRefs struct {
	IntRef uint64 `json:"int_ref"`
	ExtRef uint64 `json:"ext_ref"`
}

// NewProductRefs draws two independent uniform 8-digit numbers. Uniqueness
// against existing products is not checked; the contract owns collision
// semantics. Centralized here so a pre-registration lookup has one seam if
// that ever changes.
func NewProductRefs() (ProductRefs, error) {
	intRef, err := randomRef()
	if err != nil {
		return ProductRefs{}, err
	}
	extRef, err := randomRef()
	if err != nil {
		return ProductRefs{}, err
	}
	return ProductRefs{IntRef: intRef, ExtRef: extRef}, nil
}

func randomRef() (uint64, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(refMax-refMin+1))
	if err != nil {
		return 0, err
	}
	return uint64(n.Int64()) + refMin, nil
}
