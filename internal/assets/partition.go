// internal/assets/partition.go
package assets

import (
	"errors"
	"sort"
)

// Partition splits a group's member IDs into the single reference ID and the
// transferable stock. The reference token anchors the product registration
// on chain and is never part of any transfer.
type Partition struct {
	ReferenceID  uint64   `json:"reference_id"`
	AvailableIDs []uint64 `json:"available_ids"`
}

var ErrEmptyGroup = errors.New("grouped asset has no member ids")

// Split partitions the group: IDs are copied, sorted ascending, the minimum
// becomes the reference and the rest are available stock. A single-copy
// group yields empty stock.
func Split(asset GroupedAsset) (Partition, error) {
	if len(asset.IDs) == 0 {
		return Partition{}, ErrEmptyGroup
	}

	sorted := make([]uint64, len(asset.IDs))
	copy(sorted, asset.IDs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	return Partition{
		ReferenceID:  sorted[0],
		AvailableIDs: sorted[1:],
	}, nil
}
