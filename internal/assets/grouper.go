// internal/assets/grouper.go
package assets

import (
	"encoding/json"
	"strings"

	"github.com/nice1tools/market-backend/internal/chain"
)

const defaultName = "Unnamed"

// GroupedAsset is one logical product: every sassets row sharing name and
// category, folded together. IData/MData hold the parsed payloads of the
// first row seen under the key; payloads of later duplicates are discarded
// (first write wins, divergent payloads under the same key are lost, an
// accepted simplification of the grouping model).
type GroupedAsset struct {
	Name      string                 `json:"name"`
	Category  string                 `json:"category"`
	Author    string                 `json:"author"`
	Image     string                 `json:"image"`
	CopyCount int                    `json:"copy_count"`
	IDs       []uint64               `json:"ids"`
	IData     map[string]interface{} `json:"idata"`
	MData     map[string]interface{} `json:"mdata"`
}

// ParseAssetData decodes an idata/mdata payload. Malformed JSON decodes to
// an empty map, never an error.
func ParseAssetData(raw string) map[string]interface{} {
	parsed := make(map[string]interface{})
	if raw == "" {
		return parsed
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return make(map[string]interface{})
	}
	return parsed
}

// Group folds raw ledger rows into grouped assets keyed by name+category.
// Output order is the insertion order of first-seen keys. Pure: the input
// slice is never mutated.
func Group(raw []chain.RawAsset) []GroupedAsset {
	groups := make([]GroupedAsset, 0, len(raw))
	index := make(map[string]int, len(raw))

	for _, row := range raw {
		idata := ParseAssetData(row.IData)
		mdata := ParseAssetData(row.MData)

		name := defaultName
		if n, ok := idata["name"].(string); ok && n != "" {
			name = n
		}

		key := name + "-" + row.Category
		if i, ok := index[key]; ok {
			groups[i].CopyCount++
			groups[i].IDs = append(groups[i].IDs, row.ID)
			continue
		}

		index[key] = len(groups)
		groups = append(groups, GroupedAsset{
			Name:      name,
			Category:  row.Category,
			Author:    row.Author,
			Image:     deriveImage(idata, mdata),
			CopyCount: 1,
			IDs:       []uint64{row.ID},
			IData:     idata,
			MData:     mdata,
		})
	}

	return groups
}

// deriveImage picks the first non-empty of mdata.img and idata.img and
// normalizes bare IPFS hashes to an ipfs:// URI.
func deriveImage(idata, mdata map[string]interface{}) string {
	img := stringField(mdata, "img")
	if img == "" {
		img = stringField(idata, "img")
	}
	if img == "" {
		return ""
	}
	if !strings.Contains(img, "://") {
		return "ipfs://" + img
	}
	return img
}

func stringField(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}
