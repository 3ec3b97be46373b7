// internal/assets/grouper_test.go
package assets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nice1tools/market-backend/internal/chain"
)

func TestGroupFoldsByNameAndCategory(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 100, Owner: "alice", Author: "alice", Category: "weapon", IData: `{"name":"Sword"}`, MData: `{"img":"QmHash1"}`},
		{ID: 101, Owner: "alice", Author: "alice", Category: "weapon", IData: `{"name":"Sword"}`, MData: `{"img":"QmHash1"}`},
		{ID: 102, Owner: "alice", Author: "alice", Category: "armor", IData: `{"name":"Shield"}`, MData: ""},
		{ID: 103, Owner: "alice", Author: "alice", Category: "weapon", IData: `{"name":"Sword"}`, MData: `{"img":"QmHash1"}`},
	}

	groups := Group(raw)

	assert.Len(t, groups, 2)

	sword := groups[0]
	assert.Equal(t, "Sword", sword.Name)
	assert.Equal(t, "weapon", sword.Category)
	assert.Equal(t, 3, sword.CopyCount)
	assert.Equal(t, []uint64{100, 101, 103}, sword.IDs)

	shield := groups[1]
	assert.Equal(t, "Shield", shield.Name)
	assert.Equal(t, "armor", shield.Category)
	assert.Equal(t, 1, shield.CopyCount)
	assert.Equal(t, []uint64{102}, shield.IDs)
}

func TestGroupCopyCountMatchesIDs(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "a", IData: `{"name":"X"}`},
		{ID: 2, Category: "a", IData: `{"name":"X"}`},
		{ID: 3, Category: "b", IData: `{"name":"X"}`},
		{ID: 4, Category: "a", IData: `{"name":"Y"}`},
	}

	for _, g := range Group(raw) {
		assert.Equal(t, g.CopyCount, len(g.IDs))
	}
}

func TestGroupSameNameDifferentCategory(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "weapon", IData: `{"name":"Sword"}`},
		{ID: 2, Category: "relic", IData: `{"name":"Sword"}`},
	}

	groups := Group(raw)
	assert.Len(t, groups, 2)
}

func TestGroupUnnamedDefault(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "misc", IData: ""},
		{ID: 2, Category: "misc", IData: `{"level":3}`},
		{ID: 3, Category: "misc", IData: `not-json`},
	}

	groups := Group(raw)

	// All three fold under the default name within the category.
	assert.Len(t, groups, 1)
	assert.Equal(t, "Unnamed", groups[0].Name)
	assert.Equal(t, 3, groups[0].CopyCount)
}

func TestGroupFirstWriteWinsPayloads(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "weapon", IData: `{"name":"Sword","damage":10}`},
		{ID: 2, Category: "weapon", IData: `{"name":"Sword","damage":99}`},
	}

	groups := Group(raw)

	assert.Len(t, groups, 1)
	assert.Equal(t, float64(10), groups[0].IData["damage"])
}

func TestGroupPreservesInsertionOrder(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "c", IData: `{"name":"Gamma"}`},
		{ID: 2, Category: "a", IData: `{"name":"Alpha"}`},
		{ID: 3, Category: "b", IData: `{"name":"Beta"}`},
		{ID: 4, Category: "c", IData: `{"name":"Gamma"}`},
	}

	groups := Group(raw)

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Gamma", "Alpha", "Beta"}, names)
}

func TestGroupDeterministic(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 5, Category: "x", IData: `{"name":"A"}`},
		{ID: 6, Category: "y", IData: `{"name":"B"}`},
		{ID: 7, Category: "x", IData: `{"name":"A"}`},
	}

	assert.Equal(t, Group(raw), Group(raw))
}

func TestGroupDoesNotMutateInput(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "x", IData: `{"name":"A"}`},
		{ID: 2, Category: "x", IData: `{"name":"A"}`},
	}
	snapshot := make([]chain.RawAsset, len(raw))
	copy(snapshot, raw)

	Group(raw)

	assert.Equal(t, snapshot, raw)
}

func TestGroupEmptyInput(t *testing.T) {
	groups := Group(nil)
	assert.NotNil(t, groups)
	assert.Empty(t, groups)
}

func TestDeriveImagePrefersMData(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "x", IData: `{"name":"A","img":"QmFromIData"}`, MData: `{"img":"QmFromMData"}`},
	}

	groups := Group(raw)
	assert.Equal(t, "ipfs://QmFromMData", groups[0].Image)
}

func TestDeriveImageFallsBackToIData(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "x", IData: `{"name":"A","img":"QmFromIData"}`, MData: `{}`},
	}

	groups := Group(raw)
	assert.Equal(t, "ipfs://QmFromIData", groups[0].Image)
}

func TestDeriveImageKeepsFullURLs(t *testing.T) {
	raw := []chain.RawAsset{
		{ID: 1, Category: "x", IData: `{"name":"A"}`, MData: `{"img":"https://cdn.example.com/a.png"}`},
	}

	groups := Group(raw)
	assert.Equal(t, "https://cdn.example.com/a.png", groups[0].Image)
}

func TestParseAssetDataMalformed(t *testing.T) {
	assert.Empty(t, ParseAssetData(""))
	assert.Empty(t, ParseAssetData("not-json"))
	assert.Empty(t, ParseAssetData("[1,2,3]"))

	parsed := ParseAssetData(`{"name":"Sword"}`)
	assert.Equal(t, "Sword", parsed["name"])
}
