package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog-manager/core/manifest"
)

func TestImportContext_InQueue(t *testing.T) {
	game := &manifest.Game{Title: "Doom"}
	other := &manifest.Game{Title: "Quake"}

	ctx := NewImportContext(nil)
	ctx.Enqueue(&ImportItem{Key: "Game/1", Type: "Game", Record: game})

	assert.True(t, ctx.InQueue(game, "Game"))
	assert.False(t, ctx.InQueue(other, "Game"), "different record must not match")
	assert.False(t, ctx.InQueue(game, "Media"), "type must match too")
}

func TestImportContext_MatchesByIdentityNotValue(t *testing.T) {
	a := &manifest.Game{Title: "Same"}
	b := &manifest.Game{Title: "Same"}

	ctx := NewImportContext(nil)
	ctx.Enqueue(&ImportItem{Type: "Game", Record: a})

	assert.True(t, ctx.InQueue(a, "Game"))
	assert.False(t, ctx.InQueue(b, "Game"))
}

func TestImportContext_Items(t *testing.T) {
	ctx := NewImportContext(nil)
	ctx.Enqueue(&ImportItem{Key: "Tag/A", Type: "Tag"})
	ctx.Enqueue(&ImportItem{Key: "Game/1", Type: "Game"})

	items := ctx.Items()
	assert.Len(t, items, 2)
	assert.Equal(t, "Tag/A", items[0].Key, "enqueue order is preserved")
}
