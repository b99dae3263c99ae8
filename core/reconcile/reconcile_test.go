package reconcile_test

import (
	"testing"

	"catalog-manager/core/reconcile"

	"github.com/stretchr/testify/assert"
)

type tag struct {
	Name    string
	Touched bool
}

func tagNames(tags []tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

func TestSync_CreateUpdateRemove(t *testing.T) {
	local := []tag{{Name: "Action"}, {Name: "RPG"}}
	remote := []string{"RPG", "Strategy"}

	got, res := reconcile.Sync(local, remote,
		func(l tag, r string) bool { return l.Name == r },
		func(l *tag, r string) { l.Touched = true },
		func(r string) tag { return tag{Name: r} },
	)

	assert.Equal(t, []string{"RPG", "Strategy"}, tagNames(got))
	assert.Equal(t, reconcile.Result{Created: 1, Updated: 1, Removed: 1}, res)
	assert.True(t, res.Dirty())

	// "RPG" must be the original member updated in place, not a replacement.
	assert.True(t, got[0].Touched)
	assert.False(t, got[1].Touched)
}

func TestSync_Idempotent(t *testing.T) {
	local := []tag{{Name: "Action"}}
	remote := []string{"Action", "Indie"}

	eq := func(l tag, r string) bool { return l.Name == r }
	upd := func(l *tag, r string) {}
	mk := func(r string) tag { return tag{Name: r} }

	first, res1 := reconcile.Sync(local, remote, eq, upd, mk)
	assert.Equal(t, 1, res1.Created)

	second, res2 := reconcile.Sync(first, remote, eq, upd, mk)
	assert.Equal(t, tagNames(first), tagNames(second))
	assert.Equal(t, 0, res2.Created)
	assert.Equal(t, 0, res2.Removed)
	assert.False(t, res2.Dirty())
}

func TestSync_EmptyRemoteRemovesAll(t *testing.T) {
	local := []tag{{Name: "A"}, {Name: "B"}}

	got, res := reconcile.Sync(local, nil,
		func(l tag, r string) bool { return l.Name == r },
		func(l *tag, r string) {},
		func(r string) tag { return tag{Name: r} },
	)

	assert.Empty(t, got)
	assert.Equal(t, 2, res.Removed)
}

func TestSync_DuplicateRemoteFirstMatchWins(t *testing.T) {
	// Two remote members matching the same local member is malformed input;
	// the documented behavior is first match wins and the duplicate is created.
	local := []tag{{Name: "A"}}
	remote := []string{"A", "A"}

	got, res := reconcile.Sync(local, remote,
		func(l tag, r string) bool { return l.Name == r && !l.Touched },
		func(l *tag, r string) { l.Touched = true },
		func(r string) tag { return tag{Name: r, Touched: true} },
	)

	assert.Len(t, got, 2)
	assert.Equal(t, 1, res.Created)
}

func TestSyncNames(t *testing.T) {
	local := []tag{{Name: "Co-op"}}

	got, res := reconcile.SyncNames(local, []string{"Co-op", "PvP"},
		func(l tag) string { return l.Name },
		func(name string) tag { return tag{Name: name} },
	)

	assert.Equal(t, []string{"Co-op", "PvP"}, tagNames(got))
	assert.Equal(t, reconcile.Result{Created: 1, Updated: 1}, res)
}
