package reconcile

// Result reports what a relation sync changed.
type Result struct {
	// Created is the number of members added from the remote set.
	Created int `json:"created"`
	// Updated is the number of members present on both sides.
	Updated int `json:"updated"`
	// Removed is the number of local members absent from the remote set.
	Removed int `json:"removed"`
}

// Dirty returns true if the sync changed the membership of the relation.
func (r Result) Dirty() bool {
	return r.Created > 0 || r.Removed > 0
}

// Sync reconciles the local members of a relation against the remote members
// declared by a manifest. Members found in both sets (per eq) are updated in
// place via update; members only in remote are built with create and added;
// members only in local are removed. The returned slice is the new local set.
func Sync[L any, R any](
	local []L,
	remote []R,
	eq func(L, R) bool,
	update func(*L, R),
	create func(R) L,
) ([]L, Result) {
	var res Result

	// Track which local members are still declared remotely.
	kept := make([]bool, len(local))

	for _, r := range remote {
		matched := false
		for i := range local {
			if eq(local[i], r) {
				update(&local[i], r)
				kept[i] = true
				matched = true
				res.Updated++
				break
			}
		}
		if matched {
			continue
		}
		local = append(local, create(r))
		kept = append(kept, true)
		res.Created++
	}

	// Drop local members no longer present remotely, preserving order.
	next := local[:0]
	for i := range local {
		if kept[i] {
			next = append(next, local[i])
		} else {
			res.Removed++
		}
	}

	return next, res
}

// SyncNames is a shorthand for relations whose remote side is a list of
// natural-key names, the most common case for lookup entities.
func SyncNames[L any](
	local []L,
	names []string,
	nameOf func(L) string,
	create func(string) L,
) ([]L, Result) {
	return Sync(local, names,
		func(l L, name string) bool { return nameOf(l) == name },
		func(*L, string) {},
		create,
	)
}
