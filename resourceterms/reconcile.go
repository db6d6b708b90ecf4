package resourceterms

import "sort"

// Diff computes the reconciliation between a desired terms-id set and the
// stored one. Both inputs are treated as sets: duplicates collapse and order
// is irrelevant. Applying the same desired set against a store already in that
// state yields two empty slices. Results come back sorted so generated writes
// are deterministic.
func Diff(requested, stored []int64) (toAdd, toRemove []int64) {
	requestedSet := toSet(requested)
	storedSet := toSet(stored)

	for id := range requestedSet {
		if !storedSet[id] {
			toAdd = append(toAdd, id)
		}
	}
	for id := range storedSet {
		if !requestedSet[id] {
			toRemove = append(toRemove, id)
		}
	}

	sort.Slice(toAdd, func(i, j int) bool { return toAdd[i] < toAdd[j] })
	sort.Slice(toRemove, func(i, j int) bool { return toRemove[i] < toRemove[j] })
	return toAdd, toRemove
}

func toSet(ids []int64) map[int64]bool {
	set := make(map[int64]bool, len(ids))
	for _, id := range ids {
		set[id] = true
	}
	return set
}
