// Package xiter holds small iterator helpers for deterministic traversal
// of JSON objects.
package xiter

import (
	"cmp"
	"iter"
	"slices"
)

// SortedKeys yields map keys in deterministic sorted order.
func SortedKeys[K cmp.Ordered, V any](m map[K]V) iter.Seq[K] {
	keys := make([]K, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return slices.Values(keys)
}

// SortedKeysIn yields, in sorted order, the keys of m that are present in other.
func SortedKeysIn[K cmp.Ordered, V, W any](m map[K]V, other map[K]W) iter.Seq[K] {
	return filterKeys(m, func(key K) bool {
		_, ok := other[key]
		return ok
	})
}

// SortedKeysNotIn yields, in sorted order, the keys of m that are absent from other.
func SortedKeysNotIn[K cmp.Ordered, V, W any](m map[K]V, other map[K]W) iter.Seq[K] {
	return filterKeys(m, func(key K) bool {
		_, ok := other[key]
		return !ok
	})
}

func filterKeys[K cmp.Ordered, V any](m map[K]V, keep func(K) bool) iter.Seq[K] {
	return func(yield func(K) bool) {
		for key := range SortedKeys(m) {
			if !keep(key) {
				continue
			}
			if !yield(key) {
				return
			}
		}
	}
}
