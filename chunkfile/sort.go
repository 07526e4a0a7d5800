package chunkfile

import (
	"slices"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Canonical key order: case-insensitive collation of the root locale,
// ties broken by raw byte order so that "Key" and "key" keep a fixed order.
// collate.Collator is not safe for concurrent use.
var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.IgnoreCase)
)

// CompareKeys orders two keys canonically.
func CompareKeys(a, b string) int {
	collatorMu.Lock()
	c := collator.CompareString(a, b)
	collatorMu.Unlock()
	if c != 0 {
		return c
	}
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// SortKeys sorts keys in place in canonical order.
func SortKeys(keys []string) {
	slices.SortFunc(keys, CompareKeys)
}

// IsSortedKeys reports whether keys are in canonical order.
func IsSortedKeys(keys []string) bool {
	return slices.IsSortedFunc(keys, CompareKeys)
}
