// Package reconcile merges a freshly submitted list of tracked keys
// (weather locations, stock tickers) into the previously stored entries.
//
// The submission replaces the list: its order wins, keys no longer submitted
// are dropped, and keys that were already tracked keep their fetched value.
package reconcile

import "strings"

// Keys trims the submitted keys, drops blanks and later duplicates, and keeps
// at most limit keys. A limit <= 0 means unbounded.
func Keys(submitted []string, limit int) []string {
	seen := make(map[string]bool, len(submitted))
	keys := make([]string, 0, len(submitted))
	for _, raw := range submitted {
		if limit > 0 && len(keys) >= limit {
			break
		}
		key := strings.TrimSpace(raw)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
	}
	return keys
}

// Reconcile returns one entry per submitted key, in submission order. An
// existing entry with the exact same key is carried forward unchanged;
// otherwise fresh builds a new entry with no value.
func Reconcile[E any](existing []E, submitted []string, limit int, key func(E) string, fresh func(string) E) []E {
	byKey := make(map[string]E, len(existing))
	for _, e := range existing {
		k := key(e)
		if _, dup := byKey[k]; !dup {
			byKey[k] = e
		}
	}

	keys := Keys(submitted, limit)
	out := make([]E, 0, len(keys))
	for _, k := range keys {
		if e, ok := byKey[k]; ok {
			out = append(out, e)
			continue
		}
		out = append(out, fresh(k))
	}
	return out
}
