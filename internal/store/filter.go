package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"
)

// Filters are the server-side query parameters of a collection fetch.
type Filters map[string]string

func normalizeFilterValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// Normalized drops empty values and collapses whitespace. Keys are lower-cased.
func (f Filters) Normalized() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		k = strings.ToLower(strings.TrimSpace(k))
		v = normalizeFilterValue(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

func (f Filters) Clone() Filters {
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Key identifies a filter set: two filter sets with the same Key describe the same query.
func (f Filters) Key() string {
	n := f.Normalized()
	keys := make([]string, 0, len(n))
	for k := range n {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([][2]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, [2]string{k, n[k]})
	}

	b, _ := json.Marshal(pairs)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
