package utils

import "sort"

// StringPtr returns a pointer to s.
func StringPtr(s string) *string {
	return &s
}

// IntPtr returns a pointer to n.
func IntPtr(n int) *int {
	return &n
}

// BytesToInt folds the first 8 bytes of b into an int64. Used to turn hash
// digests into deterministic RNG seeds.
func BytesToInt(b []byte) int64 {
	var i int64
	for idx, val := range b {
		if idx >= 8 {
			break
		}
		i = (i << 8) | int64(val)
	}
	return i
}

// SortedKeys returns the keys of m in ascending order. Used anywhere map
// iteration order would otherwise leak into output.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
