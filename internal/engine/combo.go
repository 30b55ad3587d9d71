package engine

import "strings"

// Resolve canonicalizes up to two stable labels into a combo key.
// Empty labels are filtered out; zero symbols yield DefaultKey, one symbol
// is joined with NoneMarker, and two symbols are sorted lexicographically
// before joining. Sorting is the normalization step that makes
// Resolve(a, b) == Resolve(b, a) for all inputs.
func Resolve(a, b Label) ComboKey {
	switch {
	case a == "" && b == "":
		return DefaultKey
	case a == "":
		return ComboKey(string(b) + KeyDelimiter + NoneMarker)
	case b == "":
		return ComboKey(string(a) + KeyDelimiter + NoneMarker)
	}
	if b < a {
		a, b = b, a
	}
	return ComboKey(string(a) + KeyDelimiter + string(b))
}

// ResolveState is shorthand for resolving a debouncer's stable state.
func ResolveState(s StableState) ComboKey {
	return Resolve(s.SlotA, s.SlotB)
}

// swapped returns the key with its two components reversed, and false when
// the key does not have exactly two components. Used by the playlist lookup
// to cover catalogs whose authors did not pre-sort their keys.
func swapped(key ComboKey) (ComboKey, bool) {
	parts := strings.SplitN(string(key), KeyDelimiter, 2)
	if len(parts) != 2 {
		return "", false
	}
	return ComboKey(parts[1] + KeyDelimiter + parts[0]), true
}
