package collection

import "strings"

// SplitDeckName returns the trimmed components of a nested deck name.
func SplitDeckName(name string) []string {
	parts := strings.Split(name, DeckSeparator)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// NormalizeDeckName trims every component of name. ok is false when any
// component is empty.
func NormalizeDeckName(name string) (normalized string, ok bool) {
	parts := SplitDeckName(name)
	for _, p := range parts {
		if p == "" {
			return "", false
		}
	}
	return strings.Join(parts, DeckSeparator), true
}

// DeckParent returns the name of the parent deck, or "" for a top-level deck.
func DeckParent(name string) string {
	i := strings.LastIndex(name, DeckSeparator)
	if i < 0 {
		return ""
	}
	return name[:i]
}

// DeckBaseName returns the last component of a deck name.
func DeckBaseName(name string) string {
	i := strings.LastIndex(name, DeckSeparator)
	if i < 0 {
		return name
	}
	return name[i+len(DeckSeparator):]
}

// IsDeckWithin reports whether name equals root or is nested below it.
// Comparison ignores case.
func IsDeckWithin(name, root string) bool {
	n, r := strings.ToLower(name), strings.ToLower(root)
	return n == r || strings.HasPrefix(n, r+DeckSeparator)
}
