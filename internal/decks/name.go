// Package decks holds the deck picker: deck name validation, the deck tree
// with its collapse set, and the picker state machine.
package decks

import (
	"strings"

	"github.com/abhisek/flashiz/internal/collection"
)

// Validation is the inline result of checking a deck name.
type Validation int

const (
	ValidationNone          Validation = iota // nothing to report
	ValidationAlreadyExists                   // another deck has this name
	ValidationInvalid                         // a "::" component is empty
)

func (v Validation) String() string {
	switch v {
	case ValidationAlreadyExists:
		return "already_exists"
	case ValidationInvalid:
		return "invalid"
	default:
		return "none"
	}
}

// ValidateName checks name against the existing deck names. current is the
// name of the deck being renamed, or "" when creating. Blank input reports
// nothing; use CanSubmit to decide whether confirming is allowed.
func ValidateName(name string, existing []string, current string) Validation {
	if strings.TrimSpace(name) == "" {
		return ValidationNone
	}
	norm, ok := collection.NormalizeDeckName(name)
	if !ok {
		return ValidationInvalid
	}
	if current != "" {
		if cur, _ := collection.NormalizeDeckName(current); strings.EqualFold(norm, cur) {
			return ValidationNone
		}
	}
	for _, e := range existing {
		if strings.EqualFold(norm, e) {
			return ValidationAlreadyExists
		}
	}
	return ValidationNone
}

// CanSubmit reports whether a dialog with this input may be confirmed.
func CanSubmit(name string, v Validation) bool {
	return strings.TrimSpace(name) != "" && v == ValidationNone
}
