package models

import (
	"fmt"
	"strings"
)

// Intent is the purpose of one user-initiated operation. It selects both the
// request shape and the reconciliation strategy.
type Intent int

const (
	Submit Intent = iota
	Regenerate
	Confirm
	Reject
)

var intentNames = map[Intent]string{
	Submit:     "submit",
	Regenerate: "regenerate",
	Confirm:    "confirm",
	Reject:     "reject",
}

func (i Intent) String() string {
	if name, ok := intentNames[i]; ok {
		return name
	}
	return fmt.Sprintf("intent(%d)", int(i))
}

// ParseIntent accepts the wire names used in the form's action field.
func ParseIntent(s string) (Intent, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for intent, name := range intentNames {
		if name == s {
			return intent, nil
		}
	}
	return 0, fmt.Errorf("unknown intent %q", s)
}

// PhaseMessage is the status text shown when an operation with this intent starts.
func (i Intent) PhaseMessage() string {
	switch i {
	case Regenerate:
		return "Regenerating image..."
	case Confirm:
		return "Saving coloring page..."
	case Reject:
		return "Deleting generated content..."
	default:
		return "Starting image generation..."
	}
}

// Async reports whether the intent is performed as a background request whose
// response is reconciled in place. The others hand control to a full page
// navigation.
func (i Intent) Async() bool {
	return i == Submit || i == Regenerate
}
