package types

import "fmt"

// AcceptanceState records which recommendation variant, if any, is
// currently accepted for an asset. At most one variant is active per
// asset; accepting a variant supersedes any prior acceptance.
type AcceptanceState string

const (
	AcceptanceNone      AcceptanceState = "none"
	AcceptanceSafe      AcceptanceState = "safe"
	AcceptanceAlternate AcceptanceState = "alternate"
)

// Variant names the recommendation variant a user can accept.
type Variant string

const (
	VariantSafe      Variant = "safe"
	VariantAlternate Variant = "alternate"
)

// ParseVariant validates a user-supplied variant string.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantSafe:
		return VariantSafe, nil
	case VariantAlternate:
		return VariantAlternate, nil
	}
	return "", fmt.Errorf("unknown variant %q (want safe or alternate)", s)
}

// State returns the acceptance state corresponding to an accepted variant.
func (v Variant) State() AcceptanceState {
	if v == VariantAlternate {
		return AcceptanceAlternate
	}
	return AcceptanceSafe
}
