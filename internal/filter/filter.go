// Package filter provides client-side asset filtering for karsi views.
package filter

import (
	"strings"

	"github.com/karsidev/karsi/types"
)

// Filter narrows asset lists by application, department and provider.
// Empty fields match everything; matching is case-insensitive.
type Filter struct {
	application string
	department  string
	provider    string
}

// New creates a Filter from the provided criteria.
func New(application, department, provider string) *Filter {
	return &Filter{
		application: strings.ToLower(application),
		department:  strings.ToLower(department),
		provider:    strings.ToLower(provider),
	}
}

// Matches returns true if the asset passes all configured criteria.
func (f *Filter) Matches(a types.Asset) bool {
	if f.application != "" {
		if a.ApplicationName == nil || strings.ToLower(*a.ApplicationName) != f.application {
			return false
		}
	}
	if f.department != "" && strings.ToLower(a.DeptName) != f.department {
		return false
	}
	if f.provider != "" && strings.ToLower(a.ProviderName) != f.provider {
		return false
	}
	return true
}

// Apply returns only assets that pass the filter.
func (f *Filter) Apply(assets []types.Asset) []types.Asset {
	if f.IsEmpty() {
		return assets
	}

	filtered := make([]types.Asset, 0, len(assets))
	for _, a := range assets {
		if f.Matches(a) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}

// IsEmpty returns true if no criteria are configured.
func (f *Filter) IsEmpty() bool {
	return f.application == "" && f.department == "" && f.provider == ""
}
