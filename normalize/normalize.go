// Package normalize reduces raw backend assets to a uniform comparison
// model: per-profile recommendation summaries plus asset-level cost and
// savings totals.
package normalize

import (
	"github.com/rs/zerolog/log"

	"github.com/karsidev/karsi/classifier"
	"github.com/karsidev/karsi/types"
)

// NormalizedAsset is the flattened view of one asset and its profiles.
type NormalizedAsset struct {
	AssetID          string         `json:"asset_id"`
	ApplicationName  string         `json:"application_name,omitempty"`
	CloudServiceName string         `json:"cloud_service_name"`
	HWFamilyName     string         `json:"hw_family_name"`
	DeptName         string         `json:"dept_name"`
	ProviderName     string         `json:"provider_name"`
	Category         types.Category `json:"category"`

	// TotalCurrentCost and TotalProjectedSavings sum the primary
	// recommendation of each profile: safe when available, otherwise
	// alternative. Never both.
	TotalCurrentCost      float64 `json:"total_current_cost"`
	TotalProjectedSavings float64 `json:"total_projected_savings"`

	Profiles []ProfileSummary `json:"profiles"`
}

// ProfileSummary is the per-profile reduction of a recommendation pair.
type ProfileSummary struct {
	Name          string                `json:"name"`
	Safe          *types.Recommendation `json:"safe,omitempty"`
	Alternate     *types.Recommendation `json:"alternate,omitempty"`
	DisplayFields map[string]string     `json:"display_fields"`
}

// CurrentCost reconstructs the asset's pre-recommendation monthly cost
// from a recommendation. The backend transmits only the projected cost
// and the saving relative to the current baseline, so the baseline is
// cost + saving. Nil fields count as zero.
func CurrentCost(r *types.Recommendation) float64 {
	return r.Cost() + r.Saving()
}

// Normalize reduces one asset to its flattened view. An asset with zero
// profiles yields zero totals and no summaries; that is valid output.
func Normalize(asset types.Asset) NormalizedAsset {
	n := NormalizedAsset{
		AssetID:          asset.AssetID,
		CloudServiceName: asset.CloudServiceName,
		HWFamilyName:     asset.HWFamilyName,
		DeptName:         asset.DeptName,
		ProviderName:     asset.ProviderName,
		Category:         classifier.Categorize(asset.ServiceType),
	}
	if asset.ApplicationName != nil {
		n.ApplicationName = *asset.ApplicationName
	}

	seen := make(map[string]bool, len(asset.Profiles))
	for _, p := range asset.Profiles {
		name := p.Name()
		if seen[name] {
			// Duplicate names are a data quality problem; lookup by
			// name resolves to the first occurrence.
			log.Warn().
				Str("asset_id", asset.AssetID).
				Str("profile", name).
				Msg("duplicate profile name, first match wins")
		}
		seen[name] = true

		primary := p.Recommendations.Primary()
		n.TotalCurrentCost += CurrentCost(primary)
		n.TotalProjectedSavings += primary.Saving()

		n.Profiles = append(n.Profiles, ProfileSummary{
			Name:      name,
			Safe:      p.Recommendations.Safe,
			Alternate: p.Recommendations.Alternative,
			DisplayFields: map[string]string{
				"recommended_type": DisplayRecommendedType(primary),
				"safe_type":        DisplayRecommendedType(p.Recommendations.Safe),
				"alternate_type":   DisplayRecommendedType(p.Recommendations.Alternative),
			},
		})
	}

	return n
}

// NormalizeAll normalizes a list of assets, preserving input order.
func NormalizeAll(assets []types.Asset) []NormalizedAsset {
	out := make([]NormalizedAsset, 0, len(assets))
	for _, a := range assets {
		out = append(out, Normalize(a))
	}
	return out
}

// Profile returns the first summary with the given name. Profile names
// are not guaranteed unique in source data; first match wins.
func (n *NormalizedAsset) Profile(name string) (*ProfileSummary, bool) {
	for i := range n.Profiles {
		if n.Profiles[i].Name == name {
			return &n.Profiles[i], true
		}
	}
	return nil, false
}
