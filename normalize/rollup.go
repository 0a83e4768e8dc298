package normalize

import (
	"sort"

	"github.com/karsidev/karsi/types"
)

// Grouped holds normalized assets bucketed by category. Each bucket is
// sorted descending by projected savings - the asset with the greatest
// savings opportunity first.
type Grouped struct {
	VMs     []NormalizedAsset `json:"vms"`
	DBs     []NormalizedAsset `json:"databases"`
	Storage []NormalizedAsset `json:"storage"`
}

// Count returns the total number of assets across all buckets.
func (g *Grouped) Count() int {
	return len(g.VMs) + len(g.DBs) + len(g.Storage)
}

// GroupByCategory buckets and sorts normalized assets.
func GroupByCategory(assets []NormalizedAsset) Grouped {
	sorted := make([]NormalizedAsset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalProjectedSavings > sorted[j].TotalProjectedSavings
	})

	var g Grouped
	for _, a := range sorted {
		switch a.Category {
		case types.CategoryVM:
			g.VMs = append(g.VMs, a)
		case types.CategoryDB:
			g.DBs = append(g.DBs, a)
		default:
			g.Storage = append(g.Storage, a)
		}
	}
	return g
}

// ApplicationRollup aggregates one application's assets.
type ApplicationRollup struct {
	Name                  string  `json:"name"`
	Department            string  `json:"department"`
	Provider              string  `json:"provider"`
	TotalCurrentCost      float64 `json:"total_current_cost"`
	TotalProjectedSavings float64 `json:"total_projected_savings"`
	Resources             Grouped `json:"resources"`
}

// UnassignedName labels the consolidated rollup of assets that belong
// to no application.
const UnassignedName = "Unassigned Assets"

// RollupApplications groups assigned assets by application name and
// aggregates their totals. Assets without an application name are
// skipped (they belong in the unassigned rollup). Output is sorted by
// application name for deterministic rendering.
func RollupApplications(assigned []types.Asset) []ApplicationRollup {
	byApp := make(map[string][]NormalizedAsset)
	meta := make(map[string]types.Asset)

	for _, a := range assigned {
		if a.ApplicationName == nil || *a.ApplicationName == "" {
			continue
		}
		name := *a.ApplicationName
		if _, ok := meta[name]; !ok {
			meta[name] = a
		}
		byApp[name] = append(byApp[name], Normalize(a))
	}

	rollups := make([]ApplicationRollup, 0, len(byApp))
	for name, assets := range byApp {
		first := meta[name]
		r := ApplicationRollup{
			Name:       name,
			Department: first.DeptName,
			Provider:   first.ProviderName,
			Resources:  GroupByCategory(assets),
		}
		for _, a := range assets {
			r.TotalCurrentCost += a.TotalCurrentCost
			r.TotalProjectedSavings += a.TotalProjectedSavings
		}
		rollups = append(rollups, r)
	}

	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Name < rollups[j].Name
	})
	return rollups
}

// ConsolidateUnassigned collapses unassigned assets into a single
// rollup. Returns nil when there is nothing unassigned.
func ConsolidateUnassigned(unassigned []types.Asset) *ApplicationRollup {
	if len(unassigned) == 0 {
		return nil
	}

	assets := NormalizeAll(unassigned)
	r := &ApplicationRollup{
		Name:       UnassignedName,
		Department: "All Departments",
		Provider:   "mixed",
		Resources:  GroupByCategory(assets),
	}
	for _, a := range assets {
		r.TotalCurrentCost += a.TotalCurrentCost
		r.TotalProjectedSavings += a.TotalProjectedSavings
	}
	return r
}

// RollupNormalized groups already-normalized assets into application
// rollups plus a consolidated unassigned rollup (nil when there are no
// unassigned assets). Serves offline views rendered from a stored
// snapshot, where the raw backend assets are no longer available.
func RollupNormalized(assets []NormalizedAsset) ([]ApplicationRollup, *ApplicationRollup) {
	byApp := make(map[string][]NormalizedAsset)
	var unassigned []NormalizedAsset

	for _, a := range assets {
		if a.ApplicationName == "" {
			unassigned = append(unassigned, a)
			continue
		}
		byApp[a.ApplicationName] = append(byApp[a.ApplicationName], a)
	}

	rollups := make([]ApplicationRollup, 0, len(byApp))
	for name, group := range byApp {
		r := ApplicationRollup{
			Name:       name,
			Department: group[0].DeptName,
			Provider:   group[0].ProviderName,
			Resources:  GroupByCategory(group),
		}
		for _, a := range group {
			r.TotalCurrentCost += a.TotalCurrentCost
			r.TotalProjectedSavings += a.TotalProjectedSavings
		}
		rollups = append(rollups, r)
	}
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Name < rollups[j].Name
	})

	var un *ApplicationRollup
	if len(unassigned) > 0 {
		un = &ApplicationRollup{
			Name:       UnassignedName,
			Department: "All Departments",
			Provider:   "mixed",
			Resources:  GroupByCategory(unassigned),
		}
		for _, a := range unassigned {
			un.TotalCurrentCost += a.TotalCurrentCost
			un.TotalProjectedSavings += a.TotalProjectedSavings
		}
	}
	return rollups, un
}

// ApplicationNames extracts the sorted unique application names present
// in a list of assigned assets. Used to populate filter options.
func ApplicationNames(assigned []types.Asset) []string {
	seen := make(map[string]bool)
	var names []string
	for _, a := range assigned {
		if a.ApplicationName == nil || *a.ApplicationName == "" {
			continue
		}
		if !seen[*a.ApplicationName] {
			seen[*a.ApplicationName] = true
			names = append(names, *a.ApplicationName)
		}
	}
	sort.Strings(names)
	return names
}
