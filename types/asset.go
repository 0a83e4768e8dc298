package types

import "fmt"

// Asset is a cloud resource tracked by the optimization backend.
// It belongs to at most one application and one department; an asset
// without an application name is unassigned.
type Asset struct {
	AssetID          string    `json:"asset_id"`
	ApplicationName  *string   `json:"application_name"`
	HWFamilyName     string    `json:"hw_family_name"`
	DeptID           int       `json:"dept_id"`
	DeptName         string    `json:"dept_name"`
	CloudServiceName string    `json:"cloud_service_name"`
	ProviderName     string    `json:"provider_name"`
	ServiceType      string    `json:"service_type"`
	Profiles         []Profile `json:"profiles"`
}

// Profile is a named evaluation context under which recommendations
// were computed. A nil profile name means "default".
type Profile struct {
	Profile         *string            `json:"profile"`
	Recommendations RecommendationPair `json:"recommendations"`
}

// RecommendationPair holds the two variants computed for one profile.
// Either, both, or neither may be present; an empty pair is a valid,
// displayable state, not an error.
type RecommendationPair struct {
	Safe        *Recommendation `json:"safe"`
	Alternative *Recommendation `json:"alternative"`
}

// Recommendation is a single proposed change to an asset.
type Recommendation struct {
	RecoType               RecoType `json:"reco_type"`
	NewHWFamilyName        *string  `json:"new_hw_family_name,omitempty"`
	RecommendedStorageType *string  `json:"recommended_storage_type,omitempty"`
	RecommendedFamily      *string  `json:"recommended_family,omitempty"`
	RecoIOPS               *string  `json:"reco_iops,omitempty"`
	ProjectedMonthlyCost   *float64 `json:"projected_monthly_cost"`
	ProjectedMonthlySaving *float64 `json:"projected_monthly_saving"`
}

// RecoType identifies which variant of recommendation fields is populated.
// An empty value means the backend sent null.
type RecoType string

const (
	RecoVM      RecoType = "vm"
	RecoDB      RecoType = "db"
	RecoStorage RecoType = "storage"
	RecoIOPS    RecoType = "iops"
	RecoNone    RecoType = ""
)

// Validate checks that the asset carries the identity fields every
// downstream consumer relies on.
func (a *Asset) Validate() error {
	if a.AssetID == "" {
		return fmt.Errorf("asset ID cannot be empty")
	}
	if a.ServiceType == "" {
		return fmt.Errorf("asset %s has no service type", a.AssetID)
	}
	return nil
}

// Name returns the profile name, mapping nil to "default".
func (p *Profile) Name() string {
	if p.Profile == nil {
		return "default"
	}
	return *p.Profile
}

// Primary returns the recommendation that feeds asset-level totals:
// safe when present, otherwise alternative, otherwise nil.
func (rp *RecommendationPair) Primary() *Recommendation {
	if rp.Safe != nil {
		return rp.Safe
	}
	return rp.Alternative
}

// Cost returns the projected monthly cost, nil mapped to zero.
func (r *Recommendation) Cost() float64 {
	if r == nil || r.ProjectedMonthlyCost == nil {
		return 0
	}
	return *r.ProjectedMonthlyCost
}

// Saving returns the projected monthly saving, nil mapped to zero.
func (r *Recommendation) Saving() float64 {
	if r == nil || r.ProjectedMonthlySaving == nil {
		return 0
	}
	return *r.ProjectedMonthlySaving
}
