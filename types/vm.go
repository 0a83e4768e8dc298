package types

// ServerOption describes one hardware option in a VM recommendation:
// either the current server or a proposed replacement.
type ServerOption struct {
	HWFamilyName       string  `json:"hw_family_name"`
	AssetID            *string `json:"asset_id"`
	IsReserved         bool    `json:"is_reserved"`
	IsConservative     bool    `json:"is_conservative"`
	MonthlyDowntimePct float64 `json:"monthly_downtime_pct"`
	MonthlySpend       float64 `json:"monthly_spend"`
	MonthlyUnutilized  float64 `json:"monthly_unutilized"`
	MonthlySaving      float64 `json:"monthly_saving"`
	CurrencyCode       string  `json:"currency_code"`
	Provider           string  `json:"provider"`
}

// VMRecommendation is one entry of the ec2 recommendation feeds. The
// exclusive and load-balanced feeds share this shape and are merged
// into one list before presentation.
type VMRecommendation struct {
	ApplicationName  string         `json:"application_name"`
	CurrentServer    ServerOption   `json:"current_server"`
	ConservativeReco []ServerOption `json:"conservative_reco"`
	AlternateReco    []ServerOption `json:"alternate_reco"`
}
