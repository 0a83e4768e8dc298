package types

// StorageRecommendation is one entry of the storage and iops
// recommendation feeds.
type StorageRecommendation struct {
	StorageID         string              `json:"storage_id"`
	StorageType       string              `json:"storage_type"`
	ApplicationName   string              `json:"application_name"`
	HostAsset         string              `json:"host_asset"`
	ProvisionedSize   float64             `json:"provisioned_size"`
	ConsumedSize      float64             `json:"consumed_size"`
	ProviderName      string              `json:"provider_name"`
	CurrentCostPerMo  float64             `json:"current_cost_per_month"`
	CurrencyCode      string              `json:"currency_code"`
	ThroughputIdlePct float64             `json:"throughput_idle_pct"`
	TotalThroughput   float64             `json:"total_throughput"`
	ProvisionedIOPS   *int                `json:"provisioned_iops,omitempty"`
	ConservativeReco  *IOPSReco           `json:"conservative_reco,omitempty"`
	AlternativeReco   *IOPSReco           `json:"alternative_reco,omitempty"`
	Recommendations   StorageRecoVariants `json:"recommendations"`
}

// IOPSReco is the iops-specific recommendation attached to a volume.
type IOPSReco struct {
	RecoIOPS    *string `json:"reco_iops"`
	RecoSavings float64 `json:"reco_savings"`
}

// StorageRecoVariants groups the optional block/object/snapshot
// proposals for a volume. Absent variants are nil.
type StorageRecoVariants struct {
	Block    *BlockReco    `json:"block,omitempty"`
	Object   *ObjectReco   `json:"object,omitempty"`
	Snapshot *SnapshotReco `json:"snapshot,omitempty"`
}

// BlockReco proposes a different block storage family.
type BlockReco struct {
	FamilyType  string  `json:"family_type"`
	CostSavings float64 `json:"cost_savings"`
	Description string  `json:"description"`
}

// ObjectReco proposes moving data to object storage.
type ObjectReco struct {
	StorageType string  `json:"storage_type"`
	CostSavings float64 `json:"cost_savings"`
	Description string  `json:"description"`
}

// SnapshotReco proposes a snapshot tier change.
type SnapshotReco struct {
	SnapshotType string  `json:"snapshot_type"`
	CostSavings  float64 `json:"cost_savings"`
	Description  string  `json:"description"`
}
