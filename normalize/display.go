package normalize

import (
	"fmt"

	"github.com/karsidev/karsi/types"
)

// NoRecommendation is the literal rendered when a recommendation is
// absent or untyped.
const NoRecommendation = "No recommendation"

// DisplayRecommendedType derives the human-readable "recommended type"
// field from a recommendation. Each reco_type carries its own field set:
// vm and db propose a hardware family, storage a type/family pair, iops
// a provisioned IOPS figure.
func DisplayRecommendedType(r *types.Recommendation) string {
	if r == nil {
		return NoRecommendation
	}

	switch r.RecoType {
	case types.RecoVM, types.RecoDB:
		if r.NewHWFamilyName == nil || *r.NewHWFamilyName == "" {
			return NoRecommendation
		}
		return *r.NewHWFamilyName
	case types.RecoStorage:
		return fmt.Sprintf("%s - %s",
			orDefault(r.RecommendedStorageType, "storage"),
			orDefault(r.RecommendedFamily, "family"))
	case types.RecoIOPS:
		return fmt.Sprintf("%s IOPS", orDefault(r.RecoIOPS, "0"))
	default:
		return NoRecommendation
	}
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}
