package backend

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/karsidev/karsi/types"
)

// Filters narrows recommendation queries. Empty fields are omitted.
type Filters struct {
	Application string
	Department  string
	Provider    string
}

// ApplicationsResponse splits assets into assigned and unassigned sets.
type ApplicationsResponse struct {
	Assigned   []types.Asset
	Unassigned []types.Asset
}

// rawApplicationsResponse defers asset decoding so one malformed asset
// can be skipped without aborting the rest.
type rawApplicationsResponse struct {
	Assigned   []json.RawMessage `json:"assigned"`
	Unassigned []json.RawMessage `json:"unassigned"`
}

// FetchApplications retrieves the assigned/unassigned asset lists.
// Assets that fail to decode or validate are logged and dropped;
// partial degradation beats total failure here.
func (c *Client) FetchApplications(ctx context.Context, f Filters) (*ApplicationsResponse, error) {
	q := url.Values{}
	if f.Application != "" {
		q.Set("application", f.Application)
	}
	if f.Department != "" {
		q.Set("department", f.Department)
	}
	if f.Provider != "" {
		q.Set("c_provider", f.Provider)
	}

	var raw rawApplicationsResponse
	if err := c.get(ctx, "/optimization/recommendations/applications", q, &raw); err != nil {
		return nil, err
	}

	return &ApplicationsResponse{
		Assigned:   c.decodeAssets(raw.Assigned, "assigned"),
		Unassigned: c.decodeAssets(raw.Unassigned, "unassigned"),
	}, nil
}

func (c *Client) decodeAssets(raw []json.RawMessage, set string) []types.Asset {
	assets := make([]types.Asset, 0, len(raw))
	for i, msg := range raw {
		a, droppedProfiles, err := decodeAsset(msg)
		if err != nil {
			c.logger.Warn().Err(err).
				Str("set", set).
				Int("index", i).
				Msg("skipping malformed asset")
			continue
		}
		if droppedProfiles {
			c.logger.Warn().
				Str("set", set).
				Str("asset_id", a.AssetID).
				Msg("ignoring malformed profiles, treating as empty")
		}
		if err := a.Validate(); err != nil {
			c.logger.Warn().Err(err).
				Str("set", set).
				Int("index", i).
				Msg("skipping invalid asset")
			continue
		}
		assets = append(assets, a)
	}
	return assets
}

// decodeAsset decodes one asset. A profiles field that is present but
// not an array degrades to an empty list so the asset still renders
// with zero totals; only a record whose identity fields are themselves
// undecodable is rejected.
func decodeAsset(msg json.RawMessage) (types.Asset, bool, error) {
	var a types.Asset
	if err := json.Unmarshal(msg, &a); err == nil {
		return a, false, nil
	}

	var env struct {
		types.Asset
		Profiles json.RawMessage `json:"profiles"`
	}
	if err := json.Unmarshal(msg, &env); err != nil {
		return types.Asset{}, false, err
	}
	env.Asset.Profiles = nil
	return env.Asset, true, nil
}
