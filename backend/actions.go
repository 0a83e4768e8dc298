package backend

import (
	"context"
	"net/http"
	"net/url"

	"github.com/karsidev/karsi/types"
)

// Accept records acceptance of one recommendation variant for an asset.
// The backend call replaces any prior acceptance for the asset; it is
// not additive.
func (c *Client) Accept(ctx context.Context, assetID string, assetType types.Category, variant types.Variant) error {
	q := url.Values{}
	q.Set("asset_id", assetID)
	q.Set("asset_type", string(assetType))
	q.Set("accepted_type", string(variant))

	return c.action(ctx, http.MethodGet, "/optimization/recommendations/accept", q, nil)
}

// Revoke clears any accepted recommendation for an asset. Revoking an
// asset with no acceptance is a valid no-op on the backend side.
func (c *Client) Revoke(ctx context.Context, assetID string, assetType types.Category) error {
	q := url.Values{}
	q.Set("asset_id", assetID)
	q.Set("asset_type", string(assetType))

	return c.action(ctx, http.MethodGet, "/optimization/recommendations/revoke", q, nil)
}

// assignRequest is the bulk assignment payload.
type assignRequest struct {
	AssetIDs        []string `json:"asset_ids"`
	ApplicationName string   `json:"application_name"`
}

// deleteRequest is the bulk deletion payload.
type deleteRequest struct {
	AssetIDs []string `json:"asset_ids"`
}

// AssignAssets attaches unassigned assets to an application.
func (c *Client) AssignAssets(ctx context.Context, assetIDs []string, applicationName string) error {
	return c.action(ctx, http.MethodPost, "/assets/assign", nil, assignRequest{
		AssetIDs:        assetIDs,
		ApplicationName: applicationName,
	})
}

// DeleteAssets removes assets from tracking.
func (c *Client) DeleteAssets(ctx context.Context, assetIDs []string) error {
	return c.action(ctx, http.MethodDelete, "/assets/delete", nil, deleteRequest{AssetIDs: assetIDs})
}
