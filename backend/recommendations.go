package backend

import (
	"context"

	"github.com/karsidev/karsi/types"
)

// FetchDBRecommendations retrieves the database recommendation feed.
// dbType optionally narrows by engine class (DTU, vCore, RDS, ...).
func (c *Client) FetchDBRecommendations(ctx context.Context, f Filters, dbType string) ([]types.VMRecommendation, error) {
	q := vmQuery(f)
	if dbType != "" {
		q.Set("db_type", dbType)
	}

	var recos []types.VMRecommendation
	if err := c.get(ctx, "/optimization/recommendations/db", q, &recos); err != nil {
		return nil, err
	}
	return recos, nil
}

// FetchStorageRecommendations retrieves the storage sizing feed.
func (c *Client) FetchStorageRecommendations(ctx context.Context, f Filters) ([]types.StorageRecommendation, error) {
	var recos []types.StorageRecommendation
	if err := c.get(ctx, "/optimization/recommendations/storage", vmQuery(f), &recos); err != nil {
		return nil, err
	}
	return recos, nil
}

// FetchIOPSRecommendations retrieves the provisioned-IOPS feed.
func (c *Client) FetchIOPSRecommendations(ctx context.Context, f Filters) ([]types.StorageRecommendation, error) {
	var recos []types.StorageRecommendation
	if err := c.get(ctx, "/optimization/recommendations/iops", vmQuery(f), &recos); err != nil {
		return nil, err
	}
	return recos, nil
}
