package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karsidev/karsi/types"
)

func assetWithSavings(id, serviceType string, app *string, saving float64) types.Asset {
	return types.Asset{
		AssetID:         id,
		ApplicationName: app,
		ServiceType:     serviceType,
		Profiles: []types.Profile{
			profileWith(nil, &types.Recommendation{
				RecoType:               types.RecoVM,
				ProjectedMonthlyCost:   f(100),
				ProjectedMonthlySaving: f(saving),
			}, nil),
		},
	}
}

func TestGroupByCategory_SortsBySavingsDescending(t *testing.T) {
	assets := NormalizeAll([]types.Asset{
		assetWithSavings("i-1", "ec2 instance", nil, 30),
		assetWithSavings("i-2", "ec2 instance", nil, 90),
		assetWithSavings("i-3", "ec2 instance", nil, 10),
	})

	g := GroupByCategory(assets)

	require.Len(t, g.VMs, 3)
	assert.Equal(t, []float64{90, 30, 10}, []float64{
		g.VMs[0].TotalProjectedSavings,
		g.VMs[1].TotalProjectedSavings,
		g.VMs[2].TotalProjectedSavings,
	})
}

func TestGroupByCategory_Buckets(t *testing.T) {
	assets := NormalizeAll([]types.Asset{
		assetWithSavings("i-1", "ec2 instance", nil, 5),
		assetWithSavings("db-1", "postgres", nil, 5),
		assetWithSavings("vol-1", "ebs volume", nil, 5),
		assetWithSavings("vol-2", "", nil, 5),
	})

	g := GroupByCategory(assets)

	assert.Len(t, g.VMs, 1)
	assert.Len(t, g.DBs, 1)
	assert.Len(t, g.Storage, 2)
	assert.Equal(t, 4, g.Count())
}

func TestRollupApplications(t *testing.T) {
	app1 := s("billing")
	app2 := s("analytics")
	assets := []types.Asset{
		assetWithSavings("i-1", "ec2 instance", app1, 20),
		assetWithSavings("db-1", "mysql", app1, 30),
		assetWithSavings("i-2", "ec2 instance", app2, 5),
		assetWithSavings("i-orphan", "ec2 instance", nil, 99),
	}
	assets[0].DeptName = "platform"
	assets[0].ProviderName = "aws"

	rollups := RollupApplications(assets)

	require.Len(t, rollups, 2)
	// Sorted by name: analytics before billing.
	assert.Equal(t, "analytics", rollups[0].Name)
	assert.Equal(t, "billing", rollups[1].Name)

	billing := rollups[1]
	assert.Equal(t, "platform", billing.Department)
	assert.Equal(t, "aws", billing.Provider)
	assert.Equal(t, 50.0, billing.TotalProjectedSavings)
	// Each asset: current = 100 + saving.
	assert.Equal(t, 120.0+130.0, billing.TotalCurrentCost)
	assert.Len(t, billing.Resources.VMs, 1)
	assert.Len(t, billing.Resources.DBs, 1)
}

func TestConsolidateUnassigned(t *testing.T) {
	assert.Nil(t, ConsolidateUnassigned(nil))

	r := ConsolidateUnassigned([]types.Asset{
		assetWithSavings("i-1", "ec2 instance", nil, 10),
		assetWithSavings("vol-1", "ebs", nil, 40),
	})

	require.NotNil(t, r)
	assert.Equal(t, UnassignedName, r.Name)
	assert.Equal(t, 50.0, r.TotalProjectedSavings)
	assert.Equal(t, 2, r.Resources.Count())
}

func TestRollupNormalized(t *testing.T) {
	assets := []NormalizedAsset{
		{AssetID: "i-1", ApplicationName: "billing", DeptName: "eng", ProviderName: "aws", Category: types.CategoryVM, TotalCurrentCost: 120, TotalProjectedSavings: 20},
		{AssetID: "db-1", ApplicationName: "billing", Category: types.CategoryDB, TotalCurrentCost: 130, TotalProjectedSavings: 30},
		{AssetID: "vol-1", Category: types.CategoryStorage, TotalCurrentCost: 50, TotalProjectedSavings: 5},
	}

	apps, unassigned := RollupNormalized(assets)

	require.Len(t, apps, 1)
	billing := apps[0]
	assert.Equal(t, "billing", billing.Name)
	assert.Equal(t, "eng", billing.Department)
	assert.Equal(t, 250.0, billing.TotalCurrentCost)
	assert.Equal(t, 50.0, billing.TotalProjectedSavings)
	assert.Len(t, billing.Resources.VMs, 1)
	assert.Len(t, billing.Resources.DBs, 1)

	require.NotNil(t, unassigned)
	assert.Equal(t, UnassignedName, unassigned.Name)
	assert.Equal(t, 5.0, unassigned.TotalProjectedSavings)
}

func TestRollupNormalized_NoUnassigned(t *testing.T) {
	apps, unassigned := RollupNormalized([]NormalizedAsset{
		{AssetID: "i-1", ApplicationName: "billing", Category: types.CategoryVM},
	})

	assert.Len(t, apps, 1)
	assert.Nil(t, unassigned)
}

func TestApplicationNames(t *testing.T) {
	names := ApplicationNames([]types.Asset{
		assetWithSavings("i-1", "vm", s("billing"), 0),
		assetWithSavings("i-2", "vm", s("analytics"), 0),
		assetWithSavings("i-3", "vm", s("billing"), 0),
		assetWithSavings("i-4", "vm", nil, 0),
	})

	assert.Equal(t, []string{"analytics", "billing"}, names)
}
