package persistence_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrescamacho/remoteminer-go/internal/adapters/persistence"
	"github.com/andrescamacho/remoteminer-go/internal/domain/remote"
	"github.com/andrescamacho/remoteminer-go/internal/domain/shared"
	"github.com/andrescamacho/remoteminer-go/internal/domain/territory"
	"github.com/andrescamacho/remoteminer-go/test/helpers"
)

func TestZoneRepository_SaveAndFind(t *testing.T) {
	// Arrange
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormZoneRepository(db)
	ctx := context.Background()

	zone, err := territory.NewZone("W1N1", territory.StatusVacant, []shared.Position{
		{X: 10, Y: 10, Zone: "W1N1"},
		{X: 40, Y: 8, Zone: "W1N1"},
	})
	require.NoError(t, err)
	zone.Hostile = true

	// Act
	require.NoError(t, repo.Save(ctx, zone))
	found, err := repo.FindByName(ctx, "W1N1")

	// Assert
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, territory.StatusVacant, found.Status)
	assert.True(t, found.Hostile)
	assert.Equal(t, zone.Nodes, found.Nodes)
}

func TestZoneRepository_SaveUpdatesStatus(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormZoneRepository(db)
	ctx := context.Background()

	zone, _ := territory.NewZone("W1N1", territory.StatusVacant, nil)
	require.NoError(t, repo.Save(ctx, zone))
	zone.Status = territory.StatusOwnedHostile
	require.NoError(t, repo.Save(ctx, zone))

	found, err := repo.FindByName(ctx, "W1N1")
	require.NoError(t, err)
	assert.Equal(t, territory.StatusOwnedHostile, found.Status)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestZoneRepository_MissingZoneIsNil(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormZoneRepository(db)

	found, err := repo.FindByName(context.Background(), "E5S5")

	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestBaseRepository_SaveFindList(t *testing.T) {
	db := helpers.NewTestDB(t)
	repo := persistence.NewGormBaseRepository(db)
	ctx := context.Background()

	b1, _ := remote.NewBase("W2N1", shared.Position{X: 20, Y: 22, Zone: "W2N1"}, 5)
	b2, _ := remote.NewBase("E3S4", shared.Position{X: 10, Y: 30, Zone: "E3S4"}, 8)
	require.NoError(t, repo.Save(ctx, b1))
	require.NoError(t, repo.Save(ctx, b2))

	b1.Level = 6
	require.NoError(t, repo.Save(ctx, b1))

	found, err := repo.FindByName(ctx, "W2N1")
	require.NoError(t, err)
	assert.Equal(t, b1, found)

	missing, err := repo.FindByName(ctx, "W9N9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "E3S4", all[0].Name)
}
