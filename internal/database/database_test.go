package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func mustStartPostgresContainer(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("flooded_island"),
		postgres.WithUsername("island"),
		postgres.WithPassword("island"),
		postgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err)

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

func TestNew_InvalidURL(t *testing.T) {
	_, err := New(context.Background(), "://not-a-url")
	assert.Error(t, err)
}

func TestArchive_RoundTrip(t *testing.T) {
	dsn := mustStartPostgresContainer(t)
	ctx := context.Background()

	srv, err := New(ctx, dsn)
	require.NoError(t, err)
	defer srv.Close()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := srv.RecordMatch(ctx, MatchResult{
			RoomID:        fmt.Sprintf("ROOM%d", i),
			Winner:        "flooder",
			DaysSurvived:  10 + i,
			FieldsFlooded: 5,
			FieldsDry:     20,
			TotalFields:   25,
			CreatedAt:     base,
			EndedAt:       base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	matches, err := srv.RecentMatches(ctx, 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "ROOM2", matches[0].RoomID)
	assert.Equal(t, "ROOM1", matches[1].RoomID)
	assert.Equal(t, 12, matches[0].DaysSurvived)
	assert.True(t, matches[0].EndedAt.Equal(base.Add(2*time.Minute)))
}

func TestArchive_MigrateIsIdempotent(t *testing.T) {
	dsn := mustStartPostgresContainer(t)
	ctx := context.Background()

	first, err := New(ctx, dsn)
	require.NoError(t, err)
	first.Close()

	second, err := New(ctx, dsn)
	require.NoError(t, err)
	defer second.Close()

	matches, err := second.RecentMatches(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestHealth(t *testing.T) {
	dsn := mustStartPostgresContainer(t)
	srv, err := New(context.Background(), dsn)
	require.NoError(t, err)
	defer srv.Close()

	stats := srv.Health(context.Background())
	assert.Equal(t, "up", stats["status"])
	assert.Equal(t, "It's healthy", stats["message"])
	assert.Contains(t, stats, "open_connections")
}
