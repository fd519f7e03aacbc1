package telemetry_test

import (
	"context"
	"testing"

	"flooded-island-server/internal/telemetry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "test-service", "")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSetup_NoopShutdownIgnoresCancelledContext(t *testing.T) {
	shutdown, err := telemetry.Setup(context.Background(), "noop-test", "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, shutdown(ctx))
}

func TestSetup_CreatesProviderWhenEndpointSet(t *testing.T) {
	// Non-routable address so nothing is exported.
	shutdown, err := telemetry.Setup(context.Background(), "test-service", "http://192.0.2.1:4318")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}
