//go:build integration
// +build integration

package integration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestErrors_DatabaseConnectionLost tests graceful handling when DB connection lost
func TestErrors_DatabaseConnectionLost(t *testing.T) {
	t.Skip("TODO: Implement Phase 6 - requires running server")

	ctx := context.Background()

	infra, err := SetupTestInfrastructure(ctx)
	require.NoError(t, err)
	defer infra.Teardown(ctx)

	// TODO: Stop PostgreSQL container mid-request
	// TODO: Make API request
	// TODO: Assert 503 Service Unavailable
	// TODO: Assert error logged
}

// TestErrors_RedisConnectionLost tests fallback when Redis fails
func TestErrors_RedisConnectionLost(t *testing.T) {
	t.Skip("TODO: Implement Phase 6")

	ctx := context.Background()

	infra, err := SetupTestInfrastructure(ctx)
	require.NoError(t, err)
	defer infra.Teardown(ctx)

	// TODO: Stop Redis container
	// TODO: Make classification request
	// TODO: Assert graceful degradation (L1 cache only)
	// TODO: Assert no panics
}

// TestErrors_LLMTimeout tests LLM timeout handling
func TestErrors_LLMTimeout(t *testing.T) {
	t.Skip("TODO: Implement Phase 6")

	ctx := context.Background()

	infra, err := SetupTestInfrastructure(ctx)
	require.NoError(t, err)
	defer infra.Teardown(ctx)

	helper := NewAPITestHelper(infra)

	// Configure high latency
	helper.MockLLM.SetLatency(10 * time.Second)

	// TODO: POST /classification/classify
	// TODO: Assert fallback to rule-based
	// TODO: Assert response within timeout
}

// TestErrors_InvalidConfiguration tests configuration validation
func TestErrors_InvalidConfiguration(t *testing.T) {
	t.Skip("TODO: Implement Phase 6")

	// TODO: POST /config with invalid configuration
	// TODO: Assert validation error
	// TODO: Assert rollback to previous config
}

// TestErrors_PublishingTargetUnreachable tests DLQ on target failure
func TestErrors_PublishingTargetUnreachable(t *testing.T) {
	t.Skip("TODO: Implement Phase 6")

	// TODO: Configure unreachable target
	// TODO: Submit alert to queue
	// TODO: Assert retry attempts
	// TODO: Assert moved to DLQ after max retries
}

// TestErrors_GracefulDegradation tests system continues on partial failures
func TestErrors_GracefulDegradation(t *testing.T) {
	t.Skip("TODO: Implement Phase 6")

	// TODO: Stop Redis
	// TODO: Make webhook request
	// TODO: Assert alert still processed (degraded mode)
	// TODO: Assert metrics recorded
}

// TestErrors_Recovery tests component recovery
func TestErrors_Recovery(t *testing.T) {
	t.Skip("TODO: Implement Phase 6")

	// TODO: Stop Redis
	// TODO: Assert degraded mode
	// TODO: Restart Redis
	// TODO: Assert full functionality resumes
}
