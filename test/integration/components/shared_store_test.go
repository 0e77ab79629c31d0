package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerbank/transfer-engine/test/integration/testenv"
)

// TestSharedPostgresIsASingleton verifies every test container in a
// process reuses the same underlying connection pool rather than paying
// for a fresh testcontainer per test.
func TestSharedPostgresIsASingleton(t *testing.T) {
	first := testenv.NewTestContainer(t)
	second := testenv.NewTestContainer(t)

	assert.Same(t, first.GetStore().Pool, second.GetStore().Pool,
		"both test containers should share the same pgxpool.Pool")
}

// TestEachTestContainerGetsItsOwnEventCapture verifies the per-container
// state that is NOT shared: every call builds a fresh EventCapture so
// tests never leak published events into one another.
func TestEachTestContainerGetsItsOwnEventCapture(t *testing.T) {
	first := testenv.NewTestContainer(t)
	second := testenv.NewTestContainer(t)

	assert.NotSame(t, first.EventPublisher, second.EventPublisher,
		"each test container should have an independent event capture")
}
