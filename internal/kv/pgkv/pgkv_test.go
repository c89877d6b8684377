package pgkv

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/atomicnotes/internal/kv/kvtest"
)

// Set DATABASE_TEST_DSN to run against a disposable database. The schema is
// dropped before the run.
func TestPostgresKV(t *testing.T) {
	databaseDSN := os.Getenv("DATABASE_TEST_DSN")
	if databaseDSN == "" {
		t.Skip("DATABASE_TEST_DSN is not set")
	}

	theStorage, err := New(
		context.Background(),
		databaseDSN,
		10*time.Second,
		WithDBPreReset(true),
	)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, theStorage.Close())
	}()

	kvtest.Run(t, theStorage)
}
