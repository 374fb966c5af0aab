package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashmark/flashmark/internal/platform/postgres"
	"github.com/flashmark/flashmark/internal/store"
	"github.com/flashmark/flashmark/internal/store/storetest"
)

// openTestStore connects to the database named by
// FLASHMARK_TEST_DATABASE_URL and truncates the core tables so each
// subtest starts empty. Without the variable the test is skipped.
func openTestStore(t *testing.T) store.Repository {
	t.Helper()

	url := os.Getenv("FLASHMARK_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("FLASHMARK_TEST_DATABASE_URL not set; skipping PostgreSQL integration tests")
	}

	s, err := postgres.Open(context.Background(), url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.Reset(context.Background()))
	return s
}

func TestRepositoryConformance(t *testing.T) {
	storetest.Run(t, openTestStore)
}
