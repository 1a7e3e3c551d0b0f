package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foundly/foundly-server/internal/store"
	"github.com/foundly/foundly-server/internal/store/storetest"
)

func TestSQLiteStoreCompliance(t *testing.T) {
	storetest.RunComplianceSuite(t, func(t *testing.T) store.Store {
		path := filepath.Join(t.TempDir(), "foundly.db")
		s, err := Bootstrap(context.Background(), path)
		require.NoError(t, err)
		return s
	})
}
