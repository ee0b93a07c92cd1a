package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenfelt/pokerengine/internal/logging"
	"github.com/greenfelt/pokerengine/pkg/poker"
	"github.com/greenfelt/pokerengine/pkg/server/internal/store"
)

// newTestMutator opens a fresh temp-file sqlite store and wires it to a
// Mutator, mirroring the e2e harness's tmpDir/dbPath setup.
func newTestMutator(t *testing.T) *Mutator {
	t.Helper()
	backend, err := logging.NewBackend(logging.Config{DebugLevel: "debug"})
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "poker.sqlite")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return NewMutator(st, backend.Logger("TEST"))
}

func bootstrapTable(t *testing.T, m *Mutator, tableID string) {
	t.Helper()
	tbl := poker.NewTable(tableID, 10, 20, 2, 9)
	require.NoError(t, m.CreateTable(context.Background(), tbl))
}
