package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/tropicaldog17/folio/internal/db"
	"github.com/tropicaldog17/folio/internal/repositories"
)

type testStore struct {
	positions repositories.PositionRepository
	snapshots repositories.SnapshotRepository
}

func newTestStore(t *testing.T) testStore {
	t.Helper()
	database, err := db.Connect(db.Config{Driver: db.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return testStore{
		positions: repositories.NewPositionRepository(database),
		snapshots: repositories.NewSnapshotRepository(database),
	}
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}
