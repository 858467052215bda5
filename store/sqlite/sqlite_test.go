package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/demo"
	"github.com/kamio90/zus-retirement-simulator-sub000/providers/table"
	"github.com/kamio90/zus-retirement-simulator-sub000/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func demoTables(t *testing.T) *table.Tables {
	tables, err := table.Snapshot(demo.New(), 2000, 2060)
	require.NoError(t, err)
	return tables
}

func TestStore_EmptyStoreHasNoTables(t *testing.T) {
	_, err := newTestStore(t).LoadTables(context.Background())
	assert.ErrorIs(t, err, table.ErrNoTables)
}

func TestStore_RoundTripPreservesTables(t *testing.T) {
	// GIVEN: A snapshot of the demo bundle
	// WHEN: Saving and loading it
	// THEN: Every row comes back unchanged

	ctx := context.Background()
	store := newTestStore(t)
	want := demoTables(t)

	require.NoError(t, store.SaveTables(ctx, want))
	got, err := store.LoadTables(ctx)
	require.NoError(t, err)

	assert.Equal(t, want, got)
}

func TestStore_SaveReplacesPreviousBundle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveTables(ctx, demoTables(t)))

	smaller, err := table.Snapshot(demo.New(), 2020, 2022)
	require.NoError(t, err)
	smaller.Special = nil
	require.NoError(t, store.SaveTables(ctx, smaller))

	got, err := store.LoadTables(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Annual, 3)
	assert.Nil(t, got.Special)
}

func TestStore_RejectsInvalidTables(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	bad := demoTables(t)
	bad.Meta.BaseYear = 0
	assert.ErrorIs(t, store.SaveTables(ctx, bad), table.ErrInvalidTables)

	_, err := store.LoadTables(ctx)
	assert.ErrorIs(t, err, table.ErrNoTables, "nothing written")
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tables.db")

	store, err := sqlite.New(path)
	require.NoError(t, err)
	require.NoError(t, store.SaveTables(ctx, demoTables(t)))
	require.NoError(t, store.Close())

	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	providers, err := table.Load(ctx, reopened)
	require.NoError(t, err)

	out, err := engine.Calculate(engine.Input{
		BirthYear:     1980,
		Gender:        engine.Male,
		StartWorkYear: 2002,
		GrossMonthly:  engine.NewMoneyFromInt(9000),
	}, providers)
	require.NoError(t, err)
	assert.Equal(t, "table", out.Assumptions.ProviderKind)
	assert.Len(t, out.Trajectory, 43)
}
