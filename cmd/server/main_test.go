package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kamio90/zus-retirement-simulator-sub000/engine"
	"github.com/kamio90/zus-retirement-simulator-sub000/store/sqlite"
)

// execute runs the root command once. Flag values persist between runs in
// one process, so each test drives a different command.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--config", filepath.Join(t.TempDir(), "absent.yaml"), "--log-level", "error"))
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestSimulateCommand_PrintsResult(t *testing.T) {
	// GIVEN: The reference worker on the command line
	// WHEN: Running simulate against the demo bundle
	out := execute(t, "simulate",
		"--birth-year", "1990",
		"--gender", "M",
		"--start-work-year", "2010",
		"--gross-monthly", "6500",
		"--compact",
	)

	// THEN: The printed JSON is the engine's result
	var result engine.Output
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 2055, result.Scenario.RetirementYear)
	assert.Equal(t, engine.Q2, result.Scenario.Quarter)
	assert.Len(t, result.Trajectory, 45)
	assert.True(t, result.MonthlyNominal.IsPositive())
	assert.Equal(t, "demo", result.Assumptions.ProviderKind)
}

func TestSeedCommand_WritesStore(t *testing.T) {
	// GIVEN: An empty store location
	path := filepath.Join(t.TempDir(), "tables.db")
	t.Setenv("SIMULATOR_STORE", path)

	// WHEN: Seeding a range of years
	execute(t, "seed", "--from", "2000", "--to", "2070")

	// THEN: The store holds one row per year
	store, err := sqlite.New(path)
	require.NoError(t, err)
	defer store.Close()

	tables, err := store.LoadTables(context.Background())
	require.NoError(t, err)
	assert.Len(t, tables.Annual, 71)
	assert.Equal(t, "demo-annual-v1", tables.Meta.AnnualSetID)
}
