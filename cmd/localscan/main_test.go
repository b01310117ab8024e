package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/localscan/intel-gateway/app/domain/intel"
	"github.com/localscan/intel-gateway/app/infrastructure/cache"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

func TestReadNamesPrefersArgs(t *testing.T) {
	names, err := readNames([]string{" Alice ", "Bob", "Alice"}, strings.NewReader("Carol\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names)
}

func TestReadNamesFromStdin(t *testing.T) {
	names, err := readNames(nil, strings.NewReader("Alice\r\n\nBob\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice", "Bob"}, names)

	_, err = readNames(nil, strings.NewReader("\n \n"))
	assert.ErrorIs(t, err, intel.ErrEmptyScan)
}

func TestTableRowLeavesUnknownStatsBlank(t *testing.T) {
	row := tableRow(intel.PlayerData{Name: "Alice", ID: 1, CorpName: "Alice Corp"})
	assert.Equal(t, "Alice", row[0])
	assert.Equal(t, "Alice Corp", row[1])
	assert.Equal(t, "", row[8])
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	renderTable(&buf, []intel.PlayerData{{
		Name:     "Alice",
		ID:       1,
		CorpName: "Alice Corp",
		AllyName: "Alice Alliance",
		Stats: &intel.Stats{
			DangerRatio:    80,
			GangRatio:      20,
			ShipsDestroyed: 10,
			ShipsLost:      4,
			Ships: []intel.Ship{
				{ID: 587, Name: "Rifter"},
				{ID: 24690, Name: "Hurricane"},
				{ID: 621, Name: "Caracal"},
				{ID: 670, Name: "Capsule"},
			},
		},
	}})

	out := buf.String()
	assert.Contains(t, out, "Alice Alliance")
	assert.Contains(t, out, "Rifter, Hurricane, Caracal")
	assert.NotContains(t, out, "Capsule")
	assert.Contains(t, out, "2.5")
}

func TestResolveRejectsUnknownOutput(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"resolve", "-o", "xml", "Alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
}

func TestCacheBackendDefaultsToSQLite(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"resolve", "-o", "xml", "Alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	_ = cmd.Execute()
	assert.Equal(t, cache.BackendSQLite, environment_variables.Current().CACHE_BACKEND)
}

func TestCacheBackendHonoursEnvUnlessFlagSet(t *testing.T) {
	t.Setenv("CACHE_BACKEND", "memory")
	cmd := newRootCommand()
	cmd.SetArgs([]string{"resolve", "-o", "xml", "Alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	_ = cmd.Execute()
	assert.Equal(t, cache.BackendMemory, environment_variables.Current().CACHE_BACKEND)

	cmd = newRootCommand()
	cmd.SetArgs([]string{"resolve", "--cache", "none", "-o", "xml", "Alice"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	_ = cmd.Execute()
	assert.Equal(t, cache.BackendNone, environment_variables.Current().CACHE_BACKEND)
}
