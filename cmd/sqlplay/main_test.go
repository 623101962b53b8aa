package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/sqlplay/internal/cli"
	"github.com/leapstack-labs/sqlplay/pkg/adapter"
)

func TestAdaptersRegistered(t *testing.T) {
	assert.Equal(t, []string{"duckdb", "mysql", "postgres", "sqlite"}, adapter.ListAdapters())
}

func TestVersionCommand(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "sqlplay v")
}

func TestHelpListsCommands(t *testing.T) {
	cmd := cli.NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--help"})

	require.NoError(t, cmd.Execute())
	for _, name := range []string{"serve", "run", "explain", "translate", "datasets", "repl"} {
		assert.Contains(t, buf.String(), name)
	}
}
