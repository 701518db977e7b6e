package cmd_test

import (
	"io"
	"testing"

	"mentorship/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	root := cmd.NewRootCommand()

	names := []string{}
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "migrate")
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	root := cmd.NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"migrate", "sideways"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid argument")
}

func TestMigrateTakesOneDirection(t *testing.T) {
	root := cmd.NewRootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"migrate", "up", "down"})

	require.Error(t, root.Execute())
}
