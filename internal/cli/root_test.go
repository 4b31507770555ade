package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	names := map[string]bool{}
	for _, cmd := range root.Commands() {
		names[cmd.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["apply-plan-changes"])

	serve, _, err := root.Find([]string{"serve"})
	require.NoError(t, err)
	assert.NotNil(t, serve.Flags().Lookup("migrate"))
}

func TestMigrateCommand_RejectsUnknownAction(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate", "sideways"})

	err := root.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sideways")
}

func TestMigrateCommand_RequiresAction(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"migrate"})

	assert.Error(t, root.Execute())
}

func TestRootOptions_LogLevelOverride(t *testing.T) {
	t.Setenv("DB_USER", "meals")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "meals")
	t.Setenv("JWT_SECRET", "jwt")
	t.Setenv("LOG_LEVEL", "info")

	opts := &rootOptions{logLevel: "debug"}
	cfg, err := opts.load()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestApplyPlanChangesCommand_TakesNoArgs(t *testing.T) {
	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"apply-plan-changes", "now"})

	assert.Error(t, root.Execute())
}
