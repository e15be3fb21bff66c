package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	expected := []string{"goes16", "airs", "gridsat"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "satdownload", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestSharedFlags_Registered(t *testing.T) {
	for _, c := range rootCmd.Commands() {
		date := c.Flags().Lookup("date")
		require.NotNil(t, date, "%s should have --date", c.Name())

		step := c.Flags().Lookup("step")
		require.NotNil(t, step, "%s should have --step", c.Name())
		assert.Equal(t, "60", step.DefValue, c.Name())

		require.NotNil(t, c.Flags().Lookup("region"), "%s should have --region", c.Name())
		require.NotNil(t, c.Flags().Lookup("output"), "%s should have --output", c.Name())
		require.NotNil(t, c.Flags().Lookup("workers"), "%s should have --workers", c.Name())
		require.NotNil(t, c.Flags().Lookup("manifest"), "%s should have --manifest", c.Name())
	}
}

func TestGoes16Command_Flags(t *testing.T) {
	flag := goes16Cmd.Flags().Lookup("channels")
	require.NotNil(t, flag, "goes16 should have --channels flag")
	assert.Equal(t, "k", flag.Shorthand)

	require.NotNil(t, goes16Cmd.Flags().Lookup("product"))
	require.NotNil(t, goes16Cmd.Flags().Lookup("mesoregion"))
}

func TestAirsCommand_Flags(t *testing.T) {
	require.NotNil(t, airsCmd.Flags().Lookup("measurements"))

	user := airsCmd.Flags().Lookup("username")
	require.NotNil(t, user)
	assert.Equal(t, "u", user.Shorthand)

	pass := airsCmd.Flags().Lookup("password")
	require.NotNil(t, pass)
	assert.Equal(t, "p", pass.Shorthand)
}
