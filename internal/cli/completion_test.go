package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletionBashGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenBashCompletion(&buf))

	output := buf.String()
	assert.Contains(t, output, "# bash completion for plantdash")
	assert.Contains(t, output, "__plantdash_debug")
}

func TestCompletionZshGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenZshCompletion(&buf))
	assert.Contains(t, buf.String(), "#compdef plantdash")
}

func TestCompletionFishGeneration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, rootCmd.GenFishCompletion(&buf, true))
	assert.Contains(t, buf.String(), "complete -c plantdash")
}

func TestCompletionCommandValidArgs(t *testing.T) {
	assert.ElementsMatch(t, []string{"bash", "zsh", "fish", "powershell"}, completionCmd.ValidArgs)
}

func TestRootRegistersCommands(t *testing.T) {
	want := []string{"dashboard", "setup", "profiles", "interval", "watch", "doctor", "init", "config", "fake-backend", "completion", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}

	activate, _, err := rootCmd.Find([]string{"profiles", "activate"})
	require.NoError(t, err)
	assert.Equal(t, "activate", activate.Name())
}
