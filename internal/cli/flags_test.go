package cli

import (
	stderrors "errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/vercheck/internal/errors"
)

func TestExitCodeForError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, ExitSuccess},
		{"generic error", stderrors.New("something broke"), ExitError},
		{"invalid output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"wrapped invalid output format", errors.Wrap(errors.ErrInvalidOutputFormat, "bad"), ExitInvalidInput},
		{"unknown tool", errors.ErrUnknownTool, ExitInvalidInput},
		{"no tools", errors.ErrNoTools, ExitInvalidInput},
		{"cobra unknown flag", stderrors.New("unknown flag: --bogus"), ExitInvalidInput},
		{"cobra unknown shorthand", stderrors.New("unknown shorthand flag: 'x' in -x"), ExitInvalidInput},
		{"cobra missing argument", stderrors.New("flag needs an argument: --output"), ExitInvalidInput},
		{"cobra exclusive group", stderrors.New("if any flags in the group [verbose quiet] are set none of the others can be"), ExitInvalidInput},
		{"cobra unknown command", stderrors.New(`unknown command "bogus" for "vercheck"`), ExitInvalidInput},
		{"cobra too many args", stderrors.New("accepts at most 1 arg(s), received 2"), ExitInvalidInput},
		{"verification failure", stderrors.New("verification not clean: 1 failed, 0 error"), ExitError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, ExitCodeForError(tc.err))
		})
	}
}

func TestIsValidOutputFormat(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidOutputFormat(OutputText))
	assert.True(t, IsValidOutputFormat(OutputJSON))
	assert.False(t, IsValidOutputFormat("yaml"))
	assert.False(t, IsValidOutputFormat(""))
	assert.Equal(t, []string{"text", "json"}, ValidOutputFormats())
}

func TestAddGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	output := cmd.PersistentFlags().Lookup("output")
	require.NotNil(t, output)
	assert.Equal(t, "o", output.Shorthand)
	assert.Equal(t, OutputText, output.DefValue)

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)

	quiet := cmd.PersistentFlags().Lookup("quiet")
	require.NotNil(t, quiet)
	assert.Equal(t, "q", quiet.Shorthand)
}

func TestAddGlobalFlags_VerboseQuietExclusive(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{
		Use:  "test",
		RunE: func(*cobra.Command, []string) error { return nil },
	}
	AddGlobalFlags(cmd, flags)

	cmd.SetArgs([]string{"--verbose", "--quiet"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestBindGlobalFlags(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "test"}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))

	// Bound flags surface their defaults through viper.
	assert.Equal(t, OutputText, v.GetString("output"))
	assert.False(t, v.GetBool("verbose"))

	require.NoError(t, cmd.PersistentFlags().Set("output", OutputJSON))
	assert.Equal(t, OutputJSON, v.GetString("output"))
}

func TestBindGlobalFlags_Subcommand(t *testing.T) {
	t.Parallel()

	flags := &GlobalFlags{}
	root := &cobra.Command{Use: "root"}
	AddGlobalFlags(root, flags)
	sub := &cobra.Command{Use: "sub"}
	root.AddCommand(sub)

	// Binding from a subcommand still finds the root's persistent flags.
	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, sub))
	assert.Equal(t, OutputText, v.GetString("output"))
}
