package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/filesystem"
	"github.com/arthur-debert/envmerge/pkg/testutil"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func declare(variable string, m types.Mutator) testutil.ContributorConfig {
	return testutil.ContributorConfig{Mutators: []types.Entry{{Variable: variable, Mutator: m}}}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootCmd_NoCommand(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	_, err := run(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), MsgErrNoCommand)
}

func TestVersionCmd(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "envmerge dev")
}

func TestCompletionCmd(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)

	out, err := run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "envmerge")

	_, err = run(t, "completion", "tcsh")
	assert.Error(t, err)
}

func TestSnippetCmd(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)

	out, err := run(t, "snippet", "fish")
	require.NoError(t, err)
	assert.Contains(t, out, "envmerge env --shell fish | source")

	_, err = run(t, "snippet", "tcsh")
	assert.Error(t, err)
}

func TestEnvCmd_MergesContributorsInOrder(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupContributor("a", declare("PATH", types.Append(":a")))
	env.SetupContributor("b", declare("PATH", types.Append(":b")))

	out, err := run(t, "env", "--empty", "--shell", "dotenv")
	require.NoError(t, err)
	assert.Equal(t, "PATH=\":b:a\"\n", out)
}

func TestEnvCmd_OnlyChangedUnlessAll(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupContributor("tools", declare("TOOLS_EDITOR", types.Replace("vim")))
	t.Setenv("UNTOUCHED_VAR", "kept")

	out, err := run(t, "env", "--shell", "json", "--no-record")
	require.NoError(t, err)

	var changed map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &changed))
	assert.Equal(t, map[string]string{"TOOLS_EDITOR": "vim"}, changed)

	out, err = run(t, "env", "--all", "--shell", "json", "--no-record")
	require.NoError(t, err)

	var all map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &all))
	assert.Equal(t, "vim", all["TOOLS_EDITOR"])
	assert.Equal(t, "kept", all["UNTOUCHED_VAR"])
}

func TestEnvCmd_InvalidShell(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	_, err := run(t, "env", "--shell", "csh")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestStatusCmd_TracksApplied(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupContributor("tools", declare("EDITOR", types.Replace("vim")))

	out, err := run(t, "status", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "never been applied")

	_, err = run(t, "env", "--empty")
	require.NoError(t, err)

	out, err = run(t, "status", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "up to date")

	_, err = run(t, "set", "extra", "PAGER=replace:less", "--persistent")
	require.NoError(t, err)

	out, err = run(t, "status", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "stale")
}

func TestSetCmd_PersistentSurvivesRuns(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)

	out, err := run(t, "set", "java", "JAVA_HOME=replace:/opt/jdk", "PATH=prepend:/opt/jdk/bin:", "--persistent")
	require.NoError(t, err)
	assert.Contains(t, out, "Registered 2 mutator(s) for java")

	out, err = run(t, "show", "--contributors", "--format", "json")
	require.NoError(t, err)

	var contributions []struct {
		ID         string        `json:"id"`
		Persistent bool          `json:"persistent"`
		Entries    []types.Entry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &contributions))
	require.Len(t, contributions, 1)
	assert.Equal(t, "java", contributions[0].ID)
	assert.True(t, contributions[0].Persistent)
	assert.Equal(t, []types.Entry{
		{Variable: "JAVA_HOME", Mutator: types.Replace("/opt/jdk")},
		{Variable: "PATH", Mutator: types.Prepend("/opt/jdk/bin:")},
	}, contributions[0].Entries)

	out, err = run(t, "delete", "java")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed java")

	out, err = run(t, "delete", "java")
	require.NoError(t, err)
	assert.Contains(t, out, "java was not registered")

	out, err = run(t, "show", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No environment mutations registered")
}

func TestSetCmd_RequiresPersistent(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)

	_, err := run(t, "set", "java", "JAVA_HOME=replace:/opt/jdk")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "--persistent")

	out, err := run(t, "show", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "No environment mutations registered")
}

func TestDeleteCmd_DiscoveredContributor(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupContributor("tools", declare("EDITOR", types.Replace("vim")))

	_, err := run(t, "delete", "tools")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Contains(t, err.Error(), filepath.Join(env.Root, "tools"))

	out, err := run(t, "show", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, `"vim"`)
}

func TestDeleteCmd_SavedOverrideOfDiscovered(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupContributor("tools", declare("EDITOR", types.Replace("vim")))

	_, err := run(t, "set", "tools", "EDITOR=replace:nano", "--persistent")
	require.NoError(t, err)

	out, err := run(t, "delete", "tools")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed tools")

	out, err = run(t, "show", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, `"vim"`)
	assert.NotContains(t, out, `"nano"`)
}

func TestSetCmd_InvalidMutator(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	_, err := run(t, "set", "tools", "EDITOR")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMutatorInvalid))
}

func TestShowCmd_Text(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	env.SetupContributor("tools", declare("EDITOR", types.Replace("vim")))

	out, err := run(t, "show", "--format", "text")
	require.NoError(t, err)
	assert.Contains(t, out, "EDITOR")
	assert.Contains(t, out, "tools")
	assert.Contains(t, out, `"vim"`)
}

func TestShowCmd_InvalidFormat(t *testing.T) {
	testutil.NewTestEnvironment(t, testutil.EnvIsolated)
	_, err := run(t, "show", "--format", "xml")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigValid))
}

func TestLoadStyles(t *testing.T) {
	fs := filesystem.NewMemory()
	configDir := "/config/envmerge"

	styles := loadStyles(fs, configDir)
	assert.True(t, styles.Has("Variable"))
	assert.False(t, styles.Has("Custom"))

	require.NoError(t, fs.MkdirAll(configDir, 0755))
	require.NoError(t, fs.WriteFile(filepath.Join(configDir, StylesFileName), []byte(`
styles:
  Custom:
    bold: true
`), 0644))

	styles = loadStyles(fs, configDir)
	assert.True(t, styles.Has("Custom"))
	assert.True(t, styles.Has("Variable"))

	require.NoError(t, fs.WriteFile(filepath.Join(configDir, StylesFileName), []byte("styles: ["), 0644))
	styles = loadStyles(fs, configDir)
	assert.False(t, styles.Has("Custom"))
	assert.True(t, styles.Has("Variable"))
}

func TestParseMutator(t *testing.T) {
	tests := []struct {
		name    string
		arg     string
		want    types.Entry
		wantErr bool
	}{
		{"replace", "EDITOR=replace:vim", types.Entry{Variable: "EDITOR", Mutator: types.Replace("vim")}, false},
		{"value keeps colons", "PATH=prepend:/a:/b:", types.Entry{Variable: "PATH", Mutator: types.Prepend("/a:/b:")}, false},
		{"value keeps equals", "OPTS=append: -Dx=y", types.Entry{Variable: "OPTS", Mutator: types.Append(" -Dx=y")}, false},
		{"empty value", "EMPTY=replace:", types.Entry{Variable: "EMPTY", Mutator: types.Replace("")}, false},
		{"set alias", "A=set:1", types.Entry{Variable: "A", Mutator: types.Replace("1")}, false},
		{"missing equals", "EDITOR", types.Entry{}, true},
		{"missing type", "EDITOR=vim", types.Entry{}, true},
		{"unknown type", "EDITOR=remove:vim", types.Entry{}, true},
		{"empty name", "=replace:x", types.Entry{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMutator(tt.arg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrMutatorInvalid))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMutators_LaterArgumentWins(t *testing.T) {
	c, err := ParseMutators(true, []string{"A=append:1", "B=append:2", "A=replace:3"})
	require.NoError(t, err)
	assert.True(t, c.Persistent)
	assert.Equal(t, []types.Entry{
		{Variable: "A", Mutator: types.Replace("3")},
		{Variable: "B", Mutator: types.Append("2")},
	}, c.Entries())
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(errors.New(errors.ErrInternal, "boom")))
	assert.Equal(t, 3, ExitCode(errors.New(errors.ErrExec, "failed").WithDetail("exit_code", 3)))
}
