package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/envmerge/pkg/contributors"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupContributor_RoundTripsThroughDiscovery(t *testing.T) {
	for _, format := range []string{"toml", "yaml"} {
		t.Run(format, func(t *testing.T) {
			env := NewTestEnvironment(t, EnvMemoryOnly)
			entries := []types.Entry{
				{Variable: "PATH", Mutator: types.Prepend("/opt/bin:")},
				{Variable: "EDITOR", Mutator: types.Replace("vim")},
			}
			env.SetupContributor("tools", ContributorConfig{Persistent: true, Mutators: entries, Format: format})
			env.SetupContributor("hidden", ContributorConfig{Mutators: entries, Ignored: true})

			found, err := contributors.Discover(env.Root, env.FS, contributors.OptionsFromConfig(env.Config().Contributors))
			require.NoError(t, err)
			require.Len(t, found, 1)
			assert.Equal(t, "tools", found[0].ID)
			assert.True(t, found[0].Collection.Persistent)
			assert.Equal(t, entries, found[0].Collection.Entries())
		})
	}
}

func TestNewTestEnvironment_Isolated(t *testing.T) {
	env := NewTestEnvironment(t, EnvIsolated)

	assert.True(t, filepath.IsAbs(env.Root))
	assert.Equal(t, env.Root, env.Paths.ContributorsRoot())
	assert.Equal(t, env.StateDir, env.Paths.StateDir())

	info, err := env.FS.Stat(env.Root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
