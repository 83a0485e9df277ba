package environment

import (
	"testing"

	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/registry"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/stretchr/testify/assert"
)

func mergedOf(caseInsensitive bool, contributions ...types.Contribution) *merge.Collection {
	return merge.Merge(contributions, caseInsensitive)
}

func contribution(id, variable string, m types.Mutator) types.Contribution {
	return types.Contribution{
		ID:         id,
		Collection: types.NewCollection(false, types.Entry{Variable: variable, Mutator: m}),
	}
}

func TestApply_SingleMutator(t *testing.T) {
	tests := []struct {
		name    string
		mutator types.Mutator
		env     map[string]string
		want    string
	}{
		{"append onto absent", types.Append("bar"), map[string]string{}, "bar"},
		{"prepend onto absent", types.Prepend("bar"), map[string]string{}, "bar"},
		{"replace onto absent", types.Replace("bar"), map[string]string{}, "bar"},
		{"append onto present", types.Append("bar"), map[string]string{"FOO": "x"}, "xbar"},
		{"prepend onto present", types.Prepend("bar"), map[string]string{"FOO": "x"}, "barx"},
		{"replace onto present", types.Replace("bar"), map[string]string{"FOO": "x"}, "bar"},
		{"replace with empty value", types.Replace(""), map[string]string{"FOO": "x"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			merged := mergedOf(false, contribution("ext", "FOO", tt.mutator))
			NewApplier(false).Apply(merged, tt.env)
			assert.Equal(t, tt.want, tt.env["FOO"])
		})
	}
}

func TestApply_LeavesOtherVariablesAlone(t *testing.T) {
	env := map[string]string{"HOME": "/home/me"}
	merged := mergedOf(false, contribution("ext", "FOO", types.Append("bar")))

	NewApplier(false).Apply(merged, env)

	assert.Equal(t, map[string]string{"HOME": "/home/me", "FOO": "bar"}, env)
}

func TestApply_RegistryScenarios(t *testing.T) {
	t.Run("appends apply most recent contributor first", func(t *testing.T) {
		reg := registry.New()
		reg.SetEntries("ext1", false, types.Entry{Variable: "VAR", Mutator: types.Append("1")})
		reg.SetEntries("ext2", false, types.Entry{Variable: "VAR", Mutator: types.Append("2")})

		env := map[string]string{}
		NewApplier(false).Apply(reg.Merged(), env)
		assert.Equal(t, "21", env["VAR"])
	})

	t.Run("replace discards later append", func(t *testing.T) {
		reg := registry.New()
		reg.SetEntries("ext1", false, types.Entry{Variable: "VAR", Mutator: types.Replace("A")})
		reg.SetEntries("ext2", false, types.Entry{Variable: "VAR", Mutator: types.Append("B")})

		env := map[string]string{"VAR": "old"}
		NewApplier(false).Apply(reg.Merged(), env)
		assert.Equal(t, "A", env["VAR"])
	})

	t.Run("earlier append survives a later replace", func(t *testing.T) {
		reg := registry.New()
		reg.SetEntries("ext1", false, types.Entry{Variable: "VAR", Mutator: types.Append("B")})
		reg.SetEntries("ext2", false, types.Entry{Variable: "VAR", Mutator: types.Replace("A")})

		env := map[string]string{}
		NewApplier(false).Apply(reg.Merged(), env)
		// replace runs first, then the earlier contributor's append
		assert.Equal(t, "AB", env["VAR"])
	})
}

func TestApply_CaseInsensitiveKeepsSnapshotCasing(t *testing.T) {
	env := map[string]string{"Path": "/usr/bin"}
	merged := mergedOf(true, contribution("ext", "PATH", types.Append(":/opt/bin")))

	NewApplier(true).Apply(merged, env)

	assert.Equal(t, map[string]string{"Path": "/usr/bin:/opt/bin"}, env)
}

func TestApply_CaseSensitiveTreatsCasingAsDistinct(t *testing.T) {
	env := map[string]string{"Path": "/usr/bin"}
	merged := mergedOf(false, contribution("ext", "PATH", types.Append(":/opt/bin")))

	NewApplier(false).Apply(merged, env)

	assert.Equal(t, map[string]string{"Path": "/usr/bin", "PATH": ":/opt/bin"}, env)
}

func TestApply_CaseInsensitiveCollisionPicksSmallestKey(t *testing.T) {
	env := map[string]string{"PATH": "a", "Path": "b", "path": "c"}
	merged := mergedOf(true, contribution("ext", "path", types.Append("!")))

	NewApplier(true).Apply(merged, env)

	assert.Equal(t, "a!", env["PATH"])
	assert.Equal(t, "b", env["Path"])
	assert.Equal(t, "c", env["path"])
}

func TestApply_UnknownMutatorTypePanics(t *testing.T) {
	merged := merge.FromEntries([]merge.Entry{{
		Variable: "VAR",
		Mutators: []types.ExtensionMutator{{ContributorID: "bad", Type: types.MutatorType(9), Value: "x"}},
	}}, false)

	assert.Panics(t, func() {
		NewApplier(false).Apply(merged, map[string]string{})
	})
}

func TestApply_NilMerged(t *testing.T) {
	env := map[string]string{"A": "1"}
	NewApplier(false).Apply(nil, env)
	assert.Equal(t, map[string]string{"A": "1"}, env)
}

func TestApplyCopy_DoesNotTouchInput(t *testing.T) {
	env := map[string]string{"FOO": "x"}
	merged := mergedOf(false, contribution("ext", "FOO", types.Append("y")))

	out := NewApplier(false).ApplyCopy(merged, env)

	assert.Equal(t, "x", env["FOO"])
	assert.Equal(t, "xy", out["FOO"])
}

func TestChanged(t *testing.T) {
	merged := mergedOf(true,
		contribution("a", "PATH", types.Append(":/x")),
		contribution("b", "EDITOR", types.Replace("vi")),
	)
	env := map[string]string{"Path": "/usr/bin", "HOME": "/home"}

	assert.Equal(t, []string{"EDITOR", "Path"}, NewApplier(true).Changed(merged, env))
	assert.Equal(t, []string{"EDITOR", "PATH"}, NewApplier(false).Changed(merged, env))
}
