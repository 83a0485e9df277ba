package environment

import (
	"fmt"
	"sort"

	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/platform"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Applier applies merged collections to environment snapshots
type Applier struct {
	caseInsensitive bool
}

// NewApplier creates an applier for a platform with the given variable name
// semantics
func NewApplier(caseInsensitive bool) *Applier {
	return &Applier{caseInsensitive: caseInsensitive}
}

// CaseInsensitive reports whether the applier matches names without regard to case
func (a *Applier) CaseInsensitive() bool {
	return a.caseInsensitive
}

// Apply mutates env in place with every mutator of merged, in list order.
// It panics on a mutator type it does not know.
func (a *Applier) Apply(merged *merge.Collection, env map[string]string) {
	logger := logging.GetLogger("environment")

	var actualKeys map[string]string
	if a.caseInsensitive {
		actualKeys = foldKeys(env)
	}

	applied := 0
	merged.Each(func(variable string, mutators []types.ExtensionMutator) {
		actual := variable
		if a.caseInsensitive {
			if existing, ok := actualKeys[platform.NormalizeKey(variable, true)]; ok {
				actual = existing
			}
		}

		for _, m := range mutators {
			env[actual] = mutate(env[actual], m)
			applied++
		}

		logger.Trace().
			Str("variable", actual).
			Int("mutators", len(mutators)).
			Msg("Applied variable")
	})

	logger.Debug().
		Int("variables", merged.Len()).
		Int("mutators", applied).
		Msg("Applied merged collection")
}

// ApplyCopy applies merged to a copy of env and returns the copy
func (a *Applier) ApplyCopy(merged *merge.Collection, env map[string]string) map[string]string {
	out := make(map[string]string, len(env)+merged.Len())
	for k, v := range env {
		out[k] = v
	}
	a.Apply(merged, out)
	return out
}

// Changed lists, sorted, the snapshot keys the applier would write to when
// applying merged onto env
func (a *Applier) Changed(merged *merge.Collection, env map[string]string) []string {
	var actualKeys map[string]string
	if a.caseInsensitive {
		actualKeys = foldKeys(env)
	}

	var keys []string
	merged.Each(func(variable string, mutators []types.ExtensionMutator) {
		if len(mutators) == 0 {
			return
		}
		actual := variable
		if a.caseInsensitive {
			if existing, ok := actualKeys[platform.NormalizeKey(variable, true)]; ok {
				actual = existing
			}
		}
		keys = append(keys, actual)
	})
	sort.Strings(keys)
	return keys
}

func mutate(current string, m types.ExtensionMutator) string {
	switch m.Type {
	case types.MutatorAppend:
		return current + m.Value
	case types.MutatorPrepend:
		return m.Value + current
	case types.MutatorReplace:
		return m.Value
	default:
		panic(fmt.Sprintf("environment: unknown mutator type %s from contributor %q", m.Type, m.ContributorID))
	}
}

// foldKeys maps lower-cased snapshot keys to the actual key. When keys collide
// the lexically smallest one wins.
func foldKeys(env map[string]string) map[string]string {
	folded := make(map[string]string, len(env))
	for key := range env {
		lower := platform.NormalizeKey(key, true)
		if existing, ok := folded[lower]; ok && existing < key {
			continue
		}
		folded[lower] = key
	}
	return folded
}
