package merge

import (
	"github.com/arthur-debert/envmerge/pkg/platform"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Diff describes how a merged collection changed. Maps are keyed by variable
// name.
type Diff struct {
	// Added holds mutators from contributors that had none for the variable
	Added map[string][]types.ExtensionMutator `json:"added" yaml:"added"`

	// Changed holds the new mutators of contributors whose type or value changed
	Changed map[string][]types.ExtensionMutator `json:"changed" yaml:"changed"`

	// Removed holds mutators from contributors that no longer touch the variable
	Removed map[string][]types.ExtensionMutator `json:"removed" yaml:"removed"`
}

// Empty reports whether the diff holds no changes
func (d *Diff) Empty() bool {
	return d == nil || (len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0)
}

// Diff compares c, the current collection, with other, the new one. It
// returns nil when they are equivalent.
func (c *Collection) Diff(other *Collection) *Diff {
	d := &Diff{
		Added:   make(map[string][]types.ExtensionMutator),
		Changed: make(map[string][]types.ExtensionMutator),
		Removed: make(map[string][]types.ExtensionMutator),
	}

	other.Each(func(variable string, otherMutators []types.ExtensionMutator) {
		current, _ := c.lookup(platform.NormalizeKey(variable, c.CaseInsensitive()))
		if added := missingMutators(otherMutators, current); len(added) > 0 {
			d.Added[variable] = added
		}
	})

	c.Each(func(variable string, current []types.ExtensionMutator) {
		otherMutators, ok := other.lookup(platform.NormalizeKey(variable, other.CaseInsensitive()))
		if removed := missingMutators(current, otherMutators); len(removed) > 0 {
			d.Removed[variable] = removed
		}
		if !ok {
			return
		}
		if changed := changedMutators(current, otherMutators); len(changed) > 0 {
			d.Changed[variable] = changed
		}
	})

	if d.Empty() {
		return nil
	}
	return d
}

// missingMutators returns the mutators of current whose contributor has no
// mutator in other.
func missingMutators(current, other []types.ExtensionMutator) []types.ExtensionMutator {
	contributors := make(map[string]struct{}, len(other))
	for _, m := range other {
		contributors[m.ContributorID] = struct{}{}
	}

	var result []types.ExtensionMutator
	for _, m := range current {
		if _, ok := contributors[m.ContributorID]; !ok {
			result = append(result, m)
		}
	}
	return result
}

// changedMutators returns the mutators of other whose contributor also has a
// mutator in current with a different type or value.
func changedMutators(current, other []types.ExtensionMutator) []types.ExtensionMutator {
	byContributor := make(map[string]types.ExtensionMutator, len(other))
	for _, m := range other {
		byContributor[m.ContributorID] = m
	}

	var result []types.ExtensionMutator
	for _, m := range current {
		next, ok := byContributor[m.ContributorID]
		if ok && (m.Type != next.Type || m.Value != next.Value) {
			result = append(result, next)
		}
	}
	return result
}
