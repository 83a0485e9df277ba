package merge

import (
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/platform"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Entry is the merged list of mutators for one variable
type Entry struct {
	// Variable is the variable name as first declared by a contributor
	Variable string `json:"variable" yaml:"variable"`

	// Mutators are listed in application order
	Mutators []types.ExtensionMutator `json:"mutators" yaml:"mutators"`
}

// Collection is the result of merging every contributor's collection.
// It is immutable once built.
type Collection struct {
	caseInsensitive bool
	contributors    int
	order           []string
	entries         map[string]*Entry
}

// Merge builds a merged collection from contributions taken in order.
//
// When caseInsensitive is set, variables whose names differ only by case are
// merged into one entry that keeps the first declared spelling.
func Merge(contributions []types.Contribution, caseInsensitive bool) *Collection {
	logger := logging.GetLogger("merge")

	c := &Collection{
		caseInsensitive: caseInsensitive,
		contributors:    len(contributions),
		entries:         make(map[string]*Entry),
	}

	for _, contribution := range contributions {
		for _, e := range contribution.Collection.Entries() {
			key := platform.NormalizeKey(e.Variable, caseInsensitive)
			entry, ok := c.entries[key]
			if !ok {
				entry = &Entry{Variable: e.Variable}
				c.entries[key] = entry
				c.order = append(c.order, key)
			}

			// A replace at the head already decides the value
			if len(entry.Mutators) > 0 && entry.Mutators[0].Type == types.MutatorReplace {
				logger.Trace().
					Str("variable", entry.Variable).
					Str("contributor", contribution.ID).
					Str("blockedBy", entry.Mutators[0].ContributorID).
					Msg("Skipping mutator behind replace")
				continue
			}

			tagged := types.ExtensionMutator{
				ContributorID: contribution.ID,
				Type:          e.Mutator.Type,
				Value:         e.Mutator.Value,
			}
			entry.Mutators = append([]types.ExtensionMutator{tagged}, entry.Mutators...)
		}
	}

	logger.Debug().
		Int("contributors", len(contributions)).
		Int("variables", len(c.order)).
		Msg("Merged environment collections")

	return c
}

// Empty returns a merged collection without entries
func Empty(caseInsensitive bool) *Collection {
	return Merge(nil, caseInsensitive)
}

// CaseInsensitive reports whether variable names were folded while merging
func (c *Collection) CaseInsensitive() bool {
	return c != nil && c.caseInsensitive
}

// Contributors returns the number of contributions the collection was
// merged from, including ones that declared nothing
func (c *Collection) Contributors() int {
	if c == nil {
		return 0
	}
	return c.contributors
}

// Len returns the number of variables in the collection
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Get returns the mutators for variable in application order
func (c *Collection) Get(variable string) ([]types.ExtensionMutator, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.entries[platform.NormalizeKey(variable, c.caseInsensitive)]
	if !ok {
		return nil, false
	}
	return append([]types.ExtensionMutator(nil), entry.Mutators...), true
}

// Variables returns the variable names in the order they were first declared
func (c *Collection) Variables() []string {
	if c == nil {
		return nil
	}
	names := make([]string, 0, len(c.order))
	for _, key := range c.order {
		names = append(names, c.entries[key].Variable)
	}
	return names
}

// Entries returns a copy of every entry in first-declared order
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, 0, len(c.order))
	for _, key := range c.order {
		entry := c.entries[key]
		out = append(out, Entry{
			Variable: entry.Variable,
			Mutators: append([]types.ExtensionMutator(nil), entry.Mutators...),
		})
	}
	return out
}

// Each calls fn for every entry in first-declared order. The mutator slice
// must not be modified.
func (c *Collection) Each(fn func(variable string, mutators []types.ExtensionMutator)) {
	if c == nil {
		return
	}
	for _, key := range c.order {
		entry := c.entries[key]
		fn(entry.Variable, entry.Mutators)
	}
}

// FromEntries rebuilds a merged collection from previously merged entries,
// for example ones read back from disk. Entries are taken as already merged.
func FromEntries(entries []Entry, caseInsensitive bool) *Collection {
	c := &Collection{
		caseInsensitive: caseInsensitive,
		entries:         make(map[string]*Entry, len(entries)),
	}
	seen := make(map[string]bool)
	for _, e := range entries {
		for _, m := range e.Mutators {
			if !seen[m.ContributorID] {
				seen[m.ContributorID] = true
				c.contributors++
			}
		}
		key := platform.NormalizeKey(e.Variable, caseInsensitive)
		if existing, ok := c.entries[key]; ok {
			existing.Mutators = append(existing.Mutators, e.Mutators...)
			continue
		}
		c.entries[key] = &Entry{
			Variable: e.Variable,
			Mutators: append([]types.ExtensionMutator(nil), e.Mutators...),
		}
		c.order = append(c.order, key)
	}
	return c
}

func (c *Collection) lookup(key string) ([]types.ExtensionMutator, bool) {
	if c == nil {
		return nil, false
	}
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.Mutators, true
}
