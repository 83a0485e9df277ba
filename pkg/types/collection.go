package types

// Entry pairs a variable name with the mutator a contributor declared for it.
type Entry struct {
	Variable string  `json:"variable" yaml:"variable" toml:"variable"`
	Mutator  Mutator `json:"mutator" yaml:"mutator" toml:"mutator"`
}

// Collection is one contributor's set of mutators, at most one per variable.
//
// Declaration order is significant to the merge, so a Collection behaves as an
// ordered map: setting a variable that is already present replaces its mutator
// but keeps its original position.
type Collection struct {
	// Persistent marks collections that should survive a restart
	Persistent bool

	order   []string
	entries map[string]Mutator
}

// NewCollection creates a collection holding entries in the given order
func NewCollection(persistent bool, entries ...Entry) *Collection {
	c := &Collection{
		Persistent: persistent,
		entries:    make(map[string]Mutator, len(entries)),
	}
	for _, e := range entries {
		c.Set(e.Variable, e.Mutator)
	}
	return c
}

// Set records the mutator for variable
func (c *Collection) Set(variable string, m Mutator) {
	if c.entries == nil {
		c.entries = make(map[string]Mutator)
	}
	if _, exists := c.entries[variable]; !exists {
		c.order = append(c.order, variable)
	}
	c.entries[variable] = m
}

// Get returns the mutator declared for variable
func (c *Collection) Get(variable string) (Mutator, bool) {
	if c == nil {
		return Mutator{}, false
	}
	m, ok := c.entries[variable]
	return m, ok
}

// Delete removes the mutator for variable and reports whether it existed
func (c *Collection) Delete(variable string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.entries[variable]; !ok {
		return false
	}
	delete(c.entries, variable)
	for i, name := range c.order {
		if name == variable {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
	return true
}

// Len returns the number of variables in the collection
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// Entries returns the entries in declaration order
func (c *Collection) Entries() []Entry {
	if c == nil {
		return nil
	}
	out := make([]Entry, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, Entry{Variable: name, Mutator: c.entries[name]})
	}
	return out
}

// Clone returns an independent copy of the collection
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	return NewCollection(c.Persistent, c.Entries()...)
}

// Contribution is a collection together with the id of the contributor that
// owns it. Ordered slices of contributions are the input of the merge.
type Contribution struct {
	ID         string
	Collection *Collection
}
