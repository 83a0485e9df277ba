package types

import (
	"fmt"
	"strconv"
	"strings"
)

// MutatorType is the kind of change a mutator makes to a variable.
// The numeric values match the wire form used by registration events.
type MutatorType int

const (
	// MutatorReplace sets the variable to the mutator value
	MutatorReplace MutatorType = iota + 1

	// MutatorAppend adds the mutator value after the current value
	MutatorAppend

	// MutatorPrepend adds the mutator value before the current value
	MutatorPrepend
)

// String returns the lower-case name of the mutator type
func (t MutatorType) String() string {
	switch t {
	case MutatorReplace:
		return "replace"
	case MutatorAppend:
		return "append"
	case MutatorPrepend:
		return "prepend"
	default:
		return fmt.Sprintf("MutatorType(%d)", int(t))
	}
}

// Valid reports whether t is one of the known mutator types
func (t MutatorType) Valid() bool {
	return t >= MutatorReplace && t <= MutatorPrepend
}

// ParseMutatorType parses a mutator type from its name or its numeric value.
// Names are matched case-insensitively.
func ParseMutatorType(s string) (MutatorType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "replace", "set":
		return MutatorReplace, nil
	case "append":
		return MutatorAppend, nil
	case "prepend":
		return MutatorPrepend, nil
	}

	if n, err := strconv.Atoi(s); err == nil && MutatorType(n).Valid() {
		return MutatorType(n), nil
	}

	return 0, fmt.Errorf("unknown mutator type %q", s)
}

// MarshalText encodes the mutator type by name
func (t MutatorType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("unknown mutator type %d", int(t))
	}
	return []byte(t.String()), nil
}

// UnmarshalText decodes a mutator type from its name or numeric value
func (t *MutatorType) UnmarshalText(text []byte) error {
	parsed, err := ParseMutatorType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalJSON accepts either the type name or its numeric value
func (t *MutatorType) UnmarshalJSON(data []byte) error {
	s := string(data)
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	return t.UnmarshalText([]byte(s))
}

// Mutator describes one requested change to one environment variable.
// Mutators are values; they carry no identity beyond their position in a
// Collection.
type Mutator struct {
	Type  MutatorType `json:"type" yaml:"type" toml:"type"`
	Value string      `json:"value" yaml:"value" toml:"value"`
}

// Replace returns a mutator that replaces the variable with value
func Replace(value string) Mutator {
	return Mutator{Type: MutatorReplace, Value: value}
}

// Append returns a mutator that appends value to the variable
func Append(value string) Mutator {
	return Mutator{Type: MutatorAppend, Value: value}
}

// Prepend returns a mutator that prepends value to the variable
func Prepend(value string) Mutator {
	return Mutator{Type: MutatorPrepend, Value: value}
}

// ExtensionMutator is a mutator tagged with the contributor that declared it.
type ExtensionMutator struct {
	ContributorID string      `json:"contributor" yaml:"contributor" toml:"contributor"`
	Type          MutatorType `json:"type" yaml:"type" toml:"type"`
	Value         string      `json:"value" yaml:"value" toml:"value"`
}

// Mutator returns the untagged mutator
func (m ExtensionMutator) Mutator() Mutator {
	return Mutator{Type: m.Type, Value: m.Value}
}
