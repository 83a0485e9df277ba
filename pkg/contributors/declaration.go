package contributors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// declaration is the on-disk form of a contributor collection
type declaration struct {
	Persistent bool                 `toml:"persistent" yaml:"persistent"`
	Mutators   []mutatorDeclaration `toml:"mutator" yaml:"mutator"`
}

type mutatorDeclaration struct {
	Variable string `toml:"variable" yaml:"variable"`
	Type     string `toml:"type" yaml:"type"`
	Value    string `toml:"value" yaml:"value"`
}

// ParseDeclaration decodes a declaration file. The format is chosen by the
// file extension: .toml, or .yaml and .yml.
func ParseDeclaration(name string, data []byte) (*types.Collection, error) {
	var decl declaration

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &decl); err != nil {
			return nil, errors.Wrap(err, errors.ErrContributorInvalid, "failed to parse TOML").
				WithDetail("file", name)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &decl); err != nil {
			return nil, errors.Wrap(err, errors.ErrContributorInvalid, "failed to parse YAML").
				WithDetail("file", name)
		}
	default:
		return nil, errors.Newf(errors.ErrContributorInvalid, "unsupported declaration format %q", ext).
			WithDetail("file", name)
	}

	collection := types.NewCollection(decl.Persistent)
	for i, m := range decl.Mutators {
		entry, err := m.entry()
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrMutatorInvalid, "invalid mutator %d", i+1).
				WithDetail("file", name).
				WithDetail("index", i+1)
		}
		collection.Set(entry.Variable, entry.Mutator)
	}
	return collection, nil
}

func (m mutatorDeclaration) entry() (types.Entry, error) {
	if err := ValidateVariableName(m.Variable); err != nil {
		return types.Entry{}, err
	}
	typ, err := types.ParseMutatorType(m.Type)
	if err != nil {
		return types.Entry{}, fmt.Errorf("variable %s: %w", m.Variable, err)
	}
	return types.Entry{
		Variable: m.Variable,
		Mutator:  types.Mutator{Type: typ, Value: m.Value},
	}, nil
}

// ValidateVariableName rejects names that cannot be placed in an environment
func ValidateVariableName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("variable name is empty")
	case strings.ContainsAny(name, "=\x00"):
		return fmt.Errorf("variable name %q contains '=' or NUL", name)
	}
	return nil
}
