// Package serialize encodes collections and registries for registration
// events and the HTTP API.
//
// A collection is an ordered JSON array of [variable, mutator] tuples:
//
//	[["PATH", {"type": "prepend", "value": "/opt/bin:"}], ["EDITOR", {"type": "replace", "value": "vim"}]]
//
// A registry is an ordered array of [contributorId, {persistent, mutators}]
// tuples, where mutators uses the collection form. Tuples keep declaration
// order, which a JSON object would not.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Contribution is the body of a registration event
type Contribution struct {
	Persistent bool            `json:"persistent"`
	Mutators   json.RawMessage `json:"mutators"`
}

// MarshalCollection encodes the entries of c in declaration order
func MarshalCollection(c *types.Collection) ([]byte, error) {
	return json.Marshal(collectionTuples(c))
}

// UnmarshalCollection decodes a collection from its tuple form
func UnmarshalCollection(data []byte, persistent bool) (*types.Collection, error) {
	var raw []json.RawMessage
	if err := decodeStrict(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "collection must be an array of [variable, mutator] pairs")
	}

	c := types.NewCollection(persistent)
	for i, item := range raw {
		variable, m, err := decodeEntry(item)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid collection entry %d", i).
				WithDetail("index", i)
		}
		c.Set(variable, m)
	}
	return c, nil
}

// MarshalContribution encodes c with its persistent flag
func MarshalContribution(c *types.Collection) ([]byte, error) {
	mutators, err := MarshalCollection(c)
	if err != nil {
		return nil, err
	}
	persistent := c != nil && c.Persistent
	return json.Marshal(Contribution{Persistent: persistent, Mutators: mutators})
}

// UnmarshalContribution decodes a {persistent, mutators} body
func UnmarshalContribution(data []byte) (*types.Collection, error) {
	var body Contribution
	if err := decodeStrict(data, &body); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid contribution body")
	}
	if len(body.Mutators) == 0 || bytes.Equal(body.Mutators, []byte("null")) {
		return types.NewCollection(body.Persistent), nil
	}
	return UnmarshalCollection(body.Mutators, body.Persistent)
}

// MarshalRegistry encodes contributions as [id, {persistent, mutators}] tuples
func MarshalRegistry(contributions []types.Contribution) ([]byte, error) {
	tuples := make([][2]interface{}, 0, len(contributions))
	for _, contribution := range contributions {
		persistent := contribution.Collection != nil && contribution.Collection.Persistent
		tuples = append(tuples, [2]interface{}{
			contribution.ID,
			map[string]interface{}{
				"persistent": persistent,
				"mutators":   collectionTuples(contribution.Collection),
			},
		})
	}
	return json.Marshal(tuples)
}

// UnmarshalRegistry decodes the tuple form written by MarshalRegistry
func UnmarshalRegistry(data []byte) ([]types.Contribution, error) {
	var raw [][]json.RawMessage
	if err := decodeStrict(data, &raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "registry must be an array of [id, contribution] pairs")
	}

	contributions := make([]types.Contribution, 0, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, errors.Newf(errors.ErrInvalidInput, "registry entry %d has %d elements, want 2", i, len(pair))
		}
		var id string
		if err := json.Unmarshal(pair[0], &id); err != nil || id == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "registry entry %d has no contributor id", i)
		}
		collection, err := UnmarshalContribution(pair[1])
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid contribution %q", id).
				WithDetail("contributor", id)
		}
		contributions = append(contributions, types.Contribution{ID: id, Collection: collection})
	}
	return contributions, nil
}

func collectionTuples(c *types.Collection) [][2]interface{} {
	entries := c.Entries()
	tuples := make([][2]interface{}, 0, len(entries))
	for _, e := range entries {
		tuples = append(tuples, [2]interface{}{e.Variable, e.Mutator})
	}
	return tuples
}

func decodeEntry(data json.RawMessage) (string, types.Mutator, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return "", types.Mutator{}, err
	}
	if len(pair) != 2 {
		return "", types.Mutator{}, fmt.Errorf("want [variable, mutator], got %d elements", len(pair))
	}

	var variable string
	if err := json.Unmarshal(pair[0], &variable); err != nil {
		return "", types.Mutator{}, fmt.Errorf("variable name: %w", err)
	}
	if variable == "" {
		return "", types.Mutator{}, fmt.Errorf("empty variable name")
	}

	var m types.Mutator
	if err := decodeStrict(pair[1], &m); err != nil {
		return "", types.Mutator{}, fmt.Errorf("mutator for %s: %w", variable, err)
	}
	if !m.Type.Valid() {
		return "", types.Mutator{}, fmt.Errorf("mutator for %s has no type", variable)
	}
	return variable, m, nil
}

func decodeStrict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
