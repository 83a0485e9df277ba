package cli

import (
	"fmt"
	"strings"

	"github.com/arthur-debert/envmerge/pkg/contributors"
	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/spf13/cobra"
)

func newSetCmd(opts *globalOptions) *cobra.Command {
	var persistent bool

	cmd := &cobra.Command{
		Use:               "set ID VAR=TYPE:VALUE...",
		Short:             MsgSetShort,
		Long:              MsgSetLong,
		Example:           MsgSetExample,
		GroupID:           "core",
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: contributorCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := core.NormalizeID(args[0])
			collection, err := ParseMutators(persistent, args[1:])
			if err != nil {
				return err
			}
			if !persistent {
				return errors.Newf(errors.ErrInvalidInput, MsgErrNotPersistent, id).
					WithDetail("contributor", id)
			}

			s, err := opts.session()
			if err != nil {
				return err
			}
			if err := s.Set(id, collection); err != nil {
				return err
			}

			r, err := opts.renderer(cmd, s)
			if err != nil {
				return err
			}
			return r.RenderMessage(fmt.Sprintf(MsgCollectionSet, collection.Len(), id))
		},
	}

	cmd.Flags().BoolVarP(&persistent, "persistent", "p", false, "Keep the collection across runs")
	return cmd
}

func newDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:               "delete ID",
		Aliases:           []string{"rm"},
		Short:             MsgDeleteShort,
		GroupID:           "core",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: contributorCompletion(opts),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}

			id := core.NormalizeID(args[0])
			if c, ok := s.Discovered(id); ok && !s.IsRuntime(id) {
				return errors.Newf(errors.ErrInvalidInput, MsgErrDeclaredOnDisk, id, c.Path).
					WithDetail("contributor", id).
					WithDetail("path", c.Path)
			}

			existed, err := s.Delete(id)
			if err != nil {
				return err
			}

			r, err := opts.renderer(cmd, s)
			if err != nil {
				return err
			}
			if !existed {
				return r.RenderMessage(fmt.Sprintf(MsgNotRegistered, id))
			}
			return r.RenderMessage(fmt.Sprintf(MsgCollectionDeleted, id))
		},
	}
}

// ParseMutators builds a collection from VAR=TYPE:VALUE arguments. A later
// argument for the same variable replaces an earlier one in place.
func ParseMutators(persistent bool, args []string) (*types.Collection, error) {
	collection := types.NewCollection(persistent)
	for _, arg := range args {
		entry, err := ParseMutator(arg)
		if err != nil {
			return nil, err
		}
		collection.Set(entry.Variable, entry.Mutator)
	}
	return collection, nil
}

// ParseMutator parses a single VAR=TYPE:VALUE argument. The value may be
// empty and may itself contain ':' and '='.
func ParseMutator(arg string) (types.Entry, error) {
	variable, rest, ok := strings.Cut(arg, "=")
	if !ok {
		return types.Entry{}, errors.Newf(errors.ErrMutatorInvalid, MsgErrMutatorSyntax, arg)
	}
	if err := contributors.ValidateVariableName(variable); err != nil {
		return types.Entry{}, errors.Wrap(err, errors.ErrMutatorInvalid, "invalid variable name").
			WithDetail("variable", variable)
	}

	typeName, value, ok := strings.Cut(rest, ":")
	if !ok {
		return types.Entry{}, errors.Newf(errors.ErrMutatorInvalid, MsgErrMutatorSyntax, arg)
	}
	typ, err := types.ParseMutatorType(typeName)
	if err != nil {
		return types.Entry{}, errors.Wrap(err, errors.ErrMutatorInvalid, "invalid mutator type").
			WithDetail("variable", variable)
	}

	return types.Entry{Variable: variable, Mutator: types.Mutator{Type: typ, Value: value}}, nil
}
