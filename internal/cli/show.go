package cli

import (
	"github.com/spf13/cobra"
)

func newShowCmd(opts *globalOptions) *cobra.Command {
	var showContributors bool

	cmd := &cobra.Command{
		Use:     "show",
		Short:   MsgShowShort,
		Long:    MsgShowLong,
		Example: MsgShowExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}
			r, err := opts.renderer(cmd, s)
			if err != nil {
				return err
			}

			if showContributors {
				return r.RenderContributions(s.Registry.All())
			}
			return r.RenderMerged(s.Merged())
		},
	}

	cmd.Flags().BoolVar(&showContributors, "contributors", false, "List registered collections instead of the merged result")
	return cmd
}
