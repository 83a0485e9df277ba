package cli

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   MsgStatusShort,
		Long:    MsgStatusLong,
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

			st, err := s.Status()
			if err != nil {
				return err
			}
			log.Debug().
				Bool("neverApplied", st.NeverApplied()).
				Bool("stale", st.Stale()).
				Msg("Computed status")

			return r.RenderStatus(statusView(st))
		},
	}
}
