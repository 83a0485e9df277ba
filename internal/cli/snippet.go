package cli

import (
	"fmt"

	"github.com/arthur-debert/envmerge/pkg/shell"
	"github.com/spf13/cobra"
)

func newSnippetCmd() *cobra.Command {
	var binary string

	cmd := &cobra.Command{
		Use:       "snippet SHELL",
		Short:     MsgSnippetShort,
		Long:      MsgSnippetLong,
		Example:   MsgSnippetExample,
		GroupID:   "misc",
		ValidArgs: shell.Shells,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			snippet, err := shell.Snippet(args[0], binary)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), snippet)
			return err
		},
	}

	cmd.Flags().StringVar(&binary, "binary", "envmerge", "Command used to invoke envmerge")
	return cmd
}
