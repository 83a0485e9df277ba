package cli

import (
	"os"
	"os/exec"

	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/environment"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newEnvCmd(opts *globalOptions) *cobra.Command {
	var (
		shell    string
		all      bool
		empty    bool
		noRecord bool
	)

	cmd := &cobra.Command{
		Use:     "env",
		Short:   MsgEnvShort,
		Long:    MsgEnvLong,
		Example: MsgEnvExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := ui.ParseEnvFormat(shell)
			if err != nil {
				return errors.Wrap(err, errors.ErrInvalidInput, "invalid --shell")
			}

			s, err := opts.session()
			if err != nil {
				return err
			}

			base := map[string]string{}
			if !empty {
				base = environment.FromEnviron(os.Environ())
			}

			result, changed := applyEnv(s, base)
			if !all {
				result = environment.Subset(result, changed)
			}

			if err := ui.RenderEnv(cmd.OutOrStdout(), result, format); err != nil {
				return err
			}

			if noRecord {
				return nil
			}
			return s.RecordApplied()
		},
	}

	cmd.Flags().StringVarP(&shell, "shell", "s", string(ui.EnvShell), "Output syntax: shell, fish, dotenv, json or yaml")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Print the whole environment, not only changed variables")
	cmd.Flags().BoolVar(&empty, "empty", false, "Apply to an empty environment instead of the current one")
	cmd.Flags().BoolVar(&noRecord, "no-record", false, "Do not record the merged collection as applied")
	return cmd
}

func newExecCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:                   "exec -- COMMAND [ARGS...]",
		Short:                 MsgExecShort,
		Long:                  MsgExecLong,
		Example:               MsgExecExample,
		GroupID:               "core",
		Args:                  cobra.MinimumNArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.session()
			if err != nil {
				return err
			}

			result, _ := applyEnv(s, environment.FromEnviron(os.Environ()))

			logging.LogCommand(args[0], args[1:])
			c := exec.CommandContext(cmd.Context(), args[0], args[1:]...)
			c.Env = environment.ToEnviron(result)
			c.Stdin = cmd.InOrStdin()
			c.Stdout = cmd.OutOrStdout()
			c.Stderr = cmd.ErrOrStderr()

			if err := c.Run(); err != nil {
				wrapped := errors.Wrapf(err, errors.ErrExec, "failed to run %s", args[0]).
					WithDetail("command", args[0])
				if exitErr, ok := err.(*exec.ExitError); ok {
					wrapped = wrapped.WithDetail("exit_code", exitErr.ExitCode())
				}
				return wrapped
			}
			return nil
		},
	}
}

// applyEnv applies the session's merged collection to a copy of base and
// returns the result with the names of the variables that changed
func applyEnv(s *core.Session, base map[string]string) (map[string]string, []string) {
	merged := s.Merged()
	changed := s.Applier.Changed(merged, base)
	result := s.Applier.ApplyCopy(merged, base)

	log.Debug().
		Int("variables", merged.Len()).
		Int("changed", len(changed)).
		Msg("Applied merged collection")
	return result, changed
}

// ExitCode returns the process exit code for an error returned by a command
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	if errors.IsErrorCode(err, errors.ErrExec) {
		if code, ok := errors.GetErrorDetails(err)["exit_code"].(int); ok && code > 0 {
			return code
		}
	}
	return 1
}
