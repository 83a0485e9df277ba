package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/arthur-debert/envmerge/internal/version"
	"github.com/arthur-debert/envmerge/pkg/config"
	"github.com/arthur-debert/envmerge/pkg/core"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/filesystem"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/paths"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/arthur-debert/envmerge/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// StylesFileName is an optional style override in the config directory
const StylesFileName = "styles.yaml"

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	verbosity  int
	configFile string
	root       string
	format     string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "envmerge",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(opts.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Configuration file (default: $XDG_CONFIG_HOME/envmerge/config.toml)")
	rootCmd.PersistentFlags().StringVar(&opts.root, "root", "", "Contributor root directory (overrides contributors.root)")
	rootCmd.PersistentFlags().StringVarP(&opts.format, "format", "f", "", "Output format: auto, term, text, json or yaml (overrides output.format)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "core", Title: "COMMANDS:"},
		&cobra.Group{ID: "misc", Title: "MISC:"},
	)

	rootCmd.AddCommand(newShowCmd(opts))
	rootCmd.AddCommand(newEnvCmd(opts))
	rootCmd.AddCommand(newExecCmd(opts))
	rootCmd.AddCommand(newSetCmd(opts))
	rootCmd.AddCommand(newDeleteCmd(opts))
	rootCmd.AddCommand(newStatusCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newSnippetCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// loadConfig reads the configuration using the bootstrap config directory
func (o *globalOptions) loadConfig() (*config.Config, *paths.Paths, error) {
	bootstrap, err := paths.New(o.root)
	if err != nil {
		return nil, nil, err
	}

	cfg, err := config.Load(config.Options{
		File:      o.configFile,
		Dir:       bootstrap.ConfigDir(),
		Overrides: o.overrides(),
	})
	if err != nil {
		return nil, nil, err
	}

	p, err := paths.New(cfg.Contributors.Root)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p.WithStateDir(cfg.State.Dir), nil
}

// overrides maps the global flags that were set onto configuration keys
func (o *globalOptions) overrides() map[string]interface{} {
	out := map[string]interface{}{}
	if o.root != "" {
		out["contributors.root"] = o.root
	}
	if o.format != "" {
		out["output.format"] = o.format
	}
	return out
}

// session loads the configuration and builds a session on the real filesystem
func (o *globalOptions) session() (*core.Session, error) {
	cfg, p, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	log.Info().Str("root", p.ContributorsRoot()).Msg("Loading contributors")
	return core.NewSession(cfg, filesystem.NewOS(), core.WithPaths(p))
}

// renderer builds the output renderer for cmd honoring --format and the
// user's style overrides
func (o *globalOptions) renderer(cmd *cobra.Command, s *core.Session) (ui.Renderer, error) {
	format, err := ui.ParseFormat(s.Config.Output.Format)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "invalid output format")
	}
	return ui.NewRenderer(format, cmd.OutOrStdout(), loadStyles(s.FS(), s.Paths.ConfigDir()))
}

// loadStyles returns the default styles with overrides from the config
// directory applied. Broken override files are logged and ignored.
func loadStyles(fs types.FS, configDir string) *ui.Styles {
	styles := ui.DefaultStyles()

	path := filepath.Join(configDir, StylesFileName)
	data, err := fs.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("Could not read styles")
		}
		return styles
	}

	overridden, err := styles.Override(data)
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("Ignoring invalid styles")
		return styles
	}
	return overridden
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version.String())
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: MsgCompletionShort,
		Long: `To load completions:

Bash:
  $ source <(envmerge completion bash)

Zsh:
  $ envmerge completion zsh > "${fpath[1]}/_envmerge"

Fish:
  $ envmerge completion fish | source

PowerShell:
  PS> envmerge completion powershell | Out-String | Invoke-Expression
`,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
}

// contributorCompletion completes registered contributor ids
func contributorCompletion(opts *globalOptions) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		s, err := opts.session()
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return s.Registry.List(), cobra.ShellCompDirectiveNoFileComp
	}
}
