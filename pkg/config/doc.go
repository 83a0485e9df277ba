// Package config loads envmerge configuration.
//
// Configuration is layered with koanf, lowest priority first:
//
//  1. embedded defaults (embedded/defaults.toml)
//  2. the user file, $XDG_CONFIG_HOME/envmerge/config.{toml,yaml} or --config
//  3. ENVMERGE_<SECTION>_<KEY> environment variables
//  4. Options.Overrides, used for command line flags
//
// The merged tree is decoded into Config with mapstructure hooks for
// durations and comma separated lists.
package config
