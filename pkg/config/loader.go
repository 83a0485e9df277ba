package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables read as configuration
const EnvPrefix = "ENVMERGE_"

// Options select the user configuration file
type Options struct {
	// File is an explicit configuration file. It must exist.
	File string

	// Dir is searched for config.toml, then config.yaml, when File is empty.
	// A missing file is not an error.
	Dir string

	// Overrides are applied last, keyed by dotted path (e.g. "output.format")
	Overrides map[string]interface{}
}

// userConfigNames are searched in Options.Dir in order
var userConfigNames = []string{"config.toml", "config.yaml", "config.yml"}

// Load builds the configuration from every layer and validates it
func Load(opts Options) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to load embedded defaults")
	}

	// 2. User file
	path, err := userConfigPath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded user config")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment config")
	}

	// 4. Explicit overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	cfg, err := unmarshal(k)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the embedded defaults only
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic("config: embedded defaults are invalid: " + err.Error())
	}

	cfg, err := unmarshal(k)
	if err != nil {
		panic("config: embedded defaults are invalid: " + err.Error())
	}
	return cfg
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if _, err := c.Platform.CaseInsensitiveFor(runtime.GOOS); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "invalid platform.case_insensitive").
			WithDetail("value", c.Platform.CaseInsensitive)
	}

	switch c.Output.Format {
	case FormatAuto, FormatTerm, FormatText, FormatJSON, FormatYAML:
	default:
		return errors.Newf(errors.ErrConfigValid, "invalid output.format %q (want auto, term, text, json or yaml)", c.Output.Format).
			WithDetail("value", c.Output.Format)
	}

	if len(c.Contributors.Files) == 0 {
		return errors.New(errors.ErrConfigValid, "contributors.files must name at least one file")
	}
	for _, pattern := range c.Contributors.Ignore {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "invalid contributors.ignore pattern %q", pattern).
				WithDetail("pattern", pattern)
		}
	}

	if c.Server.ReadHeaderTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return errors.New(errors.ErrConfigValid, "server timeouts must not be negative")
	}
	return nil
}

func userConfigPath(opts Options) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "config file %s is not readable", opts.File).
				WithDetail("path", opts.File)
		}
		return opts.File, nil
	}
	if opts.Dir == "" {
		return "", nil
	}

	for _, name := range userConfigNames {
		path := filepath.Join(opts.Dir, name)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "failed to stat %s", path)
		}
		return path, nil
	}
	return "", nil
}

// parserFor picks the koanf parser from the file extension. Anything that
// is not YAML is read as TOML.
func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps ENVMERGE_SERVER_READ_HEADER_TIMEOUT to server.read_header_timeout.
// Only the first underscore separates the section from the key.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}
	return &cfg, nil
}
