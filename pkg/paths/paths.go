package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Environment variable names
const (
	// EnvRoot overrides the contributor root
	EnvRoot = "ENVMERGE_ROOT"

	// EnvDataDir overrides the XDG data directory for envmerge
	EnvDataDir = "ENVMERGE_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for envmerge
	EnvConfigDir = "ENVMERGE_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for envmerge
	EnvStateDir = "ENVMERGE_STATE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Fixed names inside the envmerge directories
const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "envmerge"

	// ContributorsDirName is the default contributor root under the data directory
	ContributorsDirName = "contributors"

	// ConfigFileName is the user configuration file in the config directory
	ConfigFileName = "config.toml"

	// CollectionsFileName holds persisted collections in the state directory
	CollectionsFileName = "collections.toml"

	// AppliedFileName records the last applied merged collection
	AppliedFileName = "applied.toml"

	// LogFileName is the name of the log file
	LogFileName = "envmerge.log"
)

// Paths resolves envmerge locations
type Paths struct {
	root      string
	configDir string
	dataDir   string
	stateDir  string
}

var _ types.Pather = (*Paths)(nil)

// New resolves every location. An empty root falls back to ENVMERGE_ROOT
// and then to the contributors directory under the data directory.
func New(root string) (*Paths, error) {
	p := &Paths{
		configDir: dirFromEnv(EnvConfigDir, xdg.ConfigHome),
		dataDir:   dirFromEnv(EnvDataDir, xdg.DataHome),
		stateDir:  dirFromEnv(EnvStateDir, xdg.StateHome),
	}

	switch {
	case root != "":
		p.root = ExpandHome(root)
	case os.Getenv(EnvRoot) != "":
		p.root = ExpandHome(os.Getenv(EnvRoot))
	default:
		p.root = filepath.Join(p.dataDir, ContributorsDirName)
	}

	absRoot, err := filepath.Abs(p.root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for contributor root").
			WithDetail("root", p.root)
	}
	p.root = absRoot

	return p, nil
}

// WithStateDir returns a copy of p using dir as the state directory. An
// empty dir leaves p unchanged.
func (p *Paths) WithStateDir(dir string) *Paths {
	if dir == "" {
		return p
	}
	c := *p
	c.stateDir = ExpandHome(dir)
	return &c
}

func dirFromEnv(envVar, base string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return ExpandHome(dir)
	}
	return filepath.Join(base, AppDirName)
}

// ContributorsRoot returns the directory holding one subdirectory per contributor
func (p *Paths) ContributorsRoot() string {
	return p.root
}

// ContributorPath returns the directory of a single contributor
func (p *Paths) ContributorPath(id string) string {
	return filepath.Join(p.root, id)
}

// ConfigDir returns the config directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// DataDir returns the data directory
func (p *Paths) DataDir() string {
	return p.dataDir
}

// StateDir returns the state directory
func (p *Paths) StateDir() string {
	return p.stateDir
}

// ConfigFilePath returns the user configuration file
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// CollectionsPath returns the file holding persisted collections
func (p *Paths) CollectionsPath() string {
	return filepath.Join(p.stateDir, CollectionsFileName)
}

// AppliedPath returns the file recording the last applied merged collection
func (p *Paths) AppliedPath() string {
	return filepath.Join(p.stateDir, AppliedFileName)
}

// LogFilePath returns the log file
func (p *Paths) LogFilePath() string {
	return filepath.Join(p.stateDir, LogFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~user is left alone
	return path
}
