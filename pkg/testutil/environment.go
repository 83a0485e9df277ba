package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/envmerge/pkg/config"
	"github.com/arthur-debert/envmerge/pkg/datastore"
	"github.com/arthur-debert/envmerge/pkg/filesystem"
	"github.com/arthur-debert/envmerge/pkg/paths"
	"github.com/arthur-debert/envmerge/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides a contributor root and state directories
type TestEnvironment struct {
	Root      string
	ConfigDir string
	DataDir   string
	StateDir  string

	FS    types.FS
	Paths *paths.Paths
	Store datastore.DataStore

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}

	base := "/virtual"
	switch envType {
	case EnvMemoryOnly:
		env.FS = filesystem.NewMemory()
	case EnvIsolated:
		base = t.TempDir()
		env.FS = filesystem.NewOS()
	}

	env.Root = filepath.Join(base, "contributors")
	env.ConfigDir = filepath.Join(base, "config")
	env.DataDir = filepath.Join(base, "data")
	env.StateDir = filepath.Join(base, "state")

	for _, dir := range []string{env.Root, env.ConfigDir, env.DataDir, env.StateDir} {
		if err := env.FS.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("Failed to create %s: %v", dir, err)
		}
	}

	t.Setenv(paths.EnvRoot, env.Root)
	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvDataDir, env.DataDir)
	t.Setenv(paths.EnvStateDir, env.StateDir)
	// Keep results independent of the host platform
	t.Setenv(config.EnvPrefix+"PLATFORM_CASE_INSENSITIVE", "false")

	p, err := paths.New(env.Root)
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}
	env.Paths = p
	env.Store = datastore.New(env.FS, env.StateDir)

	return env
}

// Config returns the default configuration rooted at the environment
func (env *TestEnvironment) Config() *config.Config {
	cfg := config.Default()
	cfg.Contributors.Root = env.Root
	cfg.State.Dir = env.StateDir
	cfg.Platform.CaseInsensitive = "false"
	return cfg
}

// ContributorConfig describes a contributor declaration to write
type ContributorConfig struct {
	Persistent bool
	Mutators   []types.Entry

	// Format is toml (the default) or yaml
	Format string

	// Ignored adds the ignore marker file to the contributor directory
	Ignored bool
}

type mutatorDeclaration struct {
	Variable string `toml:"variable" yaml:"variable"`
	Type     string `toml:"type" yaml:"type"`
	Value    string `toml:"value" yaml:"value"`
}

type declaration struct {
	Persistent bool                 `toml:"persistent" yaml:"persistent"`
	Mutator    []mutatorDeclaration `toml:"mutator" yaml:"mutator"`
}

// SetupContributor writes a declaration file for id and returns its directory
func (env *TestEnvironment) SetupContributor(id string, cfg ContributorConfig) string {
	env.t.Helper()

	decl := declaration{Persistent: cfg.Persistent}
	for _, e := range cfg.Mutators {
		decl.Mutator = append(decl.Mutator, mutatorDeclaration{
			Variable: e.Variable,
			Type:     e.Mutator.Type.String(),
			Value:    e.Mutator.Value,
		})
	}

	var (
		name string
		data []byte
		err  error
	)
	switch cfg.Format {
	case "yaml", "yml":
		name = "env." + cfg.Format
		data, err = yaml.Marshal(decl)
	default:
		name = "env.toml"
		data, err = toml.Marshal(decl)
	}
	if err != nil {
		env.t.Fatalf("Failed to encode declaration for %s: %v", id, err)
	}

	files := FileTree{name: string(data)}
	if cfg.Ignored {
		files[config.Default().Contributors.IgnoreFile] = ""
	}
	env.WithFileTree(FileTree{id: files})
	return filepath.Join(env.Root, id)
}

// WithFileTree creates a complete file tree under the contributor root
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, env.Root, tree)
}

// FileTree represents a directory structure for testing
type FileTree map[string]interface{}

// createFileTree recursively creates a file tree
func createFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			if err := fs.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
				t.Fatalf("Failed to create directory for %s: %v", fullPath, err)
			}
			if err := fs.WriteFile(fullPath, []byte(v), 0644); err != nil {
				t.Fatalf("Failed to write file %s: %v", fullPath, err)
			}
		case FileTree:
			if err := fs.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			createFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
