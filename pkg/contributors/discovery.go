package contributors

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/envmerge/pkg/config"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Contributor is a discovered contributor directory
type Contributor struct {
	// ID is the directory name
	ID string

	// Path is the contributor directory
	Path string

	// File is the declaration file the collection was read from
	File string

	Collection *types.Collection
}

// Options control discovery
type Options struct {
	Files      []string
	Ignore     []string
	IgnoreFile string
}

// OptionsFromConfig takes discovery options from the contributors section
func OptionsFromConfig(cfg config.Contributors) Options {
	return Options{
		Files:      cfg.Files,
		Ignore:     cfg.Ignore,
		IgnoreFile: cfg.IgnoreFile,
	}
}

func (o Options) withDefaults() Options {
	if len(o.Files) == 0 {
		o.Files = config.Default().Contributors.Files
	}
	return o
}

// Discover loads every contributor under root. Directories that cannot be
// read or whose declaration is invalid are logged and skipped.
func Discover(root string, filesystem types.FS, opts Options) ([]Contributor, error) {
	logger := logging.GetLogger("contributors.discovery")
	opts = opts.withDefaults()

	candidates, err := Candidates(root, filesystem, opts)
	if err != nil {
		return nil, err
	}

	var found []Contributor
	for _, path := range candidates {
		c, err := Load(path, filesystem, opts)
		if err != nil {
			if errors.IsErrorCode(err, errors.ErrNotFound) {
				logger.Debug().Str("path", path).Msg("No declaration file, skipping")
				continue
			}
			logger.Warn().
				Err(err).
				Str("path", path).
				Msg("Failed to load contributor, skipping")
			continue
		}
		found = append(found, *c)
		logger.Trace().
			Str("id", c.ID).
			Str("file", c.File).
			Int("mutators", c.Collection.Len()).
			Msg("Loaded contributor")
	}

	logger.Info().Int("count", len(found)).Msg("Discovered contributors")
	return found, nil
}

// Candidates lists the contributor directories under root, sorted by name
func Candidates(root string, filesystem types.FS, opts Options) ([]string, error) {
	logger := logging.GetLogger("contributors.discovery")
	logger.Trace().Str("root", root).Msg("Getting contributor candidates")

	info, err := filesystem.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "contributor root does not exist").
				WithDetail("path", root)
		}
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot access contributor root").
			WithDetail("path", root)
	}
	if !info.IsDir() {
		return nil, errors.New(errors.ErrInvalidInput, "contributor root is not a directory").
			WithDetail("path", root)
	}

	entries, err := filesystem.ReadDir(root)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrFileAccess, "cannot read contributor root").
			WithDetail("path", root)
	}

	var candidates []string
	for _, entry := range entries {
		name := entry.Name()

		if !entry.IsDir() {
			continue
		}
		if strings.HasPrefix(name, ".") {
			logger.Trace().Str("name", name).Msg("Skipping hidden directory")
			continue
		}
		if matchesAny(name, opts.Ignore) {
			logger.Trace().Str("name", name).Msg("Skipping ignored pattern")
			continue
		}

		path := filepath.Join(root, name)
		if hasIgnoreFile(path, filesystem, opts.IgnoreFile) {
			logger.Debug().Str("contributor", name).Msg("Contributor ignored due to ignore file")
			continue
		}
		candidates = append(candidates, path)
	}

	sort.Strings(candidates)
	return candidates, nil
}

// Load reads the contributor in dir
func Load(dir string, filesystem types.FS, opts Options) (*Contributor, error) {
	opts = opts.withDefaults()
	id := filepath.Base(dir)

	for _, name := range opts.Files {
		path := filepath.Join(dir, name)
		data, err := filesystem.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrap(err, errors.ErrContributorAccess, "cannot read declaration file").
				WithDetail("contributor", id).
				WithDetail("path", path)
		}

		collection, err := ParseDeclaration(name, data)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrContributorInvalid, "invalid contributor declaration").
				WithDetail("contributor", id).
				WithDetail("path", path)
		}
		return &Contributor{ID: id, Path: dir, File: path, Collection: collection}, nil
	}

	return nil, errors.Newf(errors.ErrNotFound, "contributor %s has no declaration file", id).
		WithDetail("contributor", id).
		WithDetail("files", opts.Files)
}

// Contributions converts discovered contributors into merge input, keeping order
func Contributions(found []Contributor) []types.Contribution {
	out := make([]types.Contribution, 0, len(found))
	for _, c := range found {
		out = append(out, types.Contribution{ID: c.ID, Collection: c.Collection})
	}
	return out
}

func matchesAny(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
	}
	return false
}

func hasIgnoreFile(dir string, filesystem types.FS, ignoreFile string) bool {
	if ignoreFile == "" {
		return false
	}
	_, err := filesystem.Stat(filepath.Join(dir, ignoreFile))
	return err == nil
}
