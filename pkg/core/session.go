package core

import (
	"runtime"
	"strings"
	"sync"

	"github.com/arthur-debert/envmerge/pkg/config"
	"github.com/arthur-debert/envmerge/pkg/contributors"
	"github.com/arthur-debert/envmerge/pkg/datastore"
	"github.com/arthur-debert/envmerge/pkg/environment"
	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/paths"
	"github.com/arthur-debert/envmerge/pkg/registry"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// Session holds the registry and its collaborators
type Session struct {
	Config       *config.Config
	Paths        *paths.Paths
	Registry     *registry.Registry
	Applier      *environment.Applier
	Store        datastore.DataStore
	Contributors []contributors.Contributor

	fs types.FS

	mu         sync.Mutex
	registered map[string]bool
}

// Option customises a session
type Option func(*sessionOptions)

type sessionOptions struct {
	paths *paths.Paths
	goos  string
}

// WithPaths uses p instead of resolving paths from the configuration
func WithPaths(p *paths.Paths) Option {
	return func(o *sessionOptions) { o.paths = p }
}

// WithGOOS resolves the "auto" case mode for goos instead of runtime.GOOS
func WithGOOS(goos string) Option {
	return func(o *sessionOptions) { o.goos = goos }
}

// NewSession builds a session and registers discovered and saved collections
func NewSession(cfg *config.Config, fs types.FS, opts ...Option) (*Session, error) {
	logger := logging.GetLogger("core.session")

	o := sessionOptions{goos: runtime.GOOS}
	for _, opt := range opts {
		opt(&o)
	}

	p := o.paths
	if p == nil {
		var err error
		p, err = paths.New(cfg.Contributors.Root)
		if err != nil {
			return nil, err
		}
		p = p.WithStateDir(cfg.State.Dir)
	}

	caseInsensitive, err := cfg.Platform.CaseInsensitiveFor(o.goos)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid platform.case_insensitive")
	}

	s := &Session{
		Config:     cfg,
		Paths:      p,
		Registry:   registry.New(registry.WithCaseInsensitive(caseInsensitive)),
		Applier:    environment.NewApplier(caseInsensitive),
		Store:      datastore.New(fs, p.StateDir()),
		fs:         fs,
		registered: make(map[string]bool),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("root", p.ContributorsRoot()).
		Bool("caseInsensitive", caseInsensitive).
		Int("contributors", s.Registry.Count()).
		Msg("Session ready")
	return s, nil
}

func (s *Session) load() error {
	logger := logging.GetLogger("core.session")
	defer logging.LogOperationStart(logger, "load")()

	found, err := contributors.Discover(s.Paths.ContributorsRoot(), s.fs, contributors.OptionsFromConfig(s.Config.Contributors))
	if err != nil {
		if !errors.IsErrorCode(err, errors.ErrNotFound) {
			return err
		}
		logger.Debug().Str("root", s.Paths.ContributorsRoot()).Msg("Contributor root does not exist")
	}
	s.Contributors = found

	saved, err := s.Store.LoadCollections()
	if err != nil {
		return err
	}
	for _, c := range saved {
		s.registered[c.ID] = true
	}

	all := append(contributors.Contributions(found), saved...)
	s.Registry.Replace(all)
	return nil
}

// NormalizeID trims whitespace and trailing slashes left by shell completion
func NormalizeID(id string) string {
	return strings.TrimRight(strings.TrimSpace(id), "/")
}

// ValidateID rejects ids that cannot name a contributor
func ValidateID(id string) error {
	switch {
	case id == "":
		return errors.New(errors.ErrInvalidInput, "contributor id is empty")
	case strings.ContainsAny(id, "/\\\x00") || id == "." || id == "..":
		return errors.Newf(errors.ErrInvalidInput, "invalid contributor id %q", id).
			WithDetail("contributor", id)
	}
	return nil
}

// Set registers collection for id and saves persistent runtime collections
func (s *Session) Set(id string, collection *types.Collection) error {
	id = NormalizeID(id)
	if err := ValidateID(id); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	wasSaved := s.registered[id]
	s.registered[id] = true
	s.Registry.Set(id, collection)

	if (collection != nil && collection.Persistent) || wasSaved {
		return s.persistLocked()
	}
	return nil
}

// Delete removes id from the registry. It reports whether id was registered.
func (s *Session) Delete(id string) (bool, error) {
	id = NormalizeID(id)

	s.mu.Lock()
	defer s.mu.Unlock()

	existed := s.Registry.Delete(id)
	if s.registered[id] {
		delete(s.registered, id)
		return existed, s.persistLocked()
	}
	return existed, nil
}

// FS returns the filesystem the session reads and writes through
func (s *Session) FS() types.FS {
	return s.fs
}

// Discovered returns the contributor declared on disk under id
func (s *Session) Discovered(id string) (contributors.Contributor, bool) {
	id = NormalizeID(id)
	for _, c := range s.Contributors {
		if c.ID == id {
			return c, true
		}
	}
	return contributors.Contributor{}, false
}

// IsRuntime reports whether id was registered at runtime rather than only
// discovered on disk
func (s *Session) IsRuntime(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registered[NormalizeID(id)]
}

// Persist writes persistent runtime collections to the datastore
func (s *Session) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked()
}

func (s *Session) persistLocked() error {
	var runtimeCollections []types.Contribution
	for _, c := range s.Registry.All() {
		if s.registered[c.ID] {
			runtimeCollections = append(runtimeCollections, c)
		}
	}
	return s.Store.SaveCollections(runtimeCollections)
}

// Merged returns the current merged collection
func (s *Session) Merged() *merge.Collection {
	return s.Registry.Merged()
}

// ApplyTo returns a copy of env with the current merged collection applied
func (s *Session) ApplyTo(env map[string]string) map[string]string {
	return s.Applier.ApplyCopy(s.Registry.Merged(), env)
}

// RecordApplied saves the current merged collection as the applied one
func (s *Session) RecordApplied() error {
	return s.Store.SaveApplied(s.Registry.Merged())
}

// Status compares the current merged collection with the last applied one
type Status struct {
	Applied *datastore.Applied
	Current *merge.Collection
	Diff    *merge.Diff
}

// NeverApplied reports whether nothing was recorded yet
func (st *Status) NeverApplied() bool {
	return st.Applied == nil
}

// Stale reports whether the environment needs to be applied again
func (st *Status) Stale() bool {
	if st.Applied == nil {
		return st.Current.Len() > 0
	}
	return st.Diff != nil
}

// Status loads the last applied collection and diffs it with the current one
func (s *Session) Status() (*Status, error) {
	applied, err := s.Store.LoadApplied()
	if err != nil {
		return nil, err
	}

	current := s.Registry.Merged()
	st := &Status{Applied: applied, Current: current}
	if applied != nil {
		st.Diff = applied.Collection.Diff(current)
	} else {
		st.Diff = merge.Empty(current.CaseInsensitive()).Diff(current)
	}
	return st, nil
}
