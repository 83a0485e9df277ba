package datastore

import (
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/envmerge/pkg/errors"
	"github.com/arthur-debert/envmerge/pkg/logging"
	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/types"
	toml "github.com/pelletier/go-toml/v2"
)

// File names inside the state directory
const (
	CollectionsFile = "collections.toml"
	AppliedFile     = "applied.toml"
)

type collectionsFile struct {
	Contributors []contributorRecord `toml:"contributor"`
}

type contributorRecord struct {
	ID         string          `toml:"id"`
	Persistent bool            `toml:"persistent"`
	Mutators   []mutatorRecord `toml:"mutator"`
}

type mutatorRecord struct {
	Variable string            `toml:"variable"`
	Type     types.MutatorType `toml:"type"`
	Value    string            `toml:"value"`
}

type appliedFile struct {
	AppliedAt       time.Time        `toml:"applied_at"`
	CaseInsensitive bool             `toml:"case_insensitive"`
	Variables       []variableRecord `toml:"variable"`
}

type variableRecord struct {
	Name     string                   `toml:"name"`
	Mutators []types.ExtensionMutator `toml:"mutator"`
}

type filesystemDataStore struct {
	fs       types.FS
	stateDir string
	now      func() time.Time
}

// New creates a DataStore keeping its files in stateDir
func New(fs types.FS, stateDir string) DataStore {
	return &filesystemDataStore{
		fs:       fs,
		stateDir: stateDir,
		now:      time.Now,
	}
}

func (s *filesystemDataStore) SaveCollections(contributions []types.Contribution) error {
	var file collectionsFile
	for _, c := range contributions {
		if c.Collection == nil || !c.Collection.Persistent {
			continue
		}
		record := contributorRecord{ID: c.ID, Persistent: true}
		for _, e := range c.Collection.Entries() {
			record.Mutators = append(record.Mutators, mutatorRecord{
				Variable: e.Variable,
				Type:     e.Mutator.Type,
				Value:    e.Mutator.Value,
			})
		}
		file.Contributors = append(file.Contributors, record)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "failed to encode collections")
	}
	if err := s.writeAtomic(CollectionsFile, data); err != nil {
		return err
	}

	logger := logging.GetLogger("datastore")
	logger.Debug().
		Int("collections", len(file.Contributors)).
		Msg("Saved persistent collections")
	return nil
}

func (s *filesystemDataStore) LoadCollections() ([]types.Contribution, error) {
	var file collectionsFile
	found, err := s.read(CollectionsFile, &file)
	if err != nil || !found {
		return nil, err
	}

	contributions := make([]types.Contribution, 0, len(file.Contributors))
	for _, record := range file.Contributors {
		if record.ID == "" {
			return nil, errors.New(errors.ErrStateLoad, "saved collection without contributor id").
				WithDetail("file", s.path(CollectionsFile))
		}
		collection := types.NewCollection(record.Persistent)
		for _, m := range record.Mutators {
			if m.Variable == "" || !m.Type.Valid() {
				return nil, errors.Newf(errors.ErrStateLoad, "invalid saved mutator for contributor %s", record.ID).
					WithDetail("contributor", record.ID).
					WithDetail("variable", m.Variable)
			}
			collection.Set(m.Variable, types.Mutator{Type: m.Type, Value: m.Value})
		}
		contributions = append(contributions, types.Contribution{ID: record.ID, Collection: collection})
	}
	return contributions, nil
}

func (s *filesystemDataStore) SaveApplied(merged *merge.Collection) error {
	file := appliedFile{
		AppliedAt:       s.now().UTC().Truncate(time.Second),
		CaseInsensitive: merged.CaseInsensitive(),
	}
	for _, entry := range merged.Entries() {
		file.Variables = append(file.Variables, variableRecord{
			Name:     entry.Variable,
			Mutators: entry.Mutators,
		})
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "failed to encode applied collection")
	}
	return s.writeAtomic(AppliedFile, data)
}

func (s *filesystemDataStore) LoadApplied() (*Applied, error) {
	var file appliedFile
	found, err := s.read(AppliedFile, &file)
	if err != nil || !found {
		return nil, err
	}

	entries := make([]merge.Entry, 0, len(file.Variables))
	for _, v := range file.Variables {
		entries = append(entries, merge.Entry{Variable: v.Name, Mutators: v.Mutators})
	}
	return &Applied{
		At:         file.AppliedAt,
		Collection: merge.FromEntries(entries, file.CaseInsensitive),
	}, nil
}

func (s *filesystemDataStore) path(name string) string {
	return filepath.Join(s.stateDir, name)
}

func (s *filesystemDataStore) read(name string, v interface{}) (bool, error) {
	path := s.path(name)
	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrap(err, errors.ErrStateLoad, "failed to read state file").
			WithDetail("file", path)
	}
	if err := toml.Unmarshal(data, v); err != nil {
		return false, errors.Wrap(err, errors.ErrStateLoad, "failed to parse state file").
			WithDetail("file", path)
	}
	return true, nil
}

func (s *filesystemDataStore) writeAtomic(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.stateDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "failed to create state directory").
			WithDetail("dir", s.stateDir)
	}

	path := s.path(name)
	tmp := path + ".tmp"
	if err := s.fs.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrStateSave, "failed to write state file").
			WithDetail("file", tmp)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return errors.Wrap(err, errors.ErrStateSave, "failed to replace state file").
			WithDetail("file", path)
	}
	return nil
}
