package datastore

import (
	"time"

	"github.com/arthur-debert/envmerge/pkg/merge"
	"github.com/arthur-debert/envmerge/pkg/types"
)

// DataStore manages envmerge state on the filesystem.
type DataStore interface {
	// SaveCollections writes the persistent contributions, keeping order.
	// Non-persistent contributions are dropped.
	SaveCollections(contributions []types.Contribution) error

	// LoadCollections returns the saved contributions. A missing file
	// yields no contributions.
	LoadCollections() ([]types.Contribution, error)

	// SaveApplied records merged as the last applied collection.
	SaveApplied(merged *merge.Collection) error

	// LoadApplied returns the last applied collection, or nil when nothing
	// was recorded yet.
	LoadApplied() (*Applied, error)
}

// Applied is a recorded merged collection
type Applied struct {
	At         time.Time
	Collection *merge.Collection
}
