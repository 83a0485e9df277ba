// Package datastore persists envmerge state in the state directory.
//
// Two files are kept, both TOML:
//
//	collections.toml  persistent collections, in registration order
//	applied.toml      the merged collection last applied by env or exec
//
// Writes go to a temporary file that is renamed into place.
package datastore
