// Package types defines the values shared across envmerge: mutators, the
// per-contributor Collection and the filesystem and path interfaces.
package types
