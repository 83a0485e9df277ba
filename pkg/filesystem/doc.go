// Package filesystem provides the types.FS implementations used by envmerge:
// the OS filesystem for real runs and an afero-backed filesystem for tests.
package filesystem
