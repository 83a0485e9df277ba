// Package environment applies a merged collection to a concrete environment
// snapshot.
//
// A snapshot is a map from variable name to value; a variable missing from
// the map is absent. Append and prepend treat an absent variable as the empty
// string. No mutator ever removes a variable.
//
// On case-insensitive platforms the applier matches merged variable names
// against the existing snapshot keys without regard to case and writes back
// under the key already present in the snapshot, so "PATH" updates an
// existing "Path" entry.
package environment
