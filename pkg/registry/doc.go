// Package registry holds the contributor collections of one envmerge session
// and keeps their merged collection current.
//
// A Registry is an explicitly owned value: create one per process or server
// session and pass it to the components that need it. Every Set or Delete
// rebuilds the merged collection from scratch while holding the registry
// lock, so readers never observe a registry and merged collection that
// disagree. Contributor counts are small and a rebuild is a single pass over
// all mutators, so no incremental update path exists.
package registry
