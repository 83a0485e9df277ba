// Package core wires envmerge together for one run of the CLI or server.
//
// A Session owns the registry for its lifetime. Contributors discovered on
// disk are registered first, sorted by id, followed by collections saved by
// earlier `envmerge set --persistent` calls or PUT requests. Registering an
// id that is already known overwrites its collection in place, so a saved
// collection takes the position of a discovered contributor with the same id.
//
// Collections registered at runtime are tracked separately from discovered
// ones so that only they are written back to collections.toml.
package core
