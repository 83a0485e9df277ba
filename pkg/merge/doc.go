// Package merge combines the collections of many contributors into a single
// read-only merged collection: one ordered list of contributor-tagged
// mutators per environment variable.
//
// Contributors are walked in registration order and each contributor's
// mutators in declaration order. Every mutator is inserted at the head of its
// variable's list, so later contributors are applied first. Once the head of
// a list is a replace mutator the list is closed: mutators considered after
// that point are dropped, while mutators already in the list stay behind the
// replace and are still applied after it.
//
// A merged collection is never patched. Any change to the set of
// contributions produces a new one via Merge.
package merge
