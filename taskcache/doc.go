// Package taskcache is the normalized task entity store consumed by the
// review coordinator.
//
// Records merge at field level: fields present in a patch overwrite, and
// absent fields preserve the cached value. Because of that convention a
// merged value is not individually reversible; there is no undo. The
// claim field therefore uses a three-state RefPatch (absent, explicit
// null, user id) so callers can distinguish "leave the claim alone" from
// "clear the claim", and failed optimistic updates are repaired by
// fetching the authoritative record (FetchTask) rather than rolled back.
package taskcache
