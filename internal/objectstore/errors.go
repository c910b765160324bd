package objectstore

import "errors"

// ErrNotFound is returned when a repository path or object id does not
// resolve to anything on disk.
var ErrNotFound = errors.New("objectstore: not found")

// ErrRefStale is returned by RefStore.Update when the ref's current tip does not
// match the caller's expected previous id — the compare-and-swap lost.
var ErrRefStale = errors.New("objectstore: ref is stale")

// ErrCorruption is returned when a stored object fails to parse.
var ErrCorruption = errors.New("objectstore: corrupt object")
