package revision

import "errors"

// Error kinds surfaced by the core write/read protocol (spec.md §7).
var (
	ErrNotFound        = errors.New("revision: document not found")
	ErrMissingSource   = errors.New("revision: promote source state has no tip")
	ErrConcurrentWrite = errors.New("revision: concurrent write lost the race")
	ErrCorruption      = errors.New("revision: corrupt revision data")
	ErrIndexingFailed  = errors.New("revision: search indexing failed")
	ErrInvalidContent  = errors.New("revision: content could not be serialized")
)
