// Package author resolves the local operator's identity for new revisions,
// adapted from the teacher's on-disk Ed25519 identity (internal/dag) to
// spec.md §3.2's plain {name, email} shape: this store signs nothing, it
// only needs an attributable name.
package author

import (
	"os"

	"github.com/regularfry/colonel/internal/revision"
)

const (
	defaultName  = "anonymous"
	defaultEmail = "anonymous@localhost"
)

// Resolve returns the local author identity for new revisions, preferring
// COLONEL_AUTHOR_NAME/COLONEL_AUTHOR_EMAIL, then the OS user, then a fixed
// default — the same override-chain shape as the teacher's LoadIdentity
// (on-disk key, then freshly generated).
func Resolve() revision.Author {
	name := os.Getenv("COLONEL_AUTHOR_NAME")
	if name == "" {
		name = osUser()
	}
	email := os.Getenv("COLONEL_AUTHOR_EMAIL")
	if email == "" {
		email = defaultEmail
	}
	return revision.Author{Name: name, Email: email}
}

func osUser() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return defaultName
}
