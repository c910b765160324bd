// Package search defines the pluggable indexing collaborator a Document
// notifies after every successful write (spec.md §4.7). It deliberately
// does not import internal/revision: the collaborator sees a flattened
// projection of a revision, never the revision graph itself.
package search

import "github.com/regularfry/colonel/internal/content"

// Event describes why Index was called: a plain save, or a promotion onto
// the named destination state.
type Event struct {
	Name string // "save" or "promotion"
	To   string
}

// Document is the flattened view of a document's revision handed to a
// search provider: enough to build or refresh a queryable projection
// without the provider needing to know about the revision graph.
type Document struct {
	ID       string
	Type     string
	Revision string
	State    string
	Content  content.Content
}

// Provider is the capability set spec.md §9 calls out explicitly: an
// explicit no-op implementation exists so the core's notification points
// never need a nil check.
type Provider interface {
	EnsureIndex(indexName, typeName string, mapping map[string]string) error
	Index(doc Document, event Event) error
	List(opts map[string]string) ([]Document, error)
	Search(query string) ([]Document, error)
}

// NoopProvider discards every call. It is the default when a Document is
// constructed without a configured search backend.
type NoopProvider struct{}

func (NoopProvider) EnsureIndex(string, string, map[string]string) error { return nil }
func (NoopProvider) Index(Document, Event) error                        { return nil }
func (NoopProvider) List(map[string]string) ([]Document, error)         { return nil, nil }
func (NoopProvider) Search(string) ([]Document, error)                  { return nil, nil }
