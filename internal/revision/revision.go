// Package revision implements the per-document DAG: immutable Revisions
// linked by previous/origin, addressed through an objectstore.Store, and
// the Document aggregate that drives the save/promote write protocol
// (spec.md §3.2-§4.6).
package revision

import (
	"fmt"
	"time"

	"github.com/regularfry/colonel/internal/content"
	"github.com/regularfry/colonel/internal/objectstore"
)

// Author identifies who created a revision.
type Author struct {
	Name  string
	Email string
}

// Type classifies how a revision was produced, derived from its parent
// count (spec.md §3.2, §6).
type Type int

const (
	TypeOrphan Type = iota
	TypeSave
	TypePromotion
)

func (t Type) String() string {
	switch t {
	case TypeOrphan:
		return "orphan"
	case TypeSave:
		return "save"
	case TypePromotion:
		return "promotion"
	default:
		return "unknown"
	}
}

// handle is the non-owning reference a Revision needs to resolve itself:
// just the store and refs of the document it belongs to. Per spec.md §9's
// design note on lazy revisions, this is a weak reference — a Revision
// never keeps a Document alive, and never mutates either field.
type handle struct {
	store *objectstore.Store
	refs  *objectstore.RefStore
}

// Revision is an immutable node in a document's per-document DAG. It may
// be constructed lazily from a bare commit id: id and the state hint are
// available immediately, but content/author/message/timestamp/parents are
// resolved from the store on first access (spec.md §4.2, §8 property 7).
type Revision struct {
	h     handle
	id    objectstore.ID
	state string // traversal hint; not part of identity (spec.md §3.2)

	loaded    bool
	loadErr   error
	content   content.Content
	author    Author
	message   string
	timestamp time.Time
	parents   []objectstore.ID
}

func newLazyRevision(h handle, id objectstore.ID, state string) *Revision {
	return &Revision{h: h, id: id, state: state}
}

func newEagerRevision(h handle, id objectstore.ID, c content.Content, author Author, message string, ts time.Time, parents []objectstore.ID, state string) *Revision {
	return &Revision{
		h:         h,
		id:        id,
		state:     state,
		loaded:    true,
		content:   c,
		author:    author,
		message:   message,
		timestamp: ts,
		parents:   parents,
	}
}

// load resolves commit and blob data from the store exactly once. Per the
// laziness rule (spec.md §4.2), constructing a Revision never calls this;
// only accessing message/timestamp/content/parents does.
func (r *Revision) load() error {
	if r.loaded {
		return r.loadErr
	}
	r.loaded = true

	commit, err := r.h.store.ReadCommit(r.id)
	if err != nil {
		r.loadErr = err
		return err
	}
	blob, err := r.h.store.ReadTree(commit.Tree)
	if err != nil {
		r.loadErr = err
		return err
	}
	raw, err := r.h.store.ReadBlob(blob)
	if err != nil {
		r.loadErr = err
		return err
	}
	c, err := content.Parse(raw)
	if err != nil {
		r.loadErr = fmt.Errorf("%w: %v", ErrCorruption, err)
		return r.loadErr
	}

	r.content = c
	r.author = Author{Name: commit.Author.Name, Email: commit.Author.Email}
	r.message = commit.Message
	r.timestamp = commit.Timestamp
	r.parents = commit.Parents
	return nil
}

// ID returns the revision's content-addressed identifier without touching
// the store, even for a lazily-constructed revision.
func (r *Revision) ID() string { return string(r.id) }

// State returns the traversal hint this revision was reached through, or
// "" if it was constructed from a bare id.
func (r *Revision) State() string { return r.state }

// Equal compares two revisions by id, per spec.md §3.2.
func (r *Revision) Equal(other *Revision) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.id == other.id
}

// Content returns the Content snapshot this revision carries.
func (r *Revision) Content() (content.Content, error) {
	if err := r.load(); err != nil {
		return content.Null, err
	}
	return r.content, nil
}

// Author returns who created this revision.
func (r *Revision) Author() (Author, error) {
	if err := r.load(); err != nil {
		return Author{}, err
	}
	return r.author, nil
}

// Message returns the revision's commit message.
func (r *Revision) Message() (string, error) {
	if err := r.load(); err != nil {
		return "", err
	}
	return r.message, nil
}

// Timestamp returns the revision's creation time.
func (r *Revision) Timestamp() (time.Time, error) {
	if err := r.load(); err != nil {
		return time.Time{}, err
	}
	return r.timestamp, nil
}

// Type derives orphan/save/promotion from the parent count (spec.md §3.2).
func (r *Revision) Type() (Type, error) {
	if err := r.load(); err != nil {
		return 0, err
	}
	switch len(r.parents) {
	case 0:
		return TypeOrphan, nil
	case 1:
		return TypeSave, nil
	default:
		return TypePromotion, nil
	}
}

// IsRoot reports whether this revision is the document's designated root.
func (r *Revision) IsRoot() (bool, error) {
	rootID, ok, err := r.h.refs.Resolve(rootRef)
	if err != nil {
		return false, err
	}
	return ok && r.id == rootID, nil
}

// Previous returns the parent on this revision's own branch: parent[0],
// per spec.md §4.2. It is nil only for the root revision itself, which
// has no parents; the root is otherwise ordinary history and appears as
// the last element of a history() walk (spec.md §8 scenario S2).
func (r *Revision) Previous() (*Revision, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	if len(r.parents) == 0 {
		return nil, nil
	}
	return newLazyRevision(r.h, r.parents[0], r.state), nil
}

// Origin returns the source revision a promotion copied content from, or
// nil if this revision is not a promotion.
func (r *Revision) Origin() (*Revision, error) {
	if err := r.load(); err != nil {
		return nil, err
	}
	if len(r.parents) < 2 {
		return nil, nil
	}
	return newLazyRevision(r.h, r.parents[1], ""), nil
}

// HasBeenPromotedTo reports whether this revision (or a descendant of it,
// via save) was ever the source of a promotion onto state (spec.md §4.5).
// It walks state's branch backwards from its tip; for each promotion
// commit found there, it checks whether that promotion's origin is this
// revision or a descendant of it.
func (r *Revision) HasBeenPromotedTo(state string) (bool, error) {
	tip, ok, err := r.h.refs.Resolve(headRef(state))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	cur := tip
	for cur != objectstore.Zero {
		commit, err := r.h.store.ReadCommit(cur)
		if err != nil {
			return false, err
		}
		if len(commit.Parents) == 2 {
			reached, err := r.isAncestorOrEqual(commit.Parents[1])
			if err != nil {
				return false, err
			}
			if reached {
				return true, nil
			}
		}
		if len(commit.Parents) == 0 {
			break
		}
		cur = commit.Parents[0]
	}
	return false, nil
}

// isAncestorOrEqual reports whether r is target or an ancestor of target,
// walking target's own-branch parent chain.
func (r *Revision) isAncestorOrEqual(target objectstore.ID) (bool, error) {
	cur := target
	for cur != objectstore.Zero {
		if cur == r.id {
			return true, nil
		}
		commit, err := r.h.store.ReadCommit(cur)
		if err != nil {
			return false, err
		}
		if len(commit.Parents) == 0 {
			return false, nil
		}
		cur = commit.Parents[0]
	}
	return false, nil
}

// RevisionCollection is the indexer over one document's revisions
// (spec.md §4.3).
type RevisionCollection struct {
	h handle
}

// ByID returns a lazy Revision bound to id without touching the store.
func (rc RevisionCollection) ByID(id string) *Revision {
	return newLazyRevision(rc.h, objectstore.ID(id), "")
}

// ByState resolves state's current tip. Returns nil, nil if the ref does
// not exist. The returned revision carries state as its traversal hint.
func (rc RevisionCollection) ByState(state string) (*Revision, error) {
	tip, ok, err := rc.h.refs.Resolve(headRef(state))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return newLazyRevision(rc.h, tip, state), nil
}

// RootRevision resolves the document's designated root, or nil, nil if
// the document has never been written.
func (rc RevisionCollection) RootRevision() (*Revision, error) {
	root, ok, err := rc.h.refs.Resolve(rootRef)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return newLazyRevision(rc.h, root, ""), nil
}

// HistoryIter is the lazy, finite, non-restartable sequence history()
// yields (spec.md §4.5): each call to Next resolves one more previous
// link.
type HistoryIter struct {
	next *Revision
	err  error
}

// Next returns the next revision in the chain, or ok=false once the chain
// (or an error) has ended.
func (it *HistoryIter) Next() (*Revision, bool) {
	if it.next == nil {
		return nil, false
	}
	r := it.next
	prev, err := r.Previous()
	if err != nil {
		it.err = err
		it.next = nil
		return r, true
	}
	it.next = prev
	return r, true
}

// Err returns the error, if any, that ended iteration early.
func (it *HistoryIter) Err() error { return it.err }

// Collect drains the iterator into a slice, in tip-to-root order.
func (it *HistoryIter) Collect() ([]*Revision, error) {
	var out []*Revision
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		out = append(out, r)
	}
	return out, it.Err()
}
