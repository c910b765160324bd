package revision

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/regularfry/colonel/internal/content"
	"github.com/regularfry/colonel/internal/objectstore"
	"github.com/regularfry/colonel/internal/search"
)

const (
	rootRef         = "tags/root"
	rootAuthorName  = "The Colonel"
	rootAuthorEmail = "colonel@example.com"
	rootMessage     = "First Commit"
)

func headRef(state string) string { return "heads/" + state }

// Document is the aggregate owning one document's object store: its id,
// type, unsaved content buffer, and the save/promote write protocol
// (spec.md §3.3, §4.4).
type Document struct {
	ID   string
	Type string

	storageRoot string
	index       *DocumentIndex
	search      search.Provider

	store *objectstore.Store
	refs  *objectstore.RefStore

	content content.Content
}

// New creates a Document handle for a fresh or existing id under
// storageRoot. It never touches disk itself: the object store is created
// lazily on first write (spec.md §3.5). An empty id generates a fresh
// random version 4 UUID string (122 of its 128 bits are random, and it is
// written in hyphenated UUID form rather than as bare hex); an empty typ
// defaults to "document".
func New(storageRoot, id, typ string, idx *DocumentIndex, sp search.Provider) *Document {
	if id == "" {
		id = uuid.NewString()
	}
	if typ == "" {
		typ = "document"
	}
	if sp == nil {
		sp = search.NoopProvider{}
	}
	return &Document{
		ID:          id,
		Type:        typ,
		storageRoot: storageRoot,
		index:       idx,
		search:      sp,
	}
}

// Open is New under the name spec.md §3.5 uses for the read path
// ("opened by id"); it is equally lazy and does not fail if the document
// has never been written until an operation actually needs its store.
func Open(storageRoot, id, typ string, idx *DocumentIndex, sp search.Provider) *Document {
	return New(storageRoot, id, typ, idx, sp)
}

// SetContent replaces the document's unsaved content buffer.
func (d *Document) SetContent(c content.Content) { d.content = c }

// Content returns the document's unsaved content buffer.
func (d *Document) Content() content.Content { return d.content }

func (d *Document) objectsDir() string { return filepath.Join(d.storageRoot, d.ID, "objects") }
func (d *Document) refsDir() string    { return filepath.Join(d.storageRoot, d.ID, "refs") }

// ensureStore lazily initializes the per-document object store, creating
// it if absent (spec.md §4.1 init).
func (d *Document) ensureStore() error {
	if d.store != nil && d.refs != nil {
		return nil
	}
	store, err := objectstore.Init(d.objectsDir())
	if err != nil {
		return err
	}
	refs, err := objectstore.NewRefStore(d.refsDir())
	if err != nil {
		return err
	}
	d.store = store
	d.refs = refs
	return nil
}

// openStore opens an existing store without creating it, translating
// absence into ErrNotFound (spec.md §7).
func (d *Document) openStore() error {
	if d.store != nil && d.refs != nil {
		return nil
	}
	store, err := objectstore.Open(d.objectsDir())
	if err != nil {
		if err == objectstore.ErrNotFound {
			return ErrNotFound
		}
		return err
	}
	refs, err := objectstore.NewRefStore(d.refsDir())
	if err != nil {
		return err
	}
	d.store = store
	d.refs = refs
	return nil
}

func (d *Document) handle() handle {
	return handle{store: d.store, refs: d.refs}
}

// Revisions returns the indexer over this document's revisions
// (spec.md §4.3). Requires the store to already be open.
func (d *Document) Revisions() RevisionCollection {
	return RevisionCollection{h: d.handle()}
}

// ensureRoot creates the document's root revision if absent, returning
// its id either way (spec.md §4.4 save_in step 2).
func (d *Document) ensureRoot(ts time.Time) (objectstore.ID, error) {
	existing, ok, err := d.refs.Resolve(rootRef)
	if err != nil {
		return objectstore.Zero, err
	}
	if ok {
		return existing, nil
	}

	blobData, err := content.CanonicalSerialize(content.Null)
	if err != nil {
		return objectstore.Zero, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	blob, err := d.store.WriteBlob(blobData)
	if err != nil {
		return objectstore.Zero, err
	}
	tree, err := d.store.WriteTree(blob)
	if err != nil {
		return objectstore.Zero, err
	}
	commit := objectstore.Commit{
		V:         1,
		Tree:      tree,
		Author:    objectstore.Author{Name: rootAuthorName, Email: rootAuthorEmail},
		Message:   rootMessage,
		Timestamp: ts,
	}
	id, err := d.store.WriteCommit(commit)
	if err != nil {
		return objectstore.Zero, err
	}

	if err := d.refs.Update(rootRef, id, objectstore.Zero); err != nil {
		if err == objectstore.ErrRefStale {
			// Someone else created the root concurrently; use theirs.
			existing, ok, rerr := d.refs.Resolve(rootRef)
			if rerr != nil {
				return objectstore.Zero, rerr
			}
			if ok {
				return existing, nil
			}
		}
		return objectstore.Zero, err
	}
	return id, nil
}

// Save is save_in("master", ...) (spec.md §4.4).
func (d *Document) Save(author Author, message string, ts time.Time) (*Revision, error) {
	return d.SaveIn("master", author, message, ts)
}

// SaveIn creates a new revision on branch state from the document's
// current content buffer (spec.md §4.4 save_in).
func (d *Document) SaveIn(state string, author Author, message string, ts time.Time) (*Revision, error) {
	if err := d.ensureStore(); err != nil {
		return nil, err
	}
	rootID, err := d.ensureRoot(ts)
	if err != nil {
		return nil, err
	}

	previousID, ok, err := d.refs.Resolve(headRef(state))
	if err != nil {
		return nil, err
	}
	// The CAS compares against the ref's current value, which is Zero while
	// the branch does not exist yet, even though the parent is then the root.
	expectID := previousID
	if !ok {
		previousID = rootID
	}

	blobData, err := content.CanonicalSerialize(d.content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	blob, err := d.store.WriteBlob(blobData)
	if err != nil {
		return nil, err
	}
	tree, err := d.store.WriteTree(blob)
	if err != nil {
		return nil, err
	}

	commit := objectstore.Commit{
		V:         1,
		Tree:      tree,
		Parents:   []objectstore.ID{previousID},
		Author:    objectstore.Author{Name: author.Name, Email: author.Email},
		Message:   message,
		Timestamp: ts,
	}
	id, err := d.store.WriteCommit(commit)
	if err != nil {
		return nil, err
	}
	if err := d.refs.Update(headRef(state), id, expectID); err != nil {
		if err == objectstore.ErrRefStale {
			return nil, ErrConcurrentWrite
		}
		return nil, err
	}

	if d.index != nil {
		if err := d.index.Register(d.ID, d.Type); err != nil {
			return nil, err
		}
	}

	rev := newEagerRevision(d.handle(), id, d.content, author, message, ts, commit.Parents, state)
	if err := d.notify(rev, state, "save"); err != nil {
		return rev, err
	}
	return rev, nil
}

// Promote copies the tip content of state from onto state to as a new
// two-parent revision, preserving provenance (spec.md §4.4 promote).
func (d *Document) Promote(from, to string, author Author, message string, ts time.Time) (*Revision, error) {
	if err := d.ensureStore(); err != nil {
		return nil, err
	}

	originID, ok, err := d.refs.Resolve(headRef(from))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrMissingSource
	}
	originCommit, err := d.store.ReadCommit(originID)
	if err != nil {
		return nil, err
	}

	rootID, err := d.ensureRoot(ts)
	if err != nil {
		return nil, err
	}

	previousID, ok, err := d.refs.Resolve(headRef(to))
	if err != nil {
		return nil, err
	}
	expectID := previousID
	if !ok {
		previousID = rootID
	}

	// Promotion never transforms content: the new commit reuses the
	// origin's tree id wholesale.
	commit := objectstore.Commit{
		V:         1,
		Tree:      originCommit.Tree,
		Parents:   []objectstore.ID{previousID, originID},
		Author:    objectstore.Author{Name: author.Name, Email: author.Email},
		Message:   message,
		Timestamp: ts,
	}
	id, err := d.store.WriteCommit(commit)
	if err != nil {
		return nil, err
	}
	if err := d.refs.Update(headRef(to), id, expectID); err != nil {
		if err == objectstore.ErrRefStale {
			return nil, ErrConcurrentWrite
		}
		return nil, err
	}

	originContent, err := d.readTreeContent(originCommit.Tree)
	if err != nil {
		return nil, err
	}

	if d.index != nil {
		if err := d.index.Register(d.ID, d.Type); err != nil {
			return nil, err
		}
	}

	rev := newEagerRevision(d.handle(), id, originContent, author, message, ts, commit.Parents, to)
	if err := d.notify(rev, to, "promotion"); err != nil {
		return rev, err
	}
	return rev, nil
}

func (d *Document) readTreeContent(tree objectstore.ID) (content.Content, error) {
	blob, err := d.store.ReadTree(tree)
	if err != nil {
		return content.Null, err
	}
	raw, err := d.store.ReadBlob(blob)
	if err != nil {
		return content.Null, err
	}
	c, err := content.Parse(raw)
	if err != nil {
		return content.Null, fmt.Errorf("%w: %v", ErrCorruption, err)
	}
	return c, nil
}

// notify pushes the revision to the search provider. Indexing failure is
// non-fatal (spec.md §7): the commit already stands, so the write's
// return value still carries the new Revision, wrapped with
// ErrIndexingFailed so the caller can tell the two apart.
func (d *Document) notify(rev *Revision, state, eventName string) error {
	if d.search == nil {
		return nil
	}
	c, err := rev.Content()
	if err != nil {
		return nil
	}
	doc := search.Document{
		ID:       d.ID,
		Type:     d.Type,
		Revision: rev.ID(),
		State:    state,
		Content:  c,
	}
	if err := d.search.Index(doc, search.Event{Name: eventName, To: state}); err != nil {
		return fmt.Errorf("%w: %v", ErrIndexingFailed, err)
	}
	return nil
}

// History returns a lazy, non-restartable iterator over the ancestor
// chain starting at the revision resolved from stateOrID (spec.md §4.5):
// a known state name resolves to its tip, otherwise stateOrID is treated
// as a bare revision id.
func (d *Document) History(stateOrID string) (*HistoryIter, error) {
	if err := d.openStore(); err != nil {
		return nil, err
	}
	rc := d.Revisions()
	rev, err := rc.ByState(stateOrID)
	if err != nil {
		return nil, err
	}
	if rev == nil {
		rev = rc.ByID(stateOrID)
	}
	return &HistoryIter{next: rev}, nil
}

// Diff reports whether stateA and stateB's tips have diverged and, if so,
// their common ancestor, by walking previous from both tips (spec.md §4
// supplemental feature, adapted from the teacher's diffRefs).
func (d *Document) Diff(stateA, stateB string) (diverged bool, ancestor *Revision, err error) {
	if err = d.openStore(); err != nil {
		return false, nil, err
	}
	rc := d.Revisions()
	a, err := rc.ByState(stateA)
	if err != nil {
		return false, nil, err
	}
	b, err := rc.ByState(stateB)
	if err != nil {
		return false, nil, err
	}
	if a == nil || b == nil {
		return false, nil, nil
	}
	if a.Equal(b) {
		return false, a, nil
	}

	ancestors := map[objectstore.ID]bool{}
	for cur := a; cur != nil; {
		ancestors[cur.id] = true
		cur, err = cur.Previous()
		if err != nil {
			return false, nil, err
		}
	}
	for cur := b; cur != nil; {
		if ancestors[cur.id] {
			return true, cur, nil
		}
		cur, err = cur.Previous()
		if err != nil {
			return false, nil, err
		}
	}
	return true, nil, nil
}
