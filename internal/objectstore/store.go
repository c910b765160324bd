package objectstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	gocid "github.com/ipfs/go-cid"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multihash"
)

// ID is the content-addressed identifier of a stored object: the
// base32-lowercase multibase encoding of a CIDv1 (raw codec, SHA2-256).
// It is the "hex digest" spec.md §3.2 calls a Revision's id.
type ID string

// Zero is the empty/undefined id, used as the "no previous ref" sentinel
// in RefStore.Update's compare-and-swap.
const Zero ID = ""

func computeID(data []byte) (ID, error) {
	mh, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return Zero, fmt.Errorf("digest: %w", err)
	}
	c := gocid.NewCidV1(gocid.Raw, mh)
	encoded, err := multibase.Encode(multibase.Base32, c.Bytes())
	if err != nil {
		return Zero, fmt.Errorf("encode id: %w", err)
	}
	return ID(encoded), nil
}

// Store is the per-document, content-addressed, append-only object store:
// the "object store adapter" of spec.md §4.1. A Store is bare in the git
// sense — there is no working tree, only the objects/ directory and the
// refs/ directory managed alongside it by RefStore.
type Store struct {
	dir string // path to <storage_root>/<doc_id>/objects
}

// Open opens an existing object store at dir, failing with ErrNotFound if
// the directory is absent.
func Open(dir string) (*Store, error) {
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("stat objects dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Init creates the object store at dir if absent. Idempotent.
func Init(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create objects dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(id ID) string {
	return filepath.Join(s.dir, string(id))
}

// put writes raw bytes as a content-addressed object, returning its id. A
// no-op if the object already exists.
func (s *Store) put(data []byte) (ID, error) {
	id, err := computeID(data)
	if err != nil {
		return Zero, err
	}
	path := s.path(id)
	if _, err := os.Stat(path); err == nil {
		return id, nil
	}
	if err := SafeWrite(path, data, 0644); err != nil {
		return Zero, fmt.Errorf("write object: %w", err)
	}
	return id, nil
}

// get reads the raw bytes of an object by id.
func (s *Store) get(id ID) ([]byte, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read object %s: %w", id, err)
	}
	return data, nil
}

// Has reports whether an object with the given id exists.
func (s *Store) Has(id ID) bool {
	_, err := os.Stat(s.path(id))
	return err == nil
}

// WriteBlob stores raw content bytes and returns its id.
func (s *Store) WriteBlob(data []byte) (ID, error) {
	return s.put(data)
}

// ReadBlob reads back a blob's raw bytes.
func (s *Store) ReadBlob(id ID) ([]byte, error) {
	return s.get(id)
}

// WriteTree stores a single-blob tree — per spec.md §6, trees hold exactly
// one entry named "content" — and returns the tree's id.
func (s *Store) WriteTree(blob ID) (ID, error) {
	tree := treeObject{V: 1, Entry: map[string]string{treeBlobName: string(blob)}}
	data, err := canonicalJSON(tree)
	if err != nil {
		return Zero, fmt.Errorf("serialize tree: %w", err)
	}
	return s.put(data)
}

// ReadTree resolves a tree id to the blob id of its sole "content" entry.
func (s *Store) ReadTree(id ID) (ID, error) {
	data, err := s.get(id)
	if err != nil {
		return Zero, err
	}
	var tree treeObject
	if err := json.Unmarshal(data, &tree); err != nil {
		return Zero, fmt.Errorf("%w: unmarshal tree: %v", ErrCorruption, err)
	}
	blob, ok := tree.Entry[treeBlobName]
	if !ok {
		return Zero, fmt.Errorf("%w: tree missing %q entry", ErrCorruption, treeBlobName)
	}
	return ID(blob), nil
}

// WriteCommit serializes and stores a commit object, returning its id.
// Commit identity is deterministic in all of its fields (spec.md §3.2):
// identical (tree, parents, author, message, timestamp) always yields the
// same id, since storage is by content hash of the canonical encoding.
func (s *Store) WriteCommit(c Commit) (ID, error) {
	data, err := canonicalJSON(c)
	if err != nil {
		return Zero, fmt.Errorf("serialize commit: %w", err)
	}
	return s.put(data)
}

// ReadCommit resolves a commit id to its decoded form.
func (s *Store) ReadCommit(id ID) (Commit, error) {
	data, err := s.get(id)
	if err != nil {
		return Commit{}, err
	}
	var c Commit
	if err := json.Unmarshal(data, &c); err != nil {
		return Commit{}, fmt.Errorf("%w: unmarshal commit: %v", ErrCorruption, err)
	}
	return c, nil
}
