package objectstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

// RefStore manages named mutable pointers into the object store: the state
// branches (refs/heads/<state>) and the document's root ref
// (refs/tags/root), per spec.md §6. Each ref is a single file holding an
// object id. Updates are compare-and-swap so two concurrent writers to the
// same ref cannot both win (spec.md §5, §8 property 6).
type RefStore struct {
	dir string // path to <storage_root>/<doc_id>/refs
	mu  sync.Mutex
}

// NewRefStore creates a RefStore rooted at dir, creating it if absent. Ref
// names are conventionally "heads/<state>" or "tags/root"; the slash is
// encoded in the filename so the store stays a flat directory of files.
func NewRefStore(dir string) (*RefStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create refs dir: %w", err)
	}
	return &RefStore{dir: dir}, nil
}

func refFilename(name string) string {
	return strings.ReplaceAll(name, "/", "__")
}

func (r *RefStore) path(name string) string {
	return filepath.Join(r.dir, refFilename(name))
}

func (r *RefStore) lockPath(name string) string {
	return r.path(name) + ".lock"
}

// Resolve reads the current id a ref points at. ok is false if the ref does
// not exist.
func (r *RefStore) Resolve(name string) (id ID, ok bool, err error) {
	data, err := os.ReadFile(r.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Zero, false, nil
		}
		return Zero, false, fmt.Errorf("read ref %s: %w", name, err)
	}
	return ID(strings.TrimSpace(string(data))), true, nil
}

// Update performs a compare-and-swap: the ref is set to newID only if its
// current value equals expectPrevious (Zero meaning "must not yet exist").
// Returns ErrRefStale otherwise. Locking is two-layered: an in-process
// mutex serializes goroutines in this process, and an advisory flock on a
// sibling lockfile serializes across processes sharing the same on-disk
// repository (spec.md §5's "single-writer per document" model made safe
// for multiple OS processes).
func (r *RefStore) Update(name string, newID, expectPrevious ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	unlock, err := r.flock(name)
	if err != nil {
		return err
	}
	defer unlock()

	current, ok, err := r.Resolve(name)
	if err != nil {
		return err
	}
	if ok {
		if current != expectPrevious {
			return ErrRefStale
		}
	} else if expectPrevious != Zero {
		return ErrRefStale
	}

	if err := SafeWrite(r.path(name), []byte(string(newID)+"\n"), 0644); err != nil {
		return fmt.Errorf("write ref %s: %w", name, err)
	}
	return nil
}

// flock takes an advisory exclusive lock on name's lockfile, returning a
// function that releases it.
func (r *RefStore) flock(name string) (func(), error) {
	path := r.lockPath(name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open lockfile: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

// Has reports whether a ref exists.
func (r *RefStore) Has(name string) bool {
	_, ok, err := r.Resolve(name)
	return err == nil && ok
}

// headPrefix is the filename prefix for state-branch refs ("heads/master"
// encodes to "heads__master").
const headPrefix = "heads__"

// ListHeads returns the state names with an existing "heads/<state>" ref.
func (r *RefStore) ListHeads() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("list refs: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasSuffix(e.Name(), ".lock") {
			continue
		}
		if state, ok := strings.CutPrefix(e.Name(), headPrefix); ok {
			names = append(names, state)
		}
	}
	return names, nil
}
