package revision

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/regularfry/colonel/internal/objectstore"
)

// IndexEntry is one record in the DocumentIndex: a document id and its
// declared type (spec.md §3.4).
type IndexEntry struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

// DocumentIndex is the process-wide registry of (id, type) pairs,
// persisted as a newline-delimited JSON file under the storage root
// (spec.md §4.6). Writers hold an advisory file lock for the duration of
// a register/flush; reads go through the same lock, since the flat file
// is rewritten wholesale rather than appended-and-compacted.
type DocumentIndex struct {
	path string
	mu   sync.Mutex
}

// OpenDocumentIndex opens (creating if absent) the DocumentIndex rooted
// at storageRoot/index.
func OpenDocumentIndex(storageRoot string) (*DocumentIndex, error) {
	if err := os.MkdirAll(storageRoot, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &DocumentIndex{path: filepath.Join(storageRoot, "index")}, nil
}

func (idx *DocumentIndex) lockPath() string { return idx.path + ".lock" }

func (idx *DocumentIndex) flock() (func(), error) {
	f, err := os.OpenFile(idx.lockPath(), os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("open index lockfile: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		return nil, fmt.Errorf("flock index: %w", err)
	}
	return func() {
		unix.Flock(int(f.Fd()), unix.LOCK_UN)
		f.Close()
	}, nil
}

// Register records (id, type), idempotently: re-registering the same pair
// is a no-op, and registering a new type for an already-known id replaces
// the old entry (spec.md §3.4, §4.6).
func (idx *DocumentIndex) Register(id, typ string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	unlock, err := idx.flock()
	if err != nil {
		return err
	}
	defer unlock()

	entries, err := idx.readLocked()
	if err != nil {
		return err
	}

	for i, e := range entries {
		if e.ID == id {
			if e.Type == typ {
				return nil
			}
			entries[i].Type = typ
			return idx.writeLocked(entries)
		}
	}
	entries = append(entries, IndexEntry{ID: id, Type: typ})
	return idx.writeLocked(entries)
}

func (idx *DocumentIndex) readLocked() ([]IndexEntry, error) {
	f, err := os.Open(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read document index: %w", err)
	}
	defer f.Close()

	var entries []IndexEntry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var e IndexEntry
		if err := json.Unmarshal([]byte(line), &e); err != nil {
			return nil, fmt.Errorf("%w: parse index line: %v", objectstore.ErrCorruption, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read document index: %w", err)
	}
	return entries, nil
}

func (idx *DocumentIndex) writeLocked(entries []IndexEntry) error {
	var buf strings.Builder
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return objectstore.SafeWrite(idx.path, []byte(buf.String()), 0644)
}

// Documents returns every registered (id, type) pair.
func (idx *DocumentIndex) Documents() ([]IndexEntry, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	unlock, err := idx.flock()
	if err != nil {
		return nil, err
	}
	defer unlock()

	return idx.readLocked()
}

// Types lists the distinct document types currently registered, mirroring
// the teacher's SearchIndex.AllTypes.
func (idx *DocumentIndex) Types() ([]string, error) {
	entries, err := idx.Documents()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var out []string
	for _, e := range entries {
		if !seen[e.Type] {
			seen[e.Type] = true
			out = append(out, e.Type)
		}
	}
	return out, nil
}
