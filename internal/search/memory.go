package search

import (
	"strings"
	"sync"

	"github.com/regularfry/colonel/internal/content"
)

// MemoryProvider is an in-process inverted-index-free search backend,
// adapted from the teacher's SearchIndex: it keeps the latest indexed
// Document per (id, state) and answers Search by substring match over
// every string scalar the content tree holds. It is meant for tests and
// small deployments, not as a production search engine.
type MemoryProvider struct {
	mu   sync.Mutex
	docs map[string]Document
}

// NewMemoryProvider returns an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{docs: map[string]Document{}}
}

func memoryKey(id, state string) string { return id + "\x00" + state }

func (m *MemoryProvider) EnsureIndex(indexName, typeName string, mapping map[string]string) error {
	return nil
}

func (m *MemoryProvider) Index(doc Document, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[memoryKey(doc.ID, doc.State)] = doc
	return nil
}

// Remove drops the indexed entry for (id, state), mirroring the teacher's
// SearchIndex.RemoveNode. Not required by spec.md, but a search
// collaborator that supports Index must support undoing it.
func (m *MemoryProvider) Remove(id, state string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, memoryKey(id, state))
}

func (m *MemoryProvider) List(opts map[string]string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wantType := opts["type"]
	wantState := opts["state"]

	out := make([]Document, 0, len(m.docs))
	for _, d := range m.docs {
		if wantType != "" && d.Type != wantType {
			continue
		}
		if wantState != "" && d.State != wantState {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (m *MemoryProvider) Search(query string) ([]Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	needle := strings.ToLower(query)
	var out []Document
	for _, d := range m.docs {
		if containsString(d.Content, needle) {
			out = append(out, d)
		}
	}
	return out, nil
}

func containsString(c content.Content, needle string) bool {
	switch c.Kind() {
	case content.KindString:
		s, _ := c.AsString()
		return strings.Contains(strings.ToLower(s), needle)
	case content.KindList:
		items, _ := c.AsList()
		for _, item := range items {
			if containsString(item, needle) {
				return true
			}
		}
		return false
	case content.KindMap:
		fields, _ := c.AsMap()
		for _, v := range fields {
			if containsString(v, needle) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
