package revision

import (
	"testing"

	"github.com/regularfry/colonel/internal/content"
)

// Property 7: constructing a Revision from a bare id must not touch the
// store; accessing its id returns the supplied string; accessing metadata
// triggers a lookup.
func TestLazyRevisionDoesNotTouchStoreUntilAccessed(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.String("v1"))
	saved, err := d.Save(Author{Name: "A", Email: "a@x"}, "m", t0)
	if err != nil {
		t.Fatal(err)
	}

	// Re-open a fresh Document over the same storage and construct a lazy
	// revision from the bare id before ever opening its store.
	reopened := Open(d.storageRoot, d.ID, d.Type, d.index, nil)
	if err := reopened.openStore(); err != nil {
		t.Fatal(err)
	}
	rc := reopened.Revisions()
	rev := rc.ByID(saved.ID())

	if rev.ID() != saved.ID() {
		t.Fatalf("ID should be available without a lookup: got %s, want %s", rev.ID(), saved.ID())
	}
	if rev.loaded {
		t.Fatal("constructing from a bare id must not touch the store")
	}

	msg, err := rev.Message()
	if err != nil {
		t.Fatal(err)
	}
	if msg != "m" {
		t.Errorf("got message %q", msg)
	}
	if !rev.loaded {
		t.Fatal("accessing message should have triggered a load")
	}
}

func TestRevisionEqualityByID(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.String("v1"))
	a, err := d.Save(Author{Name: "A", Email: "a@x"}, "m", t0)
	if err != nil {
		t.Fatal(err)
	}

	rc := d.Revisions()
	b := rc.ByID(a.ID())
	if !a.Equal(b) {
		t.Error("revisions with the same id should be equal")
	}
}

func TestRootUniqueness(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.String("v1"))
	d.Save(Author{Name: "A", Email: "a@x"}, "m1", t0)
	d.SetContent(content.String("v2"))
	d.Save(Author{Name: "A", Email: "a@x"}, "m2", t1)
	d.Promote("master", "published", Author{Name: "A", Email: "a@x"}, "p", t2)

	it, err := d.History("master")
	if err != nil {
		t.Fatal(err)
	}
	revs, err := it.Collect()
	if err != nil {
		t.Fatal(err)
	}

	roots := 0
	for _, r := range revs {
		isRoot, err := r.IsRoot()
		if err != nil {
			t.Fatal(err)
		}
		if isRoot {
			roots++
		}
	}
	if roots != 1 {
		t.Errorf("expected exactly one root in master's history, got %d", roots)
	}
}

func TestIdentityDeterminism(t *testing.T) {
	d1 := testDoc(t)
	d1.SetContent(content.Map(map[string]content.Content{"a": content.Number(1)}))
	r1, err := d1.Save(Author{Name: "A", Email: "a@x"}, "m", t0)
	if err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	idx, err := OpenDocumentIndex(root)
	if err != nil {
		t.Fatal(err)
	}
	d2 := New(root, "docX", "article", idx, nil)
	d2.SetContent(content.Map(map[string]content.Content{"a": content.Number(1)}))
	r2, err := d2.Save(Author{Name: "A", Email: "a@x"}, "m", t0)
	if err != nil {
		t.Fatal(err)
	}

	if r1.ID() != r2.ID() {
		t.Errorf("identical (content, author, message, timestamp, previous) should yield the same id: %s vs %s", r1.ID(), r2.ID())
	}
}
