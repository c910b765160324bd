package revision

import (
	"testing"
	"time"

	"github.com/regularfry/colonel/internal/content"
	"github.com/regularfry/colonel/internal/objectstore"
)

func testDoc(t *testing.T) *Document {
	t.Helper()
	root := t.TempDir()
	idx, err := OpenDocumentIndex(root)
	if err != nil {
		t.Fatal(err)
	}
	return New(root, "doc1", "article", idx, nil)
}

var t0 = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
var t1 = t0.Add(time.Minute)
var t2 = t0.Add(2 * time.Minute)

func mustBool(t *testing.T, r *Revision) bool {
	t.Helper()
	root, err := r.IsRoot()
	if err != nil {
		t.Fatal(err)
	}
	return root
}

// S1 — basic save/load.
func TestSaveLoad(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.Map(map[string]content.Content{"title": content.String("hi")}))

	rev, err := d.Save(Author{Name: "A", Email: "a@x"}, "m", t0)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	c, err := rev.Content()
	if err != nil {
		t.Fatal(err)
	}
	title, ok := c.Get("title")
	if !ok {
		t.Fatal("missing title")
	}
	s, _ := title.AsString()
	if s != "hi" {
		t.Errorf("got %q", s)
	}

	author, err := rev.Author()
	if err != nil {
		t.Fatal(err)
	}
	if author.Name != "A" || author.Email != "a@x" {
		t.Errorf("got %+v", author)
	}

	prev, err := rev.Previous()
	if err != nil {
		t.Fatal(err)
	}
	if !mustBool(t, prev) {
		t.Error("expected first save's previous to be the root")
	}
}

// S2 — two saves linear.
func TestTwoSavesLinear(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.Map(map[string]content.Content{"title": content.String("hi")}))
	s1, err := d.Save(Author{Name: "A", Email: "a@x"}, "m1", t0)
	if err != nil {
		t.Fatal(err)
	}

	d.SetContent(content.Map(map[string]content.Content{"title": content.String("hi2")}))
	s2, err := d.Save(Author{Name: "A", Email: "a@x"}, "m2", t1)
	if err != nil {
		t.Fatal(err)
	}

	it, err := d.History("master")
	if err != nil {
		t.Fatal(err)
	}
	got, err := it.Collect()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 revisions (s2, s1, root), got %d", len(got))
	}
	if got[0].ID() != s2.ID() || got[1].ID() != s1.ID() {
		t.Errorf("wrong order: %v", got)
	}
	if !mustBool(t, got[2]) {
		t.Error("expected third revision to be root")
	}

	prev, err := s2.Previous()
	if err != nil {
		t.Fatal(err)
	}
	if prev.ID() != s1.ID() {
		t.Errorf("s2.previous = %s, want %s", prev.ID(), s1.ID())
	}
}

// S3 — promotion preserves content.
func TestPromotionPreservesContent(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.Map(map[string]content.Content{"title": content.String("hi")}))
	s1, err := d.Save(Author{Name: "A", Email: "a@x"}, "m", t0)
	if err != nil {
		t.Fatal(err)
	}

	p, err := d.Promote("master", "published", Author{Name: "A", Email: "a@x"}, "go live", t1)
	if err != nil {
		t.Fatal(err)
	}

	pc, _ := p.Content()
	s1c, _ := s1.Content()
	if !content.Equal(pc, s1c) {
		t.Errorf("promoted content mismatch: %#v vs %#v", pc, s1c)
	}

	typ, err := p.Type()
	if err != nil {
		t.Fatal(err)
	}
	if typ != TypePromotion {
		t.Errorf("got type %v", typ)
	}

	origin, err := p.Origin()
	if err != nil {
		t.Fatal(err)
	}
	if origin == nil || origin.ID() != s1.ID() {
		t.Errorf("wrong origin")
	}

	prev, err := p.Previous()
	if err != nil {
		t.Fatal(err)
	}
	if !mustBool(t, prev) {
		t.Error("expected published's previous to be root (first write on that branch)")
	}

	if p.ID() == s1.ID() {
		t.Error("promoted revision must have a distinct id from its origin")
	}
}

// S4 — has_been_promoted_to draft-only.
func TestHasBeenPromotedToDraftOnly(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.String("v1"))
	d.Save(Author{Name: "A", Email: "a@x"}, "m1", t0)
	d.SetContent(content.String("v2"))
	m2, err := d.Save(Author{Name: "A", Email: "a@x"}, "m2", t1)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m2.HasBeenPromotedTo("published")
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("expected false: no published branch exists")
	}
}

// S5 — has_been_promoted_to after a later promotion, and not for a save
// after the promoted revision.
func TestHasBeenPromotedToAfterLaterPromotion(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.String("v1"))
	m1, err := d.Save(Author{Name: "A", Email: "a@x"}, "m1", t0)
	if err != nil {
		t.Fatal(err)
	}
	d.SetContent(content.String("v2"))
	_, err = d.Save(Author{Name: "A", Email: "a@x"}, "m2", t1)
	if err != nil {
		t.Fatal(err)
	}

	// Promote while master's tip is still m2, before m3 exists, so the
	// published origin is m2 rather than whatever master's tip ends up at.
	if _, err := d.Promote("master", "published", Author{Name: "A", Email: "a@x"}, "publish m2", t2); err != nil {
		t.Fatal(err)
	}

	d.SetContent(content.String("v3"))
	m3, err := d.Save(Author{Name: "A", Email: "a@x"}, "m3", t2)
	if err != nil {
		t.Fatal(err)
	}

	got, err := m1.HasBeenPromotedTo("published")
	if err != nil {
		t.Fatal(err)
	}
	if !got {
		t.Error("expected m1 (ancestor of promoted m2) to answer true")
	}

	got, err = m3.HasBeenPromotedTo("published")
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("expected m3 (save after the promoted revision) to answer false")
	}
}

// S6 — concurrent saves: two writers building from the same tip race to
// update the branch ref; exactly one wins and the other sees
// ConcurrentWrite, with the ref left pointing at the winner.
func TestConcurrentSaveFails(t *testing.T) {
	d := testDoc(t)
	d.SetContent(content.String("v1"))
	first, err := d.Save(Author{Name: "A", Email: "a@x"}, "m1", t0)
	if err != nil {
		t.Fatal(err)
	}
	tip := objectstore.ID(first.ID())

	// Both clients read tip as their previous and build independent
	// commits against it, exactly as SaveIn does internally.
	winnerBlob, _ := d.store.WriteBlob([]byte(`"winner"`))
	winnerTree, _ := d.store.WriteTree(winnerBlob)
	winnerCommit := objectstore.Commit{V: 1, Tree: winnerTree, Parents: []objectstore.ID{tip}, Author: objectstore.Author{Name: "A", Email: "a@x"}, Message: "winner", Timestamp: t1}
	winnerID, err := d.store.WriteCommit(winnerCommit)
	if err != nil {
		t.Fatal(err)
	}

	loserBlob, _ := d.store.WriteBlob([]byte(`"loser"`))
	loserTree, _ := d.store.WriteTree(loserBlob)
	loserCommit := objectstore.Commit{V: 1, Tree: loserTree, Parents: []objectstore.ID{tip}, Author: objectstore.Author{Name: "B", Email: "b@x"}, Message: "loser", Timestamp: t1}
	loserID, err := d.store.WriteCommit(loserCommit)
	if err != nil {
		t.Fatal(err)
	}

	if err := d.refs.Update(headRef("master"), winnerID, tip); err != nil {
		t.Fatalf("winner's CAS update should have succeeded: %v", err)
	}
	if err := d.refs.Update(headRef("master"), loserID, tip); err != objectstore.ErrRefStale {
		t.Fatalf("loser's CAS update should have failed with ErrRefStale, got %v", err)
	}

	got, ok, err := d.refs.Resolve(headRef("master"))
	if err != nil || !ok {
		t.Fatalf("Resolve: %v %v", got, err)
	}
	if got != winnerID {
		t.Errorf("master tip = %s, want winner %s", got, winnerID)
	}
}
