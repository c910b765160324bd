package content

import "testing"

func TestSetAndGet(t *testing.T) {
	c := Map(map[string]Content{"title": String("hi")})
	c = c.Set("author", String("A"))

	got, ok := c.Get("author")
	if !ok {
		t.Fatal("Get(author) missing")
	}
	if s, _ := got.AsString(); s != "A" {
		t.Errorf("author = %q, want %q", s, "A")
	}
}

func TestDeleteField(t *testing.T) {
	c := Map(map[string]Content{"a": Number(1), "b": Number(2)})
	c = c.DeleteField("a")

	if _, ok := c.Get("a"); ok {
		t.Error("a should have been deleted")
	}
	if v, ok := c.Get("b"); !ok {
		t.Error("b should remain")
	} else if n, _ := v.AsNumber(); n != 2 {
		t.Errorf("b = %v, want 2", n)
	}
}

func TestEqual(t *testing.T) {
	a := List(String("x"), Map(map[string]Content{"k": Bool(true)}))
	b := List(String("x"), Map(map[string]Content{"k": Bool(true)}))
	c := List(String("x"), Map(map[string]Content{"k": Bool(false)}))

	if !Equal(a, b) {
		t.Error("a and b should be equal")
	}
	if Equal(a, c) {
		t.Error("a and c should differ")
	}
}

func TestSetOnNullCreatesMap(t *testing.T) {
	c := Null.Set("x", Number(1))
	if c.Kind() != KindMap {
		t.Fatalf("kind = %v, want map", c.Kind())
	}
}
