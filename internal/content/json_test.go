package content

import "testing"

func TestRoundTrip(t *testing.T) {
	cases := []Content{
		Null,
		Bool(true),
		Number(42),
		String("hello"),
		List(Number(1), Number(2), String("three")),
		Map(map[string]Content{
			"title": String("hi"),
			"tags":  List(String("a"), String("b")),
			"meta":  Map(map[string]Content{"nested": Bool(false)}),
		}),
	}

	for _, c := range cases {
		data, err := Serialize(c)
		if err != nil {
			t.Fatalf("Serialize: %v", err)
		}
		got, err := Parse(data)
		if err != nil {
			t.Fatalf("Parse: %v", err)
		}
		if !Equal(c, got) {
			t.Errorf("round trip mismatch: got %#v, want %#v", got, c)
		}
	}
}

func TestCanonicalSerialize_SortedKeys(t *testing.T) {
	c := Map(map[string]Content{"b": Number(1), "a": Number(2)})
	got, err := CanonicalSerialize(c)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"a":2,"b":1}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestCanonicalSerialize_Deterministic(t *testing.T) {
	c := Map(map[string]Content{
		"z": Map(map[string]Content{"b": Number(1), "a": Number(2)}),
		"a": String("first"),
	})
	first, err := CanonicalSerialize(c)
	if err != nil {
		t.Fatal(err)
	}
	second, err := CanonicalSerialize(c)
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Errorf("canonical serialization is not deterministic: %s vs %s", first, second)
	}
}

func TestParse_RejectsMalformedJSON(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}
