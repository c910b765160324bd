package author

import "testing"

func TestResolveDefaultsWhenUnset(t *testing.T) {
	t.Setenv("COLONEL_AUTHOR_NAME", "")
	t.Setenv("COLONEL_AUTHOR_EMAIL", "")
	t.Setenv("USER", "")

	a := Resolve()
	if a.Name != defaultName {
		t.Errorf("got name %q", a.Name)
	}
	if a.Email != defaultEmail {
		t.Errorf("got email %q", a.Email)
	}
}

func TestResolveHonorsEnvOverride(t *testing.T) {
	t.Setenv("COLONEL_AUTHOR_NAME", "Ada")
	t.Setenv("COLONEL_AUTHOR_EMAIL", "ada@example.com")

	a := Resolve()
	if a.Name != "Ada" || a.Email != "ada@example.com" {
		t.Errorf("got %+v", a)
	}
}
