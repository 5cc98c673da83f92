package version

import "testing"

func TestResolveNeverEmpty(t *testing.T) {
	if got := Resolve(); got.Version == "" || got.GoVersion == "" {
		t.Fatalf("unexpected info %+v", got)
	}
}

func TestShortCommit(t *testing.T) {
	t.Parallel()
	if got := shortCommit("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("shortCommit: got %q", got)
	}
	if got := shortCommit("abc"); got != "abc" {
		t.Fatalf("shortCommit: got %q", got)
	}
}
