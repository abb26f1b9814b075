package clonelist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const sampleList = `{
  "variants": [
    {
      "group": "Biohazard",
      "titles": [
        {"searchTerm": "Resident Evil (USA)"},
        {"searchTerm": "Biohazard (Japan)"}
      ]
    },
    {
      "group": "Puzzle Pack",
      "titles": ["Puzzle Collection (Europe)"]
    }
  ]
}`

func TestParse(t *testing.T) {
	l, err := Parse([]byte(sampleList))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 overrides, got %d", l.Len())
	}

	// Tags in the search term are stripped, so any variant of the title
	// resolves to the same group.
	overrides := l.Overrides()
	if got := overrides["Resident Evil"]; got != "Biohazard" {
		t.Fatalf("Resident Evil -> %q, want Biohazard", got)
	}
	if got := overrides["Biohazard"]; got != "Biohazard" {
		t.Fatalf("Biohazard -> %q, want Biohazard", got)
	}
	if got := overrides["Puzzle Collection"]; got != "Puzzle Pack" {
		t.Fatalf("Puzzle Collection -> %q, want Puzzle Pack", got)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	if _, err := Parse([]byte("not json")); err == nil {
		t.Fatal("expected error for invalid JSON")
	}
	if _, err := Parse([]byte(`{"foo": 1}`)); err == nil {
		t.Fatal("expected error for missing variants array")
	}
}

func TestLoadDirMergesFiles(t *testing.T) {
	dir := t.TempDir()
	docs := map[string]string{
		"a.json": `{"variants": [{"group": "One", "titles": [{"searchTerm": "Alpha"}]}]}`,
		"b.json": `{"variants": [{"group": "Two", "titles": [{"searchTerm": "Beta"}]}]}`,
	}
	for name, doc := range docs {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	l, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.Len() != 2 {
		t.Fatalf("expected 2 overrides, got %d", l.Len())
	}
}

func TestLoadDirMissing(t *testing.T) {
	l, err := LoadDir(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if l.Len() != 0 {
		t.Fatalf("expected empty list, got %d overrides", l.Len())
	}
}

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleList))
	}))
	defer srv.Close()

	l, err := Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if l.Len() != 3 {
		t.Fatalf("expected 3 overrides, got %d", l.Len())
	}
}
