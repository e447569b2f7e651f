package session

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	want := []Session{sampleSession("s1", "one", false), sampleSession("s2", "two", true)}
	if err := store.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0].ID != "s1" || got[1].Title != "two" {
		t.Fatalf("round trip = %+v", got)
	}
	if got[0].ColumnDescriptions["c1"] != "All respondents chose CS." {
		t.Fatalf("descriptions lost in round trip: %+v", got[0].ColumnDescriptions)
	}
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	got, err := store.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("fresh store loaded %d sessions", len(got))
	}
}

func TestFileStoreArtifacts(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	if err := store.WriteArtifact("s1", []byte("a,b\n1,2\n")); err != nil {
		t.Fatalf("WriteArtifact: %v", err)
	}
	raw, err := store.ReadArtifact("s1")
	if err != nil || string(raw) != "a,b\n1,2\n" {
		t.Fatalf("ReadArtifact = %q, %v", raw, err)
	}
	if err := store.RemoveArtifact("s1"); err != nil {
		t.Fatalf("RemoveArtifact: %v", err)
	}
	if _, err := store.ReadArtifact("s1"); err == nil {
		t.Fatalf("artifact readable after removal")
	}
	// Removing twice stays quiet.
	if err := store.RemoveArtifact("s1"); err != nil {
		t.Fatalf("second RemoveArtifact: %v", err)
	}
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	if err := os.WriteFile(path, []byte(`[{"id":"s1","title":"baseline","is_public":true}]`), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	got, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "s1" || !got[0].IsPublic {
		t.Fatalf("seed = %+v", got)
	}

	if got, err := LoadSeed(filepath.Join(dir, "absent.json")); err != nil || len(got) != 0 {
		t.Fatalf("missing seed file: %v, %v", got, err)
	}
	if got, err := LoadSeed(""); err != nil || got != nil {
		t.Fatalf("empty path: %v, %v", got, err)
	}
}
