package preset

import (
	"os"
	"path/filepath"
	"testing"
)

func writePreset(t *testing.T, dir, name, doc string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLibraryScan(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "ember.yaml", "name: Ember\nspawn_rate: 60\n")
	writePreset(t, dir, "frost.yml", "name: Frost\n")
	writePreset(t, dir, "notes.txt", "not a preset")

	lib, err := OpenLibrary(dir)
	if err != nil {
		t.Fatalf("OpenLibrary() error = %v", err)
	}

	entries := lib.List()
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3 (default + 2 files)", len(entries))
	}

	p, ok := lib.Get("ember")
	if !ok {
		t.Fatal("ember not found")
	}
	if p.SpawnRate != 60 {
		t.Errorf("ember spawn_rate = %v, want 60", p.SpawnRate)
	}
	if _, ok := lib.Get("frost"); !ok {
		t.Error("frost (.yml) not found")
	}
	if _, ok := lib.Get("notes"); ok {
		t.Error("non-yaml file was loaded as a preset")
	}
}

func TestLibrarySkipsBrokenPresets(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "good.yaml", "name: Good\n")
	writePreset(t, dir, "broken.yaml", "name: Broken\nshape: hexagon\n")

	lib, err := OpenLibrary(dir)
	if err != nil {
		t.Fatalf("OpenLibrary() error = %v", err)
	}
	if _, ok := lib.Get("broken"); ok {
		t.Error("broken preset should have been skipped")
	}
	if _, ok := lib.Get("good"); !ok {
		t.Error("good preset should survive a broken sibling")
	}
}

func TestLibraryMissingDir(t *testing.T) {
	lib, err := OpenLibrary(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Fatalf("OpenLibrary() error = %v", err)
	}
	if _, ok := lib.Get("default"); !ok {
		t.Error("built-in default missing from empty library")
	}
	if len(lib.List()) != 1 {
		t.Errorf("len = %d, want just the default", len(lib.List()))
	}
}

func TestLibraryReloadPicksUpNewFiles(t *testing.T) {
	dir := t.TempDir()
	lib, err := OpenLibrary(dir)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lib.Get("late"); ok {
		t.Fatal("late preset present before creation")
	}

	writePreset(t, dir, "late.yaml", "name: Late\n")
	if err := lib.Reload(); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, ok := lib.Get("late"); !ok {
		t.Error("late preset not found after reload")
	}
}
