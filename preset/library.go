package preset

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Entry summarizes one preset in a library for listing UIs.
type Entry struct {
	ID       string
	Name     string
	Path     string
	Warnings []Warning
}

// Library holds the presets found in a directory. Loads happen off the
// render thread; the engine only ever consumes already-validated presets
// from it. A document that fails validation is skipped and logged, never
// applied.
type Library struct {
	mu      sync.RWMutex
	dir     string
	presets map[string]*Preset
	entries []Entry
}

// OpenLibrary scans dir for *.yaml / *.yml preset documents. A missing or
// empty directory yields a library containing only the built-in default.
func OpenLibrary(dir string) (*Library, error) {
	lib := &Library{dir: dir}
	if err := lib.Reload(); err != nil {
		return nil, err
	}
	return lib, nil
}

// Reload rescans the directory. The previous contents stay visible until
// the scan completes.
func (l *Library) Reload() error {
	presets := map[string]*Preset{"default": Default()}
	entries := []Entry{{ID: "default", Name: "Default"}}

	if l.dir != "" {
		names, err := os.ReadDir(l.dir)
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("scanning preset directory: %w", err)
		}
		for _, de := range names {
			if de.IsDir() {
				continue
			}
			ext := filepath.Ext(de.Name())
			if ext != ".yaml" && ext != ".yml" {
				continue
			}
			path := filepath.Join(l.dir, de.Name())
			p, warnings, err := LoadFile(path)
			if err != nil {
				slog.Warn("skipping unloadable preset", "path", path, "error", err)
				continue
			}
			for _, w := range warnings {
				slog.Warn("preset field clamped", "path", path, "field", w.Field, "detail", w.Message)
			}
			id := strings.TrimSuffix(de.Name(), ext)
			presets[id] = p
			entries = append(entries, Entry{ID: id, Name: p.Name, Path: path, Warnings: warnings})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	l.mu.Lock()
	l.presets = presets
	l.entries = entries
	l.mu.Unlock()
	return nil
}

// List returns the library contents in ID order.
func (l *Library) List() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get looks up a preset by ID.
func (l *Library) Get(id string) (*Preset, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	p, ok := l.presets[id]
	return p, ok
}
