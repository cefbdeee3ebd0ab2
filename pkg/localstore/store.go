// Package localstore is a small persisted key/value store for UI
// preferences: column widths, theme and contrast. It plays the role browser
// local storage plays for the web viewer.
package localstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/catalogview/pkg/config"
	"github.com/vanderheijden86/catalogview/pkg/debug"
)

// FileName is the state file under config.StateDir().
const FileName = "state.json"

// Well-known keys.
const (
	KeyTheme        = "dashboard.theme.v1" // "dark" or "light"
	KeyHighContrast = "dashboard.hc.v1"    // "on" or "off"
	KeyLastHash     = "tui.hash.v1"        // view-state restored on the next start
)

// Store is the key/value contract used by the layout manager and the UI.
type Store interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Remove(key string) error
}

// File is a Store backed by one JSON object on disk. Every write rewrites
// the file through a temp file and rename.
type File struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// Open loads path, creating nothing until the first write. A missing or
// corrupt file yields an empty store.
func Open(path string) *File {
	f := &File{path: path, values: map[string]string{}}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		debug.Log("localstore: read %s: %v", path, err)
	default:
		if err := json.Unmarshal(data, &f.values); err != nil {
			debug.Log("localstore: ignoring corrupt %s: %v", path, err)
			f.values = map[string]string{}
		}
	}
	return f
}

// OpenDefault opens FileName under the XDG state directory, falling back to
// an in-memory store when no state directory can be determined.
func OpenDefault() Store {
	dir := config.StateDir()
	if dir == "" {
		return Memory()
	}
	return Open(filepath.Join(dir, FileName))
}

// Path returns the backing file.
func (f *File) Path() string { return f.path }

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *File) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if old, ok := f.values[key]; ok && old == value {
		return nil
	}
	f.values[key] = value
	return f.flush()
}

func (f *File) Remove(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.values[key]; !ok {
		return nil
	}
	delete(f.values, key)
	return f.flush()
}

// Keys returns the stored keys, sorted.
func (f *File) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (f *File) flush() error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("creating state directory: %w", err)
	}
	data, err := json.MarshalIndent(f.values, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("writing state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("writing state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing state: %w", err)
	}
	return nil
}

type memory struct {
	mu     sync.Mutex
	values map[string]string
}

// Memory returns an in-memory Store.
func Memory() Store {
	return &memory{values: map[string]string{}}
}

func (m *memory) Get(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memory) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}
