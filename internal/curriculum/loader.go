package curriculum

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Loader loads and caches course blueprints from the filesystem.
type Loader struct {
	rootDir    string
	blueprints map[string]Blueprint
	mu         sync.RWMutex
}

// NewLoader creates a blueprint loader and loads every blueprint under rootDir.
func NewLoader(rootDir string) (*Loader, error) {
	l := &Loader{
		rootDir:    rootDir,
		blueprints: make(map[string]Blueprint),
	}

	if err := l.Reload(); err != nil {
		return nil, fmt.Errorf("loading blueprints: %w", err)
	}

	slog.Info("blueprints loaded", "dir", rootDir, "blueprints", len(l.blueprints))
	return l, nil
}

// Get returns a blueprint by slug.
func (l *Loader) Get(slug string) (Blueprint, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	b, ok := l.blueprints[slug]
	return b, ok
}

// All returns all loaded blueprints ordered by slug.
func (l *Loader) All() []Blueprint {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Blueprint, 0, len(l.blueprints))
	for _, b := range l.blueprints {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Blueprint) int { return strings.Compare(a.Slug, b.Slug) })
	return out
}

// Reload re-reads rootDir, replacing the loaded set.
func (l *Loader) Reload() error {
	found := make(map[string]Blueprint)

	err := filepath.Walk(l.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if !strings.HasSuffix(path, ".yaml") && !strings.HasSuffix(path, ".yml") {
			return nil
		}

		b, ok, err := loadBlueprint(path)
		if err != nil {
			return err
		}
		if ok {
			found[b.Slug] = b
		}
		return nil
	})
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.blueprints = found
	l.mu.Unlock()
	return nil
}

// LoadBlueprint reads a single blueprint file.
func LoadBlueprint(path string) (Blueprint, error) {
	b, ok, err := loadBlueprint(path)
	if err != nil {
		return Blueprint{}, err
	}
	if !ok {
		return Blueprint{}, fmt.Errorf("%s: not a course blueprint", path)
	}
	return b, nil
}

func loadBlueprint(path string) (Blueprint, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Blueprint{}, false, err
	}

	var b Blueprint
	if err := yaml.Unmarshal(data, &b); err != nil {
		slog.Warn("skipping invalid blueprint YAML", "path", path, "error", err)
		return Blueprint{}, false, nil
	}

	if b.Title == "" {
		return Blueprint{}, false, nil // Not a blueprint file
	}
	if b.Slug == "" {
		b.Slug = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return b, true, nil
}
