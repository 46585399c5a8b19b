// Package backlog persists the project's current scorable item set.
//
// The drift monitor re-verifies this set on every tick, so it has to
// live on disk rather than in a tool call's arguments. Items are kept
// as one JSON document under driftwatch/backlog.json.
package backlog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nvelasco/driftwatch/internal/config"
	"github.com/nvelasco/driftwatch/internal/scoring"
)

// ItemsFile is the backlog document under driftwatch/.
const ItemsFile = "backlog.json"

// Store defines persistence for the scorable item set.
type Store interface {
	Put(projectRoot string, items []scoring.Item) error
	Add(projectRoot string, items []scoring.Item) (int, error)
	List(projectRoot string) ([]scoring.Item, error)
	Remove(projectRoot, id string) error
}

// FileStore implements Store over a single JSON document.
type FileStore struct{}

// NewFileStore creates a filesystem-backed backlog store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// ItemsPath returns the absolute path to the backlog document.
func ItemsPath(projectRoot string) string {
	return filepath.Join(config.DriftPath(projectRoot), ItemsFile)
}

// Put replaces the entire item set.
func (fs *FileStore) Put(projectRoot string, items []scoring.Item) error {
	if err := validate(items); err != nil {
		return err
	}
	return write(projectRoot, items)
}

// Add appends items, replacing any existing item with the same ID.
// Returns the resulting set size.
func (fs *FileStore) Add(projectRoot string, items []scoring.Item) (int, error) {
	if err := validate(items); err != nil {
		return 0, err
	}

	existing, err := fs.List(projectRoot)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]int, len(existing))
	for i, it := range existing {
		byID[it.ID] = i
	}
	for _, it := range items {
		if i, ok := byID[it.ID]; ok {
			existing[i] = it
			continue
		}
		byID[it.ID] = len(existing)
		existing = append(existing, it)
	}

	if err := write(projectRoot, existing); err != nil {
		return 0, err
	}
	return len(existing), nil
}

// List returns the current item set. Empty slice (not an error) when
// no backlog document exists yet.
func (fs *FileStore) List(projectRoot string) ([]scoring.Item, error) {
	data, err := os.ReadFile(ItemsPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading backlog: %w", err)
	}

	var items []scoring.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing backlog: %w", err)
	}
	return items, nil
}

// Remove deletes one item by ID. Unknown IDs are an error so callers
// notice typos.
func (fs *FileStore) Remove(projectRoot, id string) error {
	items, err := fs.List(projectRoot)
	if err != nil {
		return err
	}

	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return fmt.Errorf("backlog item %q not found", id)
	}
	return write(projectRoot, kept)
}

func validate(items []scoring.Item) error {
	for i, it := range items {
		if it.ID == "" {
			return fmt.Errorf("item %d has no id", i)
		}
		if it.Title == "" {
			return fmt.Errorf("item %q has no title", it.ID)
		}
	}
	return nil
}

func write(projectRoot string, items []scoring.Item) error {
	dir := config.DriftPath(projectRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating driftwatch directory: %w", err)
	}

	if items == nil {
		items = []scoring.Item{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling backlog: %w", err)
	}
	return os.WriteFile(ItemsPath(projectRoot), data, 0o644)
}
