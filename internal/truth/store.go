package truth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/nvelasco/driftwatch/internal/config"
)

const (
	// TruthDir is the subdirectory under driftwatch/ where truth
	// versions live.
	TruthDir = "truth"
	// CurrentFile mirrors the latest version for cheap loads.
	CurrentFile = "current.json"
)

// timeNow is a package-level variable for testability.
var timeNow = time.Now

// Store defines the persistence interface for project truth documents.
// Abstracted for testability (DIP).
type Store interface {
	Save(projectRoot string, data *Data) (*SaveResult, error)
	Load(projectRoot string) (*ProjectTruth, error)
	LoadVersion(projectRoot string, version int) (*ProjectTruth, error)
	History(projectRoot string) ([]ProjectTruth, error)
}

// FileStore implements Store using versioned JSON files on the local
// filesystem. It is single-writer/multiple-readers: Save holds a
// mutex and publishes each version with a temp-file rename, so a
// concurrent Load sees either the old or the new truth, fully, never
// a mix.
type FileStore struct {
	mu sync.Mutex
}

// NewFileStore creates a filesystem-backed truth store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// TruthPath returns the absolute path to the driftwatch/truth/ directory.
func TruthPath(projectRoot string) string {
	return filepath.Join(config.DriftPath(projectRoot), TruthDir)
}

// VersionPath returns the absolute path to a specific truth version file.
func VersionPath(projectRoot string, version int) string {
	return filepath.Join(TruthPath(projectRoot), fmt.Sprintf("truth-v%d.json", version))
}

// CurrentPath returns the absolute path to the current.json mirror.
func CurrentPath(projectRoot string) string {
	return filepath.Join(TruthPath(projectRoot), CurrentFile)
}

// Save validates the data, assigns the next version, and persists it.
// Prior version files are never touched. Returns the new version,
// its path, and any non-fatal quality warnings.
func (fs *FileStore) Save(projectRoot string, data *Data) (*SaveResult, error) {
	warnings, err := data.Validate()
	if err != nil {
		return nil, err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	dir := TruthPath(projectRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating truth directory: %w", err)
	}

	next := fs.latestVersionLocked(projectRoot) + 1

	doc := &ProjectTruth{
		WhatWereBuilding: data.WhatWereBuilding,
		Industry:         data.Industry,
		TargetUsers:      data.TargetUsers,
		NotThis:          compact(data.NotThis),
		Competitors:      data.Competitors,
		DomainTerms:      data.DomainTerms,
		LastVerified:     timeNow().UTC().Format(time.RFC3339),
		Version:          next,
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling truth: %w", err)
	}

	versionPath := VersionPath(projectRoot, next)
	if err := writeAtomic(versionPath, payload); err != nil {
		return nil, fmt.Errorf("writing truth v%d: %w", next, err)
	}
	if err := writeAtomic(CurrentPath(projectRoot), payload); err != nil {
		return nil, fmt.Errorf("updating current truth: %w", err)
	}

	return &SaveResult{Version: next, Path: versionPath, Warnings: warnings}, nil
}

// Load returns the latest truth, or ErrNoTruth when none exists.
func (fs *FileStore) Load(projectRoot string) (*ProjectTruth, error) {
	data, err := os.ReadFile(CurrentPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoTruth
		}
		return nil, fmt.Errorf("reading current truth: %w", err)
	}

	var doc ProjectTruth
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing current truth: %w", err)
	}
	return &doc, nil
}

// LoadVersion returns a specific truth version, or ErrNoTruth when
// that version was never written.
func (fs *FileStore) LoadVersion(projectRoot string, version int) (*ProjectTruth, error) {
	data, err := os.ReadFile(VersionPath(projectRoot, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoTruth
		}
		return nil, fmt.Errorf("reading truth v%d: %w", version, err)
	}

	var doc ProjectTruth
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing truth v%d: %w", version, err)
	}
	return &doc, nil
}

// History returns all persisted truth versions in ascending version
// order. An empty slice (not an error) when no truth exists yet.
func (fs *FileStore) History(projectRoot string) ([]ProjectTruth, error) {
	entries, err := os.ReadDir(TruthPath(projectRoot))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading truth directory: %w", err)
	}

	var result []ProjectTruth
	for _, entry := range entries {
		if entry.IsDir() || parseVersion(entry.Name()) == 0 {
			continue
		}
		data, err := os.ReadFile(filepath.Join(TruthPath(projectRoot), entry.Name()))
		if err != nil {
			continue // skip unreadable versions
		}
		var doc ProjectTruth
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		result = append(result, doc)
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

// latestVersionLocked scans the truth directory for the highest
// version number. Caller must hold fs.mu.
func (fs *FileStore) latestVersionLocked(projectRoot string) int {
	entries, err := os.ReadDir(TruthPath(projectRoot))
	if err != nil {
		return 0
	}

	latest := 0
	for _, entry := range entries {
		if v := parseVersion(entry.Name()); v > latest {
			latest = v
		}
	}
	return latest
}

// parseVersion extracts N from "truth-vN.json", returning 0 for
// anything else.
func parseVersion(name string) int {
	if !strings.HasPrefix(name, "truth-v") || !strings.HasSuffix(name, ".json") {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "truth-v"), ".json"))
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// writeAtomic writes via a temp file and rename so readers never see
// a partial document.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// compact drops empty strings from a boundary list.
func compact(in []string) []string {
	var out []string
	for _, s := range in {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}
