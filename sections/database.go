// Package sections implements the persisted section-name database and
// matcher (C6) and the reading-order section assembler (C7).
package sections

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tsawler/resumecore/errs"
	"github.com/tsawler/resumecore/model"
)

// DefaultPath mirrors SECTION_DB_PATH's default.
const DefaultPath = "config/sections_database.json"

// schemaVersion is bumped whenever the on-disk shape changes in a way
// that is not purely additive.
const schemaVersion = 1

// Learning tracks counters surfaced in diagnostics and persisted
// alongside the database for operational visibility.
type Learning struct {
	NewSectionsDiscovered int `json:"new_sections_discovered"`
	FalsePositives        int `json:"false_positives"`
}

// onDiskEntry is the persisted shape of one SectionDatabaseEntry. Variants
// is stored as a sorted slice for deterministic diffs.
type onDiskEntry struct {
	Variants          []string  `json:"variants"`
	EmbeddingCentroid []float64 `json:"embedding_centroid,omitempty"`
	UsageCount        int       `json:"usage_count"`
}

type onDiskDatabase struct {
	Version  int                    `json:"version"`
	Sections map[string]onDiskEntry `json:"sections"`
	Learning Learning               `json:"learning"`

	// unknown holds keys this build doesn't recognize, preserved
	// verbatim across a rewrite per the forward-compatibility rule.
	unknown map[string]json.RawMessage
}

// Database is the in-memory, process-lifetime section name database.
// Readers snapshot it at parse start; writers hold mu for the duration
// of a buffered commit (§4.6, §5).
type Database struct {
	mu       sync.Mutex
	path     string
	entries  map[model.CanonicalName]*model.SectionDatabaseEntry
	learning Learning
	unknown  map[string]json.RawMessage
}

// New returns an empty database seeded with one entry per canonical
// name, ready to Load from disk.
func New(path string) *Database {
	if path == "" {
		path = DefaultPath
	}
	db := &Database{path: path, entries: map[model.CanonicalName]*model.SectionDatabaseEntry{}}
	for _, name := range model.CanonicalNames {
		entry := model.NewSectionDatabaseEntry(name)
		if normalized := Normalize(string(name)); normalized != "" {
			entry.Variants[normalized] = struct{}{}
		}
		db.entries[name] = entry
	}
	return db
}

// Load reads the database from stable storage. A missing file is not
// an error; the database starts from the seed defaults.
func (db *Database) Load() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	data, err := os.ReadFile(db.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: reading section database: %v", errs.DatabaseWriteFailed, err)
	}

	if err := validateAgainstSchema(data); err != nil {
		return fmt.Errorf("%w: %v", errs.DatabaseWriteFailed, err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: parsing section database: %v", errs.DatabaseWriteFailed, err)
	}

	var disk onDiskDatabase
	if v, ok := raw["version"]; ok {
		_ = json.Unmarshal(v, &disk.Version)
	}
	if s, ok := raw["sections"]; ok {
		_ = json.Unmarshal(s, &disk.Sections)
	}
	if l, ok := raw["learning"]; ok {
		_ = json.Unmarshal(l, &disk.Learning)
	}

	db.unknown = map[string]json.RawMessage{}
	for k, v := range raw {
		switch k {
		case "version", "sections", "learning":
		default:
			db.unknown[k] = v
		}
	}

	for nameStr, entry := range disk.Sections {
		name := model.CanonicalName(nameStr)
		e, ok := db.entries[name]
		if !ok {
			e = model.NewSectionDatabaseEntry(name)
			db.entries[name] = e
		}
		for _, v := range entry.Variants {
			e.Variants[v] = struct{}{}
		}
		e.EmbeddingCentroid = entry.EmbeddingCentroid
		e.UsageCount = entry.UsageCount
	}
	db.learning = disk.Learning
	return nil
}

// Snapshot returns a deep copy of the current entries, safe for a
// single parse to read without further locking.
func (db *Database) Snapshot() map[model.CanonicalName]*model.SectionDatabaseEntry {
	db.mu.Lock()
	defer db.mu.Unlock()

	out := make(map[model.CanonicalName]*model.SectionDatabaseEntry, len(db.entries))
	for name, e := range db.entries {
		copyEntry := model.NewSectionDatabaseEntry(name)
		for v := range e.Variants {
			copyEntry.Variants[v] = struct{}{}
		}
		copyEntry.EmbeddingCentroid = append([]float64(nil), e.EmbeddingCentroid...)
		copyEntry.UsageCount = e.UsageCount
		out[name] = copyEntry
	}
	return out
}

// Commit merges a parse's buffered mutations back into the live
// database and flushes it atomically to disk. A write failure leaves
// the in-memory database intact for the current process, per §4.6.
func (db *Database) Commit(updates map[model.CanonicalName]*model.SectionDatabaseEntry, learned, falsePositives int) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for name, e := range updates {
		target, ok := db.entries[name]
		if !ok {
			target = model.NewSectionDatabaseEntry(name)
			db.entries[name] = target
		}
		for v := range e.Variants {
			target.Variants[v] = struct{}{}
		}
		if len(e.EmbeddingCentroid) > 0 {
			target.EmbeddingCentroid = e.EmbeddingCentroid
		}
		target.UsageCount = e.UsageCount
	}
	db.learning.NewSectionsDiscovered += learned
	db.learning.FalsePositives += falsePositives

	return db.flushLocked()
}

func (db *Database) flushLocked() error {
	disk := onDiskDatabase{Version: schemaVersion, Sections: map[string]onDiskEntry{}, Learning: db.learning}
	for name, e := range db.entries {
		variants := make([]string, 0, len(e.Variants))
		for v := range e.Variants {
			variants = append(variants, v)
		}
		disk.Sections[string(name)] = onDiskEntry{
			Variants:          variants,
			EmbeddingCentroid: e.EmbeddingCentroid,
			UsageCount:        e.UsageCount,
		}
	}

	merged := map[string]interface{}{
		"version":  disk.Version,
		"sections": disk.Sections,
		"learning": disk.Learning,
	}
	for k, v := range db.unknown {
		merged[k] = v
	}

	data, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encoding section database: %v", errs.DatabaseWriteFailed, err)
	}

	if dir := filepath.Dir(db.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: creating section database dir: %v", errs.DatabaseWriteFailed, err)
		}
	}

	tmp := db.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing section database temp file: %v", errs.DatabaseWriteFailed, err)
	}
	if err := os.Rename(tmp, db.path); err != nil {
		return fmt.Errorf("%w: committing section database: %v", errs.DatabaseWriteFailed, err)
	}
	return nil
}
