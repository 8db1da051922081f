package crawl

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Checkpoint marks the last fully processed user in a ranking crawl. It is
// written after every completed user so an aborted run can resume without
// reprocessing already-ingested users.
type Checkpoint struct {
	Year      int `yaml:"year"`
	Page      int `yaml:"page"`
	BookIndex int `yaml:"book_index"`
	UserIndex int `yaml:"user_index"`
}

// LoadCheckpoint reads the checkpoint file. A missing file means a fresh
// crawl and returns nil without error.
func LoadCheckpoint(path string) (*Checkpoint, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint %s: %w", path, err)
	}

	var cp Checkpoint
	if err := yaml.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint %s: %w", path, err)
	}
	return &cp, nil
}

// SaveCheckpoint writes the checkpoint atomically so a crash mid-write never
// leaves a truncated file behind.
func SaveCheckpoint(path string, cp Checkpoint) error {
	data, err := yaml.Marshal(cp)
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "checkpoint-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp checkpoint: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close checkpoint: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace checkpoint: %w", err)
	}
	return nil
}

// At reports whether the given walk position is exactly this checkpoint.
func (c *Checkpoint) At(year, page, bookIndex, userIndex int) bool {
	if c == nil {
		return false
	}
	return c.Year == year && c.Page == page && c.BookIndex == bookIndex && c.UserIndex == userIndex
}

// Covers reports whether the given walk position was already processed by
// the run that wrote this checkpoint. Years are walked in descending order,
// pages, books and users in ascending order.
func (c *Checkpoint) Covers(year, page, bookIndex, userIndex int) bool {
	if c == nil {
		return false
	}
	if year != c.Year {
		return year > c.Year
	}
	if page != c.Page {
		return page < c.Page
	}
	if bookIndex != c.BookIndex {
		return bookIndex < c.BookIndex
	}
	return userIndex < c.UserIndex
}
