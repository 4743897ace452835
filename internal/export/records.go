// Package export persists crawled course trees: the canonical JSON
// record, tabular CSV projections, and a browsable markdown tree.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/coursehound/coursehound/pkg/course"
)

// WriteJSON marshals v with indentation and replaces path atomically,
// so readers never observe a torn file.
func WriteJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", filepath.Base(path), err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteRecord saves the canonical JSON record of a crawled tree.
func WriteRecord(path string, c *course.Course) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating record dir: %w", err)
	}
	return WriteJSON(path, c)
}

// ReadRecord loads a record written by WriteRecord.
func ReadRecord(path string) (*course.Course, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading record: %w", err)
	}
	var c course.Course
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	return &c, nil
}

// WriteSummary writes the aggregate counts of a tree next to its
// record.
func WriteSummary(path string, c *course.Course) error {
	return WriteJSON(path, course.CollectStats(c))
}
