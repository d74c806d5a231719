package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Record is the persisted outcome of a single action.
type Record struct {
	Name    string  `json:"name"`
	Outcome Outcome `json:"state"`
}

// document is the on-disk layout of the state file.
type document struct {
	Actions []Record `json:"actions"`
}

// FileStore keeps action outcomes in a JSON document on disk.
//
// Every Set is followed by a full rewrite of the document through a
// temporary file and a rename, so a process killed at any point leaves
// either the previous or the new document, never a torn one.
type FileStore struct {
	path string

	mu      sync.RWMutex
	records []Record
	index   map[string]int
}

// Open loads the store at path. A missing file yields an empty store; the
// file is only created by the first Set or Save.
func Open(path string) (*FileStore, error) {
	s := &FileStore{
		path:  path,
		index: make(map[string]int),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", path, err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}

	for _, rec := range doc.Actions {
		s.put(rec.Name, rec.Outcome)
	}

	return s, nil
}

// Path returns the location of the state file.
func (s *FileStore) Path() string {
	return s.path
}

// Outcome returns the recorded outcome for name, or OutcomeNotRecorded.
func (s *FileStore) Outcome(name string) Outcome {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[name]; ok {
		return s.records[i].Outcome
	}
	return OutcomeNotRecorded
}

// Records returns a copy of all records in first-recorded order.
func (s *FileStore) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Set records the outcome for name and writes the document to disk.
func (s *FileStore) Set(name string, outcome Outcome) error {
	if outcome == OutcomeNotRecorded {
		return fmt.Errorf("cannot record %q without an outcome", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(name, outcome)
	return s.save()
}

// Save writes the document to disk.
func (s *FileStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save()
}

// Remove deletes the state file. A missing file is not an error.
func (s *FileStore) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove state file %s: %w", s.path, err)
	}
	s.records = nil
	s.index = make(map[string]int)
	return nil
}

// put inserts or replaces a record; later writes win.
func (s *FileStore) put(name string, outcome Outcome) {
	if i, ok := s.index[name]; ok {
		s.records[i].Outcome = outcome
		return
	}
	s.index[name] = len(s.records)
	s.records = append(s.records, Record{Name: name, Outcome: outcome})
}

// save writes the document atomically. Callers hold s.mu.
func (s *FileStore) save() error {
	doc := document{Actions: s.records}
	if doc.Actions == nil {
		doc.Actions = []Record{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace state file %s: %w", s.path, err)
	}

	return nil
}
