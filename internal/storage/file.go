package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/claude/fitlife/internal/codec"
)

// Document is the on-disk layout of the file backend: one JSON object with
// an array per collection.
type Document struct {
	Users    []codec.Record `json:"users"`
	Workouts []codec.Record `json:"workouts"`
	Meals    []codec.Record `json:"meals"`
	Habits   []codec.Record `json:"habits"`
}

func (d *Document) collection(k Kind) *[]codec.Record {
	switch k {
	case KindUsers:
		return &d.Users
	case KindWorkouts:
		return &d.Workouts
	case KindMeals:
		return &d.Meals
	default:
		return &d.Habits
	}
}

// Get returns the records of one collection.
func (d *Document) Get(k Kind) []codec.Record {
	return *d.collection(k)
}

// ParseDocument decodes a JSON document. Numbers are kept as json.Number so
// integer fields survive without float rounding.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(doc); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}

// FileBackend keeps every collection in a single JSON document. Writes go to
// a temporary file that is renamed over the original.
type FileBackend struct {
	mu   sync.Mutex
	path string
}

// OpenFile opens the document at path, creating its directory if needed.
// A missing document is treated as empty.
func OpenFile(path string) (*FileBackend, error) {
	if path == "" {
		return nil, errors.New("file store: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}
	fb := &FileBackend{path: path}
	if _, err := fb.read(); err != nil {
		return nil, err
	}
	return fb, nil
}

func (fb *FileBackend) read() (*Document, error) {
	data, err := os.ReadFile(fb.path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", fb.path, err)
	}
	return ParseDocument(data)
}

func (fb *FileBackend) LoadAll(_ context.Context, kind Kind) ([]codec.Record, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	doc, err := fb.read()
	if err != nil {
		return nil, err
	}
	records := doc.Get(kind)
	if records == nil {
		records = []codec.Record{}
	}
	return records, nil
}

func (fb *FileBackend) SaveAll(_ context.Context, kind Kind, records []codec.Record) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	fb.mu.Lock()
	defer fb.mu.Unlock()

	doc, err := fb.read()
	if err != nil {
		return err
	}
	if records == nil {
		records = []codec.Record{}
	}
	*doc.collection(kind) = records
	return fb.write(doc)
}

func (fb *FileBackend) write(doc *Document) error {
	for _, k := range Kinds {
		if *doc.collection(k) == nil {
			*doc.collection(k) = []codec.Record{}
		}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fb.path), ".fitlife-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), fb.path); err != nil {
		return fmt.Errorf("replacing %s: %w", fb.path, err)
	}
	return nil
}

func (fb *FileBackend) Close() error { return nil }
