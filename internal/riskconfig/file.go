package riskconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Persister stores the whole configuration document atomically
type Persister interface {
	// Load returns an error wrapping os.ErrNotExist when nothing was saved yet
	// and ErrCorrupt when the stored document cannot be decoded.
	Load() (Document, error)
	Save(Document) error
}

// FilePersister keeps the document in one JSON or YAML file, chosen by extension
type FilePersister struct {
	Path string
}

func NewFilePersister(path string) *FilePersister {
	return &FilePersister{Path: path}
}

func (f *FilePersister) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(f.Path))
	return ext == ".yaml" || ext == ".yml"
}

func (f *FilePersister) Load() (Document, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return Document{}, fmt.Errorf("read risk config: %w", err)
	}

	var doc Document
	if f.isYAML() {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.Path, err)
	}
	return doc, nil
}

// Save writes to a temporary file in the same directory and renames it over
// the target, so a crash never leaves a partial document behind.
func (f *FilePersister) Save(doc Document) error {
	var (
		data []byte
		err  error
	)
	if f.isYAML() {
		data, err = yaml.Marshal(doc)
	} else {
		data, err = json.MarshalIndent(doc, "", "    ")
	}
	if err != nil {
		return fmt.Errorf("marshal risk config: %w", err)
	}

	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		return fmt.Errorf("replace risk config: %w", err)
	}
	return nil
}

// Quarantine moves an undecodable document aside so it is not overwritten
func (f *FilePersister) Quarantine() (string, error) {
	dst := f.Path + ".corrupt"
	if err := os.Rename(f.Path, dst); err != nil {
		return "", err
	}
	return dst, nil
}

// MemoryPersister keeps the document in memory. Saves never reach disk.
type MemoryPersister struct {
	mu    sync.Mutex
	doc   *Document
	saves int
}

// NewMemoryPersister starts from doc, or from nothing when doc is nil
func NewMemoryPersister(doc *Document) *MemoryPersister {
	m := &MemoryPersister{}
	if doc != nil {
		c := doc.Clone()
		m.doc = &c
	}
	return m
}

func (m *MemoryPersister) Load() (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.doc == nil {
		return Document{}, os.ErrNotExist
	}
	return m.doc.Clone(), nil
}

func (m *MemoryPersister) Save(doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := doc.Clone()
	m.doc = &c
	m.saves++
	return nil
}

// Saves counts successful Save calls
func (m *MemoryPersister) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
