package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

const fileFormatVersion = 1

type fileDocument struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// File is a Store backed by one JSON document. A missing file is an empty store. The
// document is rewritten atomically (temp file + rename) with 0600 permissions since it
// holds bearer credentials.
//
// Every Get re-reads the file, so a second process sharing the path observes writes
// (including a logout) immediately.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile returns a File store at path. The parent directory is created on first write.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultFilePath returns ~/.config/goowner/session.json, or the OS equivalent.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "goowner", "session.json"), nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return "", false, err
	}
	v, ok := doc.Values[key]
	return v, ok, nil
}

// Set implements Store.
func (f *File) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil && !errors.Is(err, ErrCorrupt) {
		return err
	}
	doc.Values[key] = value
	return f.save(doc)
}

// Delete implements Store.
func (f *File) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			// A corrupt document cannot hold a usable value; start over.
			return f.save(fileDocument{Version: fileFormatVersion, Values: map[string]string{}})
		}
		return err
	}
	if _, ok := doc.Values[key]; !ok {
		return nil
	}
	delete(doc.Values, key)
	return f.save(doc)
}

// CompareAndDelete implements CompareDeleter under the store's mutex.
func (f *File) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.load()
	if err != nil {
		return false, err
	}
	if v, ok := doc.Values[key]; !ok || v != expected {
		return false, nil
	}
	delete(doc.Values, key)
	if err := f.save(doc); err != nil {
		return false, err
	}
	return true, nil
}

// load returns an empty document alongside ErrCorrupt so writers can recover.
func (f *File) load() (fileDocument, error) {
	empty := fileDocument{Version: fileFormatVersion, Values: map[string]string{}}

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return empty, nil
		}
		return empty, fmt.Errorf("%w: read %s: %v", ErrUnavailable, f.path, err)
	}
	if len(data) == 0 {
		return empty, nil
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return empty, fmt.Errorf("%w: %s: %v", ErrCorrupt, f.path, err)
	}
	if doc.Version != fileFormatVersion {
		return empty, fmt.Errorf("%w: %s: unsupported version %d", ErrCorrupt, f.path, doc.Version)
	}
	if doc.Values == nil {
		doc.Values = map[string]string{}
	}
	return doc, nil
}

func (f *File) save(doc fileDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("%w: mkdir %s: %v", ErrUnavailable, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".session-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
