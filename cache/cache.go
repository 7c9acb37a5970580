// Package cache implements the parse cache: a per-file record of a prior
// parse result, valid only as long as the source file's mtime and size
// haven't changed since it was written.
package cache

import (
	"bytes"
	"encoding/gob"
	"os"
	"time"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/element"
)

// Store is whatever a Parser consults before re-parsing a file from
// scratch. Valid is called on every ParseFile, before any Load.
type Store interface {
	Valid(path string) bool
	Load(path string) (*element.Element, error)
	Save(path string, root *element.Element) error
}

// record is the on-disk (gob-encoded) cache entry.
type record struct {
	ModTime time.Time
	Size    int64
	Root    *element.Element
}

// FileStore is a Store backed by one cache file per source path, written
// alongside it with a fixed suffix.
type FileStore struct {
	Fs     afero.Fs
	Suffix string
}

// NewFileStore builds a FileStore over fs, caching each "foo.ext" parse
// next to it as "foo.ext<suffix>". suffix defaults to ".tmcache" when
// empty.
func NewFileStore(fs afero.Fs, suffix string) *FileStore {
	if suffix == "" {
		suffix = ".tmcache"
	}
	return &FileStore{Fs: fs, Suffix: suffix}
}

func (s *FileStore) cachePath(path string) string {
	return path + s.Suffix
}

// Valid reports whether path has a cache entry whose recorded mtime and
// size still match the file on disk. It reads and decodes the whole cache
// entry, element tree included, to get at the recorded mtime and size.
func (s *FileStore) Valid(path string) bool {
	srcInfo, err := s.Fs.Stat(path)
	if err != nil {
		return false
	}
	f, err := s.Fs.Open(s.cachePath(path))
	if err != nil {
		return false
	}
	defer f.Close()

	var rec record
	if err := gob.NewDecoder(f).Decode(&rec); err != nil {
		return false
	}
	return rec.ModTime.Equal(srcInfo.ModTime()) && rec.Size == srcInfo.Size()
}

// Load decodes the cached element tree for path. Callers should check
// Valid first; Load does not re-check staleness.
func (s *FileStore) Load(path string) (*element.Element, error) {
	f, err := s.Fs.Open(s.cachePath(path))
	if err != nil {
		return nil, errors.Errorf("opening cache entry for %s: %w", path, err)
	}
	defer f.Close()

	var rec record
	if err := gob.NewDecoder(f).Decode(&rec); err != nil {
		return nil, errors.Errorf("decoding cache entry for %s: %w", path, err)
	}
	return rec.Root, nil
}

// Save writes root as path's cache entry, stamped with path's current
// mtime and size so a later Valid call can detect the source changing
// underneath it.
func (s *FileStore) Save(path string, root *element.Element) error {
	info, err := s.Fs.Stat(path)
	if err != nil {
		return errors.Errorf("stat %s: %w", path, err)
	}

	var buf bytes.Buffer
	rec := record{ModTime: info.ModTime(), Size: info.Size(), Root: root}
	if err := gob.NewEncoder(&buf).Encode(rec); err != nil {
		return errors.Errorf("encoding cache entry for %s: %w", path, err)
	}
	return afero.WriteFile(s.Fs, s.cachePath(path), buf.Bytes(), os.FileMode(0o644))
}
