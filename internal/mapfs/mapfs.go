/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mapfs provides an in-memory filesystem implementation for testing.
package mapfs

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// MapFileSystem implements fs.FileSystem on top of fstest.MapFS.
// It records every write so tests can assert that untouched files
// were never rewritten.
type MapFileSystem struct {
	mu      sync.RWMutex
	mapFS   fstest.MapFS
	modTime time.Time
	writes  map[string]int

	// WriteErr, when set, is returned by WriteFile for the matching path.
	WriteErr map[string]error
}

// New creates an empty in-memory filesystem.
func New() *MapFileSystem {
	return &MapFileSystem{
		mapFS:    make(fstest.MapFS),
		modTime:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		writes:   make(map[string]int),
		WriteErr: make(map[string]error),
	}
}

// AddFile adds a file without counting it as a write.
func (mfs *MapFileSystem) AddFile(p string, content string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mapFS[cleanPath(p)] = &fstest.MapFile{
		Data:    []byte(content),
		Mode:    mode,
		ModTime: mfs.modTime,
	}
}

// AddDir adds an empty directory.
func (mfs *MapFileSystem) AddDir(p string, mode fs.FileMode) {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	mfs.mapFS[cleanPath(p)] = &fstest.MapFile{
		Mode:    fs.ModeDir | mode.Perm(),
		ModTime: mfs.modTime,
	}
}

// Open implements fs.FS.
func (mfs *MapFileSystem) Open(name string) (fs.File, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.mapFS.Open(cleanPath(name))
}

// ReadDir implements fs.ReadDirFS.
func (mfs *MapFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.ReadDir(mfs.mapFS, cleanPath(name))
}

// Stat implements fs.StatFS.
func (mfs *MapFileSystem) Stat(name string) (fs.FileInfo, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.Stat(mfs.mapFS, cleanPath(name))
}

// ReadFile returns a copy of the file contents.
func (mfs *MapFileSystem) ReadFile(name string) ([]byte, error) {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return fs.ReadFile(mfs.mapFS, cleanPath(name))
}

// WriteFile replaces the file contents and bumps its modification time.
func (mfs *MapFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	mfs.mu.Lock()
	defer mfs.mu.Unlock()

	name = cleanPath(name)
	if err := mfs.WriteErr[name]; err != nil {
		return &fs.PathError{Op: "write", Path: name, Err: err}
	}

	dir := path.Dir(name)
	if file, exists := mfs.mapFS[dir]; exists && !file.Mode.IsDir() {
		return &fs.PathError{Op: "open", Path: name, Err: fmt.Errorf("not a directory")}
	}

	mfs.writes[name]++
	mfs.mapFS[name] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: mfs.modTime.Add(time.Duration(mfs.writes[name]) * time.Second),
	}
	return nil
}

// Writes returns how many times name has been written through WriteFile.
func (mfs *MapFileSystem) Writes(name string) int {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	return mfs.writes[cleanPath(name)]
}

// Content returns the file contents as a string, or "" if it does not exist.
func (mfs *MapFileSystem) Content(name string) string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	if file, ok := mfs.mapFS[cleanPath(name)]; ok {
		return string(file.Data)
	}
	return ""
}

// ListFiles returns the sorted paths of all regular files, for debugging.
func (mfs *MapFileSystem) ListFiles() []string {
	mfs.mu.RLock()
	defer mfs.mu.RUnlock()

	var files []string
	for p, file := range mfs.mapFS {
		if !file.Mode.IsDir() {
			files = append(files, p)
		}
	}
	sort.Strings(files)
	return files
}

func cleanPath(p string) string {
	cleaned := path.Clean("/" + p)
	if cleaned == "/" {
		return "."
	}
	return strings.TrimPrefix(cleaned, "/")
}
