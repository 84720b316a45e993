/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package fs provides the filesystem abstraction silentlog migrates through.
package fs

import (
	"io/fs"
	"os"
)

// FileSystem is the set of operations a migration needs. It embeds the
// io/fs interfaces used by fs.WalkDir so discovery and conversion share
// one implementation. Paths are slash-separated and relative to the
// working directory.
type FileSystem interface {
	fs.FS
	fs.ReadDirFS
	fs.StatFS

	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
}

// OSFileSystem implements FileSystem on the real filesystem.
type OSFileSystem struct{}

// NewOSFileSystem creates a filesystem backed by the os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Open opens the named file for reading.
func (f *OSFileSystem) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadDir reads the named directory, sorted by filename.
func (f *OSFileSystem) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(name)
}

// Stat returns file information for the named file.
func (f *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the entire contents of a file.
func (f *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// WriteFile truncates and rewrites name with data.
func (f *OSFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(name, data, perm)
}
