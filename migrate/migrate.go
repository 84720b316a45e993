/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package migrate rewrites direct Serial output calls into the silent mode
// logger wrappers and adds the logger include where it is missing.
package migrate

import (
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	silentfs "bennypowers.dev/silentlog/fs"
	"bennypowers.dev/silentlog/internal/logger"
)

// Options holds the fixed parameters of a migration run.
type Options struct {
	// Pattern is the doublestar glob selecting source files.
	Pattern string

	// Marker is the include line that must be present in converted files.
	Marker string

	// Rules are applied in order to every file.
	Rules []Rule
}

// DefaultOptions returns the options used by the silentlog command.
func DefaultOptions() Options {
	return Options{
		Pattern: SourcePattern,
		Marker:  LoggerInclude,
		Rules:   DefaultRules(),
	}
}

// Result is the outcome of converting a single file.
type Result struct {
	Path    string
	Changed bool
}

// Summary aggregates the results of a run.
type Summary struct {
	Results   []Result
	Converted int
}

// Transform ensures the include marker and rewrites calls. Line endings are
// normalized to LF first; the returned flag is true when the output differs
// from the normalized content, so a CRLF file with nothing to migrate is
// reported unchanged and left as is on disk.
func Transform(content string, opts Options) (string, bool) {
	normalized := NormalizeNewlines(content)
	updated := EnsureInclude(normalized, opts.Marker)
	updated = RewriteCalls(updated, opts.Rules)
	return updated, updated != normalized
}

// Discover returns the regular files in fsys matching pattern, in walk order.
// The walk starts at the pattern's static prefix; a missing or unreadable
// directory is an error. Hidden files and directories are skipped.
// Symlinked files are resolved; symlinked directories are not descended.
func Discover(fsys fs.FS, pattern string) ([]string, error) {
	base := staticPrefix(pattern)

	var matches []string
	err := fs.WalkDir(fsys, base, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if p != base && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		mode := d.Type()
		if mode&fs.ModeSymlink != 0 {
			info, err := fs.Stat(fsys, p)
			if err != nil {
				return err
			}
			mode = info.Mode()
		}
		if !mode.IsRegular() {
			return nil
		}

		matched, err := doublestar.Match(pattern, p)
		if err != nil {
			return err
		}
		if matched {
			matches = append(matches, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering source files: %w", err)
	}

	return matches, nil
}

// staticPrefix returns the leading directories of pattern that contain no
// glob metacharacters.
func staticPrefix(pattern string) string {
	base := pattern
	for strings.ContainsAny(base, "*?[{") {
		base = path.Dir(base)
	}
	return base
}

// Migrator converts files on a filesystem and reports progress to out.
type Migrator struct {
	fs   silentfs.FileSystem
	out  io.Writer
	opts Options
}

// New creates a Migrator with the default options.
func New(filesystem silentfs.FileSystem, out io.Writer) *Migrator {
	return NewWithOptions(filesystem, out, DefaultOptions())
}

// NewWithOptions creates a Migrator with explicit options.
func NewWithOptions(filesystem silentfs.FileSystem, out io.Writer, opts Options) *Migrator {
	return &Migrator{fs: filesystem, out: out, opts: opts}
}

// ConvertFile migrates a single file, writing it back only when it changed.
func (m *Migrator) ConvertFile(p string) (Result, error) {
	data, err := m.fs.ReadFile(p)
	if err != nil {
		return Result{}, fmt.Errorf("reading %s: %w", p, err)
	}

	content := string(data)
	updated, changed := Transform(content, m.opts)
	if !changed {
		fmt.Fprintf(m.out, "No changes: %s\n", p)
		return Result{Path: p}, nil
	}

	info, err := m.fs.Stat(p)
	if err != nil {
		return Result{}, fmt.Errorf("stat %s: %w", p, err)
	}
	if err := m.fs.WriteFile(p, []byte(updated), info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("writing %s: %w", p, err)
	}

	fmt.Fprintf(m.out, "Converted: %s\n", p)
	if !strings.Contains(updated, m.opts.Marker) {
		logger.Warn("%s has no %s directives; logger header not inserted", p, IncludePrefix)
	}

	return Result{Path: p, Changed: true}, nil
}

// Run converts every file matching the configured pattern, stopping at the
// first error.
func (m *Migrator) Run() (Summary, error) {
	var summary Summary

	files, err := Discover(m.fs, m.opts.Pattern)
	if err != nil {
		return summary, err
	}
	if len(files) == 0 {
		logger.Info("no files match %s", m.opts.Pattern)
	}

	for _, p := range files {
		result, err := m.ConvertFile(p)
		if err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, result)
		if result.Changed {
			summary.Converted++
		}
	}

	fmt.Fprintf(m.out, "\nConversion complete! %d files converted.\n", summary.Converted)
	return summary, nil
}
