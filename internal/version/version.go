/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package version provides build information for the silentlog CLI.
package version

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var (
	// Version information, set at build time via ldflags
	Version   = "dev"
	GitCommit = "unknown"
	GitTag    = "unknown"
	BuildTime = "unknown"
	GitDirty  = ""

	readBuildInfo = debug.ReadBuildInfo
)

// Get returns the version string, preferring ldflags, then module build
// info, then the git tag and commit.
func Get() string {
	if Version != "dev" {
		return Version
	}

	if info, ok := readBuildInfo(); ok {
		if info.Main.Version != "(devel)" && info.Main.Version != "" {
			return info.Main.Version
		}
	}

	if GitTag == "unknown" || GitCommit == "unknown" {
		return "dev"
	}

	v := GitTag
	short := GitCommit
	if len(short) > 7 {
		short = short[:7]
	}
	if short != "" && !strings.HasSuffix(GitTag, short) {
		v = fmt.Sprintf("%s-%s", GitTag, short)
	}
	if GitDirty == "dirty" {
		v += "-dirty"
	}
	return v
}

// Info returns build information keyed for JSON output.
func Info() map[string]string {
	return map[string]string{
		"version":   Get(),
		"gitCommit": GitCommit,
		"gitTag":    GitTag,
		"buildTime": BuildTime,
		"gitDirty":  GitDirty,
	}
}
