/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package migrate

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// LoggerInclude is the directive declaring the Serial_* wrappers.
const LoggerInclude = `#include "core/infrastructure/logger/logger.h"`

// IncludePrefix identifies include directive lines once leading whitespace is trimmed.
const IncludePrefix = "#include"

// SourcePattern selects the files to migrate, relative to the working directory.
const SourcePattern = "src/**/*.cpp"

// Rule maps a word-bounded literal call to its replacement token.
type Rule struct {
	Call        string
	Replacement string
}

// NewRule builds a Rule replacing call wherever it stands on word boundaries
// at both ends, so that longer identifiers are left alone.
func NewRule(call, replacement string) Rule {
	return Rule{Call: call, Replacement: replacement}
}

// DefaultRules returns the serial output rewrites, in application order.
func DefaultRules() []Rule {
	return []Rule{
		NewRule("Serial.print", "Serial_print"),
		NewRule("Serial.println", "Serial_println"),
		NewRule("Serial.printf", "Serial_printf"),
	}
}

// Apply replaces every word-bounded occurrence of the call in content.
// Word characters are Unicode letters, numbers and underscore, so
// identifiers such as Serial.printé or éSerial.print do not match.
func (r Rule) Apply(content string) string {
	if r.Call == "" {
		return content
	}

	var b strings.Builder
	pos := 0
	for {
		i := strings.Index(content[pos:], r.Call)
		if i == -1 {
			break
		}
		start := pos + i
		end := start + len(r.Call)
		if !isBoundary(content, start) || !isBoundary(content, end) {
			_, size := utf8.DecodeRuneInString(content[start:])
			b.WriteString(content[pos : start+size])
			pos = start + size
			continue
		}
		b.WriteString(content[pos:start])
		b.WriteString(r.Replacement)
		pos = end
	}
	if pos == 0 {
		return content
	}
	b.WriteString(content[pos:])
	return b.String()
}

// isBoundary reports whether offset i in s sits between a word character
// and a non-word character (or the start or end of s).
func isBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(content string) string {
	if !strings.ContainsRune(content, '\r') {
		return content
	}
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\r", "\n")
}

// EnsureInclude inserts marker on its own line directly after the last
// include directive. Content that already contains marker anywhere, or that
// has no include directive at all, is returned unchanged.
func EnsureInclude(content, marker string) string {
	if strings.Contains(content, marker) {
		return content
	}

	lines := strings.Split(content, "\n")
	last := lastIncludeLine(lines)
	if last == -1 {
		return content
	}

	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:last+1]...)
	out = append(out, marker)
	out = append(out, lines[last+1:]...)
	return strings.Join(out, "\n")
}

// HasInclude reports whether content has at least one include directive line.
func HasInclude(content string) bool {
	return lastIncludeLine(strings.Split(content, "\n")) != -1
}

func lastIncludeLine(lines []string) int {
	last := -1
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), IncludePrefix) {
			last = i
		}
	}
	return last
}

// RewriteCalls applies every rule globally, in order. Matching is purely
// textual, so calls inside string literals and comments are rewritten too.
func RewriteCalls(content string, rules []Rule) string {
	for _, r := range rules {
		content = r.Apply(content)
	}
	return content
}
