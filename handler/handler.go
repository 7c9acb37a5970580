// Package handler implements the content handler: a 2-D view over an
// input text that lets the rule interpreter address positions by absolute
// offset or by (line, column), read windows of text, and find line
// boundaries — without either side needing to track a cursor itself.
package handler

import (
	"errors"
	"strings"

	"github.com/spf13/afero"
	tozderrors "gitlab.com/tozd/go/errors"
)

// ErrIncompatibleFileType is returned by FromPath when the file's extension
// is not among the caller-supplied accepted types.
var ErrIncompatibleFileType = errors.New("incompatible file type")

// Position is either an absolute offset or a (line, column) pair; both
// forms are interchangeable through the Handler that produced them.
type Position struct {
	Offset int
	Line   int
	Column int
}

// Handler holds the immutable input both as a flat string and as an
// ordered sequence of lines, each retaining its terminating newline so
// regexes anchored on line boundaries behave as TextMate expects.
type Handler struct {
	source string
	empty  bool
	lines  []string
	// lineStart[i] is the absolute offset of the first byte of lines[i].
	lineStart []int
}

// FromString builds a Handler over s, normalizing line endings to "\n"
// and appending a trailing "\n" if one is missing.
func FromString(s string) *Handler {
	h := newHandler(normalizeNewlines(s))
	h.empty = s == ""
	return h
}

// FromPath reads the file at path through fs, normalizes it the same way
// as FromString, and fails with ErrIncompatibleFileType if its extension
// is not in fileTypes (when fileTypes is non-empty).
func FromPath(fs afero.Fs, path string, fileTypes []string) (*Handler, error) {
	if len(fileTypes) > 0 && !hasAcceptedExtension(path, fileTypes) {
		return nil, tozderrors.Errorf("%s: expected one of %v: %w", path, fileTypes, ErrIncompatibleFileType)
	}
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, tozderrors.Errorf("reading source file: %w", err)
	}
	h := newHandler(normalizeNewlines(string(content)))
	h.empty = len(content) == 0
	return h, nil
}

// Empty reports whether the original input (before newline normalization,
// which always appends a trailing "\n") had zero length.
func (h *Handler) Empty() bool {
	return h.empty
}

func hasAcceptedExtension(path string, fileTypes []string) bool {
	ext := path
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		ext = path[i+1:]
	} else {
		ext = ""
	}
	for _, ft := range fileTypes {
		if strings.TrimPrefix(ft, ".") == ext {
			return true
		}
	}
	return false
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	if s == "" || s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

func newHandler(source string) *Handler {
	h := &Handler{source: source}
	start := 0
	for start < len(source) {
		nl := strings.IndexByte(source[start:], '\n')
		if nl < 0 {
			h.lines = append(h.lines, source[start:])
			h.lineStart = append(h.lineStart, start)
			break
		}
		h.lines = append(h.lines, source[start:start+nl+1])
		h.lineStart = append(h.lineStart, start)
		start += nl + 1
	}
	return h
}

// EndPos returns the absolute offset just past the end of the buffer.
func (h *Handler) EndPos() int {
	return len(h.source)
}

// LineCount returns the number of physical lines, each counted with its
// terminating newline.
func (h *Handler) LineCount() int {
	return len(h.lines)
}

// LineLength returns the byte length of line i, including its newline.
func (h *Handler) LineLength(i int) int {
	if i < 0 || i >= len(h.lines) {
		return 0
	}
	return len(h.lines[i])
}

// MaxLineLength returns the length of the longest line, used to size
// logger output (see tmlog.Configure).
func (h *Handler) MaxLineLength() int {
	max := 0
	for _, l := range h.lines {
		if len(l) > max {
			max = len(l)
		}
	}
	return max
}

// Read returns the substring [start, end) of the buffer, clamped to
// buffer bounds.
func (h *Handler) Read(start, end int) string {
	start = clamp(start, 0, len(h.source))
	end = clamp(end, 0, len(h.source))
	if end < start {
		end = start
	}
	return h.source[start:end]
}

// ReadlineFrom returns the physical line containing pos, from pos to the
// end of that line (inclusive of its newline).
func (h *Handler) ReadlineFrom(pos int) string {
	idx, _ := h.LineAt(pos)
	if idx < 0 || idx >= len(h.lines) {
		return ""
	}
	lineEnd := h.lineStart[idx] + len(h.lines[idx])
	return h.Read(pos, lineEnd)
}

// LineAt returns the line index and column of an absolute offset.
func (h *Handler) LineAt(pos int) (line, column int) {
	pos = clamp(pos, 0, len(h.source))
	// Binary search over lineStart for the last start <= pos.
	lo, hi := 0, len(h.lineStart)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if h.lineStart[mid] <= pos {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	if lo < 0 {
		lo = 0
	}
	return lo, pos - h.lineStart[lo]
}

// PositionAt builds a Position value from an absolute offset.
func (h *Handler) PositionAt(offset int) Position {
	line, col := h.LineAt(offset)
	return Position{Offset: offset, Line: line, Column: col}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
