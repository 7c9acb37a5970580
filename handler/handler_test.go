package handler

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStringAppendsTrailingNewline(t *testing.T) {
	h := FromString("abc")
	assert.Equal(t, "abc\n", h.Read(0, h.EndPos()))
}

func TestFromStringNormalizesNewlines(t *testing.T) {
	h := FromString("a\r\nb\rc\n")
	assert.Equal(t, "a\nb\nc\n", h.Read(0, h.EndPos()))
}

func TestFromStringEmptyIsEmpty(t *testing.T) {
	h := FromString("")
	assert.True(t, h.Empty())
	assert.Equal(t, "\n", h.Read(0, h.EndPos()))
}

func TestFromStringNewlineIsNotEmpty(t *testing.T) {
	h := FromString("\n")
	assert.False(t, h.Empty())
}

func TestFromPathEmptyFileIsEmpty(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "empty.txt", []byte(""), 0o644))

	h, err := FromPath(fs, "empty.txt", nil)
	require.NoError(t, err)
	assert.True(t, h.Empty())
}

func TestLineAt(t *testing.T) {
	h := FromString("abc\ndef\n")
	line, col := h.LineAt(0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	line, col = h.LineAt(5)
	assert.Equal(t, 1, line)
	assert.Equal(t, 1, col)
}

func TestReadClampsToBuffer(t *testing.T) {
	h := FromString("abc")
	assert.Equal(t, "abc\n", h.Read(-5, 100))
}

func TestReadlineFrom(t *testing.T) {
	h := FromString("abc\ndef\n")
	assert.Equal(t, "bc\n", h.ReadlineFrom(1))
	assert.Equal(t, "def\n", h.ReadlineFrom(4))
}

func TestFromPathRejectsIncompatibleExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "foo.txt", []byte("hi"), 0o644))

	_, err := FromPath(fs, "foo.txt", []string{"m", "matlab"})
	assert.ErrorIs(t, err, ErrIncompatibleFileType)
}

func TestFromPathAcceptsMatchingExtension(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "foo.m", []byte("x = 1;\n"), 0o644))

	h, err := FromPath(fs, "foo.m", []string{"m"})
	require.NoError(t, err)
	assert.Equal(t, "x = 1;\n", h.Read(0, h.EndPos()))
}

func TestEmptyFileTypesAcceptsAnything(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "foo.whatever", []byte("x"), 0o644))

	_, err := FromPath(fs, "foo.whatever", nil)
	assert.NoError(t, err)
}
