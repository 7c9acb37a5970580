package grammar

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJSON = `{
	"name": "MATLAB",
	"scopeName": "source.matlab",
	"fileTypes": ["m"],
	"patterns": [
		{"include": "#numbers"}
	],
	"repository": {
		"numbers": {
			"patterns": [
				{"match": "[0-9]+", "name": "constant.numeric.decimal.matlab"}
			],
			"repository": {
				"nested": {"match": "x", "name": "keyword.nested.matlab"}
			}
		}
	}
}`

func TestLoadJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "matlab.json", []byte(sampleJSON), 0o644))

	g, err := Load(fs, "matlab.json")
	require.NoError(t, err)
	assert.Equal(t, "source.matlab", g.ScopeName)
	assert.Equal(t, []string{"m"}, g.FileTypes)
	require.Len(t, g.Patterns, 1)
	assert.Equal(t, "#numbers", g.Patterns[0].Include)
}

func TestRepositoriesWalksNestedEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "matlab.json", []byte(sampleJSON), 0o644))
	g, err := Load(fs, "matlab.json")
	require.NoError(t, err)

	repos := g.Repositories()
	require.Len(t, repos, 2)

	top := repos[0]
	numbers, ok := top["numbers"]
	require.True(t, ok)
	require.Len(t, numbers.Patterns, 1)

	// the nested repository lives inside "numbers" and is only reachable
	// by walking the tree, not by reading the top-level key alone.
	nested, ok := repos[1]["nested"]
	require.True(t, ok)
	assert.Equal(t, "keyword.nested.matlab", nested.Name)
}

func TestLoadUnknownExtensionFallsBackToPlist(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.tmLanguage", []byte("not a plist"), 0o644))

	_, err := Load(fs, "bad.tmLanguage")
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Load(fs, "missing.json")
	assert.Error(t, err)
}
