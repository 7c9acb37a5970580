package parser

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeforge/tmscope/cache"
	"github.com/scopeforge/tmscope/element"
	"github.com/scopeforge/tmscope/grammar"
	"github.com/scopeforge/tmscope/registry"
)

func numericGrammar() *grammar.Grammar {
	return &grammar.Grammar{
		ScopeName: "source.numbers",
		Patterns: []grammar.Rule{
			{
				Name:  "constant.numeric.hex",
				Match: `0[xX][0-9a-fA-F]+`,
			},
			{
				Name:  "constant.numeric.decimal",
				Match: `[0-9]+(\.[0-9]+)?`,
				Captures: map[string]grammar.Rule{
					"1": {Name: "punctuation.decimal"},
				},
			},
		},
	}
}

func TestParseStringSingleTopLevelElement(t *testing.T) {
	p, err := NewLanguageParser(numericGrammar(), registry.New())
	require.NoError(t, err)

	root, err := p.ParseString(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "constant.numeric.decimal", root.Token)
	assert.Equal(t, "42", root.Content)
}

func TestParseStringMultipleTopLevelElements(t *testing.T) {
	p, err := NewLanguageParser(numericGrammar(), registry.New())
	require.NoError(t, err)

	root, err := p.ParseString(context.Background(), "0xFF 12.5")
	require.NoError(t, err)
	assert.Equal(t, "source.numbers", root.Token)

	flat := root.Flatten()
	var tokens []string
	for _, e := range flat {
		if e.Token != "" {
			tokens = append(tokens, e.Token)
		}
	}
	assert.Contains(t, tokens, "constant.numeric.hex")
	assert.Contains(t, tokens, "constant.numeric.decimal")
	assert.Contains(t, tokens, "punctuation.decimal")
}

func TestParseStringNoMatchReturnsRawElement(t *testing.T) {
	p, err := NewLanguageParser(numericGrammar(), registry.New())
	require.NoError(t, err)

	root, err := p.ParseString(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, "   ", root.Content)
}

func TestParseStringEmptyInputReturnsNil(t *testing.T) {
	p, err := NewLanguageParser(numericGrammar(), registry.New())
	require.NoError(t, err)

	root, err := p.ParseString(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, root)
}

func TestParseStringSingleNewlineReturnsOneElement(t *testing.T) {
	p, err := NewLanguageParser(numericGrammar(), registry.New())
	require.NoError(t, err)

	root, err := p.ParseString(context.Background(), "\n")
	require.NoError(t, err)
	require.NotNil(t, root)
	assert.Equal(t, "\n", root.Content)
}

func TestParseFileUsesCache(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "n.txt", []byte("7"), 0o644))
	store := cache.NewFileStore(fs, "")

	p, err := NewLanguageParser(numericGrammar(), registry.New(),
		WithFileSystem(fs), WithCache(store))
	require.NoError(t, err)

	root, err := p.ParseFile(context.Background(), "n.txt")
	require.NoError(t, err)
	assert.Equal(t, "7", root.Content)
	assert.True(t, store.Valid("n.txt"))

	cached := &element.Element{Token: "stub.cache.hit", Content: "7"}
	require.NoError(t, store.Save("n.txt", cached))

	root, err = p.ParseFile(context.Background(), "n.txt")
	require.NoError(t, err)
	assert.Equal(t, "stub.cache.hit", root.Token)
}

func TestParseStringContextCancellation(t *testing.T) {
	p, err := NewLanguageParser(numericGrammar(), registry.New())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.ParseString(ctx, "42")
	assert.Error(t, err)
}
