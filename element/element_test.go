package element

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenDepthFirst(t *testing.T) {
	root := &Element{
		Token: "root", Content: "abc", Start: 0,
		Captures: []*Element{
			{Token: "a", Content: "a", Start: 0},
			{Token: "bc", Content: "bc", Start: 1, Captures: []*Element{
				{Token: "b", Content: "b", Start: 1},
			}},
		},
	}

	flat := root.Flatten()
	tokens := make([]string, len(flat))
	for i, e := range flat {
		tokens[i] = e.Token
	}
	assert.Equal(t, []string{"root", "a", "bc", "b"}, tokens)
}

func TestFlattenNil(t *testing.T) {
	var e *Element
	assert.Nil(t, e.Flatten())
}

func TestEndOffset(t *testing.T) {
	e := &Element{Content: "hello", Start: 10}
	assert.Equal(t, 15, e.EndOffset())
}

func TestSortElementsByStartThenLength(t *testing.T) {
	elements := []*Element{
		{Token: "b", Content: "xx", Start: 1},
		{Token: "a", Content: "x", Start: 0},
		{Token: "c", Content: "x", Start: 0},
	}
	SortElements(elements)
	assert.Equal(t, []string{"a", "c", "b"}, []string{elements[0].Token, elements[1].Token, elements[2].Token})
}

func TestChainsAccumulateAncestorScopes(t *testing.T) {
	root := &Element{
		Token: "source.matlab", Content: "1j",
		Captures: []*Element{
			{Token: "storage.type.number.imaginary.matlab", Content: "j", Start: 1},
		},
	}

	chains := root.Chains()
	require.Len(t, chains, 2)

	assert.Equal(t, []string{"source.matlab"}, chains[0].Scopes)
	assert.Equal(t, []string{"source.matlab", "storage.type.number.imaginary.matlab"}, chains[1].Scopes)
}

func TestChainsSkipUntaggedElements(t *testing.T) {
	root := &Element{
		Content: "1j",
		Captures: []*Element{
			{Token: "storage.type.number.imaginary.matlab", Content: "j", Start: 1},
		},
	}

	chains := root.Chains()
	assert.Nil(t, chains[0].Scopes)
	assert.Equal(t, []string{"storage.type.number.imaginary.matlab"}, chains[1].Scopes)
}

func TestChainsNil(t *testing.T) {
	var e *Element
	assert.Nil(t, e.Chains())
}
