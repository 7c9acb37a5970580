package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopeforge/tmscope/element"
)

func matlabTheme() *Theme {
	return ParseTheme(ThemeJSON{
		Tokens: []TokenColorJSON{
			{
				Scope: "constant.numeric",
				Settings: struct {
					Foreground string `json:"foreground"`
					Background string `json:"background"`
					FontStyle  string `json:"fontStyle"`
				}{Foreground: "#ff0000"},
			},
			{
				Scope: "storage.type.number.hex",
				Settings: struct {
					Foreground string `json:"foreground"`
					Background string `json:"background"`
					FontStyle  string `json:"fontStyle"`
				}{Foreground: "#00ff00", FontStyle: "bold"},
			},
		},
	})
}

func TestGetTokenFallsBackToParentScopeSegment(t *testing.T) {
	th := matlabTheme()
	col, ok := th.getToken([]string{"constant.numeric.hex.matlab"})
	require.True(t, ok)
	assert.NotNil(t, col.Foreground)
}

func TestGetTokenNoMatch(t *testing.T) {
	th := matlabTheme()
	_, ok := th.getToken([]string{"keyword.control.matlab"})
	assert.False(t, ok)
}

func TestParseColorHexForms(t *testing.T) {
	c6, err := parseColor("#ff8000")
	require.NoError(t, err)
	r, g, b, a := c6.RGBA()
	assert.Equal(t, uint32(0xffff), r)
	assert.Equal(t, uint32(0x8080), g)
	assert.Equal(t, uint32(0x0), b)
	assert.Equal(t, uint32(0xffff), a)

	c3, err := parseColor("#f80")
	require.NoError(t, err)
	r3, _, _, _ := c3.RGBA()
	assert.Equal(t, uint32(0xffff), r3)

	_, err = parseColor("#zzzzzz")
	assert.Error(t, err)

	_, err = parseColor("#ff")
	assert.Error(t, err)
}

func TestMapElementWalksChainsInOrder(t *testing.T) {
	th := matlabTheme()
	root := &element.Element{
		Token: "source.matlab", Content: "0xFs16", Start: 0,
		Captures: []*element.Element{
			{Token: "storage.type.number.hex.matlab", Content: "s16", Start: 3},
		},
	}

	mapping := th.MapElement(root)
	require.Len(t, mapping, 2)
	assert.Equal(t, 0, mapping[0].Offset)
	assert.Equal(t, 3, mapping[1].Offset)
	assert.NotNil(t, mapping[1].Foreground)
}
