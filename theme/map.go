// Package theme decodes a TextMate color theme and resolves it against an
// element tree's scope chains, the way a renderer picks which color wins
// for a span of text.
package theme

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/element"
)

// ThemeJSON is the on-disk shape of a color theme: a default style plus an
// ordered list of scope-to-style rules.
type ThemeJSON struct {
	Default TokenColorJSON   `json:"default"`
	Tokens  []TokenColorJSON `json:"tokens"`
}

// TokenColorJSON is one theme rule. Scope may decode as either a single
// scope string or a list of scope strings sharing the same settings.
type TokenColorJSON struct {
	Scope    any `json:"scope"`
	Settings struct {
		Foreground string `json:"foreground"`
		Background string `json:"background"`
		FontStyle  string `json:"fontStyle"`
	} `json:"settings"`
}

type FontStyle int

const (
	Bold FontStyle = 1 << iota
	Italic
	Underline
	Strikethrough
)

func (s FontStyle) Has(has FontStyle) bool {
	return s&has == has
}

// TokenColor is a resolved style: a node in the theme's scope tree, one
// level per space-separated part of the scopes registered under it.
type TokenColor struct {
	Foreground color.Color
	Background color.Color
	Children   map[string]TokenColor
	FontStyle  FontStyle
}

// Theme is a parsed color theme, ready to resolve scope chains against.
type Theme struct {
	TokenColor
	Tokens map[string]TokenColor
}

// setName files col into dest under scope, a space-separated path of
// dot-segments (TextMate themes commonly write "punctuation.definition
// string" to mean "punctuation.definition nested inside string"); each
// space-separated part becomes one level of the tree, outermost first.
func setName(dest map[string]TokenColor, scope string, col TokenColor) {
	parts := strings.Split(scope, " ")
	current := dest

	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		c := current[part]
		if i == 0 {
			c.Foreground = col.Foreground
			c.Background = col.Background
		}
		if c.Children == nil {
			c.Children = make(map[string]TokenColor)
		}
		current[part] = c
		current = c.Children
	}
}

// parseColor parses a "#rgb", "#rrggbb", or "#rrggbbaa" hex literal into a
// color.Color, the same scanf-based shape cogentcore-core's Color.ParseHex
// uses for the same kind of hex literal — rolled by hand there too, despite
// go-colorful sitting in that module's own dependency graph, because a hex
// triplet this small gains nothing from a parsing library.
func parseColor(s string) (color.Color, error) {
	s = strings.TrimPrefix(s, "#")
	var r, g, b, a int
	a = 255
	var err error
	switch len(s) {
	case 3:
		_, err = fmt.Sscanf(s, "%1x%1x%1x", &r, &g, &b)
		r |= r << 4
		g |= g << 4
		b |= b << 4
	case 6:
		_, err = fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b)
	case 8:
		_, err = fmt.Sscanf(s, "%02x%02x%02x%02x", &r, &g, &b, &a)
	default:
		return nil, errors.Errorf("invalid hex color %q", s)
	}
	if err != nil {
		return nil, errors.Errorf("parsing hex color %q: %w", s, err)
	}
	return color.NRGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(a)}, nil
}

func parseToken(jc TokenColorJSON) (col TokenColor) {
	if jc.Settings.Foreground != "" {
		if c, err := parseColor(jc.Settings.Foreground); err == nil {
			col.Foreground = image.NewUniform(c)
		}
	}
	if jc.Settings.Background != "" {
		if c, err := parseColor(jc.Settings.Background); err == nil {
			col.Background = image.NewUniform(c)
		}
	}
	for field := range strings.FieldsSeq(jc.Settings.FontStyle) {
		switch field {
		case "bold":
			col.FontStyle |= Bold
		case "italic":
			col.FontStyle |= Italic
		case "underline":
			col.FontStyle |= Underline
		case "strikethrough":
			col.FontStyle |= Strikethrough
		}
	}
	return
}

// ParseTheme decodes j into a Theme ready for MapElement.
func ParseTheme(j ThemeJSON) *Theme {
	tokens := make(map[string]TokenColor)
	for _, jc := range j.Tokens {
		col := parseToken(jc)
		switch name := jc.Scope.(type) {
		case string:
			setName(tokens, name, col)
		case []any:
			for _, n := range name {
				if nstr, ok := n.(string); ok {
					setName(tokens, nstr, col)
				}
			}
		}
	}

	return &Theme{
		TokenColor: parseToken(j.Default),
		Tokens:     tokens,
	}
}

// ColorMapping pairs a resolved color with the offset of the element it
// came from, the flat sequence a renderer walks to paint a document.
type ColorMapping struct {
	TokenColor
	Offset int
}

func getSplitted(current map[string]TokenColor, name string) (TokenColor, bool) {
	for name != "" {
		s, ok := current[name]
		if ok {
			return s, true
		}
		i := strings.LastIndexByte(name, '.')
		if i == -1 {
			break
		}
		name = name[:i]
	}
	return TokenColor{}, false
}

// getToken cascades a scope chain (outermost first) down through the
// theme's token tree, the way a TextMate theme resolves the most specific
// ancestor scope it has a rule for: a level with no matching rule is
// simply skipped rather than aborting the whole cascade, since themes
// commonly style only the innermost scopes and leave ancestors (the
// language's own scopeName, say) unstyled.
func (t *Theme) getToken(scopes []string) (TokenColor, bool) {
	current := t.Tokens
	var last TokenColor
	found := false

	for _, scope := range scopes {
		c, ok := getSplitted(current, scope)
		if !ok {
			continue
		}
		last = c
		found = true
		current = c.Children
	}

	return last, found
}

// MapElement walks every element in root's tree and resolves each one's
// color against the theme, in source order.
func (t *Theme) MapElement(root *element.Element) []ColorMapping {
	var res []ColorMapping
	for _, chain := range root.Chains() {
		col, _ := t.getToken(chain.Scopes)
		res = append(res, ColorMapping{col, chain.Element.Start})
	}
	return res
}
