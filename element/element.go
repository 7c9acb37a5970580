// Package element implements the element model: the immutable, ordered
// scope tree produced by a successful parse.
package element

import "sort"

// Element is a matched, scoped span of text together with its child
// captures in source order.
type Element struct {
	// Token is the scope name attached to this span (or the rule's
	// comment, if the rule carried no name).
	Token string
	// Content is the literal text this element covers.
	Content string
	// Start is the absolute offset Content begins at, used to keep
	// Flatten and downstream renderers (theme.Theme) ordered without
	// re-deriving it from the parent's read window.
	Start int
	// Captures are child elements, in source order.
	Captures []*Element

	// Begin and End are set only for a begin/end rule's element: the
	// elements produced by its begin and end regex's own capture groups,
	// so a theme or structural consumer can distinguish bracket
	// punctuation from body content. Both are nil for every other
	// element.
	Begin *Element
	End   *Element
}

// EndOffset returns the offset just past Content.
func (e *Element) EndOffset() int {
	return e.Start + len(e.Content)
}

// Flatten collapses the tree into a flat, source-ordered sequence of
// elements (self first, then captures depth-first). Used by tests and by
// downstream consumers (theme.Theme) that want a linear scope stream
// rather than a tree walk.
func (e *Element) Flatten() []*Element {
	if e == nil {
		return nil
	}
	out := []*Element{e}
	for _, c := range e.Captures {
		out = append(out, c.Flatten()...)
	}
	return out
}

// Compare orders two elements the way a renderer wants to stabilize
// overlapping spans: earliest start first, then longest span, then by
// token name so ties are deterministic.
func Compare(a, b *Element) int {
	if a.Start != b.Start {
		return a.Start - b.Start
	}
	if la, lb := len(a.Content), len(b.Content); la != lb {
		return lb - la
	}
	if a.Token != b.Token {
		if a.Token < b.Token {
			return -1
		}
		return 1
	}
	return 0
}

// SortElements sorts a slice of elements in place using Compare.
func SortElements(elements []*Element) {
	sort.SliceStable(elements, func(i, j int) bool {
		return Compare(elements[i], elements[j]) < 0
	})
}

// Chain pairs an element with its full scope chain: every ancestor's
// Token, outermost first, followed by its own (omitting any element along
// the way whose Token is empty — an untagged leaf or gap never
// contributes a scope).
type Chain struct {
	Element *Element
	Scopes  []string
}

// Chains flattens the tree into one Chain per element, in source order —
// the shape a theme wants to cascade scope-specific colors down through,
// outermost scope first.
func (e *Element) Chains() []Chain {
	if e == nil {
		return nil
	}
	return e.chains(nil)
}

func (e *Element) chains(parent []string) []Chain {
	scopes := parent
	if e.Token != "" {
		scopes = make([]string, len(parent), len(parent)+1)
		copy(scopes, parent)
		scopes = append(scopes, e.Token)
	}
	out := []Chain{{Element: e, Scopes: scopes}}
	for _, c := range e.Captures {
		out = append(out, c.chains(scopes)...)
	}
	return out
}
