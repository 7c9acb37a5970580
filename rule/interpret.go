package rule

import (
	"github.com/scopeforge/tmscope/element"
	"github.com/scopeforge/tmscope/tmlog"
)

// Interpreter walks a resolved rule graph over one Handler, dispatching
// on each node's shape. It is not safe for concurrent use over the same
// cursor state; callers wanting concurrent parses build one Interpreter
// per call.
type Interpreter struct {
	h     handlerReader
	Stats DispatchStats
}

// handlerReader is the minimal slice of handler.Handler the interpreter
// needs; kept as an unexported interface so tests can drive it with a
// trivial in-memory fake instead of constructing a real handler.Handler.
type handlerReader interface {
	Read(start, end int) string
	ReadlineFrom(pos int) string
	EndPos() int
}

// NewInterpreter builds an Interpreter over h.
func NewInterpreter(h handlerReader) *Interpreter {
	return &Interpreter{h: h}
}

// Interpret dispatches on node's shape. close is the position the
// caller's own window ends at. With hasClose false there is no caller
// window: Match and begin searches read one line from start, and the
// Patterns and Leaf shapes run to the end of the buffer. Every caller in
// this module, the parser's root call included, passes true.
func (in *Interpreter) Interpret(node *Node, start, close int, hasClose bool, scopeStack []string) (matched bool, elements []*element.Element, parsedStart, parsedEnd int, err error) {
	node = deref(node)
	switch node.Kind {
	case KindNoOp:
		return false, nil, 0, 0, nil
	case KindMatch:
		return in.interpretMatch(node, start, close, hasClose, scopeStack)
	case KindBlock:
		return in.interpretBlock(node, start, close, hasClose, scopeStack)
	case KindPatterns:
		return in.interpretPatterns(node, start, close, hasClose, scopeStack)
	case KindLeaf:
		return in.interpretLeaf(node, start, close, hasClose)
	default:
		return false, nil, 0, 0, nil
	}
}

func (in *Interpreter) interpretMatch(node *Node, start, close int, hasClose bool, scopeStack []string) (bool, []*element.Element, int, int, error) {
	readSize := 0
	if hasClose {
		readSize = close - start
	}
	matchedText, children, absStart, ok, err := in.search(node.Match, start, hasClose, readSize, true, node.Captures, scopeStack)
	if err != nil || !ok {
		return false, nil, 0, 0, err
	}
	el := &element.Element{Token: node.scopeToken(), Content: matchedText, Start: absStart, Captures: children}
	end := absStart + len(matchedText)
	return true, []*element.Element{el}, absStart, end, nil
}

// interpretBlock handles the begin/end shape: begin must match before
// close, end is then searched for starting just past begin, and the span
// between them dispatches against the rule's own inner patterns (plus any
// injections active in the current scope stack).
func (in *Interpreter) interpretBlock(node *Node, start, close int, hasClose bool, scopeStack []string) (bool, []*element.Element, int, int, error) {
	beginReadSize := 0
	if hasClose {
		beginReadSize = close - start
	}
	beginText, beginCaptures, beginStart, ok, err := in.search(node.Begin, start, hasClose, beginReadSize, true, node.BeginCaptures, scopeStack)
	if err != nil {
		return false, nil, 0, 0, err
	}
	if !ok {
		return false, nil, 0, 0, nil
	}
	innerStart := beginStart + len(beginText)

	endReadSize := -1
	if hasClose {
		endReadSize = close - innerStart
	}
	endText, endCaptures, endStart, ok, err := in.search(node.End, innerStart, true, endReadSize, false, node.EndCaptures, scopeStack)
	if err != nil {
		return false, nil, 0, 0, err
	}
	if !ok {
		tmlog.CannotCloseEnd(node.scopeToken())
		return false, nil, 0, 0, nil
	}
	innerEnd := endStart
	blockEnd := endStart + len(endText)

	// A zero-width begin/end pair (innerEnd == innerStart, blockEnd ==
	// beginStart) still resolves to a real element here; the dispatcher
	// is what guards against looping forever on it, by advancing the
	// cursor one byte past a zero-width winner.
	var body []*element.Element
	if innerStart == start && innerEnd == close {
		// begin/end exactly fill the window the caller handed us: dispatching
		// into node's own inner patterns would call straight back into this
		// same node with the same (start, close), recursing through Go's call
		// stack rather than through dispatch's cursor-advancing loop, with
		// nothing to bound it. Take the inner span as one untagged leaf
		// instead of recursing.
		if innerEnd > innerStart {
			body = []*element.Element{{Content: in.h.Read(innerStart, innerEnd), Start: innerStart}}
		}
	} else if innerEnd > innerStart {
		innerStack := append(append([]string{}, scopeStack...), node.scopeToken())
		candidates := dispatchCandidates(node.owner, node.Inner, innerStack)
		if len(candidates) > 0 {
			body, err = in.dispatch(candidates, innerStart, innerEnd, innerStack)
			if err != nil {
				return false, nil, 0, 0, err
			}
		}
	}

	var beginEl, endEl *element.Element
	if len(beginCaptures) > 0 {
		beginEl = beginCaptures[0]
	}
	if len(endCaptures) > 0 {
		endEl = endCaptures[0]
	}

	var el *element.Element
	if node.ContentToken != "" {
		el = &element.Element{
			Token:    node.ContentToken,
			Content:  in.h.Read(innerStart, innerEnd),
			Start:    innerStart,
			Captures: body,
			Begin:    beginEl,
			End:      endEl,
		}
	} else {
		el = &element.Element{
			Token:    node.scopeToken(),
			Content:  in.h.Read(beginStart, blockEnd),
			Start:    beginStart,
			Captures: body,
			Begin:    beginEl,
			End:      endEl,
		}
	}
	return true, []*element.Element{el}, beginStart, blockEnd, nil
}

// interpretPatterns dispatches over node's children (a repository-level
// grouping or a language root), wrapping the result in node's own token
// when it has one, and otherwise passing the dispatched elements through
// untouched — the language root is always transparent this way (it is
// compiled with no Token; see compile.go).
func (in *Interpreter) interpretPatterns(node *Node, start, close int, hasClose bool, scopeStack []string) (bool, []*element.Element, int, int, error) {
	end := close
	if !hasClose {
		end = in.h.EndPos()
	}
	candidates := dispatchCandidates(node.owner, node.Children, scopeStack)
	if len(candidates) == 0 {
		return false, nil, 0, 0, nil
	}
	els, err := in.dispatch(candidates, start, end, scopeStack)
	if err != nil {
		return false, nil, 0, 0, err
	}
	if len(els) == 0 {
		return false, nil, 0, 0, nil
	}
	if node.Token == "" && node.Comment == "" {
		return true, els, start, end, nil
	}
	wrapped := &element.Element{Token: node.scopeToken(), Content: in.h.Read(start, end), Start: start, Captures: els}
	return true, []*element.Element{wrapped}, start, end, nil
}

// interpretLeaf handles a rule with none of match, begin, or patterns —
// the degenerate branch a rule falls into when it carries none of the
// three shapes. It always "matches" by taking the rest of the caller's
// window as one raw span, tagged with the rule's own token.
func (in *Interpreter) interpretLeaf(node *Node, start, close int, hasClose bool) (bool, []*element.Element, int, int, error) {
	tmlog.LeafFallback(node.scopeToken())
	end := close
	if !hasClose {
		end = in.h.EndPos()
	}
	if end <= start {
		return false, nil, 0, 0, nil
	}
	el := &element.Element{Token: node.scopeToken(), Content: in.h.Read(start, end), Start: start}
	return true, []*element.Element{el}, start, end, nil
}
