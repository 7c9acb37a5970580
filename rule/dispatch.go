package rule

import "github.com/scopeforge/tmscope/element"

// DispatchStats counts memo outcomes: Hits is how often a candidate's
// cached match, still at or ahead of the cursor, was reused; Misses is how
// often a candidate was interpreted afresh (no entry, a cached miss, or a
// match the cursor had passed). Grounded on the HighGoal1991 Go port's
// Pattern.hits/Pattern.misses fields.
type DispatchStats struct {
	Hits   int
	Misses int
}

// memoEntry caches a candidate's last resolved outcome so repeated
// dispatch calls over the same window don't re-run its search every time
// the cursor hasn't passed it yet.
type memoEntry struct {
	tried    bool
	matched  bool
	start    int
	end      int
	elements []*element.Element
}

// dispatch is the Rule Dispatcher: given an ordered candidate list (a
// rule's children plus any active injections), it repeatedly finds the
// single best match starting at or after cursor and moves the cursor past
// it, until no candidate matches or close is reached, and returns the full
// flattened child sequence up to close.
func (in *Interpreter) dispatch(candidates []*Node, cursor, close int, scopeStack []string) ([]*element.Element, error) {
	memo := make(map[*Node]*memoEntry, len(candidates))
	var out []*element.Element

	for cursor < close {
		winner, winStart, winEnd, winElements, err := in.bestCandidate(candidates, cursor, close, scopeStack, memo)
		if err != nil {
			return nil, err
		}
		if winner == nil {
			break
		}
		if winStart > cursor {
			out = append(out, in.gapElement(cursor, winStart))
		}
		out = append(out, winElements...)

		if winEnd <= winStart {
			// zero-width match: advance one byte so dispatch always makes
			// forward progress.
			cursor = winStart + 1
		} else {
			cursor = winEnd
		}
	}
	if cursor < close {
		out = append(out, in.gapElement(cursor, close))
	}
	return out, nil
}

// gapElement wraps unmatched text between two dispatch winners as an
// untagged leaf, so the flattened element tree still accounts for every
// byte of the window.
func (in *Interpreter) gapElement(start, end int) *element.Element {
	return &element.Element{Content: in.h.Read(start, end), Start: start}
}

// bestCandidate finds the candidate that wins at or after cursor: the
// smallest start wins; ties break on the longest match, then on the
// candidate's position in the list.
func (in *Interpreter) bestCandidate(candidates []*Node, cursor, close int, scopeStack []string, memo map[*Node]*memoEntry) (winner *Node, start, end int, elements []*element.Element, err error) {
	for _, cand := range candidates {
		entry := memo[cand]
		// Reuse a cached successful match only while it's still ahead of
		// the cursor; a cached miss or a match the cursor has since
		// passed gets re-tried.
		stale := entry == nil || !entry.matched || entry.start < cursor
		if stale {
			in.Stats.Misses++
			matched, els, mStart, mEnd, ierr := in.Interpret(cand, cursor, close, true, scopeStack)
			if ierr != nil {
				return nil, 0, 0, nil, ierr
			}
			entry = &memoEntry{tried: true, matched: matched, start: mStart, end: mEnd, elements: els}
			memo[cand] = entry
		} else {
			in.Stats.Hits++
		}
		if !entry.matched {
			continue
		}
		// Smallest start wins; ties break on the longest match, then on
		// first-in-list order by virtue of the strict "<" comparisons
		// below never replacing an existing equal-start, equal-end
		// winner.
		if winner == nil ||
			entry.start < start ||
			(entry.start == start && entry.end > end) {
			winner = cand
			start = entry.start
			end = entry.end
			elements = entry.elements
		}
	}
	return winner, start, end, elements, nil
}
