package rule

import (
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/element"
	"github.com/scopeforge/tmscope/regexp"
)

// search is the Search Primitive: it finds the first match of re at or
// after pos, growing backward into a lookbehind window when the pattern
// needs one, then turns the matched capture groups into child elements
// via captureParsers.
//
// windowed selects the scanning mode: true reads a fixed-size window
// ([pos, pos+readSize), or to EOF if readSize < 0) and tries each physical
// line inside it in turn; false reads exactly one line from pos and,
// when onlyLeadingWhitespace is set, rejects a match whose prefix on that
// line is not all whitespace.
func (in *Interpreter) search(re *regexp.Regexp, pos int, windowed bool, readSize int, onlyLeadingWhitespace bool, captureParsers map[int]*Node, scopeStack []string) (matchedText string, children []*element.Element, absStart int, ok bool, err error) {
	hasLookbehind := re.HasLookbehind()

	for lookbehind := 0; ; lookbehind += 5 {
		searchPos := pos - lookbehind
		atStart := false
		if searchPos <= 0 {
			searchPos = 0
			atStart = true
		}

		groups, windowStart, found, serr := in.tryMatch(re, searchPos, pos, windowed, readSize, onlyLeadingWhitespace)
		if serr != nil {
			return "", nil, 0, false, serr
		}
		if found {
			start := windowStart + groups[0].Start
			end := windowStart + groups[0].End
			matchedText = in.h.Read(start, end)

			kids, failed, kerr := in.captureElements(matchedText, start, groups, windowStart, captureParsers, scopeStack)
			if kerr != nil {
				return "", nil, 0, false, kerr
			}
			if failed {
				// a required capture failed to parse: the whole search
				// rewinds to "no match".
				return "", nil, 0, false, nil
			}
			return matchedText, kids, start, true, nil
		}

		if !hasLookbehind || atStart || lookbehind >= 100 {
			return "", nil, 0, false, nil
		}
	}
}

// captureElements turns a match's capture groups into the child elements
// attached to the rule's own Element: if a parser is registered for group
// 0, it stands in for the whole match and no other group is visited;
// otherwise every configured group, in ascending order, recurses into the
// Rule Interpreter over its own span. failed reports a required group's
// sub-parse rejecting the span, which rewinds the whole search to "no
// match".
func (in *Interpreter) captureElements(matchedText string, matchStart int, groups []regexp.Range, windowStart int, captureParsers map[int]*Node, scopeStack []string) (kids []*element.Element, failed bool, err error) {
	if len(captureParsers) == 0 {
		return nil, false, nil
	}
	if g0, ok := captureParsers[0]; ok {
		return []*element.Element{{Token: g0.scopeToken(), Content: matchedText, Start: matchStart}}, false, nil
	}

	ids := make([]int, 0, len(captureParsers))
	for gid := range captureParsers {
		ids = append(ids, gid)
	}
	sort.Ints(ids)

	for _, gid := range ids {
		if gid >= len(groups) {
			continue
		}
		g := groups[gid]
		if !g.Valid() || g.Len() == 0 {
			continue
		}
		gStart := windowStart + g.Start
		gEnd := windowStart + g.End

		matched, els, _, _, err := in.Interpret(captureParsers[gid], gStart, gEnd, true, scopeStack)
		if err != nil {
			return nil, false, errors.Errorf("parsing capture group %d: %w", gid, err)
		}
		if !matched {
			return nil, true, nil
		}
		kids = append(kids, els...)
	}
	return kids, false, nil
}

// tryMatch runs one search attempt at searchPos. anchor is the caller's
// original, un-grown position: readSize is always measured from anchor, so
// growing the lookbehind window only extends it backward, never forward.
func (in *Interpreter) tryMatch(re *regexp.Regexp, searchPos, anchor int, windowed bool, readSize int, onlyLeadingWhitespace bool) (groups []regexp.Range, windowStart int, found bool, err error) {
	if windowed {
		end := anchor + readSize
		if readSize < 0 {
			end = in.h.EndPos()
		}
		text := in.h.Read(searchPos, end)

		lineStart := 0
		for lineStart < len(text) {
			nl := strings.IndexByte(text[lineStart:], '\n')
			var line string
			if nl < 0 {
				line = text[lineStart:]
			} else {
				line = text[lineStart : lineStart+nl+1]
			}
			g, ok, serr := re.Search(line)
			if serr != nil {
				return nil, 0, false, serr
			}
			if ok {
				return g, searchPos + lineStart, true, nil
			}
			if nl < 0 {
				break
			}
			lineStart += nl + 1
		}
		return nil, 0, false, nil
	}

	line := in.h.ReadlineFrom(searchPos)
	g, ok, serr := re.Search(line)
	if serr != nil {
		return nil, 0, false, serr
	}
	if !ok {
		return nil, 0, false, nil
	}
	if onlyLeadingWhitespace {
		prefix := line[:g[0].Start]
		if strings.TrimLeft(prefix, " \t") != "" {
			return nil, 0, false, nil
		}
	}
	return g, searchPos, true, nil
}
