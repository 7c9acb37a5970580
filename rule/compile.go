package rule

import (
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/grammar"
	"github.com/scopeforge/tmscope/regexp"
)

// Compile resolves a decoded grammar.Grammar into a dispatchable
// Language: every repository entry, flattened from anywhere in the
// grammar tree, gets a placeholder Node allocated before any body is
// compiled, so "#name" includes — forward or cyclic — resolve to a stable
// pointer. Cross-language includes ($self excepted) are left unresolved
// until the Language is registered (see registry.Registry.Register).
func Compile(g *grammar.Grammar) (*Language, error) {
	lang := &Language{Scope: g.ScopeName}

	raw := map[string]grammar.Rule{}
	for _, repo := range g.Repositories() {
		for key, rule := range repo {
			raw[key] = rule
		}
	}

	lang.Repository = make(map[string]*Node, len(raw))
	for key := range raw {
		lang.Repository[key] = &Node{Key: key, owner: lang}
	}
	for key, rawRule := range raw {
		if err := compileInto(lang.Repository[key], rawRule, lang); err != nil {
			return nil, errors.Errorf("compiling repository entry %q: %w", key, err)
		}
	}

	root := &Node{owner: lang, Kind: KindPatterns}
	if err := compileChildren(root, g.Patterns, lang); err != nil {
		return nil, errors.Errorf("compiling root patterns: %w", err)
	}
	lang.Root = root

	return lang, nil
}

// CompileInjection compiles a single grammar.Rule from a grammar's
// "injections" map into a Node owned by target — the language the
// injection attaches to, which per TextMate convention is also the
// language any bare ("#name") references inside the injected rule resolve
// against.
func CompileInjection(raw grammar.Rule, target *Language) (*Node, error) {
	return compileRule(raw, target)
}

// compileRule compiles a fresh rule reference (a patterns/captures list
// entry); unlike compileInto it is free to allocate a new Node, or — for
// "#name" includes — return the existing repository placeholder pointer
// directly instead of wrapping it.
func compileRule(raw grammar.Rule, owner *Language) (*Node, error) {
	if raw.Include != "" && strings.HasPrefix(raw.Include, "#") {
		name := raw.Include[1:]
		target, ok := owner.Repository[name]
		if !ok {
			return nil, errors.Errorf("%w: %q", ErrIncludedParserNotFound, name)
		}
		return target, nil
	}
	node := &Node{owner: owner}
	if err := compileInto(node, raw, owner); err != nil {
		return nil, err
	}
	return node, nil
}

func compileInto(node *Node, raw grammar.Rule, owner *Language) error {
	node.owner = owner
	switch {
	case raw.Include != "":
		return compileInclude(node, raw.Include)
	case raw.Match != "":
		return compileMatchRule(node, raw, owner)
	case raw.Begin != "" && raw.End != "":
		return compileBlockRule(node, raw, owner)
	case raw.Begin != "" || raw.End != "":
		return ErrMalformedRule
	case len(raw.Patterns) > 0:
		node.Kind = KindPatterns
		node.Token = raw.Name
		node.Comment = raw.Comment
		return compileChildren(node, raw.Patterns, owner)
	default:
		node.Kind = KindLeaf
		node.Token = raw.Name
		node.Comment = raw.Comment
		return nil
	}
}

func compileInclude(node *Node, include string) error {
	node.Kind = KindInclude
	switch {
	case include == "$self":
		node.IncludeKind = IncludeSelf
	case strings.Contains(include, "#"):
		parts := strings.SplitN(include, "#", 2)
		node.IncludeKind = IncludeScopeName
		node.IncludeScope = parts[0]
		node.IncludeName = parts[1]
	default:
		node.IncludeKind = IncludeScope
		node.IncludeScope = include
	}
	return nil
}

func compileMatchRule(node *Node, raw grammar.Rule, owner *Language) error {
	re, err := regexp.Compile(raw.Match)
	if err != nil {
		return errors.Errorf("compiling match pattern %q: %w", raw.Match, err)
	}
	captures, err := compileCaptures(raw.Captures, re, owner)
	if err != nil {
		return err
	}
	node.Kind = KindMatch
	node.Token = raw.Name
	node.Comment = raw.Comment
	node.Match = re
	node.Captures = captures
	return nil
}

func compileBlockRule(node *Node, raw grammar.Rule, owner *Language) error {
	begin, err := regexp.Compile(raw.Begin)
	if err != nil {
		return errors.Errorf("compiling begin pattern %q: %w", raw.Begin, err)
	}
	end, err := regexp.Compile(raw.End)
	if err != nil {
		return errors.Errorf("compiling end pattern %q: %w", raw.End, err)
	}

	beginCaptures, err := compileCaptures(raw.BeginCaptures, begin, owner)
	if err != nil {
		return err
	}
	endCaptures, err := compileCaptures(raw.EndCaptures, end, owner)
	if err != nil {
		return err
	}
	if len(raw.Captures) > 0 {
		// TextMate allows a shared "captures" to stand in for
		// beginCaptures and endCaptures; it fills whichever of the two
		// the rule leaves empty.
		shared, err := compileCaptures(raw.Captures, begin, owner)
		if err != nil {
			return err
		}
		if len(beginCaptures) == 0 {
			beginCaptures = shared
		}
		if len(endCaptures) == 0 {
			endCaptures = shared
		}
	}

	node.Kind = KindBlock
	node.Token = raw.Name
	node.ContentToken = raw.ContentName
	node.Comment = raw.Comment
	node.Begin = begin
	node.End = end
	node.BeginCaptures = beginCaptures
	node.EndCaptures = endCaptures
	inner, err := compileChildNodes(raw.Patterns, owner)
	if err != nil {
		return err
	}
	node.Inner = inner
	return nil
}

func compileChildren(node *Node, patterns []grammar.Rule, owner *Language) error {
	children, err := compileChildNodes(patterns, owner)
	if err != nil {
		return err
	}
	node.Children = children
	return nil
}

func compileChildNodes(patterns []grammar.Rule, owner *Language) ([]*Node, error) {
	children := make([]*Node, 0, len(patterns))
	for _, p := range patterns {
		child, err := compileRule(p, owner)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func compileCaptures(raw map[string]grammar.Rule, re *regexp.Regexp, owner *Language) (map[int]*Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	groupCount := re.GroupCount()
	captures := make(map[int]*Node, len(raw))
	for numStr, rawRule := range raw {
		idx, err := strconv.Atoi(numStr)
		if err != nil {
			return nil, errors.Errorf("non-numeric capture group index %q: %w", numStr, err)
		}
		if idx >= groupCount {
			return nil, errors.Errorf("%w: group %d, pattern %q produces %d groups", ErrRegexGroupsMismatch, idx, re.String(), groupCount)
		}
		node, err := compileRule(rawRule, owner)
		if err != nil {
			return nil, err
		}
		captures[idx] = node
	}
	return captures, nil
}
