package rule

import "github.com/scopeforge/tmscope/tmlog"

// resolveInclude follows an Include node to the concrete node it stands
// for. $self and "#name" always resolve (the latter is validated fatally
// at construction, see compile.go); a cross-language scope that the
// registry hasn't seen degrades to noOpNode rather than failing —
// embedded-language grammars commonly reference a host that hasn't been
// loaded yet.
func resolveInclude(n *Node) *Node {
	switch n.IncludeKind {
	case IncludeSelf:
		return n.owner.Root
	case IncludeScope:
		lang, ok := resolveLanguage(n.owner, n.IncludeScope)
		if !ok {
			tmlog.Degraded(n.IncludeScope)
			return noOpNode
		}
		return lang.Root
	case IncludeScopeName:
		lang, ok := resolveLanguage(n.owner, n.IncludeScope)
		if !ok {
			tmlog.Degraded(n.IncludeScope)
			return noOpNode
		}
		target, ok := lang.Repository[n.IncludeName]
		if !ok {
			tmlog.Degraded(n.IncludeScope + "#" + n.IncludeName)
			return noOpNode
		}
		return target
	default:
		return noOpNode
	}
}

func resolveLanguage(owner *Language, scope string) (*Language, bool) {
	if scope == "" || scope == owner.Scope {
		return owner, true
	}
	if owner.resolver == nil {
		return nil, false
	}
	return owner.resolver.ResolveScope(scope)
}

// deref resolves a chain of Include nodes down to a concrete (non-
// Include) node. Grammars that mutually $self-include in a way that never
// bottoms out are a construction error in practice, not one this engine
// detects; real grammars never do this.
func deref(n *Node) *Node {
	for n.Kind == KindInclude {
		n = resolveInclude(n)
	}
	return n
}
