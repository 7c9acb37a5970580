package rule

// activeInjections returns owner's injection nodes that aren't excluded
// by the current scope stack — appended after a rule's own children, an
// injection only ever wins a dispatch when nothing more specific matches
// earlier or starts sooner.
func activeInjections(owner *Language, scopeStack []string) []*Node {
	if len(owner.Injections) == 0 {
		return nil
	}
	var out []*Node
	for _, inj := range owner.Injections {
		if scopeExcluded(inj.Except, scopeStack) {
			continue
		}
		out = append(out, inj.Node)
	}
	return out
}

func scopeExcluded(except, scopeStack []string) bool {
	for _, ex := range except {
		for _, s := range scopeStack {
			if s == ex {
				return true
			}
		}
	}
	return false
}

// dispatchCandidates builds the full candidate list for one dispatch
// call: a rule's own children followed by whichever of the owning
// language's injections are active in the current scope stack.
func dispatchCandidates(owner *Language, own []*Node, scopeStack []string) []*Node {
	injections := activeInjections(owner, scopeStack)
	if len(injections) == 0 {
		return own
	}
	out := make([]*Node, 0, len(own)+len(injections))
	out = append(out, own...)
	out = append(out, injections...)
	return out
}
