// Package registry implements the Language Registry: the process-wide map
// from scope name to compiled rule.Language that lets grammars reference
// each other ($self excepted, which rule.Compile resolves on its own) and
// lets embedded-language injections attach to an already registered host
// grammar. An injection whose host has not registered yet is dropped.
package registry

import (
	"errors"
	"strings"
	"sync"

	tozderrors "gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/grammar"
	"github.com/scopeforge/tmscope/rule"
)

// ErrScopeAlreadyRegistered is returned by Register when a scope name is
// registered twice.
var ErrScopeAlreadyRegistered = errors.New("scope already registered")

// Registry resolves cross-language includes and owns every language's
// injection set. It is safe for concurrent use: languages are registered
// once, up front, and ResolveScope only ever reads afterward — but a
// grammar can reference a scope that hasn't registered yet (embedded
// languages commonly load in either order), so lookups still take the
// read lock to observe a concurrent Register.
type Registry struct {
	mu        sync.RWMutex
	languages map[string]*rule.Language
}

// New builds an empty Registry.
func New() *Registry {
	return &Registry{languages: make(map[string]*rule.Language)}
}

// Register adds the already compiled lang to the registry under its
// scope name, binds the registry as lang's cross-language resolver, and
// compiles rawInjections — the grammar's own "injections" map — into
// rule.Injection values attached to whichever language each key targets.
func (r *Registry) Register(lang *rule.Language, rawInjections map[string]grammar.Rule) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.languages[lang.Scope]; exists {
		return tozderrors.Errorf("%q: %w", lang.Scope, ErrScopeAlreadyRegistered)
	}
	lang.Bind(r)
	r.languages[lang.Scope] = lang

	for key, raw := range rawInjections {
		target, except := parseInjectionKey(key)
		targetLang := lang
		if target != "" && target != lang.Scope {
			tl, ok := r.languages[target]
			if !ok {
				// The target hasn't registered yet; the injection is
				// dropped rather than deferred — grammars are expected to
				// register their host before (or instead of) relying on
				// late injection wiring.
				continue
			}
			targetLang = tl
		}
		node, err := rule.CompileInjection(raw, targetLang)
		if err != nil {
			return tozderrors.Errorf("compiling injection %q: %w", key, err)
		}
		targetLang.Injections = append(targetLang.Injections, rule.Injection{Except: except, Node: node})
	}
	return nil
}

// ResolveScope implements rule.ScopeResolver.
func (r *Registry) ResolveScope(scopeName string) (*rule.Language, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lang, ok := r.languages[scopeName]
	return lang, ok
}

// parseInjectionKey splits an injection selector of the form
// "target-except1-except2" into its target scope and except list; target
// is blank (meaning the owning language itself) when the key starts with
// "-".
func parseInjectionKey(key string) (target string, except []string) {
	i := strings.IndexByte(key, '-')
	if i < 0 {
		return strings.TrimSpace(key), nil
	}
	target = strings.TrimSpace(key[:i])
	for _, s := range strings.Split(key[i:], "-") {
		if s = strings.TrimSpace(s); s != "" {
			except = append(except, s)
		}
	}
	return target, except
}
