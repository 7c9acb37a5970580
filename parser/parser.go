// Package parser implements the engine's public entry point: compiling a
// grammar into a Parser and running it over a string or a file.
package parser

import (
	"context"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/cache"
	"github.com/scopeforge/tmscope/element"
	"github.com/scopeforge/tmscope/grammar"
	"github.com/scopeforge/tmscope/handler"
	"github.com/scopeforge/tmscope/registry"
	"github.com/scopeforge/tmscope/rule"
	"github.com/scopeforge/tmscope/tmlog"
)

// ErrIterationCeiling is returned when a parse's top-level dispatch loop
// exceeds its configured iteration ceiling without closing its window —
// a safety net against a misbehaving or adversarial grammar looping
// forever rather than a condition well-formed grammars ever hit.
var ErrIterationCeiling = errors.New("parse exceeded its iteration ceiling")

// Option configures a Parser at construction, replacing the kwargs a
// Python constructor would thread through every call.
type Option func(*Parser)

// WithFileSystem sets the afero.Fs ParseFile reads through. Defaults to
// the OS filesystem.
func WithFileSystem(fs afero.Fs) Option {
	return func(p *Parser) { p.fs = fs }
}

// WithCache attaches a cache.Store; ParseFile consults it before
// re-parsing and saves a fresh result back to it afterward. No cache is
// used by default.
func WithCache(store cache.Store) Option {
	return func(p *Parser) { p.cache = store }
}

// WithMaxIterations overrides the top-level dispatch loop's iteration
// ceiling. Defaults to 10000.
func WithMaxIterations(n int) Option {
	return func(p *Parser) { p.maxIterations = n }
}

// Parser parses one compiled language's grammar against input text.
type Parser struct {
	lang  *rule.Language
	reg   *registry.Registry
	fs    afero.Fs
	cache cache.Store

	maxIterations int
}

// NewLanguageParser compiles g, registers it with reg under its own scope
// name (so other languages in reg can include it, and so it can include
// them), and returns a Parser ready to run over input text.
func NewLanguageParser(g *grammar.Grammar, reg *registry.Registry, opts ...Option) (*Parser, error) {
	lang, err := rule.Compile(g)
	if err != nil {
		return nil, errors.Errorf("compiling grammar %s: %w", g.ScopeName, err)
	}
	if err := reg.Register(lang, g.Injections); err != nil {
		return nil, errors.Errorf("registering grammar %s: %w", g.ScopeName, err)
	}

	p := &Parser{
		lang:          lang,
		reg:           reg,
		fs:            afero.NewOsFs(),
		maxIterations: 10000,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// LogScope implements tmlog.Scoped.
func (p *Parser) LogScope() string {
	return p.lang.Scope
}

// ParseString parses text against the language's grammar and returns the
// root element of the resulting tree.
func (p *Parser) ParseString(ctx context.Context, text string) (*element.Element, error) {
	h := handler.FromString(text)
	return p.parseHandler(ctx, h)
}

// ParseFile reads path through the Parser's filesystem and parses it,
// consulting and updating the cache (if one is configured) around the
// actual parse.
func (p *Parser) ParseFile(ctx context.Context, path string) (*element.Element, error) {
	if p.cache != nil && p.cache.Valid(path) {
		root, err := p.cache.Load(path)
		if err == nil {
			return root, nil
		}
		// A corrupt or unreadable cache entry falls through to a real
		// parse rather than failing the caller.
	}

	h, err := handler.FromPath(p.fs, path, nil)
	if err != nil {
		return nil, errors.Errorf("reading %s: %w", path, err)
	}
	root, err := p.parseHandler(ctx, h)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if err := p.cache.Save(path, root); err != nil {
			tmlog.Logger.Warn().Err(err).Str("path", path).Msg("failed to save parse cache entry")
		}
	}
	return root, nil
}

func (p *Parser) parseHandler(ctx context.Context, h *handler.Handler) (*element.Element, error) {
	if h.Empty() {
		// Empty input never reaches the interpreter: there is no span for
		// even the degenerate leaf fallback to wrap, so there is no element
		// to return — distinct from a single newline, which is one real
		// leaf whose content is that newline.
		return nil, nil
	}

	tmlog.Configure(p, h.LineCount(), h.MaxLineLength())

	in := rule.NewInterpreter(h)
	matched, els, _, _, err := in.Interpret(p.lang.Root, 0, h.EndPos(), true, nil)
	if err != nil {
		return nil, errors.Errorf("parsing %s: %w", p.lang.Scope, err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if in.Stats.Misses > p.maxIterations {
		tmlog.IterationCeiling(p.lang.Scope, p.maxIterations)
		return nil, ErrIterationCeiling
	}
	if !matched || len(els) == 0 {
		return &element.Element{Content: h.Read(0, h.EndPos())}, nil
	}
	if len(els) == 1 {
		return els[0], nil
	}
	return &element.Element{Token: p.lang.Scope, Content: h.Read(0, h.EndPos()), Captures: els}, nil
}
