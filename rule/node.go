// Package rule implements the resolved rule graph and the interpreter
// that walks it: the Search Primitive, the Rule Dispatcher, and the
// per-shape Rule Interpreter.
package rule

import "github.com/scopeforge/tmscope/regexp"

// Kind tags which of the rule shapes a Node is.
type Kind int

const (
	// KindMatch owns one regex and a captures map.
	KindMatch Kind = iota
	// KindBlock owns begin/end regexes, begin/end captures, and optional
	// inner patterns.
	KindBlock
	// KindPatterns owns only an ordered list of child rule references.
	KindPatterns
	// KindLeaf has none of match/begin/patterns; it is the degenerate
	// branch a rule falls into when it carries none of the three shapes.
	KindLeaf
	// KindInclude is a reference that must be resolved ($self, #name,
	// scopeName, or scopeName#name) before it can be interpreted.
	KindInclude
	// KindNoOp is the sentinel an unresolved cross-language include
	// degrades to: it never matches.
	KindNoOp
)

// IncludeKind distinguishes the include reference forms a rule can name:
// "#name" is resolved eagerly at construction (see compile.go); the other
// three ($self, scopeName, scopeName#name) are resolved lazily, at first
// dispatch, against the Language Registry.
type IncludeKind int

const (
	IncludeSelf IncludeKind = iota
	IncludeScope
	IncludeScopeName
)

// Node is one resolved rule in the graph — exactly one of the shapes
// named by Kind. Cyclic references are represented as pointers into a
// shared arena: repository entries and $self both resolve to
// the same *Node other rules already hold a pointer to.
type Node struct {
	Kind Kind
	// Key is the repository name this node was registered under, if any.
	Key string

	// Token is the scope name (grammar's "name"); ContentToken is
	// "contentName" (Block shape only). Comment is the grammar's
	// "comment", used as a Token fallback when Token is empty.
	Token        string
	ContentToken string
	Comment      string

	// Match shape.
	Match    *regexp.Regexp
	Captures map[int]*Node

	// Block shape.
	Begin         *regexp.Regexp
	End           *regexp.Regexp
	BeginCaptures map[int]*Node
	EndCaptures   map[int]*Node
	Inner         []*Node

	// Patterns shape.
	Children []*Node

	// Include shape.
	IncludeKind  IncludeKind
	IncludeScope string
	IncludeName  string
	Target       *Node // eagerly resolved target for "#name" includes

	owner *Language
}

// scopeToken returns the element token to use for this node: its Token,
// falling back to its Comment when Token is empty.
func (n *Node) scopeToken() string {
	if n.Token != "" {
		return n.Token
	}
	return n.Comment
}

// Injection is a rule attached to a language's dispatch set, active
// unless the current scope stack contains one of Except.
type Injection struct {
	Except []string
	Node   *Node
}

// ScopeResolver is implemented by the Language Registry; Language holds
// one so cross-language includes ($self excluded) can be resolved lazily
// without package rule importing package registry (which imports rule).
type ScopeResolver interface {
	ResolveScope(scopeName string) (*Language, bool)
}

// Language is a compiled grammar: its root dispatch node, its flattened
// repository, and the injections that target it.
type Language struct {
	Scope      string
	Root       *Node
	Repository map[string]*Node
	Injections []Injection

	resolver ScopeResolver
}

// Bind attaches the registry used to resolve cross-language includes.
// Lifecycle: called once, at registration; read-only afterward.
func (l *Language) Bind(r ScopeResolver) {
	l.resolver = r
}

// noOpNode is the shared sentinel unresolved cross-language includes
// degrade to; it never matches.
var noOpNode = &Node{Kind: KindNoOp}
