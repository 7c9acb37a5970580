package rule

import "errors"

// Sentinel errors returned at grammar-compile time.
var (
	// ErrIncludedParserNotFound is returned at construction when a
	// "#name" include cannot be resolved against the owning language's
	// repository.
	ErrIncludedParserNotFound = errors.New("included parser not found")

	// ErrRegexGroupsMismatch is returned at construction when a captures
	// map references a capture group index the regex cannot produce.
	ErrRegexGroupsMismatch = errors.New("captures reference group index regex does not produce")

	// ErrMalformedRule is returned at construction for a rule missing one
	// of a begin/end pair.
	ErrMalformedRule = errors.New("rule has begin or end without the other")
)
