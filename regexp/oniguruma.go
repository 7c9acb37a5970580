// Package regexp implements an Oniguruma-backed regular expression
// adapter: a uniform, uniform Search over a string returning per-group
// spans. It is a thin cgo wrapper; see rule.search for the lookbehind-
// growing and line-scanning behavior built on top of it.
package regexp

// #cgo pkg-config: oniguruma
// #include <oniguruma.h>
// #include <stdlib.h>
//
// int error_code_to_str(UChar* err_buf, int err_code, OnigErrorInfo* info) {
//     return info != NULL ? onig_error_code_to_str(err_buf, err_code, info) : onig_error_code_to_str(err_buf, err_code);
// }
import "C"
import (
	"errors"
	"fmt"
	"strings"
	"unsafe"
)

var ErrRegexpSyntax = errors.New("syntax error")

// Regexp is a compiled Oniguruma pattern.
type Regexp struct {
	c       C.OnigRegex
	pattern string
}

// Range is a half-open [Start, End) span, relative to the string it was
// matched against.
type Range struct {
	Start, End int
}

func (r Range) Len() int {
	return r.End - r.Start
}

func (r Range) Text(str string) string {
	return str[r.Start:r.End]
}

// Valid reports whether the range matched (a non-participating capture
// group yields an invalid Range{-1, -1}).
func (r Range) Valid() bool {
	return r.Start >= 0 && r.End >= 0
}

type Option C.OnigOptionType

const (
	OptionNone  Option = C.ONIG_OPTION_NONE
	OptionNotBOL Option = C.ONIG_OPTION_NOTBOL
	OptionNotEOL Option = C.ONIG_OPTION_NOTEOL
)

var syntax = C.ONIG_SYNTAX_DEFAULT

// Compile compiles an Oniguruma pattern. The pattern string is retained
// for diagnostics and for HasLookbehind's syntactic test.
func Compile(pattern string) (*Regexp, error) {
	r := Regexp{pattern: pattern}
	raw := []byte(pattern)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty pattern", ErrRegexpSyntax)
	}
	start := (*C.OnigUChar)(unsafe.Pointer(&raw[0]))
	end := (*C.OnigUChar)(unsafe.Pointer(uintptr(unsafe.Pointer(&raw[0])) + uintptr(len(raw))))

	var errinfo C.OnigErrorInfo
	ret := C.onig_new(&r.c, start, end, C.ONIG_OPTION_CAPTURE_GROUP, C.ONIG_ENCODING_UTF8, syntax, &errinfo)
	if ret != C.ONIG_NORMAL {
		var errBuf [C.ONIG_MAX_ERROR_MESSAGE_LEN]C.char
		C.error_code_to_str((*C.OnigUChar)(unsafe.Pointer(&errBuf[0])), ret, &errinfo)
		return nil, fmt.Errorf("%w: %s", ErrRegexpSyntax, C.GoString(&errBuf[0]))
	}

	return &r, nil
}

// Free releases the underlying Oniguruma pattern. Callers that compile a
// long-lived rule graph typically never call this; it exists for callers
// that compile scratch patterns.
func (re *Regexp) Free() {
	if re.c != nil {
		C.onig_free(re.c)
		re.c = nil
	}
}

func (re *Regexp) String() string {
	return re.pattern
}

// GroupCount returns the number of capture groups the pattern can
// produce (including group 0, the whole match).
func (re *Regexp) GroupCount() int {
	return int(C.onig_number_of_captures(re.c)) + 1
}

// HasLookbehind reports whether the source pattern text contains a
// lookbehind construct, per the syntactic test in the adapter's contract:
// the substring "(?<" followed by "=" or "!".
func (re *Regexp) HasLookbehind() bool {
	return hasLookbehind(re.pattern)
}

func hasLookbehind(pattern string) bool {
	for {
		i := strings.Index(pattern, "(?<")
		if i < 0 {
			return false
		}
		rest := pattern[i+3:]
		if len(rest) > 0 && (rest[0] == '=' || rest[0] == '!') {
			return true
		}
		pattern = rest
	}
}

// Search performs a non-anchored search of the pattern within text,
// returning the first match (per Oniguruma's left-to-right scan) and its
// numbered group spans (index 0 is the whole match). ok is false when no
// match was found.
func (re *Regexp) Search(text string) (groups []Range, ok bool, err error) {
	if len(text) == 0 {
		return nil, false, nil
	}
	raw := []byte(text)
	cstart := (*C.OnigUChar)(unsafe.Pointer(&raw[0]))
	cend := (*C.OnigUChar)(unsafe.Pointer(uintptr(unsafe.Pointer(&raw[0])) + uintptr(len(raw))))

	region := C.onig_region_new()
	defer C.onig_region_free(region, 1)

	ret := C.onig_search(re.c, cstart, cend, cstart, cend, region, C.ONIG_OPTION_NONE)
	if ret == C.ONIG_MISMATCH {
		return nil, false, nil
	} else if ret < 0 {
		var errBuf [C.ONIG_MAX_ERROR_MESSAGE_LEN]C.char
		C.error_code_to_str((*C.OnigUChar)(unsafe.Pointer(&errBuf[0])), ret, nil)
		return nil, false, fmt.Errorf("%w: %s", ErrRegexpSyntax, C.GoString(&errBuf[0]))
	}

	groups = make([]Range, int(region.num_regs))
	for i := range groups {
		beg := *(*C.int)(unsafe.Pointer(uintptr(unsafe.Pointer(region.beg)) + uintptr(i)*unsafe.Sizeof(*region.beg)))
		end := *(*C.int)(unsafe.Pointer(uintptr(unsafe.Pointer(region.end)) + uintptr(i)*unsafe.Sizeof(*region.end)))
		if beg < 0 || end < 0 {
			groups[i] = Range{-1, -1}
			continue
		}
		groups[i] = Range{int(beg), int(end)}
	}
	return groups, true, nil
}
