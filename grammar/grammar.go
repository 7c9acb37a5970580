// Package grammar decodes the on-disk (JSON or property-list) TextMate
// grammar format into an in-memory tree. It performs no regex compilation
// or reference resolution — that is package rule's job (see rule.Compile).
package grammar

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"howett.net/plist"
)

// Grammar mirrors the recognized subset of the TextMate JSON/plist
// grammar format, decoded as-is.
type Grammar struct {
	Name         string                 `json:"name" plist:"name"`
	ScopeName    string                 `json:"scopeName" plist:"scopeName"`
	Comment      string                 `json:"comment" plist:"comment"`
	FileTypes    []string               `json:"fileTypes" plist:"fileTypes"`
	UUID         string                 `json:"uuid" plist:"uuid"`
	Patterns     []Rule                 `json:"patterns" plist:"patterns"`
	Repository   map[string]Rule        `json:"repository" plist:"repository"`
	Injections   map[string]Rule        `json:"injections" plist:"injections"`
	FirstLine    string                 `json:"firstLineMatch" plist:"firstLineMatch"`
	FoldingStart string                 `json:"foldingStartMarker" plist:"foldingStartMarker"`
	FoldingEnd   string                 `json:"foldingStopMarker" plist:"foldingStopMarker"`
}

// Rule is a single raw grammar rule, with captures addressed by string
// group index ("0", "1", …) as they appear on the wire — rule.Compile
// converts these to int-indexed slices once the regex's group count is
// known.
type Rule struct {
	Name          string          `json:"name" plist:"name"`
	ContentName   string          `json:"contentName" plist:"contentName"`
	Comment       string          `json:"comment" plist:"comment"`
	Match         string          `json:"match" plist:"match"`
	Begin         string          `json:"begin" plist:"begin"`
	End           string          `json:"end" plist:"end"`
	Patterns      []Rule          `json:"patterns" plist:"patterns"`
	Captures      map[string]Rule `json:"captures" plist:"captures"`
	BeginCaptures map[string]Rule `json:"beginCaptures" plist:"beginCaptures"`
	EndCaptures   map[string]Rule `json:"endCaptures" plist:"endCaptures"`
	Include       string          `json:"include" plist:"include"`
	Repository    map[string]Rule `json:"repository" plist:"repository"`
}

// Load reads and decodes a grammar from fs at path, dispatching on
// extension: ".json" is decoded as JSON, anything else as a property
// list ("*.tmLanguage" files are plist-encoded by convention).
func Load(fs afero.Fs, path string) (*Grammar, error) {
	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading grammar %s: %w", path, err)
	}

	var g Grammar
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(content, &g); err != nil {
			return nil, errors.Errorf("decoding grammar %s as JSON: %w", path, err)
		}
	} else {
		if _, err := plist.Unmarshal(content, &g); err != nil {
			return nil, errors.Errorf("decoding grammar %s as plist: %w", path, err)
		}
	}
	return &g, nil
}

// Repositories walks the grammar tree and yields every nested repository
// map it finds — not just the top-level one. Grammars are free to place a
// "repository" key at any nesting level; a rule that includes "#name"
// resolves against whichever repository bound that name, so every
// repository in the tree must be registered.
func (g *Grammar) Repositories() []map[string]Rule {
	var repos []map[string]Rule
	if len(g.Repository) > 0 {
		repos = append(repos, g.Repository)
		for _, r := range g.Repository {
			repos = append(repos, r.repositories()...)
		}
	}
	for _, p := range g.Patterns {
		repos = append(repos, p.repositories()...)
	}
	return repos
}

func (r Rule) repositories() []map[string]Rule {
	var repos []map[string]Rule
	if len(r.Repository) > 0 {
		repos = append(repos, r.Repository)
		for _, nested := range r.Repository {
			repos = append(repos, nested.repositories()...)
		}
	}
	for _, p := range r.Patterns {
		repos = append(repos, p.repositories()...)
	}
	for _, c := range r.Captures {
		repos = append(repos, c.repositories()...)
	}
	for _, c := range r.BeginCaptures {
		repos = append(repos, c.repositories()...)
	}
	for _, c := range r.EndCaptures {
		repos = append(repos, c.repositories()...)
	}
	return repos
}
