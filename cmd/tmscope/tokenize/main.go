// Package tokenize implements "tmscope tokenize": parse a file against a
// grammar and print the resulting element tree, either as JSON or as an
// ANSI-colored render of the source through a theme.
package tokenize

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/element"
	"github.com/scopeforge/tmscope/grammar"
	"github.com/scopeforge/tmscope/parser"
	"github.com/scopeforge/tmscope/registry"
	"github.com/scopeforge/tmscope/theme"
)

type handler struct {
	grammarPath string
	themePath   string
	asJSON      bool
	transparent bool
}

func NewTokenizeCommand() *cobra.Command {
	h := &handler{}

	cmd := &cobra.Command{
		Use:   "tokenize [file]",
		Short: "parse a file against a grammar and print its element tree",
		Args:  cobra.MaximumNArgs(1),
	}

	cmd.Flags().StringVar(&h.grammarPath, "grammar", "", "path to a TextMate grammar (JSON or plist)")
	cmd.Flags().StringVar(&h.themePath, "theme", "", "path to a theme JSON file (ANSI render only)")
	cmd.Flags().BoolVar(&h.asJSON, "json", false, "print the element tree as JSON instead of an ANSI render")
	cmd.Flags().BoolVar(&h.transparent, "transparent", false, "don't fall back to the theme's default foreground/background")
	cmd.MarkFlagRequired("grammar")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) > 0 {
			path = args[0]
		}
		return h.run(cmd.Context(), path)
	}

	return cmd
}

func (h *handler) run(ctx context.Context, path string) error {
	fs := afero.NewOsFs()

	g, err := grammar.Load(fs, h.grammarPath)
	if err != nil {
		return errors.Errorf("loading grammar: %w", err)
	}

	p, err := parser.NewLanguageParser(g, registry.New(), parser.WithFileSystem(fs))
	if err != nil {
		return errors.Errorf("building parser: %w", err)
	}

	var source []byte
	if path == "" {
		source, err = readAll(os.Stdin)
		if err != nil {
			return errors.Errorf("reading stdin: %w", err)
		}
	} else {
		source, err = afero.ReadFile(fs, path)
		if err != nil {
			return errors.Errorf("reading %s: %w", path, err)
		}
	}

	var root *element.Element
	if path == "" {
		root, err = p.ParseString(ctx, string(source))
	} else {
		root, err = p.ParseFile(ctx, path)
	}
	if err != nil {
		return errors.Errorf("parsing: %w", err)
	}

	if h.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(root)
	}

	return h.renderANSI(fs, string(source), root)
}

func (h *handler) renderANSI(fs afero.Fs, source string, root *element.Element) error {
	if h.themePath == "" {
		return errors.New("--theme is required for an ANSI render (or pass --json)")
	}
	themeBytes, err := afero.ReadFile(fs, h.themePath)
	if err != nil {
		return errors.Errorf("reading theme: %w", err)
	}
	var themeJSON theme.ThemeJSON
	if err := json.Unmarshal(themeBytes, &themeJSON); err != nil {
		return errors.Errorf("parsing theme JSON: %w", err)
	}
	t := theme.ParseTheme(themeJSON)

	mapping := t.MapElement(root)

	cur := -1
	for i, chr := range source {
		if cur < len(mapping)-1 && mapping[cur+1].Offset == i {
			cur++
			tok := mapping[cur].TokenColor
			if !h.transparent {
				if tok.Foreground == nil {
					tok.Foreground = t.Foreground
				}
				if tok.Background == nil {
					tok.Background = t.Background
				}
			}
			writeCSI(os.Stdout, tok)
		}
		fmt.Printf("%c", chr)
	}
	fmt.Print("\033[0m\n")
	return nil
}

func writeCSI(w *os.File, tok theme.TokenColor) {
	var csi bytes.Buffer
	csi.WriteString("\033[0")
	if tok.FontStyle.Has(theme.Bold) {
		csi.WriteString(";1")
	}
	if tok.FontStyle.Has(theme.Italic) {
		csi.WriteString(";3")
	}
	if tok.FontStyle.Has(theme.Underline) {
		csi.WriteString(";4")
	}
	if tok.FontStyle.Has(theme.Strikethrough) {
		csi.WriteString(";9")
	}
	if tok.Foreground != nil {
		r, g, b, _ := tok.Foreground.RGBA()
		fmt.Fprintf(&csi, ";38;2;%d;%d;%d", r>>8, g>>8, b>>8)
	}
	if tok.Background != nil {
		r, g, b, _ := tok.Background.RGBA()
		fmt.Fprintf(&csi, ";48;2;%d;%d;%d", r>>8, g>>8, b>>8)
	}
	csi.WriteByte('m')
	csi.WriteTo(w)
}

func readAll(f *os.File) ([]byte, error) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(f)
	return buf.Bytes(), err
}
