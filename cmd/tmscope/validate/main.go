// Package validate implements "tmscope validate": construct a grammar and
// report any construction-time error without parsing anything.
package validate

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/scopeforge/tmscope/grammar"
	"github.com/scopeforge/tmscope/parser"
	"github.com/scopeforge/tmscope/registry"
)

func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <grammar.json>",
		Short: "construct a grammar and report construction-time errors",
		Args:  cobra.ExactArgs(1),
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(args[0])
	}

	return cmd
}

func run(path string) error {
	fs := afero.NewOsFs()

	g, err := grammar.Load(fs, path)
	if err != nil {
		return errors.Errorf("loading grammar: %w", err)
	}

	if _, err := parser.NewLanguageParser(g, registry.New(), parser.WithFileSystem(fs)); err != nil {
		return errors.Errorf("%s: %w", path, err)
	}

	fmt.Fprintf(os.Stdout, "%s: ok (scope %q)\n", path, g.ScopeName)
	return nil
}
