package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	tokenizecmd "github.com/scopeforge/tmscope/cmd/tmscope/tokenize"
	validatecmd "github.com/scopeforge/tmscope/cmd/tmscope/validate"
)

func main() {
	ctx := context.Background()

	cmd := &cobra.Command{
		Use:   "tmscope",
		Short: "parse text against a TextMate grammar",
	}

	cmd.AddCommand(tokenizecmd.NewTokenizeCommand())
	cmd.AddCommand(validatecmd.NewValidateCommand())

	info, ok := debug.ReadBuildInfo()
	if !ok {
		cmd.Version = "unknown"
	} else {
		cmd.Version = info.Main.Version
	}
	cmd.InitDefaultVersionFlag()
	cmd.SilenceUsage = true

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
