package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dgnsrekt/narrate/internal/engine"
)

var depsCmd = &cobra.Command{
	Use:   "deps",
	Short: "Check external tool availability",
	Long:  paragraph(fmt.Sprintf("\nCheck which %s are available on this machine, with install hints for anything missing.", keyword("external tools"))),
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		fmt.Print(engine.Report(engine.CheckDependencies()))
		return nil
	},
}
