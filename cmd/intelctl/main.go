package main

import (
	"fmt"
	"os"

	"github.com/agencyops/seo-intel/cmd/intelctl/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "intelctl",
		Short: "Operations tool for the SEO intelligence pipeline",
		Long:  "CLI tool for managing sources and triggering digest runs",
	}

	rootCmd.AddCommand(commands.NewSourcesCmd())
	rootCmd.AddCommand(commands.NewDigestCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
