package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var version = ""

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terraplen",
		Short: "Scrape product detail pages of regional storefronts",
		Long: `terraplen fetches product detail pages from regional storefronts, recognizes
the page layout (variant families, single products, books, movies, Kindle
editions, streaming titles) and prints the normalized entity as JSON.

Configuration is read from the environment and an optional .env file.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(NewProductCmd())
	cmd.AddCommand(NewCountriesCmd())

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func getVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}
