package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/maltedev/terraplen/internal/locale"
)

func NewCountriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the supported storefronts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "DOMAIN\tCODE\tNAME\tLANGUAGE\tCURRENCY")
			for _, domain := range locale.Domains() {
				m, err := locale.Lookup(domain)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", m.Domain, m.Code, m.Name, m.DefaultLanguage, m.Currency)
			}
			return w.Flush()
		},
	}
}
