package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dshills/hotelcritic/internal/lexicon"
)

func newLexiconsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lexicons",
		Short: "List built-in lexicons",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := lexicon.List()
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
