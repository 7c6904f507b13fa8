package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"
)

func newGenresCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List the canonical genres, or the phonetic index with --keys.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			out := cmd.OutOrStdout()
			if keys, _ := cmd.Flags().GetBool("keys"); keys {
				mapping := a.index.Mapping()
				for _, k := range slices.Sorted(maps.Keys(mapping)) {
					fmt.Fprintf(out, "%s\t%s\n", k, mapping[k])
				}
				return nil
			}

			for _, g := range a.index.Genres() {
				fmt.Fprintln(out, g)
			}
			return nil
		},
	}

	cmd.Flags().Bool("keys", false, "Print every phonetic key with the genre it resolves to")
	return cmd
}
