package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/genrefixer/internal/console"
)

func newLookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup ARTIST [ALBUM_ARTIST]",
		Short: "Resolve the genre and tags of an artist without touching the library.",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			res, err := a.newResolver(cmd.Context(), 1)
			if err != nil {
				return err
			}
			result := res.Lookup(cmd.Context(), args...)

			out := cmd.OutOrStdout()
			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			if result.Tags == "" {
				console.Warning.Fprintln(out, "No tags found")
				return nil
			}
			fmt.Fprintf(out, "Genre:\t%s\nTags:\t%s\n", result.Genre, result.Tags)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Print the result as JSON")
	return cmd
}
