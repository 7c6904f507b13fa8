package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justestif/genrefixer/internal/console"
	"github.com/justestif/genrefixer/internal/db"
	"github.com/justestif/genrefixer/internal/library"
	libsync "github.com/justestif/genrefixer/internal/sync"
)

func newImportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import paths...",
		Short: "Copy the artist fields of audio files into the library database.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.log.Sync()

			if a.cfg.DatabaseURL == "" {
				return errors.New("import requires DATABASE_URL")
			}
			database, err := db.New(ctx, a.cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("connecting to database: %w", err)
			}
			defer database.Close()

			if err := database.Migrate(ctx); err != nil {
				return err
			}

			selected, _ := cmd.Flags().GetBool("select")
			svc := libsync.New(database.Tracks(), libsync.WithSelected(selected))

			files := library.NewFiles(args, library.WithFilesLogger(a.log.Named("library")))
			result, err := svc.ImportFiles(ctx, files)
			if err != nil {
				return err
			}

			console.Success.Fprintf(cmd.OutOrStdout(), "Imported %d tracks\n", result.TracksCount)
			return nil
		},
	}

	cmd.Flags().Bool("select", true, "Mark imported tracks as selected")
	return cmd
}
