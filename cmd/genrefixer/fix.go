package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/justestif/genrefixer/internal/console"
	"github.com/justestif/genrefixer/internal/db"
	"github.com/justestif/genrefixer/internal/dialog"
	"github.com/justestif/genrefixer/internal/fixer"
	"github.com/justestif/genrefixer/internal/library"
)

func newFixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [paths...]",
		Short: "Tag the selected tracks: files and directories, or the database selection with --db.",
		RunE:  runFix,
	}

	cmd.Flags().Bool("db", false, "Tag the selected rows of the library database instead of files")
	cmd.Flags().Bool("dry-run", false, "Resolve genres but do not write anything")
	cmd.Flags().Bool("progress", false, "Show a progress bar")
	cmd.Flags().Bool("dialog", false, "Ask for settings interactively before starting")
	cmd.Flags().Bool("set-genre", true, "Also write the genre field; overrides GENREFIXER_SET_GENRE")

	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.log.Sync()

	useDB, _ := cmd.Flags().GetBool("db")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	showProgress, _ := cmd.Flags().GetBool("progress")
	askSettings, _ := cmd.Flags().GetBool("dialog")

	if !useDB && len(args) == 0 {
		return errors.New("no paths given (pass files or directories, or use --db)")
	}

	if askSettings {
		if stdinIsInteractive() {
			if err := dialog.Prompt(os.Stdin, cmd.OutOrStdout(), a.cfg); err != nil {
				return err
			}
		} else {
			console.Warning.Fprintln(cmd.ErrOrStderr(), "Warning: --dialog needs an interactive terminal, using environment and flags.")
		}
	}

	var driver library.Driver
	if useDB {
		if a.cfg.DatabaseURL == "" {
			return errors.New("--db requires DATABASE_URL")
		}
		database, err := db.New(ctx, a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		driver = library.NewPostgres(database.Tracks(), dryRun, a.log.Named("library"))
	} else {
		driver = library.NewFiles(args,
			library.WithDryRun(dryRun),
			library.WithFilesLogger(a.log.Named("library")),
		)
	}

	res, err := a.newResolver(ctx, 1)
	if err != nil {
		return err
	}

	opts := []fixer.Option{fixer.WithLogger(a.log.Named("fixer"))}
	var bar *pb.ProgressBar
	if showProgress && console.IsTTY() {
		bar = pb.New(0)
		bar.SetWriter(os.Stderr)
		bar.SetTemplateString(`{{ string . "prefix" }} {{ bar . }} {{ counters . }} | ETA {{ rtime . "%s" }}`)
		bar.Set("prefix", "Tagging")
		opts = append(opts,
			fixer.WithStart(func(total int) {
				bar.SetTotal(int64(total))
				bar.Start()
			}),
			fixer.WithProgress(func(fixer.Outcome) { bar.Increment() }),
		)
	}

	summary, err := fixer.New(driver, res, fixer.Options{SetGenre: a.cfg.SetGenre}, opts...).Run(ctx)
	if bar != nil {
		bar.Finish()
	}
	return reportRun(cmd.OutOrStdout(), summary, err)
}

// stdinIsInteractive is replaced in tests.
var stdinIsInteractive = console.IsInteractive

// reportRun prints the counts of a finished or interrupted run and passes err
// through. A run that failed before tagging anything prints nothing.
func reportRun(w io.Writer, s fixer.Summary, err error) error {
	switch {
	case err == nil:
		console.Success.Fprintln(w, "\nDone!")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		console.Warning.Fprintf(w, "\nInterrupted after %d of %d tracks.\n", s.Tagged+s.Skipped+s.Identical, s.Total)
	default:
		return err
	}

	fmt.Fprintf(w, "\nTags Found:\t%d\nSkipped:\t%d\nIdentical:\t%d\n", s.Tagged, s.Skipped, s.Identical)
	return err
}
