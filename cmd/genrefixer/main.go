// Command genrefixer tags music libraries with genres inferred from Last.fm
// and the iTunes catalog.
package main

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/justestif/genrefixer/internal/console"
	"github.com/justestif/genrefixer/internal/dialog"
)

func main() {
	if err := run(); err != nil {
		reportError(os.Stderr, err)
		os.Exit(1)
	}
}

func reportError(w io.Writer, err error) {
	console.Error.Fprintf(w, "Error: %v\n", err)
}

func run() error {
	console.InitializeColors()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	if errors.Is(err, dialog.ErrCancelled) {
		console.Warning.Fprintln(os.Stderr, "Cancelled, nothing was changed.")
		return nil
	}
	return err
}
