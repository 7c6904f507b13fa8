// Package dialog asks for run settings on the terminal before a run starts.
package dialog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/justestif/genrefixer/internal/config"
	"github.com/justestif/genrefixer/internal/console"
)

// ErrCancelled is returned when the user quits the dialog.
var ErrCancelled = errors.New("cancelled by user")

const intro = `GenreFixer adds descriptive metadata to your music. Tags are gathered
from Last.fm and written into the grouping field of the selected tracks.
Anything already in that field will be overwritten.`

// Prompt asks for SetGenre, MinScrobs and MaxTags, showing the current
// values of cfg as defaults. An empty answer keeps the default and "q" at any
// question cancels. cfg is only modified when every answer was valid.
func Prompt(in io.Reader, out io.Writer, cfg *config.Config) error {
	r := bufio.NewReader(in)

	console.Info.Fprintln(out, intro)
	fmt.Fprintln(out, "Enter q at any prompt to cancel.")
	fmt.Fprintln(out)

	next := *cfg

	setGenre, err := askBool(r, out, "Set the genre field?", cfg.SetGenre)
	if err != nil {
		return err
	}
	next.SetGenre = setGenre

	if next.MinScrobs, err = askInt(r, out, "Minimum popularity of tag", cfg.MinScrobs); err != nil {
		return err
	}
	if next.MaxTags, err = askInt(r, out, "Maximum tags to save", cfg.MaxTags); err != nil {
		return err
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*cfg = next
	return nil
}

// ask reads one answer. EOF on an empty line counts as cancel.
func ask(r *bufio.Reader, out io.Writer, question, def string) (string, error) {
	console.Prompt.Fprintf(out, "%s [%s]: ", question, def)

	line, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", ErrCancelled
	}

	answer := strings.TrimSpace(line)
	if strings.EqualFold(answer, "q") {
		return "", ErrCancelled
	}
	return answer, nil
}

func askBool(r *bufio.Reader, out io.Writer, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	answer, err := ask(r, out, question, hint)
	if err != nil {
		return false, err
	}

	switch strings.ToLower(answer) {
	case "":
		return def, nil
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q is not yes or no", config.ErrInvalid, answer)
	}
}

func askInt(r *bufio.Reader, out io.Writer, question string, def int) (int, error) {
	answer, err := ask(r, out, question+" (integer)", strconv.Itoa(def))
	if err != nil {
		return 0, err
	}
	if answer == "" {
		return def, nil
	}

	n, err := strconv.Atoi(answer)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", config.ErrInvalid, answer)
	}
	return n, nil
}
