package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/afero"

	"grimm.is/netgen/internal/generate"
	"grimm.is/netgen/internal/i18n"
)

// ErrDiffers is returned by RunDiff when generate would change the root.
var ErrDiffers = errors.New("generated files differ")

// RunDiff compares what generate would write with the files below the root
// directory. Secret values are redacted unless showSecrets is set.
func RunDiff(opts Options, showSecrets bool) error {
	s, err := setup(opts)
	if err != nil {
		return err
	}

	net, err := loadNetwork(s)
	if err != nil {
		return err
	}
	plan, err := generate.Build(net)
	if err != nil {
		return err
	}

	changes, err := generate.Diff(afero.NewOsFs(), s.RootDir, plan, generate.DiffOptions{ShowSecrets: showSecrets})
	if err != nil {
		return fmt.Errorf("failed to compare: %w", err)
	}
	if len(changes) == 0 {
		Printer.Fprintf(Stdout, i18n.MsgNoChanges)
		return nil
	}

	bold := color.New(color.Bold)
	for _, c := range changes {
		bold.Fprintf(Stdout, "%s %s\n", c.Kind, c.Path)
		printDiff(c.Diff)
	}
	Printer.Fprintf(Stdout, i18n.MsgChanged, len(changes))
	return ErrDiffers
}

func printDiff(text string) {
	var (
		add  = color.New(color.FgGreen)
		del  = color.New(color.FgRed)
		hunk = color.New(color.FgCyan)
	)
	for _, line := range strings.SplitAfter(text, "\n") {
		switch {
		case line == "":
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			fmt.Fprint(Stdout, line)
		case strings.HasPrefix(line, "@@"):
			hunk.Fprint(Stdout, line)
		case strings.HasPrefix(line, "+"):
			add.Fprint(Stdout, line)
		case strings.HasPrefix(line, "-"):
			del.Fprint(Stdout, line)
		default:
			fmt.Fprint(Stdout, line)
		}
	}
}
