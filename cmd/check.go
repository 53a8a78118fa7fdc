package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"

	"grimm.is/netgen/internal/config"
	"grimm.is/netgen/internal/generate"
	"grimm.is/netgen/internal/i18n"
)

// RunCheck validates the network definitions without writing anything. With
// verbose set it lists what generate would produce.
func RunCheck(opts Options, verbose bool) error {
	s, err := setup(opts)
	if err != nil {
		return err
	}

	net, err := loadNetwork(s)
	if err != nil {
		var verrs config.ValidationErrors
		if errors.As(err, &verrs) {
			red := color.New(color.FgRed)
			Printer.Fprintf(Stdout, i18n.MsgCheckFailed, len(verrs))
			for _, e := range verrs {
				red.Fprintf(Stdout, "  %s\n", e.Error())
			}
		}
		return err
	}

	plan, err := generate.Build(net)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	total := len(net.Ethernets) + len(net.Wifis)
	color.New(color.FgGreen).Fprint(Stdout, Printer.Sprintf(i18n.MsgCheckOK, total))

	if !verbose {
		return nil
	}

	tw := tabwriter.NewWriter(Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tPATH\tMODE")
	for _, f := range plan.Files() {
		fmt.Fprintf(tw, "%s\t%s\t%04o\n", f.Kind, f.Path, f.Mode)
	}
	for _, l := range plan.Links() {
		fmt.Fprintf(tw, "unit\t%s\t-> %s\n", l.Path, l.Target)
	}
	return tw.Flush()
}
