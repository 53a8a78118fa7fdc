package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"grimm.is/netgen/cmd"
	"grimm.is/netgen/internal/brand"
	"grimm.is/netgen/internal/i18n"
)

var printer = i18n.NewCLIPrinter()

// commonFlags registers the flags every command accepts.
func commonFlags(fs *flag.FlagSet) *cmd.Options {
	opts := &cmd.Options{}
	fs.StringVar(&opts.SettingsFile, "settings", "", "Settings file (default "+brand.DefaultConfigDir+"/"+brand.ConfigFileName+")")
	fs.StringVar(&opts.RootDir, "root-dir", "", "Prefix for all generated paths")
	fs.StringVar(&opts.RootDir, "r", "", "Prefix for all generated paths (short)")
	fs.StringVar(&opts.ConfigDir, "config-dir", "", "Directory with the YAML network definitions")
	fs.StringVar(&opts.ConfigDir, "c", "", "Directory with the YAML network definitions (short)")
	return opts
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch os.Args[1] {
	case "generate":
		genFlags := flag.NewFlagSet("generate", flag.ExitOnError)
		opts := commonFlags(genFlags)
		genFlags.Parse(os.Args[2:])

		if err := cmd.RunGenerate(ctx, *opts); err != nil {
			printer.Fprintf(os.Stderr, "Generate failed: %v\n", err)
			os.Exit(1)
		}

	case "check":
		checkFlags := flag.NewFlagSet("check", flag.ExitOnError)
		opts := commonFlags(checkFlags)
		verbose := checkFlags.Bool("verbose", false, "List the files generate would write")
		checkFlags.BoolVar(verbose, "v", false, "Verbose output (short)")
		checkFlags.Parse(os.Args[2:])

		if err := cmd.RunCheck(*opts, *verbose); err != nil {
			printer.Fprintf(os.Stderr, "Check failed: %v\n", err)
			os.Exit(1)
		}

	case "diff":
		diffFlags := flag.NewFlagSet("diff", flag.ExitOnError)
		opts := commonFlags(diffFlags)
		showSecrets := diffFlags.Bool("show-secrets", false, "Do not redact secret values")
		diffFlags.Parse(os.Args[2:])

		err := cmd.RunDiff(*opts, *showSecrets)
		if errors.Is(err, cmd.ErrDiffers) {
			os.Exit(1)
		}
		if err != nil {
			printer.Fprintf(os.Stderr, "Diff failed: %v\n", err)
			os.Exit(2)
		}

	case "show":
		showFlags := flag.NewFlagSet("show", flag.ExitOnError)
		opts := commonFlags(showFlags)
		showFlags.Parse(os.Args[2:])

		if err := cmd.RunShow(*opts); err != nil {
			printer.Fprintf(os.Stderr, "Show failed: %v\n", err)
			os.Exit(1)
		}

	case "version":
		printer.Print(brand.VersionInfo())

	case "help", "-h", "--help":
		printUsage()

	default:
		printer.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	printer.Printf(`%s - %s
%s

Usage:
  %s <command> [options]

Commands:
  generate  Render the network definitions below the root directory
  check     Validate the network definitions
            Options: --verbose (-v)
  diff      Show what generate would change (exit status 1 on changes)
            Options: --show-secrets
  show      Print the effective auth of every interface, secrets redacted
  version   Print version information

Common options:
  --settings <file>       Settings file
  --root-dir (-r) <dir>   Prefix for all generated paths
  --config-dir (-c) <dir> Directory with the YAML network definitions

Environment:
  %s_ROOT_DIR, %s_CONFIG_DIR, %s_LOG_LEVEL, ... override the settings file.

Examples:
  %s check -v
  %s generate --root-dir /tmp/out
  %s diff
`,
		brand.Name, brand.Description, brand.Tagline,
		brand.BinaryName,
		brand.ConfigEnvPrefix, brand.ConfigEnvPrefix, brand.ConfigEnvPrefix,
		brand.BinaryName, brand.BinaryName, brand.BinaryName)
}
