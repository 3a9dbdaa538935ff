package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"devboard/internal/cmd"
	"devboard/internal/config"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=..."
var (
	Commit    = "unknown"
	Date      = "unknown"
	GoVersion = "unknown"
	Version   = "dev"
)

const description = "Project, epic and agent bookkeeping for coding agents"

// Exit codes
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses args, executes the selected command and returns the exit code
func run(args []string, stdout, stderr io.Writer) int {
	settings, err := config.LoadSettings()
	if err != nil {
		fmt.Fprintf(stderr, "Warning: failed to load settings: %v\n", err)
		settings = &config.Settings{}
	}

	// The container is opened in CLI.AfterApply once logging is set up
	var cli cmd.CLI
	cli.SetSettings(settings)
	parser, err := kong.New(&cli,
		kong.Name("devboard"),
		kong.Description(description),
		kong.Vars{"version": fmt.Sprintf("devboard %s (commit: %s, built: %s, go: %s)", Version, Commit, Date, GoVersion)},
		kong.Writers(stdout, stderr),
		kong.Bind(&cli),
	)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	kctx, err := parser.Parse(args)
	if err != nil {
		var parseErr *kong.ParseError
		if errors.As(err, &parseErr) && parseErr.Context != nil {
			_ = parseErr.Context.PrintUsage(true)
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		// AfterApply may already have opened the database
		_ = cli.Close()
		return exitUsage
	}

	err = kctx.Run()
	if closeErr := cli.Close(); closeErr != nil {
		fmt.Fprintf(stderr, "Warning: failed to close database: %v\n", closeErr)
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	return exitOK
}
