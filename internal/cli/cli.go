// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/vk/monograph/internal/affected"
	"github.com/vk/monograph/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	flagSet := flag.NewFlagSet("monograph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
monograph - dependency-graph core for monorepo build orchestration.

Usage:
  monograph [options] [WORKSPACE_PATH]

Arguments:
  WORKSPACE_PATH
    Path to the workspace root. Defaults to the current directory.

With no query options, prints the workspace's topological build order.

Options:
`)
		flagSet.PrintDefaults()
	}

	workspaceFlag := flagSet.String("workspace", "", "Path to the workspace root.")
	wFlag := flagSet.String("w", "", "Path to the workspace root (shorthand).")
	formatFlag := flagSet.String("format", "hcl", "Workspace configuration format. Options: 'hcl' or 'yaml'.")
	queryFlag := flagSet.String("query", "", "Project selection expression, e.g. 'type=library && tag=shared'.")
	changedFlag := flagSet.String("changed", "", "Comma-separated changed file paths for affected computation.")
	directionFlag := flagSet.String("direction", "none", "Affected expansion direction. Options: 'none', 'downstream', 'upstream', 'both'.")
	fingerprintFlag := flagSet.String("fingerprint", "", "Project ID to fingerprint.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "warn", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	path := "."
	if *workspaceFlag != "" {
		path = *workspaceFlag
	} else if *wFlag != "" {
		path = *wFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	direction, err := affected.ParseDirection(strings.ToLower(*directionFlag))
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	var changed []string
	for _, p := range strings.Split(*changedFlag, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			changed = append(changed, trimmed)
		}
	}

	config, err := app.NewConfig(app.Config{
		WorkspacePath: path,
		Format:        strings.ToLower(*formatFlag),
		Query:         *queryFlag,
		Changed:       changed,
		Direction:     direction,
		FingerprintID: *fingerprintFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	return config, false, nil
}
