package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/hsliu/cnstock/internal/errors"
)

// outputJSON marshals and prints JSON to stdout.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// isTerminal checks if the given file descriptor is a TTY.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// getExitCode maps error codes to CLI exit codes.
func getExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch errors.Code(err) {
	case errors.CodeInvalidParams, errors.CodeUnknownSource, errors.CodeUnsupportedFormat:
		return 2 // Bad request
	case errors.CodeAllSourcesFailed, errors.CodeSourceUnavailable, errors.CodeEmptyResult:
		return 3 // Upstream failure
	default:
		return 1 // General error
	}
}

// printError prints an error to stderr with appropriate formatting.
func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
