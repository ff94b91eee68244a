package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ludo-technologies/vibescan/domain"
	"github.com/ludo-technologies/vibescan/internal/constants"
	"github.com/ludo-technologies/vibescan/internal/version"
)

// ExitError carries the process exit code for a failed command
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// commandError classifies an error returned by a command's own logic. Path and
// configuration problems are the caller's to fix; anything else is internal.
func commandError(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	if domain.IsUserError(err) {
		return &ExitError{Code: constants.ExitUsageError, Err: err}
	}
	return &ExitError{Code: constants.ExitInternalError, Err: err}
}

// exitCode maps an error from Execute to a process exit code. Errors raised by
// cobra itself (unknown flags or commands, bad arguments) are usage errors.
func exitCode(err error) int {
	if err == nil {
		return constants.ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return constants.ExitUsageError
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   constants.ToolName,
		Short: "vibescan - code health scanner for AI-assisted codebases",
		Long: `vibescan scans a source tree for the signals that AI-generated code tends to
leave behind: duplication, verbose naming, dead code, missing tests and more.
It condenses them into a 0-100 health score and a ranked list of fix prompts
you can paste back into your assistant.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(initCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(versionCmd())
	return rootCmd
}

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				fmt.Fprintln(cmd.OutOrStdout(), version.GetFullVersion())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", constants.ToolName, version.GetVersion())
			}
		},
	}

	cmd.Flags().BoolP("verbose", "v", false, "Show detailed version information")
	return cmd
}
