// Package cli implements locctl, the operator tool for inspecting a location feed offline.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"dropoff-locator/internal/feed"
	"dropoff-locator/internal/service"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Exit codes returned by Execute.
const (
	ExitOK          = 0
	ExitError       = 1
	ExitUsage       = 2
	ExitRowsDropped = 3
)

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return ""
}

// usageError marks a problem with how the command was invoked.
type usageError struct {
	err error
}

func (e *usageError) Error() string {
	return e.err.Error()
}

func (e *usageError) Unwrap() error {
	return e.err
}

func newUsageError(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

type sourceFlags struct {
	File    string
	URL     string
	Timeout time.Duration
	Format  string
	Verbose bool
}

func addSourceFlags(cmd *cobra.Command, flags *sourceFlags) {
	cmd.Flags().StringVar(&flags.File, "file", "", "Path to a CSV export of the location sheet.")
	cmd.Flags().StringVar(&flags.URL, "url", "", "URL of the published CSV sheet.")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 10*time.Second, "Timeout for --url fetches.")
	cmd.Flags().StringVar(&flags.Format, "format", "table", "Output format: table, json, or yaml.")
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "Log dropped rows to stderr.")
}

func validateSourceFlags(cmd *cobra.Command) error {
	file, url := cmd.Flags().Changed("file"), cmd.Flags().Changed("url")
	switch {
	case file && url:
		return newUsageError("--file and --url cannot be used together")
	case !file && !url:
		return newUsageError("one of --file or --url is required")
	}
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return newUsageError("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

func requireFlags(cmd *cobra.Command, names ...string) error {
	for _, name := range names {
		if !cmd.Flags().Changed(name) {
			return newUsageError("required flag --%s not set", name)
		}
	}
	return nil
}

func (f sourceFlags) source() service.Source {
	if strings.TrimSpace(f.File) != "" {
		return feed.NewFileSource(f.File)
	}
	return feed.NewHTTPSource(f.URL, feed.WithTimeout(f.Timeout))
}

func (f sourceFlags) logger(cmd *cobra.Command) zerolog.Logger {
	if !f.Verbose {
		return zerolog.Nop()
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		With().Timestamp().Logger()
}

// NewRootCommand builds the complete command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "locctl",
		Short:         "Validate the drop-off location feed and run nearest lookups against it.",
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return newUsageError("unknown command %q for %q", args[0], cmd.CommandPath())
			}
			return cmd.Help()
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	root.AddCommand(newCheckCommand())
	root.AddCommand(newNearestCommand())

	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout io.Writer, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	// cobra reads os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}
	var controlled *exitError
	if errors.As(err, &controlled) {
		return controlled.code
	}

	_, _ = fmt.Fprintln(stderr, err.Error())
	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitError
}
