// Package main is the command-line entry point of the task extractor. It
// walks one ClickUp space, filters and maps its tasks, optionally enriches
// them with generated summaries, and writes JSON lines.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/phrazzld/task-extractor/internal/clickup"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Process exit codes.
const (
	exitOK             = 0
	exitFailure        = 1
	exitAuthentication = 2
	exitShardRouting   = 3
)

func main() {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand(viper.New())
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
	}
	stop()
	os.Exit(exitCode(err))
}

// exitCode maps a run error onto the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, clickup.ErrAuthentication):
		return exitAuthentication
	case errors.Is(err, clickup.ErrShardRouting):
		return exitShardRouting
	default:
		return exitFailure
	}
}

// newRootCommand builds the CLI. Flags are bound to v so they take
// precedence over the config file and the environment.
func newRootCommand(v *viper.Viper) *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:           "extractor",
		Short:         "Export ClickUp tasks as JSON lines",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), v, configFile, cmd.OutOrStdout())
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "path to a YAML config file")
	flags.String("workspace", "", "workspace name")
	flags.String("space", "", "space name")
	flags.Bool("include-completed", false, "keep completed and archived tasks")
	flags.StringSlice("exclude-status", nil, "status to drop (repeatable)")
	flags.String("date-filter", "", "AllOpen, ThisWeek or LastWeek")
	flags.Bool("ai-summary", false, "generate notes with the language model")
	flags.StringP("output", "o", "", `output file, "-" for stdout`)
	flags.Int("concurrency", 0, "summary workers")
	flags.String("log-level", "", "debug, info, warn or error")
	flags.String("log-format", "", "text or json")
	flags.String("metrics-addr", "", "serve /metrics and /healthz on this address")

	bindings := map[string]string{
		"extract.workspace":         "workspace",
		"extract.space":             "space",
		"extract.include_completed": "include-completed",
		"extract.exclude_statuses":  "exclude-status",
		"extract.date_filter":       "date-filter",
		"llm.enabled":               "ai-summary",
		"extract.output":            "output",
		"extract.concurrency":       "concurrency",
		"log.level":                 "log-level",
		"log.format":                "log-format",
		"metrics.addr":              "metrics-addr",
	}
	for key, name := range bindings {
		// BindPFlag only fails on a nil flag, which the table rules out.
		_ = v.BindPFlag(key, flags.Lookup(name))
	}

	return cmd
}
