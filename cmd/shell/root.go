package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/signaldeck/shell-engine/engine"
	"github.com/signaldeck/shell-engine/observability"
)

var (
	configFile   string
	verbose      bool
	observerName string
)

var rootCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive smart-home data shell",
	Long: `shell is an interactive console for exploring smart-home data.

Script snippets run in a sandboxed interpreter that pauses whenever it
needs host data; the console answers those calls from a built-in fixture
dataset and resumes the snippet. Magic commands (:ls, :get, :hist, ...)
provide shortcuts for common lookups.`,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config JSON file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging to stderr")
	sinks := "console, " + strings.Join(observability.ObserverNames(), ", ")
	rootCmd.PersistentFlags().StringVar(&observerName, "observer", "console", "event sink: "+sinks)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(evalCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildEngine constructs an engine from the --config file, or defaults,
// wired to a stderr slog observer.
func buildEngine() (*engine.Engine, error) {
	cfg := engine.DefaultConfig()
	if configFile != "" {
		loaded, err := engine.LoadConfig(configFile)
		if err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	console := observability.NewSlogObserver(logger)
	if !verbose {
		console = console.WithMinLevel(observability.LevelWarning)
	}
	observability.RegisterObserver("console", console)

	observer, err := observability.GetObserver(observerName)
	if err != nil {
		return nil, err
	}

	e, err := engine.New(&cfg, engine.WithObserver(observer))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	return e, nil
}
