package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/windrose-ai/windrose/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "windrose",
	Short: "Windrose is a conversation engine for travel support assistants",
	Long: `Windrose drives multi-turn travel support conversations: it sharpens vague
trip requests into concrete plans, runs searches and bookings through tools,
answers policy questions and hands off to a human when the conversation
calls for it.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "windrose.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error); overrides the config")
}

func newLogger(level string) *slog.Logger {
	switch level {
	case "debug":
		return logging.New(slog.LevelDebug)
	case "warn":
		return logging.New(slog.LevelWarn)
	case "error":
		return logging.New(slog.LevelError)
	default:
		return logging.New(slog.LevelInfo)
	}
}
