// Package main is the entry point for the docmorph CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/docmorph/internal/config"
)

// rootCmd is the base command for the docmorph CLI.
var rootCmd = &cobra.Command{
	Use:   "docmorph",
	Short: "Convert documents between Markdown, DOCX, PDF and LaTeX",
	Long: `docmorph converts documents between Markdown, Word (DOCX), PDF and LaTeX.

Files are converted next to their source; directories are scanned and their
outputs written to MD/, DOCX/, PDF/ and TEX/ folders inside them. The serve
command exposes the same conversions over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		logFormat, _ := cmd.Flags().GetString("log-format")
		level := "warn"
		if verbose {
			level = "debug"
		}
		slog.SetDefault(newLogger(level, logFormat, os.Stderr))
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docmorph.yaml or ~/.config/docmorph/docmorph.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log per-file and per-request details")
	rootCmd.PersistentFlags().String("log-format", "text", "log format: text or json")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	if used != "" {
		fmt.Fprintln(os.Stderr, "Using config file:", used)
	}
}

// newLogger creates a logger writing to w at the named level.
func newLogger(levelStr, formatStr string, w io.Writer) *slog.Logger {
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	if formatStr == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
