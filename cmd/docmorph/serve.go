package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/docmorph/internal/config"
	"github.com/tsawler/docmorph/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve conversions over HTTP",
	Long: `Serve starts an HTTP service with three endpoints:

  POST /convert?format=docx   convert the file in the "file" form field
  POST /convert-batch         convert the files in "files", or a .zip in "file",
                              returning converted_files.zip
  GET  /health                report service health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		logger := slog.Default()
		srv := server.New(server.Options{
			MaxFileSize:  cfg.Server.MaxFileSize,
			MaxBatchSize: cfg.Server.MaxBatchSize,
			Workers:      cfg.Server.Workers,
			Logger:       logger,
		})
		return server.ListenAndServe(cmd.Context(), cfg.Server.Addr, cfg.Server.MaxConns, srv, logger)
	},
}

func init() {
	serveCmd.Flags().String("addr", config.DefaultAddr, "listen address")
	serveCmd.Flags().Int64("max-file-size", config.DefaultMaxFileSize, "largest single upload in bytes")
	serveCmd.Flags().Int64("max-batch-size", config.DefaultMaxBatchSize, "largest batch upload in bytes")
	serveCmd.Flags().Int("max-conns", config.DefaultMaxConns, "maximum concurrent connections")
	serveCmd.Flags().Int("workers", config.DefaultWorkers, "concurrent conversions per batch request")

	_ = viper.BindPFlag(config.KeyServerAddr, serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag(config.KeyServerMaxFileSize, serveCmd.Flags().Lookup("max-file-size"))
	_ = viper.BindPFlag(config.KeyServerMaxBatchSize, serveCmd.Flags().Lookup("max-batch-size"))
	_ = viper.BindPFlag(config.KeyServerMaxConns, serveCmd.Flags().Lookup("max-conns"))
	_ = viper.BindPFlag(config.KeyServerWorkers, serveCmd.Flags().Lookup("workers"))

	rootCmd.AddCommand(serveCmd)
}
