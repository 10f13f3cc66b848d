package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tsawler/docmorph/batch"
	"github.com/tsawler/docmorph/internal/config"
)

var convertCmd = &cobra.Command{
	Use:   "convert [paths...]",
	Short: "Convert files or folders",
	Long: `Convert transforms each named file, or every convertible file in each named
directory. Without --to, Markdown becomes DOCX and every other format becomes
Markdown. Existing outputs are skipped unless --overwrite is given.

Supported directions:
  md   -> docx, pdf, tex
  docx -> md, pdf, tex
  pdf  -> md, tex
  tex  -> md, docx, pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("to", "", "target format: md, docx, pdf or tex")
	convertCmd.Flags().StringP("output", "o", "", "output file (single input file only)")
	convertCmd.Flags().BoolP("recursive", "r", false, "scan directories recursively")
	convertCmd.Flags().Bool("overwrite", false, "replace existing output files")
	convertCmd.Flags().Int("workers", config.DefaultWorkers, "number of concurrent conversions")
	convertCmd.Flags().Bool("strict", false, "fail files containing malformed tables")
	convertCmd.Flags().String("report", "", "write a YAML report of the run to this file")

	_ = viper.BindPFlag(config.KeyConvertTo, convertCmd.Flags().Lookup("to"))
	_ = viper.BindPFlag(config.KeyConvertRecursive, convertCmd.Flags().Lookup("recursive"))
	_ = viper.BindPFlag(config.KeyConvertOverwrite, convertCmd.Flags().Lookup("overwrite"))
	_ = viper.BindPFlag(config.KeyConvertWorkers, convertCmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag(config.KeyConvertStrict, convertCmd.Flags().Lookup("strict"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}
	to, err := cfg.Convert.Target()
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	reportPath, _ := cmd.Flags().GetString("report")

	result, err := batch.ConvertPaths(cmd.Context(), args, batch.Options{
		To:        to,
		Output:    output,
		Workers:   cfg.Convert.Workers,
		Overwrite: cfg.Convert.Overwrite,
		Recursive: cfg.Convert.Recursive,
		Strict:    cfg.Convert.Strict,
		Logger:    slog.Default(),
	})
	if err != nil {
		return err
	}
	result.Print(cmd.OutOrStdout())

	if reportPath != "" {
		f, err := os.Create(reportPath)
		if err != nil {
			return fmt.Errorf("creating report: %w", err)
		}
		if err := result.WriteReport(f); err != nil {
			f.Close()
			return fmt.Errorf("writing report: %w", err)
		}
		if err := f.Close(); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	if n := result.Count(batch.StatusFailed); n > 0 {
		return fmt.Errorf("%d of %d files failed", n, len(result.Files))
	}
	return nil
}
