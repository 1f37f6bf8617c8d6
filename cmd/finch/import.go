package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/osirenko/finch/internal/importer"
	"github.com/osirenko/finch/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import transactions from bank export files",
		Long: `Import transactions from OFX/QFX downloads, CSV statements, or
Wealthsimple activity exports. The format is detected per file from the
extension and contents; override it with --format.

Examples:
  # Import a Quicken download
  finch import ~/Downloads/statement_jan_2024.qfx

  # Import all CSV statements in a directory
  finch import ~/Downloads/*.csv

  # Force the Wealthsimple parser
  finch import --format=wealthsimple activity.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImport,
	}

	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")
	cmd.Flags().String("format", "", "force a parser (csv, wealthsimple, ofx)")
	cmd.Flags().Bool("no-categorize", false, "skip automatic categorization")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	forced, _ := cmd.Flags().GetString("format")
	noCategorize, _ := cmd.Flags().GetBool("no-categorize")

	// Expand globs and collect all files
	var allFiles []string
	for _, pattern := range args {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				allFiles = append(allFiles, pattern)
			} else {
				slog.Warn("no files found matching pattern", "pattern", pattern)
			}
		} else {
			allFiles = append(allFiles, matches...)
		}
	}
	if len(allFiles) == 0 {
		return fmt.Errorf("no files found to import")
	}

	categorizer := importer.DefaultCategorizer()
	if noCategorize {
		categorizer = nil
	}

	bar := progressbar.NewOptions(len(allFiles),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Parsing files..."),
	)

	ctx := cmd.Context()
	var all []model.NewTransaction
	for _, file := range allFiles {
		parsed, err := parseFile(ctx, file, forced, categorizer)
		if err != nil {
			return fmt.Errorf("failed to parse %s: %w", file, err)
		}
		all = append(all, parsed...)
		_ = bar.Add(1)
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)

	if len(all) == 0 {
		return fmt.Errorf("no transactions found in %d file(s)", len(allFiles))
	}

	if dryRun {
		for _, tr := range all {
			fmt.Printf("%s  %-30s %10s  %s\n",
				tr.OccurredAt, tr.Merchant, formatSigned(tr.Amount), tr.Category)
		}
		slog.Info("dry run complete", "transactions", len(all), "files", len(allFiles))
		return nil
	}

	s, c := newSession(nil)
	defer s.Close()

	if err := c.Add(ctx, all); err != nil {
		return err
	}

	slog.Info("import complete", "transactions", len(all), "files", len(allFiles))
	return nil
}

func parseFile(ctx context.Context, file, forced string, categorizer *importer.Categorizer) ([]model.NewTransaction, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}

	format := importer.Format(forced)
	if forced == "" {
		format = importer.DetectFormat(file, content)
	}

	parser, err := importer.ForFormat(format, categorizer)
	if err != nil {
		return nil, err
	}
	return parser.Parse(ctx, bytes.NewReader(content))
}
