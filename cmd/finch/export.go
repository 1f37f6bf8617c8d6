package main

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/osirenko/finch/internal/derive"
	"github.com/osirenko/finch/internal/sheets"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a grouped report to Google Sheets",
		Long: `Fetch transactions, apply the given view filters, and write the
grouped report to a spreadsheet. Sheets credentials come from the
config file:

  sheets:
    service_account_path: "/path/to/key.json"
    spreadsheet_id: "..."`,
		RunE: runExport,
	}

	cmd.Flags().String("view", "", "view query string, e.g. \"categories=food&groupBy=month\"")

	return cmd
}

func runExport(cmd *cobra.Command, _ []string) error {
	viewQuery, _ := cmd.Flags().GetString("view")
	params, err := url.ParseQuery(viewQuery)
	if err != nil {
		return fmt.Errorf("invalid view query: %w", err)
	}

	s, c := newSession(params)
	defer s.Close()
	engine := derive.NewEngine(s)

	ctx := cmd.Context()
	if err := c.FetchAll(ctx); err != nil {
		return err
	}
	if !s.LoggedIn() {
		return fmt.Errorf("not logged in; run finch login first")
	}

	config := sheets.DefaultConfig()
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	if name := viper.GetString("sheets.spreadsheet_name"); name != "" {
		config.SpreadsheetName = name
	}
	if tz := viper.GetString("sheets.time_zone"); tz != "" {
		config.TimeZone = tz
	}

	writer, err := sheets.NewWriter(ctx, config, slog.Default())
	if err != nil {
		return err
	}

	mode := s.GroupMode.Get()
	groups := engine.Grouped.Get()
	summary := derive.Summarize(engine.Filtered.Get())

	started := time.Now()
	if err := writer.WriteReport(ctx, mode, groups, summary); err != nil {
		return err
	}

	slog.Info("export finished",
		"groups", len(groups),
		"transactions", summary.Count,
		"took", time.Since(started).Round(time.Millisecond))
	return nil
}
