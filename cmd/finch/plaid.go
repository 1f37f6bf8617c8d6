package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/osirenko/finch/internal/importer"
)

func importPlaidCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-plaid",
		Short: "Import transactions from Plaid",
		Long: `Pull transactions from accounts linked through Plaid. Credentials
come from the config file or FINCH_PLAID_* environment variables:

  plaid:
    client_id: "..."
    secret: "..."
    environment: "production"
    access_token: "..."`,
		RunE: runImportPlaid,
	}

	cmd.Flags().String("start", "", "start date YYYY-MM-DD (default 30 days ago)")
	cmd.Flags().String("end", "", "end date YYYY-MM-DD (default today)")
	cmd.Flags().BoolP("dry-run", "d", false, "preview import without saving")

	return cmd
}

func runImportPlaid(cmd *cobra.Command, _ []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	start, err := dateFlag(cmd, "start", time.Now().AddDate(0, 0, -30))
	if err != nil {
		return err
	}
	end, err := dateFlag(cmd, "end", time.Now())
	if err != nil {
		return err
	}

	source, err := importer.NewPlaidSource(importer.PlaidConfig{
		ClientID:    viper.GetString("plaid.client_id"),
		Secret:      viper.GetString("plaid.secret"),
		Environment: viper.GetString("plaid.environment"),
		AccessToken: viper.GetString("plaid.access_token"),
	})
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	slog.Info("fetching transactions from Plaid",
		"start", start.Format("2006-01-02"),
		"end", end.Format("2006-01-02"))

	transactions, err := source.Fetch(ctx, start, end)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		slog.Info("no transactions in range")
		return nil
	}

	if dryRun {
		for _, tr := range transactions {
			fmt.Printf("%s  %-30s %10s  %s\n",
				tr.OccurredAt, tr.Merchant, formatSigned(tr.Amount), tr.Category)
		}
		slog.Info("dry run complete", "transactions", len(transactions))
		return nil
	}

	s, c := newSession(nil)
	defer s.Close()

	if err := c.Add(ctx, transactions); err != nil {
		return err
	}

	slog.Info("import complete", "transactions", len(transactions))
	return nil
}

func dateFlag(cmd *cobra.Command, name string, fallback time.Time) (time.Time, error) {
	value, _ := cmd.Flags().GetString(name)
	if value == "" {
		return fallback, nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s date %q: %w", name, value, err)
	}
	return parsed, nil
}
