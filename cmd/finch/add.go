package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/osirenko/finch/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a single transaction",
		Long: `Record one transaction by hand. Spending is negative:

  finch add --amount=-12.50 --merchant="Save-On" --date=2024-03-01 --category=food`,
		RunE: runAdd,
	}

	cmd.Flags().Float64("amount", 0, "signed amount (negative for spending)")
	cmd.Flags().String("merchant", "", "merchant name")
	cmd.Flags().String("date", "", "date (YYYY-MM-DD or YYYY-MM-DDTHH:MM)")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("currency", "", "ISO currency code (default CAD)")
	cmd.Flags().String("card", "", "card or account the charge went through")
	cmd.Flags().String("details", "", "free-form note")
	cmd.Flags().StringSlice("tags", nil, "tags to attach")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("merchant")
	_ = cmd.MarkFlagRequired("date")

	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	amount, _ := cmd.Flags().GetFloat64("amount")
	merchant, _ := cmd.Flags().GetString("merchant")
	date, _ := cmd.Flags().GetString("date")
	category, _ := cmd.Flags().GetString("category")
	currency, _ := cmd.Flags().GetString("currency")
	card, _ := cmd.Flags().GetString("card")
	details, _ := cmd.Flags().GetString("details")
	tags, _ := cmd.Flags().GetStringSlice("tags")

	if !strings.Contains(date, "T") {
		date += "T00:00"
	}

	s, c := newSession(nil)
	defer s.Close()

	tr := model.NewTransaction{
		Amount:     amount,
		Currency:   currency,
		OccurredAt: date,
		Merchant:   merchant,
		Category:   category,
		Card:       card,
		Tags:       tags,
	}
	if details != "" {
		tr.Details = &details
	}

	err := c.Add(cmd.Context(), []model.NewTransaction{tr})
	if err != nil {
		return err
	}

	fmt.Printf("recorded %s at %s\n", formatSigned(amount), merchant)
	return nil
}

func formatSigned(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}
