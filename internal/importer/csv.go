package importer

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
)

// CSVImporter parses generic bank CSV exports. The header row names the
// columns; recognized aliases cover the common export dialects.
type CSVImporter struct{}

// NewCSVImporter creates a generic CSV importer.
func NewCSVImporter() *CSVImporter {
	return &CSVImporter{}
}

// Column aliases accepted for each field, in preference order.
var (
	amountColumns   = []string{"amount", "debit", "credit"}
	dateColumns     = []string{"datetime", "date"}
	merchantColumns = []string{"merchant", "description"}
)

// Parse reads a header-described CSV statement. Rows with an unparsable
// amount are skipped rather than failing the whole import.
func (p *CSVImporter) Parse(_ context.Context, reader io.Reader) ([]model.NewTransaction, error) {
	r := csv.NewReader(reader)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var transactions []model.NewTransaction
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		field := func(names ...string) string {
			for _, name := range names {
				if i, ok := columns[name]; ok && i < len(record) {
					if v := strings.TrimSpace(record[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		amountStr := field(amountColumns...)
		amount, err := strconv.ParseFloat(amountStr, 64)
		if err != nil {
			continue
		}
		// Debit columns list outflows as positive figures.
		if _, hasAmount := columns["amount"]; !hasAmount {
			if i, ok := columns["debit"]; ok && i < len(record) && strings.TrimSpace(record[i]) != "" && amount > 0 {
				amount = -amount
			}
		}

		transactions = append(transactions, model.NewTransaction{
			Amount:     amount,
			Currency:   model.DefaultCurrency,
			OccurredAt: normalizeDatetime(field(dateColumns...)),
			Merchant:   field(merchantColumns...),
			Card:       field("card"),
			Category:   field("category"),
			Tags:       model.NormalizeTags(strings.Split(field("tags"), ",")),
		})
	}

	if len(transactions) == 0 {
		return nil, common.ErrNoTransactions
	}
	return transactions, nil
}

// normalizeDatetime upgrades a bare calendar date to the datetime form the
// API stores. Values already carrying a time component pass through.
func normalizeDatetime(s string) string {
	if s == "" || strings.Contains(s, "T") {
		return s
	}
	if t := model.ParseOccurredAt(s); !t.IsZero() {
		return t.Format("2006-01-02T15:04")
	}
	return s
}
