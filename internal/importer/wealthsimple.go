package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"time"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
)

// WealthsimpleImporter parses the activity feed JSON exported from the
// Wealthsimple GraphQL API. Only spending entries (amountSign "negative")
// are imported; transfers and deposits are dropped.
type WealthsimpleImporter struct {
	categorizer *Categorizer
}

// NewWealthsimpleImporter creates a Wealthsimple activity importer. A nil
// categorizer leaves every transaction in UnknownCategory.
func NewWealthsimpleImporter(categorizer *Categorizer) *WealthsimpleImporter {
	return &WealthsimpleImporter{categorizer: categorizer}
}

type wealthsimpleEdge struct {
	Node struct {
		Amount        string `json:"amount"`
		AmountSign    string `json:"amountSign"`
		OccurredAt    string `json:"occurredAt"`
		SpendMerchant string `json:"spendMerchant"`
	} `json:"node"`
}

// Parse reads the activity edge list and returns spending transactions.
func (p *WealthsimpleImporter) Parse(_ context.Context, reader io.Reader) ([]model.NewTransaction, error) {
	var edges []wealthsimpleEdge
	if err := json.NewDecoder(reader).Decode(&edges); err != nil {
		return nil, fmt.Errorf("failed to decode Wealthsimple activity: %w", err)
	}

	var transactions []model.NewTransaction
	for _, edge := range edges {
		node := edge.Node
		if node.AmountSign != "negative" {
			continue
		}
		amount, err := strconv.ParseFloat(node.Amount, 64)
		if err != nil {
			continue
		}

		occurredAt := node.OccurredAt
		if t, err := time.Parse(time.RFC3339, node.OccurredAt); err == nil {
			occurredAt = t.Format("2006-01-02T15:04")
		}

		transactions = append(transactions, model.NewTransaction{
			Amount:     -math.Abs(amount),
			Currency:   model.DefaultCurrency,
			OccurredAt: occurredAt,
			Merchant:   node.SpendMerchant,
			Card:       "wealthsimple",
			Category:   p.categorizer.Categorize(node.SpendMerchant),
		})
	}

	if len(transactions) == 0 {
		return nil, common.ErrNoTransactions
	}
	return transactions, nil
}
