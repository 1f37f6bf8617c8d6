package importer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/plaid/plaid-go/v20/plaid"

	"github.com/osirenko/finch/internal/common"
	"github.com/osirenko/finch/internal/model"
)

// PlaidConfig holds Plaid API credentials.
type PlaidConfig struct {
	ClientID    string
	Secret      string
	Environment string // sandbox or production
	AccessToken string
}

// Validate ensures all required fields are present.
func (c *PlaidConfig) Validate() error {
	if c.ClientID == "" {
		return fmt.Errorf("%w: plaid client ID", common.ErrMissingConfig)
	}
	if c.Secret == "" {
		return fmt.Errorf("%w: plaid secret", common.ErrMissingConfig)
	}
	if c.AccessToken == "" {
		return fmt.Errorf("%w: plaid access token", common.ErrMissingConfig)
	}
	switch c.Environment {
	case "sandbox", "production":
		return nil
	case "":
		return fmt.Errorf("%w: plaid environment", common.ErrMissingConfig)
	default:
		return fmt.Errorf("%w: plaid environment must be sandbox or production", common.ErrInvalidConfig)
	}
}

// PlaidSource pulls transactions straight from the Plaid API instead of a
// statement file.
type PlaidSource struct {
	client      *plaid.APIClient
	logger      *slog.Logger
	retryOpts   common.RetryOptions
	accessToken string
}

// NewPlaidSource creates a Plaid-backed transaction source.
func NewPlaidSource(cfg PlaidConfig) (*PlaidSource, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configuration := plaid.NewConfiguration()
	configuration.AddDefaultHeader("PLAID-CLIENT-ID", cfg.ClientID)
	configuration.AddDefaultHeader("PLAID-SECRET", cfg.Secret)
	switch cfg.Environment {
	case "sandbox":
		configuration.UseEnvironment(plaid.Sandbox)
	case "production":
		configuration.UseEnvironment(plaid.Production)
	}

	return &PlaidSource{
		client:      plaid.NewAPIClient(configuration),
		accessToken: cfg.AccessToken,
		logger:      slog.Default().With("component", "plaid"),
		retryOpts: common.RetryOptions{
			MaxAttempts:  3,
			InitialDelay: 1 * time.Second,
			MaxDelay:     30 * time.Second,
			Multiplier:   2.0,
		},
	}, nil
}

// Fetch pulls all transactions in the date range, paging through the API.
func (s *PlaidSource) Fetch(ctx context.Context, startDate, endDate time.Time) ([]model.NewTransaction, error) {
	if startDate.After(endDate) {
		return nil, fmt.Errorf("start date must be before end date")
	}

	s.logger.Info("Fetching transactions from Plaid",
		"start_date", model.FormatDate(startDate),
		"end_date", model.FormatDate(endDate))

	var all []plaid.Transaction
	offset := int32(0)
	const pageSize = int32(500) // Plaid's max page size

	for {
		var page []plaid.Transaction

		retryErr := common.WithRetry(ctx, func() error {
			request := plaid.NewTransactionsGetRequest(
				s.accessToken,
				model.FormatDate(startDate),
				model.FormatDate(endDate),
			)
			request.SetOptions(plaid.TransactionsGetRequestOptions{
				Count:  plaid.PtrInt32(pageSize),
				Offset: plaid.PtrInt32(offset),
			})

			resp, _, err := s.client.PlaidApi.TransactionsGet(ctx).TransactionsGetRequest(*request).Execute()
			if err != nil {
				if plaidErr, convErr := plaid.ToPlaidError(err); convErr == nil {
					if plaidErr.ErrorCode == "RATE_LIMIT_EXCEEDED" {
						s.logger.Warn("Rate limit hit, will retry", "error", plaidErr.ErrorMessage)
						return &common.RetryableError{Err: err, Retryable: true}
					}
					return fmt.Errorf("plaid API error: %s - %s", plaidErr.ErrorCode, plaidErr.ErrorMessage)
				}
				return fmt.Errorf("failed to fetch transactions: %w", err)
			}

			page = resp.GetTransactions()
			return nil
		}, s.retryOpts)
		if retryErr != nil {
			return nil, retryErr
		}

		all = append(all, page...)
		if len(page) < int(pageSize) {
			break
		}
		offset += pageSize
	}

	s.logger.Info("Fetched all transactions", "count", len(all))

	if len(all) == 0 {
		return nil, common.ErrNoTransactions
	}

	transactions := make([]model.NewTransaction, 0, len(all))
	for _, pt := range all {
		transactions = append(transactions, mapPlaidTransaction(pt))
	}
	return transactions, nil
}

// mapPlaidTransaction converts one Plaid transaction. Plaid reports
// positive amounts for money out, the opposite of the store's convention,
// so the sign flips.
func mapPlaidTransaction(pt plaid.Transaction) model.NewTransaction {
	merchant := pt.GetMerchantName()
	if merchant == "" {
		merchant = pt.GetName()
	}

	category := ""
	if categories := pt.GetCategory(); len(categories) > 0 {
		category = strings.ToLower(categories[len(categories)-1])
	}

	currency := pt.GetIsoCurrencyCode()
	if currency == "" {
		currency = model.DefaultCurrency
	}

	return model.NewTransaction{
		Amount:     -pt.GetAmount(),
		Currency:   currency,
		OccurredAt: pt.GetDate(),
		Merchant:   merchant,
		Card:       pt.GetAccountId(),
		Category:   category,
	}
}
