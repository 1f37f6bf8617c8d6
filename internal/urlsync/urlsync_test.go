package urlsync

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func noDefer(_ time.Duration, _ func()) {}

func seedTransactions() []model.Transaction {
	return []model.Transaction{
		{ID: 1, Category: "food", Amount: -12.4, OccurredAt: "2024-02-10T12:00"},
		{ID: 2, Category: "food", Amount: -150.6, OccurredAt: "2024-01-05T09:00"},
		{ID: 3, Category: "travel", Amount: 80, OccurredAt: "2024-03-01T10:00"},
	}
}

func TestBounds_ComputedFromFirstNonEmptyStore(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	sy := New(s, NewMemoryHistory(""))
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())

	assert.Equal(t, "2024-01-05", s.MinDate.Get())
	assert.Equal(t, "2024-01-05", s.DateStart.Get())
	assert.Equal(t, state.AmountRange{Min: 0, Max: 151}, s.Amount.Get())
	assert.Equal(t, state.AmountRange{Min: 0, Max: 151}, s.SettledAmount.Get())
}

func TestBounds_RunOnce(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	sy := New(s, NewMemoryHistory(""))
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())
	require.Equal(t, "2024-01-05", s.DateStart.Get())

	// A later refetch with different data must not reset the bounds.
	s.Transactions.Set([]model.Transaction{
		{ID: 9, Category: "rent", Amount: -9000, OccurredAt: "2020-01-01T00:00"},
	})
	assert.Equal(t, "2024-01-05", s.MinDate.Get())
	assert.Equal(t, "2024-01-05", s.DateStart.Get())
	assert.Equal(t, state.AmountRange{Min: 0, Max: 151}, s.Amount.Get())
}

func TestBounds_URLParamsWinOverComputedDefaults(t *testing.T) {
	params, err := url.ParseQuery("dateStart=2024-02-01&amountMin=5")
	require.NoError(t, err)

	s := state.New(params, testNow, noDefer)
	defer s.Close()
	sy := New(s, NewMemoryHistory(""))
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())

	assert.Equal(t, "2024-01-05", s.MinDate.Get(), "computed bound is still recorded")
	assert.Equal(t, "2024-02-01", s.DateStart.Get(), "URL dateStart wins")
	assert.Equal(t, state.AmountRange{Min: 5, Max: 0}, s.Amount.Get(), "URL amount bounds win")
}

func TestSync_InertUntilBoundsEstablished(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	h := NewMemoryHistory("")
	sy := New(s, h)
	sy.Start()
	defer sy.Stop()

	s.GroupMode.Set(model.GroupByMonth)
	assert.Empty(t, h.Current(), "no URL writes before bounds are known")

	s.Transactions.Set(seedTransactions())
	assert.Equal(t, "groupBy=month", h.Current())
}

func TestSync_DefaultsProduceEmptyQuery(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	h := NewMemoryHistory("")
	sy := New(s, h)
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())
	assert.Empty(t, h.Current())
}

func TestSync_RoundTripBackToDefaultsClearsQuery(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	h := NewMemoryHistory("")
	sy := New(s, h)
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())

	s.Categories.Set([]string{"food"})
	s.GroupMode.Set(model.GroupByTags)
	s.ActiveTab.Set(model.TabTransactions)
	s.DateEnd.Set("2024-05-01")
	assert.Equal(t,
		"categories=food&dateEnd=2024-05-01&groupBy=tags&tab=transactions",
		h.Current())

	s.Categories.Set(nil)
	s.GroupMode.Set(model.DefaultGroupMode)
	s.ActiveTab.Set(model.DefaultTab)
	s.DateEnd.Set(s.Today())
	assert.Empty(t, h.Current(), "every axis at its default leaves no parameters")
}

func TestSync_AmountDefaultSuppression(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	h := NewMemoryHistory("")
	sy := New(s, h)
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())

	s.Amount.Set(state.AmountRange{Min: 10, Max: 151})
	assert.Equal(t, "amountMin=10", h.Current(),
		"max equal to the computed bound is suppressed")

	s.Amount.Set(state.AmountRange{Min: 0, Max: 100})
	assert.Equal(t, "amountMax=100", h.Current(),
		"zero min is suppressed")
}

func TestSync_ListAxesJoinWithCommas(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()
	h := NewMemoryHistory("")
	sy := New(s, h)
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())
	s.Merchants.Set([]string{"save-on", "costco"})
	s.Tags.Set([]string{"lunch"})

	parsed, err := url.ParseQuery(h.Current())
	require.NoError(t, err)
	assert.Equal(t, "save-on,costco", parsed.Get("merchants"))
	assert.Equal(t, "lunch", parsed.Get("tags"))
}

func TestSync_NoRewriteWhenQueryUnchanged(t *testing.T) {
	s := state.New(nil, testNow, noDefer)
	defer s.Close()

	h := &countingHistory{}
	sy := New(s, h)
	sy.Start()
	defer sy.Stop()

	s.Transactions.Set(seedTransactions())
	writes := h.writes

	// Rewriting an axis with its current value changes no parameter, so
	// the history must not be touched again.
	s.DateEnd.Set(s.DateEnd.Get())
	assert.Equal(t, writes, h.writes)
}

type countingHistory struct {
	query  string
	writes int
}

func (h *countingHistory) Current() string { return h.query }

func (h *countingHistory) Replace(query string) {
	h.query = query
	h.writes++
}
