package viewmodel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osirenko/finch/internal/derive"
	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newBrowseState(t *testing.T) (*state.AppState, *derive.Engine) {
	t.Helper()
	s := state.New(nil, testNow, func(_ time.Duration, fn func()) { fn() })
	t.Cleanup(s.Close)
	return s, derive.NewEngine(s)
}

func seed(s *state.AppState) {
	s.Loading.Set(false)
	// Newest first, matching the order the server returns.
	s.Transactions.Set([]model.Transaction{
		{ID: 2, Amount: -30, OccurredAt: "2024-03-02T09:00", Merchant: "Petro-Canada",
			Category: "gas", PersonName: "Oles", Tags: []string{"weekly"}},
		{ID: 1, Amount: -12.5, OccurredAt: "2024-03-01T10:00", Merchant: "Save-On",
			Category: "food", PersonName: "Oles", Tags: []string{"lunch", "weekly"}},
	})
}

func TestStatus_LoadingWinsOverError(t *testing.T) {
	tests := []struct {
		name    string
		loading bool
		err     string
		want    Status
	}{
		{name: "loading with stale error", loading: true, err: "boom", want: StatusLoading},
		{name: "error only", loading: false, err: "boom", want: StatusError},
		{name: "ready", loading: false, err: "", want: StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := BrowseView{Loading: tt.loading, Err: tt.err}
			assert.Equal(t, tt.want, v.Status())
		})
	}
}

func TestBuildBrowseView_GroupedTab(t *testing.T) {
	s, e := newBrowseState(t)
	seed(s)

	view := BuildBrowseView(s, e, map[string]bool{"gas": true})
	require.Equal(t, model.TabGrouped, view.Tab)
	require.Len(t, view.Groups, 2)
	assert.Empty(t, view.Transactions)

	// Categorical groups sort by descending spend magnitude.
	assert.Equal(t, "gas", view.Groups[0].Key)
	assert.Equal(t, "-$30.00", view.Groups[0].Total)
	assert.True(t, view.Groups[0].Expanded)
	assert.Equal(t, "weekly", view.Groups[0].CommonTags)
	require.Len(t, view.Groups[0].Transactions, 1, "expanded group carries its rows")
	assert.Equal(t, "Petro-Canada", view.Groups[0].Transactions[0].Merchant)
	assert.Empty(t, view.Groups[1].Transactions, "collapsed group stays flat")
	assert.Equal(t, "food", view.Groups[1].Key)
	assert.False(t, view.Groups[1].Expanded)

	assert.Equal(t, StatsLine{Count: 2, Total: "-$42.50", Average: "-$21.25"}, view.Stats)
}

func TestBuildBrowseView_TransactionsTab(t *testing.T) {
	s, e := newBrowseState(t)
	seed(s)
	s.ActiveTab.Set(model.TabTransactions)

	view := BuildBrowseView(s, e, nil)
	require.Equal(t, model.TabTransactions, view.Tab)
	require.Len(t, view.Transactions, 2)
	assert.Empty(t, view.Groups)

	first := view.Transactions[0]
	assert.Equal(t, int64(2), first.ID)
	assert.Equal(t, "2024-03-02", first.Date)
	assert.Equal(t, "Petro-Canada", first.Merchant)
	assert.Equal(t, "-$30.00", first.Amount)
	assert.Equal(t, "lunch, weekly", view.Transactions[1].Tags)
}

func TestBuildBrowseView_ReflectsFilters(t *testing.T) {
	s, e := newBrowseState(t)
	seed(s)
	s.Categories.Set([]string{"food"})

	view := BuildBrowseView(s, e, nil)
	require.Len(t, view.Groups, 1)
	assert.Equal(t, "food", view.Groups[0].Key)
	assert.Equal(t, 1, view.Stats.Count)
}

func TestSparkline(t *testing.T) {
	assert.Empty(t, Sparkline(nil))
	assert.Empty(t, Sparkline([]float64{0, 0, 0}))

	spark := Sparkline([]float64{0, 50, 100})
	assert.Equal(t, "▁▄█", spark)
}

func TestBuildBrowseView_SparkCoversRecentSpend(t *testing.T) {
	s, e := newBrowseState(t)
	s.Loading.Set(false)
	s.Transactions.Set([]model.Transaction{
		{ID: 1, Amount: -40, OccurredAt: "2024-06-14T10:00", Category: "food"},
	})

	view := BuildBrowseView(s, e, nil)
	assert.NotEmpty(t, view.Stats.Spark)
	assert.Len(t, []rune(view.Stats.Spark), derive.DailyWindow)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "-$12.50", FormatAmount(-12.5))
	assert.Equal(t, "$0.00", FormatAmount(0))
	assert.Equal(t, "$7.00", FormatAmount(7))
}

func TestTabIndex(t *testing.T) {
	assert.Equal(t, 0, TabIndex(model.TabGrouped))
	assert.Equal(t, 1, TabIndex(model.TabTransactions))
	assert.Len(t, TabTitles(), 2)
}
