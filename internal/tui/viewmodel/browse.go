// Package viewmodel builds display data for the TUI. Builders are pure:
// they read the state graph and derivation engine and return plain structs
// the views render, so display logic is testable without a terminal.
package viewmodel

import (
	"fmt"
	"strings"
	"time"

	"github.com/osirenko/finch/internal/derive"
	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
)

// Status tells the view which panel to render. Loading wins over error:
// while a fetch is in flight the previous failure is stale information.
type Status int

// Render states in precedence order.
const (
	StatusLoading Status = iota
	StatusError
	StatusReady
)

// BrowseView is the full display model for the browse screen.
type BrowseView struct {
	Err          string
	GroupMode    model.GroupMode
	Tab          model.Tab
	Groups       []GroupRow
	Transactions []TransactionRow
	Stats        StatsLine
	Loading      bool
	LoggedIn     bool
}

// GroupRow is one rendered group. Transactions is populated only when the
// group is expanded.
type GroupRow struct {
	Key          string
	CommonTags   string
	Total        string
	Transactions []TransactionRow
	Count        int
	Expanded     bool
}

// TransactionRow is one rendered transaction.
type TransactionRow struct {
	Date     string
	Merchant string
	Amount   string
	Category string
	Person   string
	Tags     string
	ID       int64
}

// StatsLine is the footer summary of the filtered set. Spark is a
// sparkline of daily spending over the trailing chart window, empty when
// nothing in the window has spend.
type StatsLine struct {
	Count   int
	Total   string
	Average string
	Spark   string
}

// Status resolves the render state: loading first, then error, then ready.
func (v BrowseView) Status() Status {
	switch {
	case v.Loading:
		return StatusLoading
	case v.Err != "":
		return StatusError
	default:
		return StatusReady
	}
}

// BuildBrowseView snapshots the state graph into a display model. The
// expanded set records which group keys the user has opened.
func BuildBrowseView(s *state.AppState, e *derive.Engine, expanded map[string]bool) BrowseView {
	view := BrowseView{
		Loading:   s.Loading.Get(),
		Err:       s.Err.Get(),
		GroupMode: s.GroupMode.Get(),
		Tab:       s.ActiveTab.Get(),
		LoggedIn:  s.LoggedIn(),
	}

	filtered := e.Filtered.Get()
	view.Stats = buildStats(derive.Summarize(filtered))
	if today, err := time.ParseInLocation("2006-01-02", s.Today(), time.Local); err == nil {
		view.Stats.Spark = Sparkline(derive.DailyTotals(filtered, today).Values)
	}

	switch view.Tab {
	case model.TabGrouped:
		for _, g := range e.Grouped.Get() {
			row := GroupRow{
				Key:        g.Key,
				Count:      len(g.Transactions),
				Total:      FormatAmount(g.Total),
				CommonTags: strings.Join(g.CommonTags, ", "),
				Expanded:   expanded[g.Key],
			}
			if row.Expanded {
				for _, tr := range g.Transactions {
					row.Transactions = append(row.Transactions, buildTransactionRow(tr))
				}
			}
			view.Groups = append(view.Groups, row)
		}
	case model.TabTransactions:
		for _, tr := range filtered {
			view.Transactions = append(view.Transactions, buildTransactionRow(tr))
		}
	}

	return view
}

func buildTransactionRow(tr model.Transaction) TransactionRow {
	occurred := tr.OccurredTime()
	date := tr.OccurredAt
	if !occurred.IsZero() {
		date = model.FormatDate(occurred)
	}
	return TransactionRow{
		ID:       tr.ID,
		Date:     date,
		Merchant: tr.Merchant,
		Amount:   FormatAmount(tr.Amount),
		Category: tr.Category,
		Person:   tr.PersonName,
		Tags:     strings.Join(tr.Tags, ", "),
	}
}

func buildStats(s derive.Summary) StatsLine {
	return StatsLine{
		Count:   s.Count,
		Total:   FormatAmount(s.Total),
		Average: FormatAmount(s.Average),
	}
}

var sparkRunes = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders a value series as one rune per point, scaled to the
// series maximum. An all-zero series renders as the empty string.
func Sparkline(values []float64) string {
	var max float64
	for _, v := range values {
		if v > max {
			max = v
		}
	}
	if max == 0 {
		return ""
	}

	runes := make([]rune, len(values))
	for i, v := range values {
		level := int(v / max * float64(len(sparkRunes)-1))
		runes[i] = sparkRunes[level]
	}
	return string(runes)
}

// FormatAmount renders a signed amount as currency, keeping the sign
// convention visible: spending shows negative.
func FormatAmount(amount float64) string {
	if amount < 0 {
		return fmt.Sprintf("-$%.2f", -amount)
	}
	return fmt.Sprintf("$%.2f", amount)
}

// TabTitles returns the tab labels in display order.
func TabTitles() []string {
	return []string{"Grouped", "Transactions"}
}

// TabIndex maps a tab to its position in TabTitles.
func TabIndex(tab model.Tab) int {
	if tab == model.TabTransactions {
		return 1
	}
	return 0
}
