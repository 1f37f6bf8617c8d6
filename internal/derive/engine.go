// Package derive computes everything the views read from the state graph:
// the filtered transaction list, the option pools for the multi-select
// filters, the grouped view, and the chart datasets.
package derive

import (
	"strings"
	"time"

	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/reactive"
	"github.com/osirenko/finch/internal/state"
)

// Engine owns the derived values over an AppState.
type Engine struct {
	// Filtered is the transaction list after all filter axes are applied.
	// It reads the settled amount range, not the live one.
	Filtered *reactive.Derived[[]model.Transaction]

	// Option pools: distinct values across the unfiltered store. Active
	// filters never narrow them.
	Merchants  *reactive.Derived[[]string]
	Cards      *reactive.Derived[[]string]
	Persons    *reactive.Derived[[]string]
	Tags       *reactive.Derived[[]string]
	Categories *reactive.Derived[[]string]

	// Grouped is the filtered list partitioned by the active group mode.
	Grouped *reactive.Derived[[]Group]
}

// NewEngine wires the derivations over the given state graph.
func NewEngine(s *state.AppState) *Engine {
	e := &Engine{}

	e.Filtered = reactive.Derive(func() []model.Transaction {
		return Filter(s.Transactions.Get(), Criteria{
			Amount:     s.SettledAmount.Get(),
			DateStart:  s.DateStart.Get(),
			DateEnd:    s.DateEnd.Get(),
			Merchants:  s.Merchants.Get(),
			Cards:      s.Cards.Get(),
			Persons:    s.Persons.Get(),
			Categories: s.Categories.Get(),
			Tags:       s.Tags.Get(),
		})
	}, s.Transactions, s.SettledAmount, s.DateStart, s.DateEnd,
		s.Merchants, s.Cards, s.Persons, s.Categories, s.Tags)

	e.Merchants = reactive.Derive(func() []string {
		return distinct(s.Transactions.Get(), func(t model.Transaction) string { return t.Merchant })
	}, s.Transactions)
	e.Cards = reactive.Derive(func() []string {
		return distinct(s.Transactions.Get(), func(t model.Transaction) string { return t.Card })
	}, s.Transactions)
	e.Persons = reactive.Derive(func() []string {
		return distinct(s.Transactions.Get(), func(t model.Transaction) string { return t.PersonName })
	}, s.Transactions)
	e.Categories = reactive.Derive(func() []string {
		return distinct(s.Transactions.Get(), func(t model.Transaction) string { return t.Category })
	}, s.Transactions)
	e.Tags = reactive.Derive(func() []string {
		return distinctTags(s.Transactions.Get())
	}, s.Transactions)

	e.Grouped = reactive.Derive(func() []Group {
		return GroupTransactions(e.Filtered.Get(), s.GroupMode.Get())
	}, e.Filtered, s.GroupMode)

	return e
}

// Criteria is one consistent snapshot of every filter axis.
type Criteria struct {
	DateStart  string
	DateEnd    string
	Merchants  []string
	Cards      []string
	Persons    []string
	Categories []string
	Tags       []string
	Amount     state.AmountRange
}

// Filter returns the transactions passing every axis of the criteria. The
// input slice is never mutated.
func Filter(transactions []model.Transaction, c Criteria) []model.Transaction {
	start := model.ParseOccurredAt(c.DateStart)
	end := endOfDay(c.DateEnd)

	matched := make([]model.Transaction, 0, len(transactions))
	for _, tr := range transactions {
		if Matches(tr, c, start, end) {
			matched = append(matched, tr)
		}
	}
	return matched
}

// Matches applies the filter predicate to a single transaction. start and
// end are the parsed date bounds of the criteria.
func Matches(tr model.Transaction, c Criteria, start, end time.Time) bool {
	if !c.Amount.Contains(tr.AbsAmount()) {
		return false
	}

	occurred := tr.OccurredTime()
	if occurred.Before(start) || occurred.After(end) {
		return false
	}

	if len(c.Merchants) > 0 && !merchantMatch(tr.Merchant, c.Merchants) {
		return false
	}
	if len(c.Cards) > 0 && !contains(c.Cards, tr.Card) {
		return false
	}
	if len(c.Persons) > 0 && !contains(c.Persons, tr.PersonName) {
		return false
	}
	if len(c.Categories) > 0 && !contains(c.Categories, tr.Category) {
		return false
	}
	if len(c.Tags) > 0 && !anyTagSelected(tr.Tags, c.Tags) {
		return false
	}
	return true
}

// merchantMatch is a case-insensitive substring match against any selected
// merchant, unlike the exact matching of the other axes.
func merchantMatch(merchant string, selected []string) bool {
	lower := strings.ToLower(merchant)
	for _, s := range selected {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// anyTagSelected reports whether the transaction's tags intersect the
// selection. Any overlap qualifies; a transaction does not need every
// selected tag.
func anyTagSelected(tags, selected []string) bool {
	for _, s := range selected {
		for _, tag := range tags {
			if tag == s {
				return true
			}
		}
	}
	return false
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}

func endOfDay(date string) time.Time {
	t := model.ParseOccurredAt(date)
	if t.IsZero() {
		return t
	}
	return t.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
}

func distinct(transactions []model.Transaction, key func(model.Transaction) string) []string {
	values := make([]string, 0, len(transactions))
	seen := make(map[string]bool, len(transactions))
	for _, tr := range transactions {
		v := key(tr)
		if !seen[v] {
			seen[v] = true
			values = append(values, v)
		}
	}
	return values
}

func distinctTags(transactions []model.Transaction) []string {
	var values []string
	seen := make(map[string]bool)
	for _, tr := range transactions {
		for _, tag := range tr.Tags {
			if !seen[tag] {
				seen[tag] = true
				values = append(values, tag)
			}
		}
	}
	return values
}
