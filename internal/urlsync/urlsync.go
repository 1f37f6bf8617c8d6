// Package urlsync keeps the filter state and the location query string in
// agreement: axes seed from the query on load, and every axis change
// rewrites the query with default values suppressed. A one-shot bounds
// initializer computes the default date and amount bounds from the first
// non-empty transaction list and gates the synchronizer until then, so a
// transient default-state URL is never written during initial load.
package urlsync

import (
	"math"
	"net/url"
	"strconv"
	"sync"

	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/reactive"
	"github.com/osirenko/finch/internal/state"
)

// History is the location abstraction the synchronizer writes through.
type History interface {
	// Current returns the current encoded query string.
	Current() string
	// Replace swaps the current entry's query string without creating a
	// new history entry.
	Replace(query string)
}

// MemoryHistory is an in-process History.
type MemoryHistory struct {
	mu    sync.Mutex
	query string
}

// NewMemoryHistory creates a history seeded with the given query string.
func NewMemoryHistory(query string) *MemoryHistory {
	return &MemoryHistory{query: query}
}

// Current returns the stored query string.
func (h *MemoryHistory) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.query
}

// Replace stores a new query string.
func (h *MemoryHistory) Replace(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.query = query
}

// Synchronizer watches every filter axis and mirrors it into a History.
type Synchronizer struct {
	state   *state.AppState
	history History

	mu        sync.Mutex
	unblocked bool
	maxAmount float64

	stops []func()
}

// New creates a synchronizer over the given state graph. Call Start to
// begin watching.
func New(s *state.AppState, h History) *Synchronizer {
	return &Synchronizer{state: s, history: h}
}

// Start wires the bounds initializer and the query-string watcher.
func (sy *Synchronizer) Start() {
	s := sy.state

	boundsDone := false
	sy.stops = append(sy.stops, reactive.Watch(func() {
		if boundsDone {
			return
		}
		transactions := s.Transactions.Get()
		if len(transactions) == 0 {
			return
		}
		boundsDone = true
		sy.initBounds(transactions)
	}, s.Transactions))

	sy.stops = append(sy.stops, reactive.Watch(sy.writeURL,
		s.Amount, s.DateStart, s.DateEnd,
		s.Merchants, s.Cards, s.Persons, s.Categories, s.Tags,
		s.GroupMode, s.ActiveTab, s.MinDate))
}

// Stop cancels all watchers.
func (sy *Synchronizer) Stop() {
	for _, stop := range sy.stops {
		stop()
	}
	sy.stops = nil
}

// initBounds scans the full list for the earliest business date and the
// largest magnitude. Query parameters present at load win over the
// computed defaults.
func (sy *Synchronizer) initBounds(transactions []model.Transaction) {
	s := sy.state

	earliest := transactions[0].OccurredTime()
	maxAmount := transactions[0].AbsAmount()
	for _, tr := range transactions {
		occurred := tr.OccurredTime()
		if occurred.Before(earliest) {
			earliest = occurred
		}
		if amount := tr.AbsAmount(); amount > maxAmount {
			maxAmount = amount
		}
	}

	minDate := model.FormatDate(earliest.UTC())
	s.MinDate.Set(minDate)
	if !s.ParamPresent("dateStart") {
		s.DateStart.Set(minDate)
	}
	if !s.ParamPresent("amountMin") && !s.ParamPresent("amountMax") {
		bounds := state.AmountRange{Min: 0, Max: math.Round(maxAmount)}
		s.Amount.Set(bounds)
		s.SettledAmount.Set(bounds)
	}

	sy.mu.Lock()
	sy.maxAmount = maxAmount
	sy.unblocked = true
	sy.mu.Unlock()

	// Axis changes made while the gate was closed never reached the
	// query string; reconcile once now that real bounds exist.
	sy.writeURL()
}

func (sy *Synchronizer) writeURL() {
	sy.mu.Lock()
	blocked := !sy.unblocked
	sy.mu.Unlock()
	if blocked {
		return
	}

	query := sy.Encode().Encode()
	if query != sy.history.Current() {
		sy.history.Replace(query)
	}
}

// Encode renders the filter state as query parameters, omitting every axis
// that still holds its computed default.
func (sy *Synchronizer) Encode() url.Values {
	s := sy.state
	sy.mu.Lock()
	maxDefault := math.Round(sy.maxAmount)
	sy.mu.Unlock()

	params := url.Values{}

	if v := s.DateStart.Get(); v != s.MinDate.Get() {
		params.Set("dateStart", v)
	}
	if v := s.DateEnd.Get(); v != s.Today() {
		params.Set("dateEnd", v)
	}

	amount := s.Amount.Get()
	if amount.Min > 0 && !math.IsInf(amount.Min, 0) {
		params.Set("amountMin", formatAmount(amount.Min))
	}
	if amount.Max != maxDefault && !math.IsInf(amount.Max, 0) {
		params.Set("amountMax", formatAmount(amount.Max))
	}

	setList(params, "merchants", s.Merchants.Get())
	setList(params, "cards", s.Cards.Get())
	setList(params, "persons", s.Persons.Get())
	setList(params, "categories", s.Categories.Get())
	setList(params, "tags", s.Tags.Get())

	if mode := s.GroupMode.Get(); mode != model.DefaultGroupMode {
		params.Set("groupBy", string(mode))
	}
	if tab := s.ActiveTab.Get(); tab != model.DefaultTab {
		params.Set("tab", string(tab))
	}

	return params
}

func setList(params url.Values, key string, values []string) {
	if len(values) == 0 {
		return
	}
	joined := values[0]
	for _, v := range values[1:] {
		joined += "," + v
	}
	params.Set(key, joined)
}

func formatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
