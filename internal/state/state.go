// Package state holds the application state graph: one cell per filter
// axis, the session and data cells, and the debounced amount gate. The
// aggregate is constructed explicitly and passed to whichever component
// needs it, so the graph can be exercised in isolation.
package state

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/reactive"
)

// SettleDelay is the quiescence window between a live amount-range write
// and its settled copy becoming visible to the filtering derivation.
const SettleDelay = 50 * time.Millisecond

// defaultDateStart is the stand-in lower date bound used until the real
// one is computed from the fetched transactions.
const defaultDateStart = "2023-01-01"

// AmountRange is an inclusive magnitude filter. Min and Max may be the
// infinities to mean "unbounded".
type AmountRange struct {
	Min float64
	Max float64
}

// Contains reports whether a magnitude falls inside the range.
func (r AmountRange) Contains(amount float64) bool {
	return amount >= r.Min && amount <= r.Max
}

// DeferFunc schedules fn to run once after the given delay. Injected so
// tests can drive the debounce deterministically.
type DeferFunc func(delay time.Duration, fn func())

// AppState is the application's reactive state aggregate. Lifetime is one
// session.
type AppState struct {
	// Session.
	Token *reactive.Cell[string]

	// Data and status. Transactions is the authoritative in-memory list;
	// every write goes through the API client.
	Transactions *reactive.Cell[[]model.Transaction]
	Loading      *reactive.Cell[bool]
	Err          *reactive.Cell[string]

	// Filter axes. Amount is the live range updated on every input event;
	// SettledAmount trails it by SettleDelay and is what filtering reads.
	Amount        *reactive.Cell[AmountRange]
	SettledAmount *reactive.Cell[AmountRange]
	DateStart     *reactive.Cell[string]
	DateEnd       *reactive.Cell[string]
	Merchants     *reactive.Cell[[]string]
	Cards         *reactive.Cell[[]string]
	Persons       *reactive.Cell[[]string]
	Categories    *reactive.Cell[[]string]
	Tags          *reactive.Cell[[]string]
	GroupMode     *reactive.Cell[model.GroupMode]
	ActiveTab     *reactive.Cell[model.Tab]

	// MinDate is the computed lower date bound, empty until the bounds
	// initializer has run.
	MinDate *reactive.Cell[string]

	params url.Values
	today  string

	deferFn     DeferFunc
	stopSettler func()
}

// New builds the state graph seeded from URL query parameters. Axes with
// no parameter start at their computed defaults. A nil deferFn schedules
// settles with time.AfterFunc.
func New(params url.Values, now time.Time, deferFn DeferFunc) *AppState {
	if params == nil {
		params = url.Values{}
	}
	if deferFn == nil {
		deferFn = func(delay time.Duration, fn func()) {
			time.AfterFunc(delay, fn)
		}
	}

	today := model.FormatDate(now)
	amount := AmountRange{
		Min: paramFloat(params, "amountMin", 0),
		Max: paramFloat(params, "amountMax", 0),
	}
	groupMode := model.DefaultGroupMode
	if mode, err := model.ParseGroupMode(params.Get("groupBy")); err == nil {
		groupMode = mode
	}

	s := &AppState{
		Token:         reactive.NewCell(""),
		Transactions:  reactive.NewCell([]model.Transaction(nil)),
		Loading:       reactive.NewCell(true),
		Err:           reactive.NewCell(""),
		Amount:        reactive.NewCell(amount),
		SettledAmount: reactive.NewCell(amount),
		DateStart:     reactive.NewCell(paramString(params, "dateStart", defaultDateStart)),
		DateEnd:       reactive.NewCell(paramString(params, "dateEnd", today)),
		Merchants:     reactive.NewCell(paramList(params, "merchants")),
		Cards:         reactive.NewCell(paramList(params, "cards")),
		Persons:       reactive.NewCell(paramList(params, "persons")),
		Categories:    reactive.NewCell(paramList(params, "categories")),
		Tags:          reactive.NewCell(paramList(params, "tags")),
		GroupMode:     reactive.NewCell(groupMode),
		ActiveTab:     reactive.NewCell(model.ParseTab(params.Get("tab"))),
		MinDate:       reactive.NewCell(""),
		params:        params,
		today:         today,
		deferFn:       deferFn,
	}

	// Debounced amount gate: every live write schedules its own settle.
	// Pending settles are never canceled; each one copies whatever the
	// live cell holds when it fires, so the last write wins.
	s.stopSettler = s.Amount.OnChange(func() {
		s.deferFn(SettleDelay, func() {
			s.SettledAmount.Set(s.Amount.Get())
		})
	})

	return s
}

// Close stops the debounce wiring.
func (s *AppState) Close() {
	if s.stopSettler != nil {
		s.stopSettler()
		s.stopSettler = nil
	}
}

// Today returns the session's idea of the current calendar date.
func (s *AppState) Today() string {
	return s.today
}

// ParamPresent reports whether the page-load URL carried the given query
// parameter. Bounds initialization gives such parameters precedence over
// computed defaults.
func (s *AppState) ParamPresent(key string) bool {
	return s.params.Has(key)
}

// LoggedIn reports whether a credential is present.
func (s *AppState) LoggedIn() bool {
	return s.Token.Get() != ""
}

func paramString(params url.Values, key, fallback string) string {
	if v := params.Get(key); v != "" {
		return v
	}
	return fallback
}

func paramFloat(params url.Values, key string, fallback float64) float64 {
	v := params.Get(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func paramList(params url.Values, key string) []string {
	if !params.Has(key) {
		return nil
	}
	return strings.Split(params.Get(key), ",")
}
