package state

import (
	"math"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osirenko/finch/internal/model"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

// fakeScheduler records deferred settles so tests can fire them in order.
type fakeScheduler struct {
	pending []func()
}

func (f *fakeScheduler) Defer(_ time.Duration, fn func()) {
	f.pending = append(f.pending, fn)
}

func (f *fakeScheduler) fireAll() {
	for len(f.pending) > 0 {
		next := f.pending[0]
		f.pending = f.pending[1:]
		next()
	}
}

func TestNew_DefaultsWithoutParams(t *testing.T) {
	s := New(nil, testNow, nil)
	defer s.Close()

	assert.Equal(t, AmountRange{Min: 0, Max: 0}, s.Amount.Get())
	assert.Equal(t, "2023-01-01", s.DateStart.Get())
	assert.Equal(t, "2024-06-15", s.DateEnd.Get())
	assert.Empty(t, s.Merchants.Get())
	assert.Empty(t, s.Cards.Get())
	assert.Empty(t, s.Persons.Get())
	assert.Empty(t, s.Categories.Get())
	assert.Empty(t, s.Tags.Get())
	assert.Equal(t, model.GroupByCategory, s.GroupMode.Get())
	assert.Equal(t, model.TabGrouped, s.ActiveTab.Get())
	assert.True(t, s.Loading.Get())
	assert.Empty(t, s.Err.Get())
	assert.False(t, s.LoggedIn())
}

func TestNew_SeedsFromParams(t *testing.T) {
	params, err := url.ParseQuery("dateStart=2024-02-01&dateEnd=2024-03-01&amountMin=5&amountMax=200&merchants=a,b&cards=visa&persons=Oles&categories=food,travel&tags=lunch&groupBy=month&tab=transactions")
	require.NoError(t, err)

	s := New(params, testNow, nil)
	defer s.Close()

	assert.Equal(t, AmountRange{Min: 5, Max: 200}, s.Amount.Get())
	assert.Equal(t, AmountRange{Min: 5, Max: 200}, s.SettledAmount.Get())
	assert.Equal(t, "2024-02-01", s.DateStart.Get())
	assert.Equal(t, "2024-03-01", s.DateEnd.Get())
	assert.Equal(t, []string{"a", "b"}, s.Merchants.Get())
	assert.Equal(t, []string{"visa"}, s.Cards.Get())
	assert.Equal(t, []string{"Oles"}, s.Persons.Get())
	assert.Equal(t, []string{"food", "travel"}, s.Categories.Get())
	assert.Equal(t, []string{"lunch"}, s.Tags.Get())
	assert.Equal(t, model.GroupByMonth, s.GroupMode.Get())
	assert.Equal(t, model.TabTransactions, s.ActiveTab.Get())

	assert.True(t, s.ParamPresent("dateStart"))
	assert.False(t, s.ParamPresent("dateEnd2"))
}

func TestNew_InvalidGroupModeFallsBack(t *testing.T) {
	params := url.Values{"groupBy": {"fortnight"}}
	s := New(params, testNow, nil)
	defer s.Close()

	assert.Equal(t, model.DefaultGroupMode, s.GroupMode.Get())
}

func TestDebounce_SettlesToLastWrite(t *testing.T) {
	sched := &fakeScheduler{}
	s := New(nil, testNow, sched.Defer)
	defer s.Close()

	s.Amount.Set(AmountRange{Min: 0, Max: 10})
	s.Amount.Set(AmountRange{Min: 0, Max: 20})
	s.Amount.Set(AmountRange{Min: 0, Max: 30})

	// Nothing settles before the timers fire.
	assert.Equal(t, AmountRange{Min: 0, Max: 0}, s.SettledAmount.Get())
	require.Len(t, sched.pending, 3, "every live write schedules its own settle")

	// Each timer copies the live value at fire time, so even the first
	// pending settle publishes the final write.
	sched.fireAll()
	assert.Equal(t, AmountRange{Min: 0, Max: 30}, s.SettledAmount.Get())
}

func TestDebounce_EarlyTimerCopiesCurrentLiveValue(t *testing.T) {
	sched := &fakeScheduler{}
	s := New(nil, testNow, sched.Defer)
	defer s.Close()

	s.Amount.Set(AmountRange{Min: 1, Max: 10})
	require.Len(t, sched.pending, 1)

	s.Amount.Set(AmountRange{Min: 2, Max: 20})

	// Fire only the first timer: it must publish the current live value,
	// not the one captured when it was scheduled.
	first := sched.pending[0]
	sched.pending = sched.pending[1:]
	first()
	assert.Equal(t, AmountRange{Min: 2, Max: 20}, s.SettledAmount.Get())
}

func TestClose_StopsScheduling(t *testing.T) {
	sched := &fakeScheduler{}
	s := New(nil, testNow, sched.Defer)

	s.Close()
	s.Amount.Set(AmountRange{Min: 0, Max: 99})
	assert.Empty(t, sched.pending)
}

func TestAmountRange_Contains(t *testing.T) {
	tests := []struct {
		name   string
		r      AmountRange
		amount float64
		want   bool
	}{
		{name: "inside", r: AmountRange{10, 100}, amount: 50, want: true},
		{name: "min inclusive", r: AmountRange{10, 100}, amount: 10, want: true},
		{name: "max inclusive", r: AmountRange{10, 100}, amount: 100, want: true},
		{name: "below", r: AmountRange{10, 100}, amount: 9.99, want: false},
		{name: "above", r: AmountRange{10, 100}, amount: 100.01, want: false},
		{name: "unbounded", r: AmountRange{math.Inf(-1), math.Inf(1)}, amount: 1e12, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.amount))
		})
	}
}
