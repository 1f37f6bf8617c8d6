package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
)

func TestApplyFilter(t *testing.T) {
	tests := []struct {
		check   func(*testing.T, *state.AppState)
		name    string
		expr    string
		wantErr bool
	}{
		{
			name: "list axis with spaces",
			expr: "categories=food, gas",
			check: func(t *testing.T, s *state.AppState) {
				assert.Equal(t, []string{"food", "gas"}, s.Categories.Get())
			},
		},
		{
			name: "empty value clears axis",
			expr: "tags=",
			check: func(t *testing.T, s *state.AppState) {
				assert.Nil(t, s.Tags.Get())
			},
		},
		{
			name: "date bound",
			expr: "dateStart=2024-02-01",
			check: func(t *testing.T, s *state.AppState) {
				assert.Equal(t, "2024-02-01", s.DateStart.Get())
			},
		},
		{
			name: "amount bound goes through the live cell",
			expr: "amountMin=25",
			check: func(t *testing.T, s *state.AppState) {
				assert.Equal(t, 25.0, s.Amount.Get().Min)
			},
		},
		{
			name: "group mode",
			expr: "groupBy=month",
			check: func(t *testing.T, s *state.AppState) {
				assert.Equal(t, model.GroupByMonth, s.GroupMode.Get())
			},
		},
		{name: "missing equals", expr: "categories", wantErr: true},
		{name: "unknown axis", expr: "colour=red", wantErr: true},
		{name: "bad amount", expr: "amountMax=lots", wantErr: true},
		{name: "bad group mode", expr: "groupBy=fortnightly", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := state.New(nil, time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
				func(_ time.Duration, fn func()) { fn() })
			defer s.Close()

			err := applyFilter(s, tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestFilterMode_ApplyOnEnter(t *testing.T) {
	m := newTestModel(t)

	m = keyPress(m, runeKey('/'))
	require.True(t, m.filtering)

	for _, r := range "categories=gas" {
		m = keyPress(m, runeKey(r))
	}
	m = keyPress(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.filtering)
	assert.Equal(t, []string{"gas"}, m.state.Categories.Get())
	require.Len(t, m.engine.Filtered.Get(), 1)
}

func TestFilterMode_EscAbandons(t *testing.T) {
	m := newTestModel(t)

	m = keyPress(m, runeKey('/'))
	for _, r := range "categories=gas" {
		m = keyPress(m, runeKey(r))
	}
	m = keyPress(m, tea.KeyMsg{Type: tea.KeyEsc})

	assert.False(t, m.filtering)
	assert.Empty(t, m.state.Categories.Get())
}

func TestFilterMode_BadExpressionKeepsState(t *testing.T) {
	m := newTestModel(t)

	m = keyPress(m, runeKey('/'))
	for _, r := range "colour=red" {
		m = keyPress(m, runeKey(r))
	}
	m = keyPress(m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.False(t, m.filtering)
	assert.NotEmpty(t, m.filterErr)
	assert.Len(t, m.engine.Filtered.Get(), 2)
}

func TestFilterMode_TypingDoesNotTriggerShortcuts(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, model.TabGrouped, m.state.ActiveTab.Get())

	m = keyPress(m, runeKey('/'))
	// "m" and "q" are shortcuts outside filter mode.
	m = keyPress(m, runeKey('m'))
	m = keyPress(m, runeKey('q'))

	assert.False(t, m.quitting)
	assert.Equal(t, model.GroupByCategory, m.state.GroupMode.Get())
	assert.Equal(t, "mq", m.filterInput.Value())
}
