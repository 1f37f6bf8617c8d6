package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseOccurredAt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "date only",
			input: "2024-01-15",
			want:  time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "date with minutes",
			input: "2024-01-15T09:30",
			want:  time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "date with seconds",
			input: "2024-01-15T09:30:45",
			want:  time.Date(2024, 1, 15, 9, 30, 45, 0, time.UTC),
		},
		{
			name:  "rfc3339",
			input: "2024-01-15T09:30:45Z",
			want:  time.Date(2024, 1, 15, 9, 30, 45, 0, time.UTC),
		},
		{
			name:  "garbage yields zero time",
			input: "not-a-date",
			want:  time.Time{},
		},
		{
			name:  "empty yields zero time",
			input: "",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, ParseOccurredAt(tt.input).Equal(tt.want))
		})
	}
}

func TestTransaction_AbsAmount(t *testing.T) {
	assert.Equal(t, 50.0, Transaction{Amount: -50}.AbsAmount())
	assert.Equal(t, 50.0, Transaction{Amount: 50}.AbsAmount())
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "trims and drops empties",
			in:   []string{" lunch ", "", "  ", "coffee"},
			want: []string{"lunch", "coffee"},
		},
		{
			name: "dedupes preserving first-seen order",
			in:   []string{"b", "a", "b", "a"},
			want: []string{"b", "a"},
		},
		{
			name: "nil stays empty",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestParseGroupMode(t *testing.T) {
	for _, mode := range AllGroupModes {
		parsed, err := ParseGroupMode(string(mode))
		assert.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}

	_, err := ParseGroupMode("fortnightly")
	assert.Error(t, err)
}

func TestGroupMode_IsDateMode(t *testing.T) {
	assert.True(t, GroupByDay.IsDateMode())
	assert.True(t, GroupByBiweekly.IsDateMode())
	assert.True(t, GroupByHalfYear.IsDateMode())
	assert.False(t, GroupByCategory.IsDateMode())
	assert.False(t, GroupByTags.IsDateMode())
	assert.False(t, GroupByPeople.IsDateMode())
}

func TestParseTab(t *testing.T) {
	assert.Equal(t, TabTransactions, ParseTab("transactions"))
	assert.Equal(t, TabGrouped, ParseTab("grouped"))
	assert.Equal(t, TabGrouped, ParseTab(""))
	assert.Equal(t, TabGrouped, ParseTab("bogus"))
}
