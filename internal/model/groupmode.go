package model

import "fmt"

// GroupMode selects how the filtered transaction list is partitioned.
type GroupMode string

// Supported grouping modes. The string values are what the URL's groupBy
// parameter carries.
const (
	GroupByCategory GroupMode = "category"
	GroupByDay      GroupMode = "day"
	GroupByWeek     GroupMode = "week"
	GroupByBiweekly GroupMode = "biweekly"
	GroupByMonth    GroupMode = "month"
	GroupByHalfYear GroupMode = "half year"
	GroupByYear     GroupMode = "year"
	GroupByTags     GroupMode = "tags"
	GroupByPeople   GroupMode = "people"
)

// AllGroupModes lists every mode in display order.
var AllGroupModes = []GroupMode{
	GroupByCategory,
	GroupByDay,
	GroupByWeek,
	GroupByBiweekly,
	GroupByMonth,
	GroupByHalfYear,
	GroupByYear,
	GroupByTags,
	GroupByPeople,
}

// DefaultGroupMode is used when the URL carries no groupBy parameter.
const DefaultGroupMode = GroupByCategory

// ParseGroupMode validates a groupBy parameter value.
func ParseGroupMode(s string) (GroupMode, error) {
	for _, mode := range AllGroupModes {
		if string(mode) == s {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown group mode: %q", s)
}

// IsDateMode reports whether groups of this mode are ordered by date rather
// than by total.
func (m GroupMode) IsDateMode() bool {
	switch m {
	case GroupByDay, GroupByWeek, GroupByBiweekly, GroupByMonth, GroupByHalfYear, GroupByYear:
		return true
	default:
		return false
	}
}

// Tab identifies the active main view.
type Tab string

// Main view tabs. The string values are what the URL's tab parameter carries.
const (
	TabGrouped      Tab = "grouped"
	TabTransactions Tab = "transactions"
)

// DefaultTab is used when the URL carries no tab parameter.
const DefaultTab = TabGrouped

// ParseTab validates a tab parameter value, falling back to the default.
func ParseTab(s string) Tab {
	if Tab(s) == TabTransactions {
		return TabTransactions
	}
	return TabGrouped
}
