package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/osirenko/finch/internal/model"
	"github.com/osirenko/finch/internal/state"
)

// applyFilter parses an "axis=value" expression and writes it into the
// state graph. List axes take comma-separated values; an empty value
// clears the axis. Amount bounds go through the live amount cell so the
// debounce gate applies as usual.
func applyFilter(s *state.AppState, expr string) error {
	axis, value, found := strings.Cut(expr, "=")
	if !found {
		return fmt.Errorf("expected axis=value, got %q", expr)
	}
	axis = strings.TrimSpace(axis)
	value = strings.TrimSpace(value)

	switch axis {
	case "merchants":
		s.Merchants.Set(splitList(value))
	case "cards":
		s.Cards.Set(splitList(value))
	case "persons":
		s.Persons.Set(splitList(value))
	case "categories":
		s.Categories.Set(splitList(value))
	case "tags":
		s.Tags.Set(splitList(value))
	case "dateStart":
		s.DateStart.Set(value)
	case "dateEnd":
		s.DateEnd.Set(value)
	case "amountMin", "amountMax":
		bound, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", value)
		}
		r := s.Amount.Get()
		if axis == "amountMin" {
			r.Min = bound
		} else {
			r.Max = bound
		}
		s.Amount.Set(r)
	case "groupBy":
		mode, err := model.ParseGroupMode(value)
		if err != nil {
			return err
		}
		s.GroupMode.Set(mode)
	default:
		return fmt.Errorf("unknown filter axis %q", axis)
	}
	return nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
