package derive

import (
	"fmt"
	"sort"
	"time"

	"github.com/osirenko/finch/internal/model"
)

// Group is one bucket of the grouped view.
type Group struct {
	Key          string
	Transactions []model.Transaction
	CommonTags   []string
	Total        float64
}

// GroupKeys returns the string key(s) a transaction files under for the
// given mode. Only the tags mode produces more than one key.
func GroupKeys(tr model.Transaction, mode model.GroupMode) []string {
	switch mode {
	case model.GroupByTags:
		return tr.Tags
	default:
		return []string{groupKey(tr, mode)}
	}
}

func groupKey(tr model.Transaction, mode model.GroupMode) string {
	t := tr.OccurredTime().UTC()
	switch mode {
	case model.GroupByCategory:
		return tr.Category
	case model.GroupByDay:
		return model.FormatDate(t)
	case model.GroupByWeek:
		return model.FormatDate(startOfWeek(t))
	case model.GroupByBiweekly:
		// The week number restarts every month: days 1-14 are W1,
		// 15-28 are W2, 29-31 are W3.
		return fmt.Sprintf("%d-W%d", t.Year(), (t.Day()-1)/14+1)
	case model.GroupByMonth:
		return t.Format("2006-01")
	case model.GroupByHalfYear:
		return fmt.Sprintf("%d-H%d", t.Year(), (int(t.Month())-1)/6+1)
	case model.GroupByYear:
		return t.Format("2006")
	case model.GroupByPeople:
		return tr.PersonName
	default:
		return tr.Category
	}
}

// startOfWeek returns the Monday beginning the week containing t. Sunday
// counts as day 7 of the prior week.
func startOfWeek(t time.Time) time.Time {
	day := t.Truncate(24 * time.Hour)
	offset := int(t.Weekday()) - 1
	if t.Weekday() == time.Sunday {
		offset = 6
	}
	return day.AddDate(0, 0, -offset)
}

// GroupTransactions partitions the list by the mode's key extractor. A
// transaction with several tags appears in one group per tag when grouping
// by tags; no other mode duplicates a transaction. Each group carries the
// signed total and the tags common to every member. Date-keyed modes are
// ordered by descending date of the group's first transaction, the
// categorical modes by descending total.
func GroupTransactions(transactions []model.Transaction, mode model.GroupMode) []Group {
	byKey := make(map[string]int)
	var groups []Group

	for _, tr := range transactions {
		for _, key := range GroupKeys(tr, mode) {
			idx, ok := byKey[key]
			if !ok {
				idx = len(groups)
				byKey[key] = idx
				groups = append(groups, Group{Key: key})
			}
			groups[idx].Transactions = append(groups[idx].Transactions, tr)
			groups[idx].Total += tr.Amount
		}
	}

	for i := range groups {
		groups[i].CommonTags = CommonTags(groups[i].Transactions)
	}

	if mode.IsDateMode() {
		sort.SliceStable(groups, func(i, j int) bool {
			return firstOccurred(groups[i]).After(firstOccurred(groups[j]))
		})
	} else {
		sort.SliceStable(groups, func(i, j int) bool {
			return groups[i].Total > groups[j].Total
		})
	}

	return groups
}

// CommonTags returns the tags present on every transaction in the list: a
// tag qualifies when its occurrence count equals the list length. Order
// follows first appearance.
func CommonTags(transactions []model.Transaction) []string {
	if len(transactions) == 0 {
		return nil
	}

	counts := make(map[string]int)
	var order []string
	for _, tr := range transactions {
		for _, tag := range tr.Tags {
			if counts[tag] == 0 {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}

	var common []string
	for _, tag := range order {
		if counts[tag] == len(transactions) {
			common = append(common, tag)
		}
	}
	return common
}

func firstOccurred(g Group) time.Time {
	if len(g.Transactions) == 0 {
		return time.Time{}
	}
	return g.Transactions[0].OccurredTime()
}
