package derive

import (
	"time"

	"github.com/osirenko/finch/internal/model"
)

// Dataset is a label/value series ready to hand to a chart sink.
type Dataset struct {
	Labels []string
	Values []float64
}

// UntaggedLabel buckets transactions that carry no tags at all.
const UntaggedLabel = "Untagged"

// DailyWindow is how many trailing days the daily series covers, today
// included.
const DailyWindow = 31

// ByCategory sums transaction magnitudes per category, in first-seen order.
func ByCategory(transactions []model.Transaction) Dataset {
	return sumBy(transactions, func(tr model.Transaction) []string {
		return []string{tr.Category}
	})
}

// ByTag sums transaction magnitudes per tag. A transaction with several
// tags contributes its full magnitude to each; one with none goes under
// the Untagged label.
func ByTag(transactions []model.Transaction) Dataset {
	return sumBy(transactions, func(tr model.Transaction) []string {
		if len(tr.Tags) == 0 {
			return []string{UntaggedLabel}
		}
		return tr.Tags
	})
}

// ByPerson sums transaction magnitudes per person, in first-seen order.
func ByPerson(transactions []model.Transaction) Dataset {
	return sumBy(transactions, func(tr model.Transaction) []string {
		return []string{tr.PersonName}
	})
}

// DailyTotals sums transaction magnitudes per calendar day over the
// trailing DailyWindow ending at now, chronological and zero-filled.
// Bucketing and display labels use now's time zone.
func DailyTotals(transactions []model.Transaction, now time.Time) Dataset {
	loc := now.Location()
	first := now.AddDate(0, 0, -(DailyWindow - 1))

	sums := make(map[string]float64, DailyWindow)
	for _, tr := range transactions {
		occurred := tr.OccurredTime()
		if occurred.IsZero() {
			continue
		}
		sums[model.FormatDate(occurred.In(loc))] += tr.AbsAmount()
	}

	ds := Dataset{
		Labels: make([]string, 0, DailyWindow),
		Values: make([]float64, 0, DailyWindow),
	}
	for day := 0; day < DailyWindow; day++ {
		date := first.AddDate(0, 0, day)
		ds.Labels = append(ds.Labels, date.Format("Jan 2"))
		ds.Values = append(ds.Values, sums[model.FormatDate(date)])
	}
	return ds
}

// Summary aggregates the filtered list for the stats header.
type Summary struct {
	Count   int
	Total   float64
	Average float64
}

// Summarize computes count, signed total, and average amount.
func Summarize(transactions []model.Transaction) Summary {
	s := Summary{Count: len(transactions)}
	for _, tr := range transactions {
		s.Total += tr.Amount
	}
	if s.Count > 0 {
		s.Average = s.Total / float64(s.Count)
	}
	return s
}

func sumBy(transactions []model.Transaction, keys func(model.Transaction) []string) Dataset {
	sums := make(map[string]float64)
	var order []string
	for _, tr := range transactions {
		for _, key := range keys(tr) {
			if _, ok := sums[key]; !ok {
				order = append(order, key)
			}
			sums[key] += tr.AbsAmount()
		}
	}

	ds := Dataset{
		Labels: make([]string, 0, len(order)),
		Values: make([]float64, 0, len(order)),
	}
	for _, key := range order {
		ds.Labels = append(ds.Labels, key)
		ds.Values = append(ds.Values, sums[key])
	}
	return ds
}
