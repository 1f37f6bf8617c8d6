package reactive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCell_GetSet(t *testing.T) {
	c := NewCell(10)
	assert.Equal(t, 10, c.Get())

	c.Set(42)
	assert.Equal(t, 42, c.Get())
}

func TestCell_VersionAdvancesOnWrite(t *testing.T) {
	c := NewCell("a")
	v0 := c.Version()

	c.Set("b")
	v1 := c.Version()
	assert.Greater(t, v1, v0)

	// Writing the same value still counts as a change.
	c.Set("b")
	assert.Greater(t, c.Version(), v1)
}

func TestCell_OnChange(t *testing.T) {
	c := NewCell(0)

	var notified int
	cancel := c.OnChange(func() { notified++ })

	c.Set(1)
	c.Set(2)
	assert.Equal(t, 2, notified)

	cancel()
	c.Set(3)
	assert.Equal(t, 2, notified, "canceled subscriber must not fire")
}

func TestCell_Update(t *testing.T) {
	c := NewCell([]string{"a"})
	c.Update(func(v []string) []string { return append(v, "b") })
	assert.Equal(t, []string{"a", "b"}, c.Get())
}

func TestCell_SubscriberMayWriteCells(t *testing.T) {
	a := NewCell(1)
	b := NewCell(0)

	a.OnChange(func() { b.Set(a.Get() * 2) })

	a.Set(21)
	assert.Equal(t, 42, b.Get())
}

func TestDerive_Memoizes(t *testing.T) {
	c := NewCell(2)

	computations := 0
	d := Derive(func() int {
		computations++
		return c.Get() * c.Get()
	}, c)

	assert.Equal(t, 4, d.Get())
	assert.Equal(t, 4, d.Get())
	assert.Equal(t, 1, computations, "unchanged dependency must not recompute")

	c.Set(3)
	assert.Equal(t, 9, d.Get())
	assert.Equal(t, 2, computations)
}

func TestDerive_Chained(t *testing.T) {
	c := NewCell(1)
	double := Derive(func() int { return c.Get() * 2 }, c)
	plusOne := Derive(func() int { return double.Get() + 1 }, double)

	require.Equal(t, 3, plusOne.Get())

	c.Set(5)
	assert.Equal(t, 11, plusOne.Get(), "change must propagate through the chain")
}

func TestDerive_OnlyListedDepsInvalidate(t *testing.T) {
	listed := NewCell(1)
	unlisted := NewCell(1)

	d := Derive(func() int { return listed.Get() + unlisted.Get() }, listed)
	require.Equal(t, 2, d.Get())

	unlisted.Set(10)
	assert.Equal(t, 2, d.Get(), "unlisted source must not invalidate the memo")

	listed.Set(2)
	assert.Equal(t, 12, d.Get())
}

func TestWatch_RunsImmediatelyAndOnChange(t *testing.T) {
	c := NewCell(0)

	var runs int
	stop := Watch(func() { runs++ }, c)
	assert.Equal(t, 1, runs, "watch runs once on registration")

	c.Set(1)
	assert.Equal(t, 2, runs)

	stop()
	c.Set(2)
	assert.Equal(t, 2, runs)
}

func TestWatch_ObservesConsistentSnapshot(t *testing.T) {
	a := NewCell(1)
	b := NewCell(1)
	sum := Derive(func() int { return a.Get() + b.Get() }, a, b)

	var seen []int
	Watch(func() { seen = append(seen, sum.Get()) }, sum)

	a.Set(2)
	b.Set(3)

	assert.Equal(t, []int{2, 3, 5}, seen)
}
