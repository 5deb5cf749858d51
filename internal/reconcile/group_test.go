package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

func TestGroupByDate(t *testing.T) {
	events := []reconcile.Event{
		feedEvent(at("2025-06-24", "09:00"), "#1 a"),
		feedEvent(at("2025-06-23", "17:00"), "#2 b"),
		feedEvent(at("2025-06-24", "08:00"), "#3 c"),
		feedEvent(at("2025-06-23", "10:00"), "#4 d"),
	}

	g := reconcile.GroupByDate(events)

	assert.Equal(t, []reconcile.Date{"2025-06-23", "2025-06-24"}, g.Dates())
	assert.Equal(t, len(events), g.Len())

	day1 := g.Events("2025-06-23")
	require.Len(t, day1, 2)
	assert.Equal(t, "#2 b", day1[0].Description)
	assert.Equal(t, "#4 d", day1[1].Description)

	day2 := g.Events("2025-06-24")
	require.Len(t, day2, 2)
	assert.Equal(t, "#1 a", day2[0].Description)
	assert.Equal(t, "#3 c", day2[1].Description)

	assert.Empty(t, g.Events("2025-06-25"))
}

func TestGroupByDateEmpty(t *testing.T) {
	g := reconcile.GroupByDate(nil)
	assert.Empty(t, g.Dates())
	assert.Zero(t, g.Len())
}
