package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tiliavir/trivial-time-reconciler/internal/reconcile"
)

func TestSquashGroupsByDateAndTask(t *testing.T) {
	missing := []reconcile.Event{
		feedEvent(at("2025-06-23", "14:00"), "#200 later title"),
		feedEvent(at("2025-06-23", "09:00"), "#200 early title"),
		feedEvent(at("2025-06-23", "10:00"), "#300 other"),
		feedEvent(at("2025-06-24", "10:00"), "#200 next day"),
		feedEvent(at("2025-06-23", "16:00"), "#200 again"),
	}

	got := reconcile.Squash(missing)

	require.Len(t, got, 3)

	assert.Equal(t, reconcile.Date("2025-06-23"), got[0].Date)
	assert.Equal(t, 3, got[0].OccurrenceCount)
	assert.EqualValues(t, 5400, got[0].Duration)
	assert.Equal(t, at("2025-06-23", "09:00"), got[0].Start)
	assert.Equal(t, "#200 early title", got[0].Description)

	assert.Equal(t, "#300 other", got[1].Description)
	assert.Equal(t, 1, got[1].OccurrenceCount)

	assert.Equal(t, reconcile.Date("2025-06-24"), got[2].Date)
	assert.EqualValues(t, 1800, got[2].Duration)
}

func TestSquashNeverMergesUnnumbered(t *testing.T) {
	missing := []reconcile.Event{
		feedEvent(at("2025-06-23", "09:00"), "update README"),
		feedEvent(at("2025-06-23", "10:00"), "update README"),
	}

	got := reconcile.Squash(missing)

	require.Len(t, got, 2)
	for _, e := range got {
		assert.Equal(t, 1, e.OccurrenceCount)
		assert.False(t, e.TaskID.Valid())
	}
}

func TestSquashTags(t *testing.T) {
	e := feedEvent(at("2025-06-23", "09:00"), "#1")
	e.Action = "Opened"
	got := reconcile.Squash([]reconcile.Event{e})
	require.Len(t, got, 1)
	assert.Equal(t, []string{"gitlab-import", "squashed", "opened"}, got[0].Tags)
	assert.Equal(t, "backend", got[0].ProjectName)
}

func TestActionTag(t *testing.T) {
	assert.Equal(t, "pushed-to", reconcile.ActionTag("Pushed To"))
	assert.Equal(t, "commented-on", reconcile.ActionTag("  Commented   on "))
	assert.Equal(t, "", reconcile.ActionTag(""))
}

func TestSquashEmpty(t *testing.T) {
	assert.Empty(t, reconcile.Squash(nil))
}
