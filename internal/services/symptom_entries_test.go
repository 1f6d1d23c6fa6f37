package services

import (
	"testing"

	"github.com/terraincognita07/cyclecore/internal/models"
)

func TestNormalizeSymptomEntries(t *testing.T) {
	t.Parallel()

	got := NormalizeSymptomEntries([]models.SymptomEntry{
		{ID: models.SymptomCramp, Severity: 9},
		{ID: "", Severity: 2},
		{ID: "unknown", Severity: 2},
		{ID: models.SymptomHeadache, Severity: 0},
		{ID: models.SymptomCramp, Severity: 1},
		{ID: models.SymptomNausea, Severity: 2},
	})

	want := []models.SymptomEntry{
		{ID: models.SymptomCramp, Severity: models.MaxSymptomSeverity},
		{ID: models.SymptomNausea, Severity: 2},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %#v", len(want), got)
	}
	for index := range want {
		if got[index] != want[index] {
			t.Fatalf("entry %d: expected %#v, got %#v", index, want[index], got[index])
		}
	}
}

func TestNormalizeHabits(t *testing.T) {
	t.Parallel()

	got := NormalizeHabits([]models.Habit{models.HabitWalk, "dance", models.HabitWalk, models.HabitRest})
	if len(got) != 2 || got[0] != models.HabitWalk || got[1] != models.HabitRest {
		t.Fatalf("unexpected habits %#v", got)
	}
}
