package services

import "github.com/terraincognita07/cyclecore/internal/models"

func ClampSeverity(value int) int {
	if value < 0 {
		return 0
	}
	if value > models.MaxSymptomSeverity {
		return models.MaxSymptomSeverity
	}
	return value
}

// NormalizeSymptomEntries clamps severities and drops entries that carry no
// information: unknown or empty ids, severity zero and repeated ids (the
// first occurrence wins).
func NormalizeSymptomEntries(entries []models.SymptomEntry) []models.SymptomEntry {
	normalized := make([]models.SymptomEntry, 0, len(entries))
	seen := make(map[models.Symptom]struct{}, len(entries))
	for _, entry := range entries {
		if !entry.ID.IsKnown() {
			continue
		}
		if _, duplicate := seen[entry.ID]; duplicate {
			continue
		}
		severity := ClampSeverity(entry.Severity)
		if severity == 0 {
			continue
		}
		seen[entry.ID] = struct{}{}
		normalized = append(normalized, models.SymptomEntry{ID: entry.ID, Severity: severity})
	}
	return normalized
}

func SymptomIDs(entries []models.SymptomEntry) []models.Symptom {
	ids := make([]models.Symptom, 0, len(entries))
	for _, entry := range NormalizeSymptomEntries(entries) {
		ids = append(ids, entry.ID)
	}
	return ids
}

func SumSymptomSeverity(entries []models.SymptomEntry) int {
	total := 0
	for _, entry := range NormalizeSymptomEntries(entries) {
		total += entry.Severity
	}
	return total
}

func NormalizeHabits(habits []models.Habit) []models.Habit {
	known := make(map[models.Habit]struct{}, len(models.AllHabits))
	for _, habit := range models.AllHabits {
		known[habit] = struct{}{}
	}

	normalized := make([]models.Habit, 0, len(habits))
	seen := make(map[models.Habit]struct{}, len(habits))
	for _, habit := range habits {
		if _, ok := known[habit]; !ok {
			continue
		}
		if _, duplicate := seen[habit]; duplicate {
			continue
		}
		seen[habit] = struct{}{}
		normalized = append(normalized, habit)
	}
	return normalized
}
