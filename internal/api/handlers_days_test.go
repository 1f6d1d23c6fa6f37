package api

import (
	"net/http"
	"testing"

	"github.com/terraincognita07/cyclecore/internal/models"
)

func TestLogUpsertReadAndDelete(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)

	response := app.do(t, http.MethodPut, "/api/logs/2024-03-10", 1, map[string]any{
		"mood": "tired",
		"flow": "medium",
		"symptoms": []any{
			map[string]any{"id": "cramp", "severity": 5},
			"headache",
			map[string]any{"id": "unknown", "severity": 2},
			map[string]any{"id": "bloating", "severity": 0},
		},
		"habits": []string{"water", "water", "yoga"},
		"note":   "  heavy day  ",
	})
	assertStatus(t, response, http.StatusOK)
	saved := models.DailyLog{}
	decodeJSON(t, response, &saved)

	if len(saved.Symptoms) != 2 || saved.Symptoms[0].Severity != models.MaxSymptomSeverity || saved.Symptoms[1].ID != models.SymptomHeadache {
		t.Fatalf("expected normalized symptoms, got %#v", saved.Symptoms)
	}
	if len(saved.Habits) != 1 || saved.Note != "heavy day" {
		t.Fatalf("expected normalized habits and note, got %#v / %q", saved.Habits, saved.Note)
	}

	response = app.do(t, http.MethodGet, "/api/logs/2024-03-10", 1, nil)
	assertStatus(t, response, http.StatusOK)
	dayPayload := struct {
		Exists bool            `json:"exists"`
		Log    models.DailyLog `json:"log"`
	}{}
	decodeJSON(t, response, &dayPayload)
	if !dayPayload.Exists || dayPayload.Log.Mood != models.MoodTired || dayPayload.Log.Flow != models.FlowMedium {
		t.Fatalf("unexpected stored log: %#v", dayPayload)
	}

	response = app.do(t, http.MethodGet, "/api/logs?from=2024-03-01&to=2024-03-31", 1, nil)
	assertStatus(t, response, http.StatusOK)
	logs := []models.DailyLog{}
	decodeJSON(t, response, &logs)
	if len(logs) != 1 {
		t.Fatalf("expected one log in range, got %d", len(logs))
	}

	response = app.do(t, http.MethodGet, "/api/logs/2024-03-11", 1, nil)
	decodeJSON(t, response, &dayPayload)
	if dayPayload.Exists {
		t.Fatal("expected empty day to report exists=false")
	}

	response = app.do(t, http.MethodDelete, "/api/logs/2024-03-10", 1, nil)
	assertStatus(t, response, http.StatusNoContent)
	response = app.do(t, http.MethodDelete, "/api/logs/2024-03-10", 1, nil)
	assertStatus(t, response, http.StatusNotFound)
}

func TestLogValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{name: "unknown mood", path: "/api/logs/2024-03-10", body: map[string]any{"mood": "elated"}},
		{name: "unknown flow", path: "/api/logs/2024-03-10", body: map[string]any{"flow": "spotting"}},
		{name: "future day", path: "/api/logs/2024-03-16", body: map[string]any{"mood": "calm"}},
		{name: "bad date", path: "/api/logs/10-03-2024", body: map[string]any{"mood": "calm"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			response := app.do(t, http.MethodPut, test.path, 1, test.body)
			assertStatus(t, response, http.StatusBadRequest)
		})
	}
}

func TestStatsReport(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	for _, payload := range []map[string]any{
		{"start": "2023-12-04", "end": "2023-12-08"},
		{"start": "2024-01-01", "end": "2024-01-05"},
		{"start": "2024-01-30", "end": "2024-02-03"},
		{"start": "2024-02-26"},
	} {
		assertStatus(t, app.do(t, http.MethodPost, "/api/periods", 1, payload), http.StatusCreated)
	}
	assertStatus(t, app.do(t, http.MethodPut, "/api/logs/2024-03-01", 1, map[string]any{"mood": "happy", "symptoms": []string{"cramp"}}), http.StatusOK)
	assertStatus(t, app.do(t, http.MethodPut, "/api/logs/2024-03-02", 1, map[string]any{"mood": "sad"}), http.StatusOK)

	response := app.do(t, http.MethodGet, "/api/stats", 1, nil)
	assertStatus(t, response, http.StatusOK)
	report := struct {
		Cycle            models.CycleStats  `json:"cycle"`
		SymptomFrequency map[string]int     `json:"symptomFrequency"`
		MoodTrend        []models.MoodPoint `json:"moodTrend"`
		LoggedDays       int                `json:"loggedDays"`
	}{}
	decodeJSON(t, response, &report)

	if report.Cycle.TotalCycles != 3 || report.Cycle.AvgCycleLength != 28 {
		t.Fatalf("unexpected cycle stats: %#v", report.Cycle)
	}
	if report.Cycle.CycleVariability != 0.8 {
		t.Fatalf("expected variability 0.8, got %v", report.Cycle.CycleVariability)
	}
	if report.SymptomFrequency["cramp"] != 50 {
		t.Fatalf("expected cramp frequency 50, got %#v", report.SymptomFrequency)
	}
	if len(report.MoodTrend) != 2 || report.MoodTrend[0].MoodScore != 7 || report.MoodTrend[1].MoodScore != 3 {
		t.Fatalf("unexpected mood trend: %#v", report.MoodTrend)
	}
	if report.LoggedDays != 2 {
		t.Fatalf("expected two logged days, got %d", report.LoggedDays)
	}
}
