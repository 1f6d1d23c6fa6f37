package api

import (
	"net/http"
	"testing"

	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/security"
	"github.com/terraincognita07/cyclecore/internal/services"
)

type recommendationsPayload struct {
	Date            string               `json:"date"`
	Phase           models.Phase         `json:"phase"`
	Language        string               `json:"language"`
	CatalogVersion  string               `json:"catalogVersion"`
	Recommendations []services.RankedTip `json:"recommendations"`
}

func TestRecommendationsRankMatchingTipFirst(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	response := app.do(t, http.MethodPost, "/api/recommendations", 1, map[string]any{
		"symptoms": []string{"cramp"},
		"phase":    "menstrual",
		"limit":    2,
	})
	assertStatus(t, response, http.StatusOK)
	payload := recommendationsPayload{}
	decodeJSON(t, response, &payload)

	if len(payload.Recommendations) != 2 {
		t.Fatalf("expected limit of 2 to be respected, got %d", len(payload.Recommendations))
	}
	if payload.Recommendations[0].Tip.ID != "warm-compress" {
		t.Fatalf("expected warm-compress first, got %q", payload.Recommendations[0].Tip.ID)
	}
	if payload.Recommendations[0].Score < payload.Recommendations[1].Score {
		t.Fatalf("expected descending scores, got %#v", payload.Recommendations)
	}
	if payload.Language != "en" || payload.CatalogVersion == "" || payload.Date != "2024-03-15" {
		t.Fatalf("unexpected response envelope: %#v", payload)
	}
}

func TestRecommendationsUseLanguageAndDayLog(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	assertStatus(t, app.do(t, http.MethodPut, "/api/preferences", 1, map[string]any{
		"avgCycleDays":    28,
		"avgPeriodDays":   5,
		"lastPeriodStart": "2024-03-14",
	}), http.StatusOK)
	assertStatus(t, app.do(t, http.MethodPut, "/api/logs/2024-03-15", 1, map[string]any{
		"symptoms": []string{"cramp"},
	}), http.StatusOK)

	response := app.do(t, http.MethodPost, "/api/recommendations?lang=tr", 1, nil)
	assertStatus(t, response, http.StatusOK)
	if got := response.Header.Get("Content-Language"); got != "tr" {
		t.Fatalf("expected Content-Language tr, got %q", got)
	}
	payload := recommendationsPayload{}
	decodeJSON(t, response, &payload)

	if payload.Language != "tr" || payload.Phase != models.PhaseMenstrual {
		t.Fatalf("expected tr and menstrual phase, got %q / %q", payload.Language, payload.Phase)
	}
	if len(payload.Recommendations) != 3 || payload.Recommendations[0].Tip.ID != "warm-compress" {
		t.Fatalf("expected three tips led by warm-compress, got %#v", payload.Recommendations)
	}
}

func TestRecommendationsRejectInvalidLimit(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	response := app.do(t, http.MethodPost, "/api/recommendations", 1, map[string]any{"limit": 21})
	assertStatus(t, response, http.StatusBadRequest)
	if message := readAPIError(t, response); message == "" {
		t.Fatal("expected error message")
	}
}

func TestFAQFiltersByTags(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	payload := struct {
		Language string             `json:"language"`
		FAQ      []models.FAQRecord `json:"faq"`
	}{}

	response := app.do(t, http.MethodGet, "/api/faq?tags=fertility", 1, nil)
	assertStatus(t, response, http.StatusOK)
	decodeJSON(t, response, &payload)
	if len(payload.FAQ) != 1 || payload.FAQ[0].ID != "fertile-window" {
		t.Fatalf("expected fertile-window only, got %#v", payload.FAQ)
	}

	response = app.do(t, http.MethodGet, "/api/faq", 1, nil)
	decodeJSON(t, response, &payload)
	if len(payload.FAQ) < 2 {
		t.Fatalf("expected full faq without tags, got %d entries", len(payload.FAQ))
	}
}

func TestFeaturesEndpointReturnsFullVector(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	response := app.do(t, http.MethodGet, "/api/features?date=2024-03-10", 1, nil)
	assertStatus(t, response, http.StatusOK)
	payload := struct {
		Date     string    `json:"date"`
		Length   int       `json:"length"`
		Features []float64 `json:"features"`
	}{}
	decodeJSON(t, response, &payload)

	if payload.Length != models.FeatureLength || len(payload.Features) != models.FeatureLength {
		t.Fatalf("expected %d features, got length=%d len=%d", models.FeatureLength, payload.Length, len(payload.Features))
	}
	if payload.Date != "2024-03-10" {
		t.Fatalf("expected requested date echoed, got %q", payload.Date)
	}
}

func TestLearningDisabledReturnsUnavailable(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	assertStatus(t, app.do(t, http.MethodGet, "/api/learning", 1, nil), http.StatusServiceUnavailable)
	assertStatus(t, app.do(t, http.MethodPost, "/api/learning/update", 1, nil), http.StatusServiceUnavailable)
}

func TestLearningLifecycleOverAPI(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, true)

	response := app.do(t, http.MethodPost, "/api/learning/update", 1, nil)
	assertStatus(t, response, http.StatusUnprocessableEntity)

	response = app.do(t, http.MethodGet, "/api/learning", 1, nil)
	assertStatus(t, response, http.StatusOK)
	status := struct {
		Initialized  bool                   `json:"initialized"`
		Stats        services.LearningStats `json:"stats"`
		ShouldUpdate bool                   `json:"shouldUpdate"`
	}{}
	decodeJSON(t, response, &status)
	if status.Initialized {
		t.Fatal("expected no learning state before any data")
	}

	assertStatus(t, app.do(t, http.MethodPut, "/api/logs/2024-03-14", 1, map[string]any{"mood": "calm"}), http.StatusOK)

	response = app.do(t, http.MethodGet, "/api/learning", 1, nil)
	assertStatus(t, response, http.StatusOK)
	decodeJSON(t, response, &status)
	if !status.Initialized || status.Stats.DataPoints != 1 || status.Stats.ModelVersion != models.InitialModelVersion {
		t.Fatalf("unexpected learning status: %#v", status)
	}
	if status.ShouldUpdate {
		t.Fatal("expected no update due with a single log")
	}

	response = app.do(t, http.MethodPost, "/api/learning/update", 1, nil)
	assertStatus(t, response, http.StatusOK)
	result := services.UpdateResult{}
	decodeJSON(t, response, &result)
	if !result.Success || result.ModelVersion != "1.0.1" {
		t.Fatalf("unexpected update result: %#v", result)
	}
}

func TestSyntheticTrainingSet(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	response := app.doAs(t, http.MethodGet, "/api/synthetic/training-set?users=2&cycles=2&seed=7", 1, security.RoleAdmin, nil)
	assertStatus(t, response, http.StatusOK)
	payload := struct {
		Users int                  `json:"users"`
		Rows  int                  `json:"rows"`
		Set   services.TrainingSet `json:"set"`
	}{}
	decodeJSON(t, response, &payload)

	if payload.Users != 2 || payload.Rows == 0 || payload.Rows != len(payload.Set.Features) {
		t.Fatalf("unexpected training set envelope: users=%d rows=%d", payload.Users, payload.Rows)
	}
	if len(payload.Set.Features[0]) != models.FeatureLength {
		t.Fatalf("expected %d features per row, got %d", models.FeatureLength, len(payload.Set.Features[0]))
	}
	if len(payload.Set.Targets.Phase) != payload.Rows {
		t.Fatalf("expected one phase target per row, got %d", len(payload.Set.Targets.Phase))
	}

	for _, query := range []string{"users=0", "users=51", "cycles=13", "seed=-1", "users=abc"} {
		response := app.doAs(t, http.MethodGet, "/api/synthetic/training-set?"+query, 1, security.RoleAdmin, nil)
		assertStatus(t, response, http.StatusBadRequest)
	}
}

func TestSyntheticTrainingSetRequiresAdmin(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	response := app.do(t, http.MethodGet, "/api/synthetic/training-set?users=1&cycles=1", 1, nil)
	assertStatus(t, response, http.StatusForbidden)
	if got := readAPIError(t, response); got != "admin access required" {
		t.Fatalf("unexpected error %q", got)
	}

	response = app.do(t, http.MethodGet, "/api/synthetic/training-set", 0, nil)
	assertStatus(t, response, http.StatusUnauthorized)
}

func TestRecommendationsAcceptClientFeatures(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	features := make([]float64, models.FeatureLength)
	features[1] = 1
	response := app.do(t, http.MethodPost, "/api/recommendations", 1, map[string]any{
		"symptoms": []string{"cramp"},
		"phase":    "menstrual",
		"features": features,
	})
	assertStatus(t, response, http.StatusOK)
	payload := recommendationsPayload{}
	decodeJSON(t, response, &payload)
	if len(payload.Recommendations) == 0 || payload.Recommendations[0].Tip.ID != "warm-compress" {
		t.Fatalf("expected warm-compress first, got %#v", payload.Recommendations)
	}

	response = app.do(t, http.MethodPost, "/api/recommendations", 1, map[string]any{
		"features": []float64{0.1, 0.2},
	})
	assertStatus(t, response, http.StatusBadRequest)
	if got := readAPIError(t, response); got != "features must hold 39 values" {
		t.Fatalf("unexpected error %q", got)
	}
}

func TestTipsEndpoints(t *testing.T) {
	t.Parallel()

	app := newTestApp(t, false)
	payload := struct {
		Language string             `json:"language"`
		Tips     []models.TipRecord `json:"tips"`
	}{}

	response := app.do(t, http.MethodGet, "/api/tips", 1, nil)
	assertStatus(t, response, http.StatusOK)
	decodeJSON(t, response, &payload)
	total := len(payload.Tips)
	if total == 0 || payload.Language != "en" {
		t.Fatalf("unexpected tips envelope: %d tips, language %q", total, payload.Language)
	}

	response = app.do(t, http.MethodGet, "/api/tips?tags=nausea", 1, nil)
	assertStatus(t, response, http.StatusOK)
	decodeJSON(t, response, &payload)
	found := false
	for _, tip := range payload.Tips {
		hasTag := false
		for _, tag := range tip.Tags {
			hasTag = hasTag || tag == "nausea"
		}
		if !hasTag {
			t.Fatalf("tip %s does not carry the nausea tag", tip.ID)
		}
		found = found || tip.ID == "ginger-for-nausea"
	}
	if !found || len(payload.Tips) >= total {
		t.Fatalf("expected a narrowed list with ginger-for-nausea, got %d tips", len(payload.Tips))
	}

	response = app.do(t, http.MethodGet, "/api/tips/warm-compress", 1, nil)
	assertStatus(t, response, http.StatusOK)
	tip := models.TipRecord{}
	decodeJSON(t, response, &tip)
	if tip.ID != "warm-compress" || tip.Phase != models.PhaseMenstrual {
		t.Fatalf("unexpected tip %#v", tip)
	}

	response = app.do(t, http.MethodGet, "/api/tips/missing", 1, nil)
	assertStatus(t, response, http.StatusNotFound)
}
