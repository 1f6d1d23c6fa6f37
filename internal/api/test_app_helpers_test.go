package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecore/internal/db"
	"github.com/terraincognita07/cyclecore/internal/knowledge"
	"github.com/terraincognita07/cyclecore/internal/security"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const testSecretKey = "cyclecore-test-secret-key-with-enough-length"

var testNow = time.Date(2024, time.March, 15, 9, 30, 0, 0, time.UTC)

type testApp struct {
	app        *fiber.App
	signingKey []byte
	lifecycle  *services.LifecycleManager
}

func newTestApp(t *testing.T, withLearning bool) *testApp {
	t.Helper()

	databasePath := filepath.Join(t.TempDir(), "cyclecore-api-test.db")
	database, err := db.OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	knowledgeManager, err := knowledge.NewManager(knowledge.LangEN, "")
	if err != nil {
		t.Fatalf("init knowledge: %v", err)
	}
	signingKey, err := security.DeriveSigningKey(testSecretKey)
	if err != nil {
		t.Fatalf("derive signing key: %v", err)
	}

	generator := services.NewGenerator(11, time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC))
	options := HandlerOptions{
		SigningKey: signingKey,
		Location:   time.UTC,
		Knowledge:  knowledgeManager,
		Generator:  generator,
		Now:        func() time.Time { return testNow },
	}

	var lifecycle *services.LifecycleManager
	if withLearning {
		lifecycle = services.NewLifecycleManager(
			db.NewLearningStateRepository(database),
			services.NewSimulatedTrainer(5),
			generator,
			services.LifecycleOptions{
				SyntheticUsers:  2,
				SyntheticCycles: 2,
				Now:             func() time.Time { return testNow },
			},
		)
		options.Lifecycle = lifecycle
	}

	handler, err := NewHandler(database, options)
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, signingKey: signingKey, lifecycle: lifecycle}
}

func (ta *testApp) token(t *testing.T, userID uint, role string) string {
	t.Helper()
	raw, err := security.IssueToken(ta.signingKey, userID, role, time.Hour, testNow)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return raw
}

func (ta *testApp) do(t *testing.T, method string, path string, userID uint, body any) *http.Response {
	t.Helper()
	return ta.doAs(t, method, path, userID, security.RoleUser, body)
}

func (ta *testApp) doAs(t *testing.T, method string, path string, userID uint, role string, body any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if userID != 0 {
		request.Header.Set("Authorization", "Bearer "+ta.token(t, userID, role))
	}

	response, err := ta.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	return response
}

func decodeJSON(t *testing.T, response *http.Response, target any) {
	t.Helper()
	defer response.Body.Close()
	if err := json.NewDecoder(response.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func readAPIError(t *testing.T, response *http.Response) string {
	t.Helper()
	payload := map[string]string{}
	decodeJSON(t, response, &payload)
	return payload["error"]
}

func assertStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()
	if response.StatusCode != want {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, strings.TrimSpace(string(body)))
	}
}
