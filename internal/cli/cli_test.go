package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/cyclecore/internal/config"
	"github.com/terraincognita07/cyclecore/internal/models"
	"github.com/terraincognita07/cyclecore/internal/security"
	"github.com/terraincognita07/cyclecore/internal/services"
)

const testSecret = "0123456789abcdef0123456789abcdef-cli"

var testStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	if root.Use != "cyclecore" {
		t.Fatalf("expected root use cyclecore, got %q", root.Use)
	}
	registered := make(map[string]bool)
	for _, command := range root.Commands() {
		registered[command.Name()] = true
	}
	for _, name := range []string{"serve", "token", "synthetic", "selftest"} {
		if !registered[name] {
			t.Errorf("expected command %q to be registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Fatal("expected persistent --config flag")
	}
}

func TestRunTokenCommandIssuesParsableToken(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Auth.SecretKey = testSecret
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

	out := &bytes.Buffer{}
	if err := RunTokenCommand(out, cfg, 7, security.RoleAdmin, time.Hour, now); err != nil {
		t.Fatalf("RunTokenCommand returned error: %v", err)
	}

	key, err := cfg.SigningKey()
	if err != nil {
		t.Fatalf("derive key: %v", err)
	}
	claims, err := security.ParseToken(key, strings.TrimSpace(out.String()), now.Add(time.Minute))
	if err != nil {
		t.Fatalf("parse issued token: %v", err)
	}
	if claims.UserID != 7 || claims.Role != security.RoleAdmin {
		t.Fatalf("unexpected claims: %#v", claims)
	}
}

func TestRunTokenCommandValidation(t *testing.T) {
	t.Parallel()

	valid := config.DefaultConfig()
	valid.Auth.SecretKey = testSecret
	weak := config.DefaultConfig()
	weak.Auth.SecretKey = "change_me"

	tests := []struct {
		name   string
		cfg    *config.Config
		userID uint
		role   string
	}{
		{name: "missing user", cfg: valid, userID: 0, role: security.RoleUser},
		{name: "unknown role", cfg: valid, userID: 1, role: "owner"},
		{name: "weak secret", cfg: weak, userID: 1, role: security.RoleUser},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if err := RunTokenCommand(&bytes.Buffer{}, test.cfg, test.userID, test.role, 0, time.Now()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRunSyntheticCommandWritesTrainingSet(t *testing.T) {
	t.Parallel()

	options := PopulationOptions{Users: 3, Cycles: 2, Seed: 5, Start: testStart}
	out := &bytes.Buffer{}
	if err := RunSyntheticCommand(context.Background(), out, options, ""); err != nil {
		t.Fatalf("RunSyntheticCommand returned error: %v", err)
	}

	set := services.TrainingSet{}
	if err := json.Unmarshal(out.Bytes(), &set); err != nil {
		t.Fatalf("decode training set: %v", err)
	}
	if set.Rows() == 0 || len(set.Features[0]) != models.FeatureLength {
		t.Fatalf("unexpected training set: rows=%d", set.Rows())
	}

	path := filepath.Join(t.TempDir(), "training.json")
	summary := &bytes.Buffer{}
	if err := RunSyntheticCommand(context.Background(), summary, options, path); err != nil {
		t.Fatalf("RunSyntheticCommand to file returned error: %v", err)
	}
	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output file: %v", err)
	}
	if !bytes.Equal(written, out.Bytes()) {
		t.Fatal("expected identical output for the same seed")
	}
	if !strings.Contains(summary.String(), "3 users") {
		t.Fatalf("unexpected summary %q", summary.String())
	}
}

func TestPopulationOptionsValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		options PopulationOptions
	}{
		{name: "no users", options: PopulationOptions{Users: 0, Cycles: 2}},
		{name: "too many users", options: PopulationOptions{Users: maxPopulationUsers + 1, Cycles: 2}},
		{name: "no cycles", options: PopulationOptions{Users: 1, Cycles: 0}},
		{name: "too many cycles", options: PopulationOptions{Users: 1, Cycles: maxPopulationCycles + 1}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			if err := RunSelfTestCommand(context.Background(), &bytes.Buffer{}, test.options); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSelfTestCommandThroughCobra(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"selftest", "--users", "4", "--cycles", "2", "--seed", "9", "--start", "2024-02-01"})

	if err := root.Execute(); err != nil {
		t.Fatalf("selftest returned error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "self-test passed: 4 users") {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestSelfTestRejectsBadStartDate(t *testing.T) {
	t.Parallel()

	root := NewRootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"selftest", "--start", "01/02/2024"})

	if err := root.Execute(); err == nil {
		t.Fatal("expected invalid start date error")
	}
}
