package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	// Point at an absent file so only defaults apply.
	c, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if c.Scenario.Country != "Chile" || c.Scenario.Theme != "Bem-estar docente" {
		t.Fatalf("scenario defaults = %+v", c.Scenario)
	}
	if c.Seed != 42 || c.CVFolds != 5 || c.AgreementScaleMax != 5 {
		t.Fatalf("hyperparameter defaults: seed=%d folds=%d scale=%d", c.Seed, c.CVFolds, c.AgreementScaleMax)
	}
	if len(c.Groups) != 6 {
		t.Fatalf("default groups = %d", len(c.Groups))
	}
}

func TestDefaultGroupsSingleTarget(t *testing.T) {
	targets := 0
	for _, g := range DefaultGroups() {
		if g.Target {
			targets++
			if g.Name != "indice_bem_estar" {
				t.Errorf("target group = %s", g.Name)
			}
		}
	}
	if targets != 1 {
		t.Fatalf("targets = %d", targets)
	}
}

func TestLoadRejectsBadGroupTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	bad := `groups:
  - name: a
    prefixes: [tc014q01]
    aggregation: median
    scale_max: 4
    target: true
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "aggregation") {
		t.Fatalf("err = %v", err)
	}
}

func TestLoadRejectsMultipleTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	bad := `groups:
  - name: a
    prefixes: [tc014q01]
    aggregation: mean
    scale_max: 4
    target: true
  - name: b
    prefixes: [tc015q01]
    aggregation: mean
    scale_max: 4
    target: true
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for two target groups")
	}
}

func TestSaveAndReloadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	c, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	c.Seed = 7
	c.Scenario.Country = "Brasil"
	if err := Save(c, path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Seed != 7 || got.Scenario.Country != "Brasil" {
		t.Fatalf("round trip lost values: seed=%d country=%s", got.Seed, got.Scenario.Country)
	}
}
