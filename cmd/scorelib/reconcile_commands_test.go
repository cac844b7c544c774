package main

import (
	"encoding/json"
	"strings"
	"testing"

	"scorelib/internal/catalog"
	"scorelib/internal/vocabulary"
	"scorelib/internal/workflow"
)

func TestSectionsJSON(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"--json", "sections"}, env.configPath)
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	var sections []vocabulary.Section
	if err := json.Unmarshal([]byte(out), &sections); err != nil {
		t.Fatalf("decode sections: %v", err)
	}
	if len(sections) != 3 || sections[0].Name != "Horn" || sections[0].FolderID != "folder-horn" {
		t.Fatalf("unexpected sections: %+v", sections)
	}

	out, _, err = runCLI(t, []string{"sections"}, env.configPath)
	if err != nil {
		t.Fatalf("sections: %v", err)
	}
	requireContains(t, out, "French Horn, Horn in F, Horn")
}

func TestPlanApplyAndSettle(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	requireContains(t, out, "March.pdf - Horn")
	requireContains(t, out, "Clarinet -> Trumpet")
	requireContains(t, out, "5 files (drive): 1 conforming, 3 to rename (1 moves), 1 unresolved")
	if env.drive.patchCount() != 0 {
		t.Fatal("plan must not modify drive")
	}

	out, _, err = runCLI(t, []string{"apply"}, env.configPath)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	requireContains(t, out, "Applied 3, failed 0, conflicts 0")
	if env.drive.patchCount() != 3 {
		t.Fatalf("expected 3 patches, got %d", env.drive.patchCount())
	}

	out, _, err = runCLI(t, []string{"--json", "plan", "--refresh"}, env.configPath)
	if err != nil {
		t.Fatalf("plan --refresh: %v", err)
	}
	var plan workflow.Plan
	if err := json.Unmarshal([]byte(out), &plan); err != nil {
		t.Fatalf("decode plan: %v", err)
	}
	if plan.Summary.Renamed != 0 || plan.Summary.Conforming != 4 || plan.Summary.Unresolved != 1 {
		t.Fatalf("expected settled library, got %+v", plan.Summary)
	}

	out, _, err = runCLI(t, []string{"--json", "runs", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("runs list: %v", err)
	}
	var runs []catalog.Run
	if err := json.Unmarshal([]byte(out), &runs); err != nil {
		t.Fatalf("decode runs: %v", err)
	}
	if len(runs) != 3 || runs[1].Mode != catalog.RunModeApply {
		t.Fatalf("unexpected runs: %+v", runs)
	}

	out, _, err = runCLI(t, []string{"runs", "show", runs[1].ID[:8]}, env.configPath)
	if err != nil {
		t.Fatalf("runs show: %v", err)
	}
	requireContains(t, out, "Mode:    apply")
	requireContains(t, out, "applied")
}

func TestApplyDryRunAndSection(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"apply", "--dry-run", "--section", "Horn"}, env.configPath)
	if err != nil {
		t.Fatalf("apply --dry-run: %v", err)
	}
	requireContains(t, out, "would apply")
	requireContains(t, out, "Dry run: 1 changes planned, 0 conflicts")
	if env.drive.patchCount() != 0 {
		t.Fatal("dry run must not modify drive")
	}

	if _, _, err := runCLI(t, []string{"plan", "--section", "Kazoo"}, env.configPath); err == nil || !strings.Contains(err.Error(), "unknown section") {
		t.Fatalf("expected unknown section error, got %v", err)
	}
}

func TestListingAndCache(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"cache", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Status:   empty")

	out, _, err = runCLI(t, []string{"listing"}, env.configPath)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	requireContains(t, out, "5 files from drive")

	out, _, err = runCLI(t, []string{"listing"}, env.configPath)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	requireContains(t, out, "5 files from cache")

	out, _, err = runCLI(t, []string{"cache", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("cache show: %v", err)
	}
	requireContains(t, out, "Status:   valid")
	requireContains(t, out, "Files:    5")

	if _, _, err := runCLI(t, []string{"cache", "clear"}, env.configPath); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	out, _, err = runCLI(t, []string{"listing"}, env.configPath)
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	requireContains(t, out, "5 files from drive")
}

func TestPlanWithoutToken(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.Drive.AccessToken = ""
	writeTestConfig(t, env.configPath, env.cfg)

	_, _, err := runCLI(t, []string{"plan"}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "SCORELIB_DRIVE_ACCESS_TOKEN") {
		t.Fatalf("expected missing token error, got %v", err)
	}
}

func TestDoctorOffline(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"doctor", "--offline"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Catalog")
	if strings.Contains(out, "FAIL") {
		t.Fatalf("unexpected failure: %s", out)
	}

	out, _, err = runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "Band Library")
}
