package commands

import (
	"testing"

	"github.com/goblinsan/gh-project-gantt/pkg/normalize"
	"github.com/goblinsan/gh-project-gantt/pkg/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cmd := &cobra.Command{}
	addResolveFlags(cmd)
	cmd.Flags().Set("login", "octocat")
	cmd.Flags().Set("project", "7")

	opts := resolveOptions(cmd)
	if opts.Login != "octocat" || opts.Project != 7 {
		t.Errorf("expected octocat/7, got %s/%d", opts.Login, opts.Project)
	}
	if opts.SubjectField != normalize.DefaultSubjectField {
		t.Errorf("expected default subject field, got %q", opts.SubjectField)
	}
	if opts.StartField != normalize.DefaultStartField || opts.EndField != normalize.DefaultEndField {
		t.Errorf("expected default date fields, got %q and %q", opts.StartField, opts.EndField)
	}
	if opts.LookbackDays != normalize.DefaultLookbackDays {
		t.Errorf("expected default lookback, got %d", opts.LookbackDays)
	}
	if opts.MinDurationDays != 0 {
		t.Errorf("expected min duration off by default, got %d", opts.MinDurationDays)
	}
	if opts.IncludeUndated {
		t.Error("expected include-undated off by default")
	}
}

func TestResolveOptions_Overrides(t *testing.T) {
	cmd := &cobra.Command{}
	addResolveFlags(cmd)
	cmd.Flags().Set("login", "octo-org")
	cmd.Flags().Set("project", "3")
	cmd.Flags().Set("repo", "octo-org/app")
	cmd.Flags().Set("group", "Team")
	cmd.Flags().Set("end", "Due date")
	cmd.Flags().Set("default-subject", "Misc")
	cmd.Flags().Set("lookback", "14")
	cmd.Flags().Set("min-duration", "3")
	cmd.Flags().Set("include-undated", "true")

	opts := resolveOptions(cmd)
	if opts.Repo != "octo-org/app" {
		t.Errorf("expected repo flag, got %q", opts.Repo)
	}
	if opts.SubjectField != "Team" || opts.EndField != "Due date" {
		t.Errorf("expected field overrides, got %q and %q", opts.SubjectField, opts.EndField)
	}
	if opts.DefaultSubject != "Misc" {
		t.Errorf("expected default subject Misc, got %q", opts.DefaultSubject)
	}
	if opts.LookbackDays != 14 || opts.MinDurationDays != 3 {
		t.Errorf("expected lookback 14 and min duration 3, got %d and %d", opts.LookbackDays, opts.MinDurationDays)
	}
	if !opts.IncludeUndated {
		t.Error("expected include-undated on")
	}
}

func TestStatusOverrides(t *testing.T) {
	viper.Set("statuses", map[string]interface{}{
		"Blocked":  "in progress",
		"Shipped":  "done",
		"Icebox":   "todo",
		"Whatever": "nonsense",
	})
	t.Cleanup(func() { viper.Set("statuses", nil) })

	overrides := statusOverrides()
	// Viper lowercases map keys; the normalizer lowercases again on its side.
	if overrides["blocked"] != types.StatusInProgress {
		t.Errorf("expected blocked to map to in_progress, got %s", overrides["blocked"])
	}
	if overrides["shipped"] != types.StatusDone {
		t.Errorf("expected shipped to map to done, got %s", overrides["shipped"])
	}
	if overrides["icebox"] != types.StatusTodo {
		t.Errorf("expected icebox to map to todo, got %s", overrides["icebox"])
	}
	if overrides["whatever"] != types.StatusUnknown {
		t.Errorf("expected unrecognized value to map to unknown, got %s", overrides["whatever"])
	}
}

func TestStatusOverrides_Empty(t *testing.T) {
	viper.Set("statuses", nil)
	if overrides := statusOverrides(); overrides != nil {
		t.Errorf("expected nil for unconfigured statuses, got %v", overrides)
	}
}
