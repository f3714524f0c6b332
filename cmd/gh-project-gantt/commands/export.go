package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/goblinsan/gh-project-gantt/pkg/engine"
	"github.com/goblinsan/gh-project-gantt/pkg/github"
	"github.com/goblinsan/gh-project-gantt/pkg/normalize"
	"github.com/goblinsan/gh-project-gantt/pkg/types"
	"github.com/goblinsan/gh-project-gantt/pkg/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	addResolveFlags(exportCmd)
	exportCmd.Flags().Bool("fence", false, "wrap the diagram in a ```mermaid code fence")
	exportCmd.Flags().StringP("out", "o", "", "write the diagram to a file instead of stdout")
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render a project board as a Mermaid gantt diagram",
	Long: `Export fetches every item on a GitHub Projects V2 board, resolves each one
into a dated task, and renders the result as a Mermaid gantt diagram. Items
that cannot be resolved are skipped with a warning; the run still succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := github.NewClient(resolveToken())
		if err != nil {
			return fmt.Errorf("failed to create github client: %w", err)
		}

		opts := resolveOptions(cmd)
		opts.Fence, _ = cmd.Flags().GetBool("fence")

		result, err := engine.Export(context.Background(), client, opts)
		if err != nil {
			return err
		}

		for _, s := range result.Report.Skipped {
			fmt.Fprintf(os.Stderr, "%s %s\n", ui.Yellow("warning: skipping"), s.Error())
		}

		if result.Report.TasksRendered == 0 && result.Report.MilestonesRendered == 0 {
			fmt.Fprintf(os.Stderr, "%s nothing to draw, emitting an empty diagram\n", ui.Yellow("warning:"))
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := os.WriteFile(out, []byte(result.Diagram), 0644); err != nil {
				return fmt.Errorf("failed to write diagram: %w", err)
			}
		} else {
			fmt.Print(result.Diagram)
		}

		fmt.Fprintln(os.Stderr, result.Report.String())
		if sum := result.Report.SkipSummary(); sum != "" {
			fmt.Fprintln(os.Stderr, ui.Dim("  skipped: "+sum))
		}
		return nil
	},
}

// addResolveFlags registers the flags shared by commands that fetch and
// normalize a board.
func addResolveFlags(cmd *cobra.Command) {
	cmd.Flags().String("login", "", "user or organization that owns the project")
	cmd.MarkFlagRequired("login")
	cmd.Flags().Int("project", 0, "project board number (from the project URL)")
	cmd.MarkFlagRequired("project")
	cmd.Flags().String("repo", "", "owner/name repository whose milestones become markers and due-date fallbacks")
	cmd.Flags().String("group", normalize.DefaultSubjectField, "field to group tasks into sections by")
	cmd.Flags().String("start", normalize.DefaultStartField, "date field holding the task start")
	cmd.Flags().String("end", normalize.DefaultEndField, "date field holding the task end")
	cmd.Flags().String("status", normalize.DefaultStatusField, "field holding the task status")
	cmd.Flags().String("default-subject", normalize.DefaultSubjectLabel, "section for items with no group value")
	cmd.Flags().Int("lookback", normalize.DefaultLookbackDays, "days before a known end to start a task with no start date")
	cmd.Flags().Int("default-duration", normalize.DefaultDurationDays, "days after a known start to end a task with no end date")
	cmd.Flags().Int("min-duration", 0, "minimum task length in days (0 disables the floor)")
	cmd.Flags().Bool("include-undated", false, "start items with no dates at today instead of skipping them")
}

// resolveOptions builds engine options from the shared flags plus the
// optional statuses map in the config file.
func resolveOptions(cmd *cobra.Command) engine.Options {
	login, _ := cmd.Flags().GetString("login")
	project, _ := cmd.Flags().GetInt("project")
	repo, _ := cmd.Flags().GetString("repo")
	group, _ := cmd.Flags().GetString("group")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	status, _ := cmd.Flags().GetString("status")
	defaultSubject, _ := cmd.Flags().GetString("default-subject")
	lookback, _ := cmd.Flags().GetInt("lookback")
	duration, _ := cmd.Flags().GetInt("default-duration")
	minDuration, _ := cmd.Flags().GetInt("min-duration")
	includeUndated, _ := cmd.Flags().GetBool("include-undated")

	return engine.Options{
		Login:           login,
		Project:         project,
		Repo:            repo,
		SubjectField:    group,
		StartField:      start,
		EndField:        end,
		StatusField:     status,
		DefaultSubject:  defaultSubject,
		LookbackDays:    lookback,
		DurationDays:    duration,
		MinDurationDays: minDuration,
		IncludeUndated:  includeUndated,
		Statuses:        statusOverrides(),
	}
}

// statusOverrides reads the optional statuses map from the config file,
// mapping project-specific status names onto the canonical set.
func statusOverrides() map[string]types.Status {
	raw := viper.GetStringMapString("statuses")
	if len(raw) == 0 {
		return nil
	}
	out := make(map[string]types.Status, len(raw))
	for name, v := range raw {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case string(types.StatusTodo):
			out[name] = types.StatusTodo
		case string(types.StatusInProgress), "in progress":
			out[name] = types.StatusInProgress
		case string(types.StatusDone):
			out[name] = types.StatusDone
		default:
			out[name] = types.StatusUnknown
		}
	}
	return out
}
