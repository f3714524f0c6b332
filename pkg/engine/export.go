// Package engine wires the GitHub fetchers, the normalizer, and the renderer
// into the export pipeline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goblinsan/gh-project-gantt/pkg/gantt"
	ghclient "github.com/goblinsan/gh-project-gantt/pkg/github"
	"github.com/goblinsan/gh-project-gantt/pkg/normalize"
	"github.com/goblinsan/gh-project-gantt/pkg/types"
)

// ProjectClient defines the GitHub operations the engine needs.
type ProjectClient interface {
	FetchProjectItems(ctx context.Context, login string, number int) (*ghclient.Project, error)
	FetchRepoMilestones(ctx context.Context, owner, repo string) ([]types.Milestone, error)
}

// Ensure *github.Client satisfies the interface at compile time.
var _ ProjectClient = (*ghclient.Client)(nil)

// Options configures an Export run.
type Options struct {
	// Login is the user or organization that owns the project board.
	Login string

	// Project is the board number as it appears in the project URL.
	Project int

	// Repo is an optional "owner/name" whose milestones become diagram
	// markers and due-date fallbacks for undated items.
	Repo string

	// Title overrides the board title on the diagram.
	Title string

	// Field names to read on each item. Empty fields use the defaults.
	TitleField   string
	SubjectField string
	StartField   string
	EndField     string
	StatusField  string

	// DefaultSubject is the section for items with no subject field.
	DefaultSubject string

	LookbackDays    int
	DurationDays    int
	MinDurationDays int
	IncludeUndated  bool

	// Fence wraps the diagram in a markdown code fence.
	Fence bool

	// Today pins the clock for undated items. Zero means the current day.
	Today time.Time

	// Statuses adds project-specific status names on top of the built-in
	// mapping.
	Statuses map[string]types.Status
}

// Report summarizes the results of an Export execution.
type Report struct {
	ItemsFetched       int              `yaml:"items_fetched" json:"items_fetched"`
	TasksRendered      int              `yaml:"tasks_rendered" json:"tasks_rendered"`
	MilestonesRendered int              `yaml:"milestones_rendered" json:"milestones_rendered"`
	Skipped            []normalize.Skip `yaml:"skipped,omitempty" json:"skipped,omitempty"`
}

func (r *Report) String() string {
	return fmt.Sprintf("Summary: %d items fetched, %d tasks rendered, %d milestones (%d skipped)",
		r.ItemsFetched, r.TasksRendered, r.MilestonesRendered, len(r.Skipped))
}

// SkipSummary aggregates skip reasons into a single line, such as
// "2 bad date, 1 missing dates". Empty when nothing was skipped.
func (r *Report) SkipSummary() string {
	counts := make(map[normalize.Reason]int)
	var order []normalize.Reason
	for _, s := range r.Skipped {
		if counts[s.Reason] == 0 {
			order = append(order, s.Reason)
		}
		counts[s.Reason]++
	}
	parts := make([]string, 0, len(order))
	for _, reason := range order {
		parts = append(parts, fmt.Sprintf("%d %s", counts[reason], reason))
	}
	return strings.Join(parts, ", ")
}

// Result carries the rendered diagram and the run report.
type Result struct {
	Diagram string
	Report  Report
}

// Resolution is the state of a run after fetching and normalizing, before
// any rendering. The list command stops here.
type Resolution struct {
	Project string            `yaml:"project" json:"project"`
	Tasks   []types.Task      `yaml:"tasks" json:"tasks"`
	Markers []types.Milestone `yaml:"milestones,omitempty" json:"milestones,omitempty"`
	Report  Report            `yaml:"report" json:"report"`
}

// Resolve fetches a project board and normalizes its items into tasks.
// Items that cannot become tasks are recorded on the report and skipped;
// errors from GitHub abort the run.
func Resolve(ctx context.Context, client ProjectClient, opts Options) (*Resolution, error) {
	if opts.Login == "" {
		return nil, fmt.Errorf("login is required")
	}
	if opts.Project <= 0 {
		return nil, fmt.Errorf("invalid project number: %d", opts.Project)
	}
	var owner, repo string
	if opts.Repo != "" {
		repoParts := strings.Split(opts.Repo, "/")
		if len(repoParts) != 2 || repoParts[0] == "" || repoParts[1] == "" {
			return nil, fmt.Errorf("invalid repository format: %s", opts.Repo)
		}
		owner, repo = repoParts[0], repoParts[1]
	}
	if opts.DefaultSubject == "" {
		opts.DefaultSubject = normalize.DefaultSubjectLabel
	}

	res := &Resolution{}

	project, err := client.FetchProjectItems(ctx, opts.Login, opts.Project)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch project items: %w", err)
	}
	res.Project = project.Title
	res.Report.ItemsFetched = len(project.Items)

	markers, err := collectMarkers(ctx, client, owner, repo, project.Items)
	if err != nil {
		return nil, err
	}
	res.Markers = markers
	dues := make(map[string]time.Time, len(markers))
	for _, m := range markers {
		dues[m.Title] = m.DueOn
	}

	norm := normalize.New(normalize.Config{
		TitleField:      opts.TitleField,
		SubjectField:    opts.SubjectField,
		StartField:      opts.StartField,
		EndField:        opts.EndField,
		StatusField:     opts.StatusField,
		DefaultSubject:  opts.DefaultSubject,
		LookbackDays:    opts.LookbackDays,
		DurationDays:    opts.DurationDays,
		MinDurationDays: opts.MinDurationDays,
		IncludeUndated:  opts.IncludeUndated,
		Today:           opts.Today,
		Statuses:        opts.Statuses,
		Milestones:      dues,
	})

	for _, item := range project.Items {
		task, err := norm.Normalize(item)
		if err != nil {
			var skip *normalize.Skip
			if errors.As(err, &skip) {
				res.Report.Skipped = append(res.Report.Skipped, *skip)
				continue
			}
			return nil, err
		}
		res.Tasks = append(res.Tasks, task)
	}

	res.Report.TasksRendered = len(res.Tasks)
	res.Report.MilestonesRendered = len(markers)
	return res, nil
}

// Export runs Resolve and renders the result as a gantt diagram.
func Export(ctx context.Context, client ProjectClient, opts Options) (*Result, error) {
	res, err := Resolve(ctx, client, opts)
	if err != nil {
		return nil, err
	}

	title := opts.Title
	if title == "" {
		title = res.Project
	}

	diagram, err := gantt.Render(normalize.GroupBySubject(res.Tasks), gantt.Options{
		Title:      title,
		Milestones: res.Markers,
		Fence:      opts.Fence,
	})
	if err != nil {
		return nil, err
	}
	return &Result{Diagram: diagram, Report: res.Report}, nil
}

// collectMarkers merges repository milestones with the milestones referenced
// by project items. Repository milestones are listed first and win on title
// collisions; milestones without a usable title or due date are dropped.
func collectMarkers(ctx context.Context, client ProjectClient, owner, repo string, items []ghclient.Item) ([]types.Milestone, error) {
	seen := make(map[string]bool)
	var markers []types.Milestone

	if owner != "" {
		ms, err := client.FetchRepoMilestones(ctx, owner, repo)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch milestones: %w", err)
		}
		for _, m := range ms {
			if gantt.Escape(m.Title) == "" || m.DueOn.IsZero() || seen[m.Title] {
				continue
			}
			seen[m.Title] = true
			markers = append(markers, m)
		}
	}

	for _, item := range items {
		ref := item.Milestone()
		if ref == nil || gantt.Escape(ref.Title) == "" || seen[ref.Title] {
			continue
		}
		due, err := normalize.ParseDate(ref.DueOn)
		if err != nil {
			continue
		}
		seen[ref.Title] = true
		markers = append(markers, types.Milestone{Title: ref.Title, DueOn: due})
	}
	return markers, nil
}
