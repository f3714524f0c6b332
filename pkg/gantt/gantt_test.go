package gantt

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goblinsan/gh-project-gantt/pkg/types"
)

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestRender_Format(t *testing.T) {
	groups := []types.Group{
		{Subject: "Backend", Tasks: []types.Task{
			{Title: "Build API", Start: day("2024-01-01"), End: day("2024-01-10"), Status: types.StatusDone},
		}},
		{Subject: "Frontend", Tasks: []types.Task{
			{Title: "Design", Start: day("2024-01-05"), End: day("2024-01-12"), Status: types.StatusUnknown},
		}},
	}

	got, err := Render(groups, Options{Title: "Roadmap"})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := `%%{init: {'gantt': {'leftPadding': 150}}}%%
gantt
  title Roadmap
  dateFormat YYYY-MM-DD

  section Backend
  Build API : done, 2024-01-01, 2024-01-10

  section Frontend
  Design : 2024-01-05, 2024-01-12

`
	if got != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, got)
	}
}

func TestRender_Idempotent(t *testing.T) {
	groups := []types.Group{
		{Subject: "Ops", Tasks: []types.Task{
			{Title: "Migrate", Start: day("2024-02-01"), End: day("2024-02-08"), Status: types.StatusInProgress},
		}},
	}
	opts := Options{
		Title:      "Repeat",
		Milestones: []types.Milestone{{Title: "Cutover", DueOn: day("2024-02-10")}},
	}

	first, err := Render(groups, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	second, err := Render(groups, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if first != second {
		t.Error("expected byte-identical output across runs")
	}
}

func TestRender_EscapesSignificantCharacters(t *testing.T) {
	groups := []types.Group{
		{Subject: "Ops:rollout", Tasks: []types.Task{
			{Title: "Fix:parser,v2", Start: day("2024-01-01"), End: day("2024-01-02"), Status: types.StatusTodo},
		}},
	}
	got, err := Render(groups, Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "  section Ops rollout\n") {
		t.Errorf("expected escaped section name, got:\n%s", got)
	}
	if !strings.Contains(got, "  Fix parser v2 : 2024-01-01, 2024-01-02\n") {
		t.Errorf("expected escaped task name, got:\n%s", got)
	}
}

func TestEscape(t *testing.T) {
	cases := map[string]string{
		"plain":          "plain",
		"a:b":            "a b",
		"a,b":            "a b",
		"a:,\nb":         "a b",
		":leading":       "leading",
		"trailing:":      "trailing",
		"line\r\nbreaks": "line breaks",
	}
	for in, want := range cases {
		if got := Escape(in); got != want {
			t.Errorf("Escape(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestRender_StatusTags(t *testing.T) {
	groups := []types.Group{
		{Subject: "Mix", Tasks: []types.Task{
			{Title: "A", Start: day("2024-01-01"), End: day("2024-01-02"), Status: types.StatusDone},
			{Title: "B", Start: day("2024-01-01"), End: day("2024-01-02"), Status: types.StatusInProgress},
			{Title: "C", Start: day("2024-01-01"), End: day("2024-01-02"), Status: types.StatusTodo},
			{Title: "D", Start: day("2024-01-01"), End: day("2024-01-02"), Status: types.StatusUnknown},
		}},
	}
	got, err := Render(groups, Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "  A : done, 2024-01-01, 2024-01-02\n") {
		t.Errorf("expected done tag for A, got:\n%s", got)
	}
	if !strings.Contains(got, "  B : active, 2024-01-01, 2024-01-02\n") {
		t.Errorf("expected active tag for B, got:\n%s", got)
	}
	if !strings.Contains(got, "  C : 2024-01-01, 2024-01-02\n") {
		t.Errorf("expected no tag for C, got:\n%s", got)
	}
	if !strings.Contains(got, "  D : 2024-01-01, 2024-01-02\n") {
		t.Errorf("expected no tag for D, got:\n%s", got)
	}
}

func TestRender_CustomStyles(t *testing.T) {
	groups := []types.Group{
		{Subject: "S", Tasks: []types.Task{
			{Title: "A", Start: day("2024-01-01"), End: day("2024-01-02"), Status: types.StatusTodo},
		}},
	}
	got, err := Render(groups, Options{Styles: map[types.Status]string{types.StatusTodo: "crit"}})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "  A : crit, 2024-01-01, 2024-01-02\n") {
		t.Errorf("expected crit tag from custom style map, got:\n%s", got)
	}
}

func TestRender_MilestoneSection(t *testing.T) {
	opts := Options{
		Milestones: []types.Milestone{
			{Title: "Gamma", DueOn: day("2024-03-01")},
			{Title: "Beta", DueOn: day("2024-02-01")},
			{Title: "Alpha", DueOn: day("2024-02-01")},
			{Title: "Undated"},
			{DueOn: day("2024-04-01")},
			{Title: ":,", DueOn: day("2024-04-15")},
		},
	}
	got, err := Render(nil, opts)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	// Sorted by due date then title, ids assigned in that order. Markers
	// without a due date or a title that survives escaping are dropped.
	want := `  section Milestones
  Alpha : milestone, m1, 2024-02-01, 0d
  Beta : milestone, m2, 2024-02-01, 0d
  Gamma : milestone, m3, 2024-03-01, 0d

`
	if !strings.Contains(got, want) {
		t.Errorf("expected milestone block:\n%s\ngot:\n%s", want, got)
	}
	if strings.Contains(got, "Undated") || strings.Contains(got, "2024-04-01") || strings.Contains(got, "2024-04-15") {
		t.Errorf("expected unusable markers dropped, got:\n%s", got)
	}
}

func TestRender_LeftPadding(t *testing.T) {
	long := strings.Repeat("x", 30)
	groups := []types.Group{
		{Subject: long, Tasks: []types.Task{
			{Title: "T", Start: day("2024-01-01"), End: day("2024-01-02")},
		}},
	}
	got, err := Render(groups, Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "'leftPadding': 210") {
		t.Errorf("expected leftPadding 210 for a 30-char section, got:\n%s", got)
	}

	groups[0].Subject = strings.Repeat("x", 90)
	got, err = Render(groups, Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.Contains(got, "'leftPadding': 500") {
		t.Errorf("expected leftPadding clamped to 500, got:\n%s", got)
	}
}

func TestRender_Fence(t *testing.T) {
	got, err := Render(nil, Options{Fence: true})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(got, "```mermaid\n") {
		t.Errorf("expected opening fence, got:\n%s", got)
	}
	if !strings.HasSuffix(got, "```\n") {
		t.Errorf("expected closing fence, got:\n%s", got)
	}
}

func TestRender_EmptyDiagram(t *testing.T) {
	got, err := Render(nil, Options{})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := `%%{init: {'gantt': {'leftPadding': 150}}}%%
gantt
  dateFormat YYYY-MM-DD

`
	if got != want {
		t.Errorf("expected valid empty diagram:\n%s\ngot:\n%s", want, got)
	}
	if _, err := Parse(got); err != nil {
		t.Errorf("expected empty diagram to parse, got %v", err)
	}
}

func TestRender_ZeroDateFails(t *testing.T) {
	groups := []types.Group{
		{Subject: "S", Tasks: []types.Task{
			{Title: "Broken", End: day("2024-01-02")},
		}},
	}
	_, err := Render(groups, Options{})
	var rerr *RenderError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *RenderError, got %v", err)
	}
	if rerr.Task != "Broken" {
		t.Errorf("expected error to name the task, got %q", rerr.Task)
	}
}

func TestRender_RoundTrip(t *testing.T) {
	groups := []types.Group{
		{Subject: "Backend", Tasks: []types.Task{
			{Title: "Build API", Start: day("2024-01-01"), End: day("2024-01-10"), Status: types.StatusDone},
			{Title: "Harden", Start: day("2024-01-10"), End: day("2024-01-20"), Status: types.StatusTodo},
		}},
		{Subject: "Frontend", Tasks: []types.Task{
			{Title: "Design", Start: day("2024-01-05"), End: day("2024-01-12"), Status: types.StatusInProgress},
		}},
	}
	text, err := Render(groups, Options{
		Title:      "Q1 Roadmap",
		Fence:      true,
		Milestones: []types.Milestone{{Title: "Beta", DueOn: day("2024-02-01")}},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if d.Title != "Q1 Roadmap" {
		t.Errorf("expected title Q1 Roadmap, got %q", d.Title)
	}
	if d.DateFormat != "YYYY-MM-DD" {
		t.Errorf("expected dateFormat YYYY-MM-DD, got %q", d.DateFormat)
	}
	if len(d.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(d.Sections))
	}
	if d.Sections[0].Name != "Milestones" {
		t.Errorf("expected Milestones section first, got %q", d.Sections[0].Name)
	}
	ms := d.Sections[0].Entries[0]
	if !ms.Milestone || ms.ID != "m1" || ms.Start != "2024-02-01" || ms.Duration != "0d" {
		t.Errorf("expected m1 milestone entry, got %+v", ms)
	}
	backend := d.Sections[1]
	if backend.Name != "Backend" || len(backend.Entries) != 2 {
		t.Fatalf("expected Backend with 2 entries, got %q with %d", backend.Name, len(backend.Entries))
	}
	build := backend.Entries[0]
	if build.Title != "Build API" || build.Start != "2024-01-01" || build.End != "2024-01-10" {
		t.Errorf("unexpected Build API entry: %+v", build)
	}
	if len(build.Tags) != 1 || build.Tags[0] != "done" {
		t.Errorf("expected done tag, got %v", build.Tags)
	}
}

func TestParse_Errors(t *testing.T) {
	cases := []struct {
		name string
		text string
		line int
		msg  string
	}{
		{"no header", "  section A\n", 1, "gantt header"},
		{"entry before section", "gantt\n  Task : 2024-01-01, 2024-01-10\n", 2, "before any section"},
		{"no separator", "gantt\n  section A\n  Broken\n", 3, "separator"},
		{"bad calendar date", "gantt\n  section A\n  T : 2024-13-01, 2024-13-02\n", 3, "invalid date"},
		{"end before start", "gantt\n  section A\n  T : 2024-01-10, 2024-01-01\n", 3, "before start"},
		{"unknown metadata", "gantt\n  section A\n  T : wat\n", 3, "unrecognized"},
		{"no end", "gantt\n  section A\n  T : 2024-01-01\n", 3, "end date or a duration"},
		{"empty input", "", 1, "missing gantt header"},
	}

	for _, tc := range cases {
		_, err := Parse(tc.text)
		if err == nil {
			t.Errorf("%s: expected error", tc.name)
			continue
		}
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%s: expected *ParseError, got %T", tc.name, err)
			continue
		}
		if perr.Line != tc.line {
			t.Errorf("%s: expected line %d, got %d", tc.name, tc.line, perr.Line)
		}
		if !strings.Contains(perr.Msg, tc.msg) {
			t.Errorf("%s: expected message containing %q, got %q", tc.name, tc.msg, perr.Msg)
		}
	}
}

func TestParse_ToleratesDirectivesAndFences(t *testing.T) {
	text := "```mermaid\n%%{init: {'gantt': {'leftPadding': 150}}}%%\ngantt\n  dateFormat YYYY-MM-DD\n\n  section A\n  T : 2024-01-01, 2024-01-02\n```\n"
	d, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(d.Sections) != 1 || len(d.Sections[0].Entries) != 1 {
		t.Errorf("expected one section with one entry, got %+v", d.Sections)
	}
}
