// Package gantt serializes grouped tasks into the Mermaid gantt notation and
// parses that notation back for validation.
package gantt

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/goblinsan/gh-project-gantt/pkg/types"
)

const (
	dateLayout        = "2006-01-02"
	milestonesSection = "Milestones"

	minLeftPadding = 150
	maxLeftPadding = 500
)

// Options shape one rendering pass.
type Options struct {
	// Title is the diagram title line; empty omits the line.
	Title string

	// Milestones become a leading marker section, sorted by due date then
	// title. Markers without a due date or a usable title are dropped.
	Milestones []types.Milestone

	// Fence wraps the diagram in a ```mermaid code fence for pasting into
	// markdown.
	Fence bool

	// Styles overrides the status → task tag mapping. Nil means the default
	// mapping; statuses missing from the map render with no tag.
	Styles map[types.Status]string
}

// defaultStyles maps normalized status onto the Mermaid task tag. Todo and
// Unknown deliberately have no entry: they render as plain bars.
var defaultStyles = map[types.Status]string{
	types.StatusDone:       "done",
	types.StatusInProgress: "active",
}

// RenderError reports a task that reached the renderer in a state the
// normalizer rules out. It means an upstream bug, not bad input.
type RenderError struct {
	Task   string
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("gantt: cannot render %q: %s", e.Task, e.Reason)
}

// escapePattern matches runs of characters that are syntactically significant
// in the notation: colons split a line into name and metadata, commas split
// the metadata list, and line breaks end an entry.
var escapePattern = regexp.MustCompile(`[:,\r\n]+`)

// Escape makes a string safe to appear as a title, section name, or marker
// name. Runs of significant characters collapse to a single space and the
// result is trimmed.
func Escape(s string) string {
	return strings.TrimSpace(escapePattern.ReplaceAllString(s, " "))
}

// Render emits the diagram for the given groups. Output is a pure function
// of its inputs: rendering the same groups twice yields byte-identical text.
func Render(groups []types.Group, opts Options) (string, error) {
	styles := opts.Styles
	if styles == nil {
		styles = defaultStyles
	}
	markers := datedMarkers(opts.Milestones)

	var b strings.Builder
	if opts.Fence {
		b.WriteString("```mermaid\n")
	}
	fmt.Fprintf(&b, "%%%%{init: {'gantt': {'leftPadding': %d}}}%%%%\n", leftPadding(groups, len(markers) > 0))
	b.WriteString("gantt\n")
	if t := Escape(opts.Title); t != "" {
		fmt.Fprintf(&b, "  title %s\n", t)
	}
	b.WriteString("  dateFormat YYYY-MM-DD\n\n")

	if len(markers) > 0 {
		fmt.Fprintf(&b, "  section %s\n", milestonesSection)
		for i, m := range markers {
			fmt.Fprintf(&b, "  %s : milestone, m%d, %s, 0d\n", Escape(m.Title), i+1, m.DueOn.Format(dateLayout))
		}
		b.WriteString("\n")
	}

	for _, g := range groups {
		section := Escape(g.Subject)
		if section == "" {
			return "", &RenderError{Task: g.Subject, Reason: "section name is empty after escaping"}
		}
		fmt.Fprintf(&b, "  section %s\n", section)
		for _, t := range g.Tasks {
			line, err := taskLine(t, styles)
			if err != nil {
				return "", err
			}
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	if opts.Fence {
		b.WriteString("```\n")
	}
	return b.String(), nil
}

func taskLine(t types.Task, styles map[types.Status]string) (string, error) {
	if t.Start.IsZero() || t.End.IsZero() {
		return "", &RenderError{Task: t.Title, Reason: "missing start or end date"}
	}
	if t.End.Before(t.Start) {
		return "", &RenderError{Task: t.Title, Reason: "end date before start date"}
	}
	title := Escape(t.Title)
	if title == "" {
		return "", &RenderError{Task: t.Title, Reason: "title is empty after escaping"}
	}

	start := t.Start.Format(dateLayout)
	end := t.End.Format(dateLayout)
	if tag := styles[t.Status]; tag != "" {
		return fmt.Sprintf("  %s : %s, %s, %s\n", title, tag, start, end), nil
	}
	return fmt.Sprintf("  %s : %s, %s\n", title, start, end), nil
}

// datedMarkers filters out markers that cannot be drawn and fixes their
// order so marker ids are stable across runs.
func datedMarkers(ms []types.Milestone) []types.Milestone {
	var out []types.Milestone
	for _, m := range ms {
		if Escape(m.Title) != "" && !m.DueOn.IsZero() {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].DueOn.Equal(out[j].DueOn) {
			return out[i].DueOn.Before(out[j].DueOn)
		}
		return out[i].Title < out[j].Title
	})
	return out
}

// leftPadding sizes the section-name gutter from the longest rendered
// section name at roughly seven pixels a character, clamped to a sane range.
func leftPadding(groups []types.Group, hasMilestones bool) int {
	longest := 0
	if hasMilestones {
		longest = len(milestonesSection)
	}
	for _, g := range groups {
		if n := len(Escape(g.Subject)); n > longest {
			longest = n
		}
	}
	pad := longest * 7
	if pad < minLeftPadding {
		return minLeftPadding
	}
	if pad > maxLeftPadding {
		return maxLeftPadding
	}
	return pad
}
