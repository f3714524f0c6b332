// Package normalize turns raw project items into uniform tasks. All field
// fallback resolution, date synthesis, and status mapping happens here, at
// the boundary; downstream code never sees raw field strings.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/goblinsan/gh-project-gantt/pkg/gantt"
	"github.com/goblinsan/gh-project-gantt/pkg/github"
	"github.com/goblinsan/gh-project-gantt/pkg/types"
)

// Field names and fallback values used when the config leaves them unset.
// The board's built-in title field is always called Title; the rest mirror
// the field names the exporter was written against and can be overridden per
// run.
const (
	DefaultTitleField   = "Title"
	DefaultSubjectField = "Subject"
	DefaultStartField   = "Start date"
	DefaultEndField     = "Target date"
	DefaultStatusField  = "Status"

	// DefaultSubjectLabel is the section items land in when the board has no
	// subject value for them.
	DefaultSubjectLabel = "Ungrouped"

	// DefaultLookbackDays is how far a synthesized start date sits before a
	// known end date (milestone-derived or otherwise).
	DefaultLookbackDays = 7

	// DefaultDurationDays is the synthesized span for items that only have a
	// start date.
	DefaultDurationDays = 7
)

// Reason codes for skipped items.
type Reason string

const (
	ReasonMissingTitle   Reason = "missing title"
	ReasonMissingDates   Reason = "missing dates"
	ReasonMissingSubject Reason = "missing subject"
	ReasonBadDate        Reason = "bad date"
)

// Skip is the item-level error: the item cannot become a task and is dropped,
// the run continues. It carries a reason code and, for date problems, the
// parse error behind it.
type Skip struct {
	ItemID string `yaml:"item_id" json:"item_id"`
	Title  string `yaml:"title" json:"title"`
	Reason Reason `yaml:"reason" json:"reason"`
	Err    error  `yaml:"-" json:"-"`
}

func (s *Skip) Error() string {
	name := s.Title
	if name == "" {
		name = s.ItemID
	}
	if name == "" {
		name = "item"
	}
	if s.Err != nil {
		return fmt.Sprintf("%s: %s: %v", name, s.Reason, s.Err)
	}
	return fmt.Sprintf("%s: %s", name, s.Reason)
}

func (s *Skip) Unwrap() error { return s.Err }

// Config declares every knob the normalizer has. Values are fixed at
// construction; nothing is read from the environment mid-run.
type Config struct {
	TitleField   string
	SubjectField string
	StartField   string
	EndField     string
	StatusField  string

	// DefaultSubject labels items with no subject field value. Leaving it
	// empty means such items are skipped with ReasonMissingSubject instead.
	DefaultSubject string

	LookbackDays    int
	DurationDays    int
	MinDurationDays int

	// IncludeUndated anchors items with no date information at Today instead
	// of skipping them.
	IncludeUndated bool

	// Today anchors undated items. Zero means the current date; tests inject
	// a fixed day.
	Today time.Time

	// Statuses extends the built-in raw-status table; keys are matched
	// case-insensitively.
	Statuses map[string]types.Status

	// Milestones resolves a linked milestone title to a due date when the
	// item's own reference carries none.
	Milestones map[string]time.Time
}

// Normalizer applies one Config to raw items.
type Normalizer struct {
	cfg Config
}

// New builds a Normalizer, filling unset field names and durations with the
// package defaults.
func New(cfg Config) *Normalizer {
	if cfg.TitleField == "" {
		cfg.TitleField = DefaultTitleField
	}
	if cfg.SubjectField == "" {
		cfg.SubjectField = DefaultSubjectField
	}
	if cfg.StartField == "" {
		cfg.StartField = DefaultStartField
	}
	if cfg.EndField == "" {
		cfg.EndField = DefaultEndField
	}
	if cfg.StatusField == "" {
		cfg.StatusField = DefaultStatusField
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = DefaultLookbackDays
	}
	if cfg.DurationDays <= 0 {
		cfg.DurationDays = DefaultDurationDays
	}
	if cfg.Today.IsZero() {
		cfg.Today = time.Now().UTC().Truncate(24 * time.Hour)
	}
	if len(cfg.Statuses) > 0 {
		lowered := make(map[string]types.Status, len(cfg.Statuses))
		for k, v := range cfg.Statuses {
			lowered[strings.ToLower(strings.TrimSpace(k))] = v
		}
		cfg.Statuses = lowered
	}
	return &Normalizer{cfg: cfg}
}

// Normalize produces exactly one Task from a raw item, or a *Skip explaining
// why the item cannot be drawn. A Skip never aborts the run; callers collect
// them for the end-of-run summary.
func (n *Normalizer) Normalize(item github.Item) (types.Task, error) {
	title := n.fieldValue(item, n.cfg.TitleField)
	if title == "" {
		title = item.Content.Title
	}
	// A title made of nothing but notation syntax escapes to an empty string
	// and cannot be drawn, so it counts as missing.
	if gantt.Escape(title) == "" {
		return types.Task{}, &Skip{ItemID: item.ID, Title: title, Reason: ReasonMissingTitle}
	}

	start, end, skip := n.resolveDates(item)
	if skip != nil {
		skip.ItemID = item.ID
		skip.Title = title
		return types.Task{}, skip
	}

	subject := n.fieldValue(item, n.cfg.SubjectField)
	if gantt.Escape(subject) == "" {
		subject = n.cfg.DefaultSubject
	}
	if gantt.Escape(subject) == "" {
		return types.Task{}, &Skip{ItemID: item.ID, Title: title, Reason: ReasonMissingSubject}
	}

	return types.Task{
		ID:      item.ID,
		Title:   title,
		Subject: subject,
		Start:   start,
		End:     end,
		Status:  n.resolveStatus(item),
	}, nil
}

// resolveDates walks the fallback chain: direct fields, linked milestone,
// iteration, then (optionally) today. On success both dates are set and
// start does not fall after end.
func (n *Normalizer) resolveDates(item github.Item) (start, end time.Time, skip *Skip) {
	var err error

	if v := n.fieldValue(item, n.cfg.StartField); v != "" {
		if start, err = ParseDate(v); err != nil {
			return time.Time{}, time.Time{}, &Skip{Reason: ReasonBadDate, Err: fmt.Errorf("start date %q: %w", v, err)}
		}
	}

	// A closed item ends when it closed, whatever the board still says.
	if v := item.Content.ClosedAt; v != "" {
		if end, err = ParseDate(v); err != nil {
			return time.Time{}, time.Time{}, &Skip{Reason: ReasonBadDate, Err: fmt.Errorf("closed date %q: %w", v, err)}
		}
	} else if v := n.fieldValue(item, n.cfg.EndField); v != "" {
		if end, err = ParseDate(v); err != nil {
			return time.Time{}, time.Time{}, &Skip{Reason: ReasonBadDate, Err: fmt.Errorf("end date %q: %w", v, err)}
		}
	}

	if start.IsZero() && end.IsZero() {
		if due, derr := n.milestoneDue(item); derr != nil {
			return time.Time{}, time.Time{}, &Skip{Reason: ReasonBadDate, Err: derr}
		} else if !due.IsZero() {
			end = due
			start = due.AddDate(0, 0, -n.cfg.LookbackDays)
		}
	}

	if start.IsZero() && end.IsZero() {
		if it := item.Iteration(); it != nil && it.StartDate != "" {
			if start, err = ParseDate(it.StartDate); err != nil {
				return time.Time{}, time.Time{}, &Skip{Reason: ReasonBadDate, Err: fmt.Errorf("iteration start %q: %w", it.StartDate, err)}
			}
			if it.Duration > 0 {
				end = start.AddDate(0, 0, it.Duration)
			}
		}
	}

	if start.IsZero() && end.IsZero() {
		if !n.cfg.IncludeUndated {
			return time.Time{}, time.Time{}, &Skip{Reason: ReasonMissingDates}
		}
		start = n.cfg.Today
	}

	if start.IsZero() {
		start = end.AddDate(0, 0, -n.cfg.LookbackDays)
	}
	if end.IsZero() {
		end = start.AddDate(0, 0, n.cfg.DurationDays)
	}

	if start.After(end) {
		return time.Time{}, time.Time{}, &Skip{
			Reason: ReasonBadDate,
			Err:    fmt.Errorf("start %s after end %s", start.Format(dateLayout), end.Format(dateLayout)),
		}
	}

	if n.cfg.MinDurationDays > 0 {
		if floor := start.AddDate(0, 0, n.cfg.MinDurationDays); end.Before(floor) {
			end = floor
		}
	}

	return start, end, nil
}

// milestoneDue finds the due date of the item's linked milestone: the
// reference's own dueOn, else the configured repo-milestone table.
func (n *Normalizer) milestoneDue(item github.Item) (time.Time, error) {
	ms := item.Milestone()
	if ms == nil {
		return time.Time{}, nil
	}
	if ms.DueOn != "" {
		due, err := ParseDate(ms.DueOn)
		if err != nil {
			return time.Time{}, fmt.Errorf("milestone %q due %q: %w", ms.Title, ms.DueOn, err)
		}
		return due, nil
	}
	if due, ok := n.cfg.Milestones[ms.Title]; ok {
		return due, nil
	}
	return time.Time{}, nil
}

func (n *Normalizer) resolveStatus(item github.Item) types.Status {
	if raw := n.fieldValue(item, n.cfg.StatusField); raw != "" {
		return n.MapStatus(raw)
	}
	if item.Content.ClosedAt != "" {
		return types.StatusDone
	}
	return types.StatusUnknown
}

func (n *Normalizer) fieldValue(item github.Item, name string) string {
	if name == "" {
		return ""
	}
	fv, ok := item.Field(name)
	if !ok {
		return ""
	}
	return fv.Value()
}

// statusTable maps lowercased raw state strings into the closed status set.
// Anything not listed (and not configured) is StatusUnknown, never an error.
var statusTable = map[string]types.Status{
	"todo":        types.StatusTodo,
	"to do":       types.StatusTodo,
	"backlog":     types.StatusTodo,
	"open":        types.StatusTodo,
	"in progress": types.StatusInProgress,
	"doing":       types.StatusInProgress,
	"in review":   types.StatusInProgress,
	"done":        types.StatusDone,
	"closed":      types.StatusDone,
	"complete":    types.StatusDone,
	"completed":   types.StatusDone,
}

// MapStatus resolves a raw status string against the configured overrides and
// the built-in table. Matching is case-insensitive.
func (n *Normalizer) MapStatus(raw string) types.Status {
	key := strings.ToLower(strings.TrimSpace(raw))
	if st, ok := n.cfg.Statuses[key]; ok {
		return st
	}
	if st, ok := statusTable[key]; ok {
		return st
	}
	return types.StatusUnknown
}

const dateLayout = "2006-01-02"

// ParseDate parses an ISO calendar date, tolerating the trailing time
// component that DateTime-typed API fields carry.
func ParseDate(s string) (time.Time, error) {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		s = s[:i]
	}
	return time.Parse(dateLayout, s)
}
