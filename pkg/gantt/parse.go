package gantt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Diagram is the parsed form of a rendered diagram.
type Diagram struct {
	Title      string
	DateFormat string
	Sections   []Section
}

// Section is one "section" block and the entries under it.
type Section struct {
	Name    string
	Entries []Entry
}

// Entry is a single timeline line: a task bar with a start and end, or a
// milestone marker with a date and a day-denominated duration.
type Entry struct {
	Title     string
	Tags      []string
	ID        string
	Start     string
	End       string
	Duration  string
	Milestone bool
}

// ParseError reports the first line that does not conform to the notation.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

var (
	datePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	durationPattern = regexp.MustCompile(`^\d+d$`)
	markerIDPattern = regexp.MustCompile(`^m\d+$`)
)

// Parse reads diagram text in the subset of the notation that Render emits:
// an optional code fence and init directive, the gantt header, title and
// dateFormat lines, and sections of task and milestone entries. It is meant
// for checking exported diagrams, not for arbitrary Mermaid input.
func Parse(text string) (*Diagram, error) {
	d := &Diagram{}
	cur := -1
	sawGantt := false

	for i, raw := range strings.Split(text, "\n") {
		lineNo := i + 1
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "```") || strings.HasPrefix(line, "%%") {
			continue
		}
		if line == "gantt" {
			sawGantt = true
			continue
		}
		if !sawGantt {
			return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("expected gantt header before %q", line)}
		}

		switch {
		case strings.HasPrefix(line, "title "):
			d.Title = strings.TrimSpace(strings.TrimPrefix(line, "title "))
		case strings.HasPrefix(line, "dateFormat "):
			d.DateFormat = strings.TrimSpace(strings.TrimPrefix(line, "dateFormat "))
		case strings.HasPrefix(line, "section "):
			name := strings.TrimSpace(strings.TrimPrefix(line, "section "))
			if name == "" {
				return nil, &ParseError{Line: lineNo, Msg: "section has no name"}
			}
			d.Sections = append(d.Sections, Section{Name: name})
			cur = len(d.Sections) - 1
		default:
			if cur < 0 {
				return nil, &ParseError{Line: lineNo, Msg: fmt.Sprintf("entry %q before any section", line)}
			}
			e, err := parseEntry(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: err.Error()}
			}
			d.Sections[cur].Entries = append(d.Sections[cur].Entries, e)
		}
	}

	if !sawGantt {
		return nil, &ParseError{Line: 1, Msg: "missing gantt header"}
	}
	return d, nil
}

func parseEntry(line string) (Entry, error) {
	name, meta, ok := strings.Cut(line, " : ")
	if !ok {
		return Entry{}, errors.New("entry is missing the ' : ' separator")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, errors.New("entry has no name")
	}

	e := Entry{Title: name}
	var dates []time.Time
	var rawDates []string
	for _, part := range strings.Split(meta, ",") {
		part = strings.TrimSpace(part)
		switch {
		case part == "":
			return Entry{}, errors.New("entry has empty metadata")
		case part == "milestone" || part == "done" || part == "active" || part == "crit":
			e.Tags = append(e.Tags, part)
			if part == "milestone" {
				e.Milestone = true
			}
		case markerIDPattern.MatchString(part):
			e.ID = part
		case datePattern.MatchString(part):
			t, err := time.Parse(dateLayout, part)
			if err != nil {
				return Entry{}, fmt.Errorf("invalid date %q", part)
			}
			dates = append(dates, t)
			rawDates = append(rawDates, part)
		case durationPattern.MatchString(part):
			e.Duration = part
		default:
			return Entry{}, fmt.Errorf("unrecognized metadata %q", part)
		}
	}

	switch len(dates) {
	case 0:
		return Entry{}, errors.New("entry has no dates")
	case 1:
		e.Start = rawDates[0]
		if e.Duration == "" {
			return Entry{}, errors.New("entry needs an end date or a duration")
		}
	case 2:
		e.Start, e.End = rawDates[0], rawDates[1]
		if dates[1].Before(dates[0]) {
			return Entry{}, fmt.Errorf("end %s before start %s", rawDates[1], rawDates[0])
		}
	default:
		return Entry{}, fmt.Errorf("entry has %d dates, want at most 2", len(dates))
	}
	return e, nil
}
