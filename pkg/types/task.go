package types

import "time"

// Status is the normalized lifecycle state of a task. Raw field values from
// the project board are mapped into this closed set at the normalization
// boundary; nothing downstream compares raw strings.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusUnknown    Status = "unknown"
)

// Task is one normalized project item, ready for rendering. Start and End are
// always set (the normalizer synthesizes a missing bound) and Start never
// falls after End.
type Task struct {
	ID      string    `yaml:"id" json:"id"`
	Title   string    `yaml:"title" json:"title"`
	Subject string    `yaml:"subject" json:"subject"`
	Start   time.Time `yaml:"start" json:"start"`
	End     time.Time `yaml:"end" json:"end"`
	Status  Status    `yaml:"status" json:"status"`
}

// Days returns the task span in whole days.
func (t Task) Days() int {
	return int(t.End.Sub(t.Start).Hours() / 24)
}

// Group is an ordered run of tasks sharing one subject label. The diagram
// renders each group as a titled section.
type Group struct {
	Subject string `yaml:"subject" json:"subject"`
	Tasks   []Task `yaml:"tasks" json:"tasks"`
}

// Milestone is a dated marker, sourced either from a repository milestone or
// from a milestone linked to a project item.
type Milestone struct {
	Title string    `yaml:"title" json:"title"`
	DueOn time.Time `yaml:"due_on" json:"due_on"`
}
