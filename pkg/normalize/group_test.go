package normalize

import (
	"testing"

	"github.com/goblinsan/gh-project-gantt/pkg/types"
)

func TestGroupBySubject_FirstOccurrenceOrder(t *testing.T) {
	tasks := []types.Task{
		{ID: "1", Title: "b1", Subject: "Backend"},
		{ID: "2", Title: "f1", Subject: "Frontend"},
		{ID: "3", Title: "b2", Subject: "Backend"},
		{ID: "4", Title: "o1", Subject: "Ops"},
	}

	groups := GroupBySubject(tasks)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	if groups[0].Subject != "Backend" || groups[1].Subject != "Frontend" || groups[2].Subject != "Ops" {
		t.Errorf("expected first-occurrence order Backend, Frontend, Ops; got %s, %s, %s",
			groups[0].Subject, groups[1].Subject, groups[2].Subject)
	}
	if len(groups[0].Tasks) != 2 {
		t.Fatalf("expected 2 Backend tasks, got %d", len(groups[0].Tasks))
	}
	// Tasks keep their fetch order inside a group.
	if groups[0].Tasks[0].Title != "b1" || groups[0].Tasks[1].Title != "b2" {
		t.Errorf("expected b1 then b2, got %s then %s", groups[0].Tasks[0].Title, groups[0].Tasks[1].Title)
	}
}

func TestGroupBySubject_CaseSensitive(t *testing.T) {
	tasks := []types.Task{
		{ID: "1", Subject: "api"},
		{ID: "2", Subject: "API"},
	}
	groups := GroupBySubject(tasks)
	if len(groups) != 2 {
		t.Errorf("expected distinct groups for api and API, got %d", len(groups))
	}
}

func TestGroupBySubject_Empty(t *testing.T) {
	if groups := GroupBySubject(nil); groups != nil {
		t.Errorf("expected nil for no tasks, got %v", groups)
	}
}
