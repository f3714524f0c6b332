package github

import (
	"context"
	"fmt"
	"strings"

	"github.com/shurcooL/githubv4"
)

// FieldKind discriminates the value union carried by a project field.
type FieldKind string

const (
	FieldText         FieldKind = "text"
	FieldDate         FieldKind = "date"
	FieldSingleSelect FieldKind = "single_select"
	FieldMilestone    FieldKind = "milestone"
	FieldIteration    FieldKind = "iteration"
)

// MilestoneRef is a milestone reference attached to an item, either through
// its content (repo milestone on an Issue/PR) or through a milestone-typed
// project field. DueOn stays a raw string for the normalizer to parse.
type MilestoneRef struct {
	Title string
	DueOn string
}

// IterationRef is an iteration-typed field value: a start date plus a
// duration in days.
type IterationRef struct {
	Title     string
	StartDate string
	Duration  int
}

// FieldValue is one project field value on an item, keyed by field name.
// Exactly one payload member is meaningful, per Kind.
type FieldValue struct {
	Field     string
	Kind      FieldKind
	Text      string
	Date      string
	Option    string
	Milestone *MilestoneRef
	Iteration *IterationRef
}

// Value returns the scalar payload of the field: its text, raw date string,
// or selected option name, whichever the kind carries.
func (v FieldValue) Value() string {
	switch v.Kind {
	case FieldText:
		return v.Text
	case FieldDate:
		return v.Date
	case FieldSingleSelect:
		return v.Option
	}
	return ""
}

// Content is the issue, pull request, or draft behind a project item. Items
// whose content is inaccessible have a zero Content.
type Content struct {
	Type      string
	Title     string
	ClosedAt  string
	Milestone *MilestoneRef
}

// Item is one raw project item: an opaque bag of field values plus optional
// content. No field is guaranteed present; the normalizer owns all fallback
// resolution.
type Item struct {
	ID      string
	Content Content
	Fields  []FieldValue
}

// Field returns the first field value whose name matches exactly.
func (it Item) Field(name string) (FieldValue, bool) {
	for _, f := range it.Fields {
		if f.Field == name {
			return f, true
		}
	}
	return FieldValue{}, false
}

// Milestone returns the milestone linked to the item: the content milestone
// first, then any milestone-typed project field.
func (it Item) Milestone() *MilestoneRef {
	if it.Content.Milestone != nil {
		return it.Content.Milestone
	}
	for _, f := range it.Fields {
		if f.Kind == FieldMilestone && f.Milestone != nil {
			return f.Milestone
		}
	}
	return nil
}

// Iteration returns the first iteration-typed field value, if any.
func (it Item) Iteration() *IterationRef {
	for _, f := range it.Fields {
		if f.Kind == FieldIteration && f.Iteration != nil {
			return f.Iteration
		}
	}
	return nil
}

// Project is a fetched board: its title plus every item across all pages.
type Project struct {
	Title string
	Items []Item
}

// GraphQL query shapes. Field values come back as a union, so each concrete
// type is selected through an inline fragment, the same way the ProjectV2
// API documents it.

type fieldCommon struct {
	Common struct {
		Name string
	} `graphql:"... on ProjectV2FieldCommon"`
}

type milestoneNode struct {
	Title string
	DueOn string
}

type contentFragment struct {
	Title     string
	ClosedAt  string
	Milestone milestoneNode
}

type fieldValueNode struct {
	TypeName string `graphql:"__typename"`
	Text     struct {
		Text  string
		Field fieldCommon
	} `graphql:"... on ProjectV2ItemFieldTextValue"`
	Date struct {
		Date  string
		Field fieldCommon
	} `graphql:"... on ProjectV2ItemFieldDateValue"`
	SingleSelect struct {
		Name  string
		Field fieldCommon
	} `graphql:"... on ProjectV2ItemFieldSingleSelectValue"`
	Milestone struct {
		Milestone milestoneNode
		Field     fieldCommon
	} `graphql:"... on ProjectV2ItemFieldMilestoneValue"`
	Iteration struct {
		Title     string
		StartDate string
		Duration  int
		Field     fieldCommon
	} `graphql:"... on ProjectV2ItemFieldIterationValue"`
}

type itemNode struct {
	ID      string
	Content struct {
		TypeName    string          `graphql:"__typename"`
		Issue       contentFragment `graphql:"... on Issue"`
		PullRequest contentFragment `graphql:"... on PullRequest"`
		DraftIssue  struct {
			Title string
		} `graphql:"... on DraftIssue"`
	}
	FieldValues struct {
		Nodes []fieldValueNode
	} `graphql:"fieldValues(first: 20)"`
}

type projectPart struct {
	Title string
	Items struct {
		PageInfo struct {
			HasNextPage bool
			EndCursor   githubv4.String
		}
		Nodes []itemNode
	} `graphql:"items(first: 100, after: $after)"`
}

type userProjectQuery struct {
	User struct {
		ProjectV2 projectPart `graphql:"projectV2(number: $number)"`
	} `graphql:"user(login: $login)"`
}

type orgProjectQuery struct {
	Organization struct {
		ProjectV2 projectPart `graphql:"projectV2(number: $number)"`
	} `graphql:"organization(login: $login)"`
}

// FetchProjectItems fetches the titled board and every item on it, following
// pagination cursors until exhaustion. The login may name a user or an
// organization; users are tried first. Each call re-queries from the first
// page.
func (c *Client) FetchProjectItems(ctx context.Context, login string, number int) (*Project, error) {
	vars := map[string]interface{}{
		"login":  githubv4.String(login),
		"number": githubv4.Int(number),
		"after":  (*githubv4.String)(nil),
	}

	var project Project
	asOrg := false
	for {
		part, err := c.queryItemsPage(ctx, vars, asOrg)
		if err != nil {
			if !asOrg && len(project.Items) == 0 && strings.Contains(err.Error(), "Could not resolve to a User") {
				asOrg = true
				continue
			}
			return nil, classifyQueryError(err, fmt.Sprintf("project %d of %q", number, login))
		}
		if part.Title == "" && len(part.Items.Nodes) == 0 && project.Title == "" {
			// A token without the project scope yields a null board instead
			// of an error.
			return nil, &NotFoundError{Resource: fmt.Sprintf("project %d of %q", number, login)}
		}
		project.Title = part.Title
		for _, n := range part.Items.Nodes {
			project.Items = append(project.Items, convertItem(n))
		}
		if !part.Items.PageInfo.HasNextPage {
			return &project, nil
		}
		vars["after"] = part.Items.PageInfo.EndCursor
	}
}

func (c *Client) queryItemsPage(ctx context.Context, vars map[string]interface{}, asOrg bool) (*projectPart, error) {
	if asOrg {
		var q orgProjectQuery
		if err := c.GraphQL.Query(ctx, &q, vars); err != nil {
			return nil, err
		}
		return &q.Organization.ProjectV2, nil
	}
	var q userProjectQuery
	if err := c.GraphQL.Query(ctx, &q, vars); err != nil {
		return nil, err
	}
	return &q.User.ProjectV2, nil
}

func convertItem(n itemNode) Item {
	item := Item{ID: n.ID}

	switch n.Content.TypeName {
	case "Issue":
		item.Content = convertContent("Issue", n.Content.Issue)
	case "PullRequest":
		item.Content = convertContent("PullRequest", n.Content.PullRequest)
	case "DraftIssue":
		item.Content = Content{Type: "DraftIssue", Title: n.Content.DraftIssue.Title}
	}

	for _, f := range n.FieldValues.Nodes {
		if fv, ok := convertFieldValue(f); ok {
			item.Fields = append(item.Fields, fv)
		}
	}
	return item
}

func convertContent(typ string, c contentFragment) Content {
	out := Content{Type: typ, Title: c.Title, ClosedAt: c.ClosedAt}
	if c.Milestone.Title != "" {
		out.Milestone = &MilestoneRef{Title: c.Milestone.Title, DueOn: c.Milestone.DueOn}
	}
	return out
}

func convertFieldValue(f fieldValueNode) (FieldValue, bool) {
	switch f.TypeName {
	case "ProjectV2ItemFieldTextValue":
		return FieldValue{Field: f.Text.Field.Common.Name, Kind: FieldText, Text: f.Text.Text}, true
	case "ProjectV2ItemFieldDateValue":
		return FieldValue{Field: f.Date.Field.Common.Name, Kind: FieldDate, Date: f.Date.Date}, true
	case "ProjectV2ItemFieldSingleSelectValue":
		return FieldValue{Field: f.SingleSelect.Field.Common.Name, Kind: FieldSingleSelect, Option: f.SingleSelect.Name}, true
	case "ProjectV2ItemFieldMilestoneValue":
		if f.Milestone.Milestone.Title == "" {
			return FieldValue{}, false
		}
		return FieldValue{
			Field:     f.Milestone.Field.Common.Name,
			Kind:      FieldMilestone,
			Milestone: &MilestoneRef{Title: f.Milestone.Milestone.Title, DueOn: f.Milestone.Milestone.DueOn},
		}, true
	case "ProjectV2ItemFieldIterationValue":
		return FieldValue{
			Field: f.Iteration.Field.Common.Name,
			Kind:  FieldIteration,
			Iteration: &IterationRef{
				Title:     f.Iteration.Title,
				StartDate: f.Iteration.StartDate,
				Duration:  f.Iteration.Duration,
			},
		}, true
	}
	// Other value types (labels, users, numbers) are not part of the query.
	return FieldValue{}, false
}
