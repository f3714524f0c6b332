package github

import (
	"context"
	"fmt"
	"time"

	"github.com/goblinsan/gh-project-gantt/pkg/types"
	"github.com/google/go-github/v66/github"
)

// FetchRepoMilestones lists every milestone on owner/repo, open and closed,
// following REST pagination. Milestones without a due date come back with a
// zero DueOn; whether they can serve as markers is the caller's call.
func (c *Client) FetchRepoMilestones(ctx context.Context, owner, repo string) ([]types.Milestone, error) {
	opts := &github.MilestoneListOptions{
		State:       "all",
		ListOptions: github.ListOptions{PerPage: 100},
	}

	var out []types.Milestone
	for {
		page, resp, err := c.REST.Issues.ListMilestones(ctx, owner, repo, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to list milestones for %s/%s: %w", owner, repo, err)
		}
		for _, m := range page {
			ms := types.Milestone{Title: m.GetTitle()}
			if m.DueOn != nil {
				// due_on carries a vendor-chosen clock time; only the
				// calendar date matters here.
				ms.DueOn = m.DueOn.Time.UTC().Truncate(24 * time.Hour)
			}
			out = append(out, ms)
		}
		if resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}
