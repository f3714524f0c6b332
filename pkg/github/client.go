package github

import (
	"context"

	"github.com/google/go-github/v66/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"
)

// Client wraps both the REST API client (go-github) and GraphQL client
// (githubv4). Project items come over GraphQL; repository milestones and the
// authenticated-user lookup go over REST.
type Client struct {
	REST    *github.Client
	GraphQL *githubv4.Client
}

// NewClient creates a new GitHub client with both REST and GraphQL
// capabilities. The token is required: every query this tool issues needs an
// authenticated scope, so an empty token fails up front instead of as a 401
// mid-run.
func NewClient(token string) (*Client, error) {
	if token == "" {
		return nil, &AuthError{Reason: "no token; set GITHUB_TOKEN or GH_TOKEN, or pass --token"}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(context.Background(), ts)
	// Layer the status classifier outside oauth2 so it sees the final
	// response for both API surfaces.
	httpClient.Transport = &classifyTransport{base: httpClient.Transport}

	return &Client{
		REST:    github.NewClient(httpClient),
		GraphQL: githubv4.NewClient(httpClient),
	}, nil
}

// GetAuthenticatedUser returns information about the authenticated user.
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*github.User, error) {
	user, _, err := c.REST.Users.Get(ctx, "")
	return user, err
}
