// Package ghclient talks to the GitHub REST API on behalf of the service.
package ghclient

import (
	"context"

	"github.com/spiffcs/codewatch/internal/model"
)

// Gateway performs the remote calls the service depends on. Every method
// blocks until GitHub answers or ctx is done, and returns errors already
// classified as *model.Error.
type Gateway interface {
	// ExchangeCredentials turns a username and password (or personal access
	// token) into an API token.
	ExchangeCredentials(ctx context.Context, username, secret string) (string, error)

	// FetchUser returns the public profile of username. An empty token
	// falls back to the client's default token, if any.
	FetchUser(ctx context.Context, username, token string) (*model.UserInfo, error)

	// FetchRepo returns the metadata and most recent commits of
	// username/repo. Either both are returned or an error is.
	FetchRepo(ctx context.Context, repo, username, token string) (*model.RepoInfo, []model.CommitInfo, error)

	// Search returns the users and repositories matching query. Either
	// both lists are returned or an error is.
	Search(ctx context.Context, query, token string) (*model.SearchResults, error)
}

// Ensure Client implements Gateway
var _ Gateway = (*Client)(nil)
