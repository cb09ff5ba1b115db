package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/codewatch/internal/constants"
	"github.com/spiffcs/codewatch/internal/log"
	"github.com/spiffcs/codewatch/internal/model"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/sync/errgroup"
)

// Options configures a Client.
type Options struct {
	// BaseURL is a GitHub Enterprise URL. Empty means github.com.
	BaseURL string
	// ClientID and ClientSecret identify an OAuth app. When ClientID is set,
	// ExchangeCredentials uses the password grant; otherwise the secret is
	// taken to be a personal access token.
	ClientID     string
	ClientSecret string
	Scopes       []string
	// Timeout bounds every HTTP request.
	Timeout time.Duration
	// CommitLimit is the number of commits FetchRepo returns.
	CommitLimit int
	// DefaultToken is used for lookups made without a token.
	DefaultToken string
	// Transport is the base transport. Nil means http.DefaultTransport.
	Transport http.RoundTripper
}

// Client is the go-github backed Gateway.
type Client struct {
	opts   Options
	limits *RateLimitState

	mu sync.Mutex
	// clients is keyed by token. NEVER log or print the keys.
	clients map[string]*gh.Client
}

// NewClient creates a client. Options left zero take defaults.
func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = constants.RequestTimeout
	}
	if opts.CommitLimit <= 0 {
		opts.CommitLimit = constants.CommitLimit
	}
	if opts.CommitLimit > constants.MaxCommitLimit {
		opts.CommitLimit = constants.MaxCommitLimit
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	if opts.BaseURL != "" {
		if _, err := gh.NewClient(nil).WithEnterpriseURLs(opts.BaseURL, opts.BaseURL); err != nil {
			return nil, fmt.Errorf("invalid api_url %q: %w", opts.BaseURL, err)
		}
	}

	return &Client{
		opts:    opts,
		limits:  newRateLimitState(),
		clients: make(map[string]*gh.Client),
	}, nil
}

// RateLimit returns the last rate limit values GitHub reported.
func (c *Client) RateLimit() RateLimitStatus {
	return c.limits.Status()
}

// httpContext carries the base HTTP client for oauth2.
func (c *Client) httpContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
		Transport: &rateLimitTransport{base: c.opts.Transport, state: c.limits},
		Timeout:   c.opts.Timeout,
	})
}

// api returns the go-github client for token, creating it on first use.
func (c *Client) api(token string) *gh.Client {
	if token == "" {
		token = c.opts.DefaultToken
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if client, ok := c.clients[token]; ok {
		return client
	}

	tc := &http.Client{
		Transport: &rateLimitTransport{base: c.opts.Transport, state: c.limits},
		Timeout:   c.opts.Timeout,
	}
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		tc = oauth2.NewClient(c.httpContext(context.Background()), ts)
		tc.Timeout = c.opts.Timeout
	}

	client := gh.NewClient(tc)
	if c.opts.BaseURL != "" {
		// Validated in NewClient
		client, _ = client.WithEnterpriseURLs(c.opts.BaseURL, c.opts.BaseURL)
	}
	c.clients[token] = client
	return client
}

// oauthEndpoint returns the OAuth endpoint matching BaseURL.
func (c *Client) oauthEndpoint() oauth2.Endpoint {
	endpoint := github.Endpoint
	if c.opts.BaseURL != "" {
		host := strings.TrimSuffix(strings.TrimSuffix(c.opts.BaseURL, "/"), "/api/v3")
		endpoint = oauth2.Endpoint{
			AuthURL:  host + "/login/oauth/authorize",
			TokenURL: host + "/login/oauth/access_token",
		}
	}
	endpoint.AuthStyle = oauth2.AuthStyleInParams
	return endpoint
}

// ExchangeCredentials implements Gateway.
func (c *Client) ExchangeCredentials(ctx context.Context, username, secret string) (string, error) {
	if username == "" || secret == "" {
		return "", &model.Error{
			Kind:    model.KindAuthenticationFailed,
			Subject: username,
			Message: "username and password are required",
		}
	}

	if c.opts.ClientID != "" {
		return c.passwordGrant(ctx, username, secret)
	}

	// Personal access token: it is valid if GitHub says it belongs to username
	start := time.Now()
	user, _, err := c.api(secret).Users.Get(ctx, "")
	log.Debug("verified token", "username", username, "duration", time.Since(start), "ok", err == nil)
	if err != nil {
		if hasStatus(err, http.StatusUnauthorized) || hasStatus(err, http.StatusForbidden) {
			return "", &model.Error{Kind: model.KindAuthenticationFailed, Subject: username, Message: "bad credentials", Err: err}
		}
		return "", classify(err, username)
	}
	if !strings.EqualFold(user.GetLogin(), username) {
		return "", &model.Error{
			Kind:    model.KindAuthenticationFailed,
			Subject: username,
			Message: fmt.Sprintf("token belongs to %s", user.GetLogin()),
		}
	}
	return secret, nil
}

func (c *Client) passwordGrant(ctx context.Context, username, password string) (string, error) {
	conf := &oauth2.Config{
		ClientID:     c.opts.ClientID,
		ClientSecret: c.opts.ClientSecret,
		Endpoint:     c.oauthEndpoint(),
		Scopes:       c.opts.Scopes,
	}

	start := time.Now()
	tok, err := conf.PasswordCredentialsToken(c.httpContext(ctx), username, password)
	log.Debug("password grant", "username", username, "duration", time.Since(start), "ok", err == nil)
	if err != nil {
		return "", classify(err, username)
	}
	return tok.AccessToken, nil
}

// FetchUser implements Gateway.
func (c *Client) FetchUser(ctx context.Context, username, token string) (*model.UserInfo, error) {
	// Users.Get treats "" as the authenticated user
	if username == "" {
		return nil, &model.Error{Kind: model.KindNotFound, Message: "empty username"}
	}

	start := time.Now()
	user, _, err := c.api(token).Users.Get(ctx, username)
	log.Debug("fetched user", "username", username, "duration", time.Since(start), "ok", err == nil)
	if err != nil {
		return nil, classify(err, username)
	}
	return toUserInfo(user), nil
}

// FetchRepo implements Gateway. Metadata and commits are requested
// concurrently; a failure of either fails the call. An empty repository
// has no commits, which GitHub reports as 409 Conflict.
func (c *Client) FetchRepo(ctx context.Context, repo, username, token string) (*model.RepoInfo, []model.CommitInfo, error) {
	key := model.RepoKey{Owner: username, Name: repo}
	if key.IsZero() {
		return nil, nil, &model.Error{Kind: model.KindNotFound, Subject: key.String(), Message: "empty repository name"}
	}

	api := c.api(token)
	start := time.Now()

	var (
		info    *gh.Repository
		commits []*gh.RepositoryCommit
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		r, _, err := api.Repositories.Get(gctx, username, repo)
		if err != nil {
			return fmt.Errorf("failed to get repository: %w", err)
		}
		info = r
		return nil
	})

	g.Go(func() error {
		opts := &gh.CommitsListOptions{
			ListOptions: gh.ListOptions{PerPage: c.opts.CommitLimit},
		}
		list, _, err := api.Repositories.ListCommits(gctx, username, repo, opts)
		if err != nil {
			if hasStatus(err, http.StatusConflict) {
				return nil
			}
			return fmt.Errorf("failed to list commits: %w", err)
		}
		commits = list
		return nil
	})

	err := g.Wait()
	log.Debug("fetched repo", "repo", key.String(), "duration", time.Since(start), "ok", err == nil)
	if err != nil {
		return nil, nil, classify(err, key.String())
	}

	return toRepoInfo(info), toCommitInfos(commits, c.opts.CommitLimit), nil
}

// Search implements Gateway. Users and repositories are searched
// concurrently and a failure of either fails the call. Search has its own,
// much smaller rate limit.
func (c *Client) Search(ctx context.Context, query, token string) (*model.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, &model.Error{Kind: model.KindNotFound, Message: "empty search query"}
	}

	api := c.api(token)
	start := time.Now()

	var (
		users *gh.UsersSearchResult
		repos *gh.RepositoriesSearchResult
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		opts := &gh.SearchOptions{ListOptions: gh.ListOptions{PerPage: constants.SearchLimit}}
		r, _, err := api.Search.Users(gctx, query, opts)
		if err != nil {
			return fmt.Errorf("failed to search users: %w", err)
		}
		users = r
		return nil
	})

	g.Go(func() error {
		opts := &gh.SearchOptions{
			Sort:        "stars",
			ListOptions: gh.ListOptions{PerPage: constants.SearchLimit},
		}
		r, _, err := api.Search.Repositories(gctx, query, opts)
		if err != nil {
			return fmt.Errorf("failed to search repositories: %w", err)
		}
		repos = r
		return nil
	})

	err := g.Wait()
	log.Debug("searched", "query", query, "duration", time.Since(start), "ok", err == nil)
	if err != nil {
		return nil, classify(err, query)
	}

	return toSearchResults(query, users, repos), nil
}

// RateLimits asks GitHub for the current quotas of token. The call itself
// does not count against the limit.
func (c *Client) RateLimits(ctx context.Context, token string) ([]Quota, error) {
	limits, _, err := c.api(token).RateLimit.Get(ctx)
	if err != nil {
		return nil, classify(err, "rate limit")
	}

	var quotas []Quota
	add := func(name string, r *gh.Rate) {
		if r == nil {
			return
		}
		quotas = append(quotas, Quota{
			Name:      name,
			Remaining: r.Remaining,
			Limit:     r.Limit,
			ResetAt:   r.Reset.Time,
		})
	}
	add("core", limits.Core)
	add("search", limits.Search)
	add("graphql", limits.GraphQL)
	return quotas, nil
}
