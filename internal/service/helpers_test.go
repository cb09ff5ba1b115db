package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/spiffcs/codewatch/internal/model"
)

// fakeGateway answers with the configured functions and counts calls.
type fakeGateway struct {
	exchange  func(ctx context.Context, username, secret string) (string, error)
	fetchUser func(ctx context.Context, username, token string) (*model.UserInfo, error)
	fetchRepo func(ctx context.Context, repo, username, token string) (*model.RepoInfo, []model.CommitInfo, error)
	search    func(ctx context.Context, query, token string) (*model.SearchResults, error)

	exchangeCalls atomic.Int32
	userCalls     atomic.Int32
	repoCalls     atomic.Int32
	searchCalls   atomic.Int32
}

func (g *fakeGateway) ExchangeCredentials(ctx context.Context, username, secret string) (string, error) {
	g.exchangeCalls.Add(1)
	if g.exchange == nil {
		return "token-" + username, nil
	}
	return g.exchange(ctx, username, secret)
}

func (g *fakeGateway) FetchUser(ctx context.Context, username, token string) (*model.UserInfo, error) {
	g.userCalls.Add(1)
	if g.fetchUser == nil {
		return &model.UserInfo{Login: username}, nil
	}
	return g.fetchUser(ctx, username, token)
}

func (g *fakeGateway) FetchRepo(ctx context.Context, repo, username, token string) (*model.RepoInfo, []model.CommitInfo, error) {
	g.repoCalls.Add(1)
	if g.fetchRepo == nil {
		return &model.RepoInfo{Owner: username, Name: repo, FullName: username + "/" + repo},
			[]model.CommitInfo{{SHA: "abc"}}, nil
	}
	return g.fetchRepo(ctx, repo, username, token)
}

func (g *fakeGateway) Search(ctx context.Context, query, token string) (*model.SearchResults, error) {
	g.searchCalls.Add(1)
	if g.search == nil {
		return &model.SearchResults{Query: query, Users: []model.UserInfo{{Login: query}}}, nil
	}
	return g.search(ctx, query, token)
}

type event struct {
	observer string
	kind     string
	subject  string
	token    string
	err      error
	user     *model.UserInfo
	repo     *model.Repo
	results  *model.SearchResults
}

// journal records events from several observers in delivery order.
type journal struct {
	mu     sync.Mutex
	events []event
}

func (j *journal) add(e event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

func (j *journal) all() []event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]event(nil), j.events...)
}

func (j *journal) ofKind(kind string) []event {
	var out []event
	for _, e := range j.all() {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func (j *journal) len() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return len(j.events)
}

// recorder implements every observer interface.
type recorder struct {
	name    string
	journal *journal
	// hook runs after the event is recorded
	hook func(e event)
}

func newRecorder(name string, j *journal) *recorder {
	return &recorder{name: name, journal: j}
}

func (r *recorder) record(e event) {
	e.observer = r.name
	r.journal.add(e)
	if r.hook != nil {
		r.hook(e)
	}
}

func (r *recorder) LoginSucceeded(username, token string) {
	r.record(event{kind: "login", subject: username, token: token})
}

func (r *recorder) LoginFailed(username string, err error) {
	r.record(event{kind: "login-failed", subject: username, err: err})
}

func (r *recorder) UserFetched(user *model.UserInfo, username, token string) {
	r.record(event{kind: "user", subject: username, token: token, user: user})
}

func (r *recorder) UserFetchFailed(username string, err error) {
	r.record(event{kind: "user-failed", subject: username, err: err})
}

func (r *recorder) RepoFetched(repo *model.Repo, repoName, username, token string) {
	r.record(event{kind: "repo", subject: username + "/" + repoName, token: token, repo: repo})
}

func (r *recorder) RepoFetchFailed(repoName, username string, err error) {
	r.record(event{kind: "repo-failed", subject: username + "/" + repoName, err: err})
}

func (r *recorder) SearchResultsFetched(results *model.SearchResults, query, token string) {
	r.record(event{kind: "search", subject: query, token: token, results: results})
}

func (r *recorder) SearchFailed(query string, err error) {
	r.record(event{kind: "search-failed", subject: query, err: err})
}

func (e event) String() string {
	return fmt.Sprintf("%s:%s:%s", e.observer, e.kind, e.subject)
}
