package tui

import (
	"fmt"
	"sync"
	"time"

	"github.com/spiffcs/codewatch/internal/model"
)

// Observer turns service notifications into task events. Lookups are
// matched to tasks by subject: a username, owner/name for a repository, or
// the query of a search.
type Observer struct {
	events    chan<- Event
	rateLimit func() (limited bool, resetAt time.Time)

	mu    sync.Mutex
	tasks map[string][]TaskID
}

// ObserverOption configures an Observer.
type ObserverOption func(*Observer)

// WithRateLimit makes the observer check fn after every failure and show
// a warning while it reports a limit.
func WithRateLimit(fn func() (limited bool, resetAt time.Time)) ObserverOption {
	return func(o *Observer) {
		o.rateLimit = fn
	}
}

// NewObserver creates an observer sending to events.
func NewObserver(events chan<- Event, opts ...ObserverOption) *Observer {
	o := &Observer{
		events: events,
		tasks:  make(map[string][]TaskID),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Track marks task as running until a result for subject arrives.
// Several tasks may wait on the same subject.
func (o *Observer) Track(subject string, task TaskID) {
	o.mu.Lock()
	o.tasks[subject] = append(o.tasks[subject], task)
	o.mu.Unlock()

	SendTaskEvent(o.events, task, StatusRunning)
}

// finish ends every task waiting on subject.
func (o *Observer) finish(subject string, status TaskStatus, opts ...TaskEventOption) {
	o.mu.Lock()
	tasks := o.tasks[subject]
	delete(o.tasks, subject)
	o.mu.Unlock()

	for _, task := range tasks {
		SendTaskEvent(o.events, task, status, opts...)
	}
	if status == StatusError {
		o.checkRateLimit()
	}
}

func (o *Observer) checkRateLimit() {
	if o.rateLimit == nil {
		return
	}
	if limited, resetAt := o.rateLimit(); limited {
		SendEvent(o.events, RateLimitEvent{Limited: true, ResetAt: resetAt})
	}
}

func (o *Observer) LoginSucceeded(username, _ string) {
	SendTaskEvent(o.events, TaskAuth, StatusComplete, WithMessage(username))
}

func (o *Observer) LoginFailed(_ string, err error) {
	SendTaskEvent(o.events, TaskAuth, StatusError, WithError(err))
	o.checkRateLimit()
}

func (o *Observer) UserFetched(user *model.UserInfo, username, _ string) {
	o.finish(username, StatusComplete, WithMessage(user.DisplayName()))
}

func (o *Observer) UserFetchFailed(username string, err error) {
	o.finish(username, StatusError, WithError(err))
}

func (o *Observer) RepoFetched(repo *model.Repo, repoName, username, _ string) {
	key := model.RepoKey{Owner: username, Name: repoName}
	o.finish(key.String(), StatusComplete, WithMessage(fmt.Sprintf("%d commits", len(repo.Commits))))
}

func (o *Observer) RepoFetchFailed(repoName, username string, err error) {
	key := model.RepoKey{Owner: username, Name: repoName}
	o.finish(key.String(), StatusError, WithError(err))
}

func (o *Observer) SearchResultsFetched(results *model.SearchResults, query, _ string) {
	o.finish(query, StatusComplete, WithMessage(fmt.Sprintf("%d users, %d repos", results.TotalUsers, results.TotalRepos)))
}

func (o *Observer) SearchFailed(query string, err error) {
	o.finish(query, StatusError, WithError(err))
}
