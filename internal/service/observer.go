package service

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/spiffcs/codewatch/internal/model"
)

// LoginObserver is notified when a login attempt ends.
type LoginObserver interface {
	LoginSucceeded(username, token string)
	LoginFailed(username string, err error)
}

// UserObserver is notified when a user lookup ends.
type UserObserver interface {
	UserFetched(user *model.UserInfo, username, token string)
	UserFetchFailed(username string, err error)
}

// RepoObserver is notified when a repository lookup ends. repo carries
// the metadata and the commits together.
type RepoObserver interface {
	RepoFetched(repo *model.Repo, repoName, username, token string)
	RepoFetchFailed(repoName, username string, err error)
}

// SearchObserver is notified when a search ends. query is the query as
// the caller gave it.
type SearchObserver interface {
	SearchResultsFetched(results *model.SearchResults, query, token string)
	SearchFailed(query string, err error)
}

// Funcs adapts plain functions to every observer interface. Nil fields are
// skipped. Register a *Funcs, not a Funcs.
type Funcs struct {
	OnLoginSucceeded  func(username, token string)
	OnLoginFailed     func(username string, err error)
	OnUserFetched     func(user *model.UserInfo, username, token string)
	OnUserFetchFailed func(username string, err error)
	OnRepoFetched     func(repo *model.Repo, repoName, username, token string)
	OnRepoFetchFailed func(repoName, username string, err error)
	OnSearchFetched   func(results *model.SearchResults, query, token string)
	OnSearchFailed    func(query string, err error)
}

var (
	_ LoginObserver  = (*Funcs)(nil)
	_ UserObserver   = (*Funcs)(nil)
	_ RepoObserver   = (*Funcs)(nil)
	_ SearchObserver = (*Funcs)(nil)
)

func (f *Funcs) LoginSucceeded(username, token string) {
	if f.OnLoginSucceeded != nil {
		f.OnLoginSucceeded(username, token)
	}
}

func (f *Funcs) LoginFailed(username string, err error) {
	if f.OnLoginFailed != nil {
		f.OnLoginFailed(username, err)
	}
}

func (f *Funcs) UserFetched(user *model.UserInfo, username, token string) {
	if f.OnUserFetched != nil {
		f.OnUserFetched(user, username, token)
	}
}

func (f *Funcs) UserFetchFailed(username string, err error) {
	if f.OnUserFetchFailed != nil {
		f.OnUserFetchFailed(username, err)
	}
}

func (f *Funcs) RepoFetched(repo *model.Repo, repoName, username, token string) {
	if f.OnRepoFetched != nil {
		f.OnRepoFetched(repo, repoName, username, token)
	}
}

func (f *Funcs) RepoFetchFailed(repoName, username string, err error) {
	if f.OnRepoFetchFailed != nil {
		f.OnRepoFetchFailed(repoName, username, err)
	}
}

func (f *Funcs) SearchResultsFetched(results *model.SearchResults, query, token string) {
	if f.OnSearchFetched != nil {
		f.OnSearchFetched(results, query, token)
	}
}

func (f *Funcs) SearchFailed(query string, err error) {
	if f.OnSearchFailed != nil {
		f.OnSearchFailed(query, err)
	}
}

// ObserverID identifies a registration. It can be used in place of the
// observer to deregister.
type ObserverID uuid.UUID

func (id ObserverID) String() string {
	return uuid.UUID(id).String()
}

// ErrInvalidObserver is returned when registering something that cannot
// be an observer.
var ErrInvalidObserver = errors.New("invalid observer")

type registration struct {
	id       ObserverID
	observer any
	active   atomic.Bool
}

// Registry holds observers in registration order.
type Registry struct {
	mu      sync.Mutex
	entries []*registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds o, which must be comparable and implement at least one of
// LoginObserver, UserObserver, RepoObserver or SearchObserver. Registering the same
// observer again returns its existing ID.
func (r *Registry) Register(o any) (ObserverID, error) {
	if o == nil {
		return ObserverID{}, fmt.Errorf("%w: nil", ErrInvalidObserver)
	}
	if !reflect.TypeOf(o).Comparable() {
		return ObserverID{}, fmt.Errorf("%w: %T is not comparable, register a pointer", ErrInvalidObserver, o)
	}
	_, isLogin := o.(LoginObserver)
	_, isUser := o.(UserObserver)
	_, isRepo := o.(RepoObserver)
	_, isSearch := o.(SearchObserver)
	if !isLogin && !isUser && !isRepo && !isSearch {
		return ObserverID{}, fmt.Errorf("%w: %T implements no observer interface", ErrInvalidObserver, o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, e := range r.entries {
		if e.observer == o {
			return e.id, nil
		}
	}

	e := &registration{id: ObserverID(uuid.New()), observer: o}
	e.active.Store(true)
	r.entries = append(r.entries, e)
	return e.id, nil
}

// Deregister removes o, which may be the observer or its ObserverID.
// It reports whether anything was removed.
func (r *Registry) Deregister(o any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, byID := o.(ObserverID)
	for i, e := range r.entries {
		if (byID && e.id == id) || (!byID && e.observer == o) {
			// Passes already holding a snapshot skip it from now on
			e.active.Store(false)
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// Len returns the number of registered observers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// each calls fn for every observer registered when the pass starts, in
// registration order, skipping any deregistered during the pass.
func (r *Registry) each(fn func(o any)) {
	r.mu.Lock()
	snapshot := make([]*registration, len(r.entries))
	copy(snapshot, r.entries)
	r.mu.Unlock()

	for _, e := range snapshot {
		if e.active.Load() {
			// A panicking observer does not keep the rest from the event
			run(func() { fn(e.observer) })
		}
	}
}
