// Package service coordinates logins and GitHub lookups between the
// gateway, the caches and any registered observers.
package service

import (
	"context"
	"strings"
	"sync"

	"github.com/spiffcs/codewatch/internal/cache"
	"github.com/spiffcs/codewatch/internal/constants"
	"github.com/spiffcs/codewatch/internal/ghclient"
	"github.com/spiffcs/codewatch/internal/log"
	"github.com/spiffcs/codewatch/internal/model"
	"github.com/spiffcs/codewatch/internal/session"
	"golang.org/x/sync/singleflight"
)

// Service is the single entry point of the UI tier. Requests return
// immediately; results reach registered observers through the dispatcher.
// Cached results are delivered before the request returns when the
// dispatcher is idle.
type Service struct {
	gateway    ghclient.Gateway
	login      *session.LoginState
	store      session.Store
	users      *cache.UserCache
	repos      *cache.Entity[*model.Repo]
	searches   *cache.Entity[*model.SearchResults]
	observers  *Registry
	dispatcher Dispatcher

	userFlights   singleflight.Group
	repoFlights   singleflight.Group
	searchFlights singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithDispatcher sets the delivery context. The default is a SerialDispatcher.
func WithDispatcher(d Dispatcher) Option {
	return func(s *Service) {
		s.dispatcher = d
	}
}

// WithSessionStore persists logins in store. The default keeps them in memory.
func WithSessionStore(store session.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithUserCache replaces the default user cache.
func WithUserCache(c *cache.UserCache) Option {
	return func(s *Service) {
		s.users = c
	}
}

// WithRepoCache replaces the default repository cache.
func WithRepoCache(c *cache.Entity[*model.Repo]) Option {
	return func(s *Service) {
		s.repos = c
	}
}

// WithSearchCache replaces the default search cache.
func WithSearchCache(c *cache.Entity[*model.SearchResults]) Option {
	return func(s *Service) {
		s.searches = c
	}
}

// New creates a Service and restores any login saved in its session store.
func New(gateway ghclient.Gateway, opts ...Option) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		gateway:   gateway,
		login:     session.NewLoginState(),
		observers: NewRegistry(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.dispatcher == nil {
		s.dispatcher = NewSerialDispatcher()
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
	}
	if s.users == nil {
		s.users = cache.NewUserCache(constants.UserHistoryCapacity, cache.WithMaxAge(constants.UserCacheTTL))
	}
	if s.repos == nil {
		s.repos = cache.NewEntity[*model.Repo](constants.RepoHistoryCapacity,
			cache.WithMaxAge(constants.RepoCacheTTL), cache.WithName("repos"))
	}
	if s.searches == nil {
		s.searches = cache.NewEntity[*model.SearchResults](constants.SearchHistoryCapacity,
			cache.WithMaxAge(constants.SearchCacheTTL), cache.WithName("searches"))
	}

	creds, ok, err := s.store.Load()
	switch {
	case err != nil:
		log.Warn("failed to load saved session", "error", err)
	case ok:
		s.login.Restore(creds)
		s.users.SetPrimary(userKey(creds.Username))
		log.Info("restored session", "username", creds.Username, "token_set", creds.Token != "")
	}

	return s
}

// RegisterObserver adds o to the observers notified of results. o must be
// comparable (typically a pointer) and implement at least one of
// LoginObserver, UserObserver, RepoObserver or SearchObserver. Registering twice is a no-op.
func (s *Service) RegisterObserver(o any) (ObserverID, error) {
	return s.observers.Register(o)
}

// DeregisterObserver removes o, given as the observer or its ObserverID.
// Unknown observers are ignored. Requests already in flight still complete.
func (s *Service) DeregisterObserver(o any) {
	s.observers.Deregister(o)
}

// CurrentUser returns the logged-in credentials.
func (s *Service) CurrentUser() (session.Credentials, bool) {
	return s.login.Current()
}

// LogIn exchanges username and secret for a token. Only one login may be
// outstanding; a second one fails with model.ErrLoginInProgress, which is
// both returned and reported to observers.
func (s *Service) LogIn(username, secret string) error {
	if err := s.beginLogin(username); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		token, err := s.gateway.ExchangeCredentials(s.ctx, username, secret)
		if err != nil {
			s.failLogin(username, classify(err, username))
			return
		}
		s.completeLogin(username, token)
	}()
	return nil
}

// LogInWithToken logs in with an already issued token.
func (s *Service) LogInWithToken(username, token string) error {
	if err := s.beginLogin(username); err != nil {
		return err
	}
	s.completeLogin(username, token)
	return nil
}

// LogOut forgets the current login, including the saved session.
func (s *Service) LogOut() {
	creds, ok := s.login.Current()
	s.login.Clear()
	s.users.SetPrimary("")
	s.repos.Clear()
	s.searches.Clear()
	if err := s.store.Clear(); err != nil {
		log.Warn("failed to clear saved session", "error", err)
	}
	if ok {
		log.Info("logged out", "username", creds.Username)
	}
}

func (s *Service) beginLogin(username string) error {
	var err error
	if username == "" {
		err = &model.Error{Kind: model.KindAuthenticationFailed, Message: "username is required"}
	} else {
		err = s.login.Begin(username)
	}
	if err != nil {
		s.notify(func(o any) {
			if lo, ok := o.(LoginObserver); ok {
				lo.LoginFailed(username, err)
			}
		})
		return err
	}
	return nil
}

func (s *Service) completeLogin(username, token string) {
	previous, _ := s.login.Current()
	s.login.Complete(username, token)
	s.users.SetPrimary(userKey(username))
	if !strings.EqualFold(previous.Username, username) {
		// Repositories visible to the previous account may be private
		s.repos.Clear()
		s.searches.Clear()
	}
	if err := s.store.Save(session.Credentials{Username: username, Token: token}); err != nil {
		log.Warn("failed to save session", "error", err)
	}

	s.notify(func(o any) {
		if lo, ok := o.(LoginObserver); ok {
			lo.LoginSucceeded(username, token)
		}
	})
}

func (s *Service) failLogin(username string, err error) {
	s.login.Fail(username)
	s.notify(func(o any) {
		if lo, ok := o.(LoginObserver); ok {
			lo.LoginFailed(username, err)
		}
	})
}

// FetchInfoForUsername looks up username. A fresh cached profile is
// delivered without a remote call. Concurrent lookups of the same username
// share one remote call, and every lookup gets its own notification with
// the shared result. Usernames are case-insensitive. Failures are not
// cached.
func (s *Service) FetchInfoForUsername(username string) {
	token := s.login.Token()
	key := userKey(username)

	if username == "" {
		s.userFailed(username, &model.Error{Kind: model.KindNotFound, Message: "empty username"})
		return
	}
	if user, ok := s.users.Get(key); ok {
		s.userFetched(user, username, token)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		// Delivery happens after the flight is forgotten so a retry from
		// inside a failure callback starts a new one.
		var leader bool
		v, err, _ := s.userFlights.Do(key, func() (any, error) {
			leader = true

			// A flight that landed after our cache check already stored it
			if user, ok := s.users.Get(key); ok {
				return user, nil
			}

			user, err := s.gateway.FetchUser(s.ctx, username, token)
			if err == nil && user == nil {
				err = &model.Error{Kind: model.KindRemote, Subject: username, Message: "empty response"}
			}
			if err != nil {
				return nil, classify(err, username)
			}
			s.users.Put(key, user)
			return user, nil
		})

		if !leader {
			log.Debug("joined in-flight user fetch", "username", username)
		}
		if err != nil {
			s.userFailed(username, err)
			return
		}
		s.userFetched(v.(*model.UserInfo), username, token)
	}()
}

func (s *Service) userFetched(user *model.UserInfo, username, token string) {
	s.notify(func(o any) {
		if uo, ok := o.(UserObserver); ok {
			uo.UserFetched(user, username, token)
		}
	})
}

func (s *Service) userFailed(username string, err error) {
	s.notify(func(o any) {
		if uo, ok := o.(UserObserver); ok {
			uo.UserFetchFailed(username, err)
		}
	})
}

// FetchInfoForRepo looks up the repository repo owned by username together
// with its recent commits. It follows the same cache and sharing rules as
// FetchInfoForUsername. Observers receive either the metadata with the
// commits or a single failure, never one without the other.
func (s *Service) FetchInfoForRepo(repo, username string) {
	token := s.login.Token()
	key := model.RepoKey{Owner: username, Name: repo}
	cacheKey := strings.ToLower(key.String())

	if key.IsZero() {
		s.repoFailed(repo, username, &model.Error{Kind: model.KindNotFound, Subject: key.String(), Message: "empty repository name"})
		return
	}
	if r, ok := s.repos.Get(cacheKey); ok {
		s.repoFetched(r, repo, username, token)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var leader bool
		v, err, _ := s.repoFlights.Do(cacheKey, func() (any, error) {
			leader = true

			if r, ok := s.repos.Get(cacheKey); ok {
				return r, nil
			}

			info, commits, err := s.gateway.FetchRepo(s.ctx, repo, username, token)
			if err == nil && info == nil {
				err = &model.Error{Kind: model.KindRemote, Subject: key.String(), Message: "empty response"}
			}
			if err != nil {
				return nil, classify(err, key.String())
			}

			if commits == nil {
				commits = []model.CommitInfo{}
			}
			r := &model.Repo{Info: *info, Commits: commits}
			s.repos.Put(cacheKey, r)
			return r, nil
		})

		if !leader {
			log.Debug("joined in-flight repo fetch", "repo", key.String())
		}
		if err != nil {
			s.repoFailed(repo, username, err)
			return
		}
		s.repoFetched(v.(*model.Repo), repo, username, token)
	}()
}

func (s *Service) repoFetched(r *model.Repo, repo, username, token string) {
	s.notify(func(o any) {
		if ro, ok := o.(RepoObserver); ok {
			ro.RepoFetched(r, repo, username, token)
		}
	})
}

func (s *Service) repoFailed(repo, username string, err error) {
	s.notify(func(o any) {
		if ro, ok := o.(RepoObserver); ok {
			ro.RepoFetchFailed(repo, username, err)
		}
	})
}

// FetchSearchResults searches users and repositories for query. Queries
// differing only in case or surrounding space share cache entries and
// flights. Every request gets its own notification.
func (s *Service) FetchSearchResults(query string) {
	token := s.login.Token()
	key := strings.ToLower(strings.TrimSpace(query))

	if key == "" {
		s.searchFailed(query, &model.Error{Kind: model.KindNotFound, Message: "empty search query"})
		return
	}
	if results, ok := s.searches.Get(key); ok {
		s.searchFetched(results, query, token)
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		var leader bool
		v, err, _ := s.searchFlights.Do(key, func() (any, error) {
			leader = true

			if results, ok := s.searches.Get(key); ok {
				return results, nil
			}

			results, err := s.gateway.Search(s.ctx, strings.TrimSpace(query), token)
			if err == nil && results == nil {
				err = &model.Error{Kind: model.KindRemote, Subject: query, Message: "empty response"}
			}
			if err != nil {
				return nil, classify(err, query)
			}
			s.searches.Put(key, results)
			return results, nil
		})

		if !leader {
			log.Debug("joined in-flight search", "query", query)
		}
		if err != nil {
			s.searchFailed(query, err)
			return
		}
		s.searchFetched(v.(*model.SearchResults), query, token)
	}()
}

func (s *Service) searchFetched(results *model.SearchResults, query, token string) {
	s.notify(func(o any) {
		if so, ok := o.(SearchObserver); ok {
			so.SearchResultsFetched(results, query, token)
		}
	})
}

func (s *Service) searchFailed(query string, err error) {
	s.notify(func(o any) {
		if so, ok := o.(SearchObserver); ok {
			so.SearchFailed(query, err)
		}
	})
}

// userKey is the cache and flight key for username. GitHub logins are
// case-insensitive.
func userKey(username string) string {
	return strings.ToLower(username)
}

// notify delivers one event to every observer on the dispatcher.
func (s *Service) notify(fn func(o any)) {
	s.wg.Add(1)
	s.dispatcher.Dispatch(func() {
		defer s.wg.Done()
		s.observers.each(fn)
	})
}

// Wait blocks until every request issued so far has been delivered,
// including requests issued from observer callbacks. Requests from other
// goroutines must be issued before Wait is called, not alongside it.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Close cancels requests in flight and waits for their failures to be
// delivered.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Stats holds cache statistics.
type Stats struct {
	Users    cache.Stats
	Repos    cache.Stats
	Searches cache.Stats
}

// Stats returns statistics for both caches.
func (s *Service) Stats() Stats {
	return Stats{
		Users:    s.users.Stats(),
		Repos:    s.repos.Stats(),
		Searches: s.searches.Stats(),
	}
}
