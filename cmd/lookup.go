package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/spiffcs/codewatch/internal/cache"
	"github.com/spiffcs/codewatch/internal/format"
	"github.com/spiffcs/codewatch/internal/model"
	"github.com/spiffcs/codewatch/internal/output"
	"github.com/spiffcs/codewatch/internal/service"
	"github.com/spiffcs/codewatch/internal/tui"
)

// lookup is one user, repository or search requested on the command line.
type lookup struct {
	subject string
	issue   func(svc *service.Service)
}

// userLookup requests the profile of username.
func userLookup(username string) lookup {
	return lookup{
		subject: username,
		issue: func(svc *service.Service) {
			svc.FetchInfoForUsername(username)
		},
	}
}

// repoLookup requests a repository and its recent commits.
func repoLookup(key model.RepoKey) lookup {
	return lookup{
		subject: key.String(),
		issue: func(svc *service.Service) {
			svc.FetchInfoForRepo(key.Name, key.Owner)
		},
	}
}

// searchLookup requests the users and repositories matching query.
func searchLookup(query string) lookup {
	return lookup{
		subject: query,
		issue: func(svc *service.Service) {
			svc.FetchSearchResults(query)
		},
	}
}

// collector records the outcome of every lookup by subject.
type collector struct {
	mu      sync.Mutex
	results map[string]output.Result
}

func newCollector() *collector {
	return &collector{results: make(map[string]output.Result)}
}

func (c *collector) set(r output.Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[r.Subject] = r
}

func (c *collector) result(subject string) output.Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.results[subject]; ok {
		return r
	}
	return output.Result{Subject: subject, Err: errors.New("no result")}
}

func (c *collector) UserFetched(user *model.UserInfo, username, _ string) {
	c.set(output.Result{Subject: username, User: user})
}

func (c *collector) UserFetchFailed(username string, err error) {
	c.set(output.Result{Subject: username, Err: err})
}

func (c *collector) RepoFetched(repo *model.Repo, repoName, username, _ string) {
	key := model.RepoKey{Owner: username, Name: repoName}
	c.set(output.Result{Subject: key.String(), Repo: repo})
}

func (c *collector) RepoFetchFailed(repoName, username string, err error) {
	key := model.RepoKey{Owner: username, Name: repoName}
	c.set(output.Result{Subject: key.String(), Err: err})
}

func (c *collector) SearchResultsFetched(results *model.SearchResults, query, _ string) {
	c.set(output.Result{Subject: query, Search: results})
}

func (c *collector) SearchFailed(query string, err error) {
	c.set(output.Result{Subject: query, Err: err})
}

// runLookups issues every lookup at once, waits for all of them and prints
// the results in request order. Repeated subjects share one request.
func runLookups(ctx context.Context, a *app, lookups []lookup) error {
	outFormat, err := a.format()
	if err != nil {
		return err
	}

	results := newCollector()
	id, err := a.svc.RegisterObserver(results)
	if err != nil {
		return err
	}
	defer a.svc.DeregisterObserver(id)

	subjects := make([]string, len(lookups))
	for i, l := range lookups {
		subjects[i] = l.subject
	}
	p := a.startProgress(tui.LookupTasks(subjects))

	// Track before issuing: cached results are delivered immediately
	for i, l := range lookups {
		p.track(l.subject, tui.LookupTask(i))
		l.issue(a.svc)
	}

	if err := a.wait(ctx, p); err != nil {
		return err
	}

	out := make([]output.Result, len(lookups))
	failed := 0
	for i, l := range lookups {
		out[i] = results.result(l.subject)
		if out[i].Failed() {
			failed++
		}
	}

	if err := output.NewFormatter(outFormat).Format(out, a.out); err != nil {
		return err
	}
	if a.opts.Stats {
		printStats(a.out, a.svc.Stats())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d lookups failed", failed, len(lookups))
	}
	return nil
}

func printStats(w io.Writer, s service.Stats) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Cache:")
	for _, row := range []struct {
		name  string
		stats cache.Stats
	}{
		{"users", s.Users},
		{"repos", s.Repos},
		{"searches", s.Searches},
	} {
		fmt.Fprintf(w, "  %-8s %d/%d entries, %s hits, %s misses (%s stale), %s evictions\n",
			row.name, row.stats.Size, row.stats.Capacity,
			format.Count(row.stats.Hits), format.Count(row.stats.Misses),
			format.Count(row.stats.Stale), format.Count(row.stats.Evictions))
	}
}
