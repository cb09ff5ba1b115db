package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spiffcs/codewatch/config"
	"github.com/spiffcs/codewatch/internal/cache"
	"github.com/spiffcs/codewatch/internal/ghclient"
	"github.com/spiffcs/codewatch/internal/log"
	"github.com/spiffcs/codewatch/internal/model"
	"github.com/spiffcs/codewatch/internal/output"
	"github.com/spiffcs/codewatch/internal/service"
	"github.com/spiffcs/codewatch/internal/session"
	"github.com/spiffcs/codewatch/internal/tui"
)

// app bundles what every command that talks to GitHub needs.
type app struct {
	opts     *Options
	cfg      *config.Config
	client   *ghclient.Client
	svc      *service.Service
	useTUI   bool
	profiler *Profiler
	out      io.Writer
}

// newApp loads the configuration and wires the client, session store and
// service together. Call close when done.
func newApp(opts *Options, out io.Writer) (*app, error) {
	profiler := NewProfiler(opts.CPUProfile, opts.MemProfile, opts.Trace)
	if err := profiler.Start(); err != nil {
		return nil, err
	}

	cfg, err := config.Load()
	if err != nil {
		profiler.Stop()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	useTUI := showProgress(opts)
	initLogging(opts.Verbosity, cfg.LogFormat, useTUI)

	client, err := ghclient.NewClient(ghclient.Options{
		BaseURL:      cfg.APIURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret(),
		Scopes:       cfg.Scopes,
		Timeout:      cfg.Timeout(),
		CommitLimit:  cfg.Commits(),
		DefaultToken: cfg.GitHubToken(),
	})
	if err != nil {
		profiler.Stop()
		return nil, err
	}

	svcOpts := cacheOptions(cfg)
	store, err := session.NewFileStore(cfg.SessionPath())
	if err != nil {
		// Logins still work, they just won't outlive the command
		log.Warn("session file unavailable", "error", err)
	} else {
		svcOpts = append(svcOpts, service.WithSessionStore(store))
	}

	return &app{
		opts:     opts,
		cfg:      cfg,
		client:   client,
		svc:      service.New(client, svcOpts...),
		useTUI:   useTUI,
		profiler: profiler,
		out:      out,
	}, nil
}

// cacheOptions sizes the service caches from cfg.
func cacheOptions(cfg *config.Config) []service.Option {
	userCap, userTTL := cfg.UserCacheLimits()
	repoCap, repoTTL := cfg.RepoCacheLimits()
	return []service.Option{
		service.WithUserCache(cache.NewUserCache(userCap, cache.WithMaxAge(userTTL))),
		service.WithRepoCache(cache.NewEntity[*model.Repo](repoCap,
			cache.WithMaxAge(repoTTL), cache.WithName("repos"))),
	}
}

// initLogging installs the logger. Logs are suppressed while the TUI runs
// to avoid interleaving with the display.
func initLogging(verbosity int, format string, useTUI bool) {
	var w io.Writer = os.Stderr
	if useTUI {
		w = io.Discard
	}
	if format == "json" {
		log.InitializeJSON(verbosity, w)
		return
	}
	log.Initialize(verbosity, w)
}

func (a *app) close() {
	a.svc.Close()
	if a.profiler != nil {
		a.profiler.Stop()
	}
}

// format returns the output format, the flag winning over config.
func (a *app) format() (output.Format, error) {
	format := a.opts.Format
	if format == "" && a.cfg != nil {
		format = a.cfg.Format()
	}
	switch output.Format(format) {
	case "", output.FormatText:
		return output.FormatText, nil
	case output.FormatJSON:
		return output.FormatJSON, nil
	default:
		return "", fmt.Errorf("invalid output format %q (must be text or json)", format)
	}
}

// progress is the TUI fed by a service observer for the length of one
// command. A nil *progress is valid and does nothing.
type progress struct {
	events   chan tui.Event
	done     chan error
	observer *tui.Observer
}

// startProgress starts the TUI showing tasks, or returns nil when the TUI
// is disabled.
func (a *app) startProgress(tasks []tui.Task) *progress {
	if !a.useTUI {
		return nil
	}

	p := &progress{
		events: make(chan tui.Event, 100),
		done:   make(chan error, 1),
	}
	p.observer = tui.NewObserver(p.events, tui.WithRateLimit(func() (bool, time.Time) {
		status := a.client.RateLimit()
		return status.Limited, status.ResetAt
	}))
	if _, err := a.svc.RegisterObserver(p.observer); err != nil {
		log.Warn("progress display unavailable", "error", err)
		return nil
	}

	go func() {
		p.done <- tui.Run(p.events, tui.WithTasks(tasks))
	}()
	return p
}

// track marks task as running until subject is delivered.
func (p *progress) track(subject string, task tui.TaskID) {
	if p == nil {
		return
	}
	p.observer.Track(subject, task)
}

// start marks a task that is not tied to a lookup as running.
func (p *progress) start(task tui.TaskID) {
	if p == nil {
		return
	}
	tui.SendTaskEvent(p.events, task, tui.StatusRunning)
}

// wait blocks until every request issued so far has been delivered, the
// user quits the TUI, or ctx is done.
func (a *app) wait(ctx context.Context, p *progress) error {
	drained := make(chan struct{})
	go func() {
		a.svc.Wait()
		close(drained)
	}()

	var quit <-chan error
	if p != nil {
		quit = p.done
	}

	select {
	case <-drained:
		if p == nil {
			return nil
		}
		a.svc.DeregisterObserver(p.observer)
		close(p.events)
		return <-p.done
	case err := <-quit:
		a.svc.DeregisterObserver(p.observer)
		if err == nil {
			err = tui.ErrCanceled
		}
		return err
	case <-ctx.Done():
		if p != nil {
			// Close delivers the cancellations before the channel goes away
			a.svc.Close()
			a.svc.DeregisterObserver(p.observer)
			close(p.events)
			<-p.done
		}
		return ctx.Err()
	}
}
