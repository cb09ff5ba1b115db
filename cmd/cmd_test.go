package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spiffcs/codewatch/config"
	"github.com/spiffcs/codewatch/internal/model"
	"github.com/spiffcs/codewatch/internal/output"
	"github.com/spiffcs/codewatch/internal/service"
)

// stubGateway serves users, repos and searches from maps. Missing users
// and repos are reported as not found; missing searches match nothing.
type stubGateway struct {
	users    map[string]*model.UserInfo
	repos    map[string]*model.Repo
	searches map[string]*model.SearchResults
	calls    atomic.Int32
}

func (g *stubGateway) ExchangeCredentials(_ context.Context, username, _ string) (string, error) {
	return "token-" + username, nil
}

func (g *stubGateway) FetchUser(_ context.Context, username, _ string) (*model.UserInfo, error) {
	g.calls.Add(1)
	if u, ok := g.users[username]; ok {
		return u, nil
	}
	return nil, model.NewError(model.KindNotFound, username, nil)
}

func (g *stubGateway) FetchRepo(_ context.Context, repo, username, _ string) (*model.RepoInfo, []model.CommitInfo, error) {
	g.calls.Add(1)
	key := model.RepoKey{Owner: username, Name: repo}
	if r, ok := g.repos[key.String()]; ok {
		return &r.Info, r.Commits, nil
	}
	return nil, nil, model.NewError(model.KindNotFound, key.String(), nil)
}

func (g *stubGateway) Search(_ context.Context, query, _ string) (*model.SearchResults, error) {
	g.calls.Add(1)
	if r, ok := g.searches[query]; ok {
		return r, nil
	}
	return &model.SearchResults{Query: query}, nil
}

func newTestApp(t *testing.T, gw *stubGateway, opts ...Option) (*app, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	a := &app{
		opts: NewOptions(opts...),
		cfg:  &config.Config{},
		svc:  service.New(gw),
		out:  &out,
	}
	t.Cleanup(a.close)
	return a, &out
}

func decodeResults(t *testing.T, out *bytes.Buffer) []map[string]any {
	t.Helper()
	var results []map[string]any
	if err := json.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, out.String())
	}
	return results
}

func TestNew(t *testing.T) {
	cmd := New()
	if cmd == nil {
		t.Fatal("New() returned nil")
	}
	if cmd.Use != "codewatch" {
		t.Errorf("expected Use to be 'codewatch', got %q", cmd.Use)
	}

	for _, name := range []string{"login", "logout", "whoami", "user", "repo", "search", "ratelimit", "config", "version"} {
		sub, _, err := cmd.Find([]string{name})
		if err != nil || sub == cmd {
			t.Errorf("expected subcommand %q", name)
		}
	}
}

func TestNewCmdVersion(t *testing.T) {
	SetVersionInfo("1.0.0", "abc123", "2024-01-01")

	cmd := NewCmdVersion()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.Run(cmd, nil)

	if !strings.Contains(out.String(), "codewatch 1.0.0") {
		t.Errorf("expected version line, got %q", out.String())
	}
	if !strings.Contains(out.String(), "abc123") {
		t.Errorf("expected commit, got %q", out.String())
	}
}

func TestProgressModeSet(t *testing.T) {
	tests := []struct {
		input   string
		want    ProgressMode
		wantErr bool
	}{
		{"always", ProgressAlways, false},
		{"NEVER", ProgressNever, false},
		{" auto ", ProgressAuto, false},
		{"true", ProgressAlways, false},
		{"1", ProgressAlways, false},
		{"false", ProgressNever, false},
		{"yes", "", true},
		{"sometimes", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var m ProgressMode
			err := m.Set(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Set(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && m != tt.want {
				t.Errorf("expected %q, got %q", tt.want, m)
			}
		})
	}
}

func TestProgressFlag(t *testing.T) {
	tests := []struct {
		args []string
		want ProgressMode
	}{
		{nil, ""},
		{[]string{"--progress"}, ProgressAlways},
		{[]string{"--progress=never"}, ProgressNever},
		{[]string{"--progress=false"}, ProgressNever},
	}

	for _, tt := range tests {
		opts := NewOptions()
		cmd := &cobra.Command{Use: "lookup"}
		cmd.Flags().Var(&opts.Progress, "progress", "")
		cmd.Flags().Lookup("progress").NoOptDefVal = string(ProgressAlways)

		if err := cmd.ParseFlags(tt.args); err != nil {
			t.Fatalf("ParseFlags(%v) error = %v", tt.args, err)
		}
		if opts.Progress != tt.want {
			t.Errorf("ParseFlags(%v) = %q, want %q", tt.args, opts.Progress, tt.want)
		}
	}

	flag := New().PersistentFlags().Lookup("progress")
	if flag == nil || flag.DefValue != string(ProgressAuto) {
		t.Errorf("expected --progress defaulting to auto, got %+v", flag)
	}
}

func TestShowProgress(t *testing.T) {
	if !showProgress(NewOptions(WithProgress(ProgressAlways))) {
		t.Error("expected progress with always")
	}
	if showProgress(NewOptions(WithProgress(ProgressNever))) {
		t.Error("expected no progress with never")
	}
	// Verbose logging wins so logs stay visible
	if showProgress(NewOptions(WithProgress(ProgressAlways), WithVerbosity(1))) {
		t.Error("expected no progress with -v")
	}
}

func TestParseRepoArgs(t *testing.T) {
	keys, err := parseRepoArgs([]string{"octocat/hello-world", "spiffcs/codewatch"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keys) != 2 || keys[1].Owner != "spiffcs" || keys[1].Name != "codewatch" {
		t.Errorf("unexpected keys %+v", keys)
	}

	for _, bad := range []string{"octocat", "/hello", "a/b/c", ""} {
		if _, err := parseRepoArgs([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestAppFormat(t *testing.T) {
	tests := []struct {
		flag    string
		cfg     string
		want    output.Format
		wantErr bool
	}{
		{"", "", output.FormatText, false},
		{"", "json", output.FormatJSON, false},
		{"text", "json", output.FormatText, false},
		{"table", "", "", true},
	}

	for _, tt := range tests {
		a := &app{opts: NewOptions(WithFormat(tt.flag)), cfg: &config.Config{DefaultFormat: tt.cfg}}
		got, err := a.format()
		if (err != nil) != tt.wantErr {
			t.Errorf("format(%q, %q) error = %v", tt.flag, tt.cfg, err)
			continue
		}
		if got != tt.want {
			t.Errorf("format(%q, %q) = %q, want %q", tt.flag, tt.cfg, got, tt.want)
		}
	}
}

func TestRunLookupsInOrder(t *testing.T) {
	gw := &stubGateway{users: map[string]*model.UserInfo{
		"octocat": {Login: "octocat", Name: "The Octocat"},
		"hubot":   {Login: "hubot"},
	}}
	a, out := newTestApp(t, gw, WithFormat("json"))

	lookups := []lookup{userLookup("hubot"), userLookup("octocat"), userLookup("hubot")}
	if err := runLookups(context.Background(), a, lookups); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := decodeResults(t, out)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"hubot", "octocat", "hubot"} {
		if results[i]["subject"] != want {
			t.Errorf("result %d: expected subject %q, got %v", i, want, results[i]["subject"])
		}
	}
	// The repeated user is served by the first request or the cache
	if got := gw.calls.Load(); got != 2 {
		t.Errorf("expected 2 remote calls, got %d", got)
	}
}

func TestRunLookupsFailure(t *testing.T) {
	gw := &stubGateway{repos: map[string]*model.Repo{
		"octocat/hello-world": {
			Info:    model.RepoInfo{Owner: "octocat", Name: "hello-world"},
			Commits: []model.CommitInfo{{SHA: "abc", Message: "first"}},
		},
	}}
	a, out := newTestApp(t, gw, WithFormat("json"))

	lookups := []lookup{
		repoLookup(model.RepoKey{Owner: "octocat", Name: "hello-world"}),
		repoLookup(model.RepoKey{Owner: "octocat", Name: "missing"}),
	}
	err := runLookups(context.Background(), a, lookups)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 lookups failed") {
		t.Fatalf("expected partial failure, got %v", err)
	}

	results := decodeResults(t, out)
	if results[0]["repo"] == nil {
		t.Error("expected repo in first result")
	}
	if results[1]["kind"] != model.KindNotFound.String() {
		t.Errorf("expected not found kind, got %v", results[1]["kind"])
	}
}

func TestRunLookupsStats(t *testing.T) {
	gw := &stubGateway{users: map[string]*model.UserInfo{"octocat": {Login: "octocat"}}}
	a, out := newTestApp(t, gw, WithStats(true))

	if err := runLookups(context.Background(), a, []lookup{userLookup("octocat")}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), "Cache:") {
		t.Errorf("expected cache statistics, got %q", out.String())
	}
}

func TestRunSearchLookups(t *testing.T) {
	gw := &stubGateway{searches: map[string]*model.SearchResults{
		"octo": {
			Query:      "octo",
			Users:      []model.UserInfo{{Login: "octocat"}},
			TotalUsers: 1,
		},
	}}
	a, out := newTestApp(t, gw, WithFormat("json"))

	lookups := []lookup{searchLookup("octo"), searchLookup("nothing-matches"), searchLookup("OCTO")}
	if err := runLookups(context.Background(), a, lookups); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	results := decodeResults(t, out)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, want := range []string{"octo", "nothing-matches", "OCTO"} {
		if results[i]["subject"] != want {
			t.Errorf("result %d: expected subject %q, got %v", i, want, results[i]["subject"])
		}
		if results[i]["search"] == nil {
			t.Errorf("result %d: expected search results, got %v", i, results[i])
		}
	}
	// Queries differing only in case share one search
	if got := gw.calls.Load(); got != 2 {
		t.Errorf("expected 2 remote calls, got %d", got)
	}
}

func TestCollectorMissingResult(t *testing.T) {
	c := newCollector()
	if r := c.result("nobody"); !r.Failed() {
		t.Error("expected a failed result for an unknown subject")
	}
}

func TestPrintConfig(t *testing.T) {
	var out bytes.Buffer
	if err := printConfig(&out, config.DefaultConfig(), "json"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out.String(), `"commit_limit"`) {
		t.Errorf("expected commit_limit in JSON, got %q", out.String())
	}

	if err := printConfig(&out, config.DefaultConfig(), "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
}
