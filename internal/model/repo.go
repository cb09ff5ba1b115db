package model

import (
	"fmt"
	"strings"
	"time"
)

// RepoInfo is a snapshot of repository metadata.
type RepoInfo struct {
	Owner         string    `json:"owner"`
	Name          string    `json:"name"`
	FullName      string    `json:"fullName"`
	Description   string    `json:"description,omitempty"`
	Homepage      string    `json:"homepage,omitempty"`
	HTMLURL       string    `json:"htmlUrl,omitempty"`
	Language      string    `json:"language,omitempty"`
	DefaultBranch string    `json:"defaultBranch,omitempty"`
	Private       bool      `json:"private"`
	Fork          bool      `json:"fork"`
	Stars         int       `json:"stars"`
	Forks         int       `json:"forks"`
	OpenIssues    int       `json:"openIssues"`
	PushedAt      time.Time `json:"pushedAt,omitempty"`
	UpdatedAt     time.Time `json:"updatedAt,omitempty"`
}

// CommitInfo describes a single commit. The core passes it through untouched.
type CommitInfo struct {
	SHA         string    `json:"sha"`
	AuthorName  string    `json:"authorName"`
	AuthorEmail string    `json:"authorEmail,omitempty"`
	AuthorLogin string    `json:"authorLogin,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	Message     string    `json:"message"`
	HTMLURL     string    `json:"htmlUrl,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Subject returns the first line of the commit message.
func (c CommitInfo) Subject() string {
	subject, _, _ := strings.Cut(c.Message, "\n")
	return strings.TrimSpace(subject)
}

// ShortSHA returns the abbreviated commit hash.
func (c CommitInfo) ShortSHA() string {
	if len(c.SHA) > 7 {
		return c.SHA[:7]
	}
	return c.SHA
}

// Repo is repository metadata together with its recent commits.
// It is fetched, cached and reported as one unit.
type Repo struct {
	Info    RepoInfo     `json:"info"`
	Commits []CommitInfo `json:"commits"`
}

// RepoKey identifies a repository by owner and name.
type RepoKey struct {
	Owner string
	Name  string
}

// String returns the "owner/name" form used as cache and flight key.
func (k RepoKey) String() string {
	return k.Owner + "/" + k.Name
}

// IsZero reports whether either part of the key is missing.
func (k RepoKey) IsZero() bool {
	return k.Owner == "" || k.Name == ""
}

// ParseRepoKey parses "owner/name".
func ParseRepoKey(s string) (RepoKey, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return RepoKey{}, fmt.Errorf("invalid repository %q: expected owner/name", s)
	}
	return RepoKey{Owner: owner, Name: name}, nil
}
