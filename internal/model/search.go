package model

// SearchResults holds the users and repositories matching a query. Users
// and Repos are the first page of each; the totals count every match.
type SearchResults struct {
	Query      string     `json:"query"`
	Users      []UserInfo `json:"users"`
	Repos      []RepoInfo `json:"repos"`
	TotalUsers int        `json:"totalUsers"`
	TotalRepos int        `json:"totalRepos"`
	// Incomplete is set when GitHub timed out before finding every match.
	Incomplete bool `json:"incomplete,omitempty"`
}

// Empty reports whether nothing matched.
func (r *SearchResults) Empty() bool {
	return len(r.Users) == 0 && len(r.Repos) == 0
}
