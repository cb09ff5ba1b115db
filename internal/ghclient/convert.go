package ghclient

import (
	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/codewatch/internal/model"
)

func toUserInfo(u *gh.User) *model.UserInfo {
	return &model.UserInfo{
		Login:       u.GetLogin(),
		Name:        u.GetName(),
		Company:     u.GetCompany(),
		Location:    u.GetLocation(),
		Email:       u.GetEmail(),
		Blog:        u.GetBlog(),
		Bio:         u.GetBio(),
		AvatarURL:   u.GetAvatarURL(),
		HTMLURL:     u.GetHTMLURL(),
		PublicRepos: u.GetPublicRepos(),
		Followers:   u.GetFollowers(),
		Following:   u.GetFollowing(),
		CreatedAt:   u.GetCreatedAt().Time,
	}
}

func toRepoInfo(r *gh.Repository) *model.RepoInfo {
	return &model.RepoInfo{
		Owner:         r.GetOwner().GetLogin(),
		Name:          r.GetName(),
		FullName:      r.GetFullName(),
		Description:   r.GetDescription(),
		Homepage:      r.GetHomepage(),
		HTMLURL:       r.GetHTMLURL(),
		Language:      r.GetLanguage(),
		DefaultBranch: r.GetDefaultBranch(),
		Private:       r.GetPrivate(),
		Fork:          r.GetFork(),
		Stars:         r.GetStargazersCount(),
		Forks:         r.GetForksCount(),
		OpenIssues:    r.GetOpenIssuesCount(),
		PushedAt:      r.GetPushedAt().Time,
		UpdatedAt:     r.GetUpdatedAt().Time,
	}
}

// toCommitInfo prefers the git author over the GitHub account, which is
// missing when the author email is not linked to a user.
func toCommitInfo(c *gh.RepositoryCommit) model.CommitInfo {
	author := c.GetCommit().GetAuthor()
	return model.CommitInfo{
		SHA:         c.GetSHA(),
		AuthorName:  author.GetName(),
		AuthorEmail: author.GetEmail(),
		AuthorLogin: c.GetAuthor().GetLogin(),
		AvatarURL:   c.GetAuthor().GetAvatarURL(),
		Message:     c.GetCommit().GetMessage(),
		HTMLURL:     c.GetHTMLURL(),
		Timestamp:   author.GetDate().Time,
	}
}

func toCommitInfos(commits []*gh.RepositoryCommit, limit int) []model.CommitInfo {
	if limit > 0 && len(commits) > limit {
		commits = commits[:limit]
	}
	out := make([]model.CommitInfo, 0, len(commits))
	for _, c := range commits {
		out = append(out, toCommitInfo(c))
	}
	return out
}

func toSearchResults(query string, users *gh.UsersSearchResult, repos *gh.RepositoriesSearchResult) *model.SearchResults {
	out := &model.SearchResults{
		Query:      query,
		Users:      make([]model.UserInfo, 0, len(users.Users)),
		Repos:      make([]model.RepoInfo, 0, len(repos.Repositories)),
		TotalUsers: users.GetTotal(),
		TotalRepos: repos.GetTotal(),
		Incomplete: users.GetIncompleteResults() || repos.GetIncompleteResults(),
	}
	for _, u := range users.Users {
		out.Users = append(out.Users, *toUserInfo(u))
	}
	for _, r := range repos.Repositories {
		out.Repos = append(out.Repos, *toRepoInfo(r))
	}
	return out
}
