// Package model contains domain types for the codewatch application.
// These types are independent of any external GitHub library.
package model

import "time"

// UserInfo is a snapshot of a GitHub user profile.
// Values stored in a cache are treated as immutable.
type UserInfo struct {
	Login       string    `json:"login"`
	Name        string    `json:"name,omitempty"`
	Company     string    `json:"company,omitempty"`
	Location    string    `json:"location,omitempty"`
	Email       string    `json:"email,omitempty"`
	Blog        string    `json:"blog,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	AvatarURL   string    `json:"avatarUrl,omitempty"`
	HTMLURL     string    `json:"htmlUrl,omitempty"`
	PublicRepos int       `json:"publicRepos"`
	Followers   int       `json:"followers"`
	Following   int       `json:"following"`
	CreatedAt   time.Time `json:"createdAt,omitempty"`
}

// DisplayName returns the user's full name, falling back to the login.
func (u *UserInfo) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Login
}
