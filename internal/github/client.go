// Package github is a thin adapter over the GitHub REST API, called with the
// signed-in user's OAuth token. Nothing is persisted; every request recomputes
// from the upstream API and upstream rate limits apply as-is.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

const defaultBaseURL = "https://api.github.com"

// UserLite is the trimmed profile shape used in connection lists.
type UserLite struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// Profile extends UserLite with public profile fields.
type Profile struct {
	UserLite
	Name *string `json:"name"`
	Bio  *string `json:"bio"`
}

// Connections holds the caller's social graph: first 100 followers and
// following, plus their intersection by login name.
type Connections struct {
	Followers []UserLite `json:"followers"`
	Following []UserLite `json:"following"`
	Mutuals   []UserLite `json:"mutuals"`
}

// Repo is the subset of repository fields the app surfaces.
type Repo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stargazers  int     `json:"stargazers_count"`
	HTMLURL     string  `json:"html_url"`
	Private     bool    `json:"private"`
}

// LanguageStats summarizes the caller's repositories by primary language.
type LanguageStats struct {
	TopLanguages []string `json:"top_languages"`
	RepoCount    int      `json:"repo_count"`
}

// UpstreamError carries a non-2xx status from the GitHub API so handlers can
// forward it instead of a generic 500.
type UpstreamError struct {
	StatusCode int
	Resource   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("github: fetch %s: status %d", e.Resource, e.StatusCode)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a fake API server.
func NewClientWithBaseURL(baseURL string) *Client {
	c := NewClient()
	c.baseURL = baseURL
	return c
}

func (c *Client) get(ctx context.Context, token, path, resource string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("github: create request: %w", err)
	}
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("github: fetch %s: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &UpstreamError{StatusCode: resp.StatusCode, Resource: resource}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decode %s: %w", resource, err)
	}
	return nil
}

// apiUser is the upstream user shape; only the fields the app uses.
type apiUser struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	AvatarURL string  `json:"avatar_url"`
	Name      *string `json:"name"`
	Bio       *string `json:"bio"`
}

func (u apiUser) lite() UserLite {
	return UserLite{ID: u.ID, Username: u.Login, Avatar: u.AvatarURL}
}

// GetConnections fetches the caller's followers and following (first 100 of
// each) and computes the mutual set by login-name intersection.
func (c *Client) GetConnections(ctx context.Context, token string) (*Connections, error) {
	var followers, following []apiUser
	if err := c.get(ctx, token, "/user/followers?per_page=100", "followers", &followers); err != nil {
		return nil, err
	}
	if err := c.get(ctx, token, "/user/following?per_page=100", "following", &following); err != nil {
		return nil, err
	}

	followingSet := make(map[string]struct{}, len(following))
	for _, u := range following {
		followingSet[u.Login] = struct{}{}
	}

	conns := &Connections{
		Followers: make([]UserLite, 0, len(followers)),
		Following: make([]UserLite, 0, len(following)),
		Mutuals:   []UserLite{},
	}
	for _, u := range followers {
		conns.Followers = append(conns.Followers, u.lite())
		if _, ok := followingSet[u.Login]; ok {
			conns.Mutuals = append(conns.Mutuals, u.lite())
		}
	}
	for _, u := range following {
		conns.Following = append(conns.Following, u.lite())
	}
	return conns, nil
}

// GetUser fetches a public profile by login name.
func (c *Client) GetUser(ctx context.Context, token, username string) (*Profile, error) {
	var u apiUser
	if err := c.get(ctx, token, "/users/"+username, "user", &u); err != nil {
		return nil, err
	}
	return &Profile{UserLite: u.lite(), Name: u.Name, Bio: u.Bio}, nil
}

// GetAuthenticatedUser fetches the profile of the token's owner.
func (c *Client) GetAuthenticatedUser(ctx context.Context, token string) (*Profile, error) {
	var u apiUser
	if err := c.get(ctx, token, "/user", "authenticated user", &u); err != nil {
		return nil, err
	}
	return &Profile{UserLite: u.lite(), Name: u.Name, Bio: u.Bio}, nil
}

type apiRepo struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	FullName    string  `json:"full_name"`
	Description *string `json:"description"`
	Language    *string `json:"language"`
	Stargazers  int     `json:"stargazers_count"`
	HTMLURL     string  `json:"html_url"`
	Private     bool    `json:"private"`
}

// GetRepos lists the caller's repositories (first 100).
func (c *Client) GetRepos(ctx context.Context, token string) ([]Repo, error) {
	var raw []apiRepo
	if err := c.get(ctx, token, "/user/repos?per_page=100", "repos", &raw); err != nil {
		return nil, err
	}
	repos := make([]Repo, len(raw))
	for i, r := range raw {
		repos[i] = Repo(r)
	}
	return repos, nil
}

// GetLanguages computes the top 7 primary languages across the caller's
// repositories, ordered by repo count.
func (c *Client) GetLanguages(ctx context.Context, token string) (*LanguageStats, error) {
	repos, err := c.GetRepos(ctx, token)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, r := range repos {
		if r.Language != nil && *r.Language != "" {
			counts[*r.Language]++
		}
	}

	langs := make([]string, 0, len(counts))
	for l := range counts {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool {
		if counts[langs[i]] != counts[langs[j]] {
			return counts[langs[i]] > counts[langs[j]]
		}
		return langs[i] < langs[j]
	})
	if len(langs) > 7 {
		langs = langs[:7]
	}

	return &LanguageStats{TopLanguages: langs, RepoCount: len(repos)}, nil
}
