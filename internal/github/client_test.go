package github_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devcampfire/internal/github"
)

func newFakeAPI(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token tok", r.Header.Get("Authorization"))
		body, ok := routes[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGetConnections(t *testing.T) {
	srv := newFakeAPI(t, map[string]string{
		"/user/followers": `[
			{"id": 1, "login": "alice", "avatar_url": "a"},
			{"id": 2, "login": "bob", "avatar_url": "b"}
		]`,
		"/user/following": `[
			{"id": 2, "login": "bob", "avatar_url": "b"},
			{"id": 3, "login": "carol", "avatar_url": "c"}
		]`,
	})
	c := github.NewClientWithBaseURL(srv.URL)

	conns, err := c.GetConnections(context.Background(), "tok")
	require.NoError(t, err)
	assert.Len(t, conns.Followers, 2)
	assert.Len(t, conns.Following, 2)
	require.Len(t, conns.Mutuals, 1)
	assert.Equal(t, "bob", conns.Mutuals[0].Username)
}

func TestGetUser(t *testing.T) {
	srv := newFakeAPI(t, map[string]string{
		"/users/alice": `{"id": 1, "login": "alice", "avatar_url": "a", "name": "Alice", "bio": null}`,
	})
	c := github.NewClientWithBaseURL(srv.URL)

	profile, err := c.GetUser(context.Background(), "tok", "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	require.NotNil(t, profile.Name)
	assert.Equal(t, "Alice", *profile.Name)
	assert.Nil(t, profile.Bio)
}

func TestGetLanguages(t *testing.T) {
	srv := newFakeAPI(t, map[string]string{
		"/user/repos": `[
			{"id": 1, "name": "a", "language": "Go"},
			{"id": 2, "name": "b", "language": "Go"},
			{"id": 3, "name": "c", "language": "Rust"},
			{"id": 4, "name": "d", "language": null},
			{"id": 5, "name": "e", "language": "TypeScript"},
			{"id": 6, "name": "f", "language": "Rust"}
		]`,
	})
	c := github.NewClientWithBaseURL(srv.URL)

	stats, err := c.GetLanguages(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.RepoCount)
	// Count descending, name ascending on ties.
	assert.Equal(t, []string{"Go", "Rust", "TypeScript"}, stats.TopLanguages)
}

func TestUpstreamErrorForwarded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	c := github.NewClientWithBaseURL(srv.URL)

	_, err := c.GetRepos(context.Background(), "tok")
	require.Error(t, err)
	var upstream *github.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusForbidden, upstream.StatusCode)
	assert.Equal(t, "repos", upstream.Resource)
}
