package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"devcampfire/internal/github"
)

// requireGithubToken pulls the session's GitHub token out of the context.
// Sessions issued without one (or with a stale encryption key) cannot use
// the proxy.
func requireGithubToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	token := GithubToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no github token in session, sign in again"})
		return "", false
	}
	return token, true
}

// @Summary      GitHub connections
// @Description  The caller's followers, following, and mutuals from GitHub
// @Tags         github
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  github.Connections
// @Failure      401  {object}  map[string]string
// @Router       /github/connections [get]
func handleGithubConnections(gh *github.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := requireGithubToken(w, r)
		if !ok {
			return
		}
		conns, err := gh.GetConnections(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conns)
	}
}

// @Summary      GitHub profile lookup
// @Tags         github
// @Security     BearerAuth
// @Produce      json
// @Param        username path string true "GitHub username"
// @Success      200  {object}  github.Profile
// @Failure      404  {object}  map[string]string
// @Router       /github/connections/{username} [get]
func handleGithubUser(gh *github.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := requireGithubToken(w, r)
		if !ok {
			return
		}
		profile, err := gh.GetUser(r.Context(), token, chi.URLParam(r, "username"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// @Summary      GitHub repositories
// @Tags         github
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  github.Repo
// @Router       /github/repos [get]
func handleGithubRepos(gh *github.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := requireGithubToken(w, r)
		if !ok {
			return
		}
		repos, err := gh.GetRepos(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, repos)
	}
}

// @Summary      GitHub language stats
// @Description  Top languages across the caller's repositories
// @Tags         github
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  github.LanguageStats
// @Router       /github/languages [get]
func handleGithubLanguages(gh *github.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := requireGithubToken(w, r)
		if !ok {
			return
		}
		stats, err := gh.GetLanguages(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, stats)
	}
}
