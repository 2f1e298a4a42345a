package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"devcampfire/internal/domain"
	"devcampfire/internal/service"
)

type projectCreateRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Type        string   `json:"type"`
	RepoURL     string   `json:"repo_url"`
	Languages   []string `json:"languages"`
}

// @Summary      Create a project
// @Description  Create a project together with its linked group conversation
// @Tags         projects
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body projectCreateRequest true "Project input"
// @Success      201  {object}  domain.Project
// @Failure      400  {object}  map[string]string
// @Router       /projects [post]
func handleCreateProject(projSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req projectCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		project, err := projSvc.Create(r.Context(), user, service.CreateProjectInput{
			Name:        req.Name,
			Description: req.Description,
			Type:        req.Type,
			RepoURL:     req.RepoURL,
			Languages:   req.Languages,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, project)
	}
}

// @Summary      Get a project
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Param        projectID path string true "Project id"
// @Success      200  {object}  domain.Project
// @Failure      404  {object}  map[string]string
// @Router       /projects/{projectID} [get]
func handleGetProject(projSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "projectID")
		project, err := projSvc.GetByID(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if project == nil {
			writeError(w, fmt.Errorf("%w: project %s", domain.ErrNotFound, id))
			return
		}
		writeJSON(w, http.StatusOK, project)
	}
}

// @Summary      List projects
// @Tags         projects
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.Project
// @Router       /projects [get]
func handleListProjects(projSvc *service.ProjectService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		projects, err := projSvc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, projects)
	}
}
