package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devcampfire/internal/service"
)

type statusUpdateRequest struct {
	Status string `json:"status"`
}

type usernamesRequest struct {
	Usernames []string `json:"usernames"`
}

// @Summary      Update presence status
// @Description  Set the caller's status and bump last_active_at
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body statusUpdateRequest true "Status input"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Router       /users/status [post]
func handleUpdateStatus(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req statusUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		if err := userSvc.SetStatus(r.Context(), user.ID, req.Status); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": req.Status})
	}
}

// @Summary      Filter usernames to online users
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body usernamesRequest true "Usernames input"
// @Success      200  {array}  domain.User
// @Router       /users/online [post]
func handleOnlineUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usernamesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		users, err := userSvc.OnlineAmong(r.Context(), req.Usernames)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// @Summary      Filter usernames to registered users
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body usernamesRequest true "Usernames input"
// @Success      200  {array}  domain.User
// @Router       /users/in-app [post]
func handleInAppUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req usernamesRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		users, err := userSvc.InAppAmong(r.Context(), req.Usernames)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// @Summary      Search users
// @Description  Prefix search on GitHub usernames
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        q     query string true  "Username prefix"
// @Param        limit query int    false "Max results (default 5)"
// @Success      200  {array}  domain.User
// @Router       /users/search [get]
func handleSearchUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		users, err := userSvc.Search(r.Context(), q, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// @Summary      Check username registration
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        username path string true "GitHub username"
// @Success      200  {object}  map[string]bool
// @Router       /users/check/{username} [get]
func handleCheckUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		exists, err := userSvc.Exists(r.Context(), username)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"exists": exists})
	}
}
