package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"devcampfire/internal/service"
)

type resolveDMRequest struct {
	TargetUsername string `json:"target_username"`
}

type createRoomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type markReadRequest struct {
	LastReadMessageID *string `json:"last_read_message_id"`
}

// @Summary      Resolve a DM conversation
// @Description  Return the DM with the target user, creating it if absent. 200 when it already existed, 201 when created.
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body resolveDMRequest true "Target user"
// @Success      200  {object}  map[string]string
// @Success      201  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /conversations [post]
func handleResolveDM(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req resolveDMRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		conv, created, err := convSvc.ResolveDirect(r.Context(), user, req.TargetUsername)
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, map[string]string{"conversation_id": conv.ID})
	}
}

// @Summary      List DM conversations
// @Description  The caller's DMs with participants, latest message, and unread count, most recent activity first
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max conversations"
// @Success      200  {array}  service.ConversationSummary
// @Router       /conversations/dms [get]
func handleListDMs(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		summaries, err := convSvc.ListDMs(r.Context(), user.ID, limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, summaries)
	}
}

// @Summary      List rooms
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.Conversation
// @Router       /conversations/rooms [get]
func handleListRooms(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := convSvc.ListRooms(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rooms)
	}
}

// @Summary      Create a room
// @Description  Create a named group conversation with the caller as admin
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body createRoomRequest true "Room input"
// @Success      201  {object}  domain.Conversation
// @Failure      400  {object}  map[string]string
// @Router       /conversations/rooms [post]
func handleCreateRoom(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req createRoomRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
			return
		}
		room, err := convSvc.CreateRoom(r.Context(), user, req.Name, req.Description)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	}
}

// @Summary      Mark conversation read
// @Description  Upsert the caller's read watermark
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        conversationID path string true "Conversation id"
// @Param        input body markReadRequest false "Optional last read message"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /conversations/{conversationID}/read [post]
func handleMarkRead(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		convID := chi.URLParam(r, "conversationID")
		var req markReadRequest
		// Body is optional; a missing or empty body means "read up to now".
		_ = json.NewDecoder(r.Body).Decode(&req)
		if err := convSvc.MarkRead(r.Context(), convID, user.ID, req.LastReadMessageID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
	}
}
