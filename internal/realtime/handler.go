package realtime

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"devcampfire/internal/domain"
	"devcampfire/internal/security"
)

const conversationChannelPrefix = "conversation-"

type subscribeFrame struct {
	Action  string `json:"action"`
	Channel string `json:"channel"`
}

func normalizeAllowedOrigins(origins []string) map[string]struct{} {
	res := make(map[string]struct{}, len(origins))
	for _, origin := range origins {
		o := strings.TrimSpace(strings.ToLower(origin))
		if o != "" {
			res[o] = struct{}{}
		}
	}
	return res
}

func makeCheckOrigin(allowedOrigins []string) func(r *http.Request) bool {
	allowed := normalizeAllowedOrigins(allowedOrigins)
	if len(allowed) == 0 {
		return func(r *http.Request) bool {
			return false
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(strings.ToLower(r.Header.Get("Origin")))
		if origin == "" {
			return false
		}
		if _, ok := allowed[origin]; ok {
			return true
		}

		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return false
		}
		normalized := strings.ToLower(fmt.Sprintf("%s://%s", u.Scheme, u.Host))
		_, ok := allowed[normalized]
		return ok
	}
}

func extractTokenFromWSRequest(r *http.Request) string {
	authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		if token := strings.TrimSpace(authHeader[len("Bearer "):]); token != "" {
			return token
		}
	}

	// Browsers cannot set headers on WebSocket requests; the token rides in
	// the subprotocol list instead: Sec-WebSocket-Protocol: bearer, <token>
	protocolHeader := r.Header.Get("Sec-WebSocket-Protocol")
	if protocolHeader != "" {
		parts := strings.Split(protocolHeader, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		if len(parts) >= 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
			return parts[1]
		}
	}

	return ""
}

// MakeHandler returns the HTTP handler for the /ws endpoint.
//
// Clients authenticate with a bearer token (Authorization header or
// Sec-WebSocket-Protocol), then manage their channel subscriptions with
// frames of the form {"action":"subscribe","channel":"conversation-<id>"}.
// Subscribing to a conversation channel requires being a participant.
// The server pushes Envelope frames; it accepts no other client input.
func MakeHandler(
	hub *Hub,
	tokens *security.TokenService,
	users domain.UserRepository,
	participants domain.ParticipantRepository,
	allowedOrigins []string,
) http.HandlerFunc {
	checkOrigin := makeCheckOrigin(allowedOrigins)
	upgrader := websocket.Upgrader{
		CheckOrigin: checkOrigin,
		Subprotocols: []string{
			"bearer",
		},
	}

	return func(w http.ResponseWriter, r *http.Request) {
		if !checkOrigin(r) {
			http.Error(w, "origin not allowed", http.StatusForbidden)
			return
		}

		tokenStr := extractTokenFromWSRequest(r)
		if tokenStr == "" {
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := tokens.Parse(tokenStr)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			http.Error(w, "invalid token subject", http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		user, err := users.GetByUsername(ctx, sub)
		if err != nil || user == nil {
			http.Error(w, "user not found", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := users.SetStatus(ctx, user.ID, domain.StatusOnline); err != nil {
			log.Printf("ws: set online for %s: %v", user.GithubUsername, err)
		}
		defer func() {
			hub.Drop(conn)
			if err := users.SetStatus(context.Background(), user.ID, domain.StatusOffline); err != nil {
				log.Printf("ws: set offline for %s: %v", user.GithubUsername, err)
			}
		}()

		for {
			var frame subscribeFrame
			if err := conn.ReadJSON(&frame); err != nil {
				break
			}

			switch frame.Action {
			case "subscribe":
				convID, ok := strings.CutPrefix(frame.Channel, conversationChannelPrefix)
				if !ok || convID == "" {
					sendError(conn, "unknown channel")
					continue
				}
				isParticipant, err := participants.IsParticipant(ctx, convID, user.ID)
				if err != nil {
					log.Printf("ws: check participant: %v", err)
					sendError(conn, "subscription failed")
					continue
				}
				if !isParticipant {
					sendError(conn, "not a participant in this conversation")
					continue
				}
				hub.Subscribe(frame.Channel, conn)

			case "unsubscribe":
				hub.Unsubscribe(frame.Channel, conn)

			default:
				log.Printf("ws: unknown action %q from user %s", frame.Action, user.GithubUsername)
			}
		}
	}
}

func sendError(conn *websocket.Conn, msg string) {
	_ = conn.WriteJSON(map[string]any{
		"event":   "error",
		"message": msg,
	})
}
