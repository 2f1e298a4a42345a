package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"devcampfire/internal/config"
	"devcampfire/internal/domain"
	"devcampfire/internal/github"
	"devcampfire/internal/realtime"
	"devcampfire/internal/security"
	"devcampfire/internal/service"
	"devcampfire/internal/store/postgres"
	"devcampfire/internal/store/sqlite"

	_ "devcampfire/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

type repositories struct {
	users         domain.UserRepository
	conversations domain.ConversationRepository
	participants  domain.ParticipantRepository
	messages      domain.MessageRepository
	reads         domain.ReadRepository
	projects      domain.ProjectRepository
}

func newRepositories(cfg *config.Config, db *sql.DB) repositories {
	if cfg.UsePostgres() {
		return repositories{
			users:         postgres.NewUserRepo(db),
			conversations: postgres.NewConversationRepo(db),
			participants:  postgres.NewParticipantRepo(db),
			messages:      postgres.NewMessageRepo(db),
			reads:         postgres.NewReadRepo(db),
			projects:      postgres.NewProjectRepo(db),
		}
	}
	return repositories{
		users:         sqlite.NewUserRepo(db),
		conversations: sqlite.NewConversationRepo(db),
		participants:  sqlite.NewParticipantRepo(db),
		messages:      sqlite.NewMessageRepo(db),
		reads:         sqlite.NewReadRepo(db),
		projects:      sqlite.NewProjectRepo(db),
	}
}

// NewRouter constructs the main HTTP router and wires routes, services, and middleware.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	hub *realtime.Hub,
	publisher realtime.Publisher,
	tokenSvc *security.TokenService,
	encryptor *security.Encryptor,
) http.Handler {
	r := chi.NewRouter()

	// Middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	repos := newRepositories(cfg, db)

	// Services
	gh := github.NewClient()
	authSvc := service.NewAuthService(repos.users, tokenSvc, encryptor)
	userSvc := service.NewUserService(repos.users)
	convSvc := service.NewConversationService(repos.conversations, repos.participants, repos.messages, repos.reads, repos.users)
	msgSvc := service.NewMessageService(repos.messages, repos.conversations, repos.participants, repos.users, publisher)
	projSvc := service.NewProjectService(repos.projects, repos.conversations)

	oauthCfg := newOAuthConfig(cfg)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"message":"DevCampfire API","version":"1.0.0","docs":"/docs"}`))
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Swagger documentation
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// OAuth entry points (no auth required)
		r.Route("/auth/github", func(r chi.Router) {
			r.Get("/login", handleGithubLogin(oauthCfg))
			r.Get("/callback", handleGithubCallback(oauthCfg, gh, authSvc))
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokenSvc, repos.users, encryptor))

			r.Get("/auth/me", handleMe())
			r.Post("/auth/logout", handleLogout(authSvc))

			r.Route("/users", func(r chi.Router) {
				r.Post("/status", handleUpdateStatus(userSvc))
				r.Post("/online", handleOnlineUsers(userSvc))
				r.Post("/in-app", handleInAppUsers(userSvc))
				r.Get("/search", handleSearchUsers(userSvc))
				r.Get("/check/{username}", handleCheckUser(userSvc))
			})

			r.Route("/conversations", func(r chi.Router) {
				r.Post("/", handleResolveDM(convSvc))
				r.Get("/dms", handleListDMs(convSvc))
				r.Get("/rooms", handleListRooms(convSvc))
				r.Post("/rooms", handleCreateRoom(convSvc))
				r.Get("/{conversationID}/messages", handleListMessages(msgSvc))
				r.Post("/{conversationID}/messages", handleCreateMessage(msgSvc))
				r.Post("/{conversationID}/read", handleMarkRead(convSvc))
			})

			r.Route("/projects", func(r chi.Router) {
				r.Post("/", handleCreateProject(projSvc))
				r.Get("/", handleListProjects(projSvc))
				r.Get("/{projectID}", handleGetProject(projSvc))
			})

			r.Route("/github", func(r chi.Router) {
				r.Get("/connections", handleGithubConnections(gh))
				r.Get("/connections/{username}", handleGithubUser(gh))
				r.Get("/repos", handleGithubRepos(gh))
				r.Get("/languages", handleGithubLanguages(gh))
			})
		})
	})

	// WebSocket endpoint
	r.Get("/ws", realtime.MakeHandler(hub, tokenSvc, repos.users, repos.participants, cfg.CORSOrigins))

	return r
}
