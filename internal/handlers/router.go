package handlers

import (
	"net/http"

	"swipe-match-backend/internal/middleware"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	User      *UserHandler
	Photo     *PhotoHandler
	Feed      *FeedHandler
	Match     *MatchHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
	// Object is mounted only when photos live in process memory.
	Object *ObjectHandler
}

// RouterOptions tunes the outer middleware
type RouterOptions struct {
	AllowedOrigins []string
	RequestLogging bool
}

// NewRouter builds the HTTP routes
func NewRouter(h Handlers, auth middleware.TokenValidator, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	if opts.RequestLogging {
		r.Use(chiMiddleware.Logger)
	}
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler)

	r.Get("/health", h.Health.Health)
	if h.Object != nil {
		r.Get("/photos/*", h.Object.GetObject)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/users", h.User.CreateUser)
		r.Get("/ws", h.WebSocket.HandleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(auth))

			r.Get("/me", h.User.GetMe)
			r.Put("/me", h.User.UpdateMe)
			r.Put("/me/push-token", h.User.UpdatePushToken)
			r.Get("/users/{user_id}", h.User.GetUser)

			r.Get("/photos", h.Photo.GetPhotos)
			r.Post("/photos", h.Photo.UploadPhoto)
			r.Delete("/photos/{photo_id}", h.Photo.DeletePhoto)

			r.Get("/feed", h.Feed.Deck)
			r.Get("/feed/next", h.Feed.Next)

			r.Post("/decisions", h.Match.RecordDecision)
			r.Get("/matches", h.Match.GetMatches)
			r.Delete("/matches/{match_id}", h.Match.EndMatch)
			r.Get("/likes/received", h.Match.GetLikesReceived)
		})
	})

	return r
}
