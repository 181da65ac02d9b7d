package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins []string
}

func NewHandler(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	tripHandler *TripHandler,
	recHandler *RecommendationHandler,
	voteHandler *VoteHandler,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
			r.Post("/logout", authHandler.Logout)
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(cfg.JWTSecret))

			r.Get("/users/me", userHandler.GetMe)

			r.Post("/join/{inviteCode}", tripHandler.JoinTrip)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", tripHandler.CreateTrip)
				r.Get("/", tripHandler.ListTrips)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", tripHandler.GetTrip)
					r.Put("/", tripHandler.UpdateTrip)
					r.Post("/cancel", tripHandler.CancelTrip)
					r.Post("/voting/open", tripHandler.OpenVoting)
					r.Get("/participants", tripHandler.ListParticipants)

					r.Route("/recommendations", func(r chi.Router) {
						r.Post("/", recHandler.AddRecommendation)
						r.Get("/", recHandler.ListRecommendations)
						r.Put("/{recID}", recHandler.UpdateRecommendation)
					})

					r.Route("/votes", func(r chi.Router) {
						r.Post("/", voteHandler.CastVotes)
						r.Get("/", voteHandler.GetAllVotes)
						r.Delete("/", voteHandler.WithdrawVotes)
						r.Get("/my-votes", voteHandler.GetMyVotes)
						r.Get("/summary", voteHandler.GetVoteSummary)
						r.Post("/skip", voteHandler.SkipVoting)
						r.Post("/reset", voteHandler.ResetAllVotes)
						r.Delete("/{userID}", voteHandler.ResetUserVotes)
						r.Post("/finalize", voteHandler.FinalizeVoting)
						r.Get("/results", voteHandler.GetResults)
					})
				})
			})
		})
	})

	return r
}
