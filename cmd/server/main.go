package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	stdhttp "net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/packvote/api/internal/adapters/handler/http"
	"github.com/packvote/api/internal/adapters/repository/postgres"
	"github.com/packvote/api/internal/core/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file loaded", "error", err)
	}

	db, err := sql.Open("postgres", dbConnString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	userRepo := postgres.NewUserRepository(db)
	authRepo := postgres.NewAuthRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	recRepo := postgres.NewRecommendationRepository(db)
	voteRepo := postgres.NewVoteRepository(db)
	tallyRepo := postgres.NewTallyRepository(db)

	authService := services.NewAuthService(userRepo, authRepo)
	userService := services.NewUserService(userRepo)
	tripService := services.NewTripService(tripRepo, recRepo)
	recService := services.NewRecommendationService(tripRepo, recRepo)
	voteService := services.NewVoteService(tripRepo, recRepo, voteRepo, tallyRepo)

	authHandler := http.NewAuthHandler(authService, os.Getenv("COOKIE_DOMAIN"), cookieSameSite())
	userHandler := http.NewUserHandler(userService)
	tripHandler := http.NewTripHandler(tripService)
	recHandler := http.NewRecommendationHandler(recService)
	voteHandler := http.NewVoteHandler(voteService)

	handler := http.NewHandler(authHandler, userHandler, tripHandler, recHandler, voteHandler, http.RouterConfig{
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: allowedOrigins(),
	})

	addr := "0.0.0.0:" + port()
	server := &stdhttp.Server{Addr: addr, Handler: handler}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	slog.Info("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err)
	}
}

func port() string {
	if p := os.Getenv("PORT"); p != "" {
		return p
	}
	return "8080"
}

func allowedOrigins() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return nil
	}
	origins := strings.Split(raw, ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return origins
}

func cookieSameSite() stdhttp.SameSite {
	switch strings.ToLower(os.Getenv("COOKIE_SAMESITE")) {
	case "strict":
		return stdhttp.SameSiteStrictMode
	case "none":
		return stdhttp.SameSiteNoneMode
	default:
		return stdhttp.SameSiteLaxMode
	}
}

func dbConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("POSTGRES_HOST"),
		os.Getenv("POSTGRES_PORT"),
		os.Getenv("POSTGRES_DB"),
	)
}
