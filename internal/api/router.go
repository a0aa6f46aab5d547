package api

import (
	"context"
	"net/http"
	"time"

	"judgeflow/internal/api/handler"
	"judgeflow/internal/app/service"
	"judgeflow/internal/common"
	"judgeflow/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// HealthChecker is implemented by the connection-lifecycle objects
// (Postgres, Redis) so readiness is probed, not read from a flag.
type HealthChecker interface {
	Health(ctx context.Context) error
}

func NewRouter(
	tokenAuth *security.TokenAuth,
	authService *service.AuthService,
	problemService *service.ProblemService,
	judgeService *service.JudgeService,
	healthChecks []HealthChecker,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(120 * time.Second))

	// Verifies the bearer token and puts claims in context; the
	// Authenticator middleware on protected routes enforces them.
	r.Use(jwtauth.Verifier(tokenAuth.Verifier()))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 3*time.Second)
		defer cancel()
		for _, hc := range healthChecks {
			if err := hc.Health(ctx); err != nil {
				common.RespondWithError(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		common.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		problemHandler := handler.NewProblemHandler(problemService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(judgeService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		leaderboardHandler := handler.NewLeaderboardHandler(judgeService)
		v1.Route("/leaderboard", leaderboardHandler.RegisterRoutes)
	})

	return r
}
