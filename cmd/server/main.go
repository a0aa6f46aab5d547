package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"judgeflow/internal/api"
	"judgeflow/internal/app/service"
	"judgeflow/internal/common/security"
	"judgeflow/internal/domain/repository"
	"judgeflow/internal/judge"
	"judgeflow/internal/platform/cache"
	"judgeflow/internal/platform/config"
	"judgeflow/internal/platform/database"
	"judgeflow/internal/platform/logging"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logging.New()
	defer log.Sync()

	pg, err := database.Connect(cfg.DBConnStr)
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}
	defer pg.Close()
	log.Info("database connected", zap.String("host", cfg.DBHost))

	rds, err := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}
	defer rds.Close()
	log.Info("redis connected", zap.String("addr", cfg.RedisAddr))

	tokenAuth := security.NewTokenAuth(cfg.JWTKey, cfg.JWTExp)

	userRepo := repository.NewPgUserRepository(pg.DB)
	problemRepo := repository.NewPgProblemRepository(pg.DB)
	submissionRepo := repository.NewPgSubmissionRepository(pg.DB)
	resultCache := repository.NewResultCache(rds.Client, cfg.RunResultTTL)

	executor := judge.NewClient(judge.ClientConfig{
		BaseURL:              cfg.JudgeURL,
		AuthToken:            cfg.JudgeAuthToken,
		Timeout:              cfg.JudgeTimeout,
		Retries:              cfg.JudgeRetries,
		Backoff:              cfg.JudgeBackoff,
		DefaultTimeLimitMs:   cfg.DefaultTimeLimitMs,
		DefaultMemoryLimitKb: cfg.DefaultMemoryLimitKb,
	}, log)
	dispatcher := judge.NewDispatcher(executor, cfg.MaxConcurrentExecutions, cfg.DispatchOverhead, log)

	authService := service.NewAuthService(userRepo, tokenAuth)
	judgeService := service.NewJudgeService(problemRepo, submissionRepo, dispatcher, resultCache, log)
	problemService := service.NewProblemService(problemRepo, judgeService, pg.DB, log)

	router := api.NewRouter(tokenAuth, authService, problemService, judgeService, []api.HealthChecker{pg, rds})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server listen failed", zap.Error(err))
		}
	}()

	<-stop

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("server shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}
