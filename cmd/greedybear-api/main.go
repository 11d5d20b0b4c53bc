package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/regulartim/GreedyBear/internal/adapter/handler"
	"github.com/regulartim/GreedyBear/internal/adapter/metrics"
	"github.com/regulartim/GreedyBear/internal/adapter/repository"
	"github.com/regulartim/GreedyBear/internal/config"
)

func main() {
	if err := godotenv.Load(); err == nil {
		logrus.Info("loaded configuration from .env")
	}
	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer dbPool.Close()

	if err := repository.EnsureSchema(ctx, dbPool); err != nil {
		log.WithError(err).Fatal("failed to apply database schema")
	}

	repo := repository.NewPostgresRepository(dbPool)
	registry := repository.NewHoneypotRegistry(dbPool)
	stats := repository.NewStatisticsSink(dbPool)

	metrics.Init()
	log.Info("prometheus metrics initialized")

	if cfg.SkipFeedValidation {
		log.Warn("feed item validation is disabled (SKIP_FEED_VALIDATION=true)")
	}

	feedHandler := handler.NewFeedHandler(repo, registry, stats, log, cfg.SkipFeedValidation)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/health", feedHandler.Health).Methods("GET")
	router.HandleFunc("/api/v1/feeds", feedHandler.Feeds).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.Use(loggingMiddleware(log))
	router.Use(authMiddleware(log, cfg.AuthToken))

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("GreedyBear API listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}
	log.Info("server stopped gracefully")
}

func loggingMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start).String(),
			}).Debug("request served")
		})
	}
}

func authMiddleware(log *logrus.Logger, expectedToken string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Health stays unauthenticated for probes.
			if r.URL.Path == "/api/v1/health" {
				next.ServeHTTP(w, r)
				return
			}

			// No configured token means an open development instance.
			if expectedToken == "" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("Authorization") != "Bearer "+expectedToken {
				log.WithField("path", r.URL.Path).Debug("rejected unauthenticated request")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
