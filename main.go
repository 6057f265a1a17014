package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/okulov/cipherpost/api"
	"github.com/okulov/cipherpost/cache/redis"
	"github.com/okulov/cipherpost/config"
	"github.com/okulov/cipherpost/store/githubapi"
)

func main() {
	ctx := context.Background()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	if cfg.GitHubToken == "" {
		log.Printf("GITHUB_TOKEN is not set; data operations will fail until it is configured")
	}

	blobStore := githubapi.NewGitHubBlobStore(ctx, cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubToken, cfg.GitHubAPIBase)

	inboxCache, err := redis.NewRedisInboxCache(ctx, cfg.DevMode, cfg.RedisEndpoint)
	if err != nil {
		log.Fatalf("Failed to create redis cache: %v", err)
	}

	shutdownCtx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	cipherPostAPI := api.NewCipherPostAPI(blobStore, inboxCache, shutdownCtx)

	router := mux.NewRouter()
	cipherPostAPI.RegisterRoutes(router, cfg.AllowedOrigin)

	server := &http.Server{Addr: ":" + cfg.Port, Handler: router}
	go func() {
		<-shutdownCtx.Done()
		log.Printf("Shutting down server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("Starting server on port: %s\n", cfg.Port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Server error: %v", err)
	}
}
