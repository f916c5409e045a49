package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nebula-cli/internal/config"
	"nebula-cli/internal/logger"
	"nebula-cli/internal/stubapi"
)

// nebula-stub is a self-contained backend double with seeded accounts
// and events, good enough to drive the client end to end in dev.
func main() {
	_ = godotenv.Load() // Loads .env file if present

	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Close()

	srv := stubapi.NewServer(cfg.Stub.JWTSecret, log,
		stubapi.WithUploadDir(cfg.Stub.UploadDir),
		stubapi.WithPageSize(cfg.Stub.PageSize),
	)

	server := &http.Server{
		Addr:    cfg.Stub.Port,
		Handler: srv.Router(),
	}

	go func() {
		log.Info("SERVER", "🚀 Stub API on "+cfg.Stub.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("SERVER", "HTTP error: "+err.Error())
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("SERVER", "✅ Stub API shutdown complete")
}
