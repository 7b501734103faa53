package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mhowell/story-poker/auth"
	"github.com/mhowell/story-poker/cliparse"
	"github.com/mhowell/story-poker/coordinator"
	"github.com/mhowell/story-poker/db"
	"github.com/mhowell/story-poker/middleware"
	"github.com/mhowell/story-poker/notify"
	"github.com/mhowell/story-poker/router"
	"github.com/mhowell/story-poker/store"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Wire components
	st := store.New(dbConn)
	hub := notify.NewHub(slog.Default())
	tokens := auth.NewSessionStore()
	coord := coordinator.New(st, hub, slog.Default())

	// Create router
	mux := router.NewRouter(st, coord, hub, tokens)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// Periodic sweep for expired voting countdowns
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.SweepInterval) * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				if err := coord.SweepExpiredVoting(); err != nil {
					slog.Error("expiry sweep failed", "error", err)
				}
			}
		}
	}()

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		close(sweepDone)
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
