package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"social-lab/api"
	"social-lab/auth"
	"social-lab/moderation"
	"social-lab/observability"
	"social-lab/repositories"
	"social-lab/runtime/workers"
	"social-lab/search"
	"social-lab/services"
	"social-lab/sink"
	"social-lab/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern is preferred over calling os.Exit or panic directly because:
// 1. It ensures all 'defer' statements (like database cleanup) are executed before the program exits.
// 2. It improves testability by decoupling the initialization logic from the main entry point.
// 3. It provides a structured way to handle graceful shutdowns for the HTTP server.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := newLogger(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	//  Defer will be executed before run() returned anything to main()
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Search index & media store
	index, err := search.Open(config.IndexFilepath)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	media, err := storage.NewMediaStore(config.MediaRoot)
	if err != nil {
		return fmt.Errorf("media store setup failed: %w", err)
	}

	// 4. Moderation (optional, driven by the banned word list)
	var moderator *moderation.Moderator
	if words := splitWords(config.BannedWords); len(words) > 0 {
		censoredChar, err := config.CharacterRune()
		if err != nil {
			return err
		}
		m, err := moderation.NewModerator(words, censoredChar)
		if err != nil {
			return fmt.Errorf("moderator setup failed: %w", err)
		}
		moderator = &m
	}

	// 5. Repositories & services
	users := repositories.NewUserRepository(db)
	messages := repositories.NewMessageRepository(db, log)
	edges := repositories.NewFollowRepository(db)
	profiles := repositories.NewProfileRepository(db)
	notifications := repositories.NewNotificationRepository(db)
	events := sink.NewDiskSink(notifications, log)
	tokens := auth.NewTokenManager(config.SecretKey, config.TokenTTL)
	monitor := observability.NewMonitor()

	server := api.NewServer(
		services.NewAuthService(users, tokens),
		services.NewAccountService(users, messages, edges, profiles, notifications, log),
		services.NewMessagingService(messages, users, events, index, moderator, log),
		services.NewSocialService(edges, users, events, log),
		services.NewProfileService(profiles),
		media,
		tokens,
		monitor,
		log,
	)

	// 6. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 7. Background maintenance under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewGCWorker(db, log, 10*time.Minute),
		workers.NewHealthWorker(monitor, log, time.Minute),
	)
	go sup.Run(ctx)

	// 8. HTTP Server Setup
	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{
		Addr:              address,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Use an error channel to capture Serve() issues
	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 9. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	// 10. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	sup.Stop()
	log.Info("Program stopped cleanly")

	return nil
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

// splitWords parses the comma-separated banned word list from the env.
func splitWords(raw string) []string {
	var words []string
	for _, w := range strings.Split(raw, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
