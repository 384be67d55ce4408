package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gorilla/websocket"
	"github.com/joho/godotenv"

	"github.com/LucaMelis0/secure-chat/auth"
	"github.com/LucaMelis0/secure-chat/hub"
	"github.com/LucaMelis0/secure-chat/protocol"
	"github.com/LucaMelis0/secure-chat/repositories"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run wires every component and manages the server lifecycle, so that
// deferred cleanup (the user store in particular) always executes before
// the process exits.
func run() error {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	setupLogger(cfg.LogLevel)

	db, err := badger.Open(badger.DefaultOptions(cfg.BadgerFilepath).WithLoggingLevel(badger.ERROR))
	if err != nil {
		return fmt.Errorf("open user store: %w", err)
	}
	defer func() {
		slog.Info("closing user store")
		_ = db.Close()
	}()

	users := repositories.NewUserRepository(db)
	authService := auth.NewService(users)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	codec := protocol.NewCodec(protocol.NewClock(cfg.UTCOffsetHours), cfg.StrictDecode)
	manager := hub.New(codec)
	handler := protocol.NewHandler(manager, codec)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", loginHandler(authService, tokens, manager))
	mux.HandleFunc("POST /register", registerHandler(authService))
	mux.HandleFunc("GET /ws/{client_id}", wsHandler(manager, handler, tokens, cfg.SendBufferSize))
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /stats", statsHandler(manager))

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: mux,
	}

	serverErr := make(chan error, 1)
	go func() {
		useTLS := cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""
		slog.Info("server starting", "addr", server.Addr, "tls", useTLS)

		var err error
		if useTLS {
			err = server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = server.ListenAndServe()
		}
		if !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-quit:
	}

	slog.Info("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(ctx)
}

func setupLogger(level string) {
	logLevel := slog.LevelInfo
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}
