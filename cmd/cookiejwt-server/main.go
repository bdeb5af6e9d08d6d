package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/viant/cookiejwt/internal/config"
	"github.com/viant/cookiejwt/server"
	"github.com/viant/cookiejwt/server/auth"
	"github.com/viant/cookiejwt/server/token"
)

func main() {
	configPath := flag.String("config", "", "yaml configuration file")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err = run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	tokens, err := token.NewManager(cfg.Secret,
		token.WithIssuer(cfg.Issuer),
		token.WithAccessTTL(cfg.AccessTTL),
		token.WithRefreshTTL(cfg.RefreshTTL))
	if err != nil {
		return err
	}
	users := server.NewMemoryUsers(cfg.BcryptCost)
	for i := range cfg.Users {
		if err = users.Add(cfg.Users[i].User(), cfg.Users[i].Password); err != nil {
			return err
		}
	}
	grants, closer, err := grantStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closer()

	handler := server.New(tokens, users, grants, server.WithConfig(cfg.Server), server.WithLogger(log.Logger))
	srv := &http.Server{Addr: cfg.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	log.Info().Msgf("Server is running on %s (%d seeded users)", cfg.Addr, len(cfg.Users))
	if err = srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	log.Info().Msg("Server stopped")
	return nil
}

func grantStore(ctx context.Context, cfg *config.Config) (auth.Store, func(), error) {
	if cfg.Redis.Addr == "" {
		log.Info().Msg("Using in-memory refresh grant store")
		return auth.NewMemoryStore(cfg.GrantIdle, cfg.RefreshTTL, cfg.RotateGrace), func() {}, nil
	}
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	log.Info().Msgf("Using redis refresh grant store at %s", cfg.Redis.Addr)
	return auth.NewRedisStore(rdb, cfg.Redis.Prefix, cfg.GrantIdle, cfg.RefreshTTL, cfg.RotateGrace), func() { _ = rdb.Close() }, nil
}
