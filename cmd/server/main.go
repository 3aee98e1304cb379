package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/edumanager/auth-server/auth"
	"github.com/edumanager/auth-server/internal/config"
	"github.com/edumanager/auth-server/registry"
	"github.com/edumanager/auth-server/server"
	"github.com/edumanager/auth-server/token"
	"github.com/edumanager/auth-server/token/keys"
	"github.com/edumanager/auth-server/users"
	fakeuserrepo "github.com/edumanager/auth-server/users/repofake"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
	log.Info().Msg("server stopped")
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	setupLogging(cfg)
	displayAppname(cfg.AppName)

	// Key material failures are fatal and never retried at request time.
	keyPair, err := keys.LoadKeyPairFromFiles(cfg.PrivateKeyPath, cfg.PublicKeyPath)
	if err != nil {
		return fmt.Errorf("key material: %w", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	store := registry.NewRedisStore(rdb)
	codec := token.NewCodec(token.NewKeyPairSigner(keyPair))

	issuer, err := token.NewIssuer(codec, store, cfg)
	if err != nil {
		return fmt.Errorf("token.NewIssuer: %w", err)
	}

	validator, err := token.NewValidator(codec, store)
	if err != nil {
		return fmt.Errorf("token.NewValidator: %w", err)
	}

	userRepo, err := seedUserRepo()
	if err != nil {
		return fmt.Errorf("seed users: %w", err)
	}

	sessions, err := auth.NewSessionService(auth.NewRepoVerifier(userRepo), userRepo, issuer, validator, store)
	if err != nil {
		return fmt.Errorf("auth.NewSessionService: %w", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.Addr(),
		Handler: server.New(sessions, validator, userRepo),
	}

	go listenAndServe(httpServer)
	waitForStopSignal()
	return shutdown(httpServer)
}

func listenAndServe(srv *http.Server) {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server.ListenAndServe")
	}
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func setupLogging(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// seedUserRepo builds the in-memory user store with a bootstrap admin. User
// persistence is an external concern; deployments wire a real UserRepo here.
func seedUserRepo() (users.UserRepo, error) {
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin1234!"
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}

	repo := fakeuserrepo.NewFakeUserRepo()
	if err := repo.Upsert(&users.User{
		Email:        "admin@edumanager.local",
		PasswordHash: hash,
		Name:         "Administrator",
		Role:         users.RoleAdmin,
		Active:       true,
		CreatedAt:    time.Now().UTC(),
	}); err != nil {
		return nil, err
	}

	return repo, nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
