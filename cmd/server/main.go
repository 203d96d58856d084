package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/decrypto-backend/internal/config"
	"github.com/DoyleJ11/decrypto-backend/internal/httpapi"
	"github.com/DoyleJ11/decrypto-backend/internal/hub"
	"github.com/DoyleJ11/decrypto-backend/internal/identity"
	"github.com/DoyleJ11/decrypto-backend/internal/logging"
	"github.com/DoyleJ11/decrypto-backend/internal/store"
	"github.com/DoyleJ11/decrypto-backend/internal/words"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("load .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	src, err := words.LoadDir(cfg.WordsDir, cfg.WordWeights, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err != nil {
		return fmt.Errorf("load word lists: %w", err)
	}

	var st store.Store = store.NewMemory()
	var names identity.Directory = identity.NewMemoryDirectory()
	var closers []func() error
	defer func() {
		for _, c := range closers {
			err = multierr.Append(err, c())
		}
	}()

	if cfg.DatabaseURL != "" {
		db, err := store.OpenPostgres(cfg.DatabaseURL, store.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.DBConnMaxLifetimeSeconds) * time.Second,
		})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		closers = append(closers, sqlDB.Close)

		games := store.NewGorm(db)
		if err := games.Migrate(); err != nil {
			return err
		}
		st = games

		dir, err := identity.NewPostgresDirectory(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		closers = append(closers, func() error { dir.Close(); return nil })
		if err := dir.EnsureSchema(ctx); err != nil {
			return err
		}
		names = identity.NewCachingDirectory(dir)
		logger.Info("using postgres storage")
	} else {
		logger.Warn("DATABASE_URL not set, games are kept in memory only")
	}

	var auth identity.Authenticator = identity.DevAuthenticator{}
	var tokens *identity.JWTAuthenticator
	if cfg.AuthSecret != "" {
		tokens = identity.NewJWTAuthenticator(cfg.AuthSecret, cfg.TokenTTL)
		auth = tokens
	} else {
		logger.Warn("AUTH_SECRET not set, trusting username query parameters")
	}

	// The hub outlives the signal context so lobbies can flush after the
	// listener stops.
	h := hub.NewHub(context.Background(), hub.Config{
		Store:  st,
		Words:  src,
		Names:  names,
		Logger: logger,
	})

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:            h,
			Sources:        src,
			Auth:           auth,
			Tokens:         tokens,
			Names:          names,
			AllowedOrigins: cfg.AllowedOrigins,
			Logger:         logger,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return multierr.Combine(srv.Shutdown(sctx), h.Shutdown(sctx))
	})
	return g.Wait()
}
