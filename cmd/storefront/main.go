package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/fjod/go_cart/storefront/internal/apiclient"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/config"
	h "github.com/fjod/go_cart/storefront/internal/http"
	"github.com/fjod/go_cart/storefront/internal/service"
	"github.com/fjod/go_cart/storefront/internal/session"
	"github.com/fjod/go_cart/storefront/internal/storage"
	"github.com/fjod/go_cart/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(os.Stderr, cfg.LogLevel)
	zerolog.DefaultContextLogger = &log

	store, err := openStorage(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StorageDriver).Msg("failed to open storage")
	}
	if cfg.CacheRedisAddr != "" && cfg.StorageDriver != config.DriverMemory && cfg.StorageDriver != config.DriverRedis {
		cache, err := connectRedis(cfg.CacheRedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open storage cache")
		}
		store = storage.NewCachedStore(store, storage.NewRedisStore(cache, cfg.StorageNamespace+":cache", cfg.CacheTTL), log)
		log.Info().Str("addr", cfg.CacheRedisAddr).Dur("ttl", cfg.CacheTTL).Msg("storage cache enabled")
	}
	defer store.Close()
	log.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	client := apiclient.New(apiclient.Config{
		Origin:  cfg.StorefrontOrigin,
		Timeout: cfg.APITimeout,
		Retries: retriesSetting(cfg.APIRetries),
		Backoff: cfg.APIBackoff,
	}, log)

	sess := session.New(store, client, log)
	client.UseTokens(sess)

	cartStore := cart.NewStore(store, log)
	storefront := service.NewStorefront(client, sess, cartStore, store, cfg.PageSize, log)

	// Boot chains categories, session refresh and the first page; each may
	// use a full request budget.
	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 3*cfg.RequestTimeout)
	if err := storefront.Boot(bootCtx); err != nil {
		// The gateway still serves the cart and session; the grid loads on the next reload.
		log.Error().Err(err).Msg("initial catalog load failed")
	}
	cancelBoot()

	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(storefront, cfg.RequestTimeout, log),
		Products:       h.NewProductHandler(storefront, cfg.RequestTimeout, log),
		Checkout:       h.NewCheckoutHandler(storefront, cfg.RequestTimeout, log),
		Session:        h.NewSessionHandler(sess, cfg.RequestTimeout, log),
		Admin:          h.NewAdminHandler(client, sess, cfg.RequestTimeout, log),
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("backend", client.Base()).Msg("storefront gateway starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func openStorage(cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageDriver {
	case config.DriverSQLite, config.DriverPostgres:
		dsn := cfg.SQLitePath
		if cfg.StorageDriver == config.DriverPostgres {
			dsn = cfg.PostgresDSN
		}
		s, err := storage.NewSQLStore(cfg.StorageDriver, dsn)
		if err != nil {
			return nil, err
		}
		if err := s.RunMigrations(); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return s, nil

	case config.DriverRedis:
		client, err := connectRedis(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		return storage.NewRedisStore(client, cfg.StorageNamespace, 0), nil

	case config.DriverMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		db, err := storage.ConnectMongoDB(ctx, cfg.MongoURI, cfg.MongoDBName)
		if err != nil {
			return nil, err
		}
		return storage.NewMongoStore(db, ""), nil

	default:
		return storage.NewMemoryStore(), nil
	}
}

func connectRedis(addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

// retriesSetting maps API_RETRIES=0 to the client's "no retries" value.
func retriesSetting(n int) int {
	if n == 0 {
		return -1
	}
	return n
}
