package infrastructure

import (
	"context"
	"log/slog"

	"vendora/internal/config"
	"vendora/internal/provider"
	"vendora/internal/repository"
	"vendora/internal/service"
	transportHTTP "vendora/internal/transport/http"
	transportNATS "vendora/internal/transport/nats"
	"vendora/internal/worker"
)

// storeAdapter narrows the concrete session type to the service interface.
type storeAdapter struct {
	*repository.Store
}

func (a storeAdapter) NewSession() service.Session {
	return a.Store.NewSession()
}

// Bootstrap initialises all dependencies from config and wires up the
// application. Returns the App, a cleanup function, or an error.
func Bootstrap(ctx context.Context) (*App, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}

	db, err := connectPostgres(cfg.DSN())
	if err != nil {
		return nil, nil, err
	}

	var cleanupFns []func()
	cleanupFns = append(cleanupFns, db.Close)

	rdb, err := connectRedis(cfg.RedisAddr())
	if err != nil {
		return nil, runCleanup(cleanupFns), err
	}
	cleanupFns = append(cleanupFns, func() { _ = rdb.Close() })

	nc, err := connectNats(cfg.NatsAddr())
	if err != nil {
		return nil, runCleanup(cleanupFns), err
	}
	cleanupFns = append(cleanupFns, nc.Close)

	store := repository.NewStore(db)
	gate := repository.NewSettingsCache(rdb, db)
	pins := repository.NewPinGuard(rdb)
	bus := transportNATS.NewBus(nc)

	registry := buildRegistry(cfg)
	svc := service.New(storeAdapter{store}, gate, pins, bus, registry, provider.DefaultLadder())

	servers := []Server{
		transportNATS.NewHandler(svc, nc),
		worker.NewPurchaseWorker(svc, nc),
	}
	if addr, apiErr := cfg.ApiAddr(); apiErr == nil {
		servers = append(servers, transportHTTP.NewServer(addr, svc, cfg.JWTSecret))
	} else {
		slog.Info("HTTP API disabled", "reason", apiErr)
	}

	return NewApp(servers), runCleanup(cleanupFns), nil
}

// buildRegistry wires every vendor with configured credentials. Missing
// vendors only degrade the fallback ladder, they don't block startup.
func buildRegistry(cfg *config.Config) provider.Registry {
	registry := provider.Registry{}
	if cfg.DatastationURL != "" {
		registry.Add(provider.NewDatastation(cfg.DatastationURL, cfg.DatastationToken))
	}
	if cfg.SmePlugURL != "" {
		registry.Add(provider.NewSmePlug(cfg.SmePlugURL, cfg.SmePlugToken))
	}
	if cfg.A4BDataURL != "" {
		registry.Add(provider.NewA4BData(cfg.A4BDataURL, cfg.A4BDataToken))
	}
	if len(registry) == 0 {
		slog.Warn("no vendor gateways configured, purchases will fail")
	}
	return registry
}

// runCleanup returns a single function that calls all cleanup functions in
// reverse order.
func runCleanup(fns []func()) func() {
	return func() {
		for i := len(fns) - 1; i >= 0; i-- {
			fns[i]()
		}
	}
}
