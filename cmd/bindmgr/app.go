package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/haukened/bindmgr/internal/dns/common/clock"
	"github.com/haukened/bindmgr/internal/dns/common/log"
	"github.com/haukened/bindmgr/internal/dns/config"
	"github.com/haukened/bindmgr/internal/dns/gateways/probe"
	"github.com/haukened/bindmgr/internal/dns/gateways/reload"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/bloom"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/bolt"
	"github.com/haukened/bindmgr/internal/dns/repos/blocklist/lru"
	"github.com/haukened/bindmgr/internal/dns/repos/namedconf"
	"github.com/haukened/bindmgr/internal/dns/repos/nullroute"
	"github.com/haukened/bindmgr/internal/dns/repos/rpz"
	"github.com/haukened/bindmgr/internal/dns/repos/zonecache"
	"github.com/haukened/bindmgr/internal/dns/repos/zonefile"
	"github.com/haukened/bindmgr/internal/dns/services/manager"
)

// reloadRunner executes rndc and killall. Nil uses os/exec; tests replace it.
var reloadRunner reload.RunFunc

// Application holds all the components behind the manager.
type Application struct {
	config    *config.AppConfig
	manager   *manager.Manager
	blocklist *blocklist.Repository
	zoneCache *zonecache.ZoneCache // nil when disabled
	logger    log.Logger
}

// buildApplication constructs all components and wires them together.
func buildApplication(cfg *config.AppConfig) (*Application, error) {
	// one clock so serials and blocklist timestamps agree
	clk := clock.RealClock{}
	logger := log.GetLogger()

	zoneCache, err := buildZoneCache(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create zone cache: %w", err)
	}
	var recordCache zonefile.RecordCache
	if zoneCache != nil {
		recordCache = zoneCache
	}

	engine, err := zonefile.New(zonefile.Options{
		Dir:    cfg.Named.Zones,
		Clock:  clk,
		Cache:  recordCache,
		Logger: log.With(logger, map[string]any{"component": "zonefile"}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create zone file engine: %w", err)
	}

	policy, err := rpz.New(rpz.Options{
		Files:  engine,
		Clock:  clk,
		Logger: log.With(logger, map[string]any{"component": "rpz"}),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create policy zone generator: %w", err)
	}

	routes, err := nullroute.New(engine, log.With(logger, map[string]any{"component": "nullroute"}))
	if err != nil {
		return nil, fmt.Errorf("failed to create null router: %w", err)
	}

	blocked, err := buildBlocklist(cfg, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build blocklist: %w", err)
	}

	prober := probe.New(probe.Options{Timeout: cfg.Reload.Status})
	gateway := reload.New(reload.Options{
		UseRndc:       cfg.Reload.Rndc,
		RndcPath:      cfg.Reload.Path,
		ReloadTimeout: cfg.Reload.Timeout,
		StatusTimeout: cfg.Reload.Status,
		Probe:         prober,
		ProbeAddr:     cfg.Reload.Probe,
		Run:           reloadRunner,
		Logger:        log.With(logger, map[string]any{"component": "reload"}),
	})

	mgr, err := manager.New(manager.Options{
		Zones:         engine,
		Policy:        policy,
		NullRoutes:    routes,
		Blocklist:     blocked,
		Reload:        reload.NewPending(gateway),
		Probe:         prober,
		Local:         namedconf.File{Path: cfg.Named.Local, AllowMissing: true},
		ServerOptions: namedconf.File{Path: cfg.Named.Options},
		Main:          namedconf.File{Path: cfg.Named.Conf},
		Clock:         clk,
		Logger:        log.With(logger, map[string]any{"component": "manager"}),
	})
	if err != nil {
		_ = blocked.Close()
		return nil, fmt.Errorf("failed to create manager: %w", err)
	}

	log.Info(map[string]any{
		"zones":   cfg.Named.Zones,
		"rndc":    cfg.Reload.Rndc,
		"domains": blocked.Stats().Store.Domains,
	}, "Manager initialized")

	return &Application{
		config:    cfg,
		manager:   mgr,
		blocklist: blocked,
		zoneCache: zoneCache,
		logger:    logger,
	}, nil
}

func buildZoneCache(cfg *config.AppConfig) (*zonecache.ZoneCache, error) {
	if cfg.Cache.Size <= 0 {
		log.Info(map[string]any{"disabled": true}, "Zone record cache disabled")
		return nil, nil
	}
	zc, err := zonecache.New(cfg.Cache.Size)
	if err != nil {
		return nil, err
	}
	log.Info(map[string]any{"type": "LRU", "size": cfg.Cache.Size}, "Zone record cache configured")
	return zc, nil
}

// buildBlocklist opens the bolt store and layers the bloom filter and decision
// cache over it.
func buildBlocklist(cfg *config.AppConfig, clk clock.Clock, logger log.Logger) (*blocklist.Repository, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Blocklist.DB), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create blocklist directory: %w", err)
	}
	store, err := bolt.New(cfg.Blocklist.DB, clk)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New(cfg.Blocklist.Cache)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	repo, err := blocklist.NewRepository(blocklist.Options{
		Store:   store,
		Cache:   cache,
		Factory: bloom.NewFactory(),
		Logger:  log.With(logger, map[string]any{"component": "blocklist"}),
	})
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	return repo, nil
}

// Close releases the blocklist database.
func (app *Application) Close() error {
	if app.blocklist == nil {
		return nil
	}
	return app.blocklist.Close()
}
