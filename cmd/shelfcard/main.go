package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/shelfcard/app/cfg"
	"github.com/lysyi3m/shelfcard/app/database"
	"github.com/lysyi3m/shelfcard/app/document"
	"github.com/lysyi3m/shelfcard/app/feed"
	"github.com/lysyi3m/shelfcard/app/progress"
	"github.com/lysyi3m/shelfcard/app/render"
	"github.com/lysyi3m/shelfcard/app/scrape"
	"github.com/lysyi3m/shelfcard/app/tasks"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}
	if appCfg == nil {
		// Help was shown
		return 0
	}
	if appCfg.ShowVersion {
		fmt.Println(appCfg.Version)
		return 0
	}

	if err := cfg.ApplyTimezone(appCfg.Timezone); err != nil {
		slog.Error("Failed to load timezone", "timezone", appCfg.Timezone, "error", err)
		return 1
	}

	slog.SetDefault(newLogger(os.Stderr, appCfg.Debug))

	slog.Info("Starting shelfcard",
		"version", appCfg.Version,
		"document", appCfg.Document,
		"cache_driver", appCfg.CacheDriver,
		"dry_run", appCfg.DryRun)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(appCfg)
	if err != nil {
		slog.Error("Failed to open progress cache", "driver", appCfg.CacheDriver, "path", appCfg.CachePath, "error", err)
		return 1
	}
	defer closeStore()

	httpClient := &http.Client{}
	scraper := scrape.NewScraper(httpClient, scrape.NewRegexExtractor(appCfg.MaxPages), appCfg.UserAgent, !appCfg.IgnoreRobots)
	resolver := progress.NewResolver(store, scraper, appCfg.OverrideMarker, appCfg.BookURLTemplate)

	task := tasks.NewUpdateDocumentTask(appCfg,
		feed.NewClient(httpClient, appCfg.UserAgent),
		feed.NewParser(),
		resolver,
		render.NewRenderer(),
		document.NewPatcher(),
		os.Stdout)

	if err := tasks.Run(ctx, task); err != nil {
		return 1
	}

	return 0
}

// openStore selects the progress cache backend. The returned func releases
// it.
func openStore(c *cfg.Cfg) (progress.Store, func(), error) {
	switch c.CacheDriver {
	case cfg.CacheDriverSQLite:
		db, err := database.NewConnection(c.CachePath)
		if err != nil {
			return nil, nil, err
		}

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		slog.Debug("Database migrations applied", "version", version, "dirty", dirty)

		return database.NewProgressRepository(db), func() { db.Close() }, nil
	default:
		return progress.NewFileStore(c.CachePath), func() {}, nil
	}
}
