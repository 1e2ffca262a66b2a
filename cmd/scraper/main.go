package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/catalogops/catalog-scraper/internal/browser"
	"github.com/catalogops/catalog-scraper/internal/catalog"
	"github.com/catalogops/catalog-scraper/internal/cli"
	"github.com/catalogops/catalog-scraper/internal/config"
	"github.com/catalogops/catalog-scraper/internal/database"
	"github.com/catalogops/catalog-scraper/internal/export"
	"github.com/catalogops/catalog-scraper/internal/images"
	"github.com/catalogops/catalog-scraper/internal/models"
	"github.com/catalogops/catalog-scraper/internal/pipeline"
	"github.com/catalogops/catalog-scraper/internal/pricing"
	"github.com/catalogops/catalog-scraper/internal/ratelimit"
	"github.com/catalogops/catalog-scraper/internal/rawref"
	"github.com/catalogops/catalog-scraper/internal/runlock"
	"github.com/catalogops/catalog-scraper/internal/similarity"
	"github.com/catalogops/catalog-scraper/internal/suppliers"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(1)
	}

	logger.Info("all done")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	prompter := cli.NewPrompter(os.Stdin, os.Stdout)

	action, err := prompter.ChooseAction()
	if err != nil {
		return err
	}

	db, err := database.New(ctx, database.Config{
		URL:         cfg.Database.URL,
		MaxConns:    cfg.Database.MaxConns,
		MinConns:    cfg.Database.MinConns,
		MaxConnLife: cfg.Database.MaxConnLife,
		MaxConnIdle: cfg.Database.MaxConnIdle,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}
	logger.Info("connected to database")

	switch action {
	case cli.ActionScrapeSupplier:
		return runScrape(ctx, cfg, db, prompter, logger)
	case cli.ActionComparePricing:
		return runPricing(ctx, cfg, db, prompter, logger)
	default:
		return errors.New("unknown action")
	}
}

func runScrape(ctx context.Context, cfg *config.Config, db *database.DB, prompter *cli.Prompter, logger *slog.Logger) error {
	supplier, err := prompter.ChooseSupplier(suppliers.Registered())
	if err != nil {
		return err
	}
	logger.Info("supplier chosen", "supplier", supplier.Label())

	products := database.NewProductStore(db)

	if cfg.Scraper.ClearDB {
		clear, err := prompter.Confirm("Do you want to clear database products for " + supplier.Label() + "?")
		if err != nil {
			return err
		}
		if clear {
			logger.Warn("clearing products", "supplier", supplier)
			if err := products.DeleteBySupplier(ctx, supplier); err != nil {
				return err
			}
		} else {
			logger.Info("proceeding without clearing products")
		}
	}

	// Only one run per supplier may be active at a time; the lock is skipped
	// when no Redis is configured.
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		lock := runlock.New(redisClient, cfg.Redis.LockTTL)
		if err := lock.Acquire(ctx, supplier); err != nil {
			if errors.Is(err, runlock.ErrHeld) {
				return errors.New("another run for this supplier is already active")
			}
			return err
		}
		defer func() {
			if err := lock.Release(context.Background(), supplier); err != nil {
				logger.Error("failed to release run lock", "error", err)
			}
		}()
	}

	adapter, err := suppliers.New(supplier, cfg)
	if err != nil {
		return err
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	slug := strings.ToLower(string(supplier))
	outputDir := cfg.OutputDirFor(slug)

	rawStore := database.NewRawProductStore(db)
	simStore := database.NewSimilarityStore(db)

	driver := pipeline.NewDriver(
		adapter,
		pipeline.NewCheckpointer(database.NewProcessStore(db), prompter.Confirm),
		rawref.NewLoader(rawStore, cfg.Paths.InputDir, cfg.Paths.RawCSV),
		rawStore,
		similarity.NewGate(simStore, cfg.Scraper.SimilarityThreshold),
		catalog.NewSaver(products, images.NewDownloader(filepath.Join(outputDir, "images")), catalog.Options{
			UpsertEnabled:             cfg.Scraper.UpsertData,
			ReplaceEmptyDescWithTitle: cfg.Scraper.ReplaceEmptyDescWithTitle,
		}),
		simStore,
		export.NewReporter(products, simStore, cfg.Paths.OutputDir),
		b,
		ratelimit.NewSimpleRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax),
		pipeline.Options{
			MaxRetries: cfg.Scraper.MaxRetries,
			RetryDelay: cfg.Scraper.RetryDelay,
		},
	)

	return driver.Run(ctx)
}

func runPricing(ctx context.Context, cfg *config.Config, db *database.DB, prompter *cli.Prompter, logger *slog.Logger) error {
	store, err := prompter.ChooseStore([]models.Store{
		models.StoreTomLeeMusic,
		models.StoreAcclaimMusic,
	})
	if err != nil {
		return err
	}
	logger.Info("store chosen", "store", store.Label())

	var scraper pricing.StoreScraper
	switch store {
	case models.StoreTomLeeMusic:
		scraper = pricing.NewTomLeeMusic(cfg.Stores.TomLeeMusicURL)
	case models.StoreAcclaimMusic:
		scraper = pricing.NewAcclaimMusic(cfg.Stores.AcclaimMusicURL)
	default:
		return errors.New("unknown store")
	}

	b, err := browser.New(&browser.Options{
		Headless:       cfg.Browser.Headless,
		Timeout:        cfg.Browser.Timeout,
		ViewportWidth:  cfg.Browser.ViewportWidth,
		ViewportHeight: cfg.Browser.ViewportHeight,
	})
	if err != nil {
		return err
	}
	defer b.Close()

	products := database.NewProductStore(db)
	simStore := database.NewSimilarityStore(db)

	driver := pricing.NewDriver(
		scraper,
		b,
		ratelimit.NewSimpleRateLimiter(cfg.Scraper.RateLimitMin, cfg.Scraper.RateLimitMax),
		database.NewPricingStore(db),
		export.NewReporter(products, simStore, cfg.Paths.OutputDir),
		filepath.Join(cfg.Paths.InputDir, cfg.Paths.RawCSV),
		cfg.Scraper.MaxRetries,
	)

	return driver.Run(ctx)
}
