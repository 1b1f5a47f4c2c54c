// Package main runs the desk server: REST API, rate stream, market-rate feed
// and metrics in one process.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fx-forward-desk/internal/api"
	"fx-forward-desk/internal/calendar"
	"fx-forward-desk/internal/config"
	"fx-forward-desk/internal/domain"
	"fx-forward-desk/internal/logging"
	"fx-forward-desk/internal/observability"
	"fx-forward-desk/internal/pricing"
	"fx-forward-desk/internal/ratefeed"
	"fx-forward-desk/internal/settlement"
	"fx-forward-desk/internal/storage"
	chstore "fx-forward-desk/internal/storage/clickhouse"
	"fx-forward-desk/internal/storage/memory"
	"fx-forward-desk/internal/storage/migrations"
	pgstore "fx-forward-desk/internal/storage/postgres"
	"fx-forward-desk/internal/stream"
)

// Server holds all components of the unified service.
type Server struct {
	cfg     *config.Config
	stores  *allStores
	logger  *zap.Logger
	metrics *observability.Metrics
}

// allStores holds all storage implementations.
type allStores struct {
	currencyPairs  storage.CurrencyPairStore
	users          storage.UserStore
	swapPoints     storage.SwapPointStore
	onTnRates      storage.OnTnRateStore
	marketRates    storage.MarketRateStore
	spreadSettings storage.SpreadSettingStore
	history        storage.MarketRateHistoryStore // nil without ClickHouse
}

func main() {
	configPath := flag.String("config", os.Getenv("FXDESK_CONFIG"), "YAML config file (optional)")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	migrate := flag.Bool("migrate", false, "Apply embedded migrations before serving")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck

	if !*useMemory && cfg.Postgres.DSN == "" {
		logger.Fatal("postgres.dsn is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())

	stores, cleanup, err := createStores(ctx, cfg, *useMemory, *migrate, logger)
	if err != nil {
		logger.Fatal("failed to create stores", zap.Error(err))
	}
	defer cleanup()

	server := &Server{
		cfg:     cfg,
		stores:  stores,
		logger:  logger,
		metrics: observability.DefaultMetrics,
	}

	// Channel to signal completion
	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Error("graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = server.Run(ctx)
	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("shutdown complete")
}

// createStores builds the memory or PostgreSQL/ClickHouse stores.
func createStores(ctx context.Context, cfg *config.Config, useMemory, migrate bool, logger *zap.Logger) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			currencyPairs:  memory.NewCurrencyPairStore(),
			users:          memory.NewUserStore(),
			swapPoints:     memory.NewSwapPointStore(),
			onTnRates:      memory.NewOnTnRateStore(),
			marketRates:    memory.NewMarketRateStore(),
			spreadSettings: memory.NewSpreadSettingStore(),
			history:        memory.NewMarketRateHistoryStore(),
		}
		if err := seedPairs(ctx, stores.currencyPairs); err != nil {
			return nil, nil, err
		}
		logger.Info("using in-memory storage")
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPoolWithOptions(ctx, cfg.Postgres.DSN, pgstore.PoolOptions{
		Metrics: observability.DefaultMetrics,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}

	stores := &allStores{
		currencyPairs:  pgstore.NewCurrencyPairStore(pool),
		users:          pgstore.NewUserStore(pool),
		swapPoints:     pgstore.NewSwapPointStore(pool),
		onTnRates:      pgstore.NewOnTnRateStore(pool),
		marketRates:    pgstore.NewMarketRateStore(pool),
		spreadSettings: pgstore.NewSpreadSettingStore(pool),
	}
	cleanup := func() { pool.Close() }

	if cfg.ClickHouse.DSN == "" {
		logger.Info("clickhouse.dsn not set, tick history disabled")
		return stores, cleanup, nil
	}

	var chConn *chstore.Conn
	if migrate {
		chConn, err = migrations.RunClickhouseMigrations(ctx, cfg.ClickHouse.DSN, logger)
	} else {
		chConn, err = chstore.NewConn(ctx, cfg.ClickHouse.DSN)
	}
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("connect to clickhouse: %w", err)
	}
	stores.history = chstore.NewMarketRateHistoryStore(chConn)

	return stores, func() {
		chConn.Close()
		pool.Close()
	}, nil
}

// seedPairs registers the pairs an empty in-memory desk quotes.
func seedPairs(ctx context.Context, pairs storage.CurrencyPairStore) error {
	for _, p := range []*domain.CurrencyPair{
		{ID: "usdkrw", Symbol: "USD/KRW", BaseCurrency: "USD", QuoteCurrency: "KRW", IsActive: true},
		{ID: "eurkrw", Symbol: "EUR/KRW", BaseCurrency: "EUR", QuoteCurrency: "KRW", IsActive: true},
		{ID: "jpykrw", Symbol: "JPY/KRW", BaseCurrency: "JPY", QuoteCurrency: "KRW", IsActive: true},
	} {
		if err := pairs.Insert(ctx, p); err != nil {
			return fmt.Errorf("seed pair %s: %w", p.Symbol, err)
		}
	}
	return nil
}

// calculator merges configured holidays into the built-in tables.
func calculator(cfg *config.Config) (*settlement.Calculator, error) {
	kr, err := calendar.KRCalendar().Merge(cfg.Calendar.KRHolidays...)
	if err != nil {
		return nil, fmt.Errorf("calendar.kr_holidays: %w", err)
	}
	us, err := calendar.USCalendar().Merge(cfg.Calendar.USHolidays...)
	if err != nil {
		return nil, fmt.Errorf("calendar.us_holidays: %w", err)
	}
	return settlement.New(kr, us), nil
}

// Run starts every component and blocks until ctx is cancelled or one fails.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server")

	calc, err := calculator(s.cfg)
	if err != nil {
		return err
	}
	loc, err := s.cfg.Location()
	if err != nil {
		return err
	}

	svc := pricing.New(pricing.Options{
		CurrencyPairs:  s.stores.currencyPairs,
		Users:          s.stores.users,
		SwapPoints:     s.stores.swapPoints,
		OnTnRates:      s.stores.onTnRates,
		MarketRates:    s.stores.marketRates,
		SpreadSettings: s.stores.spreadSettings,
		Calculator:     calc,
		MarketSource:   s.cfg.Market.Source,
		Location:       loc,
		Logger:         s.logger,
		Metrics:        s.metrics,
	})
	a := svc.SpotAnchor()
	s.logger.Info("trade date",
		zap.String("today", a.Today.Format(calendar.DateLayout)),
		zap.String("spot", a.Spot.Format(calendar.DateLayout)),
		zap.String("zone", loc.String()),
	)

	hub := stream.NewHub(s.logger, s.metrics)
	broadcaster := stream.NewBroadcaster(stream.BroadcasterOptions{
		Hub:      hub,
		Source:   svc,
		Interval: s.cfg.Stream.Interval,
		Logger:   s.logger,
	})

	errCh := make(chan error, 4)

	go hub.Run(ctx)
	go broadcaster.Run(ctx)

	if len(s.cfg.Kafka.Brokers) > 0 {
		handler := ratefeed.NewHandler(ratefeed.HandlerOptions{
			CurrencyPairs: s.stores.currencyPairs,
			MarketRates:   s.stores.marketRates,
			History:       s.stores.history,
			HistoryBatch:  100,
			Logger:        s.logger,
			Metrics:       s.metrics,
		})
		handler.Subscribe(broadcaster.OnRate)

		reader := ratefeed.NewKafkaReader(ratefeed.ReaderConfig{
			Brokers: s.cfg.Kafka.Brokers,
			Topic:   s.cfg.Kafka.Topic,
			GroupID: s.cfg.Kafka.GroupID,
		})
		consumer := ratefeed.NewConsumer(reader, handler, s.logger)
		go func() {
			defer consumer.Close()
			if err := consumer.Run(ctx); err != nil {
				errCh <- fmt.Errorf("rate feed: %w", err)
			}
		}()
	} else {
		s.logger.Warn("kafka.brokers not set, market rates will not update")
	}

	router := api.NewRouter(api.Options{
		Pricing: svc,
		Hub:     hub,
		Logger:  s.logger,
		Metrics: s.metrics,
	})
	go func() {
		if err := s.serveHTTP(ctx, "api", s.cfg.HTTP.Addr, router); err != nil {
			errCh <- err
		}
	}()

	if s.cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		go func() {
			if err := s.serveHTTP(ctx, "metrics", s.cfg.Metrics.Addr, mux); err != nil {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// serveHTTP serves h on addr until ctx is cancelled, then drains connections.
func (s *Server) serveHTTP(ctx context.Context, name, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("http shutdown", zap.String("server", name), zap.Error(err))
		}
	}()

	s.logger.Info("starting HTTP server", zap.String("server", name), zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}
