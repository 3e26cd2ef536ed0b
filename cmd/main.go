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

	"github.com/okian/numerai-exporter/internal/adapters/http/api"
	"github.com/okian/numerai-exporter/internal/adapters/numerai"
	"github.com/okian/numerai-exporter/internal/adapters/promsink"
	app "github.com/okian/numerai-exporter/internal/app"
	"github.com/okian/numerai-exporter/internal/config"
	"github.com/okian/numerai-exporter/internal/domain/emit"
	"github.com/okian/numerai-exporter/internal/domain/scoring"
	"github.com/okian/numerai-exporter/pkg/logger"
	"github.com/okian/numerai-exporter/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 10 * time.Second
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Re-initialize with the configured format and level.
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithLevel(cfg.LogLevel)); err != nil {
		_ = logger.Init(logger.WithFormat(cfg.LogFormat))
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Get()

	exporter, err := newExporter(cfg, metrics.GetRegistry(), log)
	if err != nil {
		log.Error(ctx, "failed to build exporter", logger.Error(err))
		return
	}

	mux := http.NewServeMux()
	api.NewServer(exporter, metrics.GetRegistry()).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Serve metrics before the first pass so scrapes never hang on it.
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	go startSystemMetricsUpdater(ctx)

	if err := exporter.Start(ctx); err != nil {
		log.Error(ctx, "failed to start exporter", logger.Error(err))
		stop()
	}
	defer exporter.Stop()

	<-ctx.Done()
	log.Info(context.Background(), "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(err))
	}

	log.Info(shutdownCtx, "server stopped")
}

// newExporter wires the API client, emitter and sink from cfg. Gauges are
// registered on reg.
func newExporter(cfg *config.Config, reg prometheus.Registerer, log logger.Logger) (*app.Exporter, error) {
	client := numerai.NewClient(
		numerai.WithEndpoint(cfg.APIURL),
		numerai.WithCredentials(cfg.PublicID, cfg.Secret),
		numerai.WithTournament(cfg.TournamentID),
		numerai.WithTimeout(cfg.RequestTimeout),
	)

	emitter := emit.New(
		emit.WithNamespace(cfg.Namespace),
		emit.WithSubsystem(cfg.Subsystem),
		emit.WithPeriods(cfg.PeriodList()),
		emit.WithPrecision(int32(cfg.PercentilePlaces), int32(cfg.ValuePlaces)),
		emit.WithPolicy(scoring.Policy{ZeroIsPresent: !cfg.ZeroIsAbsent}),
	)

	sink, err := promsink.New(reg, emitter.Families())
	if err != nil {
		return nil, fmt.Errorf("metric families: %w", err)
	}

	opts := []app.Option{
		app.WithEmitter(emitter),
		app.WithConcurrency(cfg.ModelConcurrency),
		app.WithInterval(cfg.UpdateInterval),
		app.WithLogger(log.Named("exporter")),
	}
	if cfg.NMRPriceEnabled {
		opts = append(opts, app.WithPriceSource(client))
	}
	return app.New(client, sink, opts...)
}

// startSystemMetricsUpdater samples runtime metrics until ctx is done.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	metrics.UpdateSystemMetrics()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			metrics.UpdateSystemMetrics()
		}
	}
}
