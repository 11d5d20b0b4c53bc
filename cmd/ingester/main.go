package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/regulartim/GreedyBear/internal/adapter/extractor"
	"github.com/regulartim/GreedyBear/internal/adapter/repository"
	"github.com/regulartim/GreedyBear/internal/config"
	"github.com/regulartim/GreedyBear/internal/core/ports"
)

// runTimeout bounds one full extraction run across all sensors.
const runTimeout = 10 * time.Minute

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found (this is fine if the environment is already set)")
	}
	cfg := config.Load()

	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("connecting to database")
	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer dbPool.Close()

	if err := repository.EnsureSchema(ctx, dbPool); err != nil {
		log.WithError(err).Fatal("failed to apply database schema")
	}

	repo := repository.NewPostgresRepository(dbPool)
	registry := repository.NewHoneypotRegistry(dbPool)

	client := extractor.NewSensorClient(30*time.Second, extractor.DefaultSensorClientConfig())

	// Each attack extractor covers one extraction interval, so back-to-back
	// runs observe every event exactly once.
	extractors := []ports.AttackExtractor{
		extractor.NewCowrieExtractor(client, cfg.SensorAPIURL, cfg.ExtractionInterval),
		extractor.NewLog4potExtractor(client, cfg.SensorAPIURL, cfg.ExtractionInterval),
	}
	sensors := extractor.NewSensorsExtractor(client, cfg.SensorAPIURL, registry)

	log.WithField("interval", cfg.ExtractionInterval.String()).Info("ingester started")
	runOnce(ctx, log, repo, sensors, extractors)

	ticker := time.NewTicker(cfg.ExtractionInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info("ingester stopped")
			return
		case <-ticker.C:
			runOnce(ctx, log, repo, sensors, extractors)
		}
	}
}

// runOnce performs one extraction run: sync the sensor registry, then pull
// and upsert attack records from every sensor in parallel. One failing
// sensor never blocks the others.
func runOnce(ctx context.Context, log *logrus.Logger, repo ports.IOCRepository, sensors *extractor.SensorsExtractor, extractors []ports.AttackExtractor) {
	runCtx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if err := sensors.Run(runCtx); err != nil {
		log.WithError(err).Warn("sensor registry sync failed")
	}

	var wg sync.WaitGroup
	for _, ex := range extractors {
		wg.Add(1)
		go func(ex ports.AttackExtractor) {
			defer wg.Done()

			entry := log.WithField("extractor", ex.Name())
			iocs, err := ex.Extract(runCtx)
			if err != nil {
				entry.WithError(err).Error("extraction failed")
				return
			}
			if len(iocs) == 0 {
				entry.Debug("no attacks observed")
				return
			}
			if err := repo.SaveBatch(runCtx, iocs); err != nil {
				entry.WithError(err).Error("failed to save extracted IOCs")
				return
			}
			entry.WithField("count", len(iocs)).Info("extraction run complete")
		}(ex)
	}
	wg.Wait()
}
