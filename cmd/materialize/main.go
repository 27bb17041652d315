package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/activity-tracker-api/internal/repository"
	"github.com/noah-isme/activity-tracker-api/internal/service"
	"github.com/noah-isme/activity-tracker-api/pkg/cache"
	"github.com/noah-isme/activity-tracker-api/pkg/config"
	"github.com/noah-isme/activity-tracker-api/pkg/database"
	"github.com/noah-isme/activity-tracker-api/pkg/logger"
)

// Generates daily activities for one date outside the API process, e.g. for backfills.
func main() {
	dateFlag := flag.String("date", "", "date to materialize (YYYY-MM-DD), defaults to today in MATERIALIZE_TIMEZONE")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	date := service.Today(cfg.Materialize.Location())
	if *dateFlag != "" {
		date, err = service.ParseDate(*dateFlag)
		if err != nil {
			logr.Fatal("invalid -date", zap.String("date", *dateFlag), zap.Error(err))
		}
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, reports will not be invalidated", zap.Error(err))
		redisClient = nil
	}
	cacheSvc := service.NewCacheService(repository.NewCacheRepository(redisClient), nil, cfg.Reports.CacheTTL, logr, redisClient != nil)

	materializer := service.NewMaterializerService(
		repository.NewMasterActivityRepository(db),
		repository.NewDailyActivityRepository(db),
		cacheSvc, nil, logr,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	res, err := materializer.Materialize(ctx, date, service.TriggerCLI)
	if err != nil {
		logr.Fatal("materialize failed", zap.Error(err))
	}
	logr.Info("materialize complete",
		zap.String("date", res.Date),
		zap.Int("masters", res.Masters),
		zap.Int("created", res.Created),
		zap.Int("existing", res.Existing),
	)
}
