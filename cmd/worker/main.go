package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/distlock"
	"github.com/growthloop/outreach-sync/internal/pkg/pacer"
	"github.com/growthloop/outreach-sync/internal/replyio"
	"github.com/growthloop/outreach-sync/internal/repository/postgres"
	syncsvc "github.com/growthloop/outreach-sync/internal/service/sync"
	"github.com/growthloop/outreach-sync/internal/smartlead"
	"github.com/growthloop/outreach-sync/internal/worker"

	_ "github.com/lib/pq"
)

const syncLockTTL = 3 * time.Minute

func main() {
	log.Println("Starting outreach-sync worker...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("Connected to database")

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.URL})
		} else {
			redisClient = redis.NewClient(opts)
		}
		rctx, rcancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(rctx).Err(); err != nil {
			log.Printf("Warning: Redis connection failed: %v, falling back to PG advisory locks", err)
			redisClient.Close()
			redisClient = nil
		} else {
			log.Println("Redis connected (distributed locking enabled)")
		}
		rcancel()
	}

	pace := pacer.New()
	// The worker exposes no metrics endpoint; batches it pauses continue
	// through the server API and are counted there.
	smartleadClient := smartlead.NewClient(cfg.Smartlead, pace, nil)
	replyioClient := replyio.NewClient(cfg.ReplyIO, pace, nil)

	adapters := outreach.Registry{
		domain.ProviderSmartlead: smartleadClient,
		domain.ProviderReplyIO:   replyioClient,
	}

	connections := postgres.NewConnectionRepo(db)
	campaigns := postgres.NewCampaignRepo(db)
	steps := postgres.NewStepRepo(db)
	stats := postgres.NewMetricRepo(db)

	locks := func(key string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, syncLockTTL)
	}

	if cfg.Server.BaseURL == "" {
		log.Println("Warning: BASE_URL not set, paused syncs cannot post continuations")
	}
	continuer := syncsvc.NewHTTPContinuer(cfg.Server.BaseURL, cfg.Auth.ServiceRoleKey, nil)

	syncService := syncsvc.NewService(connections, campaigns, steps, stats, adapters, locks, continuer, cfg.Sync, nil)

	scheduler := worker.NewSyncScheduler(connections, syncService, cfg.Sync)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down worker...")
	scheduler.Stop()
	if redisClient != nil {
		redisClient.Close()
	}
	log.Println("Worker stopped")
}
