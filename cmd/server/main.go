package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/growthloop/outreach-sync/internal/api"
	"github.com/growthloop/outreach-sync/internal/config"
	"github.com/growthloop/outreach-sync/internal/domain"
	"github.com/growthloop/outreach-sync/internal/metrics"
	"github.com/growthloop/outreach-sync/internal/outreach"
	"github.com/growthloop/outreach-sync/internal/pkg/distlock"
	"github.com/growthloop/outreach-sync/internal/pkg/pacer"
	"github.com/growthloop/outreach-sync/internal/replyio"
	"github.com/growthloop/outreach-sync/internal/repository/postgres"
	"github.com/growthloop/outreach-sync/internal/service/contactsearch"
	syncsvc "github.com/growthloop/outreach-sync/internal/service/sync"
	"github.com/growthloop/outreach-sync/internal/service/webhook"
	"github.com/growthloop/outreach-sync/internal/smartlead"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// syncLockTTL bounds how long a crashed batch can hold its Redis lock. One
// batch runs at most the 55s budget plus aggregation, so three minutes
// covers it with margin.
const syncLockTTL = 3 * time.Minute

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func extractHost(dsn string) string {
	at := strings.Index(dsn, "@")
	if at < 0 {
		return "(unknown)"
	}
	rest := dsn[at+1:]
	slash := strings.Index(rest, "/")
	if slash >= 0 {
		rest = rest[:slash]
	}
	return rest
}

func main() {
	log.Println("Starting outreach-sync server...")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	host := cfg.Server.GetHost()
	if err := checkPortAvailable(host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check failed: %v", err)
	}

	// Database
	log.Printf("Connecting to database at %s", extractHost(cfg.Database.URL))
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.PingContext(pingCtx); err != nil {
		pingCancel()
		log.Fatalf("Database ping failed: %v", err)
	}
	pingCancel()
	log.Println("Database connected")

	// Redis is optional; without it sync locks fall back to Postgres
	// advisory locks.
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
	} else {
		log.Println("Redis not configured, using PG advisory locks")
	}

	// Prometheus registry backing GET /metrics
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	// Provider clients share one pacer so request spacing holds across
	// every code path that talks to the same platform.
	pace := pacer.New()
	pace.OnWait = m.ObserveProviderWait
	smartleadClient := smartlead.NewClient(cfg.Smartlead, pace, m)
	replyioClient := replyio.NewClient(cfg.ReplyIO, pace, m)

	adapters := outreach.Registry{
		domain.ProviderSmartlead: smartleadClient,
		domain.ProviderReplyIO:   replyioClient,
	}

	// Repositories
	connections := postgres.NewConnectionRepo(db)
	campaigns := postgres.NewCampaignRepo(db)
	steps := postgres.NewStepRepo(db)
	stats := postgres.NewMetricRepo(db)
	events := postgres.NewEventRepo(db)
	contacts := postgres.NewContactRepo(db)
	activities := postgres.NewActivityRepo(db)

	locks := func(key string) distlock.DistLock {
		return distlock.NewLock(redisClient, db, key, syncLockTTL)
	}

	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://%s:%d", host, cfg.Server.Port)
		log.Printf("[config] BASE_URL not set, continuations post to %s", cfg.Server.BaseURL)
	}
	continuer := syncsvc.NewHTTPContinuer(cfg.Server.BaseURL, cfg.Auth.ServiceRoleKey, nil)

	syncService := syncsvc.NewService(connections, campaigns, steps, stats, adapters, locks, continuer, cfg.Sync, m)

	verifiers := map[domain.Provider]*webhook.Verifier{
		domain.ProviderSmartlead: webhook.NewVerifier("smartlead", cfg.Smartlead.WebhookSecret, cfg.Smartlead.SignatureEncoding),
		domain.ProviderReplyIO:   webhook.NewVerifier("replyio", cfg.ReplyIO.WebhookSecret, cfg.ReplyIO.SignatureEncoding),
	}
	webhookService := webhook.NewService(campaigns, events, contacts, activities, stats, verifiers, m)

	searchService := contactsearch.NewService(connections, contactsearch.Finders{
		domain.ProviderSmartlead: smartleadClient,
		domain.ProviderReplyIO:   replyioClient,
	})

	auth := api.NewAuthenticator(cfg.Auth)
	handlers := api.NewHandlers(auth, syncService, webhookService, searchService, registry)
	healthChecker := api.NewHealthChecker(db, redisClient)
	server := api.NewServer(cfg.Server, handlers, healthChecker)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized, server is ready")

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if redisClient != nil {
		redisClient.Close()
	}

	log.Println("Server stopped")
}
