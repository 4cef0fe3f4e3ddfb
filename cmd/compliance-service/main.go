package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/scribeworks/compliance/pkg/audit"
	"github.com/scribeworks/compliance/pkg/common/config"
	"github.com/scribeworks/compliance/pkg/common/database"
	"github.com/scribeworks/compliance/pkg/common/kafka"
	"github.com/scribeworks/compliance/pkg/common/logger"
	"github.com/scribeworks/compliance/pkg/common/models"
	"github.com/scribeworks/compliance/pkg/compliance"
	"github.com/scribeworks/compliance/pkg/httpapi"
	"github.com/scribeworks/compliance/pkg/httpapi/auth"
	"github.com/scribeworks/compliance/pkg/ratelimit"
	"github.com/scribeworks/compliance/pkg/retention"
)

func main() {
	logger.Init("compliance-service")
	cfg := config.Load()

	rules, err := compliance.LoadRules(cfg.RuleFilePath)
	if err != nil {
		logger.Log.WithError(err).Warn("Falling back to built-in masking rules")
	}

	standard := compliance.ParseStandard(cfg.ComplianceStandard)
	anonymizer, err := compliance.NewAnonymizer(standard, rules)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to initialize anonymizer")
	}
	logger.Log.WithField("standard", standard.Description()).Info("Compliance engine initialized")

	trail := audit.NewTrailWithLimits(cfg.AuditMaxEntries, cfg.AuditKeepEntries)
	if cfg.AuditArchiveEnabled {
		db, err := database.GetPostgres()
		if err != nil {
			logger.Log.WithError(err).Fatal("Audit archive requires Postgres")
		}
		repo := audit.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			logger.Log.WithError(err).Fatal("Failed to migrate audit archive")
		}
		trail.OnRotate(repo.ArchiveHook())
		logger.Log.Info("Audit archive enabled")
	}

	retentionMgr := retention.NewManager()

	var limiter ratelimit.Limiter
	if cfg.RateLimitBackend == "redis" {
		limiter = ratelimit.NewRedisLimiter(database.GetRedis(), cfg.RateLimitBurst, cfg.RateLimitWindow)
	} else {
		memLimiter := ratelimit.NewMemoryLimiter(
			ratelimit.Tier{Capacity: cfg.RateLimitBurst, RefillRate: cfg.RateLimitRefill},
			ratelimit.Tier{Capacity: cfg.RateLimitBurst * 4, RefillRate: cfg.RateLimitRefill * 4},
		)
		go func() {
			for range time.Tick(10 * time.Minute) {
				if removed := memLimiter.CleanupStale(time.Hour); removed > 0 {
					logger.Log.WithField("removed", removed).Info("Cleaned up stale rate limit buckets")
				}
			}
		}()
		limiter = memLimiter
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Kafka sanitization pipeline: raw records in, sanitized events out.
	if cfg.KafkaEnabled {
		producer := kafka.NewProducer(cfg.KafkaOutputTopic)
		defer producer.Close()
		consumer := kafka.NewConsumer(cfg.KafkaIngestTopic, cfg.KafkaGroupID)
		defer consumer.Close()

		go func() {
			err := consumer.Consume(ctx, func(ctx context.Context, event models.Event) error {
				sanitized := anonymizer.Process(event.Data)
				return producer.PublishEvent(ctx, "sanitized", "compliance-service", sanitized)
			})
			if err != nil && err != context.Canceled {
				logger.Log.WithError(err).Error("Sanitization pipeline stopped")
			}
		}()
		logger.Log.WithFields(map[string]interface{}{
			"ingest": cfg.KafkaIngestTopic,
			"output": cfg.KafkaOutputTopic,
		}).Info("Sanitization pipeline started")
	}

	handler := httpapi.NewHandler(anonymizer, trail, retentionMgr)

	router := mux.NewRouter()
	router.Use(httpapi.Recovery, httpapi.Logging, httpapi.CORS)
	router.Use(httpapi.BodyLimit(cfg.MaxRequestBody))
	router.Use(httpapi.RateLimit(limiter))
	router.HandleFunc("/health", httpapi.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	if oidcAuth, err := auth.NewOIDCAuthenticator(cfg.OIDCIssuer, cfg.OIDCClientID, cfg.OIDCClientSecret); err == nil {
		api.Use(httpapi.Authenticate(oidcAuth))
		logger.Log.Info("API routes require OIDC bearer tokens")
	} else {
		logger.Log.Info("OIDC not configured, API routes are open")
	}
	handler.Register(api)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Log.WithFields(map[string]interface{}{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Compliance service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down compliance service...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	_ = database.CloseRedis()
	_ = database.ClosePostgres()

	logger.Log.Info("Compliance service stopped")
}
