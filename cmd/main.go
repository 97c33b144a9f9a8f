package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/oksasatya/ebook-storefront/config"
	"github.com/oksasatya/ebook-storefront/internal/container"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/billing"
	pginfra "github.com/oksasatya/ebook-storefront/internal/infrastructure/postgres"
	"github.com/oksasatya/ebook-storefront/internal/interface/middleware"
	"github.com/oksasatya/ebook-storefront/internal/metrics"
	"github.com/oksasatya/ebook-storefront/internal/router"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
	"github.com/oksasatya/ebook-storefront/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid configuration: %v", err)
	}
	if cfg.UsesDevSessionSecret() {
		logger.Warn("SESSION_SECRET not set; signing sessions with the development secret")
	}
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Postgres holds the download audit trail only; the storefront runs without it
	if cfg.AuditEnabled {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, pginfra.PoolConfig{
			DSN:         cfg.PostgresDSN(),
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		container.SetPGPool(pool)
	}

	// Redis
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	defer func() { _ = rdb.Close() }()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Warn("redis not reachable; entitlement cache and sessions degrade until it is")
	}

	// GCS signs download URLs when the billing system hands back an object path
	if cfg.GCSBucket != "" {
		gcsClient, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
		if err != nil {
			log.Fatalf("failed to init GCS client: %v", err)
		}
		defer func() { _ = gcsClient.Close() }()
		signer := helpers.NewGCSSigner(gcsClient, cfg.GCSBucket, cfg.GCSSignerEmail)
		if cfg.GCSSignerKeyPath != "" {
			key, err := os.ReadFile(cfg.GCSSignerKeyPath)
			if err != nil {
				log.Fatalf("failed to read GCS signer key: %v", err)
			}
			signer.PrivateKey = key
		}
		container.SetGCSSigner(signer)
	}

	// Elasticsearch (optional; catalog search falls back to the static table)
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err = helpers.PingES(pingCtx, es)
			cancel()
		}
		if err != nil {
			logger.WithError(err).Warn("elasticsearch disabled; search uses the static catalog")
		} else {
			container.SetES(es)
		}
	}

	// RabbitMQ for download-link emails
	if cfg.MailSendEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQDownloadQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; download emails disabled")
		} else {
			defer pub.Close()
			container.SetRabbitPub(pub)
		}
	}

	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Provide infra singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(rdb)
	container.SetJWT(helpers.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL))
	container.SetBilling(billing.NewClient(billing.Config{
		BaseURL: cfg.BillingBaseURL,
		APIKey:  cfg.BillingAPIKey,
		Timeout: cfg.BillingTimeout,
	}))
	container.SetMetrics(metrics.New(promReg))

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = []string{"http://localhost:5173"}
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if cfg.MetricsEnabled {
		r.GET("/metrics", middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
			gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))
	}

	// Registry: auto-register modules using container
	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctxShutdown)
	})

	if err := g.Wait(); err != nil {
		logger.Fatalf("server stopped: %v", err)
	}
	logger.Info("server exited properly")
}
