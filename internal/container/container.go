package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/ebook-storefront/config"
	"github.com/oksasatya/ebook-storefront/internal/infrastructure/billing"
	"github.com/oksasatya/ebook-storefront/internal/metrics"
	"github.com/oksasatya/ebook-storefront/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	redisClient *redis.Client
	gcsSigner   *helpers.GCSSigner

	jwtManager *helpers.JWTManager

	billingClient *billing.Client
	rabbitPub     *helpers.RabbitPublisher
	esClient      *elasticsearch.Client
	appMetrics    *metrics.Metrics
)

func SetConfig(c *config.Config)   { cfg = c }
func GetConfig() *config.Config    { return cfg }
func SetLogger(l *logrus.Logger)   { logger = l }
func GetLogger() *logrus.Logger    { return logger }
func SetPGPool(p *pgxpool.Pool)    { pgPool = p }
func GetPGPool() *pgxpool.Pool     { return pgPool }
func SetRedis(r *redis.Client)     { redisClient = r }
func GetRedis() *redis.Client      { return redisClient }
func SetJWT(m *helpers.JWTManager) { jwtManager = m }
func GetJWT() *helpers.JWTManager {
	if jwtManager != nil {
		return jwtManager
	}
	return helpers.NewJWTManager(cfg.SessionSecret, cfg.SessionTTL)
}

func SetGCSSigner(s *helpers.GCSSigner)       { gcsSigner = s }
func GetGCSSigner() *helpers.GCSSigner        { return gcsSigner }
func SetBilling(c *billing.Client)            { billingClient = c }
func GetBilling() *billing.Client             { return billingClient }
func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
func SetMetrics(m *metrics.Metrics)           { appMetrics = m }
func GetMetrics() *metrics.Metrics            { return appMetrics }
