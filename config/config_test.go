package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BILLING_TIMEOUT", "")
	t.Setenv("ENTITLEMENT_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, "ebook-storefront", cfg.AppName)
	assert.Equal(t, 10*time.Second, cfg.BillingTimeout)
	assert.Equal(t, time.Duration(0), cfg.EntitlementCacheTTL)
	assert.Equal(t, 15*time.Minute, cfg.DownloadURLTTL)
	assert.False(t, cfg.MailSendEnabled)
}

func TestLoadOverridesAndInvalidValues(t *testing.T) {
	t.Setenv("BILLING_TIMEOUT", "3s")
	t.Setenv("SESSION_TTL", "not-a-duration")
	t.Setenv("COOKIE_SECURE", "true")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.BillingTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 0, cfg.RedisDB)
}

func TestSplitLists(t *testing.T) {
	cfg := &Config{
		CORSAllowedOrigins: " http://a.test, ,http://b.test ",
		ElasticsearchAddrs: "",
	}
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
	assert.Empty(t, cfg.ESAddrs())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "h", DBPort: "5432", DBName: "d", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.PostgresDSN())
}

func TestValidateSessionSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	t.Setenv("APP_ENV", "development")
	cfg := Load()
	assert.NoError(t, cfg.Validate())
	assert.True(t, cfg.UsesDevSessionSecret())

	t.Setenv("APP_ENV", "production")
	assert.ErrorIs(t, Load().Validate(), ErrInsecureSessionSecret)

	t.Setenv("SESSION_SECRET", "a-real-secret")
	cfg = Load()
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.UsesDevSessionSecret())
}
