package helpers

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	dev := NewLogger("storefront", "development")
	assert.Equal(t, logrus.DebugLevel, dev.GetLevel())
	assert.IsType(t, &logrus.TextFormatter{}, dev.Formatter)

	prod := NewLogger("storefront", "production")
	assert.Equal(t, logrus.InfoLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
}
