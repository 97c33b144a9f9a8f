package middleware

import (
	"net"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses the limit for loopback and private addresses,
// e.g. a Prometheus scraper inside the cluster.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := ipFromCtx(c)
		parsed := net.ParseIP(ip)
		if parsed == nil {
			return false
		}
		return parsed.IsLoopback() || parsed.IsPrivate()
	}
}
