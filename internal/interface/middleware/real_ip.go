package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const CtxRealIPKey = "real_ip"

// RealIP stores the caller's address under CtxRealIPKey. CF-Connecting-IP wins,
// then the left-most X-Forwarded-For entry, then gin's ClientIP.
func RealIP() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(CtxRealIPKey, resolveIP(c.GetHeader("CF-Connecting-IP"), c.GetHeader("X-Forwarded-For"), c.ClientIP()))
		c.Next()
	}
}

func resolveIP(cf, xff, fallback string) string {
	if ip := net.ParseIP(strings.TrimSpace(cf)); ip != nil {
		return ip.String()
	}
	if xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	return fallback
}

// RealIPFrom returns the address RealIP resolved, or gin's ClientIP when it did not run.
func RealIPFrom(c *gin.Context) string {
	if ip := c.GetString(CtxRealIPKey); ip != "" {
		return ip
	}
	return c.ClientIP()
}
