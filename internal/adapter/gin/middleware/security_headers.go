package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// ContentSecurityPolicy is the default policy sent by SecurityHeaders.
const ContentSecurityPolicy = "default-src 'self';" +
	"base-uri 'self';" +
	"font-src 'self' https: data:;" +
	"form-action 'self';" +
	"frame-ancestors 'self';" +
	"img-src 'self' data:;" +
	"object-src 'none';" +
	"script-src 'self';" +
	"script-src-attr 'none';" +
	"style-src 'self' https: 'unsafe-inline';" +
	"upgrade-insecure-requests"

var securityHeaders = [][2]string{
	{"Content-Security-Policy", ContentSecurityPolicy},
	{"Cross-Origin-Opener-Policy", "same-origin"},
	{"Cross-Origin-Resource-Policy", "same-origin"},
	{"Origin-Agent-Cluster", "?1"},
	{"Referrer-Policy", "no-referrer"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"X-Content-Type-Options", "nosniff"},
	{"X-DNS-Prefetch-Control", "off"},
	{"X-Download-Options", "noopen"},
	{"X-Frame-Options", "SAMEORIGIN"},
	{"X-Permitted-Cross-Domain-Policies", "none"},
	{"X-XSS-Protection", "0"},
}

// SecurityHeaders sets a conservative set of browser security headers on
// every response whose path does not start with one of skipPrefixes.
func SecurityHeaders(skipPrefixes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, p := range skipPrefixes {
			if strings.HasPrefix(c.Request.URL.Path, p) {
				c.Next()
				return
			}
		}

		h := c.Writer.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		h.Del("X-Powered-By")
		c.Next()
	}
}
