package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/localscan/intel-gateway/config"
	"github.com/localscan/intel-gateway/config/environment_variables"
)

// CORS lets the browser front-end call the scan API from the hosts listed in
// ALLOWED_CORS_HOSTS. Entries starting with "*" match by suffix.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" && (config.IsDev() || originAllowed(origin, environment_variables.Current().ALLOWED_CORS_HOSTS)) {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, accept, origin, Cache-Control, X-Requested-With, X-Request-Id")
			h.Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			h.Set("Access-Control-Expose-Headers", "X-Request-Id")
			h.Set("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	for _, host := range allowed {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		if strings.HasPrefix(host, "*") && strings.HasSuffix(origin, strings.TrimPrefix(host, "*")) {
			return true
		}
		if host == origin {
			return true
		}
	}
	return false
}
