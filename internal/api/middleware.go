package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"FinSim/internal/logger"
)

// RequestLogger logs requests through zap. Unless logAll is set only
// responses with status >= 400 are logged.
func RequestLogger(logAll bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		status := c.Writer.Status()
		if !logAll && status < 400 {
			return
		}
		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if msg := c.Errors.ByType(gin.ErrorTypePrivate).String(); msg != "" {
			fields = append(fields, zap.String("error", msg))
		}
		if status >= 500 {
			logger.Error("http request", fields...)
			return
		}
		logger.Info("http request", fields...)
	}
}

// JWTAuth requires an HS256 bearer token signed with secret. A missing token
// is 401, an invalid or expired one is 403.
func JWTAuth(secret string) gin.HandlerFunc {
	key := []byte(secret)
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			logger.Warn("request without token", zap.String("path", c.Request.URL.Path), zap.String("ip", c.ClientIP()))
			abort(c, http.StatusUnauthorized, "access token required", nil)
			return
		}

		claims := jwt.MapClaims{}
		if _, err := parser.ParseWithClaims(strings.TrimSpace(raw), claims, func(*jwt.Token) (any, error) {
			return key, nil
		}); err != nil {
			logger.Warn("invalid token", zap.String("path", c.Request.URL.Path), zap.Error(err))
			abort(c, http.StatusForbidden, "invalid or expired token", err)
			return
		}
		if sub, err := claims.GetSubject(); err == nil && sub != "" {
			c.Set("userID", sub)
		}
		c.Next()
	}
}

// RateLimit applies one token bucket to every request of the group.
func RateLimit(perSecond float64, burst int) gin.HandlerFunc {
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			abort(c, http.StatusTooManyRequests, "too many requests", nil)
			return
		}
		c.Next()
	}
}
