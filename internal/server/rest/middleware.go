package rest

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dmitrijs2005/prontuario/internal/common"
	"github.com/dmitrijs2005/prontuario/internal/logging"
	"github.com/dmitrijs2005/prontuario/internal/server/auth"
	"github.com/dmitrijs2005/prontuario/internal/server/observability"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const claimsKey = "claims"

var (
	corsMethods = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{common.AuthorizationHeaderName, "Content-Type", common.RequestIDHeaderName}, ", ")
)

// authGate admits requests carrying a valid "Authorization: Bearer <token>".
// A missing or malformed header is 401; a token that fails verification
// (forged, tampered or expired) is 403.
func (s *Server) authGate(c *gin.Context) {
	ctx := c.Request.Context()

	token, ok := bearerToken(c.GetHeader(common.AuthorizationHeaderName))
	if !ok {
		observability.AuthRejectionsTotal.WithLabelValues("missing").Inc()
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errUnauthenticated})
		return
	}

	claims, err := s.deps.Tokens.Verify(token)
	if err != nil {
		reason := "invalid"
		if errors.Is(err, common.ErrTokenExpired) {
			reason = "expired"
		}
		observability.AuthRejectionsTotal.WithLabelValues(reason).Inc()
		s.logger.Info(ctx, "token rejected", "reason", reason)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": errForbidden})
		return
	}

	c.Set(claimsKey, claims)
	c.Request = c.Request.WithContext(auth.ContextWithClaims(ctx, claims))
	c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// callerClaims returns the claims set by authGate.
func callerClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(claimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	claims, _ := auth.ClaimsFromContext(c.Request.Context())
	return claims
}

// requestID reuses the client's X-Request-Id or generates one, echoes it
// back and makes it available to loggers through the request context.
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(common.RequestIDHeaderName, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))
		c.Next()
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error(c.Request.Context(), "panic recovered",
					"error", fmt.Sprint(p),
					"stack", string(debug.Stack()),
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": errInternal})
			}
		}()
		c.Next()
	}
}

// cors answers preflight requests and sets CORS headers for allowed origins.
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && isAllowedOrigin(origin, s.corsOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Methods", corsMethods)
			c.Header("Access-Control-Allow-Headers", corsHeaders)
			c.Header("Access-Control-Expose-Headers", common.RequestIDHeaderName)
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func isAllowedOrigin(origin string, allowed []string) bool {
	for _, a := range allowed {
		if origin == a || a == "*" {
			return true
		}
	}
	return false
}

// requestLogger logs every request except health checks and scrapes.
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if path == "/health" || path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		ctx := c.Request.Context()
		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client", c.ClientIP(),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.logger.Error(ctx, "request", args...)
		case status >= http.StatusBadRequest:
			s.logger.Warn(ctx, "request", args...)
		default:
			s.logger.Info(ctx, "request", args...)
		}
	}
}
