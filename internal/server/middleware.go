package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"memorabilia-market/internal/auth"
	"memorabilia-market/internal/marketerrors"
	"memorabilia-market/internal/metrics"
	model "memorabilia-market/internal/models"
	"memorabilia-market/services/market/helpers"
	"memorabilia-market/utils"

	"github.com/gin-gonic/gin"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestIDMiddleware propagates a well-formed X-Request-ID or assigns a new one
func RequestIDMiddleware(c *gin.Context) {
	id := c.GetHeader(requestIDHeader)
	if !utils.IsValidID(id) {
		id = utils.GenerateID()
	}
	c.Set(requestIDKey, id)
	c.Header(requestIDHeader, id)
	c.Next()
}

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
		"route":      c.FullPath(),
		"status":     c.Writer.Status(),
		"latency":    time.Since(start).String(),
		"request_id": c.GetString(requestIDKey),
	})
}

// MetricsMiddleware records request counts and latency per route template
func MetricsMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
	metrics.HTTPLatency.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
}

// Authenticate resolves an optional bearer token into the current user.
// Requests without a token continue anonymously; a bad token is rejected.
func Authenticate(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			utils.AbortWithError(c, http.StatusUnauthorized, marketerrors.ErrInvalidToken, "invalid or expired token")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(raw))
		if err != nil {
			utils.Warn("Authenticate: token rejected", map[string]any{
				"error":      err.Error(),
				"request_id": c.GetString(requestIDKey),
			})
			utils.AbortWithError(c, http.StatusUnauthorized, err, "invalid or expired token")
			return
		}

		userID, _ := claims.UserID()
		helpers.SetCurrentUser(c, model.Actor{UserID: userID, IsAdmin: claims.IsAdmin})
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401
func RequireAuth(c *gin.Context) {
	if _, ok := helpers.CurrentUser(c); !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, marketerrors.ErrUnauthorized, "authentication required")
		return
	}
	c.Next()
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403
func RequireAdmin(c *gin.Context) {
	actor, ok := helpers.CurrentUser(c)
	if !ok {
		utils.AbortWithError(c, http.StatusUnauthorized, marketerrors.ErrUnauthorized, "authentication required")
		return
	}
	if !actor.IsAdmin {
		utils.Warn("RequireAdmin: forbidden", map[string]any{
			"user_id": actor.UserID,
			"path":    c.Request.URL.Path,
		})
		utils.AbortWithError(c, http.StatusForbidden, marketerrors.ErrForbidden, "forbidden")
		return
	}
	c.Next()
}
