package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/issuetracker/internal/common"
	"github.com/dmitrijs2005/issuetracker/internal/server/models"
	"github.com/gin-gonic/gin"
)

const (
	userKey  = "user"
	tokenKey = "token"

	authRateWindow = time.Minute
)

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		args := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"latency", time.Since(start).String(),
		}
		if status >= http.StatusInternalServerError {
			s.logger.Error(c.Request.Context(), "request", args...)
			return
		}
		s.logger.Info(c.Request.Context(), "request", args...)
	}
}

// requestTimeout bounds the context handlers and repositories run under.
func (s *Server) requestTimeout() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.config.RequestTimeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.config.RequestTimeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// authRateLimit throttles register and login per client IP.
func (s *Server) authRateLimit() gin.HandlerFunc {
	limit := s.config.AuthRateLimit
	if s.limiter == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		allowed, count, err := s.limiter.Allow(c.Request.Context(), "auth:"+c.ClientIP(), limit, authRateWindow)
		if err != nil {
			s.logger.Error(c.Request.Context(), "rate limit check failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Rate limit check failed"})
			return
		}

		remaining := max(limit-count, 0)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(authRateWindow).Unix(), 10))

		if !allowed {
			s.abortWithError(c, common.NewError(common.ErrTooManyRequests, "Too many requests, please try again later"))
			return
		}
		c.Next()
	}
}

// sessionToken reads the session cookie, falling back to a bearer header.
func sessionToken(c *gin.Context) string {
	if token, err := c.Cookie(common.SessionCookieName); err == nil && token != "" {
		return token
	}
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// requireAuth resolves the session to a user and stores it in the context.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		user, err := s.svc.Users.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		c.Set(userKey, *user)
		c.Set(tokenKey, token)
		c.Next()
	}
}

func currentUser(c *gin.Context) models.User {
	return c.MustGet(userKey).(models.User)
}
