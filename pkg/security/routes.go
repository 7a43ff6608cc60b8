package security

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"itinventory/internal/rate_limiter"
	"itinventory/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginHandler struct {
	repo        *repository.Repository
	rateLimiter *rate_limiter.RateLimiter
	logger      *zap.Logger
}

func NewLoginHandler(r *repository.Repository, limiter *rate_limiter.RateLimiter, logger *zap.Logger) *LoginHandler {
	return &LoginHandler{
		repo:        r,
		rateLimiter: limiter,
		logger:      logger,
	}
}

func (l *LoginHandler) RegisterRoutes(router gin.IRoutes) {
	router.POST("/auth", l.LoginHandler())
}

func (l *LoginHandler) LoginHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientKey := clientKey(c)

		if !l.rateLimiter.IsAllowed(c.Request.Context(), clientKey) {
			remaining := l.rateLimiter.GetRemainingRequests(c.Request.Context(), clientKey)
			resetAt := time.Now().Add(l.rateLimiter.Window()).Format(time.RFC3339)
			c.Header("X-RateLimit-Limit", strconv.Itoa(l.rateLimiter.Limit()))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
			c.Header("X-RateLimit-Reset", resetAt)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":     "Too many login attempts. Try again later.",
				"remaining": remaining,
				"reset_at":  resetAt,
			})
			return
		}

		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			return
		}

		user, err := AuthenticateUser(c.Request.Context(), req.Username, req.Password, l.repo)
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
			return
		case errors.Is(err, ErrInactiveUser):
			c.JSON(http.StatusForbidden, gin.H{"error": "User account is inactive"})
			return
		case err != nil:
			l.logger.Error("Login failed", zap.String("username", req.Username), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		token, err := GenerateJWT(strconv.Itoa(user.ID), string(user.Role), user.Username)
		if err != nil {
			l.logger.Error("Failed to sign token", zap.Int("user_id", user.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": token})
	}
}

// clientKey identifies the caller for rate limiting. Callers behind a private
// network address are further split by user agent.
func clientKey(c *gin.Context) string {
	clientIP := c.GetHeader("X-Forwarded-For")
	if clientIP == "" {
		clientIP = c.GetHeader("X-Real-IP")
	}
	if clientIP == "" {
		clientIP = c.ClientIP()
	}

	if strings.Contains(clientIP, ",") {
		clientIP = strings.TrimSpace(strings.Split(clientIP, ",")[0])
	}

	if isPrivateIP(clientIP) {
		clientIP = clientIP + ":" + c.GetHeader("User-Agent")
	}

	return clientIP
}

func isPrivateIP(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	return parsed.IsPrivate() || parsed.IsLoopback() || parsed.IsLinkLocalUnicast()
}
