package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/blindmatch/backend/internal/usecase/admin"
	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	adminService *admin.Service
	cronSecret   string
}

func NewAuthMiddleware(adminService *admin.Service, cronSecret string) *AuthMiddleware {
	return &AuthMiddleware{
		adminService: adminService,
		cronSecret:   cronSecret,
	}
}

// RequireAdmin gates the dashboard endpoints behind a token from the login
// endpoint.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}
		if err := m.adminService.VerifyToken(token); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Next()
	}
}

// RequireCronSecret gates the batch endpoints behind the shared scheduler
// secret. An unset secret disables the endpoints rather than opening them.
func (m *AuthMiddleware) RequireCronSecret() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.cronSecret == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "batch endpoints disabled"})
			return
		}
		token := bearerToken(c)
		if subtle.ConstantTimeCompare([]byte(token), []byte(m.cronSecret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid cron secret"})
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
