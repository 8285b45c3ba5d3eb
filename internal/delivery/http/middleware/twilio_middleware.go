package middleware

import (
	"net/http"

	"github.com/blindmatch/backend/internal/infrastructure/twilio"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type TwilioMiddleware struct {
	authToken string
	log       *zap.Logger
}

func NewTwilioMiddleware(authToken string, log *zap.Logger) *TwilioMiddleware {
	return &TwilioMiddleware{
		authToken: authToken,
		log:       log,
	}
}

// ValidateSignature rejects webhook posts whose X-Twilio-Signature does not
// match the request URL and form body. With no auth token configured the
// check is skipped (local development).
func (m *TwilioMiddleware) ValidateSignature() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := c.Request.ParseForm(); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid form body"})
			return
		}

		params := make(map[string]string, len(c.Request.PostForm))
		for key, values := range c.Request.PostForm {
			if len(values) > 0 {
				params[key] = values[0]
			}
		}

		requestURL := requestURL(c)
		signature := c.GetHeader("X-Twilio-Signature")
		if !twilio.ValidateSignature(m.authToken, signature, requestURL, params) {
			m.log.Warn("rejected webhook with bad signature", zap.String("url", requestURL))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid signature"})
			return
		}
		c.Next()
	}
}

// requestURL reconstructs the public URL Twilio signed. Behind a proxy the
// forwarded proto and host headers are authoritative.
func requestURL(c *gin.Context) string {
	scheme := c.GetHeader("X-Forwarded-Proto")
	if scheme == "" {
		scheme = "https"
		if c.Request.TLS == nil {
			scheme = "http"
		}
	}
	host := c.GetHeader("X-Forwarded-Host")
	if host == "" {
		host = c.Request.Host
	}
	return scheme + "://" + host + c.Request.URL.RequestURI()
}
