package handler

import (
	"errors"
	"net/http"

	"github.com/blindmatch/backend/internal/domain"
	"github.com/blindmatch/backend/internal/usecase/conversation"
	"github.com/blindmatch/backend/internal/usecase/notify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// emptyTwiML tells Twilio the message was handled and no auto-reply is
// needed; all replies go out through the REST API instead.
const emptyTwiML = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

type WebhookHandler struct {
	conversations *conversation.Service
	notifications *notify.Service
	log           *zap.Logger
}

func NewWebhookHandler(conversations *conversation.Service, notifications *notify.Service, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		conversations: conversations,
		notifications: notifications,
		log:           log,
	}
}

// InboundSMS handles Twilio's inbound message webhook. The signature has
// already been checked by middleware; processing failures are absorbed so
// Twilio never retries a message we have already acted on.
func (h *WebhookHandler) InboundSMS(c *gin.Context) {
	from := c.PostForm("From")
	body := c.PostForm("Body")
	sid := c.PostForm("MessageSid")

	if from == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing From parameter"})
		return
	}

	err := h.conversations.HandleInbound(c.Request.Context(), from, body, sid)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}
		h.log.Error("inbound processing failed", zap.Error(err))
	}

	c.Data(http.StatusOK, "text/xml", []byte(emptyTwiML))
}

// StatusCallback handles Twilio's delivery status webhook.
func (h *WebhookHandler) StatusCallback(c *gin.Context) {
	sid := c.PostForm("MessageSid")
	status := c.PostForm("MessageStatus")
	if sid == "" || status == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing MessageSid or MessageStatus"})
		return
	}

	var errorCode *string
	if code := c.PostForm("ErrorCode"); code != "" {
		errorCode = &code
	}

	if err := h.notifications.RecordDeliveryStatus(c.Request.Context(), sid, status, errorCode); err != nil {
		// Unknown SIDs happen when callbacks outlive message retention.
		h.log.Warn("status callback not applied", zap.String("sid", sid), zap.Error(err))
	}

	c.Status(http.StatusOK)
}
