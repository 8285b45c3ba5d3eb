package http

import (
	"github.com/blindmatch/backend/internal/delivery/http/handler"
	"github.com/blindmatch/backend/internal/delivery/http/middleware"
	"github.com/gin-gonic/gin"
)

type Router struct {
	webhookHandler   *handler.WebhookHandler
	batchHandler     *handler.BatchHandler
	adminHandler     *handler.AdminHandler
	authMiddleware   *middleware.AuthMiddleware
	twilioMiddleware *middleware.TwilioMiddleware
}

func NewRouter(
	webhookHandler *handler.WebhookHandler,
	batchHandler *handler.BatchHandler,
	adminHandler *handler.AdminHandler,
	authMiddleware *middleware.AuthMiddleware,
	twilioMiddleware *middleware.TwilioMiddleware,
) *Router {
	return &Router{
		webhookHandler:   webhookHandler,
		batchHandler:     batchHandler,
		adminHandler:     adminHandler,
		authMiddleware:   authMiddleware,
		twilioMiddleware: twilioMiddleware,
	}
}

func (r *Router) Setup() *gin.Engine {
	router := gin.Default()

	healthHandler := func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)

	// Twilio webhooks (signature-validated)
	webhook := router.Group("/webhook")
	webhook.Use(r.twilioMiddleware.ValidateSignature())
	{
		webhook.POST("/sms", r.webhookHandler.InboundSMS)
		webhook.POST("/status", r.webhookHandler.StatusCallback)
	}

	v1 := router.Group("/api/v1")
	{
		// Scheduler-triggered batches
		batch := v1.Group("/batch")
		batch.Use(r.authMiddleware.RequireCronSecret())
		{
			batch.POST("/invites", r.batchHandler.RunInvites)
			batch.POST("/proposals", r.batchHandler.RunProposals)
		}

		// Operator dashboard
		admin := v1.Group("/admin")
		{
			admin.POST("/login", r.adminHandler.Login)

			protected := admin.Group("")
			protected.Use(r.authMiddleware.RequireAdmin())
			{
				protected.GET("/stats", r.adminHandler.Stats)
				protected.GET("/proposals", r.adminHandler.Proposals)
				protected.GET("/users", r.adminHandler.Users)
			}
		}
	}

	return router
}
