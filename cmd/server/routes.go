package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"devhub.backend/internal/interfaces/http/handlers"
	"devhub.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	appHandler          *handlers.ApplicationHandler
	lifecycleHandler    *handlers.LifecycleHandler
	gatekeeperHandler   *handlers.GatekeeperHandler
	credentialHandler   *handlers.CredentialHandler
	subscriptionHandler *handlers.SubscriptionHandler
	collaboratorHandler *handlers.CollaboratorHandler
	authMiddleware      gin.HandlerFunc
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Application routes (protected)
		apps := v1.Group("/applications")
		apps.Use(d.authMiddleware)
		{
			apps.POST("", d.appHandler.CreateApplication)
			apps.GET("", d.appHandler.ListApplications)
			apps.GET("/:id", d.appHandler.GetApplication)
			apps.DELETE("/:id", d.appHandler.DeleteApplication)
			apps.PUT("/:id/ip-allowlist", d.appHandler.UpdateIPAllowlist)

			apps.POST("/:id/uplift", d.lifecycleHandler.RequestUplift)
			apps.GET("/:id/state-history", d.lifecycleHandler.StateHistory)

			apps.POST("/:id/client-secrets", d.credentialHandler.AddClientSecret)
			apps.DELETE("/:id/client-secrets/:secretId", d.credentialHandler.DeleteClientSecret)

			apps.POST("/:id/subscriptions", d.subscriptionHandler.Subscribe)
			apps.DELETE("/:id/subscriptions", d.subscriptionHandler.Unsubscribe)
			apps.GET("/:id/subscriptions", d.subscriptionHandler.ListByApplication)
			apps.GET("/:id/subscriptions/check", d.subscriptionHandler.CheckSubscription)

			apps.POST("/:id/collaborators", d.collaboratorHandler.AddCollaborator)
			apps.DELETE("/:id/collaborators/:email", d.collaboratorHandler.DeleteCollaborator)
			apps.PUT("/:id/collaborators/:email", d.collaboratorHandler.FixCollaborator)
		}

		// Verification confirmation: the code in the emailed link is the
		// only authentication the requester has at this point.
		v1.POST("/applications/verify-uplift", d.lifecycleHandler.VerifyUplift)

		// Internal credential check for the gateway's token endpoint
		v1.POST("/credentials/validate", d.credentialHandler.ValidateCredentials)

		// Subscription queries (protected)
		subs := v1.Group("/subscriptions")
		subs.Use(d.authMiddleware)
		{
			subs.GET("", d.subscriptionHandler.ListSubscriptions)
			subs.GET("/collaborators", d.subscriptionHandler.SearchCollaborators)
		}

		// Gatekeeper moderation routes
		gk := v1.Group("/gatekeeper")
		gk.Use(d.authMiddleware, middleware.GatekeeperOnly())
		{
			gk.POST("/applications/:id/approve", d.gatekeeperHandler.ApproveUplift)
			gk.POST("/applications/:id/reject", d.gatekeeperHandler.RejectUplift)
			gk.POST("/applications/:id/resend-verification", d.gatekeeperHandler.ResendVerification)
			gk.POST("/applications/:id/block", d.gatekeeperHandler.BlockApplication)
			gk.POST("/applications/:id/unblock", d.gatekeeperHandler.UnblockApplication)
			gk.PUT("/applications/:id/rate-limit-tier", d.gatekeeperHandler.UpdateRateLimitTier)
		}
	}
}
