// Package router wires the gateway's HTTP surface
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jobdeck/jobdeck-be/internal/gateway/auth"
	"github.com/jobdeck/jobdeck-be/internal/gateway/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies, verifier *auth.Verifier) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "jobdeck-gateway",
		})
	})

	jobHandler := handler.NewJobHandler(deps)
	applicationHandler := handler.NewApplicationHandler(deps)
	interviewHandler := handler.NewInterviewHandler(deps)
	notificationHandler := handler.NewNotificationHandler(deps)
	wsHandler := handler.NewWSHandler(deps)

	required := auth.Required(verifier)
	optional := auth.Optional(verifier)

	v1 := r.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			// Public reads; the identity is attached when present so the
			// services can personalize replies.
			jobs.GET("", optional, jobHandler.Search)
			jobs.GET("/saved", required, jobHandler.GetSaved)
			jobs.GET("/:job_id", optional, jobHandler.Get)

			jobs.POST("", required, jobHandler.Create)
			jobs.PATCH("/:job_id", required, jobHandler.Update)
			jobs.DELETE("/:job_id", required, jobHandler.Delete)

			jobs.POST("/:job_id/apply", required, RateLimitMiddleware(deps.Limiter, "apply"), jobHandler.Apply)
			jobs.POST("/:job_id/save", required, jobHandler.Save)
			jobs.DELETE("/:job_id/save", required, jobHandler.Unsave)

			jobs.GET("/:job_id/applications", required, applicationHandler.ListByJob)
		}

		applications := v1.Group("/applications", required)
		{
			applications.GET("/:application_id", applicationHandler.Get)
			applications.PATCH("/:application_id/status", applicationHandler.UpdateStatus)
		}

		interviews := v1.Group("/interviews", required)
		{
			interviews.POST("", interviewHandler.Create)
			interviews.GET("/upcoming", interviewHandler.GetUpcoming)
			interviews.PATCH("/:interview_id", interviewHandler.Update)
			interviews.POST("/:interview_id/cancel", interviewHandler.Cancel)
		}

		notifications := v1.Group("/notifications", required)
		{
			notifications.GET("", notificationHandler.List)
			notifications.POST("/read-all", notificationHandler.MarkAllRead)
			notifications.POST("/:notification_id/read", notificationHandler.MarkRead)
		}
	}

	r.GET("/ws/notifications", required, wsHandler.Serve)

	return r
}
