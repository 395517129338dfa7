package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/alumnilink/backend/internal/config"
	"github.com/alumnilink/backend/internal/server/handlers"
	"github.com/alumnilink/backend/internal/server/middleware"
)

// Handlers groups the HTTP adapters wired into the engine.
type Handlers struct {
	Events        *handlers.EventHandler
	Sponsorship   *handlers.SponsorshipHandler
	Checkout      *handlers.CheckoutHandler
	Reports       *handlers.ReportHandler
	Donations     *handlers.DonationHandler
	Jobs          *handlers.JobHandler
	Announcements *handlers.AnnouncementHandler
	Notifications *handlers.NotificationHandler
	Newsletter    *handlers.NewsletterHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(cfg *config.Config, h Handlers, logger *zap.Logger) *gin.Engine {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(cors.Default())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// The gateway calls back without a session token.
	r.POST("/api/maya-webhook", h.Checkout.Webhook)

	api := r.Group("/api")
	api.Use(middleware.Auth(cfg.Auth))
	{
		events := api.Group("/events")
		{
			events.GET("", h.Events.List)
			events.POST("", h.Events.Create)
			events.GET("/:id", h.Events.Get)
			events.PUT("/:id", h.Events.Update)
			events.DELETE("/:id", h.Events.Delete)
			events.POST("/:id/rsvp", h.Events.RSVP)
			events.DELETE("/:id/rsvp", h.Events.CancelRSVP)
			events.GET("/:id/sponsor", h.Sponsorship.Progress)
			events.POST("/:id/sponsor", h.Sponsorship.Contribute)
			events.POST("/:id/sponsorship-request", h.Sponsorship.SubmitRequest)
		}

		api.POST("/maya-checkout", h.Checkout.Checkout)
		api.GET("/reports/donations", h.Reports.DonationStats)

		jobs := api.Group("/jobs")
		{
			jobs.GET("", h.Jobs.List)
			jobs.POST("", h.Jobs.Create)
			jobs.GET("/:id", h.Jobs.Get)
			jobs.PUT("/:id", h.Jobs.Update)
			jobs.DELETE("/:id", h.Jobs.Delete)
		}

		announcements := api.Group("/announcements")
		{
			announcements.GET("", h.Announcements.List)
			announcements.GET("/:id", h.Announcements.Get)

			edit := announcements.Group("")
			edit.Use(middleware.RequireRole("admin"))
			{
				edit.POST("", h.Announcements.Create)
				edit.PUT("/:id", h.Announcements.Update)
				edit.DELETE("/:id", h.Announcements.Delete)
			}
		}

		api.GET("/notifications", h.Notifications.List)
		api.PATCH("/notifications/:id/read", h.Notifications.MarkRead)

		api.POST("/newsletter/subscribe", h.Newsletter.Subscribe)
		api.POST("/newsletter/unsubscribe", h.Newsletter.Unsubscribe)

		admin := api.Group("/admin")
		admin.Use(middleware.RequireRole("admin"))
		{
			admin.GET("/reports/donations", h.Reports.DonationStats)
			admin.GET("/donations", h.Donations.List)
			admin.POST("/donations", h.Donations.Create)
			admin.GET("/donations/:id", h.Donations.Get)
		}
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
