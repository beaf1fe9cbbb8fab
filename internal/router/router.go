package router

import (
	"time"

	"lifeline/config"
	"lifeline/internal/handler"
	"lifeline/internal/middleware"
	"lifeline/internal/service"
	"lifeline/internal/store"
	"lifeline/internal/ws"

	"github.com/gin-gonic/gin"
)

func Setup(cfg *config.Config, st *store.Store) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.Recovery())
	// Skip gin.Logger() to reduce log noise; use gin.Default() if you need request logging
	r.Use(middleware.RateLimit(middleware.NewInMemoryRateLimiter(100, 60*time.Second)))

	hub := ws.NewHub()
	// Fan the store's debounced change event out to every connected client.
	st.Subscribe(func() {
		hub.BroadcastAll(ws.SyncEvent{Type: "sync"})
	})

	// Services
	notifSvc := service.NewNotificationService(st, hub)
	matchingSvc := service.NewMatchingService(st)
	requestSvc := service.NewRequestService(st, notifSvc)
	statsSvc := service.NewStatsService(st)

	// Handlers
	donorHandler := handler.NewDonorHandler(st, matchingSvc)
	hospitalHandler := handler.NewHospitalHandler(st, matchingSvc)
	requestHandler := handler.NewRequestHandler(st, requestSvc)
	notificationHandler := handler.NewNotificationHandler(st)
	statsHandler := handler.NewStatsHandler(statsSvc)

	api := r.Group("/api/v1")
	{
		donors := api.Group("/donors")
		{
			donors.POST("/register", donorHandler.Register)
			donors.PATCH("/update", donorHandler.Update)
			donors.PATCH("/availability", donorHandler.Availability)
			donors.GET("/:id", donorHandler.Get)
			donors.GET("/:id/donations", donorHandler.Donations)
			donors.GET("/:id/requests", donorHandler.VisibleRequests)
		}

		hospitals := api.Group("/hospitals")
		{
			hospitals.POST("/register", hospitalHandler.Register)
			hospitals.GET("/:id", hospitalHandler.Get)
			hospitals.GET("/:id/eligible-donors", hospitalHandler.EligibleDonors)
		}

		requests := api.Group("/requests")
		{
			requests.POST("/create", requestHandler.Create)
			requests.PATCH("/accept", requestHandler.Accept)
			requests.PATCH("/reject", requestHandler.Reject)
			requests.PATCH("/complete", requestHandler.Complete)
			requests.DELETE("/delete", requestHandler.Delete)
			requests.GET("/by-hospital", requestHandler.ByHospital)
			requests.GET("/for-donor", requestHandler.ForDonor)
		}

		api.GET("/notifications", notificationHandler.List)
		api.PUT("/notifications/:id/read", notificationHandler.MarkRead)
		api.POST("/notifications/read-all", notificationHandler.MarkAllRead)
		api.GET("/stats", statsHandler.Get)
	}

	r.GET("/ws/stream", ws.UpgradeStream(hub))

	return r
}
