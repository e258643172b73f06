package handler

import (
	"github.com/gabito1451/Aframp/internal/adapter/http/middleware"
	"github.com/gabito1451/Aframp/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	OrderSvc       ports.OrderService
	Tracker        ports.OrderTracker
	Subscriber     ports.StatusSubscriber
	WalletSvc      ports.WalletService
	DraftStore     ports.DraftStore
	Archive        ports.OrderArchive // nil = stats endpoint disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	v1 := r.Group("/api/v1")

	orderHandler := NewOrderHandler(deps.OrderSvc, deps.Tracker, deps.Subscriber, deps.Archive)
	orders := v1.Group("/orders")
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("/stats", orderHandler.GetStats)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/events", orderHandler.StreamEvents)
		orders.DELETE("/:id/tracking", orderHandler.StopTracking)
	}

	draftHandler := NewDraftHandler(deps.DraftStore)
	drafts := v1.Group("/drafts")
	{
		drafts.PUT("/:id", draftHandler.SaveDraft)
		drafts.GET("/:id", draftHandler.GetDraft)
		drafts.DELETE("/:id", draftHandler.DeleteDraft)
	}

	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := v1.Group("/wallet")
	{
		wallet.GET("", walletHandler.GetSession)
		wallet.POST("/connect", walletHandler.Connect)
		wallet.POST("/disconnect", walletHandler.Disconnect)
		wallet.POST("/balances/refresh", walletHandler.RefreshBalances)
		wallet.POST("/sign", walletHandler.SignTransaction)
	}

	return r
}
