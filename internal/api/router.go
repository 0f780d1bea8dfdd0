package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	v1 "github.com/netbill/netbill/internal/api/v1"
	"github.com/netbill/netbill/internal/config"
	"github.com/netbill/netbill/internal/logger"
	"github.com/netbill/netbill/internal/rest/middleware"
)

// Handlers holds all the API handlers
type Handlers struct {
	Plan         *v1.PlanHandler
	Connection   *v1.ConnectionHandler
	Subscription *v1.SubscriptionHandler
	Discount     *v1.DiscountHandler
}

// NewRouter builds the gin engine with all routes and middleware wired
func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.ErrorHandler())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	private := router.Group("/v1")
	private.Use(middleware.AuthenticateMiddleware(cfg, logger))

	plans := private.Group("/plans")
	{
		plans.GET("", handlers.Plan.ListPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
	}

	connections := private.Group("/connections")
	{
		connections.POST("", handlers.Connection.CreateConnection)
		connections.GET("", handlers.Connection.ListConnections)
		connections.GET("/:id", handlers.Connection.GetConnection)
		connections.PUT("/:id", handlers.Connection.UpdateConnection)
		connections.DELETE("/:id", handlers.Connection.DeleteConnection)
	}

	subscriptions := private.Group("/subscriptions")
	{
		subscriptions.GET("", handlers.Subscription.ListMySubscriptions)
		subscriptions.POST("/orders", handlers.Subscription.CreateOrder)
		subscriptions.POST("/verify", handlers.Subscription.VerifyPayment)
		subscriptions.POST("/upgrade/orders", handlers.Subscription.CreateUpgradeOrder)
		subscriptions.POST("/upgrade/verify", handlers.Subscription.VerifyUpgrade)
		subscriptions.POST("/:id/cancel", handlers.Subscription.CancelSubscription)
	}

	discounts := private.Group("/discounts")
	{
		discounts.GET("", handlers.Discount.ListActiveDiscounts)
		discounts.POST("/apply", handlers.Discount.ApplyDiscount)
	}

	admin := private.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/discounts", handlers.Discount.CreateDiscount)
		admin.GET("/discounts", handlers.Discount.ListDiscounts)
		admin.GET("/discounts/:id", handlers.Discount.GetDiscount)
		admin.PUT("/discounts/:id", handlers.Discount.UpdateDiscount)
		admin.DELETE("/discounts/:id", handlers.Discount.DeleteDiscount)

		admin.GET("/connections", handlers.Connection.ListAllConnections)
		admin.PUT("/connections/:id", handlers.Connection.UpdateConnection)
		admin.DELETE("/connections/:id", handlers.Connection.DeleteConnection)

		admin.GET("/subscriptions", handlers.Subscription.ListAllSubscriptions)
		admin.PUT("/subscriptions/:id", handlers.Subscription.AdminUpdateSubscription)
		admin.DELETE("/subscriptions/:id", handlers.Subscription.AdminCancelSubscription)
	}

	return router
}
