package routes

import (
	"github.com/dukani-store/dukani-api/controllers"
	"github.com/dukani-store/dukani-api/middlewares"
	"github.com/gin-gonic/gin"
)

func OrderRoutes(server *gin.Engine) {
	orders := server.Group("/api/orders")

	// Public tracking by order number, no auth.
	orders.GET("/track/:orderNumber", controllers.TrackOrder)

	authed := orders.Group("", middlewares.RequireAuth())
	{
		authed.POST("", controllers.CreateOrder)
		authed.GET("", controllers.GetMyOrders)
		authed.GET("/:id", controllers.GetOrderById)
		authed.GET("/:id/timeline", controllers.GetOrderTimeline)
		authed.PUT("/:id/cancel", controllers.CancelOrder)
		authed.PUT("/:id/return", controllers.ReturnOrder)
	}

	admin := orders.Group("", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.GET("/admin/all", controllers.GetAllOrders)
		admin.GET("/admin/stats", controllers.GetOrderStats)
		admin.PUT("/:id/status", controllers.UpdateOrderStatus)
	}
}
