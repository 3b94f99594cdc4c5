package routes

import (
	"github.com/dukani-store/dukani-api/controllers"
	"github.com/dukani-store/dukani-api/middlewares"
	"github.com/gin-gonic/gin"
)

func ProductRoutes(server *gin.Engine) {
	products := server.Group("/api/products")

	products.GET("", controllers.GetProducts)
	products.GET("/:id", controllers.GetProduct)

	admin := products.Group("", middlewares.RequireAuth(), middlewares.RequireAdmin())
	{
		admin.POST("", controllers.CreateProduct)
		admin.PUT("/:id", controllers.UpdateProduct)
		admin.DELETE("/:id", controllers.DeleteProduct)
		admin.POST("/specs", controllers.CreateProductSpecs)
		admin.POST("/images", controllers.UploadProductImages)
	}
}
