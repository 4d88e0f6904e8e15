// internal/router/router.go
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hearthline/commerce-api/internal/config"
	"github.com/hearthline/commerce-api/internal/handlers"
	"github.com/hearthline/commerce-api/internal/middleware"
	"github.com/hearthline/commerce-api/internal/utils"
)

const Version = "1.0.0"

// Dependencies carries the collaborators the HTTP surface is built from.
type Dependencies struct {
	Products handlers.ProductManager
	Orders   handlers.OrderManager
	Checks   map[string]handlers.HealthCheck
	// Assets is set when images are held in memory and must be served locally.
	Assets   handlers.ObjectReader
	Audit    middleware.AuditRecorder
	Log      *logrus.Entry
}

func Initialize(cfg *config.Config, deps Dependencies) *gin.Engine {
	productHandler := handlers.NewProductHandler(deps.Products, cfg.Images.MaxUploadBytes, deps.Log)
	orderHandler := handlers.NewOrderHandler(deps.Orders, deps.Log)
	healthHandler := handlers.NewHealthHandler(Version, deps.Checks)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Images.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.Images.MaxUploadBytes
	}

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.GeneralRateLimit())

	r.GET("/health", healthHandler.Health)

	if deps.Assets != nil {
		r.GET("/uploads/*key", handlers.NewAssetHandler(deps.Assets).Serve)
	}

	v1 := r.Group("/v1")
	{
		v1.GET("/products/:productNo", productHandler.GetPublicProduct)

		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		if deps.Audit != nil {
			admin.Use(middleware.AuditLog(deps.Audit, deps.Log))
		}
		{
			products := admin.Group("/products")
			{
				products.GET("", productHandler.ListProducts)
				products.POST("", middleware.UploadRateLimit(), productHandler.CreateProduct)
				products.PATCH("/status", productHandler.UpdateProductStatus)
				products.GET("/:productNo", productHandler.GetProduct)
				products.PUT("/:productNo", middleware.UploadRateLimit(), productHandler.UpdateProduct)
				products.DELETE("/:productNo", productHandler.DeleteProduct)
				products.PUT("/:productNo/promotions", productHandler.UpdatePromotions)
			}

			orders := admin.Group("/orders")
			{
				orders.PUT("/:orderNo", orderHandler.UpdateOrder)
				orders.POST("/:orderNo/preview", orderHandler.PreviewOrder)
			}
		}
	}

	return r
}
