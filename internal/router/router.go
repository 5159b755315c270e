// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/pollopollo-backend/internal/config"
	"github.com/javajoker/pollopollo-backend/internal/handlers"
	"github.com/javajoker/pollopollo-backend/internal/metrics"
	"github.com/javajoker/pollopollo-backend/internal/middleware"
	"github.com/javajoker/pollopollo-backend/internal/models"
	"github.com/javajoker/pollopollo-backend/internal/repository"
	"github.com/javajoker/pollopollo-backend/internal/services"
	"github.com/javajoker/pollopollo-backend/internal/utils"
)

// Initialize wires services and routes on top of store. A nil notifier falls
// back to SMTP delivery configured from cfg.
func Initialize(store repository.Store, cfg *config.Config, notifier services.Notifier) *gin.Engine {
	// Initialize services
	if notifier == nil {
		notifier = services.NewNotificationService(cfg)
	}
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		logrus.WithError(err).Warn("S3 unavailable, serving thumbnails from the static folder")
		storageService, _ = services.NewStorageService(&config.Config{})
	}
	walletService := services.NewWalletService(cfg.Wallet)

	applicationService := services.NewApplicationService(store, notifier, walletService, storageService)
	userService := services.NewUserService(store, cfg, walletService, storageService)
	productService := services.NewProductService(store, storageService)

	// Initialize handlers
	applicationHandler := handlers.NewApplicationHandler(applicationService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg.Server.CORSOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	if cfg.Server.RateLimit {
		r.Use(middleware.GeneralRateLimit())
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/v1")
	{
		users := v1.Group("/users")
		{
			auth := users.Group("")
			if cfg.Server.RateLimit {
				auth.Use(middleware.AuthRateLimit())
			}
			auth.POST("", userHandler.Register)
			auth.POST("/authenticate", userHandler.Authenticate)

			users.GET("/stats", userHandler.Counts)
			users.POST("/pair", userHandler.PairDevice)
			users.GET("/:id", middleware.OptionalAuth(), userHandler.Get)
			users.PUT("", middleware.AuthRequired(), userHandler.Update)
		}

		products := v1.Group("/products")
		{
			products.GET("/:id", productHandler.Get)
			products.GET("/producer/:producerId", productHandler.ListByProducer)

			owned := products.Group("")
			owned.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleProducer))
			{
				owned.POST("", productHandler.Create)
				owned.PUT("/:id/availability", productHandler.SetAvailability)
			}
		}

		applications := v1.Group("/applications")
		{
			// Public browsing
			applications.GET("", applicationHandler.ListOpen)
			applications.GET("/completed", applicationHandler.ListCompleted)
			applications.GET("/filter", applicationHandler.ListFiltered)
			applications.GET("/countries", applicationHandler.Countries)
			applications.GET("/cities", applicationHandler.Cities)
			applications.GET("/receiver/:receiverId", applicationHandler.ListByReceiver)
			applications.GET("/:id", applicationHandler.Get)
			applications.GET("/:id/contract", applicationHandler.ContractInfo)

			receiver := applications.Group("")
			receiver.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleReceiver))
			{
				receiver.POST("", applicationHandler.Submit)
				receiver.PUT("/:id/status", applicationHandler.UpdateStatus)
				receiver.DELETE("/:userId/:id", applicationHandler.Delete)
			}

			producer := applications.Group("")
			producer.Use(middleware.AuthRequired(), middleware.RoleRequired(models.UserRoleProducer))
			{
				producer.GET("/withdrawable/:producerId", applicationHandler.ListWithdrawable)
				producer.POST("/:id/withdraw", applicationHandler.Withdraw)
			}
		}

		// Donations are reported by the wallet chatbot, never by users
		wallet := v1.Group("/wallet")
		wallet.Use(middleware.ServiceTokenRequired(cfg.Wallet.ServiceToken))
		{
			wallet.PUT("/applications/:id/status", applicationHandler.WalletUpdateStatus)
		}
	}

	return r
}
