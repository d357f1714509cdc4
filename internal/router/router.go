package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"paycallback/internal/handler"
	"paycallback/internal/handler/api"
	"paycallback/internal/middleware"
	"paycallback/internal/repository"
	"paycallback/internal/settlement"
)

// Setup configures all routes for the Echo server.
func Setup(
	e *echo.Echo,
	db *gorm.DB,
	dispatcher *settlement.Dispatcher,
	logger *zap.Logger,
	apiKey string,
	callbackRate float64,
) {
	// Global middleware
	e.Use(echomw.Recover())
	e.Use(middleware.CORS())

	callbackHandler := handler.NewCallbackHandler(dispatcher, logger)
	orderHandler := api.NewOrderHandler(
		repository.NewOrderRepository(db),
		repository.NewCallbackLogRepository(db),
		logger,
	)

	// Gateway callbacks. The /api prefix keeps URLs registered with gateways
	// under the old global prefix working.
	for _, prefix := range []string{"/callback", "/api/callback"} {
		callbacks := e.Group(prefix)
		callbacks.Use(middleware.CallbackRateLimit(callbackRate))
		callbacks.POST("/donate", callbackHandler.Donate)
		callbacks.POST("/:provider", callbackHandler.Gateway)
	}

	// Admin API
	apiGroup := e.Group("/api", middleware.APIAuth(apiKey))
	apiGroup.GET("/orders/stats", orderHandler.Stats)
	apiGroup.GET("/orders/:order_id", orderHandler.Get)
	apiGroup.GET("/callbacks", orderHandler.Callbacks)

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}
