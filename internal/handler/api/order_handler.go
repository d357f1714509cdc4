package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paycallback/internal/models"
	"paycallback/internal/repository"
)

const defaultCallbackLimit = 50

// OrderHandler serves the read-only admin view of orders and deliveries.
type OrderHandler struct {
	orders *repository.OrderRepository
	logs   *repository.CallbackLogRepository
	logger *zap.Logger
}

func NewOrderHandler(orders *repository.OrderRepository, logs *repository.CallbackLogRepository, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, logs: logs, logger: logger}
}

// Get handles GET /api/orders/:order_id.
func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	orderID := c.Param("order_id")

	order, err := h.orders.FindByOrderID(ctx, orderID)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return c.JSON(http.StatusNotFound, models.APIResponse{Msg: "Order not found"})
	}
	if err != nil {
		h.logger.Error("Failed to load order", zap.String("order_id", orderID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.APIResponse{Msg: "Internal error"})
	}

	callbacks, err := h.logs.FindByOrderID(ctx, orderID, defaultCallbackLimit)
	if err != nil {
		h.logger.Error("Failed to load callback logs", zap.String("order_id", orderID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.APIResponse{Msg: "Internal error"})
	}
	return c.JSON(http.StatusOK, models.APIResponse{
		Status: true,
		Msg:    "Successful",
		Obj:    models.OrderView{Order: order, Callbacks: callbacks},
	})
}

// Callbacks handles GET /api/callbacks?order_id=&limit=.
func (h *OrderHandler) Callbacks(c echo.Context) error {
	orderID := c.QueryParam("order_id")
	if orderID == "" {
		return c.JSON(http.StatusBadRequest, models.APIResponse{Msg: "order_id is required"})
	}
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 || limit > 500 {
		limit = defaultCallbackLimit
	}

	callbacks, err := h.logs.FindByOrderID(c.Request().Context(), orderID, limit)
	if err != nil {
		h.logger.Error("Failed to load callback logs", zap.String("order_id", orderID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.APIResponse{Msg: "Internal error"})
	}
	return c.JSON(http.StatusOK, models.APIResponse{Status: true, Msg: "Successful", Obj: callbacks})
}

// Stats handles GET /api/orders/stats.
func (h *OrderHandler) Stats(c echo.Context) error {
	counts, err := h.orders.CountByStatus(c.Request().Context())
	if err != nil {
		h.logger.Error("Failed to count orders", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, models.APIResponse{Msg: "Internal error"})
	}
	return c.JSON(http.StatusOK, models.APIResponse{Status: true, Msg: "Successful", Obj: counts})
}
