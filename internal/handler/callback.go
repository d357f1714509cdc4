package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"paycallback/internal/payment"
	"paycallback/internal/pkg/utils"
	"paycallback/internal/settlement"
)

// maxCallbackBody bounds how much of a callback body is read.
const maxCallbackBody = 1 << 20

var errBodyTooLarge = errors.New("callback body too large")

// CallbackHandler receives gateway callbacks.
type CallbackHandler struct {
	dispatcher *settlement.Dispatcher
	logger     *zap.Logger
}

func NewCallbackHandler(dispatcher *settlement.Dispatcher, logger *zap.Logger) *CallbackHandler {
	return &CallbackHandler{dispatcher: dispatcher, logger: logger}
}

// Gateway handles POST /callback/:provider.
func (h *CallbackHandler) Gateway(c echo.Context) error {
	provider := c.Param("provider")
	env, err := h.envelope(c, provider)
	if err != nil {
		return unreadable(c, err)
	}
	ack := h.dispatcher.Handle(c.Request().Context(), provider, env)
	return c.JSON(ack.HTTPStatus, ack.Body)
}

// Donate handles POST /callback/donate.
func (h *CallbackHandler) Donate(c echo.Context) error {
	env, err := h.envelope(c, payment.DonationRoute)
	if err != nil {
		return unreadable(c, err)
	}
	ack := h.dispatcher.HandleDonation(c.Request().Context(), env)
	return c.JSON(ack.HTTPStatus, ack.Body)
}

// envelope reads the raw body. A body that is not a JSON object still yields
// an envelope; the adapter reports it as malformed.
func (h *CallbackHandler) envelope(c echo.Context, provider string) (*payment.Envelope, error) {
	req := c.Request()
	raw, err := io.ReadAll(io.LimitReader(req.Body, maxCallbackBody+1))
	if err != nil {
		h.logger.Warn("Failed to read callback body", zap.String("provider", provider), zap.Error(err))
		return nil, err
	}
	if len(raw) > maxCallbackBody {
		h.logger.Warn("Callback body too large", zap.String("provider", provider), zap.String("ip", c.RealIP()))
		return nil, errBodyTooLarge
	}

	env, _ := payment.NewEnvelope(provider, req.URL.Path, req.Header.Clone(), raw)
	env.RequestID = req.Header.Get(echo.HeaderXRequestID)
	if env.RequestID == "" {
		env.RequestID = utils.GenerateRequestID()
	}
	c.Response().Header().Set(echo.HeaderXRequestID, env.RequestID)

	h.logger.Debug("Callback received",
		zap.String("provider", provider),
		zap.String("request_id", env.RequestID),
		zap.String("ip", c.RealIP()),
		zap.Int("bytes", len(raw)))
	return env, nil
}

func unreadable(c echo.Context, err error) error {
	if errors.Is(err, errBodyTooLarge) {
		return c.JSON(http.StatusRequestEntityTooLarge, map[string]interface{}{"status": "error", "message": "Payload too large"})
	}
	return c.JSON(http.StatusBadRequest, map[string]interface{}{"status": "error", "message": "Unreadable body"})
}
