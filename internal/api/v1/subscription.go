package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netbill/netbill/internal/api/dto"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	"github.com/netbill/netbill/internal/service"
)

type SubscriptionHandler struct {
	subscriptionService service.SubscriptionService
	logger              *logger.Logger
}

func NewSubscriptionHandler(subscriptionService service.SubscriptionService, logger *logger.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptionService: subscriptionService,
		logger:              logger,
	}
}

// @Summary Open a payment order
// @Description Opens a gateway order for a new subscription checkout
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order request"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /subscriptions/orders [post]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) CreateOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Verify a payment and create the subscription
// @Description Verifies the gateway payment proof and creates the subscription on success
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param payment body dto.VerifyPaymentRequest true "Payment proof"
// @Success 200 {object} dto.VerifyPaymentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscriptions/verify [post]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.VerifyAndSubscribe(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Open an upgrade payment order
// @Description Opens a gateway order for upgrading the connection's active subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param order body dto.CreateOrderRequest true "Order request"
// @Success 200 {object} dto.OrderResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /subscriptions/upgrade/orders [post]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) CreateUpgradeOrder(c *gin.Context) {
	var req dto.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.CreateUpgradeOrder(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Verify an upgrade payment
// @Description Verifies the payment proof and replaces the current subscription
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param payment body dto.VerifyPaymentRequest true "Payment proof"
// @Success 200 {object} dto.VerifyPaymentResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /subscriptions/upgrade/verify [post]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) VerifyUpgrade(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.VerifyAndUpgrade(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Cancel a subscription
// @Description Cancels the caller's subscription, promoting a queued one if present
// @Tags Subscriptions
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /subscriptions/{id}/cancel [post]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) CancelSubscription(c *gin.Context) {
	response, err := h.subscriptionService.CancelSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List my subscriptions
// @Description Lists the caller's subscription history, optionally scoped to one connection
// @Tags Subscriptions
// @Produce json
// @Param connection_id query string false "Connection ID"
// @Success 200 {object} dto.ListSubscriptionsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /subscriptions [get]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) ListMySubscriptions(c *gin.Context) {
	response, err := h.subscriptionService.ListMySubscriptions(c.Request.Context(), c.Query("connection_id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List all subscriptions
// @Description Lists every subscription in the system
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.ListSubscriptionsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/subscriptions [get]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) ListAllSubscriptions(c *gin.Context) {
	response, err := h.subscriptionService.ListAllSubscriptions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a subscription
// @Description Admin override edit of a subscription record; cancelled subscriptions are immutable
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Subscription ID"
// @Param subscription body dto.AdminUpdateSubscriptionRequest true "Subscription update"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/subscriptions/{id} [put]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) AdminUpdateSubscription(c *gin.Context) {
	var req dto.AdminUpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.subscriptionService.AdminUpdateSubscription(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Cancel any subscription
// @Description Admin override cancellation of any subscription
// @Tags Admin
// @Produce json
// @Param id path string true "Subscription ID"
// @Success 200 {object} dto.SubscriptionResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/subscriptions/{id} [delete]
// @Security ApiKeyAuth
func (h *SubscriptionHandler) AdminCancelSubscription(c *gin.Context) {
	response, err := h.subscriptionService.AdminCancelSubscription(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}
