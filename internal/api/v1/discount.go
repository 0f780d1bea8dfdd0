package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/netbill/netbill/internal/api/dto"
	ierr "github.com/netbill/netbill/internal/errors"
	"github.com/netbill/netbill/internal/logger"
	"github.com/netbill/netbill/internal/service"
)

type DiscountHandler struct {
	discountService service.DiscountService
	logger          *logger.Logger
}

func NewDiscountHandler(discountService service.DiscountService, logger *logger.Logger) *DiscountHandler {
	return &DiscountHandler{
		discountService: discountService,
		logger:          logger,
	}
}

// @Summary Apply a discount code
// @Description Applies a promo code to an order amount and records the usage
// @Tags Discounts
// @Accept json
// @Produce json
// @Param discount body dto.ApplyDiscountRequest true "Apply request"
// @Success 200 {object} dto.ApplyDiscountResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /discounts/apply [post]
// @Security ApiKeyAuth
func (h *DiscountHandler) ApplyDiscount(c *gin.Context) {
	var req dto.ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.discountService.ApplyDiscount(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary List active discounts
// @Description Lists the currently active promo codes
// @Tags Discounts
// @Produce json
// @Success 200 {object} dto.ListDiscountsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /discounts [get]
// @Security ApiKeyAuth
func (h *DiscountHandler) ListActiveDiscounts(c *gin.Context) {
	response, err := h.discountService.ListActiveDiscounts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Create a discount
// @Description Creates a new promo code
// @Tags Admin
// @Accept json
// @Produce json
// @Param discount body dto.CreateDiscountRequest true "Discount request"
// @Success 201 {object} dto.DiscountResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 409 {object} middleware.ErrorResponse
// @Router /admin/discounts [post]
// @Security ApiKeyAuth
func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var req dto.CreateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.discountService.CreateDiscount(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// @Summary List all discounts
// @Description Lists every promo code with usage counters
// @Tags Admin
// @Produce json
// @Success 200 {object} dto.ListDiscountsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /admin/discounts [get]
// @Security ApiKeyAuth
func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	response, err := h.discountService.ListDiscounts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get a discount by ID
// @Description Retrieves a promo code with its usage counters
// @Tags Admin
// @Produce json
// @Param id path string true "Discount ID"
// @Success 200 {object} dto.DiscountResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/discounts/{id} [get]
// @Security ApiKeyAuth
func (h *DiscountHandler) GetDiscount(c *gin.Context) {
	response, err := h.discountService.GetDiscount(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Update a discount
// @Description Updates a promo code; counters are not editable
// @Tags Admin
// @Accept json
// @Produce json
// @Param id path string true "Discount ID"
// @Param discount body dto.UpdateDiscountRequest true "Discount update"
// @Success 200 {object} dto.DiscountResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/discounts/{id} [put]
// @Security ApiKeyAuth
func (h *DiscountHandler) UpdateDiscount(c *gin.Context) {
	var req dto.UpdateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	response, err := h.discountService.UpdateDiscount(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Delete a discount
// @Description Deletes a promo code
// @Tags Admin
// @Produce json
// @Param id path string true "Discount ID"
// @Success 200 {object} gin.H
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/discounts/{id} [delete]
// @Security ApiKeyAuth
func (h *DiscountHandler) DeleteDiscount(c *gin.Context) {
	if err := h.discountService.DeleteDiscount(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
