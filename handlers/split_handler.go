package handlers

import (
	"net/http"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/service"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// SplitHandler handles HTTP requests for shared and personal expense records.
type SplitHandler struct {
	ledgerService service.LedgerService
}

// NewSplitHandler creates a new SplitHandler with the given dependencies.
func NewSplitHandler(ledgerService service.LedgerService) *SplitHandler {
	return &SplitHandler{ledgerService: ledgerService}
}

// CreateSplitHandler godoc
// @Summary Record a shared expense
// @Description Splits the total evenly across the payer and the listed participants; the stored amount is the per-person share
// @Tags splits
// @Accept json
// @Produce json
// @Param request body service.CreateSplitInput true "Split details"
// @Success 201 {object} types.Split
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse "Invalid amount or participants"
// @Router /splits [post]
// @Security BearerAuth
func (h *SplitHandler) CreateSplitHandler(c *gin.Context) {
	log := logger.GetLogger()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	var input service.CreateSplitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warnw("Invalid split payload", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	split, err := h.ledgerService.CreateSplit(c.Request.Context(), user, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, split)
}

// CreatePurchaseHandler godoc
// @Summary Record a personal expense
// @Description Stores a purchase with no counterparties; personal records never enter balance aggregation
// @Tags splits
// @Accept json
// @Produce json
// @Param request body service.CreatePurchaseInput true "Purchase details"
// @Success 201 {object} types.Split
// @Failure 400 {object} middleware.ErrorResponse
// @Router /purchases [post]
// @Security BearerAuth
func (h *SplitHandler) CreatePurchaseHandler(c *gin.Context) {
	log := logger.GetLogger()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	var input service.CreatePurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warnw("Invalid purchase payload", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	purchase, err := h.ledgerService.CreatePurchase(c.Request.Context(), user, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, purchase)
}
