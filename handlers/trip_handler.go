package handlers

import (
	"net/http"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/service"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// TripHandler handles HTTP requests for trips: membership and budget usage.
type TripHandler struct {
	tripService   service.TripService
	budgetService service.BudgetService
}

// NewTripHandler creates a new TripHandler with the given dependencies.
func NewTripHandler(tripService service.TripService, budgetService service.BudgetService) *TripHandler {
	return &TripHandler{tripService: tripService, budgetService: budgetService}
}

// GetTripHandler godoc
// @Summary Get one trip
// @Tags trips
// @Produce json
// @Param code path string true "Trip code"
// @Success 200 {object} types.Trip
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{code} [get]
// @Security BearerAuth
func (h *TripHandler) GetTripHandler(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// CreateTripHandler godoc
// @Summary Create a trip
// @Description Creates the shared trip document under a generated code and seeds the creator's budget allocation
// @Tags trips
// @Accept json
// @Produce json
// @Param request body service.CreateTripInput true "Trip details"
// @Success 201 {object} types.Trip
// @Failure 400 {object} middleware.ErrorResponse
// @Router /trips [post]
// @Security BearerAuth
func (h *TripHandler) CreateTripHandler(c *gin.Context) {
	log := logger.GetLogger()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	var input service.CreateTripInput
	if err := c.ShouldBindJSON(&input); err != nil {
		log.Warnw("Invalid trip payload", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	trip, err := h.tripService.CreateTrip(c.Request.Context(), user, input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

// GetBudgetUsageHandler godoc
// @Summary Budget consumption for one trip
// @Description Per-category spent and remaining amounts, including the synthetic residual bucket
// @Tags trips
// @Produce json
// @Param code path string true "Trip code"
// @Success 200 {object} types.BudgetUsage
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse "Invalid budget or purchase data"
// @Router /trips/{code}/budget [get]
// @Security BearerAuth
func (h *TripHandler) GetBudgetUsageHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	usage, err := h.budgetService.ComputeBudgetUsage(c.Request.Context(), user.ID, c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, usage)
}

// JoinTripHandler godoc
// @Summary Join a trip by code
// @Tags trips
// @Produce json
// @Param code path string true "Trip code"
// @Success 200 {object} types.Trip
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{code}/join [post]
// @Security BearerAuth
func (h *TripHandler) JoinTripHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	trip, err := h.tripService.JoinTrip(c.Request.Context(), user, c.Param("code"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

// LeaveTripHandler godoc
// @Summary Leave a trip
// @Description Removes the caller from the trip; the trip is deleted when the last participant leaves
// @Tags trips
// @Param code path string true "Trip code"
// @Success 204 "Left"
// @Failure 404 {object} middleware.ErrorResponse
// @Router /trips/{code}/members/me [delete]
// @Security BearerAuth
func (h *TripHandler) LeaveTripHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	if err := h.tripService.LeaveTrip(c.Request.Context(), user, c.Param("code")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
