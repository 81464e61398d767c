package handlers

import (
	"net/http"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/service"
	"github.com/SaveNTravel/saventravel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// BalanceHandler handles HTTP requests for net balance computation.
type BalanceHandler struct {
	balanceService service.BalanceService
}

// NewBalanceHandler creates a new BalanceHandler with the given dependencies.
func NewBalanceHandler(balanceService service.BalanceService) *BalanceHandler {
	return &BalanceHandler{balanceService: balanceService}
}

// GetBalanceHandler godoc
// @Summary Net balance with one friend
// @Description Computes credit and debit totals between the caller and one counterpart, optionally scoped to a trip
// @Tags balances
// @Produce json
// @Param email path string true "Counterpart email"
// @Param tripCode query string false "Restrict to one trip"
// @Success 200 {object} types.BalanceEntry
// @Failure 502 {object} middleware.ErrorResponse "A constituent fetch failed"
// @Router /friends/{email}/balance [get]
// @Security BearerAuth
func (h *BalanceHandler) GetBalanceHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	counterpart := c.Param("email")
	tripCode := c.Query("tripCode")

	entry, err := h.balanceService.ComputeBalance(c.Request.Context(), user.Email, counterpart, tripCode)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListBalancesHandler godoc
// @Summary Net balances with every established friend
// @Description Computes one balance entry per friend; failed scopes are reported separately and do not affect the others
// @Tags balances
// @Produce json
// @Success 200 {object} service.BalanceReport
// @Router /balances [get]
// @Security BearerAuth
func (h *BalanceHandler) ListBalancesHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	report, err := h.balanceService.ComputeAllBalances(c.Request.Context(), user.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, report)
}
