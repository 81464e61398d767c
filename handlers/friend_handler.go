package handlers

import (
	"net/http"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/internal/service"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/middleware"
	"github.com/gin-gonic/gin"
)

// FriendHandler handles HTTP requests for friendship resolution and friend
// requests.
type FriendHandler struct {
	friendshipService service.FriendshipService
}

// NewFriendHandler creates a new FriendHandler with the given dependencies.
func NewFriendHandler(friendshipService service.FriendshipService) *FriendHandler {
	return &FriendHandler{friendshipService: friendshipService}
}

// SendFriendRequestRequest defines the request body for sending a friend request.
type SendFriendRequestRequest struct {
	To string `json:"to" binding:"required,email"`
}

// AcceptFriendRequestRequest defines the request body for accepting a friend request.
type AcceptFriendRequestRequest struct {
	From string `json:"from" binding:"required,email"`
}

// ListFriendsHandler godoc
// @Summary List friends
// @Description Returns the caller's counterparts partitioned into established friendships and pending requests
// @Tags friends
// @Produce json
// @Success 200 {object} types.FriendList
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /friends [get]
// @Security BearerAuth
func (h *FriendHandler) ListFriendsHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	list, err := h.friendshipService.ListFriends(c.Request.Context(), user.Email)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ResolveFriendshipHandler godoc
// @Summary Resolve friendship state with one counterpart
// @Description Derives the relationship state from the raw request documents
// @Tags friends
// @Produce json
// @Param email path string true "Counterpart email"
// @Success 200 {object} types.FriendshipView
// @Failure 404 {object} middleware.ErrorResponse "No relationship exists"
// @Router /friends/{email} [get]
// @Security BearerAuth
func (h *FriendHandler) ResolveFriendshipHandler(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}
	counterpart := c.Param("email")

	view, err := h.friendshipService.ResolveFriendship(c.Request.Context(), user.Email, counterpart)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if view == nil {
		_ = c.Error(apperrors.NotFound("Friendship", logger.MaskEmail(counterpart)))
		return
	}
	c.JSON(http.StatusOK, view)
}

// SendFriendRequestHandler godoc
// @Summary Send a friend request
// @Description Creates a pending request from the caller to another user
// @Tags friends
// @Accept json
// @Produce json
// @Param request body SendFriendRequestRequest true "Request target"
// @Success 201 {object} types.FriendRequest
// @Failure 400 {object} middleware.ErrorResponse "Invalid target"
// @Failure 409 {object} middleware.ErrorResponse "Request already exists"
// @Router /friends/requests [post]
// @Security BearerAuth
func (h *FriendHandler) SendFriendRequestHandler(c *gin.Context) {
	log := logger.GetLogger()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	var req SendFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnw("Invalid friend request payload", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	created, err := h.friendshipService.SendFriendRequest(c.Request.Context(), user.Email, req.To)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// AcceptFriendRequestHandler godoc
// @Summary Accept a friend request
// @Description Transitions a pending request addressed to the caller into an established friendship
// @Tags friends
// @Accept json
// @Produce json
// @Param request body AcceptFriendRequestRequest true "Request sender"
// @Success 204 "Accepted"
// @Failure 404 {object} middleware.ErrorResponse "No pending request"
// @Router /friends/requests/accept [post]
// @Security BearerAuth
func (h *FriendHandler) AcceptFriendRequestHandler(c *gin.Context) {
	log := logger.GetLogger()

	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperrors.AuthenticationFailed("Not authenticated"))
		return
	}

	var req AcceptFriendRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warnw("Invalid accept request payload", "error", err)
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return
	}

	// Only the recipient can accept, so the pending direction is always
	// (sender -> caller).
	if err := h.friendshipService.AcceptFriendRequest(c.Request.Context(), req.From, user.Email); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
