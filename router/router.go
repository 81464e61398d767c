package router

import (
	"github.com/SaveNTravel/saventravel-backend/config"
	"github.com/SaveNTravel/saventravel-backend/handlers"
	"github.com/SaveNTravel/saventravel-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies holds everything required to set up the routes.
type Dependencies struct {
	Config         *config.Config
	FriendHandler  *handlers.FriendHandler
	BalanceHandler *handlers.BalanceHandler
	SplitHandler   *handlers.SplitHandler
	TripHandler    *handlers.TripHandler
	HealthHandler  *handlers.HealthHandler
}

// SetupRouter configures and returns the main Gin engine with all routes defined.
func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// Global middleware
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(&deps.Config.Server))

	// Health and metrics routes (no auth)
	r.GET("/health", deps.HealthHandler.DetailedHealth)
	r.GET("/health/liveness", deps.HealthHandler.LivenessCheck)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	v1.Use(middleware.AuthMiddleware(deps.Config.Server.JwtSecretKey))
	{
		// Friendship routes
		v1.GET("/friends", deps.FriendHandler.ListFriendsHandler)
		v1.GET("/friends/:email", deps.FriendHandler.ResolveFriendshipHandler)
		v1.POST("/friends/requests", deps.FriendHandler.SendFriendRequestHandler)
		v1.POST("/friends/requests/accept", deps.FriendHandler.AcceptFriendRequestHandler)
		v1.GET("/friends/:email/balance", deps.BalanceHandler.GetBalanceHandler)

		// Balance routes
		v1.GET("/balances", deps.BalanceHandler.ListBalancesHandler)

		// Ledger routes
		v1.POST("/splits", deps.SplitHandler.CreateSplitHandler)
		v1.POST("/purchases", deps.SplitHandler.CreatePurchaseHandler)

		// Trip routes
		v1.POST("/trips", deps.TripHandler.CreateTripHandler)
		v1.GET("/trips/:code", deps.TripHandler.GetTripHandler)
		v1.GET("/trips/:code/budget", deps.TripHandler.GetBudgetUsageHandler)
		v1.POST("/trips/:code/join", deps.TripHandler.JoinTripHandler)
		v1.DELETE("/trips/:code/members/me", deps.TripHandler.LeaveTripHandler)
	}

	return r
}
