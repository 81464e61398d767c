package middleware

import (
	"strings"

	apperrors "github.com/SaveNTravel/saventravel-backend/errors"
	"github.com/SaveNTravel/saventravel-backend/logger"
	"github.com/SaveNTravel/saventravel-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the token claims the service relies on. The identity provider
// issues the token; this middleware only validates and extracts identity.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the bearer token and stores the caller's identity
// in the request context.
func AuthMiddleware(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.GetLogger()

		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Missing Authorization header")
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			abortUnauthorized(c, "Authorization header must use the Bearer scheme")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid {
			log.Warnw("Token validation failed",
				"error", err,
				"token", logger.MaskJWT(tokenString),
			)
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		if claims.Subject == "" || claims.Email == "" {
			abortUnauthorized(c, "Token is missing identity claims")
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UserEmailKey, strings.ToLower(claims.Email))
		c.Next()
	}
}

// CurrentUser extracts the authenticated identity stored by AuthMiddleware.
func CurrentUser(c *gin.Context) (types.UserIdentity, bool) {
	id := c.GetString(UserIDKey)
	email := c.GetString(UserEmailKey)
	if id == "" || email == "" {
		return types.UserIdentity{}, false
	}
	return types.UserIdentity{ID: id, Email: email}, true
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperrors.AuthenticationFailed(message))
	c.Abort()
}
