// internal/api/middleware/auth.go
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"jobboard-api/internal/models"
	"jobboard-api/internal/services"
	"jobboard-api/internal/transport/dto"
)

const (
	authorizationHeader = "Authorization"
	// TokenCookie is the httpOnly cookie carrying the session token.
	TokenCookie = "token"
	userCtx     = "user"   // Key to store the authenticated user in context
	claimsCtx   = "claims" // Key to store the token claims in context
)

// Authenticator resolves a raw token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, *services.TokenClaims, error)
}

// JWTAuthMiddleware requires a valid session token from the Authorization header or the token cookie.
func JWTAuthMiddleware(auth Authenticator, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractToken(c)
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error(services.ErrLoginRequired.Error()))
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, services.ErrUnauthenticated) {
				logger.Debug("Auth middleware: rejected token", zap.Error(err))
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error(err.Error()))
				return
			}
			logger.Error("Auth middleware: authentication failed", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error("Internal Server Error"))
			return
		}

		SetAuthContext(c, user, claims)
		c.Next()
	}
}

// AuthorizeRoles allows only users holding one of roles. It must run after JWTAuthMiddleware.
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := GetUserFromContext(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error(services.ErrLoginRequired.Error()))
			return
		}
		if !slices.Contains(roles, user.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden,
				dto.Error(fmt.Sprintf("Role(%s) is not allowed to access this resource", user.Role)))
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	if header := c.GetHeader(authorizationHeader); header != "" {
		parts := strings.Fields(header)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return parts[1]
		}
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// SetAuthContext stores the authenticated user and claims for downstream handlers.
func SetAuthContext(c *gin.Context, user *models.User, claims *services.TokenClaims) {
	c.Set(userCtx, user)
	c.Set(claimsCtx, claims)
}

// GetUserFromContext returns the user stored by JWTAuthMiddleware.
func GetUserFromContext(c *gin.Context) (*models.User, error) {
	userAny, exists := c.Get(userCtx)
	if !exists {
		return nil, errors.New("user not found in context")
	}

	user, ok := userAny.(*models.User)
	if !ok || user == nil {
		return nil, errors.New("user in context is of invalid type")
	}

	return user, nil
}

// GetClaimsFromContext returns the token claims stored by JWTAuthMiddleware.
func GetClaimsFromContext(c *gin.Context) (*services.TokenClaims, error) {
	claimsAny, exists := c.Get(claimsCtx)
	if !exists {
		return nil, errors.New("claims not found in context")
	}
	claims, ok := claimsAny.(*services.TokenClaims)
	if !ok || claims == nil {
		return nil, errors.New("claims in context are of invalid type")
	}
	return claims, nil
}
