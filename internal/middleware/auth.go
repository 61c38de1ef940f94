package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Vitorass0/sgu-auth-server/internal/auth"
	"github.com/Vitorass0/sgu-auth-server/internal/constants"
	"github.com/Vitorass0/sgu-auth-server/internal/utils"
)

const claimsContextKey = "auth_claims"

// TokenVerifier is satisfied by *auth.Verifier.
type TokenVerifier interface {
	VerifyAccessToken(ctx context.Context, rawToken string) (*auth.Claims, error)
}

// AuthRequired rejects requests without a valid bearer token and stores the
// verified claims on the context for downstream guards.
func AuthRequired(verifier TokenVerifier, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, constants.BearerTokenPrefix) {
			utils.RespondWithError(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized,
				"Missing or malformed authorization header", nil)
			c.Abort()
			return
		}

		rawToken := strings.TrimPrefix(header, constants.BearerTokenPrefix)

		claims, err := verifier.VerifyAccessToken(c.Request.Context(), rawToken)
		if err != nil {
			logger.Debug("Token verification failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err))
			utils.RespondWithError(c, http.StatusUnauthorized, utils.ErrCodeInvalidToken,
				"Invalid or expired token", nil)
			c.Abort()
			return
		}

		c.Set(claimsContextKey, claims)
		c.Set("user_id", claims.Subject)
		c.Next()
	}
}

// RequireRole allows the request through when the verified claims hold at
// least one of the given realm roles. Must run after AuthRequired.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			utils.RespondWithError(c, http.StatusUnauthorized, utils.ErrCodeUnauthorized,
				"Authentication required", nil)
			c.Abort()
			return
		}

		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}

		utils.RespondWithError(c, http.StatusForbidden, utils.ErrCodeForbidden,
			"Insufficient permissions", nil)
		c.Abort()
	}
}

func GetClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}

	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}
