package middleware

import (
	"context"
	"net/http"
	"strings"

	"woolcrafts-backend/logging"
	"woolcrafts-backend/models"
	"woolcrafts-backend/services"
	"woolcrafts-backend/utils"

	"github.com/gin-gonic/gin"
)

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// RevocationChecker reports whether a token id was revoked by logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authenticate validates the bearer token and checks it against the revocation list.
// The returned status is 0 on success.
func authenticate(c *gin.Context, rc RevocationChecker, token string) (*utils.Claims, int, string) {
	claims, err := utils.ValidateToken(token)
	if err != nil {
		return nil, http.StatusForbidden, "Invalid or expired token"
	}
	if rc != nil {
		revoked, err := rc.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			logging.FromContext(c.Request.Context()).Error("revocation check failed", "error", err)
			return nil, http.StatusInternalServerError, "Server error. Please try again later."
		}
		if revoked {
			return nil, http.StatusForbidden, "Invalid or expired token"
		}
	}
	return claims, 0, ""
}

func setIdentity(c *gin.Context, claims *utils.Claims) {
	c.Set(claimsKey, claims)
	c.Set(actorKey, &services.Actor{UserID: claims.UserID, Role: models.Role(claims.Role)})

	ctx := c.Request.Context()
	l := logging.FromContext(ctx).With("user_id", claims.UserID)
	c.Request = c.Request.WithContext(logging.IntoContext(ctx, l))
}

// RequireAuth rejects requests without a valid, unrevoked bearer token.
func RequireAuth(rc RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			abort(c, http.StatusUnauthorized, "Access token required")
			return
		}
		claims, status, msg := authenticate(c, rc, token)
		if status != 0 {
			abort(c, status, msg)
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is sent and otherwise
// lets the request through as a guest.
func OptionalAuth(rc RevocationChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			claims, status, _ := authenticate(c, rc, token)
			if status == 0 {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// AdminOnly must run after RequireAuth.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).IsAdmin() {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller, or nil for a guest.
func ActorFrom(c *gin.Context) *services.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*services.Actor)
	return actor
}

func ClaimsFrom(c *gin.Context) *utils.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*utils.Claims)
	return claims
}
