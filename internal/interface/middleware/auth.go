package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/pkg/apperr"
	"github.com/devtrail/bootcamper/pkg/helpers"
	"github.com/devtrail/bootcamper/pkg/response"
)

// Context keys set by the auth middleware.
const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

// Identity returns the caller's identity, or nil for anonymous requests.
func Identity(c *gin.Context) *authz.Identity {
	v, ok := c.Get(CtxIdentityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*authz.Identity)
	return id
}

// resolveIdentity validates the access token and matches it against the live
// Redis session. The session hash carries the role, so no store round-trip is
// needed per request.
func resolveIdentity(c *gin.Context, rdb *redis.Client, jwt *helpers.JWTManager) (*authz.Identity, error) {
	token := tokenFromRequest(c)
	if token == "" {
		return nil, apperr.Authentication("missing access token")
	}
	claims, err := jwt.ParseAccessToken(token)
	if err != nil {
		return nil, apperr.Authentication("invalid access token")
	}
	data, err := rdb.HGetAll(c.Request.Context(), "user:session:"+claims.UserID).Result()
	if err != nil || len(data) == 0 {
		return nil, apperr.Authentication("session not found")
	}
	if data["sid"] != claims.SessionID {
		return nil, apperr.Authentication("session superseded")
	}
	role := authz.Role(data["role"])
	if !authz.ValidRole(role) {
		return nil, apperr.Authentication("session corrupt")
	}
	return &authz.Identity{ID: claims.UserID, Role: role}, nil
}

// tokenFromRequest prefers the cookie, falling back to a Bearer header for
// non-browser clients.
func tokenFromRequest(c *gin.Context) string {
	if tok, err := c.Cookie("access_token"); err == nil && tok != "" {
		return tok
	}
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// RequireAuth rejects anonymous requests. On success the identity is stored
// in the Gin context for handlers and per-user rate limiting.
func RequireAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := resolveIdentity(c, rdb, jwt)
		if err != nil {
			response.AbortFromError(c, err)
			return
		}
		c.Set(CtxIdentityKey, id)
		c.Set(CtxUserIDKey, id.ID)
		c.Next()
	}
}

// OptionalAuth resolves the identity when credentials are present but lets
// anonymous requests through. Public read endpoints use it so that admin
// callers still get owner-bypass semantics.
func OptionalAuth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenFromRequest(c) == "" {
			c.Next()
			return
		}
		id, err := resolveIdentity(c, rdb, jwt)
		if err != nil {
			// present but invalid credentials are an error, not anonymity
			response.AbortFromError(c, err)
			return
		}
		c.Set(CtxIdentityKey, id)
		c.Set(CtxUserIDKey, id.ID)
		c.Next()
	}
}
