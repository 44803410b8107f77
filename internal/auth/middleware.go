package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxUserIDKey    = "user_id"
	CtxStaffKey     = "is_staff"
	CtxSessionIDKey = "session_id"
)

func bearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if h == "" || !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(h, "Bearer "), true
}

func resolve(c *gin.Context, jwtMgr *JWTManager, sessions *SessionStore) (*Claims, bool) {
	token, ok := bearerToken(c)
	if !ok {
		return nil, false
	}
	claims, err := jwtMgr.Parse(token)
	if err != nil {
		return nil, false
	}
	live, err := sessions.Exists(c.Request.Context(), claims.SessionID)
	if err != nil || !live {
		return nil, false
	}
	return claims, true
}

// Middleware rejects requests without a valid, unrevoked access token.
func Middleware(jwtMgr *JWTManager, sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := resolve(c, jwtMgr, sessions)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxStaffKey, claims.Staff)
		c.Set(CtxSessionIDKey, claims.SessionID)
		c.Next()
	}
}

// Optional sets the user when a valid token is present and continues either
// way; add-to-cart needs this to answer unauthenticated AJAX calls with the
// storefront's soft payload instead of a hard 401.
func Optional(jwtMgr *JWTManager, sessions *SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := resolve(c, jwtMgr, sessions); ok {
			c.Set(CtxUserIDKey, claims.UserID)
			c.Set(CtxStaffKey, claims.Staff)
			c.Set(CtxSessionIDKey, claims.SessionID)
		}
		c.Next()
	}
}

// RequireStaff gates the admin surface.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		staff, _ := c.Get(CtxStaffKey)
		if isStaff, ok := staff.(bool); !ok || !isStaff {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "staff access required"})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user, false when the request is anonymous.
func UserID(c *gin.Context) (int64, bool) {
	v, ok := c.Get(CtxUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(int64)
	return id, ok
}
