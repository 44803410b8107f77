package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	repo     Repository
	jwt      *JWTManager
	sessions *SessionStore
}

func NewHandler(repo Repository, jwt *JWTManager, sessions *SessionStore) *Handler {
	return &Handler{repo: repo, jwt: jwt, sessions: sessions}
}

// Signup godoc
// @Summary Register a customer account
// @Accept json
// @Produce json
// @Param credentials body auth.CredentialsRequest true "credentials"
// @Success 201 {object} auth.TokenResponse
// @Failure 409 {object} catalog.HTTPError
// @Router /signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}
	// signups are customers, never staff
	u := &User{Username: req.Username, PasswordHash: hash, IsStaff: false}
	if err := h.repo.Create(c.Request.Context(), u); err != nil {
		if errors.Is(err, ErrAlreadyExist) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already taken"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create account"})
		return
	}
	h.issue(c, u, http.StatusCreated)
}

// Login godoc
// @Summary Log in and receive an access token
// @Accept json
// @Produce json
// @Param credentials body auth.CredentialsRequest true "credentials"
// @Success 200 {object} auth.TokenResponse
// @Failure 401 {object} catalog.HTTPError
// @Router /login [post]
func (h *Handler) Login(c *gin.Context) {
	h.login(c, false)
}

// StaffLogin rejects accounts without staff access; it fronts the admin
// surface the way the storefront login fronts the shop.
func (h *Handler) StaffLogin(c *gin.Context) {
	h.login(c, true)
}

func (h *Handler) login(c *gin.Context, staffOnly bool) {
	var req CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}
	u, err := Authenticate(c.Request.Context(), h.repo, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if staffOnly && !u.IsStaff {
		c.JSON(http.StatusForbidden, gin.H{"error": "this account does not have staff access"})
		return
	}
	h.issue(c, u, http.StatusOK)
}

// Logout revokes the current session; the token stops working immediately.
func (h *Handler) Logout(c *gin.Context) {
	sid, _ := c.Get(CtxSessionIDKey)
	if id, ok := sid.(string); ok && id != "" {
		_ = h.sessions.Delete(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Me returns the authenticated account.
func (h *Handler) Me(c *gin.Context) {
	id, ok := UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	u, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) issue(c *gin.Context, u *User, status int) {
	sid, err := h.sessions.Create(c.Request.Context(), u.ID, u.IsStaff)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}
	token, exp, err := h.jwt.Sign(u.ID, u.IsStaff, sid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}
	c.JSON(status, TokenResponse{Token: token, ExpiresAt: exp, User: *u})
}
