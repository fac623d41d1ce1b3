package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/internal/application"
	"github.com/devtrail/bootcamper/internal/domain/authz"
	"github.com/devtrail/bootcamper/internal/interface/middleware"
	"github.com/devtrail/bootcamper/pkg/helpers"
	"github.com/devtrail/bootcamper/pkg/response"
	"github.com/devtrail/bootcamper/pkg/validation"
)

// AuthHandler exposes registration, login and credential management.
type AuthHandler struct {
	Svc     *application.AuthService
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,oneof=user publisher"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateDetailsRequest struct {
	Name  string `json:"name" binding:"omitempty,max=50"`
	Email string `json:"email" binding:"omitempty,email"`
}

type updatePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,pwd"`
}

type forgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resetPasswordRequest struct {
	Password string `json:"password" binding:"required,pwd"`
}

// Register POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password, authz.Role(req.Role))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, u, "registered", nil)
}

// Login POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.OK(c, http.StatusOK, u, "login successful", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Refresh POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Fail(c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.FromError(c, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.OK[any](c, http.StatusOK, map[string]any{"refreshed": true}, "token refreshed", map[string]any{
		"access_expires_at":  pair.AccessTokenExpiry,
		"refresh_expires_at": pair.RefreshTokenExpiry,
	})
}

// Logout POST /api/v1/auth/logout (auth required)
func (h *AuthHandler) Logout(c *gin.Context) {
	id := middleware.Identity(c)
	if id != nil {
		if err := h.Svc.Logout(c.Request.Context(), id.ID); err != nil && h.Logger != nil {
			h.Logger.WithError(err).Warn("logout: session drop failed")
		}
	}
	h.Cookies.Clear(c)
	response.OK[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

// Me GET /api/v1/auth/me (auth required)
func (h *AuthHandler) Me(c *gin.Context) {
	id := middleware.Identity(c)
	u, err := h.Svc.Me(c.Request.Context(), id.ID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, u, "profile", nil)
}

// UpdateDetails PUT /api/v1/auth/updatedetails (auth required)
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	id := middleware.Identity(c)
	var req updateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.UpdateDetails(c.Request.Context(), id.ID, req.Name, req.Email)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, u, "details updated", nil)
}

// UpdatePassword PUT /api/v1/auth/updatepassword (auth required)
func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	id := middleware.Identity(c)
	var req updatePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.UpdatePassword(c.Request.Context(), id.ID, req.CurrentPassword, req.NewPassword); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"updated": true}, "password updated", nil)
}

// ForgotPassword POST /api/v1/auth/forgotpassword
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		response.FromError(c, err)
		return
	}
	// Same response whether or not the email exists.
	response.OK[any](c, http.StatusOK, map[string]any{"sent": true}, "reset email sent if the account exists", nil)
}

// ResetPassword PUT /api/v1/auth/resetpassword/:token
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	if err := h.Svc.ResetPassword(c.Request.Context(), c.Param("token"), req.Password); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"reset": true}, "password reset", nil)
}
