package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/internal/application"
	"github.com/devtrail/bootcamper/internal/interface/middleware"
	"github.com/devtrail/bootcamper/pkg/response"
	"github.com/devtrail/bootcamper/pkg/validation"
)

// UserHandler is the admin-only account management surface.
type UserHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.UserService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

// List GET /api/v1/users (admin)
func (h *UserHandler) List(c *gin.Context) {
	res, err := h.Svc.List(c.Request.Context(), middleware.Identity(c), c.Request.URL.Query())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, res.Items, "", response.ListMeta{
		Count:      len(res.Items),
		Total:      res.Total,
		Pagination: res.Pagination,
	})
}

// Get GET /api/v1/users/:id (admin)
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.Get(c.Request.Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, u, "", nil)
}

// Create POST /api/v1/users (admin)
func (h *UserHandler) Create(c *gin.Context) {
	var in application.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Create(c.Request.Context(), middleware.Identity(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, u, "user created", nil)
}

// Update PUT /api/v1/users/:id (admin)
func (h *UserHandler) Update(c *gin.Context) {
	var in application.UserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, u, "user updated", nil)
}

// Delete DELETE /api/v1/users/:id (admin)
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"deleted": true}, "user deleted", nil)
}
