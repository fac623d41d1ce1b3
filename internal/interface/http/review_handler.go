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

// ReviewHandler exposes the review resource, both top-level and nested under
// a bootcamp.
type ReviewHandler struct {
	Svc    *application.ReviewService
	Logger *logrus.Logger
}

func NewReviewHandler(svc *application.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Svc: svc, Logger: logger}
}

// List GET /api/v1/reviews and GET /api/v1/bootcamps/:id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	res, err := h.Svc.List(c.Request.Context(), c.Param("id"), c.Request.URL.Query())
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

// Get GET /api/v1/reviews/:id
func (h *ReviewHandler) Get(c *gin.Context) {
	r, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, r, "", nil)
}

// Create POST /api/v1/bootcamps/:id/reviews (user role)
func (h *ReviewHandler) Create(c *gin.Context) {
	var in application.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	r, err := h.Svc.Create(c.Request.Context(), middleware.Identity(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, r, "review created", nil)
}

// Update PUT /api/v1/reviews/:id (owner or admin)
func (h *ReviewHandler) Update(c *gin.Context) {
	var in application.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	r, err := h.Svc.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, r, "review updated", nil)
}

// Delete DELETE /api/v1/reviews/:id (owner or admin)
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"deleted": true}, "review deleted", nil)
}
