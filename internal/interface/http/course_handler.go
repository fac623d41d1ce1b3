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

// CourseHandler exposes the course resource, both top-level and nested under
// a bootcamp.
type CourseHandler struct {
	Svc    *application.CourseService
	Logger *logrus.Logger
}

func NewCourseHandler(svc *application.CourseService, logger *logrus.Logger) *CourseHandler {
	return &CourseHandler{Svc: svc, Logger: logger}
}

// List GET /api/v1/courses and GET /api/v1/bootcamps/:id/courses
func (h *CourseHandler) List(c *gin.Context) {
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

// Get GET /api/v1/courses/:id
func (h *CourseHandler) Get(c *gin.Context) {
	course, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, course, "", nil)
}

// Create POST /api/v1/bootcamps/:id/courses (bootcamp owner or admin)
func (h *CourseHandler) Create(c *gin.Context) {
	var in application.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	course, err := h.Svc.Create(c.Request.Context(), middleware.Identity(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, course, "course created", nil)
}

// Update PUT /api/v1/courses/:id (owner or admin)
func (h *CourseHandler) Update(c *gin.Context) {
	var in application.CourseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	course, err := h.Svc.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, course, "course updated", nil)
}

// Delete DELETE /api/v1/courses/:id (owner or admin)
func (h *CourseHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"deleted": true}, "course deleted", nil)
}
