package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/devtrail/bootcamper/internal/application"
	"github.com/devtrail/bootcamper/internal/interface/middleware"
	"github.com/devtrail/bootcamper/pkg/response"
	"github.com/devtrail/bootcamper/pkg/validation"
)

// BootcampHandler exposes the bootcamp resource.
type BootcampHandler struct {
	Svc    *application.BootcampService
	Logger *logrus.Logger
}

func NewBootcampHandler(svc *application.BootcampService, logger *logrus.Logger) *BootcampHandler {
	return &BootcampHandler{Svc: svc, Logger: logger}
}

// List GET /api/v1/bootcamps
//
// The query string drives filtering, e.g.
// ?averageCost[lte]=10000&careers[in]=Business&select=name,description&sort=-name&page=2&limit=5
func (h *BootcampHandler) List(c *gin.Context) {
	res, err := h.Svc.List(c.Request.Context(), c.Request.URL.Query())
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

// Get GET /api/v1/bootcamps/:id
func (h *BootcampHandler) Get(c *gin.Context) {
	b, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, b, "", nil)
}

// Create POST /api/v1/bootcamps (publisher or admin)
func (h *BootcampHandler) Create(c *gin.Context) {
	var in application.BootcampInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Svc.Create(c.Request.Context(), middleware.Identity(c), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusCreated, b, "bootcamp created", nil)
}

// Update PUT /api/v1/bootcamps/:id (owner or admin)
func (h *BootcampHandler) Update(c *gin.Context) {
	var in application.BootcampInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	b, err := h.Svc.Update(c.Request.Context(), middleware.Identity(c), c.Param("id"), in)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, b, "bootcamp updated", nil)
}

// Delete DELETE /api/v1/bootcamps/:id (owner or admin)
//
// Courses and reviews under the bootcamp are removed with it.
func (h *BootcampHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.Identity(c), c.Param("id")); err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"deleted": true}, "bootcamp deleted", nil)
}

// WithinRadius GET /api/v1/bootcamps/radius/:zipcode/:distance
func (h *BootcampHandler) WithinRadius(c *gin.Context) {
	distance, err := strconv.ParseFloat(c.Param("distance"), 64)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "distance must be a number of kilometres", nil)
		return
	}
	items, err := h.Svc.WithinRadius(c.Request.Context(), c.Param("zipcode"), distance)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, items, "", map[string]any{"count": len(items)})
}

// UploadPhoto PUT /api/v1/bootcamps/:id/photo (owner or admin)
func (h *BootcampHandler) UploadPhoto(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "photo file is required", nil)
		return
	}
	url, err := h.Svc.UploadPhoto(c.Request.Context(), middleware.Identity(c), c.Param("id"), fh)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK[any](c, http.StatusOK, map[string]any{"photo": url}, "photo uploaded", nil)
}

// Search GET /api/v1/bootcamps/search?q=...&limit=...
func (h *BootcampHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	items, err := h.Svc.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.OK(c, http.StatusOK, items, "", map[string]any{"count": len(items)})
}
