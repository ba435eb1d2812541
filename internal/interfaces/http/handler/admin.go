package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/interfaces/http/dto"
)

// AdminHandler serves the admin screen: the submission form, deletes and
// the bulk seed and purge actions
type AdminHandler struct {
	BaseHandler
	service *listingapp.Service
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(service *listingapp.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// RegisterRoutes mounts the admin routes. The group is expected to carry
// the JWT middleware already.
func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/form", h.Form)
	rg.POST("/floor-plans/upload-url", h.FloorPlanUploadURL)

	listings := rg.Group("/listings")
	listings.POST("", h.Submit)
	listings.POST("/seed", h.Seed)
	listings.DELETE("", h.DeleteAll)
	listings.DELETE("/:id", h.Delete)
}

// Form returns an empty form with the selector options
func (h *AdminHandler) Form(c *gin.Context) {
	h.Success(c, h.service.NewForm())
}

// Submit stores the listing built from the raw form. Fields are coerced,
// never rejected.
func (h *AdminHandler) Submit(c *gin.Context) {
	var form listing.Form
	if err := c.ShouldBindJSON(&form); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Submit(c.Request.Context(), form)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// Delete removes one listing
func (h *AdminHandler) Delete(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), req.ID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Seed generates listings. An empty body seeds the default count.
func (h *AdminHandler) Seed(c *gin.Context) {
	var req dto.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.BindError(c, err)
		return
	}

	result, err := h.service.Seed(c.Request.Context(), req.Count)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// DeleteAll removes every listing. Per-listing failures are only counted.
func (h *AdminHandler) DeleteAll(c *gin.Context) {
	h.Success(c, h.service.DeleteAll(c.Request.Context()))
}

// FloorPlanUploadURL presigns a direct upload for a floor plan image
func (h *AdminHandler) FloorPlanUploadURL(c *gin.Context) {
	var req dto.FloorPlanUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ticket, err := h.service.FloorPlanUploadURL(c.Request.Context(), req.Filename, req.ContentType)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ticket)
}
