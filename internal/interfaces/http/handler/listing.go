package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	listingapp "github.com/estate/listings/internal/application/listing"
	"github.com/estate/listings/internal/domain/listing"
	"github.com/estate/listings/internal/interfaces/http/dto"
)

// ListingHandler serves the public list and detail screens
type ListingHandler struct {
	BaseHandler
	service *listingapp.Service
}

// NewListingHandler creates a new ListingHandler
func NewListingHandler(service *listingapp.Service) *ListingHandler {
	return &ListingHandler{service: service}
}

// RegisterRoutes mounts the public listing routes
func (h *ListingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	listings := rg.Group("/listings")
	listings.GET("", h.Browse)
	listings.GET("/options", h.Options)
	listings.GET("/:id", h.Get)
	listings.PATCH("/:id/comment", h.UpdateComment)
}

// Browse returns the listings matching the query filters, newest first.
// A store outage is not an error: the last fetched set is served with
// meta.stale set.
func (h *ListingHandler) Browse(c *gin.Context) {
	var q dto.BrowseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result := h.service.Browse(c.Request.Context(), q.Criteria())
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(result.Items, dto.Meta{
		Total:     result.Total,
		Matched:   result.Matched,
		Stale:     result.Stale,
		FetchedAt: result.FetchedAt,
	}))
}

// Options lists the selector values and the unbounded price ceiling
func (h *ListingHandler) Options(c *gin.Context) {
	h.Success(c, listingapp.OptionsResponse{
		Options:  listing.KnownOptions(),
		MaxPrice: listing.UnboundedPrice,
	})
}

// Get returns one listing
func (h *ListingHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}

	l, err := h.service.Get(c.Request.Context(), req.ID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, l)
}

// UpdateComment replaces a listing comment
func (h *ListingHandler) UpdateComment(c *gin.Context) {
	var uri dto.IDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		h.BindError(c, err)
		return
	}
	var req dto.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	l, err := h.service.UpdateComment(c.Request.Context(), uri.ID, req.Comment)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, l)
}
