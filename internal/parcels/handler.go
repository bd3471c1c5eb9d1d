package parcels

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/parcels", h.Create)
	r.GET("/parcels/:id", h.Get)
	r.DELETE("/parcels/:id", h.Delete)
	r.GET("/parcels/:id/boundary", h.Boundary)
	r.GET("/parcels/:id/boundary/render", h.RenderBoundary)
	r.GET("/listings/:id/parcels", h.ListByListing)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	parcel, err := h.service.CreateParcel(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, parcel)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}
	parcel, err := h.service.GetParcel(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, parcel)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}
	if err := h.service.DeleteParcel(c.Request.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *Handler) Boundary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}
	parcel, err := h.service.GetParcel(c.Request.Context(), id)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"parcel_id":   parcel.ID,
		"raw_path":    parcel.RawPath,
		"clean_path":  parcel.CleanPath,
		"perimeter_m": parcel.PerimeterMeters,
		"area_ha":     parcel.AreaHectares,
		"usable":      parcel.HasBoundary(),
	})
}

func (h *Handler) RenderBoundary(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}
	width, err1 := strconv.ParseFloat(c.DefaultQuery("width", "300"), 64)
	height, err2 := strconv.ParseFloat(c.DefaultQuery("height", "300"), 64)
	if err1 != nil || err2 != nil || width <= 0 || height <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid viewport size"})
		return
	}
	commands, err := h.service.RenderBoundary(c.Request.Context(), id, width, height)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commands": commands})
}

func (h *Handler) ListByListing(c *gin.Context) {
	listingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid listing id"})
		return
	}
	list, err := h.service.ListByListing(c.Request.Context(), listingID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, list)
}
