package photos

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

const maxPhotoBytes = 32 << 20 // 32 MiB

// Handler exposes photo node endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/parcels/:id/photos", h.Upload)
	r.GET("/parcels/:id/photos", h.ListByParcel)
	r.GET("/photos/:id", h.Get)
	r.DELETE("/photos/:id", h.Delete)
}

// Upload accepts a multipart form with a "photo" file plus lat, lng,
// caption and captured_at fields.
func (h *Handler) Upload(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo file is required"})
		return
	}
	if fileHeader.Size > maxPhotoBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "photo exceeds size limit"})
		return
	}

	lat, errLat := strconv.ParseFloat(c.PostForm("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.PostForm("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	capturedAt := time.Time{}
	if v := c.PostForm("captured_at"); v != "" {
		capturedAt, err = time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "captured_at must be RFC 3339"})
			return
		}
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()

	photo, err := h.service.Upload(c.Request.Context(), UploadRequest{
		ParcelID:    parcelID,
		Location:    geo.GeoPoint{Lat: lat, Lng: lng},
		Caption:     c.PostForm("caption"),
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Body:        file,
		CapturedAt:  capturedAt,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, photo)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	view, err := h.service.GetPhoto(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) ListByParcel(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}

	views, err := h.service.ListByParcel(c.Request.Context(), parcelID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photos": views, "count": len(views)})
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid photo id"})
		return
	}

	if err := h.service.DeletePhoto(c.Request.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "photo not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
