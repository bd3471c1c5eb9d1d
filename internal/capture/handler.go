package capture

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"ground-truth/land-portal/land-portal-backend/pkg/geo"
)

// Handler exposes the capture session API consumed by the mobile capture
// screen. The device posts its location-watch output to the fixes
// endpoint; the gateway fans it into the active session.
type Handler struct {
	service *Service
	gateway *DeviceGateway
}

func NewHandler(service *Service, gateway *DeviceGateway) *Handler {
	return &Handler{service: service, gateway: gateway}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/capture/:parcelId/start", h.Start)
	r.POST("/capture/:parcelId/fixes", h.PushFix)
	r.POST("/capture/:parcelId/stop", h.Stop)
	r.GET("/capture/:parcelId/preview", h.Preview)
	r.GET("/capture/active", h.Active)
}

func (h *Handler) Start(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("parcelId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}
	if err := h.service.Start(c.Request.Context(), parcelID); err != nil {
		if errors.Is(err, ErrLocationUnavailable) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "location services unavailable on this device"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "capturing", "parcel_id": parcelID})
}

type fixRequest struct {
	Lat      *float64 `json:"lat"`
	Lng      *float64 `json:"lng"`
	Accuracy float64  `json:"accuracy"`
	Error    string   `json:"error"`
}

func (h *Handler) PushFix(c *gin.Context) {
	var req fixRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// A device may report a failed reading with no coordinates.
	if req.Error != "" {
		if !h.gateway.PushError(errors.New(req.Error)) {
			c.JSON(http.StatusConflict, gin.H{"error": "no active capture session"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "error reported"})
		return
	}
	if req.Lat == nil || req.Lng == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng are required"})
		return
	}

	delivered := h.gateway.PushFix(Fix{
		Point:    geo.GeoPoint{Lat: *req.Lat, Lng: *req.Lng},
		Accuracy: req.Accuracy,
		Time:     time.Now().UTC(),
	})
	if !delivered {
		c.JSON(http.StatusConflict, gin.H{"error": "no active capture session"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

func (h *Handler) Stop(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("parcelId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid parcel id"})
		return
	}
	result, err := h.service.Stop(c.Request.Context(), parcelID)
	if err != nil {
		if errors.Is(err, ErrNotCapturing) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Preview(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("parcelId"))
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

	commands, err := h.service.Preview(parcelID, width, height)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"commands": commands})
}

func (h *Handler) Active(c *gin.Context) {
	parcelID, ok := h.service.Active()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"state": StateIdle.String()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": StateCapturing.String(), "parcel_id": parcelID})
}
