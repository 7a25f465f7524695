package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nearbot/internal/domain/entities"
	"nearbot/internal/services"
)

// LocationHandler exposes the proximity searches as JSON for operators, so a
// deployment can be checked without sending LINE messages.
type LocationHandler struct {
	toilets *services.ToiletService
	garbage *services.GarbageService
}

func NewLocationHandler(toilets *services.ToiletService, garbage *services.GarbageService) *LocationHandler {
	return &LocationHandler{
		toilets: toilets,
		garbage: garbage,
	}
}

// SearchToilets handles GET /debug/toilets?lat=&lng=&address=
func (h *LocationHandler) SearchToilets(c *gin.Context) {
	if h.toilets == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "toilet search is not configured"})
		return
	}

	point, err := entities.ParseGeoPoint(c.Query("lat"), c.Query("lng"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.toilets.Search(c.Request.Context(), point, c.Query("address"))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// NearbyGarbage handles GET /debug/garbage. ?model=home switches to the
// home-distance search.
func (h *LocationHandler) NearbyGarbage(c *gin.Context) {
	if h.garbage == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "garbage tracking is not configured"})
		return
	}

	search := h.garbage.Nearby
	if c.Query("model") == "home" {
		search = h.garbage.HomeDistance
	}
	stops, err := search(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count": len(stops),
		"stops": stops,
		"text":  services.FormatStops(stops),
	})
}
