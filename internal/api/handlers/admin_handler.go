package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"nearbot/internal/services"
)

type AdminHandler struct {
	importer *services.ImportService
}

func NewAdminHandler(importer *services.ImportService) *AdminHandler {
	return &AdminHandler{importer: importer}
}

// ImportToilets handles POST /admin/toilets/import. The import runs inside
// the request; config validation keeps the server write timeout above the
// registry fetch timeout.
func (h *AdminHandler) ImportToilets(c *gin.Context) {
	if h.importer == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "toilet import is not configured"})
		return
	}

	report, err := h.importer.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "report": report})
		return
	}
	c.JSON(http.StatusOK, report)
}
