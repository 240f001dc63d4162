package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListRooms lists open rooms.
func (h *Handler) ListRooms(c *gin.Context) {
	rooms := h.Rooms.List()
	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "count": len(rooms)})
}
