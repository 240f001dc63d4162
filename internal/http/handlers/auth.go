package handlers

import (
	"net/http"
	"strings"
	"time"

	"skirmish/internal/domain"
	"skirmish/internal/logger"
	"skirmish/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxNameLength = 32

type guestRequest struct {
	Name string `json:"name"`
}

// Guest issues a token for a new guest player. Without a database the id is
// random and nothing is stored.
func (h *Handler) Guest(c *gin.Context) {
	var req guestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
	}
	name := strings.TrimSpace(req.Name)
	if len(name) > maxNameLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name too long"})
		return
	}

	p := &domain.Player{Name: name}
	if h.Players != nil {
		if err := h.Players.Create(c.Request.Context(), p); err != nil {
			logger.Error("create guest failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create player"})
			return
		}
	} else {
		p.ID = int64(uuid.New().ID())
		if p.ID == 0 {
			p.ID = 1
		}
		p.CreatedAt = time.Now().UTC()
	}

	token, err := service.GenerateJWT(p.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token generation failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":  token,
		"player": p,
	})
}
