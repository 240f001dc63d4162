package handlers

import (
	"net/http"
	"strconv"

	"skirmish/internal/domain"
	"skirmish/internal/logger"

	"github.com/gin-gonic/gin"
)

type matchView struct {
	*domain.MatchRecord
	Opponent int64              `json:"opponent"`
	Result   domain.MatchResult `json:"result"`
}

// MyMatches lists the caller's finished matches, newest first.
func (h *Handler) MyMatches(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if h.Matches == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match history disabled"})
		return
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	records, err := h.Matches.GetByPlayer(c.Request.Context(), userID, limit)
	if err != nil {
		logger.Error("load matches failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load matches"})
		return
	}

	out := make([]matchView, 0, len(records))
	for _, m := range records {
		out = append(out, matchView{MatchRecord: m, Opponent: m.OpponentOf(userID), Result: m.ResultFor(userID)})
	}
	c.JSON(http.StatusOK, gin.H{"matches": out})
}

func (h *Handler) MyStats(c *gin.Context) {
	userID, ok := getUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if h.Matches == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "match history disabled"})
		return
	}

	stats, err := h.Matches.GetStats(c.Request.Context(), userID)
	if err != nil {
		logger.Error("load stats failed", "user", userID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
