package api

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/herald/app/database"
)

const defaultListLimit = 30

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

func NewHandler(runs database.RunRepository, version string) *Handler {
	return &Handler{
		runs:    runs,
		version: version,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.runs.GetRunCount(); err == nil {
		health["runs"] = count
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) ListDigests(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	runs, err := h.runs.ListRuns(limit)
	if err != nil {
		slog.Error("Database error", "operation", "list_runs", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	digests := make([]digestSummary, 0, len(runs))
	for _, run := range runs {
		digests = append(digests, digestSummary{
			Date:      run.Date,
			Collected: run.Collected,
			Filtered:  run.Filtered,
			Kept:      run.Kept,
			Cost:      run.Cost,
			CreatedAt: run.CreatedTime().In(time.Local).Format(time.RFC3339),
			URL:       "/digests/" + run.Date,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"digests": digests,
		"total":   len(digests),
	})
}

func (h *Handler) GetDigest(c *gin.Context) {
	date := c.Param("date")
	if !datePattern.MatchString(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	run, err := h.runs.GetRun(date)
	if errors.Is(err, database.ErrRunNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Digest not found"})
		return
	}
	if err != nil {
		slog.Error("Database error", "operation", "get_run", "date", date, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.Header("X-Digest-Kept", strconv.Itoa(run.Kept))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(run.Digest))
}
