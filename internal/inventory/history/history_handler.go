package history

import (
	"context"
	"net/http"
	"strconv"

	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type Store interface {
	ListStatusHistory(ctx context.Context, assetID int) ([]models.AssetStatusHistory, error)
	ListAssignmentHistory(ctx context.Context, assetID int) ([]models.AssetAssignmentHistory, error)
	DeleteStatusEntry(ctx context.Context, id int) (bool, error)
	DeleteAssignmentEntry(ctx context.Context, id int) (bool, error)
}

type HistoryHandler struct {
	store Store
}

func NewHandler(store Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/assets/:id/history/status", security.Authorize("user"), h.GetStatusHistory)
	router.GET("/assets/:id/history/assignments", security.Authorize("user"), h.GetAssignmentHistory)
	router.DELETE("/history/status/:id", security.Authorize("admin"), h.DeleteStatusEntry)
	router.DELETE("/history/assignments/:id", security.Authorize("admin"), h.DeleteAssignmentEntry)
}

func (h *HistoryHandler) GetStatusHistory(c *gin.Context) {
	assetID, ok := parseID(c)
	if !ok {
		return
	}

	entries, err := h.store.ListStatusHistory(c.Request.Context(), assetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch status history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *HistoryHandler) GetAssignmentHistory(c *gin.Context) {
	assetID, ok := parseID(c)
	if !ok {
		return
	}

	entries, err := h.store.ListAssignmentHistory(c.Request.Context(), assetID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch assignment history", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, entries)
}

func (h *HistoryHandler) DeleteStatusEntry(c *gin.Context) {
	h.deleteEntry(c, h.store.DeleteStatusEntry)
}

func (h *HistoryHandler) DeleteAssignmentEntry(c *gin.Context) {
	h.deleteEntry(c, h.store.DeleteAssignmentEntry)
}

func (h *HistoryHandler) deleteEntry(c *gin.Context, remove func(ctx context.Context, id int) (bool, error)) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := remove(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete history entry", "details": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "History entry not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
