package auditlog

import (
	"context"
	"net/http"
	"strconv"

	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type Reader interface {
	GetResourceLog(ctx context.Context, id int, resourceType string) ([]models.AuditLog, error)
	Delete(ctx context.Context, id int) (bool, error)
}

type Handler struct {
	repo Reader
}

func NewHandler(repo Reader) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/audit-logs/:resource_type/:id", security.Authorize("moderator"), h.GetResourceLog)
	router.DELETE("/audit-logs/:id", security.Authorize("admin"), h.DeleteEntry)
}

func (h *Handler) GetResourceLog(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource ID", "details": err.Error()})
		return
	}

	logs, err := h.repo.GetResourceLog(c.Request.Context(), id, c.Param("resource_type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to fetch audit log", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func (h *Handler) DeleteEntry(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audit log ID", "details": err.Error()})
		return
	}

	deleted, err := h.repo.Delete(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to delete audit log entry", "details": err.Error()})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Audit log entry not found"})
		return
	}

	c.Status(http.StatusNoContent)
}
