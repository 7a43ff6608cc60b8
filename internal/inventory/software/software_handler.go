package software

import (
	"context"
	"net/http"
	"strconv"

	"itinventory/internal/core/response"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type Store interface {
	GetOperatingSystems(ctx context.Context) ([]models.OperatingSystem, error)
	GetOperatingSystem(ctx context.Context, id int) (*models.OperatingSystem, error)
	PersistOperatingSystem(ctx context.Context, req models.OperatingSystemRequest) (int, error)
	UpdateOperatingSystem(ctx context.Context, id int, req models.OperatingSystemRequest) error
	DeleteOperatingSystem(ctx context.Context, id int) (bool, error)
	GetOSVersions(ctx context.Context, osID *int) ([]models.OSVersion, error)
	GetOSVersion(ctx context.Context, id int) (*models.OSVersion, error)
	PersistOSVersion(ctx context.Context, req models.OSVersionRequest) (int, error)
	UpdateOSVersion(ctx context.Context, id int, req models.OSVersionRequest) error
	DeleteOSVersion(ctx context.Context, id int) (bool, error)
}

type SoftwareHandler struct {
	repo     Store
	AuditLog auditlog.Logger
}

func NewHandler(repo Store, auditLog auditlog.Logger) *SoftwareHandler {
	return &SoftwareHandler{repo: repo, AuditLog: auditLog}
}

func (h *SoftwareHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/operating-systems", security.Authorize("user"), h.GetOperatingSystems)
	router.GET("/operating-systems/:id", security.Authorize("user"), h.GetOperatingSystem)
	router.GET("/operating-systems/:id/versions", security.Authorize("user"), h.GetOSVersionsOf)
	router.POST("/operating-systems", security.Authorize("moderator"), h.CreateOperatingSystem)
	router.PUT("/operating-systems/:id", security.Authorize("moderator"), h.UpdateOperatingSystem)
	router.DELETE("/operating-systems/:id", security.Authorize("admin"), h.DeleteOperatingSystem)

	router.GET("/os-versions", security.Authorize("user"), h.GetOSVersions)
	router.GET("/os-versions/:id", security.Authorize("user"), h.GetOSVersion)
	router.POST("/os-versions", security.Authorize("moderator"), h.CreateOSVersion)
	router.PUT("/os-versions/:id", security.Authorize("moderator"), h.UpdateOSVersion)
	router.DELETE("/os-versions/:id", security.Authorize("admin"), h.DeleteOSVersion)
}

func (h *SoftwareHandler) GetOperatingSystems(c *gin.Context) {
	systems, err := h.repo.GetOperatingSystems(c.Request.Context())
	if err != nil {
		response.Error(c, err, "Unable to fetch operating systems")
		return
	}

	c.JSON(http.StatusOK, systems)
}

func (h *SoftwareHandler) GetOperatingSystem(c *gin.Context) {
	id, ok := softwareID(c)
	if !ok {
		return
	}

	os, err := h.repo.GetOperatingSystem(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get operating system")
		return
	}

	c.JSON(http.StatusOK, os)
}

func (h *SoftwareHandler) GetOSVersionsOf(c *gin.Context) {
	id, ok := softwareID(c)
	if !ok {
		return
	}

	if _, err := h.repo.GetOperatingSystem(c.Request.Context(), id); err != nil {
		response.Error(c, err, "Unable to get operating system")
		return
	}

	versions, err := h.repo.GetOSVersions(c.Request.Context(), &id)
	if err != nil {
		response.Error(c, err, "Unable to fetch OS versions")
		return
	}

	c.JSON(http.StatusOK, versions)
}

func (h *SoftwareHandler) CreateOperatingSystem(c *gin.Context) {
	var req models.OperatingSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	id, err := h.repo.PersistOperatingSystem(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create operating system")
		return
	}

	os := &models.OperatingSystem{ID: id, Name: req.Name}
	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": req.Name}, os)
	c.JSON(http.StatusCreated, os)
}

func (h *SoftwareHandler) UpdateOperatingSystem(c *gin.Context) {
	id, ok := softwareID(c)
	if !ok {
		return
	}

	var req models.OperatingSystemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.repo.UpdateOperatingSystem(c.Request.Context(), id, req); err != nil {
		response.Error(c, err, "Failed to update operating system")
		return
	}

	os := &models.OperatingSystem{ID: id, Name: req.Name}
	h.AuditLog.Log(c.Request.Context(), "update", map[string]interface{}{"name": req.Name}, os)
	c.JSON(http.StatusOK, os)
}

func (h *SoftwareHandler) DeleteOperatingSystem(c *gin.Context) {
	h.remove(c, "Operating System", h.repo.DeleteOperatingSystem, func(id int) auditlog.Auditable { return &models.OperatingSystem{ID: id} })
}

func (h *SoftwareHandler) GetOSVersions(c *gin.Context) {
	var osID *int
	if raw := c.Query("os_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid os_id"})
			return
		}
		osID = &id
	}

	versions, err := h.repo.GetOSVersions(c.Request.Context(), osID)
	if err != nil {
		response.Error(c, err, "Unable to fetch OS versions")
		return
	}

	c.JSON(http.StatusOK, versions)
}

func (h *SoftwareHandler) GetOSVersion(c *gin.Context) {
	id, ok := softwareID(c)
	if !ok {
		return
	}

	version, err := h.repo.GetOSVersion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get OS version")
		return
	}

	c.JSON(http.StatusOK, version)
}

func (h *SoftwareHandler) CreateOSVersion(c *gin.Context) {
	var req models.OSVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.OSID != nil {
		if _, err := h.repo.GetOperatingSystem(c.Request.Context(), *req.OSID); err != nil {
			response.Error(c, err, "Failed to create OS version")
			return
		}
	}

	id, err := h.repo.PersistOSVersion(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create OS version")
		return
	}

	version, err := h.repo.GetOSVersion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get OS version")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": version.Name, "os_id": version.OSID}, version)
	c.JSON(http.StatusCreated, version)
}

func (h *SoftwareHandler) UpdateOSVersion(c *gin.Context) {
	id, ok := softwareID(c)
	if !ok {
		return
	}

	var req models.OSVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.OSID != nil {
		if _, err := h.repo.GetOperatingSystem(c.Request.Context(), *req.OSID); err != nil {
			response.Error(c, err, "Failed to update OS version")
			return
		}
	}

	if err := h.repo.UpdateOSVersion(c.Request.Context(), id, req); err != nil {
		response.Error(c, err, "Failed to update OS version")
		return
	}

	version, err := h.repo.GetOSVersion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get OS version")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "update", map[string]interface{}{"name": version.Name}, version)
	c.JSON(http.StatusOK, version)
}

func (h *SoftwareHandler) DeleteOSVersion(c *gin.Context) {
	h.remove(c, "OS Version", h.repo.DeleteOSVersion, func(id int) auditlog.Auditable { return &models.OSVersion{ID: id} })
}

func (h *SoftwareHandler) remove(c *gin.Context, resource string, del func(context.Context, int) (bool, error), view func(int) auditlog.Auditable) {
	id, ok := softwareID(c)
	if !ok {
		return
	}

	deleted, err := del(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Failed to delete "+resource)
		return
	}
	if !deleted {
		response.Error(c, custom_error.NewNotFoundError(resource, id), "Failed to delete "+resource)
		return
	}

	h.AuditLog.Log(c.Request.Context(), "delete", nil, view(id))
	c.JSON(http.StatusOK, gin.H{"message": resource + " deleted successfully"})
}

func softwareID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
