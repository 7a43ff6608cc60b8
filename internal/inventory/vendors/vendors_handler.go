package vendors

import (
	"context"
	"net/http"
	"strconv"

	"itinventory/internal/core/response"
	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type Store interface {
	GetVendors(ctx context.Context, pagination *repository.Pagination) ([]models.Vendor, int, error)
	SearchVendors(ctx context.Context, term string, pagination *repository.Pagination) ([]models.Vendor, int, error)
	GetVendor(ctx context.Context, id int) (*models.Vendor, error)
	PersistVendor(ctx context.Context, req models.VendorRequest) (int, error)
	UpdateVendor(ctx context.Context, id int, req models.VendorRequest) error
	DeleteVendor(ctx context.Context, id int) (bool, error)
}

type VendorHandler struct {
	repo     Store
	AuditLog auditlog.Logger
}

func NewHandler(repo Store, auditLog auditlog.Logger) *VendorHandler {
	return &VendorHandler{repo: repo, AuditLog: auditLog}
}

func (h *VendorHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/vendors", security.Authorize("user"), h.GetVendors)
	router.GET("/vendors/search", security.Authorize("user"), h.SearchVendors)
	router.GET("/vendors/:id", security.Authorize("user"), h.GetVendor)
	router.POST("/vendors", security.Authorize("moderator"), h.CreateVendor)
	router.PUT("/vendors/:id", security.Authorize("moderator"), h.UpdateVendor)
	router.DELETE("/vendors/:id", security.Authorize("admin"), h.DeleteVendor)
}

func (h *VendorHandler) GetVendors(c *gin.Context) {
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	vendors, total, err := h.repo.GetVendors(c.Request.Context(), &pagination)
	if err != nil {
		response.Error(c, err, "Unable to fetch vendors")
		return
	}

	c.JSON(http.StatusOK, repository.NewPage(vendors, pagination, total))
}

func (h *VendorHandler) SearchVendors(c *gin.Context) {
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	term := c.Query("q")
	if term == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Search term is required"})
		return
	}

	vendors, total, err := h.repo.SearchVendors(c.Request.Context(), term, &pagination)
	if err != nil {
		response.Error(c, err, "Unable to search vendors")
		return
	}

	c.JSON(http.StatusOK, repository.NewPage(vendors, pagination, total))
}

func (h *VendorHandler) GetVendor(c *gin.Context) {
	id, ok := vendorID(c)
	if !ok {
		return
	}

	vendor, err := h.repo.GetVendor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get vendor")
		return
	}

	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var req models.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	id, err := h.repo.PersistVendor(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create vendor")
		return
	}

	vendor, err := h.repo.GetVendor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get vendor")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": vendor.Name}, vendor)
	c.JSON(http.StatusCreated, vendor)
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	id, ok := vendorID(c)
	if !ok {
		return
	}

	var req models.VendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.repo.UpdateVendor(c.Request.Context(), id, req); err != nil {
		response.Error(c, err, "Failed to update vendor")
		return
	}

	vendor, err := h.repo.GetVendor(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get vendor")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "update", map[string]interface{}{"name": vendor.Name}, vendor)
	c.JSON(http.StatusOK, vendor)
}

func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	id, ok := vendorID(c)
	if !ok {
		return
	}

	deleted, err := h.repo.DeleteVendor(c.Request.Context(), id)
	if err != nil {
		if custom_error.IsConflict(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Vendor is still referenced by assets or purchase orders"})
			return
		}
		response.Error(c, err, "Failed to delete vendor")
		return
	}
	if !deleted {
		response.Error(c, custom_error.NewNotFoundError("Vendor", id), "Failed to delete vendor")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "delete", nil, &models.Vendor{ID: id})
	c.JSON(http.StatusOK, gin.H{"message": "Vendor deleted successfully"})
}

func vendorID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vendor ID"})
		return 0, false
	}
	return id, true
}
