package catalog

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
	GetTypes(ctx context.Context) ([]models.AssetType, error)
	GetType(ctx context.Context, id int) (*models.AssetType, error)
	PersistType(ctx context.Context, req models.AssetTypeRequest) (int, error)
	UpdateType(ctx context.Context, id int, req models.AssetTypeRequest) error
	DeleteType(ctx context.Context, id int) (bool, error)
	GetMakes(ctx context.Context, typeID *int) ([]models.AssetMake, error)
	GetMake(ctx context.Context, id int) (*models.AssetMake, error)
	PersistMake(ctx context.Context, req models.AssetMakeRequest) (int, error)
	UpdateMake(ctx context.Context, id int, req models.AssetMakeRequest) error
	DeleteMake(ctx context.Context, id int) (bool, error)
	GetModels(ctx context.Context, makeID *int) ([]models.AssetModel, error)
	GetModel(ctx context.Context, id int) (*models.AssetModel, error)
	PersistModel(ctx context.Context, req models.AssetModelRequest) (int, error)
	UpdateModel(ctx context.Context, id int, req models.AssetModelRequest) error
	DeleteModel(ctx context.Context, id int) (bool, error)
}

type CatalogHandler struct {
	repo     Store
	AuditLog auditlog.Logger
}

func NewHandler(repo Store, auditLog auditlog.Logger) *CatalogHandler {
	return &CatalogHandler{repo: repo, AuditLog: auditLog}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	catalog := router.Group("/catalog")
	{
		catalog.GET("/types", security.Authorize("user"), h.GetTypes)
		catalog.GET("/types/:id", security.Authorize("user"), h.GetType)
		catalog.POST("/types", security.Authorize("moderator"), h.CreateType)
		catalog.PUT("/types/:id", security.Authorize("moderator"), h.UpdateType)
		catalog.DELETE("/types/:id", security.Authorize("admin"), h.DeleteType)

		catalog.GET("/makes", security.Authorize("user"), h.GetMakes)
		catalog.GET("/makes/:id", security.Authorize("user"), h.GetMake)
		catalog.POST("/makes", security.Authorize("moderator"), h.CreateMake)
		catalog.PUT("/makes/:id", security.Authorize("moderator"), h.UpdateMake)
		catalog.DELETE("/makes/:id", security.Authorize("admin"), h.DeleteMake)

		catalog.GET("/models", security.Authorize("user"), h.GetModels)
		catalog.GET("/models/:id", security.Authorize("user"), h.GetModel)
		catalog.POST("/models", security.Authorize("moderator"), h.CreateModel)
		catalog.PUT("/models/:id", security.Authorize("moderator"), h.UpdateModel)
		catalog.DELETE("/models/:id", security.Authorize("admin"), h.DeleteModel)
	}
}

func (h *CatalogHandler) GetTypes(c *gin.Context) {
	types, err := h.repo.GetTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err, "Unable to fetch asset types")
		return
	}

	c.JSON(http.StatusOK, types)
}

func (h *CatalogHandler) GetType(c *gin.Context) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	assetType, err := h.repo.GetType(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset type")
		return
	}

	c.JSON(http.StatusOK, assetType)
}

func (h *CatalogHandler) CreateType(c *gin.Context) {
	var req models.AssetTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	id, err := h.repo.PersistType(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create asset type")
		return
	}

	assetType, err := h.repo.GetType(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset type")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": assetType.Name, "code_prefix": assetType.CodePrefix}, assetType)
	c.JSON(http.StatusCreated, assetType)
}

func (h *CatalogHandler) UpdateType(c *gin.Context) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	var req models.AssetTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if err := h.repo.UpdateType(c.Request.Context(), id, req); err != nil {
		response.Error(c, err, "Failed to update asset type")
		return
	}

	assetType, err := h.repo.GetType(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset type")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "update", map[string]interface{}{"name": assetType.Name}, assetType)
	c.JSON(http.StatusOK, assetType)
}

func (h *CatalogHandler) DeleteType(c *gin.Context) {
	h.remove(c, "Asset Type", h.repo.DeleteType, func(id int) auditlog.Auditable { return &models.AssetType{ID: id} })
}

func (h *CatalogHandler) GetMakes(c *gin.Context) {
	typeID, ok := optionalQueryID(c, "asset_type_id")
	if !ok {
		return
	}

	makes, err := h.repo.GetMakes(c.Request.Context(), typeID)
	if err != nil {
		response.Error(c, err, "Unable to fetch asset makes")
		return
	}

	c.JSON(http.StatusOK, makes)
}

func (h *CatalogHandler) GetMake(c *gin.Context) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	assetMake, err := h.repo.GetMake(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset make")
		return
	}

	c.JSON(http.StatusOK, assetMake)
}

func (h *CatalogHandler) CreateMake(c *gin.Context) {
	var req models.AssetMakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.AssetTypeID != nil {
		if _, err := h.repo.GetType(c.Request.Context(), *req.AssetTypeID); err != nil {
			response.Error(c, err, "Failed to create asset make")
			return
		}
	}

	id, err := h.repo.PersistMake(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create asset make")
		return
	}

	assetMake, err := h.repo.GetMake(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset make")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": assetMake.Name, "asset_type_id": assetMake.AssetTypeID}, assetMake)
	c.JSON(http.StatusCreated, assetMake)
}

func (h *CatalogHandler) UpdateMake(c *gin.Context) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	var req models.AssetMakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.AssetTypeID != nil {
		if _, err := h.repo.GetType(c.Request.Context(), *req.AssetTypeID); err != nil {
			response.Error(c, err, "Failed to update asset make")
			return
		}
	}

	if err := h.repo.UpdateMake(c.Request.Context(), id, req); err != nil {
		response.Error(c, err, "Failed to update asset make")
		return
	}

	assetMake, err := h.repo.GetMake(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset make")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "update", map[string]interface{}{"name": assetMake.Name}, assetMake)
	c.JSON(http.StatusOK, assetMake)
}

func (h *CatalogHandler) DeleteMake(c *gin.Context) {
	h.remove(c, "Asset Make", h.repo.DeleteMake, func(id int) auditlog.Auditable { return &models.AssetMake{ID: id} })
}

func (h *CatalogHandler) GetModels(c *gin.Context) {
	makeID, ok := optionalQueryID(c, "asset_make_id")
	if !ok {
		return
	}

	assetModels, err := h.repo.GetModels(c.Request.Context(), makeID)
	if err != nil {
		response.Error(c, err, "Unable to fetch asset models")
		return
	}

	c.JSON(http.StatusOK, assetModels)
}

func (h *CatalogHandler) GetModel(c *gin.Context) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	assetModel, err := h.repo.GetModel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset model")
		return
	}

	c.JSON(http.StatusOK, assetModel)
}

func (h *CatalogHandler) CreateModel(c *gin.Context) {
	var req models.AssetModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.AssetMakeID != nil {
		if _, err := h.repo.GetMake(c.Request.Context(), *req.AssetMakeID); err != nil {
			response.Error(c, err, "Failed to create asset model")
			return
		}
	}

	id, err := h.repo.PersistModel(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create asset model")
		return
	}

	assetModel, err := h.repo.GetModel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset model")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "create", map[string]interface{}{"name": assetModel.Name, "asset_make_id": assetModel.AssetMakeID}, assetModel)
	c.JSON(http.StatusCreated, assetModel)
}

func (h *CatalogHandler) UpdateModel(c *gin.Context) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	var req models.AssetModelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	if req.AssetMakeID != nil {
		if _, err := h.repo.GetMake(c.Request.Context(), *req.AssetMakeID); err != nil {
			response.Error(c, err, "Failed to update asset model")
			return
		}
	}

	if err := h.repo.UpdateModel(c.Request.Context(), id, req); err != nil {
		response.Error(c, err, "Failed to update asset model")
		return
	}

	assetModel, err := h.repo.GetModel(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset model")
		return
	}

	h.AuditLog.Log(c.Request.Context(), "update", map[string]interface{}{"name": assetModel.Name}, assetModel)
	c.JSON(http.StatusOK, assetModel)
}

func (h *CatalogHandler) DeleteModel(c *gin.Context) {
	h.remove(c, "Asset Model", h.repo.DeleteModel, func(id int) auditlog.Auditable { return &models.AssetModel{ID: id} })
}

// remove deletes a catalog row. Rows still referenced elsewhere are a conflict.
func (h *CatalogHandler) remove(c *gin.Context, resource string, del func(context.Context, int) (bool, error), view func(int) auditlog.Auditable) {
	id, ok := catalogID(c)
	if !ok {
		return
	}

	deleted, err := del(c.Request.Context(), id)
	if err != nil {
		if custom_error.IsConflict(err) {
			c.JSON(http.StatusConflict, gin.H{"error": resource + " is still in use", "details": err.Error()})
			return
		}
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

func catalogID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}

func optionalQueryID(c *gin.Context, name string) (*int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}

	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return nil, false
	}
	return &id, true
}
