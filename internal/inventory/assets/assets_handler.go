package assets

import (
	"context"
	"net/http"
	"strconv"

	"itinventory/internal/core/response"
	"itinventory/internal/repository"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type Service interface {
	CreateAsset(ctx context.Context, req models.AssetRequest) (*models.Asset, error)
	CreateBulkAssets(ctx context.Context, reqs []models.AssetRequest) models.BulkAssetResult
	GetAsset(ctx context.Context, id int) (*models.Asset, error)
	GetAssetByITAssetCode(ctx context.Context, code string) (*models.Asset, error)
	ListAssets(ctx context.Context, query *AssetListQuery, pagination repository.Pagination) (repository.Page[models.Asset], error)
	SearchAssets(ctx context.Context, term string, pagination repository.Pagination) (repository.Page[models.Asset], error)
	UpdateAsset(ctx context.Context, id int, req models.UpdateAssetRequest) (*models.Asset, error)
	ChangeStatus(ctx context.Context, id int, status string, reason *string) (*models.Asset, error)
	AssignUser(ctx context.Context, id int, userID *int, notes *string) (*models.Asset, error)
	SoftDeleteAsset(ctx context.Context, id int) error
	RestoreAsset(ctx context.Context, id int) (*models.Asset, error)
	DeleteAssetPermanently(ctx context.Context, id int) error
}

type AssetHandler struct {
	service Service
}

func NewAssetHandler(service Service) *AssetHandler {
	return &AssetHandler{service: service}
}

func (h *AssetHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/assets", security.Authorize("user"), h.GetAssets)
	router.GET("/assets/search", security.Authorize("user"), h.SearchAssets)
	router.GET("/assets/code/:code", security.Authorize("user"), h.GetAssetByCode)
	router.GET("/assets/:id", security.Authorize("user"), h.GetAsset)
	router.POST("/assets", security.Authorize("moderator"), h.CreateAsset)
	router.POST("/assets/bulk", security.Authorize("moderator"), h.CreateBulkAssets)
	router.PATCH("/assets/:id", security.Authorize("moderator"), h.UpdateAsset)
	router.PATCH("/assets/:id/status", security.Authorize("moderator"), h.ChangeStatus)
	router.PATCH("/assets/:id/assignment", security.Authorize("moderator"), h.AssignUser)
	router.DELETE("/assets/:id", security.Authorize("admin"), h.RemoveAsset)
	router.POST("/assets/:id/restore", security.Authorize("admin"), h.RestoreAsset)
}

func (h *AssetHandler) GetAssets(c *gin.Context) {
	var query AssetListQuery
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	page, err := h.service.ListAssets(c.Request.Context(), &query, pagination)
	if err != nil {
		response.Error(c, err, "Unable to fetch assets")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *AssetHandler) SearchAssets(c *gin.Context) {
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	page, err := h.service.SearchAssets(c.Request.Context(), c.Query("q"), pagination)
	if err != nil {
		response.Error(c, err, "Unable to search assets")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *AssetHandler) GetAsset(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	asset, err := h.service.GetAsset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get asset")
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) GetAssetByCode(c *gin.Context) {
	code := c.Param("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to bind IT asset code"})
		return
	}

	asset, err := h.service.GetAssetByITAssetCode(c.Request.Context(), code)
	if err != nil {
		response.Error(c, err, "Unable to locate asset with given IT asset code")
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) CreateAsset(c *gin.Context) {
	var req models.AssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	asset, err := h.service.CreateAsset(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create asset")
		return
	}

	c.JSON(http.StatusCreated, asset)
}

// CreateBulkAssets answers 201 when every item was created and 207 when some failed.
func (h *AssetHandler) CreateBulkAssets(c *gin.Context) {
	var req models.BulkAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	result := h.service.CreateBulkAssets(c.Request.Context(), req.Assets)

	status := http.StatusCreated
	if len(result.Failed) > 0 {
		status = http.StatusMultiStatus
	}

	c.JSON(status, result)
}

func (h *AssetHandler) UpdateAsset(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	var req models.UpdateAssetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	asset, err := h.service.UpdateAsset(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err, "Failed to update asset")
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) ChangeStatus(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	var req models.AssetStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	asset, err := h.service.ChangeStatus(c.Request.Context(), id, req.Status, req.Reason)
	if err != nil {
		response.Error(c, err, "Failed to change asset status")
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) AssignUser(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	var req models.AssetAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	asset, err := h.service.AssignUser(c.Request.Context(), id, req.UserID, req.Notes)
	if err != nil {
		response.Error(c, err, "Failed to assign asset")
		return
	}

	c.JSON(http.StatusOK, asset)
}

func (h *AssetHandler) RemoveAsset(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	permanent, _ := strconv.ParseBool(c.DefaultQuery("permanent", "false"))

	var err error
	if permanent {
		err = h.service.DeleteAssetPermanently(c.Request.Context(), id)
	} else {
		err = h.service.SoftDeleteAsset(c.Request.Context(), id)
	}
	if err != nil {
		response.Error(c, err, "Failed to delete asset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Asset deleted successfully", "permanent": permanent})
}

func (h *AssetHandler) RestoreAsset(c *gin.Context) {
	id, ok := assetID(c)
	if !ok {
		return
	}

	asset, err := h.service.RestoreAsset(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Failed to restore asset")
		return
	}

	c.JSON(http.StatusOK, asset)
}

func assetID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to bind asset ID"})
		return 0, false
	}
	return id, true
}
