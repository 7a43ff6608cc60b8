package purchaseorders

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"itinventory/internal/core/response"
	"itinventory/internal/repository"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type Service interface {
	CreatePurchaseOrder(ctx context.Context, req models.PurchaseOrderRequest) (*models.PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id int) (*models.PurchaseOrder, error)
	GetByPONumber(ctx context.Context, poNumber string) (*models.PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, vendorID *int, pagination repository.Pagination) (repository.Page[models.PurchaseOrder], error)
	SearchPurchaseOrders(ctx context.Context, term string, pagination repository.Pagination) (repository.Page[models.PurchaseOrder], error)
	UpdatePurchaseOrder(ctx context.Context, id int, req models.UpdatePurchaseOrderRequest) (*models.PurchaseOrder, error)
	ListAssets(ctx context.Context, id int) ([]models.AssetSummary, error)
	MigratePONumber(ctx context.Context, oldNumber, newNumber string) (*models.PONumberMigration, error)
	DeletionPreview(ctx context.Context, id int) (*models.PODeletionPreview, error)
	DeletePurchaseOrder(ctx context.Context, id int, cascade bool) (*models.PODeletionResult, error)
	DetachAsset(ctx context.Context, poID, assetID int) (bool, error)
}

type PurchaseOrderHandler struct {
	service Service
}

func NewHandler(service Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: service}
}

type listQuery struct {
	VendorID *int `form:"vendor_id" binding:"omitempty,min=1"`
	repository.Pagination
}

func (h *PurchaseOrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/purchase-orders", security.Authorize("user"), h.GetPurchaseOrders)
	router.GET("/purchase-orders/search", security.Authorize("user"), h.SearchPurchaseOrders)
	router.GET("/purchase-orders/number/*po_number", security.Authorize("user"), h.GetByPONumber)
	router.GET("/purchase-orders/:id", security.Authorize("user"), h.GetPurchaseOrder)
	router.GET("/purchase-orders/:id/assets", security.Authorize("user"), h.GetAssets)
	router.GET("/purchase-orders/:id/deletion-preview", security.Authorize("moderator"), h.GetDeletionPreview)
	router.POST("/purchase-orders", security.Authorize("moderator"), h.CreatePurchaseOrder)
	router.PATCH("/purchase-orders/:id", security.Authorize("moderator"), h.UpdatePurchaseOrder)
	router.POST("/purchase-orders/migrate", security.Authorize("admin"), h.MigratePONumber)
	router.DELETE("/purchase-orders/:id", security.Authorize("admin"), h.DeletePurchaseOrder)
	router.DELETE("/purchase-orders/:id/assets/:asset_id", security.Authorize("admin"), h.DetachAsset)
}

func (h *PurchaseOrderHandler) GetPurchaseOrders(c *gin.Context) {
	var query listQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return
	}

	page, err := h.service.ListPurchaseOrders(c.Request.Context(), query.VendorID, query.Pagination)
	if err != nil {
		response.Error(c, err, "Unable to fetch purchase orders")
		return
	}

	c.JSON(http.StatusOK, page)
}

func (h *PurchaseOrderHandler) SearchPurchaseOrders(c *gin.Context) {
	var pagination repository.Pagination
	if err := c.ShouldBindQuery(&pagination); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid pagination", "details": err.Error()})
		return
	}

	page, err := h.service.SearchPurchaseOrders(c.Request.Context(), c.Query("q"), pagination)
	if err != nil {
		response.Error(c, err, "Unable to search purchase orders")
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetByPONumber takes the rest of the path as the number, PO numbers may contain slashes.
func (h *PurchaseOrderHandler) GetByPONumber(c *gin.Context) {
	number := strings.TrimPrefix(c.Param("po_number"), "/")
	if number == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to bind PO number"})
		return
	}

	po, err := h.service.GetByPONumber(c.Request.Context(), number)
	if err != nil {
		response.Error(c, err, "Unable to get purchase order")
		return
	}

	c.JSON(http.StatusOK, po)
}

func (h *PurchaseOrderHandler) GetPurchaseOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	po, err := h.service.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to get purchase order")
		return
	}

	c.JSON(http.StatusOK, po)
}

func (h *PurchaseOrderHandler) GetAssets(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	assets, err := h.service.ListAssets(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to fetch purchase order assets")
		return
	}

	c.JSON(http.StatusOK, assets)
}

func (h *PurchaseOrderHandler) GetDeletionPreview(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	preview, err := h.service.DeletionPreview(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to prepare deletion preview")
		return
	}

	c.JSON(http.StatusOK, preview)
}

func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *gin.Context) {
	var req models.PurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	po, err := h.service.CreatePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err, "Failed to create purchase order")
		return
	}

	c.JSON(http.StatusCreated, po)
}

func (h *PurchaseOrderHandler) UpdatePurchaseOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req models.UpdatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	po, err := h.service.UpdatePurchaseOrder(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err, "Failed to update purchase order")
		return
	}

	c.JSON(http.StatusOK, po)
}

func (h *PurchaseOrderHandler) MigratePONumber(c *gin.Context) {
	var req models.PONumberMigrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	migration, err := h.service.MigratePONumber(c.Request.Context(), req.OldPONumber, req.NewPONumber)
	if err != nil {
		response.Error(c, err, "Failed to migrate PO number")
		return
	}

	c.JSON(http.StatusOK, migration)
}

func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	cascade, _ := strconv.ParseBool(c.DefaultQuery("cascade", "false"))

	result, err := h.service.DeletePurchaseOrder(c.Request.Context(), id, cascade)
	if err != nil {
		response.Error(c, err, "Failed to delete purchase order")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *PurchaseOrderHandler) DetachAsset(c *gin.Context) {
	poID, ok := pathID(c, "id")
	if !ok {
		return
	}
	assetID, ok := pathID(c, "asset_id")
	if !ok {
		return
	}

	deleted, err := h.service.DetachAsset(c.Request.Context(), poID, assetID)
	if err != nil {
		response.Error(c, err, "Failed to delete asset")
		return
	}

	c.JSON(http.StatusOK, gin.H{"asset_id": assetID, "deleted": deleted})
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}
