package tags

import (
	"net/http"
	"strconv"

	"itinventory/internal/core/response"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
)

type TagsHandler struct {
	service *TagService
}

func NewHandler(service *TagService) *TagsHandler {
	return &TagsHandler{service: service}
}

type tagRequest struct {
	Name  string  `json:"name" binding:"required,max=64"`
	Color *string `json:"color" binding:"omitempty,hexcolor"`
}

func (h *TagsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/tags", security.Authorize("user"), h.GetTags)
	router.POST("/tags", security.Authorize("moderator"), h.CreateTag)
	router.PUT("/tags/:id", security.Authorize("moderator"), h.UpdateTag)
	router.DELETE("/tags/:id", security.Authorize("admin"), h.DeleteTag)
	router.GET("/tags/:id/assets", security.Authorize("user"), h.GetTaggedAssets)
	router.GET("/assets/:id/tags", security.Authorize("user"), h.GetAssetTags)
	router.PUT("/assets/:id/tags", security.Authorize("moderator"), h.ReplaceAssetTags)
}

func (h *TagsHandler) GetTags(c *gin.Context) {
	tags, err := h.service.ListTags(c.Request.Context())
	if err != nil {
		response.Error(c, err, "Unable to fetch tags")
		return
	}

	c.JSON(http.StatusOK, tags)
}

func (h *TagsHandler) CreateTag(c *gin.Context) {
	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	tag, err := h.service.CreateTag(c.Request.Context(), models.AssetTag{Name: req.Name, Color: req.Color})
	if err != nil {
		response.Error(c, err, "Failed to create tag")
		return
	}

	c.JSON(http.StatusCreated, tag)
}

func (h *TagsHandler) UpdateTag(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	var req tagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	tag, err := h.service.UpdateTag(c.Request.Context(), models.AssetTag{ID: id, Name: req.Name, Color: req.Color})
	if err != nil {
		response.Error(c, err, "Failed to update tag")
		return
	}

	c.JSON(http.StatusOK, tag)
}

func (h *TagsHandler) DeleteTag(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteTag(c.Request.Context(), id); err != nil {
		response.Error(c, err, "Failed to delete tag")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted successfully"})
}

func (h *TagsHandler) GetTaggedAssets(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	ids, err := h.service.ListTaggedAssetIDs(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to fetch tagged assets")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tag_id": id, "asset_ids": ids})
}

func (h *TagsHandler) GetAssetTags(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	tags, err := h.service.ListAssetTags(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err, "Unable to fetch asset tags")
		return
	}

	c.JSON(http.StatusOK, tags)
}

func (h *TagsHandler) ReplaceAssetTags(c *gin.Context) {
	id, ok := tagID(c)
	if !ok {
		return
	}

	var req models.AssetTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
		return
	}

	tags, err := h.service.ReplaceAssetTags(c.Request.Context(), id, req.TagIDs)
	if err != nil {
		response.Error(c, err, "Failed to replace asset tags")
		return
	}

	c.JSON(http.StatusOK, tags)
}

func tagID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
