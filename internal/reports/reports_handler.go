package reports

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"itinventory/internal/inventory/assets"
	"itinventory/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var contentTypes = map[string]string{
	FormatCSV:  "text/csv; charset=utf-8",
	FormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

type ReportsHandler struct {
	report *AssetReport
	logger *zap.Logger
}

func NewHandler(report *AssetReport, logger *zap.Logger) *ReportsHandler {
	return &ReportsHandler{report: report, logger: logger}
}

func (h *ReportsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reports/assets", security.Authorize("moderator"), h.ExportAssets)
}

// ExportAssets streams the asset list as a file. Filters are the ones
// accepted by GET /assets.
func (h *ReportsHandler) ExportAssets(c *gin.Context) {
	format := c.DefaultQuery("format", FormatCSV)
	contentType, ok := contentTypes[format]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported report format", "details": format})
		return
	}

	var query assets.AssetListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid filters", "details": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := h.report.Write(c.Request.Context(), &buf, format, &query); err != nil {
		h.logger.Error("Unable to build asset report", zap.String("format", format), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Unable to build report"})
		return
	}

	filename := fmt.Sprintf("assets-%s.%s", time.Now().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
