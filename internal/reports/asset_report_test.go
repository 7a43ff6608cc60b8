package reports

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"itinventory/internal/core/binding"
	"itinventory/internal/inventory/assets"
	"itinventory/internal/repository"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type MockAssetSource struct {
	mock.Mock
}

func (m *MockAssetSource) GetAssetsForReport(ctx context.Context, conditions repository.QueryBuilder) ([]models.Asset, error) {
	args := m.Called(conditions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Asset), args.Error(1)
}

type MockTagSource struct {
	mock.Mock
}

func (m *MockTagSource) GetTagsForAssets(ctx context.Context, assetIDs []int) (map[int][]models.AssetTag, error) {
	args := m.Called(assetIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int][]models.AssetTag), args.Error(1)
}

func reportTags() *MockTagSource {
	tags := new(MockTagSource)
	tags.On("GetTagsForAssets", []int{15, 16}).Return(map[int][]models.AssetTag{
		15: {{ID: 1, Name: "finance"}, {ID: 2, Name: "remote"}},
	}, nil)
	return tags
}

func reportAssets() []models.Asset {
	purchased := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Asset{
		{
			ID:            15,
			ITAssetCode:   "IT-LAP15",
			Name:          "Finance laptop",
			SerialNumber:  "SN-1",
			Status:        metadata.StatusActive,
			Type:          &models.Reference{ID: 1, Name: "Laptop"},
			Make:          &models.Reference{ID: 2, Name: "Dell"},
			Vendor:        &models.Reference{ID: 3, Name: "CDW"},
			PurchaseOrder: &models.PurchaseOrderReference{ID: 4, PONumber: "PO-2024-001"},
			CurrentUser:   &models.UserReference{ID: 5, Username: "jdoe", Fullname: "John Doe"},
			PurchaseDate:  &purchased,
			PurchaseCost:  decimal.NewNullDecimal(decimal.RequireFromString("1299.5")),
		},
		{
			ID:          16,
			ITAssetCode: "IT-GEN16",
			Status:      metadata.StatusInStock,
		},
	}
}

func TestRowsFlattenJoinedNames(t *testing.T) {
	source := new(MockAssetSource)
	source.On("GetAssetsForReport", mock.Anything).Return(reportAssets(), nil)

	tags := reportTags()

	rows, err := NewAssetReport(source, tags).Rows(context.Background(), &assets.AssetListQuery{})

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, assetReportHeader, rows[0])

	first := rows[1]
	require.Len(t, first, len(assetReportHeader))
	assert.Equal(t, "IT-LAP15", first[1])
	assert.Equal(t, "Laptop", first[5])
	assert.Equal(t, "Dell", first[6])
	assert.Equal(t, "", first[7])
	assert.Equal(t, "CDW", first[10])
	assert.Equal(t, "PO-2024-001", first[12])
	assert.Equal(t, "John Doe", first[13])
	assert.Equal(t, "2024-03-01", first[16])
	assert.Equal(t, "1299.50", first[19])
	assert.Equal(t, "finance, remote", first[20])

	second := rows[2]
	assert.Equal(t, "", second[19])
	assert.Equal(t, "", second[12])
	assert.Equal(t, "", second[20])
	assert.Equal(t, "false", second[21])
	tags.AssertExpectations(t)
}

func TestRowsTagLoadFailure(t *testing.T) {
	source := new(MockAssetSource)
	source.On("GetAssetsForReport", mock.Anything).Return(reportAssets(), nil)
	tags := new(MockTagSource)
	tags.On("GetTagsForAssets", []int{15, 16}).Return(nil, errors.New("db down"))

	rows, err := NewAssetReport(source, tags).Rows(context.Background(), &assets.AssetListQuery{})

	assert.Nil(t, rows)
	assert.ErrorContains(t, err, "unable to load tags for report")
}

func TestWriteCSV(t *testing.T) {
	source := new(MockAssetSource)
	source.On("GetAssetsForReport", mock.Anything).Return(reportAssets(), nil)

	var buf bytes.Buffer
	err := NewAssetReport(source, reportTags()).Write(context.Background(), &buf, FormatCSV, &assets.AssetListQuery{})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "IT Asset Code", records[0][1])
	assert.Equal(t, "IT-GEN16", records[2][1])
}

func TestWriteXLSX(t *testing.T) {
	source := new(MockAssetSource)
	source.On("GetAssetsForReport", mock.Anything).Return(reportAssets(), nil)

	var buf bytes.Buffer
	err := NewAssetReport(source, reportTags()).Write(context.Background(), &buf, FormatXLSX, &assets.AssetListQuery{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "IT-LAP15", rows[1][1])
}

func TestWriteUnknownFormat(t *testing.T) {
	source := new(MockAssetSource)
	source.On("GetAssetsForReport", mock.Anything).Return([]models.Asset{}, nil)
	tags := new(MockTagSource)
	tags.On("GetTagsForAssets", []int{}).Return(map[int][]models.AssetTag{}, nil)

	err := NewAssetReport(source, tags).Write(context.Background(), &bytes.Buffer{}, "pdf", &assets.AssetListQuery{})

	assert.Error(t, err)
}

func setupTestRouter(t *testing.T, source AssetSource, tags TagSource) *gin.Engine {
	gin.SetMode(gin.TestMode)
	require.NoError(t, binding.RegisterValidators())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("role", "moderator")
		c.Next()
	})
	NewHandler(NewAssetReport(source, tags), zap.NewNop()).RegisterRoutes(router.Group(""))
	return router
}

func TestExportAssetsHandler(t *testing.T) {
	t.Run("csv with filters", func(t *testing.T) {
		source := new(MockAssetSource)
		source.On("GetAssetsForReport", mock.MatchedBy(func(q repository.QueryBuilder) bool {
			query, ok := q.(*assets.AssetListQuery)
			return ok && query.Status == "in_stock" && query.VendorID != nil && *query.VendorID == 3
		})).Return(reportAssets(), nil)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/reports/assets?format=csv&status=in_stock&vendor_id=3", nil)
		setupTestRouter(t, source, reportTags()).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
		assert.Contains(t, w.Header().Get("Content-Disposition"), ".csv")
		source.AssertExpectations(t)
	})

	t.Run("unsupported format", func(t *testing.T) {
		source := new(MockAssetSource)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/reports/assets?format=pdf", nil)
		setupTestRouter(t, source, new(MockTagSource)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		source.AssertNotCalled(t, "GetAssetsForReport", mock.Anything)
	})

	t.Run("source failure", func(t *testing.T) {
		source := new(MockAssetSource)
		source.On("GetAssetsForReport", mock.Anything).Return(nil, errors.New("db down"))

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/reports/assets?format=xlsx", nil)
		setupTestRouter(t, source, new(MockTagSource)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}
