package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*CatalogRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(repository.NewRepository(db)), mock
}

func TestGetModelJoinsMake(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM "asset_models" AS "md" LEFT JOIN "asset_makes" AS "mk".*"md"."id" = 11`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "asset_make_id", "make_name"}).
			AddRow(11, "Latitude 7440", 5, "Dell"))

	model, err := repo.GetModel(context.Background(), 11)

	require.NoError(t, err)
	require.NotNil(t, model.AssetMakeID)
	assert.Equal(t, 5, *model.AssetMakeID)
	assert.Equal(t, "Dell", *model.MakeName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMakeNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM "asset_makes" AS "mk"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "asset_type_id", "type_name"}))

	_, err := repo.GetMake(context.Background(), 5)

	assert.True(t, custom_error.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPersistTypeDerivesPrefix(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`INSERT INTO "asset_types" \("code_prefix", "description", "name"\) VALUES \('LAP', NULL, 'Laptop'\) RETURNING "id"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	id, err := repo.PersistType(context.Background(), models.AssetTypeRequest{Name: " Laptop "})

	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReferencedTypeReturnsConflict(t *testing.T) {
	repo, mock := newMockRepository(t)
	gin.SetMode(gin.TestMode)

	mock.ExpectExec(`DELETE FROM "asset_types" WHERE \("id" = 1\)`).WillReturnError(&pq.Error{Code: "23503"})

	router := gin.New()
	group := router.Group("")
	group.Use(func(c *gin.Context) {
		c.Set("role", "admin")
		c.Next()
	})
	NewHandler(repo, auditlog.Nop{}).RegisterRoutes(group)

	req, _ := http.NewRequest(http.MethodDelete, "/catalog/types/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingModelReturnsNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)
	gin.SetMode(gin.TestMode)

	mock.ExpectExec(`DELETE FROM "asset_models"`).WillReturnResult(sqlmock.NewResult(0, 0))

	router := gin.New()
	group := router.Group("")
	group.Use(func(c *gin.Context) {
		c.Set("role", "admin")
		c.Next()
	})
	NewHandler(repo, auditlog.Nop{}).RegisterRoutes(group)

	req, _ := http.NewRequest(http.MethodDelete, "/catalog/models/9", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
