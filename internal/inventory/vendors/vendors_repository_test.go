package vendors

import (
	"context"
	"testing"
	"time"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*VendorsRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(repository.NewRepository(db)), mock
}

func TestGetVendorNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM "vendors" WHERE \("id" = 3\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact_name", "contact_email", "phone", "website", "created_at"}))

	vendor, err := repo.GetVendor(context.Background(), 3)

	assert.Nil(t, vendor)
	assert.True(t, custom_error.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchVendors(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM "vendors" WHERE \("name" ILIKE '%dell%'\)`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT "id", "name", .* FROM "vendors" WHERE \("name" ILIKE '%dell%'\) ORDER BY "name" ASC LIMIT 20`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "contact_name", "contact_email", "phone", "website", "created_at"}).
			AddRow(1, "Dell", nil, "sales@dell.example", nil, nil, time.Now()))

	vendors, total, err := repo.SearchVendors(context.Background(), " dell ", &repository.Pagination{})

	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, vendors, 1)
	assert.Equal(t, "Dell", vendors[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteReferencedVendorIsConflict(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectExec(`DELETE FROM "vendors"`).WillReturnError(&pq.Error{Code: "23503"})

	deleted, err := repo.DeleteVendor(context.Background(), 1)

	assert.False(t, deleted)
	assert.True(t, custom_error.IsConflict(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
