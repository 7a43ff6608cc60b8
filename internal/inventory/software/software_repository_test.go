package software

import (
	"context"
	"testing"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepository(t *testing.T) (*SoftwareRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(repository.NewRepository(db)), mock
}

func TestGetOSVersion(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM "os_versions" AS "osv" LEFT JOIN "operating_systems" AS "os".*"osv"."id" = 3`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "os_id", "os_name"}).AddRow(3, "23H2", 2, "Windows 11"))

	version, err := repo.GetOSVersion(context.Background(), 3)

	require.NoError(t, err)
	require.NotNil(t, version.OSID)
	assert.Equal(t, 2, *version.OSID)
	assert.Equal(t, "Windows 11", *version.OSName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOSVersionWithoutOperatingSystem(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM "os_versions" AS "osv"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "os_id", "os_name"}).AddRow(4, "orphan", nil, nil))

	version, err := repo.GetOSVersion(context.Background(), 4)

	require.NoError(t, err)
	assert.Nil(t, version.OSID)
}

func TestGetOSVersionNotFound(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(`FROM "os_versions" AS "osv"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "os_id", "os_name"}))

	_, err := repo.GetOSVersion(context.Background(), 99)

	assert.True(t, custom_error.IsNotFound(err))
}

func TestGetOSVersionsFilteredByOS(t *testing.T) {
	repo, mock := newMockRepository(t)
	osID := 2

	mock.ExpectQuery(`WHERE \("osv"."os_id" = 2\) ORDER BY "os"."name" ASC, "osv"."name" ASC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "os_id", "os_name"}).
			AddRow(3, "23H2", 2, "Windows 11").
			AddRow(5, "24H2", 2, "Windows 11"))

	versions, err := repo.GetOSVersions(context.Background(), &osID)

	require.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
