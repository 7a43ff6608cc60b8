package software

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

type SoftwareRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *SoftwareRepository {
	return &SoftwareRepository{repository: r}
}

func (r *SoftwareRepository) GetOperatingSystems(ctx context.Context) ([]models.OperatingSystem, error) {
	systems := []models.OperatingSystem{}
	err := r.repository.GoquDBWrapper.
		From("operating_systems").
		Select("id", "name").
		Order(goqu.C("name").Asc()).
		Executor().ScanStructsContext(ctx, &systems)
	if err != nil {
		return nil, fmt.Errorf("failed to list operating systems: %w", err)
	}

	return systems, nil
}

func (r *SoftwareRepository) GetOperatingSystem(ctx context.Context, id int) (*models.OperatingSystem, error) {
	var os models.OperatingSystem
	found, err := r.repository.GoquDBWrapper.
		From("operating_systems").
		Select("id", "name").
		Where(goqu.Ex{"id": id}).
		Executor().ScanStructContext(ctx, &os)
	if err != nil {
		return nil, fmt.Errorf("failed to get operating system: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Operating System", id)
	}

	return &os, nil
}

func (r *SoftwareRepository) PersistOperatingSystem(ctx context.Context, req models.OperatingSystemRequest) (int, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.
		Insert("operating_systems").
		Rows(goqu.Record{"name": strings.TrimSpace(req.Name)}).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, "failed to insert operating system")
	}

	return id, nil
}

func (r *SoftwareRepository) UpdateOperatingSystem(ctx context.Context, id int, req models.OperatingSystemRequest) error {
	return r.update(ctx, "operating_systems", id, goqu.Record{"name": strings.TrimSpace(req.Name)}, "Operating System")
}

func (r *SoftwareRepository) DeleteOperatingSystem(ctx context.Context, id int) (bool, error) {
	return r.delete(ctx, "operating_systems", id)
}

// GetOSVersions lists versions, limited to one operating system when osID is set.
func (r *SoftwareRepository) GetOSVersions(ctx context.Context, osID *int) ([]models.OSVersion, error) {
	query := r.versionQuery().Order(goqu.I("os.name").Asc(), goqu.I("osv.name").Asc())
	if osID != nil {
		query = query.Where(goqu.Ex{"osv.os_id": *osID})
	}

	versions := []models.OSVersion{}
	if err := query.Executor().ScanStructsContext(ctx, &versions); err != nil {
		return nil, fmt.Errorf("failed to list OS versions: %w", err)
	}

	return versions, nil
}

func (r *SoftwareRepository) GetOSVersion(ctx context.Context, id int) (*models.OSVersion, error) {
	var version models.OSVersion
	found, err := r.versionQuery().
		Where(goqu.Ex{"osv.id": id}).
		Executor().ScanStructContext(ctx, &version)
	if err != nil {
		return nil, fmt.Errorf("failed to get OS version: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("OS Version", id)
	}

	return &version, nil
}

func (r *SoftwareRepository) PersistOSVersion(ctx context.Context, req models.OSVersionRequest) (int, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.
		Insert("os_versions").
		Rows(goqu.Record{"name": strings.TrimSpace(req.Name), "os_id": req.OSID}).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, "failed to insert OS version")
	}

	return id, nil
}

func (r *SoftwareRepository) UpdateOSVersion(ctx context.Context, id int, req models.OSVersionRequest) error {
	return r.update(ctx, "os_versions", id, goqu.Record{"name": strings.TrimSpace(req.Name), "os_id": req.OSID}, "OS Version")
}

func (r *SoftwareRepository) DeleteOSVersion(ctx context.Context, id int) (bool, error) {
	return r.delete(ctx, "os_versions", id)
}

func (r *SoftwareRepository) versionQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From(goqu.T("os_versions").As("osv")).
		LeftJoin(goqu.T("operating_systems").As("os"), goqu.On(goqu.Ex{"osv.os_id": goqu.I("os.id")})).
		Select(
			goqu.I("osv.id").As("id"),
			goqu.I("osv.name").As("name"),
			goqu.I("osv.os_id").As("os_id"),
			goqu.I("os.name").As("os_name"),
		)
}

func (r *SoftwareRepository) update(ctx context.Context, table string, id int, record goqu.Record, resource string) error {
	res, err := r.repository.GoquDBWrapper.
		Update(table).
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update "+table)
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return custom_error.NewNotFoundError(resource, id)
	}

	return nil
}

func (r *SoftwareRepository) delete(ctx context.Context, table string, id int) (bool, error) {
	res, err := r.repository.GoquDBWrapper.
		Delete(table).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to delete from "+table)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}
