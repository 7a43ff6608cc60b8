package vendors

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

var vendorColumns = []interface{}{"id", "name", "contact_name", "contact_email", "phone", "website", "created_at"}

type VendorsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *VendorsRepository {
	return &VendorsRepository{repository: r}
}

func (r *VendorsRepository) GetVendors(ctx context.Context, pagination *repository.Pagination) ([]models.Vendor, int, error) {
	return r.list(ctx, goqu.Ex{}, pagination)
}

func (r *VendorsRepository) SearchVendors(ctx context.Context, term string, pagination *repository.Pagination) ([]models.Vendor, int, error) {
	return r.list(ctx, goqu.C("name").ILike("%"+strings.TrimSpace(term)+"%"), pagination)
}

func (r *VendorsRepository) GetVendor(ctx context.Context, id int) (*models.Vendor, error) {
	var vendor models.Vendor
	found, err := r.repository.GoquDBWrapper.
		From("vendors").
		Select(vendorColumns...).
		Where(goqu.Ex{"id": id}).
		Executor().ScanStructContext(ctx, &vendor)
	if err != nil {
		return nil, fmt.Errorf("failed to get vendor: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Vendor", id)
	}

	return &vendor, nil
}

func (r *VendorsRepository) PersistVendor(ctx context.Context, req models.VendorRequest) (int, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.
		Insert("vendors").
		Rows(vendorRecord(req)).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, "failed to insert vendor")
	}

	return id, nil
}

func (r *VendorsRepository) UpdateVendor(ctx context.Context, id int, req models.VendorRequest) error {
	res, err := r.repository.GoquDBWrapper.
		Update("vendors").
		Set(vendorRecord(req)).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update vendor")
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return custom_error.NewNotFoundError("Vendor", id)
	}

	return nil
}

// DeleteVendor fails with a conflict while assets or purchase orders reference the vendor.
func (r *VendorsRepository) DeleteVendor(ctx context.Context, id int) (bool, error) {
	res, err := r.repository.GoquDBWrapper.
		Delete("vendors").
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to delete vendor")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *VendorsRepository) list(ctx context.Context, where exp.Expression, pagination *repository.Pagination) ([]models.Vendor, int, error) {
	var total int
	_, err := r.repository.GoquDBWrapper.
		From("vendors").
		Select(goqu.COUNT("*")).
		Where(where).
		Executor().ScanValContext(ctx, &total)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to count vendors: %w", err)
	}

	vendors := []models.Vendor{}
	query := r.repository.GoquDBWrapper.
		From("vendors").
		Select(vendorColumns...).
		Where(where).
		Order(goqu.C("name").Asc())
	if err := pagination.Apply(query).Executor().ScanStructsContext(ctx, &vendors); err != nil {
		return nil, 0, fmt.Errorf("unable to select vendors: %w", err)
	}

	return vendors, total, nil
}

func vendorRecord(req models.VendorRequest) goqu.Record {
	return goqu.Record{
		"name":          strings.TrimSpace(req.Name),
		"contact_name":  req.ContactName,
		"contact_email": req.ContactEmail,
		"phone":         req.Phone,
		"website":       req.Website,
	}
}
