package catalog

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
)

const (
	tableTypes  = "asset_types"
	tableMakes  = "asset_makes"
	tableModels = "asset_models"
)

type CatalogRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *CatalogRepository {
	return &CatalogRepository{repository: r}
}

func (r *CatalogRepository) GetTypes(ctx context.Context) ([]models.AssetType, error) {
	types := []models.AssetType{}
	err := r.repository.GoquDBWrapper.
		From(tableTypes).
		Select("id", "name", "code_prefix", "description").
		Order(goqu.C("name").Asc()).
		Executor().ScanStructsContext(ctx, &types)
	if err != nil {
		return nil, fmt.Errorf("failed to list asset types: %w", err)
	}

	return types, nil
}

func (r *CatalogRepository) GetType(ctx context.Context, id int) (*models.AssetType, error) {
	var assetType models.AssetType
	found, err := r.repository.GoquDBWrapper.
		From(tableTypes).
		Select("id", "name", "code_prefix", "description").
		Where(goqu.Ex{"id": id}).
		Executor().ScanStructContext(ctx, &assetType)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset type: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Asset Type", id)
	}

	return &assetType, nil
}

// PersistType stores the type. Without an explicit prefix one is derived from the name.
func (r *CatalogRepository) PersistType(ctx context.Context, req models.AssetTypeRequest) (int, error) {
	return r.insert(ctx, tableTypes, typeRecord(req), "failed to insert asset type")
}

func (r *CatalogRepository) UpdateType(ctx context.Context, id int, req models.AssetTypeRequest) error {
	return r.update(ctx, tableTypes, id, typeRecord(req), "Asset Type")
}

func (r *CatalogRepository) DeleteType(ctx context.Context, id int) (bool, error) {
	return r.delete(ctx, tableTypes, id)
}

func (r *CatalogRepository) GetMakes(ctx context.Context, typeID *int) ([]models.AssetMake, error) {
	query := r.makeQuery().Order(goqu.I("mk.name").Asc())
	if typeID != nil {
		query = query.Where(goqu.Ex{"mk.asset_type_id": *typeID})
	}

	makes := []models.AssetMake{}
	if err := query.Executor().ScanStructsContext(ctx, &makes); err != nil {
		return nil, fmt.Errorf("failed to list asset makes: %w", err)
	}

	return makes, nil
}

func (r *CatalogRepository) GetMake(ctx context.Context, id int) (*models.AssetMake, error) {
	var assetMake models.AssetMake
	found, err := r.makeQuery().
		Where(goqu.Ex{"mk.id": id}).
		Executor().ScanStructContext(ctx, &assetMake)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset make: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Asset Make", id)
	}

	return &assetMake, nil
}

func (r *CatalogRepository) PersistMake(ctx context.Context, req models.AssetMakeRequest) (int, error) {
	return r.insert(ctx, tableMakes, goqu.Record{
		"name":          strings.TrimSpace(req.Name),
		"asset_type_id": req.AssetTypeID,
	}, "failed to insert asset make")
}

func (r *CatalogRepository) UpdateMake(ctx context.Context, id int, req models.AssetMakeRequest) error {
	return r.update(ctx, tableMakes, id, goqu.Record{
		"name":          strings.TrimSpace(req.Name),
		"asset_type_id": req.AssetTypeID,
	}, "Asset Make")
}

func (r *CatalogRepository) DeleteMake(ctx context.Context, id int) (bool, error) {
	return r.delete(ctx, tableMakes, id)
}

func (r *CatalogRepository) GetModels(ctx context.Context, makeID *int) ([]models.AssetModel, error) {
	query := r.modelQuery().Order(goqu.I("md.name").Asc())
	if makeID != nil {
		query = query.Where(goqu.Ex{"md.asset_make_id": *makeID})
	}

	assetModels := []models.AssetModel{}
	if err := query.Executor().ScanStructsContext(ctx, &assetModels); err != nil {
		return nil, fmt.Errorf("failed to list asset models: %w", err)
	}

	return assetModels, nil
}

func (r *CatalogRepository) GetModel(ctx context.Context, id int) (*models.AssetModel, error) {
	var assetModel models.AssetModel
	found, err := r.modelQuery().
		Where(goqu.Ex{"md.id": id}).
		Executor().ScanStructContext(ctx, &assetModel)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset model: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Asset Model", id)
	}

	return &assetModel, nil
}

func (r *CatalogRepository) PersistModel(ctx context.Context, req models.AssetModelRequest) (int, error) {
	return r.insert(ctx, tableModels, goqu.Record{
		"name":          strings.TrimSpace(req.Name),
		"asset_make_id": req.AssetMakeID,
	}, "failed to insert asset model")
}

func (r *CatalogRepository) UpdateModel(ctx context.Context, id int, req models.AssetModelRequest) error {
	return r.update(ctx, tableModels, id, goqu.Record{
		"name":          strings.TrimSpace(req.Name),
		"asset_make_id": req.AssetMakeID,
	}, "Asset Model")
}

func (r *CatalogRepository) DeleteModel(ctx context.Context, id int) (bool, error) {
	return r.delete(ctx, tableModels, id)
}

func (r *CatalogRepository) makeQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From(goqu.T(tableMakes).As("mk")).
		LeftJoin(goqu.T(tableTypes).As("t"), goqu.On(goqu.Ex{"mk.asset_type_id": goqu.I("t.id")})).
		Select(
			goqu.I("mk.id").As("id"),
			goqu.I("mk.name").As("name"),
			goqu.I("mk.asset_type_id").As("asset_type_id"),
			goqu.I("t.name").As("type_name"),
		)
}

func (r *CatalogRepository) modelQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.
		From(goqu.T(tableModels).As("md")).
		LeftJoin(goqu.T(tableMakes).As("mk"), goqu.On(goqu.Ex{"md.asset_make_id": goqu.I("mk.id")})).
		Select(
			goqu.I("md.id").As("id"),
			goqu.I("md.name").As("name"),
			goqu.I("md.asset_make_id").As("asset_make_id"),
			goqu.I("mk.name").As("make_name"),
		)
}

func (r *CatalogRepository) insert(ctx context.Context, table string, record goqu.Record, message string) (int, error) {
	var id int
	_, err := r.repository.GoquDBWrapper.
		Insert(table).
		Rows(record).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, message)
	}

	return id, nil
}

func (r *CatalogRepository) update(ctx context.Context, table string, id int, record goqu.Record, resource string) error {
	res, err := r.repository.GoquDBWrapper.
		Update(table).
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update "+strings.ToLower(resource))
	}

	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return custom_error.NewNotFoundError(resource, id)
	}

	return nil
}

func (r *CatalogRepository) delete(ctx context.Context, table string, id int) (bool, error) {
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

func typeRecord(req models.AssetTypeRequest) goqu.Record {
	prefix := strings.ToUpper(strings.TrimSpace(req.CodePrefix))
	if prefix == "" {
		prefix = metadata.PrefixFromName(req.Name)
	}

	return goqu.Record{
		"name":        strings.TrimSpace(req.Name),
		"code_prefix": prefix,
		"description": req.Description,
	}
}
