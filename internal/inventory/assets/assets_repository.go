package assets

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

type AssetsRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *AssetsRepository {
	return &AssetsRepository{
		repository: r,
	}
}

func (r *AssetsRepository) GetAsset(ctx context.Context, id int) (*models.Asset, error) {
	return r.fetchAssetByCondition(ctx, goqu.Ex{"a.id": id}, id)
}

func (r *AssetsRepository) GetAssetByITAssetCode(ctx context.Context, code string) (*models.Asset, error) {
	return r.fetchAssetByCondition(ctx, goqu.And(
		goqu.Func("LOWER", goqu.I("a.it_asset_code")).Eq(strings.ToLower(code)),
		goqu.I("a.deleted").IsFalse(),
	), code)
}

func (r *AssetsRepository) GetAssetsBy(ctx context.Context, conditions repository.QueryBuilder, pagination *repository.Pagination) ([]models.Asset, int, error) {
	where := conditions.BuildConditions(assetListAliases)
	return r.listAssets(ctx, where, pagination)
}

// SearchAssets matches term against serial number, IT asset code, MAC address
// and name of assets that are not deleted.
func (r *AssetsRepository) SearchAssets(ctx context.Context, term string, pagination *repository.Pagination) ([]models.Asset, int, error) {
	pattern := "%" + strings.TrimSpace(term) + "%"
	where := goqu.And(
		goqu.I("a.deleted").IsFalse(),
		goqu.Or(
			goqu.I("a.serial_number").ILike(pattern),
			goqu.I("a.it_asset_code").ILike(pattern),
			goqu.I("a.mac_address").ILike(pattern),
			goqu.I("a.name").ILike(pattern),
		),
	)
	return r.listAssets(ctx, where, pagination)
}

// GetAssetsForReport returns every asset matching conditions without paging.
func (r *AssetsRepository) GetAssetsForReport(ctx context.Context, conditions repository.QueryBuilder) ([]models.Asset, error) {
	assets, _, err := r.listAssets(ctx, conditions.BuildConditions(assetListAliases), nil)
	return assets, err
}

func (r *AssetsRepository) ExistsIgnoreCase(ctx context.Context, field UniqueField, value string, excludeID int) (bool, error) {
	switch field {
	case FieldSerialNumber, FieldITAssetCode, FieldMacAddress:
	default:
		return false, fmt.Errorf("unsupported unique field %q", field)
	}

	conditions := []exp.Expression{
		goqu.Func("LOWER", goqu.C(string(field))).Eq(strings.ToLower(value)),
		goqu.C("deleted").IsFalse(),
	}
	if excludeID > 0 {
		conditions = append(conditions, goqu.C("id").Neq(excludeID))
	}

	var count int
	_, err := r.repository.GoquDBWrapper.
		From("assets").
		Select(goqu.COUNT("*")).
		Where(conditions...).
		Executor().ScanValContext(ctx, &count)
	if err != nil {
		return false, fmt.Errorf("failed to check %s uniqueness: %w", field, err)
	}

	return count > 0, nil
}

// PersistAsset inserts the record and returns the new asset id.
func (r *AssetsRepository) PersistAsset(ctx context.Context, tx repository.Executor, record goqu.Record) (int, error) {
	var id int
	_, err := r.repository.Executor(tx).
		Insert("assets").
		Rows(record).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, "failed to insert asset")
	}

	return id, nil
}

func (r *AssetsRepository) UpdateAsset(ctx context.Context, tx repository.Executor, id int, record goqu.Record) error {
	record["updated_at"] = goqu.L("NOW()")

	res, err := r.repository.Executor(tx).
		Update("assets").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update asset")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Asset", id)
	}

	return nil
}

func (r *AssetsRepository) UpdateITAssetCode(ctx context.Context, tx repository.Executor, id int, code string) error {
	return r.UpdateAsset(ctx, tx, id, goqu.Record{"it_asset_code": code})
}

func (r *AssetsRepository) UpdateStatus(ctx context.Context, tx repository.Executor, id int, status metadata.Status) error {
	return r.UpdateAsset(ctx, tx, id, goqu.Record{"status": status.String()})
}

func (r *AssetsRepository) UpdateCurrentUser(ctx context.Context, tx repository.Executor, id int, userID *int) error {
	return r.UpdateAsset(ctx, tx, id, goqu.Record{"current_user_id": userID})
}

// CodePrefix returns the code prefix of an asset type, or "" for unknown types.
func (r *AssetsRepository) CodePrefix(ctx context.Context, tx repository.Executor, typeID int) (string, error) {
	var prefix string
	found, err := r.repository.Executor(tx).
		From("asset_types").
		Select("code_prefix").
		Where(goqu.Ex{"id": typeID}).
		Executor().ScanValContext(ctx, &prefix)
	if err != nil {
		return "", fmt.Errorf("failed to read asset type prefix: %w", err)
	}
	if !found {
		return "", nil
	}

	return prefix, nil
}

func (r *AssetsRepository) SoftDeleteAsset(ctx context.Context, id int) (bool, error) {
	return r.setDeleted(ctx, id, true)
}

func (r *AssetsRepository) RestoreAsset(ctx context.Context, id int) (bool, error) {
	return r.setDeleted(ctx, id, false)
}

// DeleteIfExists removes the asset row. It reports false, without error, when
// there was nothing to remove.
func (r *AssetsRepository) DeleteIfExists(ctx context.Context, tx repository.Executor, id int) (bool, error) {
	res, err := r.repository.Executor(tx).
		Delete("assets").
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to delete asset")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *AssetsRepository) setDeleted(ctx context.Context, id int, deleted bool) (bool, error) {
	res, err := r.repository.GoquDBWrapper.
		Update("assets").
		Set(goqu.Record{"deleted": deleted, "updated_at": goqu.L("NOW()")}).
		Where(goqu.Ex{"id": id, "deleted": !deleted}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to change asset deleted flag")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *AssetsRepository) listAssets(ctx context.Context, where exp.Expression, pagination *repository.Pagination) ([]models.Asset, int, error) {
	var total int
	if pagination != nil {
		_, err := r.repository.GoquDBWrapper.
			From(goqu.T("assets").As("a")).
			Select(goqu.COUNT("*")).
			Where(where).
			Executor().ScanValContext(ctx, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("unable to count assets: %w", err)
		}
	}

	query := r.getAssetQuery().
		Where(where).
		Order(goqu.I("a.id").Asc())
	if pagination != nil {
		query = pagination.Apply(query)
	}

	var flatAssets []models.FlatAssetRecord
	if err := query.Executor().ScanStructsContext(ctx, &flatAssets); err != nil {
		return nil, 0, fmt.Errorf("unable to select assets from database: %w", err)
	}

	assets := make([]models.Asset, 0, len(flatAssets))
	for _, flatAsset := range flatAssets {
		assets = append(assets, flatAsset.TransformToAsset())
	}

	if pagination == nil {
		total = len(assets)
	}

	return assets, total, nil
}

func (r *AssetsRepository) fetchAssetByCondition(ctx context.Context, condition exp.Expression, key interface{}) (*models.Asset, error) {
	query := r.getAssetQuery().Where(condition)

	var flatAsset models.FlatAssetRecord
	found, err := query.Executor().ScanStructContext(ctx, &flatAsset)
	if err != nil {
		return nil, fmt.Errorf("unable to select asset from database: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Asset", key)
	}

	asset := flatAsset.TransformToAsset()
	return &asset, nil
}

func (r *AssetsRepository) getAssetQuery() *goqu.SelectDataset {
	return r.repository.GoquDBWrapper.Select(
		goqu.I("a.id").As("asset_id"),
		goqu.I("a.name").As("name"),
		goqu.I("a.serial_number").As("serial_number"),
		goqu.I("a.it_asset_code").As("it_asset_code"),
		goqu.I("a.mac_address").As("mac_address"),
		goqu.I("a.ip_address").As("ip_address"),
		goqu.I("a.status").As("status"),
		goqu.I("t.id").As("type_id"),
		goqu.I("t.name").As("type_name"),
		goqu.I("mk.id").As("make_id"),
		goqu.I("mk.name").As("make_name"),
		goqu.I("md.id").As("model_id"),
		goqu.I("md.name").As("model_name"),
		goqu.I("os.id").As("os_id"),
		goqu.I("os.name").As("os_name"),
		goqu.I("osv.id").As("os_version_id"),
		goqu.I("osv.name").As("os_version_name"),
		goqu.I("v.id").As("vendor_id"),
		goqu.I("v.name").As("vendor_name"),
		goqu.I("ev.id").As("ext_vendor_id"),
		goqu.I("ev.name").As("ext_vendor_name"),
		goqu.I("po.id").As("po_id"),
		goqu.I("po.po_number").As("po_number"),
		goqu.I("u.id").As("user_id"),
		goqu.I("u.username").As("user_username"),
		goqu.I("u.fullname").As("user_fullname"),
		goqu.I("a.purchase_date").As("purchase_date"),
		goqu.I("a.warranty_expiry").As("warranty_expiry"),
		goqu.I("a.extended_warranty_expiry").As("extended_warranty_expiry"),
		goqu.I("a.purchase_cost").As("purchase_cost"),
		goqu.I("a.notes").As("notes"),
		goqu.I("a.deleted").As("deleted"),
		goqu.I("a.created_at").As("created_at"),
		goqu.I("a.updated_at").As("updated_at"),
	).
		From(goqu.T("assets").As("a")).
		LeftJoin(goqu.T("asset_types").As("t"), goqu.On(goqu.Ex{"a.asset_type_id": goqu.I("t.id")})).
		LeftJoin(goqu.T("asset_makes").As("mk"), goqu.On(goqu.Ex{"a.asset_make_id": goqu.I("mk.id")})).
		LeftJoin(goqu.T("asset_models").As("md"), goqu.On(goqu.Ex{"a.asset_model_id": goqu.I("md.id")})).
		LeftJoin(goqu.T("operating_systems").As("os"), goqu.On(goqu.Ex{"a.os_id": goqu.I("os.id")})).
		LeftJoin(goqu.T("os_versions").As("osv"), goqu.On(goqu.Ex{"a.os_version_id": goqu.I("osv.id")})).
		LeftJoin(goqu.T("vendors").As("v"), goqu.On(goqu.Ex{"a.vendor_id": goqu.I("v.id")})).
		LeftJoin(goqu.T("vendors").As("ev"), goqu.On(goqu.Ex{"a.extended_warranty_vendor_id": goqu.I("ev.id")})).
		LeftJoin(goqu.T("purchase_orders").As("po"), goqu.On(goqu.Ex{"a.purchase_order_id": goqu.I("po.id")})).
		LeftJoin(goqu.T("users").As("u"), goqu.On(goqu.Ex{"a.current_user_id": goqu.I("u.id")}))
}
