package purchaseorders

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

type PurchaseOrdersRepository struct {
	repository *repository.Repository
}

func NewRepository(r *repository.Repository) *PurchaseOrdersRepository {
	return &PurchaseOrdersRepository{repository: r}
}

// FindByPONumber looks the PO up by its exact number.
func (r *PurchaseOrdersRepository) FindByPONumber(ctx context.Context, tx repository.Executor, poNumber string) (*models.PurchaseOrder, error) {
	return r.fetchByCondition(ctx, tx, goqu.Ex{"po.po_number": poNumber}, poNumber)
}

func (r *PurchaseOrdersRepository) GetByPONumber(ctx context.Context, poNumber string) (*models.PurchaseOrder, error) {
	return r.FindByPONumber(ctx, nil, poNumber)
}

func (r *PurchaseOrdersRepository) FindByID(ctx context.Context, tx repository.Executor, id int) (*models.PurchaseOrder, error) {
	return r.fetchByCondition(ctx, tx, goqu.Ex{"po.id": id}, id)
}

func (r *PurchaseOrdersRepository) ExistsPONumber(ctx context.Context, tx repository.Executor, poNumber string) (bool, error) {
	var count int
	_, err := r.repository.Executor(tx).
		From("purchase_orders").
		Select(goqu.COUNT("*")).
		Where(goqu.Ex{"po_number": poNumber}).
		Executor().ScanValContext(ctx, &count)
	if err != nil {
		return false, fmt.Errorf("failed to check PO number: %w", err)
	}

	return count > 0, nil
}

var purchaseOrderAliases = map[string]string{
	"vendor_id": "po.vendor_id",
}

func (r *PurchaseOrdersRepository) GetPurchaseOrders(ctx context.Context, vendorID *int, pagination *repository.Pagination) ([]models.PurchaseOrder, int, error) {
	where := repository.NewFilter().
		EqualInt("vendor_id", vendorID).
		BuildConditions(purchaseOrderAliases)
	return r.list(ctx, where, pagination)
}

func (r *PurchaseOrdersRepository) SearchPurchaseOrders(ctx context.Context, term string, pagination *repository.Pagination) ([]models.PurchaseOrder, int, error) {
	pattern := "%" + strings.TrimSpace(term) + "%"
	return r.list(ctx, goqu.Or(
		goqu.I("po.po_number").ILike(pattern),
		goqu.I("po.invoice_number").ILike(pattern),
		goqu.I("v.name").ILike(pattern),
	), pagination)
}

// PersistPurchaseOrder inserts po and returns its id. A zero CreatedAt leaves
// the creation time to the database.
func (r *PurchaseOrdersRepository) PersistPurchaseOrder(ctx context.Context, tx repository.Executor, po models.PurchaseOrder) (int, error) {
	record := goqu.Record{
		"po_number":      po.PONumber,
		"vendor_id":      po.VendorID,
		"order_date":     po.OrderDate,
		"invoice_number": po.InvoiceNumber,
		"total_amount":   po.TotalAmount,
		"currency":       po.Currency,
		"notes":          po.Notes,
	}
	if !po.CreatedAt.IsZero() {
		record["created_at"] = po.CreatedAt
	}

	var id int
	_, err := r.repository.Executor(tx).
		Insert("purchase_orders").
		Rows(record).
		Returning("id").
		Executor().ScanValContext(ctx, &id)
	if err != nil {
		return 0, repository.WrapError(err, "failed to insert purchase order")
	}

	return id, nil
}

func (r *PurchaseOrdersRepository) UpdatePurchaseOrder(ctx context.Context, id int, record goqu.Record) error {
	res, err := r.repository.GoquDBWrapper.
		Update("purchase_orders").
		Set(record).
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return repository.WrapError(err, "failed to update purchase order")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return custom_error.NewNotFoundError("Purchase Order", id)
	}

	return nil
}

// ListAssetSummaries returns every asset row pointing at the PO, deleted ones included.
func (r *PurchaseOrdersRepository) ListAssetSummaries(ctx context.Context, tx repository.Executor, poID int) ([]models.AssetSummary, error) {
	summaries := []models.AssetSummary{}
	err := r.repository.Executor(tx).
		From("assets").
		Select("id", "serial_number", "it_asset_code", "status").
		Where(goqu.Ex{"purchase_order_id": poID}).
		Order(goqu.C("id").Asc()).
		Executor().ScanStructsContext(ctx, &summaries)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase order assets: %w", err)
	}

	return summaries, nil
}

// RepointAssets moves every asset of one PO onto another and returns how many moved.
func (r *PurchaseOrdersRepository) RepointAssets(ctx context.Context, tx repository.Executor, fromID, toID int) (int64, error) {
	res, err := r.repository.Executor(tx).
		Update("assets").
		Set(goqu.Record{"purchase_order_id": toID, "updated_at": goqu.L("NOW()")}).
		Where(goqu.Ex{"purchase_order_id": fromID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, repository.WrapError(err, "failed to repoint assets")
	}

	return res.RowsAffected()
}

func (r *PurchaseOrdersRepository) DeleteAssets(ctx context.Context, tx repository.Executor, poID int) (int64, error) {
	res, err := r.repository.Executor(tx).
		Delete("assets").
		Where(goqu.Ex{"purchase_order_id": poID}).
		Executor().ExecContext(ctx)
	if err != nil {
		return 0, repository.WrapError(err, "failed to delete purchase order assets")
	}

	return res.RowsAffected()
}

// DeleteAssetIfExists removes one asset of the PO, reporting false when no
// such asset is attached to it.
func (r *PurchaseOrdersRepository) DeleteAssetIfExists(ctx context.Context, tx repository.Executor, poID, assetID int) (bool, error) {
	res, err := r.repository.Executor(tx).
		Delete("assets").
		Where(goqu.Ex{"id": assetID, "purchase_order_id": poID}).
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

func (r *PurchaseOrdersRepository) DeletePurchaseOrder(ctx context.Context, tx repository.Executor, id int) (bool, error) {
	res, err := r.repository.Executor(tx).
		Delete("purchase_orders").
		Where(goqu.Ex{"id": id}).
		Executor().ExecContext(ctx)
	if err != nil {
		return false, repository.WrapError(err, "failed to delete purchase order")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *PurchaseOrdersRepository) list(ctx context.Context, where exp.Expression, pagination *repository.Pagination) ([]models.PurchaseOrder, int, error) {
	var total int
	_, err := r.repository.GoquDBWrapper.
		From(goqu.T("purchase_orders").As("po")).
		LeftJoin(goqu.T("vendors").As("v"), goqu.On(goqu.Ex{"po.vendor_id": goqu.I("v.id")})).
		Select(goqu.COUNT("*")).
		Where(where).
		Executor().ScanValContext(ctx, &total)
	if err != nil {
		return nil, 0, fmt.Errorf("unable to count purchase orders: %w", err)
	}

	orders := []models.PurchaseOrder{}
	query := pagination.Apply(r.getPurchaseOrderQuery(nil).Where(where).Order(goqu.I("po.id").Desc()))
	if err := query.Executor().ScanStructsContext(ctx, &orders); err != nil {
		return nil, 0, fmt.Errorf("unable to select purchase orders: %w", err)
	}

	return orders, total, nil
}

func (r *PurchaseOrdersRepository) fetchByCondition(ctx context.Context, tx repository.Executor, condition exp.Expression, key interface{}) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	found, err := r.getPurchaseOrderQuery(tx).
		Where(condition).
		Executor().ScanStructContext(ctx, &po)
	if err != nil {
		return nil, fmt.Errorf("unable to select purchase order: %w", err)
	}
	if !found {
		return nil, custom_error.NewNotFoundError("Purchase Order", key)
	}

	return &po, nil
}

func (r *PurchaseOrdersRepository) getPurchaseOrderQuery(tx repository.Executor) *goqu.SelectDataset {
	return r.repository.Executor(tx).
		From(goqu.T("purchase_orders").As("po")).
		LeftJoin(goqu.T("vendors").As("v"), goqu.On(goqu.Ex{"po.vendor_id": goqu.I("v.id")})).
		Select(
			goqu.I("po.id").As("id"),
			goqu.I("po.po_number").As("po_number"),
			goqu.I("po.vendor_id").As("vendor_id"),
			goqu.I("v.name").As("vendor_name"),
			goqu.I("po.order_date").As("order_date"),
			goqu.I("po.invoice_number").As("invoice_number"),
			goqu.I("po.total_amount").As("total_amount"),
			goqu.I("po.currency").As("currency"),
			goqu.I("po.notes").As("notes"),
			goqu.I("po.created_at").As("created_at"),
		)
}
