package purchaseorders

import (
	"context"
	"strings"

	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	operationMigrate = "migrate_po_number"
	operationDelete  = "cascade_delete"
	operationDetach  = "detach_asset"
)

var cascadeOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "itinventory",
	Subsystem: "purchase_orders",
	Name:      "cascade_operations_total",
	Help:      "Cascading purchase order operations by outcome.",
}, []string{"operation", "outcome"})

type Store interface {
	FindByPONumber(ctx context.Context, tx repository.Executor, poNumber string) (*models.PurchaseOrder, error)
	FindByID(ctx context.Context, tx repository.Executor, id int) (*models.PurchaseOrder, error)
	ExistsPONumber(ctx context.Context, tx repository.Executor, poNumber string) (bool, error)
	GetPurchaseOrders(ctx context.Context, vendorID *int, pagination *repository.Pagination) ([]models.PurchaseOrder, int, error)
	SearchPurchaseOrders(ctx context.Context, term string, pagination *repository.Pagination) ([]models.PurchaseOrder, int, error)
	PersistPurchaseOrder(ctx context.Context, tx repository.Executor, po models.PurchaseOrder) (int, error)
	UpdatePurchaseOrder(ctx context.Context, id int, record goqu.Record) error
	ListAssetSummaries(ctx context.Context, tx repository.Executor, poID int) ([]models.AssetSummary, error)
	RepointAssets(ctx context.Context, tx repository.Executor, fromID, toID int) (int64, error)
	DeleteAssets(ctx context.Context, tx repository.Executor, poID int) (int64, error)
	DeleteAssetIfExists(ctx context.Context, tx repository.Executor, poID, assetID int) (bool, error)
	DeletePurchaseOrder(ctx context.Context, tx repository.Executor, id int) (bool, error)
}

type ReferenceChecker interface {
	ExistsByID(ctx context.Context, table string, id int) (bool, error)
}

type PurchaseOrderService struct {
	repo     Store
	tx       repository.Transactor
	refs     ReferenceChecker
	auditLog auditlog.Logger
	logger   *zap.Logger
}

func NewService(repo Store, tx repository.Transactor, refs ReferenceChecker, auditLog auditlog.Logger, logger *zap.Logger) *PurchaseOrderService {
	return &PurchaseOrderService{
		repo:     repo,
		tx:       tx,
		refs:     refs,
		auditLog: auditLog,
		logger:   logger,
	}
}

func (s *PurchaseOrderService) CreatePurchaseOrder(ctx context.Context, req models.PurchaseOrderRequest) (*models.PurchaseOrder, error) {
	number := strings.TrimSpace(req.PONumber)
	if number == "" {
		return nil, custom_error.NewValidationError("PO number must not be empty")
	}

	if err := s.checkVendor(ctx, req.VendorID); err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsPONumber(ctx, nil, number)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, custom_error.NewConflictError("Purchase Order already exists: %s", number)
	}

	id, err := s.repo.PersistPurchaseOrder(ctx, nil, models.PurchaseOrder{
		PONumber:      number,
		VendorID:      req.VendorID,
		OrderDate:     req.OrderDate,
		InvoiceNumber: req.InvoiceNumber,
		TotalAmount:   req.TotalAmount,
		Currency:      upper(req.Currency),
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, err
	}

	po, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "create", map[string]interface{}{"po_number": po.PONumber}, po)
	return po, nil
}

func (s *PurchaseOrderService) GetPurchaseOrder(ctx context.Context, id int) (*models.PurchaseOrder, error) {
	return s.repo.FindByID(ctx, nil, id)
}

func (s *PurchaseOrderService) GetByPONumber(ctx context.Context, poNumber string) (*models.PurchaseOrder, error) {
	return s.repo.FindByPONumber(ctx, nil, strings.TrimSpace(poNumber))
}

func (s *PurchaseOrderService) ListPurchaseOrders(ctx context.Context, vendorID *int, pagination repository.Pagination) (repository.Page[models.PurchaseOrder], error) {
	orders, total, err := s.repo.GetPurchaseOrders(ctx, vendorID, &pagination)
	if err != nil {
		return repository.Page[models.PurchaseOrder]{}, err
	}
	return repository.NewPage(orders, pagination, total), nil
}

func (s *PurchaseOrderService) SearchPurchaseOrders(ctx context.Context, term string, pagination repository.Pagination) (repository.Page[models.PurchaseOrder], error) {
	if strings.TrimSpace(term) == "" {
		return repository.Page[models.PurchaseOrder]{}, custom_error.NewValidationError("search term must not be empty")
	}

	orders, total, err := s.repo.SearchPurchaseOrders(ctx, term, &pagination)
	if err != nil {
		return repository.Page[models.PurchaseOrder]{}, err
	}
	return repository.NewPage(orders, pagination, total), nil
}

func (s *PurchaseOrderService) UpdatePurchaseOrder(ctx context.Context, id int, req models.UpdatePurchaseOrderRequest) (*models.PurchaseOrder, error) {
	if err := s.checkVendor(ctx, req.VendorID); err != nil {
		return nil, err
	}

	record := goqu.Record{}
	if req.VendorID != nil {
		record["vendor_id"] = req.VendorID
	}
	if req.OrderDate != nil {
		record["order_date"] = req.OrderDate
	}
	if req.InvoiceNumber != nil {
		record["invoice_number"] = req.InvoiceNumber
	}
	if req.TotalAmount.Valid {
		record["total_amount"] = req.TotalAmount
	}
	if req.Currency != nil {
		record["currency"] = upper(req.Currency)
	}
	if req.Notes != nil {
		record["notes"] = req.Notes
	}

	if len(record) > 0 {
		if err := s.repo.UpdatePurchaseOrder(ctx, id, record); err != nil {
			return nil, err
		}
	}

	po, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "update", map[string]interface{}{"fields": len(record)}, po)
	return po, nil
}

func (s *PurchaseOrderService) ListAssets(ctx context.Context, id int) ([]models.AssetSummary, error) {
	if _, err := s.repo.FindByID(ctx, nil, id); err != nil {
		return nil, err
	}
	return s.repo.ListAssetSummaries(ctx, nil, id)
}

// MigratePONumber renames a PO by creating a copy under newNumber, moving
// every asset over and removing the old PO. All steps share one transaction;
// any failure leaves the store untouched.
func (s *PurchaseOrderService) MigratePONumber(ctx context.Context, oldNumber, newNumber string) (*models.PONumberMigration, error) {
	oldNumber = strings.TrimSpace(oldNumber)
	newNumber = strings.TrimSpace(newNumber)
	if oldNumber == "" || newNumber == "" {
		return nil, custom_error.NewValidationError("old and new PO numbers are required")
	}
	if oldNumber == newNumber {
		return nil, custom_error.NewValidationError("new PO number must differ from the old one")
	}

	var migration models.PONumberMigration
	err := s.tx.WithTransaction(ctx, func(tx repository.Executor) error {
		old, err := s.repo.FindByPONumber(ctx, tx, oldNumber)
		if err != nil {
			return err
		}

		taken, err := s.repo.ExistsPONumber(ctx, tx, newNumber)
		if err != nil {
			return err
		}
		if taken {
			return custom_error.NewConflictError("Purchase Order already exists: %s", newNumber)
		}

		replacement := *old
		replacement.PONumber = newNumber
		newID, err := s.repo.PersistPurchaseOrder(ctx, tx, replacement)
		if err != nil {
			return err
		}

		moved, err := s.repo.RepointAssets(ctx, tx, old.ID, newID)
		if err != nil {
			return err
		}

		deleted, err := s.repo.DeletePurchaseOrder(ctx, tx, old.ID)
		if err != nil {
			return err
		}
		if !deleted {
			return custom_error.NewNotFoundError("Purchase Order", oldNumber)
		}

		migration = models.PONumberMigration{
			OldPONumber:     oldNumber,
			NewPONumber:     newNumber,
			PurchaseOrderID: newID,
			AssetsUpdated:   int(moved),
		}
		return nil
	})
	if err != nil {
		s.recordOutcome(operationMigrate, err)
		s.logger.Warn("PO number migration failed",
			zap.String("old_po_number", oldNumber),
			zap.String("new_po_number", newNumber),
			zap.Error(err),
		)
		return nil, err
	}

	s.recordOutcome(operationMigrate, nil)
	s.logger.Info("PO number migrated",
		zap.String("old_po_number", oldNumber),
		zap.String("new_po_number", newNumber),
		zap.Int("assets_updated", migration.AssetsUpdated),
	)
	s.auditLog.Log(ctx, "po_number_migrated", map[string]interface{}{
		"old_po_number":  oldNumber,
		"new_po_number":  newNumber,
		"assets_updated": migration.AssetsUpdated,
	}, &models.PurchaseOrder{ID: migration.PurchaseOrderID})

	return &migration, nil
}

// DeletionPreview lists the assets a cascading delete of the PO would remove.
func (s *PurchaseOrderService) DeletionPreview(ctx context.Context, id int) (*models.PODeletionPreview, error) {
	return s.preview(ctx, nil, id)
}

// DeletePurchaseOrder removes the PO. A PO that still has assets is only
// removed with cascade, together with its assets; otherwise the call fails
// with a conflict carrying the deletion preview.
func (s *PurchaseOrderService) DeletePurchaseOrder(ctx context.Context, id int, cascade bool) (*models.PODeletionResult, error) {
	var result models.PODeletionResult
	err := s.tx.WithTransaction(ctx, func(tx repository.Executor) error {
		preview, err := s.preview(ctx, tx, id)
		if err != nil {
			return err
		}

		if preview.AssetCount > 0 && !cascade {
			return &custom_error.ConflictError{
				Message: "Purchase Order has assets, confirm the cascade to delete them",
				Details: preview,
			}
		}

		removed, err := s.repo.DeleteAssets(ctx, tx, id)
		if err != nil {
			return err
		}

		deleted, err := s.repo.DeletePurchaseOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return custom_error.NewNotFoundError("Purchase Order", id)
		}

		result = models.PODeletionResult{PONumber: preview.PONumber, AssetsDeleted: int(removed)}
		return nil
	})
	if err != nil {
		s.recordOutcome(operationDelete, err)
		return nil, err
	}

	s.recordOutcome(operationDelete, nil)
	s.auditLog.Log(ctx, "delete", map[string]interface{}{
		"po_number":      result.PONumber,
		"assets_deleted": result.AssetsDeleted,
		"cascade":        cascade,
	}, &models.PurchaseOrder{ID: id})

	return &result, nil
}

// DetachAsset deletes one asset of the PO. It reports false when the asset
// was already gone instead of failing.
func (s *PurchaseOrderService) DetachAsset(ctx context.Context, poID, assetID int) (bool, error) {
	if _, err := s.repo.FindByID(ctx, nil, poID); err != nil {
		return false, err
	}

	deleted, err := s.repo.DeleteAssetIfExists(ctx, nil, poID, assetID)
	if err != nil {
		s.recordOutcome(operationDetach, err)
		return false, err
	}

	s.recordOutcome(operationDetach, nil)
	if deleted {
		s.auditLog.Log(ctx, "asset_detached", map[string]interface{}{"asset_id": assetID}, &models.PurchaseOrder{ID: poID})
	}

	return deleted, nil
}

func (s *PurchaseOrderService) preview(ctx context.Context, tx repository.Executor, id int) (*models.PODeletionPreview, error) {
	po, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	summaries, err := s.repo.ListAssetSummaries(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	return &models.PODeletionPreview{
		PurchaseOrderID:      po.ID,
		PONumber:             po.PONumber,
		AssetCount:           len(summaries),
		Assets:               summaries,
		RequiresConfirmation: len(summaries) > 0,
	}, nil
}

func (s *PurchaseOrderService) checkVendor(ctx context.Context, vendorID *int) error {
	if vendorID == nil {
		return nil
	}

	exists, err := s.refs.ExistsByID(ctx, "vendors", *vendorID)
	if err != nil {
		return err
	}
	if !exists {
		return custom_error.NewNotFoundError("Vendor", *vendorID)
	}

	return nil
}

func (s *PurchaseOrderService) recordOutcome(operation string, err error) {
	outcome := "success"
	switch {
	case err == nil:
	case custom_error.IsNotFound(err):
		outcome = "not_found"
	case custom_error.IsConflict(err):
		outcome = "conflict"
	default:
		outcome = "error"
	}
	cascadeOperations.WithLabelValues(operation, outcome).Inc()
}

func upper(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.ToUpper(strings.TrimSpace(*value))
	return &v
}
