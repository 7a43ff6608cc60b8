package assets

import (
	"context"
	"fmt"
	"strings"

	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"
	"itinventory/pkg/security"

	"github.com/doug-martin/goqu/v9"
	"go.uber.org/zap"
)

type Store interface {
	AssetLookup
	GetAsset(ctx context.Context, id int) (*models.Asset, error)
	GetAssetByITAssetCode(ctx context.Context, code string) (*models.Asset, error)
	GetAssetsBy(ctx context.Context, conditions repository.QueryBuilder, pagination *repository.Pagination) ([]models.Asset, int, error)
	SearchAssets(ctx context.Context, term string, pagination *repository.Pagination) ([]models.Asset, int, error)
	PersistAsset(ctx context.Context, tx repository.Executor, record goqu.Record) (int, error)
	UpdateAsset(ctx context.Context, tx repository.Executor, id int, record goqu.Record) error
	UpdateITAssetCode(ctx context.Context, tx repository.Executor, id int, code string) error
	UpdateStatus(ctx context.Context, tx repository.Executor, id int, status metadata.Status) error
	UpdateCurrentUser(ctx context.Context, tx repository.Executor, id int, userID *int) error
	CodePrefix(ctx context.Context, tx repository.Executor, typeID int) (string, error)
	SoftDeleteAsset(ctx context.Context, id int) (bool, error)
	RestoreAsset(ctx context.Context, id int) (bool, error)
	DeleteIfExists(ctx context.Context, tx repository.Executor, id int) (bool, error)
}

type HistoryRecorder interface {
	AppendStatus(ctx context.Context, tx repository.Executor, entry models.AssetStatusHistory) error
	AppendAssignment(ctx context.Context, tx repository.Executor, entry models.AssetAssignmentHistory) error
}

type TagAssigner interface {
	Replace(ctx context.Context, tx repository.Executor, assetID int, tagIDs []int) error
	ListAssetTags(ctx context.Context, assetID int) ([]models.AssetTag, error)
}

type AssetService struct {
	assetsRepo Store
	tx         repository.Transactor
	validator  *Validator
	refs       ReferenceChecker
	history    HistoryRecorder
	tags       TagAssigner
	auditLog   auditlog.Logger
	logger     *zap.Logger
}

func NewAssetService(
	assetsRepo Store,
	tx repository.Transactor,
	validator *Validator,
	refs ReferenceChecker,
	history HistoryRecorder,
	tags TagAssigner,
	auditLog auditlog.Logger,
	logger *zap.Logger,
) *AssetService {
	return &AssetService{
		assetsRepo: assetsRepo,
		tx:         tx,
		validator:  validator,
		refs:       refs,
		history:    history,
		tags:       tags,
		auditLog:   auditLog,
		logger:     logger,
	}
}

func (s *AssetService) CreateAsset(ctx context.Context, req models.AssetRequest) (*models.Asset, error) {
	result := s.validator.Validate(ctx, req, 0)
	if !result.Valid() {
		return nil, result.Err()
	}

	id, err := s.persist(ctx, req, result.Resolved())
	if err != nil {
		return nil, err
	}

	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "create", map[string]interface{}{
		"it_asset_code": asset.ITAssetCode,
		"serial_number": asset.SerialNumber,
		"status":        asset.Status,
	}, asset)

	return asset, nil
}

// CreateBulkAssets validates and creates every request on its own. A failing
// item is reported with its index and never blocks the remaining items.
func (s *AssetService) CreateBulkAssets(ctx context.Context, reqs []models.AssetRequest) models.BulkAssetResult {
	result := models.BulkAssetResult{
		Created: []models.Asset{},
		Failed:  []models.BulkAssetFailure{},
	}

	for i, req := range reqs {
		validation := s.validator.Validate(ctx, req, i)
		if !validation.Valid() {
			result.Failed = append(result.Failed, models.BulkAssetFailure{Index: validation.Index(), Errors: validation.Errors()})
			continue
		}

		id, err := s.persist(ctx, req, validation.Resolved())
		if err != nil {
			s.logger.Warn("Bulk asset creation failed", zap.Int("index", i), zap.Error(err))
			result.Failed = append(result.Failed, models.BulkAssetFailure{Index: i, Errors: []string{persistFailure(err)}})
			continue
		}

		asset, err := s.GetAsset(ctx, id)
		if err != nil {
			result.Failed = append(result.Failed, models.BulkAssetFailure{Index: i, Errors: []string{err.Error()}})
			continue
		}

		result.Created = append(result.Created, *asset)
		s.auditLog.Log(ctx, "create", map[string]interface{}{
			"it_asset_code": asset.ITAssetCode,
			"bulk_index":    i,
		}, asset)
	}

	return result
}

func (s *AssetService) persist(ctx context.Context, req models.AssetRequest, resolved ResolvedContext) (int, error) {
	status := metadata.DefaultStatus
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := metadata.NewStatus(req.Status)
		if err != nil {
			return 0, custom_error.NewValidationError(err.Error())
		}
		status = parsed
	}

	record, err := creationRecord(req, resolved, status)
	if err != nil {
		return 0, err
	}

	var id int
	err = s.tx.WithTransaction(ctx, func(tx repository.Executor) error {
		id, err = s.assetsRepo.PersistAsset(ctx, tx, record)
		if err != nil {
			return err
		}

		if models.Trimmed(req.ITAssetCode) == "" {
			if err := s.generateCode(ctx, tx, id, pick(resolved.TypeID, req.AssetTypeID)); err != nil {
				return err
			}
		}

		if err := s.history.AppendStatus(ctx, tx, models.AssetStatusHistory{
			AssetID:   id,
			NewStatus: status.String(),
			ChangedBy: security.UserIDFromContext(ctx),
		}); err != nil {
			return err
		}

		if req.CurrentUserID != nil {
			if err := s.history.AppendAssignment(ctx, tx, models.AssetAssignmentHistory{
				AssetID:    id,
				UserID:     req.CurrentUserID,
				AssignedBy: security.UserIDFromContext(ctx),
			}); err != nil {
				return err
			}
		}

		if len(req.TagIDs) > 0 {
			return s.tags.Replace(ctx, tx, id, req.TagIDs)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

func (s *AssetService) generateCode(ctx context.Context, tx repository.Executor, id int, typeID *int) error {
	prefix := ""
	if typeID != nil {
		var err error
		prefix, err = s.assetsRepo.CodePrefix(ctx, tx, *typeID)
		if err != nil {
			return err
		}
	}

	code := metadata.NewAssetCode(prefix, id)
	return s.assetsRepo.UpdateITAssetCode(ctx, tx, id, code.Generate())
}

func (s *AssetService) GetAsset(ctx context.Context, id int) (*models.Asset, error) {
	asset, err := s.assetsRepo.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ListAssetTags(ctx, id)
	if err != nil {
		return nil, err
	}
	asset.Tags = tags

	return asset, nil
}

func (s *AssetService) GetAssetByITAssetCode(ctx context.Context, code string) (*models.Asset, error) {
	asset, err := s.assetsRepo.GetAssetByITAssetCode(ctx, code)
	if err != nil {
		return nil, err
	}

	tags, err := s.tags.ListAssetTags(ctx, asset.ID)
	if err != nil {
		return nil, err
	}
	asset.Tags = tags

	return asset, nil
}

func (s *AssetService) ListAssets(ctx context.Context, query *AssetListQuery, pagination repository.Pagination) (repository.Page[models.Asset], error) {
	assets, total, err := s.assetsRepo.GetAssetsBy(ctx, query, &pagination)
	if err != nil {
		return repository.Page[models.Asset]{}, err
	}
	return repository.NewPage(assets, pagination, total), nil
}

func (s *AssetService) SearchAssets(ctx context.Context, term string, pagination repository.Pagination) (repository.Page[models.Asset], error) {
	if strings.TrimSpace(term) == "" {
		return repository.Page[models.Asset]{}, custom_error.NewValidationError("search term must not be empty")
	}

	assets, total, err := s.assetsRepo.SearchAssets(ctx, term, &pagination)
	if err != nil {
		return repository.Page[models.Asset]{}, err
	}
	return repository.NewPage(assets, pagination, total), nil
}

// UpdateAsset applies the supplied fields. Identifying values are re-checked
// for uniqueness against other assets, and a new model, OS version or PO
// re-derives the related ids the same way creation does.
func (s *AssetService) UpdateAsset(ctx context.Context, id int, req models.UpdateAssetRequest) (*models.Asset, error) {
	if _, err := s.assetsRepo.GetAsset(ctx, id); err != nil {
		return nil, err
	}

	result := s.validator.ValidateUpdate(ctx, id, req.AsAssetRequest())
	if !result.Valid() {
		return nil, result.Err()
	}

	record, err := updateRecord(req, result.Resolved())
	if err != nil {
		return nil, err
	}

	if len(record) > 0 {
		if err := s.assetsRepo.UpdateAsset(ctx, nil, id, record); err != nil {
			return nil, err
		}
	}

	asset, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "update", changedColumns(record), asset)
	return asset, nil
}

// ChangeStatus moves the asset to status and appends a status history entry.
// Setting the current status again is a no-op.
func (s *AssetService) ChangeStatus(ctx context.Context, id int, value string, reason *string) (*models.Asset, error) {
	status, err := metadata.NewStatus(value)
	if err != nil {
		return nil, custom_error.NewValidationError(err.Error())
	}

	asset, err := s.assetsRepo.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.Deleted {
		return nil, custom_error.NewConflictError("asset %d is deleted", id)
	}
	if asset.Status == status {
		return s.GetAsset(ctx, id)
	}

	oldStatus := asset.Status.String()
	err = s.tx.WithTransaction(ctx, func(tx repository.Executor) error {
		if err := s.assetsRepo.UpdateStatus(ctx, tx, id, status); err != nil {
			return err
		}
		return s.history.AppendStatus(ctx, tx, models.AssetStatusHistory{
			AssetID:   id,
			OldStatus: &oldStatus,
			NewStatus: status.String(),
			ChangedBy: security.UserIDFromContext(ctx),
			Reason:    reason,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "status_change", map[string]interface{}{
		"old_status": oldStatus,
		"new_status": status,
		"reason":     reason,
	}, updated)

	return updated, nil
}

// AssignUser sets or, with a nil userID, clears the current user of an asset.
func (s *AssetService) AssignUser(ctx context.Context, id int, userID *int, notes *string) (*models.Asset, error) {
	if userID != nil {
		exists, err := s.refs.ExistsByID(ctx, TableUsers, *userID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, custom_error.NewNotFoundError("User", *userID)
		}
	}

	asset, err := s.assetsRepo.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if asset.Deleted {
		return nil, custom_error.NewConflictError("asset %d is deleted", id)
	}

	var previous *int
	if asset.CurrentUser != nil {
		previous = &asset.CurrentUser.ID
	}
	if sameUser(previous, userID) {
		return s.GetAsset(ctx, id)
	}

	err = s.tx.WithTransaction(ctx, func(tx repository.Executor) error {
		if err := s.assetsRepo.UpdateCurrentUser(ctx, tx, id, userID); err != nil {
			return err
		}
		return s.history.AppendAssignment(ctx, tx, models.AssetAssignmentHistory{
			AssetID:        id,
			PreviousUserID: previous,
			UserID:         userID,
			AssignedBy:     security.UserIDFromContext(ctx),
			Notes:          notes,
		})
	})
	if err != nil {
		return nil, err
	}

	updated, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "assign", map[string]interface{}{
		"previous_user_id": previous,
		"user_id":          userID,
	}, updated)

	return updated, nil
}

func (s *AssetService) SoftDeleteAsset(ctx context.Context, id int) error {
	deleted, err := s.assetsRepo.SoftDeleteAsset(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return custom_error.NewNotFoundError("Asset", id)
	}

	s.auditLog.Log(ctx, "delete", map[string]interface{}{"permanent": false}, &models.Asset{ID: id})
	return nil
}

// RestoreAsset clears the deleted flag. Identifying values taken over by
// another asset in the meantime make the restore a conflict.
func (s *AssetService) RestoreAsset(ctx context.Context, id int) (*models.Asset, error) {
	asset, err := s.assetsRepo.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !asset.Deleted {
		return s.GetAsset(ctx, id)
	}

	clashes, err := s.validator.CheckUniqueness(ctx, &asset.SerialNumber, &asset.ITAssetCode, &asset.MacAddress, id)
	if err != nil {
		return nil, err
	}
	if len(clashes) > 0 {
		return nil, custom_error.NewConflictError("asset %d cannot be restored: %s", id, strings.Join(clashes, "; "))
	}

	restored, err := s.assetsRepo.RestoreAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if !restored {
		return nil, custom_error.NewNotFoundError("Asset", id)
	}

	updated, err := s.GetAsset(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditLog.Log(ctx, "restore", nil, updated)
	return updated, nil
}

func (s *AssetService) DeleteAssetPermanently(ctx context.Context, id int) error {
	deleted, err := s.DeleteIfExists(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return custom_error.NewNotFoundError("Asset", id)
	}
	return nil
}

// DeleteIfExists removes the asset row, reporting false when it was already gone.
func (s *AssetService) DeleteIfExists(ctx context.Context, id int) (bool, error) {
	deleted, err := s.assetsRepo.DeleteIfExists(ctx, nil, id)
	if err != nil {
		return false, err
	}

	if deleted {
		s.auditLog.Log(ctx, "delete", map[string]interface{}{"permanent": true}, &models.Asset{ID: id})
	}

	return deleted, nil
}

func creationRecord(req models.AssetRequest, resolved ResolvedContext, status metadata.Status) (goqu.Record, error) {
	mac, err := metadata.NormalizeMAC(models.Trimmed(req.MacAddress))
	if err != nil {
		return nil, custom_error.NewValidationError(err.Error())
	}

	return goqu.Record{
		"name":                        nullable(req.Name),
		"serial_number":               nullable(req.SerialNumber),
		"it_asset_code":               nullable(req.ITAssetCode),
		"mac_address":                 nullable(&mac),
		"ip_address":                  nullable(req.IPAddress),
		"status":                      status.String(),
		"asset_type_id":               pick(resolved.TypeID, req.AssetTypeID),
		"asset_make_id":               pick(resolved.MakeID, req.AssetMakeID),
		"asset_model_id":              req.AssetModelID,
		"os_id":                       pick(resolved.OSID, req.OSID),
		"os_version_id":               req.OSVersionID,
		"vendor_id":                   pick(resolved.VendorID, req.VendorID),
		"extended_warranty_vendor_id": pick(resolved.ExtendedWarrantyVendorID, req.ExtendedWarrantyVendorID),
		"purchase_order_id":           pick(resolved.PurchaseOrderID, nil),
		"current_user_id":             req.CurrentUserID,
		"purchase_date":               req.PurchaseDate,
		"warranty_expiry":             req.WarrantyExpiry,
		"extended_warranty_expiry":    req.ExtendedWarrantyExpiry,
		"purchase_cost":               req.PurchaseCost,
		"notes":                       nullable(req.Notes),
	}, nil
}

func updateRecord(req models.UpdateAssetRequest, resolved ResolvedContext) (goqu.Record, error) {
	record := goqu.Record{}

	setString := func(column string, value *string) {
		if value != nil {
			record[column] = nullable(value)
		}
	}
	setID := func(column string, resolvedID int, direct *int) {
		if id := pick(resolvedID, direct); id != nil {
			record[column] = id
		}
	}

	setString("name", req.Name)
	setString("serial_number", req.SerialNumber)
	setString("it_asset_code", req.ITAssetCode)
	setString("ip_address", req.IPAddress)
	setString("notes", req.Notes)

	if req.MacAddress != nil {
		mac, err := metadata.NormalizeMAC(*req.MacAddress)
		if err != nil {
			return nil, custom_error.NewValidationError(err.Error())
		}
		record["mac_address"] = nullable(&mac)
	}

	setID("asset_type_id", resolved.TypeID, req.AssetTypeID)
	setID("asset_make_id", resolved.MakeID, req.AssetMakeID)
	setID("asset_model_id", 0, req.AssetModelID)
	setID("os_id", resolved.OSID, req.OSID)
	setID("os_version_id", 0, req.OSVersionID)
	setID("vendor_id", resolved.VendorID, req.VendorID)
	setID("extended_warranty_vendor_id", resolved.ExtendedWarrantyVendorID, req.ExtendedWarrantyVendorID)
	setID("purchase_order_id", resolved.PurchaseOrderID, nil)

	if req.PurchaseDate != nil {
		record["purchase_date"] = req.PurchaseDate
	}
	if req.WarrantyExpiry != nil {
		record["warranty_expiry"] = req.WarrantyExpiry
	}
	if req.ExtendedWarrantyExpiry != nil {
		record["extended_warranty_expiry"] = req.ExtendedWarrantyExpiry
	}
	if req.PurchaseCost.Valid {
		record["purchase_cost"] = req.PurchaseCost
	}

	return record, nil
}

// pick prefers an id resolved from a related entity over a directly supplied one.
func pick(resolved int, direct *int) *int {
	if resolved > 0 {
		return &resolved
	}
	return direct
}

// nullable stores blank strings as NULL so they stay out of the unique indexes.
func nullable(value *string) *string {
	trimmed := models.Trimmed(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func sameUser(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func changedColumns(record goqu.Record) map[string]interface{} {
	columns := make([]string, 0, len(record))
	for column := range record {
		if column == "updated_at" {
			continue
		}
		columns = append(columns, column)
	}
	return map[string]interface{}{"changed": columns}
}

func persistFailure(err error) string {
	if custom_error.IsConflict(err) {
		return fmt.Sprintf("Asset conflicts with an existing asset: %v", err)
	}
	return err.Error()
}
