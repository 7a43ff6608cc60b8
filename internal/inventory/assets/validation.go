package assets

import (
	"context"
	"fmt"
	"unicode/utf8"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

// UniqueField is an asset column that must be unique, ignoring case, among
// assets that are not deleted.
type UniqueField string

const (
	FieldSerialNumber UniqueField = "serial_number"
	FieldITAssetCode  UniqueField = "it_asset_code"
	FieldMacAddress   UniqueField = "mac_address"
)

// Column widths of the identifying asset fields.
const (
	MaxSerialNumberLength = 128
	MaxITAssetCodeLength  = 64
)

// UnexpectedValidationError is reported when a lookup fails for reasons other
// than a missing row. The cause is only logged.
const UnexpectedValidationError = "Unexpected validation error, see server logs"

func (f UniqueField) Label() string {
	switch f {
	case FieldSerialNumber:
		return "Serial number"
	case FieldITAssetCode:
		return "IT asset code"
	case FieldMacAddress:
		return "MAC address"
	default:
		return string(f)
	}
}

// Tables checked for directly supplied foreign keys.
const (
	TableAssetTypes       = "asset_types"
	TableAssetMakes       = "asset_makes"
	TableUsers            = "users"
	TableOperatingSystems = "operating_systems"
	TableVendors          = "vendors"
)

type AssetLookup interface {
	ExistsIgnoreCase(ctx context.Context, field UniqueField, value string, excludeID int) (bool, error)
}

// PurchaseOrderLookup returns a *custom_error.NotFoundError for unknown numbers.
type PurchaseOrderLookup interface {
	GetByPONumber(ctx context.Context, poNumber string) (*models.PurchaseOrder, error)
}

type OSVersionLookup interface {
	GetOSVersion(ctx context.Context, id int) (*models.OSVersion, error)
}

type ModelLookup interface {
	GetModel(ctx context.Context, id int) (*models.AssetModel, error)
}

type MakeLookup interface {
	GetMake(ctx context.Context, id int) (*models.AssetMake, error)
}

type ReferenceChecker interface {
	ExistsByID(ctx context.Context, table string, id int) (bool, error)
}

// ResolvedContext holds the ids derived from related entities. Zero means the
// id was not resolved.
type ResolvedContext struct {
	PurchaseOrderID          int
	VendorID                 int
	ExtendedWarrantyVendorID int
	OSID                     int
	MakeID                   int
	TypeID                   int
}

// ValidationResult is built once by the Validator and never changed afterwards.
type ValidationResult struct {
	index    int
	errors   []string
	resolved ResolvedContext
}

func (r ValidationResult) Index() int {
	return r.index
}

func (r ValidationResult) Valid() bool {
	return len(r.errors) == 0
}

func (r ValidationResult) Errors() []string {
	out := make([]string, len(r.errors))
	copy(out, r.errors)
	return out
}

func (r ValidationResult) Resolved() ResolvedContext {
	return r.resolved
}

// Err returns a *custom_error.ValidationError for invalid results, nil otherwise.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return custom_error.NewValidationError(r.Errors()...)
}

var validationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "itinventory",
	Subsystem: "assets",
	Name:      "validation_failures_total",
	Help:      "Asset validations that produced at least one error, by kind.",
}, []string{"kind"})

type Validator struct {
	assets     AssetLookup
	pos        PurchaseOrderLookup
	osVersions OSVersionLookup
	models     ModelLookup
	makes      MakeLookup
	refs       ReferenceChecker
	logger     *zap.Logger
}

func NewValidator(
	assets AssetLookup,
	pos PurchaseOrderLookup,
	osVersions OSVersionLookup,
	models ModelLookup,
	makes MakeLookup,
	refs ReferenceChecker,
	logger *zap.Logger,
) *Validator {
	return &Validator{
		assets:     assets,
		pos:        pos,
		osVersions: osVersions,
		models:     models,
		makes:      makes,
		refs:       refs,
		logger:     logger,
	}
}

// Validate runs every check against a creation request. All checks run and
// all violations are reported together.
func (v *Validator) Validate(ctx context.Context, req models.AssetRequest, index int) ValidationResult {
	return v.validate(ctx, req, index, 0)
}

// ValidateUpdate is Validate for an existing asset: the asset itself is
// ignored by the uniqueness checks.
func (v *Validator) ValidateUpdate(ctx context.Context, assetID int, req models.AssetRequest) ValidationResult {
	return v.validate(ctx, req, 0, assetID)
}

func (v *Validator) validate(ctx context.Context, req models.AssetRequest, index int, excludeID int) ValidationResult {
	var (
		errs     []string
		resolved ResolvedContext
	)

	steps := []func() error{
		func() error {
			found, err := v.checkUniqueness(ctx, req, excludeID)
			errs = append(errs, found...)
			return err
		},
		func() error { return v.resolvePurchaseOrder(ctx, req.PONumber, &resolved, &errs) },
		func() error { return v.resolveOS(ctx, req.OSVersionID, &resolved, &errs) },
		func() error { return v.resolveModel(ctx, req.AssetModelID, &resolved, &errs) },
		func() error {
			found, err := v.checkReferences(ctx, req)
			errs = append(errs, found...)
			return err
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			v.logger.Error("Unexpected error during asset validation",
				zap.Int("index", index),
				zap.Error(err),
			)
			validationFailures.WithLabelValues("unexpected").Inc()
			return ValidationResult{
				index:  index,
				errors: []string{UnexpectedValidationError},
			}
		}
	}

	if len(errs) > 0 {
		validationFailures.WithLabelValues("rule").Inc()
	}

	return ValidationResult{index: index, errors: errs, resolved: resolved}
}

// CheckUniqueness reports the uniqueness violations of the given values.
func (v *Validator) CheckUniqueness(ctx context.Context, serial, code, mac *string, excludeID int) ([]string, error) {
	return v.checkUniqueness(ctx, models.AssetRequest{SerialNumber: serial, ITAssetCode: code, MacAddress: mac}, excludeID)
}

func (v *Validator) checkUniqueness(ctx context.Context, req models.AssetRequest, excludeID int) ([]string, error) {
	var errs []string

	candidates := []struct {
		field  UniqueField
		value  *string
		maxLen int
	}{
		{FieldSerialNumber, req.SerialNumber, MaxSerialNumberLength},
		{FieldITAssetCode, req.ITAssetCode, MaxITAssetCodeLength},
		{FieldMacAddress, req.MacAddress, 0},
	}

	for _, candidate := range candidates {
		value := models.Trimmed(candidate.value)
		if value == "" {
			continue
		}

		if candidate.maxLen > 0 && utf8.RuneCountInString(value) > candidate.maxLen {
			errs = append(errs, fmt.Sprintf("%s must be at most %d characters", candidate.field.Label(), candidate.maxLen))
			continue
		}

		lookup := value
		if candidate.field == FieldMacAddress {
			normalized, err := metadata.NormalizeMAC(value)
			if err != nil {
				errs = append(errs, fmt.Sprintf("MAC address is invalid: %s", value))
				continue
			}
			lookup = normalized
		}

		exists, err := v.assets.ExistsIgnoreCase(ctx, candidate.field, lookup, excludeID)
		if err != nil {
			return nil, fmt.Errorf("check %s uniqueness: %w", candidate.field, err)
		}
		if exists {
			errs = append(errs, fmt.Sprintf("%s already exists (case-insensitive): %s", candidate.field.Label(), value))
		}
	}

	return errs, nil
}

func (v *Validator) resolvePurchaseOrder(ctx context.Context, poNumber *string, resolved *ResolvedContext, errs *[]string) error {
	number := models.Trimmed(poNumber)
	if number == "" {
		return nil
	}

	po, err := v.pos.GetByPONumber(ctx, number)
	if custom_error.IsNotFound(err) {
		*errs = append(*errs, fmt.Sprintf("Purchase Order not found: %s", number))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up purchase order %s: %w", number, err)
	}

	resolved.PurchaseOrderID = po.ID
	if po.VendorID != nil {
		// The order's vendor is recorded for both warranty tracks.
		resolved.VendorID = *po.VendorID
		resolved.ExtendedWarrantyVendorID = *po.VendorID
	}

	return nil
}

func (v *Validator) resolveOS(ctx context.Context, osVersionID *int, resolved *ResolvedContext, errs *[]string) error {
	if osVersionID == nil {
		return nil
	}

	version, err := v.osVersions.GetOSVersion(ctx, *osVersionID)
	if custom_error.IsNotFound(err) {
		*errs = append(*errs, fmt.Sprintf("OS Version not found with id: %d", *osVersionID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up OS version %d: %w", *osVersionID, err)
	}

	if version.OSID == nil {
		*errs = append(*errs, fmt.Sprintf("OS Version with id %d has no associated Operating System", *osVersionID))
		return nil
	}

	resolved.OSID = *version.OSID
	return nil
}

func (v *Validator) resolveModel(ctx context.Context, modelID *int, resolved *ResolvedContext, errs *[]string) error {
	if modelID == nil {
		return nil
	}

	model, err := v.models.GetModel(ctx, *modelID)
	if custom_error.IsNotFound(err) {
		*errs = append(*errs, fmt.Sprintf("Asset Model not found with id: %d", *modelID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up asset model %d: %w", *modelID, err)
	}

	if model.AssetMakeID == nil {
		*errs = append(*errs, fmt.Sprintf("Asset Model with id %d has no associated Asset Make", *modelID))
		return nil
	}
	resolved.MakeID = *model.AssetMakeID

	assetMake, err := v.makes.GetMake(ctx, *model.AssetMakeID)
	if custom_error.IsNotFound(err) {
		*errs = append(*errs, fmt.Sprintf("Asset Make not found with id: %d", *model.AssetMakeID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("look up asset make %d: %w", *model.AssetMakeID, err)
	}

	if assetMake.AssetTypeID == nil {
		*errs = append(*errs, fmt.Sprintf("Asset Make with id %d has no associated Asset Type", assetMake.ID))
		return nil
	}
	resolved.TypeID = *assetMake.AssetTypeID

	return nil
}

func (v *Validator) checkReferences(ctx context.Context, req models.AssetRequest) ([]string, error) {
	var errs []string

	references := []struct {
		id     *int
		table  string
		entity string
	}{
		{req.AssetTypeID, TableAssetTypes, "Asset Type"},
		{req.AssetMakeID, TableAssetMakes, "Asset Make"},
		{req.CurrentUserID, TableUsers, "User"},
		{req.OSID, TableOperatingSystems, "Operating System"},
		{req.VendorID, TableVendors, "Vendor"},
		{req.ExtendedWarrantyVendorID, TableVendors, "Extended Warranty Vendor"},
	}

	for _, ref := range references {
		if ref.id == nil {
			continue
		}

		exists, err := v.refs.ExistsByID(ctx, ref.table, *ref.id)
		if err != nil {
			return nil, fmt.Errorf("check %s %d: %w", ref.entity, *ref.id, err)
		}
		if !exists {
			errs = append(errs, fmt.Sprintf("%s not found with id: %d", ref.entity, *ref.id))
		}
	}

	return errs, nil
}
