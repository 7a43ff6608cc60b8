package assets

import (
	"context"
	"errors"
	"strings"
	"testing"

	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAssetLookup struct {
	mock.Mock
}

func (m *MockAssetLookup) ExistsIgnoreCase(ctx context.Context, field UniqueField, value string, excludeID int) (bool, error) {
	args := m.Called(field, value, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockPurchaseOrderLookup struct {
	mock.Mock
}

func (m *MockPurchaseOrderLookup) GetByPONumber(ctx context.Context, poNumber string) (*models.PurchaseOrder, error) {
	args := m.Called(poNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PurchaseOrder), args.Error(1)
}

type MockOSVersionLookup struct {
	mock.Mock
}

func (m *MockOSVersionLookup) GetOSVersion(ctx context.Context, id int) (*models.OSVersion, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OSVersion), args.Error(1)
}

type MockModelLookup struct {
	mock.Mock
}

func (m *MockModelLookup) GetModel(ctx context.Context, id int) (*models.AssetModel, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssetModel), args.Error(1)
}

type MockMakeLookup struct {
	mock.Mock
}

func (m *MockMakeLookup) GetMake(ctx context.Context, id int) (*models.AssetMake, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AssetMake), args.Error(1)
}

type MockReferenceChecker struct {
	mock.Mock
}

func (m *MockReferenceChecker) ExistsByID(ctx context.Context, table string, id int) (bool, error) {
	args := m.Called(table, id)
	return args.Bool(0), args.Error(1)
}

type validatorMocks struct {
	assets     *MockAssetLookup
	pos        *MockPurchaseOrderLookup
	osVersions *MockOSVersionLookup
	models     *MockModelLookup
	makes      *MockMakeLookup
	refs       *MockReferenceChecker
}

func newTestValidator() (*Validator, *validatorMocks) {
	m := &validatorMocks{
		assets:     new(MockAssetLookup),
		pos:        new(MockPurchaseOrderLookup),
		osVersions: new(MockOSVersionLookup),
		models:     new(MockModelLookup),
		makes:      new(MockMakeLookup),
		refs:       new(MockReferenceChecker),
	}
	return NewValidator(m.assets, m.pos, m.osVersions, m.models, m.makes, m.refs, zap.NewNop()), m
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestValidateValidRequest(t *testing.T) {
	v, m := newTestValidator()

	m.assets.On("ExistsIgnoreCase", FieldSerialNumber, "SN-001", 0).Return(false, nil)
	m.assets.On("ExistsIgnoreCase", FieldITAssetCode, "IT-LAP1", 0).Return(false, nil)
	m.assets.On("ExistsIgnoreCase", FieldMacAddress, "AA:BB:CC:DD:EE:01", 0).Return(false, nil)
	m.pos.On("GetByPONumber", "PO-1").Return(&models.PurchaseOrder{ID: 9, PONumber: "PO-1", VendorID: intPtr(7)}, nil)
	m.osVersions.On("GetOSVersion", 3).Return(&models.OSVersion{ID: 3, OSID: intPtr(2)}, nil)
	m.models.On("GetModel", 11).Return(&models.AssetModel{ID: 11, AssetMakeID: intPtr(5)}, nil)
	m.makes.On("GetMake", 5).Return(&models.AssetMake{ID: 5, AssetTypeID: intPtr(1)}, nil)
	m.refs.On("ExistsByID", TableUsers, 4).Return(true, nil)

	result := v.Validate(context.Background(), models.AssetRequest{
		SerialNumber:  strPtr("SN-001"),
		ITAssetCode:   strPtr("IT-LAP1"),
		MacAddress:    strPtr("aa:bb:cc:dd:ee:01"),
		PONumber:      strPtr("PO-1"),
		OSVersionID:   intPtr(3),
		AssetModelID:  intPtr(11),
		CurrentUserID: intPtr(4),
	}, 2)

	assert.True(t, result.Valid())
	assert.Empty(t, result.Errors())
	assert.NoError(t, result.Err())
	assert.Equal(t, 2, result.Index())
	assert.Equal(t, ResolvedContext{
		PurchaseOrderID:          9,
		VendorID:                 7,
		ExtendedWarrantyVendorID: 7,
		OSID:                     2,
		MakeID:                   5,
		TypeID:                   1,
	}, result.Resolved())
}

func TestValidateDuplicateSerialIgnoringCase(t *testing.T) {
	v, m := newTestValidator()

	m.assets.On("ExistsIgnoreCase", FieldSerialNumber, "abc123", 0).Return(true, nil)

	result := v.Validate(context.Background(), models.AssetRequest{SerialNumber: strPtr("abc123")}, 0)

	require.False(t, result.Valid())
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0], "already exists (case-insensitive)")
	assert.Contains(t, result.Errors()[0], "abc123")
	assert.True(t, errors.Is(result.Err(), custom_error.ErrValidation))
}

func TestValidateMissingPurchaseOrderStillResolvesOSAndModel(t *testing.T) {
	v, m := newTestValidator()

	m.pos.On("GetByPONumber", "PO-404").Return(nil, custom_error.NewNotFoundError("Purchase order", "PO-404"))
	m.osVersions.On("GetOSVersion", 3).Return(&models.OSVersion{ID: 3}, nil)
	m.models.On("GetModel", 11).Return(&models.AssetModel{ID: 11, AssetMakeID: intPtr(5)}, nil)
	m.makes.On("GetMake", 5).Return(&models.AssetMake{ID: 5, AssetTypeID: intPtr(1)}, nil)

	result := v.Validate(context.Background(), models.AssetRequest{
		PONumber:     strPtr("PO-404"),
		OSVersionID:  intPtr(3),
		AssetModelID: intPtr(11),
	}, 0)

	require.False(t, result.Valid())
	assert.Equal(t, []string{
		"Purchase Order not found: PO-404",
		"OS Version with id 3 has no associated Operating System",
	}, result.Errors())
	assert.Equal(t, 5, result.Resolved().MakeID)
	assert.Equal(t, 1, result.Resolved().TypeID)
	assert.Zero(t, result.Resolved().VendorID)
	m.osVersions.AssertExpectations(t)
	m.models.AssertExpectations(t)
}

func TestValidateCopiesPurchaseOrderVendorToBothSlots(t *testing.T) {
	v, m := newTestValidator()

	m.pos.On("GetByPONumber", "PO-7").Return(&models.PurchaseOrder{ID: 1, VendorID: intPtr(42)}, nil)

	result := v.Validate(context.Background(), models.AssetRequest{PONumber: strPtr("PO-7")}, 0)

	assert.True(t, result.Valid())
	assert.Equal(t, 42, result.Resolved().VendorID)
	assert.Equal(t, 42, result.Resolved().ExtendedWarrantyVendorID)
}

func TestValidateMakeWithoutType(t *testing.T) {
	v, m := newTestValidator()

	m.models.On("GetModel", 11).Return(&models.AssetModel{ID: 11, AssetMakeID: intPtr(5)}, nil)
	m.makes.On("GetMake", 5).Return(&models.AssetMake{ID: 5}, nil)

	result := v.Validate(context.Background(), models.AssetRequest{AssetModelID: intPtr(11)}, 0)

	require.False(t, result.Valid())
	require.Len(t, result.Errors(), 1)
	assert.Contains(t, result.Errors()[0], "5")
	assert.Contains(t, result.Errors()[0], "no associated Asset Type")
	assert.Equal(t, 5, result.Resolved().MakeID)
	assert.Zero(t, result.Resolved().TypeID)
}

func TestValidateModelWithoutMake(t *testing.T) {
	v, m := newTestValidator()

	m.models.On("GetModel", 11).Return(&models.AssetModel{ID: 11}, nil)

	result := v.Validate(context.Background(), models.AssetRequest{AssetModelID: intPtr(11)}, 0)

	assert.Equal(t, []string{"Asset Model with id 11 has no associated Asset Make"}, result.Errors())
	m.makes.AssertNotCalled(t, "GetMake", mock.Anything)
}

func TestValidateAccumulatesIndependentErrors(t *testing.T) {
	v, m := newTestValidator()

	m.assets.On("ExistsIgnoreCase", FieldITAssetCode, "IT-DUP", 0).Return(true, nil)
	m.assets.On("ExistsIgnoreCase", FieldMacAddress, "AA:BB:CC:DD:EE:FF", 0).Return(true, nil)
	m.pos.On("GetByPONumber", "PO-404").Return(nil, custom_error.NewNotFoundError("Purchase order", "PO-404"))

	result := v.Validate(context.Background(), models.AssetRequest{
		MacAddress:  strPtr("AA:BB:CC:DD:EE:FF"),
		ITAssetCode: strPtr("IT-DUP"),
		PONumber:    strPtr("PO-404"),
	}, 0)

	errs := result.Errors()
	require.Len(t, errs, 3)
	assert.Contains(t, errs[0], "IT asset code already exists (case-insensitive): IT-DUP")
	assert.Contains(t, errs[1], "MAC address already exists (case-insensitive): AA:BB:CC:DD:EE:FF")
	assert.Contains(t, errs[2], "Purchase Order not found: PO-404")
}

func TestValidateMissingDirectReferences(t *testing.T) {
	v, m := newTestValidator()

	m.refs.On("ExistsByID", TableAssetTypes, 1).Return(true, nil)
	m.refs.On("ExistsByID", TableAssetMakes, 2).Return(false, nil)
	m.refs.On("ExistsByID", TableOperatingSystems, 3).Return(false, nil)
	m.refs.On("ExistsByID", TableVendors, 4).Return(true, nil)
	m.refs.On("ExistsByID", TableVendors, 5).Return(false, nil)

	result := v.Validate(context.Background(), models.AssetRequest{
		AssetTypeID:              intPtr(1),
		AssetMakeID:              intPtr(2),
		OSID:                     intPtr(3),
		VendorID:                 intPtr(4),
		ExtendedWarrantyVendorID: intPtr(5),
	}, 0)

	assert.Equal(t, []string{
		"Asset Make not found with id: 2",
		"Operating System not found with id: 3",
		"Extended Warranty Vendor not found with id: 5",
	}, result.Errors())
}

func TestValidateInvalidMac(t *testing.T) {
	v, _ := newTestValidator()

	result := v.Validate(context.Background(), models.AssetRequest{MacAddress: strPtr("not-a-mac")}, 0)

	assert.Equal(t, []string{"MAC address is invalid: not-a-mac"}, result.Errors())
}

func TestValidateRejectsEUI64MacAddress(t *testing.T) {
	v, _ := newTestValidator()

	result := v.Validate(context.Background(), models.AssetRequest{MacAddress: strPtr("02:00:5e:10:00:00:00:01")}, 0)

	assert.False(t, result.Valid())
	assert.Equal(t, []string{"MAC address is invalid: 02:00:5e:10:00:00:00:01"}, result.Errors())
}

func TestValidateRejectsOverlongIdentifiers(t *testing.T) {
	v, m := newTestValidator()

	m.assets.On("ExistsIgnoreCase", FieldMacAddress, "AA:BB:CC:DD:EE:02", 0).Return(false, nil)

	result := v.Validate(context.Background(), models.AssetRequest{
		SerialNumber: strPtr(strings.Repeat("S", MaxSerialNumberLength+1)),
		ITAssetCode:  strPtr(strings.Repeat("C", MaxITAssetCodeLength+1)),
		MacAddress:   strPtr("aa:bb:cc:dd:ee:02"),
	}, 0)

	assert.False(t, result.Valid())
	assert.Equal(t, []string{
		"Serial number must be at most 128 characters",
		"IT asset code must be at most 64 characters",
	}, result.Errors())
	m.assets.AssertNotCalled(t, "ExistsIgnoreCase", FieldSerialNumber, mock.Anything, mock.Anything)
	m.assets.AssertNotCalled(t, "ExistsIgnoreCase", FieldITAssetCode, mock.Anything, mock.Anything)
}

func TestValidateAcceptsIdentifiersAtColumnWidth(t *testing.T) {
	v, m := newTestValidator()

	serial := strings.Repeat("S", MaxSerialNumberLength)
	m.assets.On("ExistsIgnoreCase", FieldSerialNumber, serial, 0).Return(false, nil)

	result := v.Validate(context.Background(), models.AssetRequest{SerialNumber: &serial}, 0)

	assert.True(t, result.Valid())
}

func TestValidateUnexpectedFailureBecomesSingleError(t *testing.T) {
	v, m := newTestValidator()

	m.assets.On("ExistsIgnoreCase", FieldSerialNumber, "SN-1", 0).Return(true, nil)
	m.pos.On("GetByPONumber", "PO-1").Return(&models.PurchaseOrder{ID: 1, VendorID: intPtr(3)}, nil)
	m.osVersions.On("GetOSVersion", 9).Return(nil, errors.New("connection reset"))

	result := v.Validate(context.Background(), models.AssetRequest{
		SerialNumber: strPtr("SN-1"),
		PONumber:     strPtr("PO-1"),
		OSVersionID:  intPtr(9),
		AssetModelID: intPtr(11),
	}, 4)

	require.False(t, result.Valid())
	require.Len(t, result.Errors(), 1)
	assert.Equal(t, UnexpectedValidationError, result.Errors()[0])
	assert.NotContains(t, result.Errors()[0], "connection reset")
	assert.Equal(t, ResolvedContext{}, result.Resolved())
	assert.Equal(t, 4, result.Index())
	m.models.AssertNotCalled(t, "GetModel", mock.Anything)
}

func TestValidateUpdateExcludesAssetItself(t *testing.T) {
	v, m := newTestValidator()

	m.assets.On("ExistsIgnoreCase", FieldSerialNumber, "SN-1", 12).Return(false, nil)

	result := v.ValidateUpdate(context.Background(), 12, models.AssetRequest{SerialNumber: strPtr("SN-1")})

	assert.True(t, result.Valid())
	m.assets.AssertExpectations(t)
}

func TestValidationResultErrorsAreCopied(t *testing.T) {
	result := ValidationResult{errors: []string{"a"}}

	errs := result.Errors()
	errs[0] = "changed"

	assert.Equal(t, []string{"a"}, result.Errors())
}
