package assets

import (
	"context"
	"testing"

	"itinventory/internal/repository"
	"itinventory/pkg/auditlog"
	custom_error "itinventory/pkg/errors"
	"itinventory/pkg/metadata"
	"itinventory/pkg/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockStore struct {
	MockAssetLookup
}

func (m *MockStore) GetAsset(ctx context.Context, id int) (*models.Asset, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockStore) GetAssetByITAssetCode(ctx context.Context, code string) (*models.Asset, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Asset), args.Error(1)
}

func (m *MockStore) GetAssetsBy(ctx context.Context, conditions repository.QueryBuilder, pagination *repository.Pagination) ([]models.Asset, int, error) {
	args := m.Called(conditions, pagination)
	return args.Get(0).([]models.Asset), args.Int(1), args.Error(2)
}

func (m *MockStore) SearchAssets(ctx context.Context, term string, pagination *repository.Pagination) ([]models.Asset, int, error) {
	args := m.Called(term, pagination)
	return args.Get(0).([]models.Asset), args.Int(1), args.Error(2)
}

func (m *MockStore) PersistAsset(ctx context.Context, tx repository.Executor, record goqu.Record) (int, error) {
	args := m.Called(record)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) UpdateAsset(ctx context.Context, tx repository.Executor, id int, record goqu.Record) error {
	return m.Called(id, record).Error(0)
}

func (m *MockStore) UpdateITAssetCode(ctx context.Context, tx repository.Executor, id int, code string) error {
	return m.Called(id, code).Error(0)
}

func (m *MockStore) UpdateStatus(ctx context.Context, tx repository.Executor, id int, status metadata.Status) error {
	return m.Called(id, status).Error(0)
}

func (m *MockStore) UpdateCurrentUser(ctx context.Context, tx repository.Executor, id int, userID *int) error {
	return m.Called(id, userID).Error(0)
}

func (m *MockStore) CodePrefix(ctx context.Context, tx repository.Executor, typeID int) (string, error) {
	args := m.Called(typeID)
	return args.String(0), args.Error(1)
}

func (m *MockStore) SoftDeleteAsset(ctx context.Context, id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) RestoreAsset(ctx context.Context, id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

func (m *MockStore) DeleteIfExists(ctx context.Context, tx repository.Executor, id int) (bool, error) {
	args := m.Called(id)
	return args.Bool(0), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) AppendStatus(ctx context.Context, tx repository.Executor, entry models.AssetStatusHistory) error {
	return m.Called(entry).Error(0)
}

func (m *MockHistory) AppendAssignment(ctx context.Context, tx repository.Executor, entry models.AssetAssignmentHistory) error {
	return m.Called(entry).Error(0)
}

type MockTags struct {
	mock.Mock
}

func (m *MockTags) Replace(ctx context.Context, tx repository.Executor, assetID int, tagIDs []int) error {
	return m.Called(assetID, tagIDs).Error(0)
}

func (m *MockTags) ListAssetTags(ctx context.Context, assetID int) ([]models.AssetTag, error) {
	args := m.Called(assetID)
	return args.Get(0).([]models.AssetTag), args.Error(1)
}

type fakeTransactor struct {
	calls int
}

func (f *fakeTransactor) WithTransaction(ctx context.Context, fn func(tx repository.Executor) error) error {
	f.calls++
	return fn(nil)
}

type serviceMocks struct {
	validatorMocks
	store   *MockStore
	history *MockHistory
	tags    *MockTags
	tx      *fakeTransactor
}

func newTestService() (*AssetService, *serviceMocks) {
	m := &serviceMocks{
		validatorMocks: validatorMocks{
			pos:        new(MockPurchaseOrderLookup),
			osVersions: new(MockOSVersionLookup),
			models:     new(MockModelLookup),
			makes:      new(MockMakeLookup),
			refs:       new(MockReferenceChecker),
		},
		store:   new(MockStore),
		history: new(MockHistory),
		tags:    new(MockTags),
		tx:      &fakeTransactor{},
	}

	validator := NewValidator(m.store, m.pos, m.osVersions, m.models, m.makes, m.refs, zap.NewNop())
	service := NewAssetService(m.store, m.tx, validator, m.refs, m.history, m.tags, auditlog.Nop{}, zap.NewNop())
	return service, m
}

func TestCreateAssetGeneratesCodeFromTypePrefix(t *testing.T) {
	service, m := newTestService()

	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-9", 0).Return(false, nil)
	m.refs.On("ExistsByID", TableAssetTypes, 1).Return(true, nil)
	m.store.On("PersistAsset", mock.MatchedBy(func(record goqu.Record) bool {
		return record["status"] == "IN_STOCK" && record["it_asset_code"] == (*string)(nil)
	})).Return(15, nil)
	m.store.On("CodePrefix", 1).Return("LAP", nil)
	m.store.On("UpdateITAssetCode", 15, "IT-LAP15").Return(nil)
	m.history.On("AppendStatus", mock.MatchedBy(func(entry models.AssetStatusHistory) bool {
		return entry.AssetID == 15 && entry.OldStatus == nil && entry.NewStatus == "IN_STOCK"
	})).Return(nil)
	m.store.On("GetAsset", 15).Return(&models.Asset{ID: 15, ITAssetCode: "IT-LAP15", Status: metadata.StatusInStock}, nil)
	m.tags.On("ListAssetTags", 15).Return([]models.AssetTag{}, nil)

	asset, err := service.CreateAsset(context.Background(), models.AssetRequest{
		SerialNumber: strPtr("SN-9"),
		AssetTypeID:  intPtr(1),
	})

	require.NoError(t, err)
	assert.Equal(t, "IT-LAP15", asset.ITAssetCode)
	assert.Equal(t, 1, m.tx.calls)
	m.store.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.tags.AssertNotCalled(t, "Replace", mock.Anything, mock.Anything)
}

func TestCreateAssetRejectsInvalidRequest(t *testing.T) {
	service, m := newTestService()

	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-9", 0).Return(true, nil)

	asset, err := service.CreateAsset(context.Background(), models.AssetRequest{SerialNumber: strPtr("SN-9")})

	assert.Nil(t, asset)
	var validationErr *custom_error.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 1)
	assert.Equal(t, 0, m.tx.calls)
}

func TestCreateAssetStoresResolvedIDs(t *testing.T) {
	service, m := newTestService()

	m.pos.On("GetByPONumber", "PO-1").Return(&models.PurchaseOrder{ID: 9, VendorID: intPtr(7)}, nil)
	m.store.On("PersistAsset", mock.MatchedBy(func(record goqu.Record) bool {
		vendor, _ := record["vendor_id"].(*int)
		extVendor, _ := record["extended_warranty_vendor_id"].(*int)
		po, _ := record["purchase_order_id"].(*int)
		return vendor != nil && *vendor == 7 && extVendor != nil && *extVendor == 7 && po != nil && *po == 9
	})).Return(3, nil)
	m.store.On("UpdateITAssetCode", 3, "IT-GEN3").Return(nil)
	m.history.On("AppendStatus", mock.Anything).Return(nil)
	m.tags.On("Replace", 3, []int{2}).Return(nil)
	m.store.On("GetAsset", 3).Return(&models.Asset{ID: 3}, nil)
	m.tags.On("ListAssetTags", 3).Return([]models.AssetTag{{ID: 2, Name: "spare"}}, nil)

	asset, err := service.CreateAsset(context.Background(), models.AssetRequest{
		PONumber: strPtr("PO-1"),
		VendorID: nil,
		TagIDs:   []int{2},
	})

	require.NoError(t, err)
	assert.Len(t, asset.Tags, 1)
	m.store.AssertExpectations(t)
	m.tags.AssertExpectations(t)
}

func TestCreateBulkAssetsReportsFailuresByIndex(t *testing.T) {
	service, m := newTestService()

	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-OK", 0).Return(false, nil)
	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-DUP", 0).Return(true, nil)
	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-RACE", 0).Return(false, nil)
	m.store.On("PersistAsset", mock.MatchedBy(func(record goqu.Record) bool {
		serial, _ := record["serial_number"].(*string)
		return serial != nil && *serial == "SN-OK"
	})).Return(1, nil)
	m.store.On("PersistAsset", mock.MatchedBy(func(record goqu.Record) bool {
		serial, _ := record["serial_number"].(*string)
		return serial != nil && *serial == "SN-RACE"
	})).Return(0, custom_error.WrapDBError("failed to insert asset", "23505"))
	m.store.On("UpdateITAssetCode", 1, "IT-GEN1").Return(nil)
	m.history.On("AppendStatus", mock.Anything).Return(nil)
	m.store.On("GetAsset", 1).Return(&models.Asset{ID: 1, SerialNumber: "SN-OK"}, nil)
	m.tags.On("ListAssetTags", 1).Return([]models.AssetTag{}, nil)

	result := service.CreateBulkAssets(context.Background(), []models.AssetRequest{
		{SerialNumber: strPtr("SN-OK")},
		{SerialNumber: strPtr("SN-DUP")},
		{SerialNumber: strPtr("SN-RACE")},
	})

	require.Len(t, result.Created, 1)
	assert.Equal(t, 1, result.Created[0].ID)
	require.Len(t, result.Failed, 2)
	assert.Equal(t, 1, result.Failed[0].Index)
	assert.Contains(t, result.Failed[0].Errors[0], "already exists (case-insensitive): SN-DUP")
	assert.Equal(t, 2, result.Failed[1].Index)
	assert.Contains(t, result.Failed[1].Errors[0], "conflicts with an existing asset")
}

func TestUpdateAssetExcludesItselfFromUniqueness(t *testing.T) {
	service, m := newTestService()

	m.store.On("GetAsset", 12).Return(&models.Asset{ID: 12, SerialNumber: "SN-1"}, nil)
	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-1", 12).Return(false, nil).Once()
	m.store.On("UpdateAsset", 12, goqu.Record{"serial_number": strPtr("SN-1")}).Return(nil)
	m.tags.On("ListAssetTags", 12).Return([]models.AssetTag{}, nil)

	asset, err := service.UpdateAsset(context.Background(), 12, models.UpdateAssetRequest{SerialNumber: strPtr("SN-1")})

	require.NoError(t, err)
	assert.Equal(t, 12, asset.ID)
	m.store.AssertExpectations(t)
	m.store.AssertNotCalled(t, "ExistsIgnoreCase", FieldSerialNumber, "SN-1", 0)
}

func TestUpdateAssetPurchaseOrderOverwritesBothVendors(t *testing.T) {
	service, m := newTestService()

	m.store.On("GetAsset", 5).Return(&models.Asset{ID: 5}, nil)
	m.pos.On("GetByPONumber", "PO-2").Return(&models.PurchaseOrder{ID: 11, VendorID: intPtr(7)}, nil)
	m.refs.On("ExistsByID", TableVendors, 3).Return(true, nil)
	m.refs.On("ExistsByID", TableVendors, 4).Return(true, nil)
	m.store.On("UpdateAsset", 5, mock.MatchedBy(func(record goqu.Record) bool {
		vendor, _ := record["vendor_id"].(*int)
		extVendor, _ := record["extended_warranty_vendor_id"].(*int)
		po, _ := record["purchase_order_id"].(*int)
		return vendor != nil && *vendor == 7 && extVendor != nil && *extVendor == 7 && po != nil && *po == 11
	})).Return(nil)
	m.tags.On("ListAssetTags", 5).Return([]models.AssetTag{}, nil)

	_, err := service.UpdateAsset(context.Background(), 5, models.UpdateAssetRequest{
		PONumber:                 strPtr("PO-2"),
		VendorID:                 intPtr(3),
		ExtendedWarrantyVendorID: intPtr(4),
	})

	require.NoError(t, err)
	m.store.AssertExpectations(t)
	m.pos.AssertExpectations(t)
}

func TestUpdateAssetNameOnlyLeavesDerivedIDs(t *testing.T) {
	service, m := newTestService()

	m.store.On("GetAsset", 8).Return(&models.Asset{ID: 8}, nil)
	m.store.On("UpdateAsset", 8, goqu.Record{"name": strPtr("Spare laptop")}).Return(nil)
	m.tags.On("ListAssetTags", 8).Return([]models.AssetTag{}, nil)

	_, err := service.UpdateAsset(context.Background(), 8, models.UpdateAssetRequest{Name: strPtr("Spare laptop")})

	require.NoError(t, err)
	m.store.AssertExpectations(t)
	m.store.AssertNotCalled(t, "ExistsIgnoreCase", mock.Anything, mock.Anything, mock.Anything)
	m.pos.AssertNotCalled(t, "GetByPONumber", mock.Anything)
	m.osVersions.AssertNotCalled(t, "GetOSVersion", mock.Anything)
	m.models.AssertNotCalled(t, "GetModel", mock.Anything)
	m.refs.AssertNotCalled(t, "ExistsByID", mock.Anything, mock.Anything)
}

func TestChangeStatus(t *testing.T) {
	t.Run("rejects unknown status", func(t *testing.T) {
		service, m := newTestService()

		_, err := service.ChangeStatus(context.Background(), 1, "LOST", nil)

		assert.ErrorIs(t, err, custom_error.ErrValidation)
		m.store.AssertNotCalled(t, "GetAsset", mock.Anything)
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		service, m := newTestService()
		asset := &models.Asset{ID: 1, Status: metadata.StatusActive}

		m.store.On("GetAsset", 1).Return(asset, nil)
		m.tags.On("ListAssetTags", 1).Return([]models.AssetTag{}, nil)

		result, err := service.ChangeStatus(context.Background(), 1, "active", nil)

		require.NoError(t, err)
		assert.Equal(t, metadata.StatusActive, result.Status)
		assert.Equal(t, 0, m.tx.calls)
		m.history.AssertNotCalled(t, "AppendStatus", mock.Anything)
	})

	t.Run("records history", func(t *testing.T) {
		service, m := newTestService()
		reason := "screen cracked"

		m.store.On("GetAsset", 1).Return(&models.Asset{ID: 1, Status: metadata.StatusActive}, nil).Once()
		m.store.On("UpdateStatus", 1, metadata.StatusBroken).Return(nil)
		m.history.On("AppendStatus", mock.MatchedBy(func(entry models.AssetStatusHistory) bool {
			return entry.OldStatus != nil && *entry.OldStatus == "ACTIVE" &&
				entry.NewStatus == "BROKEN" && entry.Reason == &reason
		})).Return(nil)
		m.store.On("GetAsset", 1).Return(&models.Asset{ID: 1, Status: metadata.StatusBroken}, nil).Once()
		m.tags.On("ListAssetTags", 1).Return([]models.AssetTag{}, nil)

		result, err := service.ChangeStatus(context.Background(), 1, "BROKEN", &reason)

		require.NoError(t, err)
		assert.Equal(t, metadata.StatusBroken, result.Status)
		assert.Equal(t, 1, m.tx.calls)
		m.history.AssertExpectations(t)
	})
}

func TestAssignUserUnknownUser(t *testing.T) {
	service, m := newTestService()

	m.refs.On("ExistsByID", TableUsers, 8).Return(false, nil)

	_, err := service.AssignUser(context.Background(), 1, intPtr(8), nil)

	assert.True(t, custom_error.IsNotFound(err))
}

func TestAssignUserRecordsPreviousUser(t *testing.T) {
	service, m := newTestService()

	m.refs.On("ExistsByID", TableUsers, 8).Return(true, nil)
	m.store.On("GetAsset", 1).Return(&models.Asset{ID: 1, CurrentUser: &models.UserReference{ID: 3}}, nil)
	m.store.On("UpdateCurrentUser", 1, intPtr(8)).Return(nil)
	m.history.On("AppendAssignment", mock.MatchedBy(func(entry models.AssetAssignmentHistory) bool {
		return *entry.PreviousUserID == 3 && *entry.UserID == 8
	})).Return(nil)
	m.tags.On("ListAssetTags", 1).Return([]models.AssetTag{}, nil)

	_, err := service.AssignUser(context.Background(), 1, intPtr(8), nil)

	require.NoError(t, err)
	m.history.AssertExpectations(t)
}

func TestDeleteIfExists(t *testing.T) {
	service, m := newTestService()

	m.store.On("DeleteIfExists", 1).Return(true, nil)
	m.store.On("DeleteIfExists", 2).Return(false, nil)

	deleted, err := service.DeleteIfExists(context.Background(), 1)
	assert.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = service.DeleteIfExists(context.Background(), 2)
	assert.NoError(t, err)
	assert.False(t, deleted)

	err = service.DeleteAssetPermanently(context.Background(), 2)
	assert.True(t, custom_error.IsNotFound(err))
}

func TestRestoreAssetConflict(t *testing.T) {
	service, m := newTestService()

	m.store.On("GetAsset", 1).Return(&models.Asset{ID: 1, SerialNumber: "SN-1", Deleted: true}, nil)
	m.store.On("ExistsIgnoreCase", FieldSerialNumber, "SN-1", 1).Return(true, nil)

	_, err := service.RestoreAsset(context.Background(), 1)

	assert.True(t, custom_error.IsConflict(err))
	m.store.AssertNotCalled(t, "RestoreAsset", mock.Anything)
}

func TestSearchAssetsRequiresTerm(t *testing.T) {
	service, _ := newTestService()

	_, err := service.SearchAssets(context.Background(), "  ", repository.Pagination{})

	assert.ErrorIs(t, err, custom_error.ErrValidation)
}
