package auditlog

import (
	"context"
	"errors"
	"testing"

	"itinventory/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) PersistLog(ctx context.Context, auditLog models.AuditLog, data interface{}) error {
	args := m.Called(auditLog, data)
	return args.Error(0)
}

func TestLogPersistsEntry(t *testing.T) {
	store := new(MockStore)
	asset := &models.Asset{ID: 12}
	data := map[string]interface{}{"msg": "created"}

	store.On("PersistLog", models.AuditLog{ResourceID: 12, ResourceType: "asset", Action: "create"}, data).Return(nil)

	NewAuditLog(store, zap.NewNop()).Log(context.Background(), "create", data, asset)

	store.AssertExpectations(t)
}

func TestLogSwallowsStoreFailure(t *testing.T) {
	store := new(MockStore)
	core, logs := observer.New(zap.ErrorLevel)

	store.On("PersistLog", mock.Anything, mock.Anything).Return(errors.New("db down"))

	assert.NotPanics(t, func() {
		NewAuditLog(store, zap.New(core)).Log(context.Background(), "delete", nil, &models.Vendor{ID: 3})
	})
	assert.Equal(t, 1, logs.FilterMessage("Unable to create audit log entry").Len())
}
