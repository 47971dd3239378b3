package services

import (
	"github.com/stretchr/testify/mock"

	"github.com/custodia/ops-console/internal/models"
)

// MockTreasury is a testify mock of the treasury operations consumed by the
// action workflows.
type MockTreasury struct {
	mock.Mock
}

func (m *MockTreasury) EstimateFee(intent models.TransferIntent) (*models.FeeEstimate, error) {
	args := m.Called(intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeeEstimate), args.Error(1)
}

func (m *MockTreasury) ValidateTransfer(intent models.TransferIntent) (*models.TransferValidation, error) {
	args := m.Called(intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TransferValidation), args.Error(1)
}

func (m *MockTreasury) ReleaseWithdrawal(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTreasury) CancelWithdrawal(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockTreasury) TransferToHot(intent models.TransferIntent) error {
	args := m.Called(intent)
	return args.Error(0)
}

func (m *MockTreasury) TransferBatchToHot(chain models.Chain, currency string, transfers []models.BatchTransferItem) error {
	args := m.Called(chain, currency, transfers)
	return args.Error(0)
}

func (m *MockTreasury) TransferToCold(intent models.TransferIntent) error {
	args := m.Called(intent)
	return args.Error(0)
}

// MockEvents is a testify mock of the deposit-event and webhook operations.
type MockEvents struct {
	mock.Mock
}

func (m *MockEvents) UpdateDepositEvent(id string, patch map[string]interface{}) error {
	args := m.Called(id, patch)
	return args.Error(0)
}

func (m *MockEvents) RetryDepositEvent(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockEvents) UpdateWebhook(id string, patch map[string]interface{}) error {
	args := m.Called(id, patch)
	return args.Error(0)
}

func (m *MockEvents) SyncWebhooks(scope string) error {
	args := m.Called(scope)
	return args.Error(0)
}
