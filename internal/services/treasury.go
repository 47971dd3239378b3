package services

import (
	"fmt"

	"github.com/custodia/ops-console/internal/client"
	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/models"
)

// TreasuryService performs the consequential actions: fee estimation,
// transfer validation, fund movements between user/hot/cold wallets, and
// withdrawal review decisions.
type TreasuryService struct {
	client *client.APIClient
}

// NewTreasuryService creates a new treasury service
func NewTreasuryService(apiClient *client.APIClient) *TreasuryService {
	return &TreasuryService{client: apiClient}
}

// EstimateFee computes the network fee breakdown for an intent snapshot
func (s *TreasuryService) EstimateFee(intent models.TransferIntent) (*models.FeeEstimate, error) {
	var response models.FeeEstimateResponse
	if err := s.client.Post("/transfers/estimate-fee", intent, &response); err != nil {
		return nil, fmt.Errorf("failed to estimate fee: %w", err)
	}
	return &response.Result, nil
}

// ValidateTransfer checks an intent against the source wallet's balance
func (s *TreasuryService) ValidateTransfer(intent models.TransferIntent) (*models.TransferValidation, error) {
	var response models.TransferValidationResponse
	if err := s.client.Post("/transfers/validate", intent, &response); err != nil {
		return nil, fmt.Errorf("failed to validate transfer: %w", err)
	}
	return &response.Result, nil
}

// ReleaseWithdrawal approves a withdrawal held for admin review
func (s *TreasuryService) ReleaseWithdrawal(id string) error {
	var response models.AckResponse
	endpoint := fmt.Sprintf("/withdrawals/%s/release", id)
	if err := s.client.Post(endpoint, nil, &response); err != nil {
		return fmt.Errorf("failed to release withdrawal %s: %w", id, err)
	}
	logger.Info("Withdrawal %s released", id)
	return nil
}

// CancelWithdrawal rejects a withdrawal held for admin review
func (s *TreasuryService) CancelWithdrawal(id string) error {
	var response models.AckResponse
	endpoint := fmt.Sprintf("/withdrawals/%s/cancel", id)
	if err := s.client.Post(endpoint, nil, &response); err != nil {
		return fmt.Errorf("failed to cancel withdrawal %s: %w", id, err)
	}
	logger.Info("Withdrawal %s cancelled", id)
	return nil
}

// TransferToHot moves funds from a user wallet into the hot wallet
func (s *TreasuryService) TransferToHot(intent models.TransferIntent) error {
	var response models.AckResponse
	if err := s.client.Post("/transfers/hot", intent, &response); err != nil {
		return fmt.Errorf("failed to transfer to hot wallet: %w", err)
	}
	logger.Info("Transfer to hot wallet submitted: %s %s from %s",
		intent.Amount, intent.CurrencyCode, intent.SourceAddress)
	return nil
}

// TransferBatchToHot sweeps several addresses into the hot wallet in one call
func (s *TreasuryService) TransferBatchToHot(chain models.Chain, currency string, transfers []models.BatchTransferItem) error {
	var response models.AckResponse
	body := map[string]interface{}{
		"chain":         chain,
		"currency_code": currency,
		"transfers":     transfers,
	}
	if err := s.client.Post("/transfers/hot/batch", body, &response); err != nil {
		return fmt.Errorf("failed to batch transfer to hot wallet: %w", err)
	}
	logger.Info("Batch transfer to hot wallet submitted: %d addresses on %s", len(transfers), chain)
	return nil
}

// TransferToCold moves funds from the hot wallet into cold storage
func (s *TreasuryService) TransferToCold(intent models.TransferIntent) error {
	var response models.AckResponse
	if err := s.client.Post("/transfers/cold", intent, &response); err != nil {
		return fmt.Errorf("failed to transfer to cold storage: %w", err)
	}
	logger.Info("Transfer to cold storage submitted: %s %s",
		intent.Amount, intent.CurrencyCode)
	return nil
}
