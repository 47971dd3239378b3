package services

import (
	"fmt"

	"github.com/custodia/ops-console/internal/client"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/query"
)

// LedgerService reads the money-movement lists: deposits, withdrawals and
// on-chain transactions.
type LedgerService struct {
	client *client.APIClient
}

// NewLedgerService creates a new ledger service
func NewLedgerService(apiClient *client.APIClient) *LedgerService {
	return &LedgerService{client: apiClient}
}

// ListDeposits retrieves one page of deposits for the given query
func (s *LedgerService) ListDeposits(q query.ListQuery) (*models.ListResult[models.Deposit], error) {
	var response models.DepositListResponse
	endpoint := client.BuildURLWithParams("/deposits", q.Params())
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list deposits: %w", err)
	}
	return &response.Result, nil
}

// ListWithdrawals retrieves one page of withdrawals for the given query
func (s *LedgerService) ListWithdrawals(q query.ListQuery) (*models.ListResult[models.Withdrawal], error) {
	var response models.WithdrawalListResponse
	endpoint := client.BuildURLWithParams("/withdrawals", q.Params())
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	return &response.Result, nil
}

// ListTransactions retrieves one page of on-chain transactions for the given query
func (s *LedgerService) ListTransactions(q query.ListQuery) (*models.ListResult[models.Transaction], error) {
	var response models.TransactionListResponse
	endpoint := client.BuildURLWithParams("/transactions", q.Params())
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return &response.Result, nil
}
