package services

import (
	"fmt"

	"github.com/custodia/ops-console/internal/client"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/query"
)

// WalletService reads internal (hot/cold) wallets, user-generated deposit
// wallets and user balances.
type WalletService struct {
	client *client.APIClient
}

// NewWalletService creates a new wallet service
func NewWalletService(apiClient *client.APIClient) *WalletService {
	return &WalletService{client: apiClient}
}

// ListWallets retrieves one page of wallets for the given query. The query's
// "kind" filter selects between internal and user-generated wallets.
func (s *WalletService) ListWallets(q query.ListQuery) (*models.ListResult[models.Wallet], error) {
	var response models.WalletListResponse
	endpoint := client.BuildURLWithParams("/wallets", q.Params())
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	return &response.Result, nil
}

// GetBalance retrieves the current balance for a user
func (s *WalletService) GetBalance(userID string) (*models.Balance, error) {
	var response models.BalanceResponse
	endpoint := fmt.Sprintf("/users/%s/balance", userID)
	if err := s.client.Get(endpoint, &response); err != nil {
		return nil, fmt.Errorf("failed to get balance for user %s: %w", userID, err)
	}
	return &response.Result, nil
}
