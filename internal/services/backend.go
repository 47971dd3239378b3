package services

import (
	"github.com/custodia/ops-console/internal/client"
	"github.com/custodia/ops-console/internal/config"
)

// Backend bundles every service the console talks to, sharing one API client.
type Backend struct {
	config   *config.Config
	client   *client.APIClient
	Ledger   *LedgerService
	Wallets  *WalletService
	Events   *EventService
	Treasury *TreasuryService
}

// NewBackend creates the full service stack for the given configuration
func NewBackend(cfg *config.Config) *Backend {
	apiClient := client.NewAPIClient(cfg)

	return &Backend{
		config:   cfg,
		client:   apiClient,
		Ledger:   NewLedgerService(apiClient),
		Wallets:  NewWalletService(apiClient),
		Events:   NewEventService(apiClient),
		Treasury: NewTreasuryService(apiClient),
	}
}

// Ping checks backend reachability before the TUI takes over the terminal
func (b *Backend) Ping() error {
	return b.client.Ping()
}
