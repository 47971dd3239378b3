package workflow

import (
	"fmt"

	"github.com/custodia/ops-console/internal/models"
)

// BatchAPI is the slice of the treasury contract the batch sweep needs.
type BatchAPI interface {
	TransferBatchToHot(chain models.Chain, currency string, transfers []models.BatchTransferItem) error
}

// BatchSweepWorkflow sweeps several addresses into the hot wallet in one
// call. Only Solana supports batch mode, and unlike single transfers there is
// no per-row fee estimation: Solana fees are near-zero and predictable, an
// asymmetry kept on purpose rather than papered over with a batch estimate.
type BatchSweepWorkflow struct {
	*ConfirmFlow
	treasury BatchAPI
}

// NewBatchSweepWorkflow creates an idle batch sweep workflow.
func NewBatchSweepWorkflow(treasury BatchAPI, opts Options, onChange func()) *BatchSweepWorkflow {
	return &BatchSweepWorkflow{
		ConfirmFlow: NewConfirmFlow(opts, onChange),
		treasury:    treasury,
	}
}

// Begin validates the batch client-side and opens confirmation. The chain
// guard runs before any backend call.
func (w *BatchSweepWorkflow) Begin(chain models.Chain, currency string, transfers []models.BatchTransferItem, onSwept func()) error {
	if !chain.IsSolana() {
		return fmt.Errorf("batch sweep is only supported on solana, got %s", chain)
	}
	if len(transfers) == 0 {
		return fmt.Errorf("batch sweep requires at least one address")
	}
	for _, item := range transfers {
		if item.Address == "" {
			return fmt.Errorf("batch sweep item is missing an address")
		}
		if !item.Amount.IsPositive() {
			return fmt.Errorf("batch sweep amount for %s must be positive, got %s", item.Address, item.Amount)
		}
	}

	label := fmt.Sprintf("Sweep %d addresses (%s) to hot wallet", len(transfers), currency)
	call := func() error { return w.treasury.TransferBatchToHot(chain, currency, transfers) }

	if !w.ConfirmFlow.Begin(label, call, onSwept) {
		return fmt.Errorf("another action is already in progress")
	}
	return nil
}
