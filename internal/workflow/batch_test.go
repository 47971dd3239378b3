package workflow

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/services"
)

func sweepItems(amounts ...string) []models.BatchTransferItem {
	items := make([]models.BatchTransferItem, 0, len(amounts))
	for i, amount := range amounts {
		items = append(items, models.BatchTransferItem{
			Address: "addr_" + string(rune('a'+i)),
			Amount:  decimal.RequireFromString(amount),
		})
	}
	return items
}

func TestBatchSweepRejectsNonSolanaBeforeAnyCall(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewBatchSweepWorkflow(treasury, testOpts, nil)

	for _, chain := range []models.Chain{models.ChainEthereum, models.ChainBitcoin} {
		err := wf.Begin(chain, "ETH", sweepItems("1", "2"), nil)
		require.Error(t, err, "chain %s", chain)
		assert.Contains(t, err.Error(), "solana")
		assert.Equal(t, StateIdle, wf.State())
	}
	treasury.AssertNotCalled(t, "TransferBatchToHot", mock.Anything, mock.Anything, mock.Anything)
}

func TestBatchSweepRejectsEmptyAndNonPositive(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewBatchSweepWorkflow(treasury, testOpts, nil)

	require.Error(t, wf.Begin(models.ChainSolana, "SOL", nil, nil))
	require.Error(t, wf.Begin(models.ChainSolana, "SOL", sweepItems("1", "0"), nil))
	require.Error(t, wf.Begin(models.ChainSolana, "SOL", sweepItems("-0.5"), nil))

	missing := sweepItems("1")
	missing[0].Address = ""
	require.Error(t, wf.Begin(models.ChainSolana, "SOL", missing, nil))

	assert.Equal(t, StateIdle, wf.State())
	treasury.AssertNotCalled(t, "TransferBatchToHot", mock.Anything, mock.Anything, mock.Anything)
}

func TestBatchSweepHappyPath(t *testing.T) {
	items := sweepItems("0.4", "1.1", "0.02")

	treasury := &services.MockTreasury{}
	treasury.On("TransferBatchToHot", models.ChainSolana, "SOL", items).Return(nil)

	wf := NewBatchSweepWorkflow(treasury, testOpts, nil)

	swept := make(chan struct{}, 1)
	require.NoError(t, wf.Begin(models.ChainSolana, "SOL", items, func() { swept <- struct{}{} }))
	assert.Contains(t, wf.Label(), "3 addresses")

	require.True(t, wf.Confirm())
	require.Eventually(t, func() bool { return wf.State() == StateSucceeded }, waitFor, tick)
	assert.Len(t, swept, 1)

	require.Eventually(t, func() bool { return wf.State() == StateIdle }, waitFor, tick)
	treasury.AssertNumberOfCalls(t, "TransferBatchToHot", 1)
}
