package workflow

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia/ops-console/internal/client"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/services"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

var testOpts = Options{
	EstimateDebounce: 5 * time.Millisecond,
	SuccessAutoClose: 30 * time.Millisecond,
}

func solIntent(amount string) models.TransferIntent {
	return models.TransferIntent{
		SourceAddress: "So1anaAddr111",
		Chain:         models.ChainSolana,
		CurrencyCode:  "SOL",
		Amount:        decimal.RequireFromString(amount),
		Direction:     models.DirectionUserToHot,
	}
}

func passingValidation(available string) *models.TransferValidation {
	return &models.TransferValidation{
		IsValid:          true,
		CanTransfer:      true,
		AvailableBalance: decimal.RequireFromString(available),
	}
}

func estimate(total string) *models.FeeEstimate {
	return &models.FeeEstimate{
		FeeNative:   decimal.RequireFromString("0.000005"),
		TotalAmount: decimal.RequireFromString(total),
	}
}

// stubTreasury lets a test block individual responses with channels, which
// the mock cannot express without racing on its call log.
type stubTreasury struct {
	estimateFn func(models.TransferIntent) (*models.FeeEstimate, error)
	validateFn func(models.TransferIntent) (*models.TransferValidation, error)
	executeFn  func(models.TransferIntent) error
}

func (s *stubTreasury) EstimateFee(intent models.TransferIntent) (*models.FeeEstimate, error) {
	return s.estimateFn(intent)
}

func (s *stubTreasury) ValidateTransfer(intent models.TransferIntent) (*models.TransferValidation, error) {
	return s.validateFn(intent)
}

func (s *stubTreasury) TransferToHot(intent models.TransferIntent) error  { return s.executeFn(intent) }
func (s *stubTreasury) TransferToCold(intent models.TransferIntent) error { return s.executeFn(intent) }

func TestStaleEstimateIsDiscarded(t *testing.T) {
	intentA := solIntent("1")
	intentB := solIntent("2")

	estA := estimate("1.000005")
	estB := estimate("2.000005")

	started := make(chan struct{})
	release := make(chan struct{})
	var startedOnce sync.Once

	slowIfA := func(intent models.TransferIntent) {
		if intent.Amount.Equal(intentA.Amount) {
			startedOnce.Do(func() { close(started) })
			<-release
		}
	}
	treasury := &stubTreasury{
		estimateFn: func(intent models.TransferIntent) (*models.FeeEstimate, error) {
			slowIfA(intent)
			if intent.Amount.Equal(intentA.Amount) {
				return estA, nil
			}
			return estB, nil
		},
		validateFn: func(intent models.TransferIntent) (*models.TransferValidation, error) {
			slowIfA(intent)
			return passingValidation("10"), nil
		},
	}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	wf.SetIntent(intentA)
	// Wait until A's requests are actually in flight, then supersede them.
	<-started

	wf.SetIntent(intentB)
	require.Eventually(t, func() bool {
		snap := wf.Snapshot()
		return snap.State == StateReady && snap.Estimate == estB
	}, waitFor, tick)

	// A's slow responses arrive after B became current: they must be dropped.
	close(release)
	time.Sleep(50 * time.Millisecond)

	snap := wf.Snapshot()
	assert.Equal(t, StateReady, snap.State)
	assert.Same(t, estB, snap.Estimate)
	assert.True(t, snap.Intent.Amount.Equal(intentB.Amount))
}

func TestInsufficientFundsForFeeAndReserveBlocksExecution(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	// 1.5 SOL requested, wallet holds exactly 1.5: the fee plus the
	// rent-exempt reserve push the required total past the balance.
	intent := solIntent("1.5")
	treasury.On("EstimateFee", intent).Return(&models.FeeEstimate{
		FeeNative:         decimal.RequireFromString("0.000005"),
		RentExemptReserve: decimal.RequireFromString("0.00089"),
		TotalAmount:       decimal.RequireFromString("1.500895"),
	}, nil)
	treasury.On("ValidateTransfer", intent).Return(&models.TransferValidation{
		IsValid:          true,
		CanTransfer:      false,
		AvailableBalance: decimal.RequireFromString("1.5"),
		RequiredTotal:    decimal.RequireFromString("1.500895"),
		ErrorMessage:     "insufficient funds to cover fee and rent-exempt reserve",
	}, nil)

	wf.SetIntent(intent)

	require.Eventually(t, func() bool {
		snap := wf.Snapshot()
		return snap.Validation != nil && !snap.InFlight
	}, waitFor, tick)

	snap := wf.Snapshot()
	assert.Equal(t, StateValidating, snap.State, "never reaches Ready without canTransfer")
	assert.False(t, snap.CanExecute())
	assert.Equal(t, "insufficient funds to cover fee and rent-exempt reserve", snap.Err)

	assert.False(t, wf.Confirm())
	assert.False(t, wf.Execute())
	treasury.AssertNotCalled(t, "TransferToHot", mock.Anything)
}

func TestExecuteDisabledWhileEstimateInFlight(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	intent := solIntent("1")
	block := make(chan time.Time)
	treasury.On("EstimateFee", intent).WaitUntil(block).Return(estimate("1.000005"), nil)
	treasury.On("ValidateTransfer", intent).WaitUntil(block).Return(passingValidation("10"), nil)

	wf.SetIntent(intent)

	snap := wf.Snapshot()
	assert.Equal(t, StateValidating, snap.State)
	assert.True(t, snap.InFlight)
	assert.False(t, snap.CanExecute())
	assert.False(t, wf.Confirm())

	close(block)
	require.Eventually(t, func() bool {
		return wf.Snapshot().State == StateReady
	}, waitFor, tick)
	assert.True(t, wf.Snapshot().CanExecute())
}

func TestHappyPathTransferAndAutoClose(t *testing.T) {
	treasury := &services.MockTreasury{}

	var mu sync.Mutex
	var settled []models.TransferIntent
	wf := NewTransferWorkflow(treasury, testOpts, nil, func(intent models.TransferIntent) {
		mu.Lock()
		settled = append(settled, intent)
		mu.Unlock()
	})

	intent := solIntent("1")
	treasury.On("EstimateFee", intent).Return(estimate("1.000005"), nil)
	treasury.On("ValidateTransfer", intent).Return(passingValidation("10"), nil)
	treasury.On("TransferToHot", intent).Return(nil)

	wf.SetIntent(intent)
	require.Eventually(t, func() bool {
		return wf.Snapshot().State == StateReady
	}, waitFor, tick)

	require.True(t, wf.Confirm())
	require.True(t, wf.Execute())

	require.Eventually(t, func() bool {
		return wf.Snapshot().State == StateSucceeded
	}, waitFor, tick)

	mu.Lock()
	require.Len(t, settled, 1)
	assert.True(t, settled[0].Amount.Equal(intent.Amount))
	mu.Unlock()

	// The success indicator auto-closes back to Idle.
	require.Eventually(t, func() bool {
		return wf.Snapshot().State == StateIdle
	}, waitFor, tick)
	treasury.AssertNumberOfCalls(t, "TransferToHot", 1)
}

func TestHotToColdUsesColdEndpoint(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	intent := solIntent("3")
	intent.Direction = models.DirectionHotToCold
	treasury.On("EstimateFee", intent).Return(estimate("3.000005"), nil)
	treasury.On("ValidateTransfer", intent).Return(passingValidation("10"), nil)
	treasury.On("TransferToCold", intent).Return(nil)

	wf.SetIntent(intent)
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateReady }, waitFor, tick)
	require.True(t, wf.Confirm())
	require.True(t, wf.Execute())
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateSucceeded }, waitFor, tick)

	treasury.AssertCalled(t, "TransferToCold", intent)
	treasury.AssertNotCalled(t, "TransferToHot", mock.Anything)
}

func TestFailedExecutionExposesReasonAndAllowsRetry(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	intent := solIntent("1")
	treasury.On("EstimateFee", intent).Return(estimate("1.000005"), nil)
	treasury.On("ValidateTransfer", intent).Return(passingValidation("10"), nil)
	treasury.On("TransferToHot", intent).Return(&client.APIError{
		StatusCode: 422,
		Message:    "user has not completed KYC",
		Reason:     "kyc_required",
	}).Once()
	treasury.On("TransferToHot", intent).Return(nil)

	wf.SetIntent(intent)
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateReady }, waitFor, tick)
	require.True(t, wf.Confirm())
	require.True(t, wf.Execute())

	require.Eventually(t, func() bool { return wf.Snapshot().State == StateFailed }, waitFor, tick)
	snap := wf.Snapshot()
	assert.Contains(t, snap.Err, "KYC")
	assert.Equal(t, "kyc_required", snap.Reason)

	// Retry re-enters the confirm step and succeeds on the second attempt.
	require.True(t, wf.Retry())
	assert.Equal(t, StateConfirming, wf.Snapshot().State)
	require.True(t, wf.Execute())
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateSucceeded }, waitFor, tick)
}

func TestNoDoubleSubmitAndNoCancelWhileExecuting(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	intent := solIntent("1")
	block := make(chan time.Time)
	treasury.On("EstimateFee", intent).Return(estimate("1.000005"), nil)
	treasury.On("ValidateTransfer", intent).Return(passingValidation("10"), nil)
	treasury.On("TransferToHot", intent).WaitUntil(block).Return(nil)

	wf.SetIntent(intent)
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateReady }, waitFor, tick)
	require.True(t, wf.Confirm())
	require.True(t, wf.Execute())

	assert.Equal(t, StateExecuting, wf.Snapshot().State)
	assert.False(t, wf.Execute(), "the trigger is disabled while a call is in flight")
	assert.False(t, wf.Cancel(), "the in-flight call cannot be aborted once sent")

	close(block)
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateSucceeded }, waitFor, tick)
	treasury.AssertNumberOfCalls(t, "TransferToHot", 1)
}

func TestCancelDiscardsIntent(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	intent := solIntent("1")
	treasury.On("EstimateFee", intent).Return(estimate("1.000005"), nil)
	treasury.On("ValidateTransfer", intent).Return(passingValidation("10"), nil)

	wf.SetIntent(intent)
	require.Eventually(t, func() bool { return wf.Snapshot().State == StateReady }, waitFor, tick)

	require.True(t, wf.Cancel())
	snap := wf.Snapshot()
	assert.Equal(t, StateIdle, snap.State)
	assert.True(t, snap.Intent.Amount.IsZero())
	assert.Nil(t, snap.Estimate)
	assert.Nil(t, snap.Validation)
}

func TestIncompleteIntentStaysIdle(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewTransferWorkflow(treasury, testOpts, nil, nil)

	intent := solIntent("1")
	intent.Amount = decimal.Zero
	wf.SetIntent(intent)

	time.Sleep(4 * testOpts.EstimateDebounce)
	assert.Equal(t, StateIdle, wf.Snapshot().State)
	treasury.AssertNotCalled(t, "EstimateFee", mock.Anything)
	treasury.AssertNotCalled(t, "ValidateTransfer", mock.Anything)
}
