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

func withdrawal(status models.WithdrawalStatus) models.Withdrawal {
	return models.Withdrawal{
		ID:                  "wd_42",
		UserID:              "usr_7",
		Chain:               models.ChainSolana,
		CurrencyCode:        "SOL",
		Amount:              decimal.RequireFromString("1.25"),
		Status:              status,
		RequiresAdminReview: status == models.WithdrawalAwaitingReview,
		AdminReviewReason:   "amount_threshold_exceeded",
	}
}

func TestTerminalWithdrawalsOfferNoAction(t *testing.T) {
	treasury := &services.MockTreasury{}
	wf := NewReviewWorkflow(treasury, testOpts, nil)

	for _, status := range []models.WithdrawalStatus{
		models.WithdrawalCompleted,
		models.WithdrawalFailed,
		models.WithdrawalCancelled,
	} {
		err := wf.Begin(withdrawal(status), ActionRelease, nil)
		require.Error(t, err, "status %s", status)
		assert.Equal(t, StateIdle, wf.State())
	}

	// Non-terminal but not held for review: still no action.
	err := wf.Begin(withdrawal(models.WithdrawalPending), ActionCancel, nil)
	require.Error(t, err)
	assert.Equal(t, StateIdle, wf.State())

	treasury.AssertNotCalled(t, "ReleaseWithdrawal", mock.Anything)
	treasury.AssertNotCalled(t, "CancelWithdrawal", mock.Anything)
}

func TestReleaseHeldWithdrawal(t *testing.T) {
	treasury := &services.MockTreasury{}
	treasury.On("ReleaseWithdrawal", "wd_42").Return(nil)

	wf := NewReviewWorkflow(treasury, testOpts, nil)

	var mu sync.Mutex
	var patchedID string
	var patchedStatus models.WithdrawalStatus

	err := wf.Begin(withdrawal(models.WithdrawalAwaitingReview), ActionRelease, func(id string, status models.WithdrawalStatus) {
		mu.Lock()
		patchedID = id
		patchedStatus = status
		mu.Unlock()
	})
	require.NoError(t, err)
	assert.Equal(t, StateConfirming, wf.State())
	assert.Contains(t, wf.Label(), "wd_42")
	assert.Contains(t, wf.Label(), "1.25 SOL")

	require.True(t, wf.Confirm())
	require.Eventually(t, func() bool { return wf.State() == StateSucceeded }, waitFor, tick)

	mu.Lock()
	assert.Equal(t, "wd_42", patchedID)
	assert.Equal(t, models.WithdrawalCompleted, patchedStatus)
	mu.Unlock()

	require.Eventually(t, func() bool { return wf.State() == StateIdle }, waitFor, tick)
	treasury.AssertNumberOfCalls(t, "ReleaseWithdrawal", 1)
}

func TestCancelHeldWithdrawalPatchesToCancelled(t *testing.T) {
	treasury := &services.MockTreasury{}
	treasury.On("CancelWithdrawal", "wd_42").Return(nil)

	wf := NewReviewWorkflow(treasury, testOpts, nil)

	var mu sync.Mutex
	var patchedStatus models.WithdrawalStatus
	err := wf.Begin(withdrawal(models.WithdrawalAwaitingReview), ActionCancel, func(_ string, status models.WithdrawalStatus) {
		mu.Lock()
		patchedStatus = status
		mu.Unlock()
	})
	require.NoError(t, err)

	require.True(t, wf.Confirm())
	require.Eventually(t, func() bool { return wf.State() == StateSucceeded }, waitFor, tick)

	mu.Lock()
	assert.Equal(t, models.WithdrawalCancelled, patchedStatus)
	mu.Unlock()
	treasury.AssertNotCalled(t, "ReleaseWithdrawal", mock.Anything)
}

func TestReviewFailureSurfacesReasonAndRetries(t *testing.T) {
	treasury := &services.MockTreasury{}
	treasury.On("ReleaseWithdrawal", "wd_42").Return(&client.APIError{
		StatusCode: 409,
		Message:    "withdrawal already settled on chain",
		Reason:     "already_settled",
	}).Once()
	treasury.On("ReleaseWithdrawal", "wd_42").Return(nil)

	wf := NewReviewWorkflow(treasury, testOpts, nil)

	decided := make(chan struct{}, 2)
	err := wf.Begin(withdrawal(models.WithdrawalAwaitingReview), ActionRelease, func(string, models.WithdrawalStatus) {
		decided <- struct{}{}
	})
	require.NoError(t, err)

	require.True(t, wf.Confirm())
	require.Eventually(t, func() bool { return wf.State() == StateFailed }, waitFor, tick)

	msg, reason := wf.Err()
	assert.Contains(t, msg, "already settled")
	assert.Equal(t, "already_settled", reason)
	assert.Empty(t, decided, "the row is not patched on failure")

	require.True(t, wf.Retry())
	assert.Equal(t, StateConfirming, wf.State())
	require.True(t, wf.Confirm())
	require.Eventually(t, func() bool { return wf.State() == StateSucceeded }, waitFor, tick)
	assert.Len(t, decided, 1)
}

func TestOnlyOneReviewAtATime(t *testing.T) {
	treasury := &services.MockTreasury{}
	block := make(chan time.Time)
	treasury.On("ReleaseWithdrawal", "wd_42").WaitUntil(block).Return(nil)

	wf := NewReviewWorkflow(treasury, testOpts, nil)

	require.NoError(t, wf.Begin(withdrawal(models.WithdrawalAwaitingReview), ActionRelease, nil))

	// A second Begin while one decision is pending is rejected.
	other := withdrawal(models.WithdrawalAwaitingReview)
	other.ID = "wd_43"
	require.Error(t, wf.Begin(other, ActionCancel, nil))

	require.True(t, wf.Confirm())
	assert.False(t, wf.Confirm(), "no double-submit")
	assert.False(t, wf.Cancel(), "cannot abort an in-flight call")

	close(block)
	require.Eventually(t, func() bool { return wf.State() == StateSucceeded }, waitFor, tick)
}
