package workflow

import (
	"fmt"

	"github.com/custodia/ops-console/internal/models"
)

// ReviewAction is the operator's decision on a held withdrawal.
type ReviewAction string

const (
	ActionRelease ReviewAction = "release"
	ActionCancel  ReviewAction = "cancel"
)

// ReviewAPI is the slice of the treasury contract withdrawal review needs.
type ReviewAPI interface {
	ReleaseWithdrawal(id string) error
	CancelWithdrawal(id string) error
}

// ReviewWorkflow gates withdrawal release/cancel on the withdrawal being held
// for admin review, then runs the shared confirm flow. Terminal withdrawals
// never enter the flow, so no action is ever offered for them.
type ReviewWorkflow struct {
	*ConfirmFlow
	treasury ReviewAPI
}

// NewReviewWorkflow creates an idle review workflow.
func NewReviewWorkflow(treasury ReviewAPI, opts Options, onChange func()) *ReviewWorkflow {
	return &ReviewWorkflow{
		ConfirmFlow: NewConfirmFlow(opts, onChange),
		treasury:    treasury,
	}
}

// Begin opens confirmation for one decision. onDecided fires after the backend
// accepts, with the status the row should optimistically show.
func (w *ReviewWorkflow) Begin(withdrawal models.Withdrawal, action ReviewAction, onDecided func(id string, status models.WithdrawalStatus)) error {
	if withdrawal.Status.IsTerminal() {
		return fmt.Errorf("withdrawal %s is %s; no action possible", withdrawal.ID, withdrawal.Status)
	}
	if !withdrawal.CanReview() {
		return fmt.Errorf("withdrawal %s is not awaiting admin review (status %s)", withdrawal.ID, withdrawal.Status)
	}

	var label string
	var call func() error
	var next models.WithdrawalStatus

	switch action {
	case ActionRelease:
		label = fmt.Sprintf("Release withdrawal %s (%s %s)", withdrawal.ID, withdrawal.Amount, withdrawal.CurrencyCode)
		call = func() error { return w.treasury.ReleaseWithdrawal(withdrawal.ID) }
		next = models.WithdrawalCompleted
	case ActionCancel:
		label = fmt.Sprintf("Cancel withdrawal %s (%s %s)", withdrawal.ID, withdrawal.Amount, withdrawal.CurrencyCode)
		call = func() error { return w.treasury.CancelWithdrawal(withdrawal.ID) }
		next = models.WithdrawalCancelled
	default:
		return fmt.Errorf("unknown review action %q", action)
	}

	if !w.ConfirmFlow.Begin(label, call, func() {
		if onDecided != nil {
			onDecided(withdrawal.ID, next)
		}
	}) {
		return fmt.Errorf("another action is already in progress")
	}
	return nil
}
