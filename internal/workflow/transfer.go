package workflow

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/models"
)

// TransferAPI is the slice of the treasury contract a single transfer needs.
type TransferAPI interface {
	EstimateFee(intent models.TransferIntent) (*models.FeeEstimate, error)
	ValidateTransfer(intent models.TransferIntent) (*models.TransferValidation, error)
	TransferToHot(intent models.TransferIntent) error
	TransferToCold(intent models.TransferIntent) error
}

// TransferSnapshot is the render state of one transfer run.
type TransferSnapshot struct {
	State      State
	Intent     models.TransferIntent
	Estimate   *models.FeeEstimate
	Validation *models.TransferValidation
	InFlight   bool
	Err        string
	Reason     string
}

// CanExecute reports whether the execute control may be enabled: never while
// an estimate is in flight, and only when validation allowed the transfer.
func (s TransferSnapshot) CanExecute() bool {
	return !s.InFlight && s.Validation != nil && s.Validation.CanTransfer &&
		(s.State == StateReady || s.State == StateConfirming)
}

// TransferWorkflow drives one fund movement through
// Idle → Validating → Ready → Confirming → Executing → Succeeded | Failed.
// Estimation and validation run concurrently for each intent snapshot; a
// response is applied only if its snapshot is still current, so a slow early
// response can never overwrite a newer one.
type TransferWorkflow struct {
	mu       sync.Mutex
	treasury TransferAPI
	opts     Options
	onChange func()

	state      State
	intent     models.TransferIntent
	snapshotID uuid.UUID
	estimate   *models.FeeEstimate
	validation *models.TransferValidation
	inFlight   int
	errMsg     string
	reason     string

	debounce   *time.Timer
	closeTimer *time.Timer
	onSuccess  func(intent models.TransferIntent)
}

// NewTransferWorkflow creates an idle workflow. onSuccess fires once per
// successful execution so the owning list can patch or refresh its rows.
func NewTransferWorkflow(treasury TransferAPI, opts Options, onChange func(), onSuccess func(models.TransferIntent)) *TransferWorkflow {
	if onChange == nil {
		onChange = func() {}
	}
	return &TransferWorkflow{
		treasury:  treasury,
		opts:      opts.withDefaults(),
		onChange:  onChange,
		onSuccess: onSuccess,
		state:     StateIdle,
	}
}

// SetIntent replaces the intent with a new snapshot. A complete intent enters
// Validating and schedules debounced estimation; an incomplete one returns to
// Idle. Any in-flight estimate for the previous snapshot becomes stale.
func (w *TransferWorkflow) SetIntent(intent models.TransferIntent) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateExecuting {
		return
	}

	w.intent = intent
	w.snapshotID = uuid.New()
	w.estimate = nil
	w.validation = nil
	w.errMsg = ""
	w.reason = ""

	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}

	if !intent.Complete() {
		w.state = StateIdle
		w.inFlight = 0
		w.notifyLocked()
		return
	}

	w.state = StateValidating
	w.inFlight = 1
	snapID := w.snapshotID
	snap := intent
	w.debounce = time.AfterFunc(w.opts.EstimateDebounce, func() {
		w.runEstimation(snapID, snap)
	})
	w.notifyLocked()
}

// runEstimation requests the fee estimate and the validation concurrently for
// one intent snapshot.
func (w *TransferWorkflow) runEstimation(snapID uuid.UUID, intent models.TransferIntent) {
	w.mu.Lock()
	if snapID != w.snapshotID {
		w.mu.Unlock()
		return
	}
	w.inFlight = 2
	w.notifyLocked()
	w.mu.Unlock()

	go func() {
		estimate, err := w.treasury.EstimateFee(intent)
		w.applyEstimate(snapID, estimate, err)
	}()
	go func() {
		validation, err := w.treasury.ValidateTransfer(intent)
		w.applyValidation(snapID, validation, err)
	}()
}

func (w *TransferWorkflow) applyEstimate(snapID uuid.UUID, estimate *models.FeeEstimate, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if snapID != w.snapshotID {
		logger.Debug("Discarding fee estimate for stale intent snapshot %s", snapID)
		return
	}
	w.inFlight--
	if err != nil {
		w.errMsg = err.Error()
		w.reason = reasonOf(err)
	} else {
		w.estimate = estimate
	}
	w.settleValidationLocked()
}

func (w *TransferWorkflow) applyValidation(snapID uuid.UUID, validation *models.TransferValidation, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if snapID != w.snapshotID {
		logger.Debug("Discarding validation for stale intent snapshot %s", snapID)
		return
	}
	w.inFlight--
	if err != nil {
		w.errMsg = err.Error()
		w.reason = reasonOf(err)
	} else {
		w.validation = validation
	}
	w.settleValidationLocked()
}

// settleValidationLocked promotes Validating to Ready once both responses are
// in and the backend allowed the transfer. Otherwise the workflow stays in
// Validating with the error shown, blocking progression.
func (w *TransferWorkflow) settleValidationLocked() {
	if w.state != StateValidating || w.inFlight > 0 {
		w.notifyLocked()
		return
	}
	if w.estimate != nil && w.validation != nil && w.validation.CanTransfer {
		w.state = StateReady
	} else if w.validation != nil && !w.validation.CanTransfer && w.errMsg == "" {
		w.errMsg = w.validation.ErrorMessage
	}
	w.notifyLocked()
}

// Confirm opens the confirmation step. Only valid from Ready.
func (w *TransferWorkflow) Confirm() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateReady {
		return false
	}
	w.state = StateConfirming
	w.notifyLocked()
	return true
}

// Execute submits the transfer. Only valid from Confirming with a passing
// validation; the state change to Executing doubles as the double-submit
// guard.
func (w *TransferWorkflow) Execute() bool {
	w.mu.Lock()
	if w.state != StateConfirming || w.inFlight > 0 ||
		w.validation == nil || !w.validation.CanTransfer {
		w.mu.Unlock()
		return false
	}
	w.state = StateExecuting
	intent := w.intent
	w.notifyLocked()
	w.mu.Unlock()

	go func() {
		var err error
		switch intent.Direction {
		case models.DirectionHotToCold:
			err = w.treasury.TransferToCold(intent)
		default:
			err = w.treasury.TransferToHot(intent)
		}

		w.mu.Lock()
		defer w.mu.Unlock()

		if w.state != StateExecuting {
			return
		}
		if err != nil {
			logger.Error("Transfer failed for %s: %v", intent.SourceAddress, err)
			w.state = StateFailed
			w.errMsg = err.Error()
			w.reason = reasonOf(err)
			w.notifyLocked()
			return
		}

		w.state = StateSucceeded
		if w.onSuccess != nil {
			w.onSuccess(intent)
		}
		w.notifyLocked()
		w.closeTimer = time.AfterFunc(w.opts.SuccessAutoClose, func() {
			w.mu.Lock()
			defer w.mu.Unlock()
			if w.state != StateSucceeded {
				return
			}
			w.resetLocked()
			w.notifyLocked()
		})
	}()
	return true
}

// Retry re-enters Confirming after a failed execution.
func (w *TransferWorkflow) Retry() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != StateFailed {
		return false
	}
	w.state = StateConfirming
	w.errMsg = ""
	w.reason = ""
	w.notifyLocked()
	return true
}

// Cancel discards the intent and returns to Idle. Not possible while
// Executing: the in-flight call cannot be aborted safely once sent.
func (w *TransferWorkflow) Cancel() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateExecuting {
		return false
	}
	w.resetLocked()
	w.notifyLocked()
	return true
}

func (w *TransferWorkflow) resetLocked() {
	if w.debounce != nil {
		w.debounce.Stop()
		w.debounce = nil
	}
	if w.closeTimer != nil {
		w.closeTimer.Stop()
		w.closeTimer = nil
	}
	w.state = StateIdle
	w.intent = models.TransferIntent{}
	w.snapshotID = uuid.Nil
	w.estimate = nil
	w.validation = nil
	w.inFlight = 0
	w.errMsg = ""
	w.reason = ""
}

// Snapshot returns the current render state.
func (w *TransferWorkflow) Snapshot() TransferSnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	return TransferSnapshot{
		State:      w.state,
		Intent:     w.intent,
		Estimate:   w.estimate,
		Validation: w.validation,
		InFlight:   w.inFlight > 0,
		Err:        w.errMsg,
		Reason:     w.reason,
	}
}

func (w *TransferWorkflow) notifyLocked() {
	go w.onChange()
}
