package workflow

import (
	"sync"
	"time"

	"github.com/custodia/ops-console/internal/logger"
)

// ConfirmFlow is the degenerate workflow shared by every action that needs no
// fee estimation: confirm, execute once, settle. Withdrawal review,
// deposit-event retry and webhook actions are all built on it.
//
// Idle → Confirming → Executing → Succeeded | Failed
type ConfirmFlow struct {
	mu       sync.Mutex
	opts     Options
	onChange func()

	state     State
	label     string
	action    func() error
	onSuccess func()
	errMsg    string
	reason    string

	closeTimer *time.Timer
}

// NewConfirmFlow creates an idle flow. onChange is a wake-up signal; consumers
// pull state through the accessors.
func NewConfirmFlow(opts Options, onChange func()) *ConfirmFlow {
	if onChange == nil {
		onChange = func() {}
	}
	return &ConfirmFlow{
		opts:     opts.withDefaults(),
		state:    StateIdle,
		onChange: onChange,
	}
}

// Begin opens the confirmation step for one action. label is the operator-
// facing description rendered in the modal; onSuccess fires once after the
// backend accepts, before the auto-close delay.
func (f *ConfirmFlow) Begin(label string, action func() error, onSuccess func()) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateIdle {
		return false
	}
	f.state = StateConfirming
	f.label = label
	f.action = action
	f.onSuccess = onSuccess
	f.errMsg = ""
	f.reason = ""
	f.notifyLocked()
	return true
}

// Confirm executes the pending action. Only valid from Confirming; the guard
// also prevents double-submit while a call is in flight.
func (f *ConfirmFlow) Confirm() bool {
	f.mu.Lock()
	if f.state != StateConfirming {
		f.mu.Unlock()
		return false
	}
	f.state = StateExecuting
	action := f.action
	f.notifyLocked()
	f.mu.Unlock()

	go func() {
		err := action()

		f.mu.Lock()
		defer f.mu.Unlock()

		if f.state != StateExecuting {
			return
		}
		if err != nil {
			logger.Error("Action %q failed: %v", f.label, err)
			f.state = StateFailed
			f.errMsg = err.Error()
			f.reason = reasonOf(err)
			f.notifyLocked()
			return
		}

		f.state = StateSucceeded
		if f.onSuccess != nil {
			f.onSuccess()
		}
		f.notifyLocked()
		f.scheduleAutoCloseLocked()
	}()
	return true
}

// Retry re-enters Confirming after a failure.
func (f *ConfirmFlow) Retry() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != StateFailed {
		return false
	}
	f.state = StateConfirming
	f.errMsg = ""
	f.reason = ""
	f.notifyLocked()
	return true
}

// Cancel discards the pending action. Not possible while Executing: the
// in-flight call cannot be aborted safely once sent.
func (f *ConfirmFlow) Cancel() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state == StateExecuting {
		return false
	}
	f.resetLocked()
	f.notifyLocked()
	return true
}

func (f *ConfirmFlow) scheduleAutoCloseLocked() {
	f.closeTimer = time.AfterFunc(f.opts.SuccessAutoClose, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.state != StateSucceeded {
			return
		}
		f.resetLocked()
		f.notifyLocked()
	})
}

func (f *ConfirmFlow) resetLocked() {
	if f.closeTimer != nil {
		f.closeTimer.Stop()
		f.closeTimer = nil
	}
	f.state = StateIdle
	f.label = ""
	f.action = nil
	f.onSuccess = nil
	f.errMsg = ""
	f.reason = ""
}

// State returns the current phase.
func (f *ConfirmFlow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Label returns the operator-facing description of the pending action.
func (f *ConfirmFlow) Label() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.label
}

// Err returns the failure message and reason code, if any.
func (f *ConfirmFlow) Err() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errMsg, f.reason
}

func (f *ConfirmFlow) notifyLocked() {
	go f.onChange()
}
