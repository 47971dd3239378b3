// Package workflow drives the console's irreversible financial actions
// through mandatory validation and human confirmation. Every workflow is an
// explicit state machine; there are no backward edges except user cancel and
// retry-after-failure, which removes impossible flag combinations by
// construction.
package workflow

import (
	"errors"
	"time"

	"github.com/custodia/ops-console/internal/client"
)

// State is the phase of one workflow run.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateReady      State = "ready"
	StateConfirming State = "confirming"
	StateExecuting  State = "executing"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
)

// Options tunes the workflow timers. Zero values fall back to defaults.
type Options struct {
	EstimateDebounce time.Duration
	SuccessAutoClose time.Duration
}

const (
	defaultEstimateDebounce = 500 * time.Millisecond
	defaultSuccessAutoClose = 1500 * time.Millisecond
)

func (o Options) withDefaults() Options {
	if o.EstimateDebounce <= 0 {
		o.EstimateDebounce = defaultEstimateDebounce
	}
	if o.SuccessAutoClose <= 0 {
		o.SuccessAutoClose = defaultSuccessAutoClose
	}
	return o
}

// reasonOf extracts the machine-checkable reason code from a backend error,
// if it carries one.
func reasonOf(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Reason
	}
	return ""
}
