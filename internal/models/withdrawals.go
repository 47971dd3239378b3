package models

import (
	"github.com/shopspring/decimal"
)

type WithdrawalStatus string

const (
	WithdrawalPending        WithdrawalStatus = "pending"
	WithdrawalProcessing     WithdrawalStatus = "processing"
	WithdrawalAwaitingReview WithdrawalStatus = "awaiting_admin_review"
	WithdrawalCompleted      WithdrawalStatus = "completed"
	WithdrawalFailed         WithdrawalStatus = "failed"
	WithdrawalCancelled      WithdrawalStatus = "cancelled"
)

// IsTerminal reports whether no further action may ever be offered for a
// withdrawal in this status.
func (s WithdrawalStatus) IsTerminal() bool {
	return s == WithdrawalCompleted || s == WithdrawalCancelled
}

type Withdrawal struct {
	ID                  string           `json:"id" validate:"required"`
	UserID              string           `json:"user_id" validate:"required"`
	Chain               Chain            `json:"chain" validate:"required"`
	CurrencyCode        string           `json:"currency_code" validate:"required"`
	Amount              decimal.Decimal  `json:"amount" validate:"required"`
	AmountUsd           decimal.Decimal  `json:"amount_usd"`
	ToAddress           string           `json:"to_address" validate:"required"`
	TxHash              string           `json:"tx_hash,omitempty"`
	Status              WithdrawalStatus `json:"status" validate:"required"`
	RequiresAdminReview bool             `json:"requires_admin_review"`
	AdminReviewReason   string           `json:"admin_review_reason,omitempty"`
	CreatedAt           int64            `json:"created_at" validate:"required"`
	UpdatedAt           int64            `json:"updated_at"`
}

func (w Withdrawal) EntityID() string { return w.ID }

// CanReview reports whether release/cancel may be offered to the operator.
func (w Withdrawal) CanReview() bool {
	return !w.Status.IsTerminal() && w.Status == WithdrawalAwaitingReview
}

// reviewReasonLabels maps the reason codes the backend is known to emit to
// operator-facing labels. The backend's set can grow independently, so this
// is a display hint only: unknown codes are rendered verbatim, never rejected.
var reviewReasonLabels = map[string]string{
	"amount_threshold": "Amount above auto-release threshold",
	"kyc_required":     "KYC verification required",
	"velocity_limit":   "Withdrawal velocity limit reached",
	"new_address":      "First withdrawal to a new address",
	"manual_flag":      "Manually flagged by risk",
	"sanctions_screen": "Address failed sanctions screening",
}

// ReviewReasonLabel returns the display label for an admin review reason code.
func ReviewReasonLabel(reason string) string {
	if label, ok := reviewReasonLabels[reason]; ok {
		return label
	}
	return reason
}

type WithdrawalListResponse = APIResponse[ListResult[Withdrawal]]
