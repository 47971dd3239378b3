package models

import (
	"github.com/shopspring/decimal"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainPolygon  Chain = "polygon"
	ChainTron     Chain = "tron"
	ChainSolana   Chain = "solana"
	ChainBitcoin  Chain = "bitcoin"
)

// IsSolana reports whether the chain uses the Solana account model, which is
// the only chain with a rent-exempt reserve and the only one allowed in batch
// sweep mode.
func (c Chain) IsSolana() bool {
	return c == ChainSolana
}

type TransferDirection string

const (
	DirectionUserToHot TransferDirection = "user_to_hot"
	DirectionHotToCold TransferDirection = "hot_to_cold"
)

// TransferIntent is the ephemeral input of one fund movement. It exists only
// for the duration of one workflow run and is never persisted client-side.
type TransferIntent struct {
	SourceAddress string            `json:"source_address" validate:"required"`
	Chain         Chain             `json:"chain" validate:"required"`
	CurrencyCode  string            `json:"currency_code" validate:"required"`
	Amount        decimal.Decimal   `json:"amount" validate:"required"`
	Direction     TransferDirection `json:"direction" validate:"required"`
}

// Complete reports whether every field needed for estimation is present.
func (i TransferIntent) Complete() bool {
	return i.SourceAddress != "" && i.Chain != "" && i.CurrencyCode != "" &&
		i.Amount.IsPositive() && i.Direction != ""
}

// BatchTransferItem is one address/amount pair of a batch sweep.
type BatchTransferItem struct {
	Address string          `json:"address" validate:"required"`
	Amount  decimal.Decimal `json:"amount" validate:"required"`
}

type Balance struct {
	Amount   decimal.Decimal `json:"amount" validate:"required"`
	Reserved decimal.Decimal `json:"reserved"`
}

// Available is the spendable part of the balance.
func (b Balance) Available() decimal.Decimal {
	return b.Amount.Sub(b.Reserved)
}

// FeeEstimate is a function of one TransferIntent snapshot. It must be
// recomputed, never reused, when any intent field changes.
type FeeEstimate struct {
	FeeNative         decimal.Decimal `json:"fee_native" validate:"required"`
	FeeUsd            decimal.Decimal `json:"fee_usd"`
	RentExemptReserve decimal.Decimal `json:"rent_exempt_reserve,omitempty"`
	TotalAmount       decimal.Decimal `json:"total_amount" validate:"required"`
	TotalUsd          decimal.Decimal `json:"total_usd"`
	MaxTransferable   decimal.Decimal `json:"max_transferable"`
}

// TransferValidation is derived jointly from a FeeEstimate and the wallet's
// current balance, and goes stale under the same rule as the estimate.
type TransferValidation struct {
	IsValid          bool            `json:"is_valid"`
	CanTransfer      bool            `json:"can_transfer"`
	AvailableBalance decimal.Decimal `json:"available_balance"`
	RequiredTotal    decimal.Decimal `json:"required_total"`
	ErrorMessage     string          `json:"error_message,omitempty"`
}

type BalanceResponse = APIResponse[Balance]
type FeeEstimateResponse = APIResponse[FeeEstimate]
type TransferValidationResponse = APIResponse[TransferValidation]
