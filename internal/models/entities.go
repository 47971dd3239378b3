package models

import (
	"github.com/shopspring/decimal"
)

type Deposit struct {
	ID           string          `json:"id" validate:"required"`
	UserID       string          `json:"user_id" validate:"required"`
	Chain        Chain           `json:"chain" validate:"required"`
	CurrencyCode string          `json:"currency_code" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	AmountUsd    decimal.Decimal `json:"amount_usd"`
	FromAddress  string          `json:"from_address"`
	ToAddress    string          `json:"to_address" validate:"required"`
	TxHash       string          `json:"tx_hash" validate:"required"`
	Status       string          `json:"status" validate:"required"`
	CreatedAt    int64           `json:"created_at" validate:"required"`
}

func (d Deposit) EntityID() string { return d.ID }

type Transaction struct {
	ID           string          `json:"id" validate:"required"`
	Chain        Chain           `json:"chain" validate:"required"`
	CurrencyCode string          `json:"currency_code" validate:"required"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	FeeNative    decimal.Decimal `json:"fee_native"`
	Direction    string          `json:"direction" validate:"required"`
	FromAddress  string          `json:"from_address"`
	ToAddress    string          `json:"to_address"`
	TxHash       string          `json:"tx_hash" validate:"required"`
	Status       string          `json:"status" validate:"required"`
	CreatedAt    int64           `json:"created_at" validate:"required"`
}

func (t Transaction) EntityID() string { return t.ID }

type WalletKind string

const (
	WalletHot  WalletKind = "hot"
	WalletCold WalletKind = "cold"
	WalletUser WalletKind = "user"
)

type Wallet struct {
	ID           string          `json:"id" validate:"required"`
	Kind         WalletKind      `json:"kind" validate:"required"`
	UserID       string          `json:"user_id,omitempty"`
	Chain        Chain           `json:"chain" validate:"required"`
	CurrencyCode string          `json:"currency_code" validate:"required"`
	Address      string          `json:"address" validate:"required"`
	Balance      decimal.Decimal `json:"balance"`
	BalanceUsd   decimal.Decimal `json:"balance_usd"`
	CreatedAt    int64           `json:"created_at"`
}

func (w Wallet) EntityID() string { return w.ID }

// DepositEvent is one blockchain ingestion event observed by the deposit
// watcher, before it is credited as a Deposit.
type DepositEvent struct {
	ID           string          `json:"id" validate:"required"`
	Chain        Chain           `json:"chain" validate:"required"`
	CurrencyCode string          `json:"currency_code" validate:"required"`
	Amount       decimal.Decimal `json:"amount"`
	Address      string          `json:"address" validate:"required"`
	TxHash       string          `json:"tx_hash" validate:"required"`
	BlockNumber  int64           `json:"block_number"`
	Processed    bool            `json:"processed"`
	FailureCount int             `json:"failure_count"`
	LastError    string          `json:"last_error,omitempty"`
	CreatedAt    int64           `json:"created_at" validate:"required"`
}

func (e DepositEvent) EntityID() string { return e.ID }

type Webhook struct {
	ID          string `json:"id" validate:"required"`
	URL         string `json:"url" validate:"required"`
	EventScope  string `json:"event_scope" validate:"required"`
	Enabled     bool   `json:"enabled"`
	LastStatus  int    `json:"last_status,omitempty"`
	LastFiredAt int64  `json:"last_fired_at,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func (w Webhook) EntityID() string { return w.ID }

type DepositListResponse = APIResponse[ListResult[Deposit]]
type TransactionListResponse = APIResponse[ListResult[Transaction]]
type WalletListResponse = APIResponse[ListResult[Wallet]]
type DepositEventListResponse = APIResponse[ListResult[DepositEvent]]
type WebhookListResponse = APIResponse[ListResult[Webhook]]
