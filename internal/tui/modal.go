package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/nav"
	"github.com/custodia/ops-console/internal/workflow"
)

var modalStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).
	BorderForeground(lipgloss.Color("205")).Padding(1, 2)

// selectedWithdrawal returns the withdrawal under the cursor, if any.
func (m *Model) selectedWithdrawal() (models.Withdrawal, bool) {
	snap := m.withdrawals.Snapshot()
	cursor := m.rows.Cursor()
	if snap.Result == nil || cursor < 0 || cursor >= len(snap.Result.Items) {
		return models.Withdrawal{}, false
	}
	return snap.Result.Items[cursor], true
}

func (m *Model) selectedWallet() (models.Wallet, bool) {
	snap := m.wallets.Snapshot()
	cursor := m.rows.Cursor()
	if snap.Result == nil || cursor < 0 || cursor >= len(snap.Result.Items) {
		return models.Wallet{}, false
	}
	return snap.Result.Items[cursor], true
}

func (m *Model) selectedEvent() (models.DepositEvent, bool) {
	snap := m.events.Snapshot()
	cursor := m.rows.Cursor()
	if snap.Result == nil || cursor < 0 || cursor >= len(snap.Result.Items) {
		return models.DepositEvent{}, false
	}
	return snap.Result.Items[cursor], true
}

func (m *Model) selectedWebhook() (models.Webhook, bool) {
	snap := m.webhooks.Snapshot()
	cursor := m.rows.Cursor()
	if snap.Result == nil || cursor < 0 || cursor >= len(snap.Result.Items) {
		return models.Webhook{}, false
	}
	return snap.Result.Items[cursor], true
}

// openPrimaryAction starts the row's main workflow: release a held
// withdrawal, transfer out of a wallet, retry a deposit event, toggle a
// webhook.
func (m *Model) openPrimaryAction() {
	switch m.active {
	case nav.TabWithdrawals:
		m.openReview(workflow.ActionRelease)

	case nav.TabWallets:
		wallet, ok := m.selectedWallet()
		if !ok || wallet.Kind == models.WalletCold {
			return
		}
		m.openTransfer(wallet)

	case nav.TabDepositEvents:
		event, ok := m.selectedEvent()
		if !ok {
			return
		}
		started := m.confirm.Begin(
			fmt.Sprintf("Retry deposit event %s (%s)", event.ID, event.TxHash),
			func() error { return m.backend.Events.RetryDepositEvent(event.ID) },
			func() { m.events.Refresh() },
		)
		if started {
			m.modal = modalConfirm
		}

	case nav.TabWebhooks:
		hook, ok := m.selectedWebhook()
		if !ok {
			return
		}
		verb := "Enable"
		if hook.Enabled {
			verb = "Disable"
		}
		next := !hook.Enabled
		started := m.confirm.Begin(
			fmt.Sprintf("%s webhook %s (%s)", verb, hook.ID, hook.URL),
			func() error {
				return m.backend.Events.UpdateWebhook(hook.ID, map[string]interface{}{"enabled": next})
			},
			func() {
				m.webhooks.PatchRow(hook.ID, func(w models.Webhook) models.Webhook {
					w.Enabled = next
					return w
				})
			},
		)
		if started {
			m.modal = modalConfirm
		}
	}
}

// openSecondaryAction is the row's alternative action: cancel a held
// withdrawal, or mark a deposit event processed by hand.
func (m *Model) openSecondaryAction() {
	switch m.active {
	case nav.TabWithdrawals:
		m.openReview(workflow.ActionCancel)

	case nav.TabDepositEvents:
		event, ok := m.selectedEvent()
		if !ok || event.Processed {
			return
		}
		started := m.confirm.Begin(
			fmt.Sprintf("Mark deposit event %s processed", event.ID),
			func() error {
				return m.backend.Events.UpdateDepositEvent(event.ID, map[string]interface{}{"processed": true})
			},
			func() {
				m.events.PatchRow(event.ID, func(e models.DepositEvent) models.DepositEvent {
					e.Processed = true
					return e
				})
			},
		)
		if started {
			m.modal = modalConfirm
		}
	}
}

// openScopedAction acts on the whole view: webhook resync.
func (m *Model) openScopedAction() {
	if m.active != nav.TabWebhooks {
		return
	}
	started := m.confirm.Begin(
		"Resync all webhook subscriptions",
		func() error { return m.backend.Events.SyncWebhooks("all") },
		func() { m.webhooks.Refresh() },
	)
	if started {
		m.modal = modalConfirm
	}
}

func (m *Model) openReview(action workflow.ReviewAction) {
	withdrawal, ok := m.selectedWithdrawal()
	if !ok {
		return
	}
	// Terminal withdrawals never offer an action.
	if !withdrawal.CanReview() {
		return
	}

	err := m.review.Begin(withdrawal, action, func(id string, status models.WithdrawalStatus) {
		// Optimistic patch; the next poll reconciles with server truth.
		m.withdrawals.PatchRow(id, func(w models.Withdrawal) models.Withdrawal {
			w.Status = status
			return w
		})
	})
	if err != nil {
		logger.Warn("Review not started: %v", err)
		return
	}
	m.modal = modalReview
}

func (m *Model) openTransfer(wallet models.Wallet) {
	direction := models.DirectionUserToHot
	if wallet.Kind == models.WalletHot {
		direction = models.DirectionHotToCold
	}

	m.amount.SetValue("")
	m.amount.Focus()
	m.transfer.SetIntent(models.TransferIntent{
		SourceAddress: wallet.Address,
		Chain:         wallet.Chain,
		CurrencyCode:  wallet.CurrencyCode,
		Direction:     direction,
	})
	m.modal = modalTransfer
}

// openBatchSweep sweeps every user wallet currently listed on the Solana
// filter into the hot wallet.
func (m *Model) openBatchSweep() {
	if m.active != nav.TabWallets {
		return
	}

	snap := m.wallets.Snapshot()
	if snap.Result == nil {
		return
	}

	var chain models.Chain
	var currency string
	var items []models.BatchTransferItem
	for _, w := range snap.Result.Items {
		if w.Kind != models.WalletUser || !w.Balance.IsPositive() {
			continue
		}
		if chain == "" {
			chain = w.Chain
			currency = w.CurrencyCode
		}
		if w.Chain != chain || w.CurrencyCode != currency {
			continue
		}
		items = append(items, models.BatchTransferItem{Address: w.Address, Amount: w.Balance})
	}

	if err := m.batch.Begin(chain, currency, items, func() { m.wallets.Refresh() }); err != nil {
		logger.Warn("Batch sweep not started: %v", err)
		return
	}
	m.modal = modalBatch
}

func (m *Model) handleModalKey(msg tea.KeyMsg) tea.Cmd {
	switch m.modal {
	case modalReview:
		m.handleConfirmKey(msg, m.review.ConfirmFlow)
	case modalConfirm:
		m.handleConfirmKey(msg, m.confirm)
	case modalBatch:
		m.handleConfirmKey(msg, m.batch.ConfirmFlow)
	case modalTransfer:
		return m.handleTransferKey(msg)
	}
	return nil
}

func (m *Model) handleConfirmKey(msg tea.KeyMsg, flow *workflow.ConfirmFlow) {
	switch msg.String() {
	case "y", "enter":
		flow.Confirm()
	case "r":
		flow.Retry()
	case "esc", "n":
		if flow.Cancel() {
			m.modal = modalNone
		}
	}
}

func (m *Model) handleTransferKey(msg tea.KeyMsg) tea.Cmd {
	snap := m.transfer.Snapshot()

	switch msg.String() {
	case "esc":
		if m.transfer.Cancel() {
			m.amount.Blur()
			m.modal = modalNone
		}
		return nil

	case "enter":
		switch snap.State {
		case workflow.StateReady:
			m.transfer.Confirm()
		case workflow.StateConfirming:
			m.transfer.Execute()
		case workflow.StateFailed:
			m.transfer.Retry()
		}
		return nil

	case "y":
		if snap.State == workflow.StateConfirming {
			m.transfer.Execute()
			return nil
		}
	}

	// Everything else edits the amount. Each edit produces a new intent
	// snapshot; the workflow debounces estimation internally.
	var cmd tea.Cmd
	m.amount, cmd = m.amount.Update(msg)

	intent := snap.Intent
	intent.Amount = decimal.Zero
	if value := strings.TrimSpace(m.amount.Value()); value != "" {
		if parsed, err := decimal.NewFromString(value); err == nil {
			intent.Amount = parsed
		}
	}
	m.transfer.SetIntent(intent)
	return cmd
}

func (m *Model) modalView() string {
	switch m.modal {
	case modalReview:
		return modalStyle.Render(m.confirmView(m.review.ConfirmFlow))
	case modalConfirm:
		return modalStyle.Render(m.confirmView(m.confirm))
	case modalBatch:
		return modalStyle.Render(m.confirmView(m.batch.ConfirmFlow))
	case modalTransfer:
		return modalStyle.Render(m.transferView())
	}
	return ""
}

func (m *Model) confirmView(flow *workflow.ConfirmFlow) string {
	var s strings.Builder
	s.WriteString(flow.Label())
	s.WriteString("\n\n")

	switch flow.State() {
	case workflow.StateConfirming:
		s.WriteString("Confirm? (y/enter confirm, esc cancel)")
	case workflow.StateExecuting:
		s.WriteString(m.spinner.View() + " Executing…")
	case workflow.StateSucceeded:
		s.WriteString("✅ Done")
	case workflow.StateFailed:
		errMsg, reason := flow.Err()
		s.WriteString(bannerStyle.Render("❌ " + errMsg))
		if reason != "" {
			s.WriteString("\n" + faintStyle.Render("reason: "+reason))
		}
		s.WriteString("\n\n(r retry, esc cancel)")
	}
	return s.String()
}

func (m *Model) transferView() string {
	snap := m.transfer.Snapshot()
	var s strings.Builder

	title := "Transfer to hot wallet"
	if snap.Intent.Direction == models.DirectionHotToCold {
		title = "Transfer to cold storage"
	}
	s.WriteString(titleStyle.Render(title))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("From:     %s (%s)\n", shortAddr(snap.Intent.SourceAddress), snap.Intent.Chain))
	s.WriteString(fmt.Sprintf("Currency: %s\n", snap.Intent.CurrencyCode))
	s.WriteString("Amount:   " + m.amount.View() + "\n\n")

	if snap.InFlight {
		s.WriteString(m.spinner.View() + " Estimating fees…\n")
	}

	if est := snap.Estimate; est != nil {
		s.WriteString(fmt.Sprintf("Fee:      %s (%s USD)\n", est.FeeNative, est.FeeUsd.StringFixed(2)))
		if est.RentExemptReserve.IsPositive() {
			s.WriteString(fmt.Sprintf("Reserve:  %s\n", est.RentExemptReserve))
		}
		s.WriteString(fmt.Sprintf("Total:    %s (%s USD)\n", est.TotalAmount, est.TotalUsd.StringFixed(2)))
		s.WriteString(fmt.Sprintf("Max:      %s\n", est.MaxTransferable))
	}
	if val := snap.Validation; val != nil {
		s.WriteString(fmt.Sprintf("Balance:  %s\n", val.AvailableBalance))
		if !val.CanTransfer && val.ErrorMessage != "" {
			s.WriteString(bannerStyle.Render("⚠ "+val.ErrorMessage) + "\n")
		}
	}
	s.WriteString("\n")

	switch snap.State {
	case workflow.StateValidating:
		s.WriteString(faintStyle.Render("validating…"))
	case workflow.StateReady:
		s.WriteString("Ready. (enter review, esc cancel)")
	case workflow.StateConfirming:
		s.WriteString("Submit this transfer? (y/enter submit, esc cancel)")
	case workflow.StateExecuting:
		s.WriteString(m.spinner.View() + " Submitting…")
	case workflow.StateSucceeded:
		s.WriteString("✅ Transfer submitted")
	case workflow.StateFailed:
		s.WriteString(bannerStyle.Render("❌ " + snap.Err))
		if snap.Reason != "" {
			s.WriteString("\n" + faintStyle.Render("reason: "+snap.Reason))
		}
		s.WriteString("\n(enter retry, esc cancel)")
	}

	return s.String()
}
