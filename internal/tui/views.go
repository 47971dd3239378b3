package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia/ops-console/internal/listctrl"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/nav"
	"github.com/custodia/ops-console/internal/query"
	"github.com/custodia/ops-console/internal/workflow"
)

// tabView is the untyped surface the root model needs from the active tab's
// controller: query/pagination plumbing plus renderable rows. Each entity kind
// supplies a small adapter instead of its own controller implementation.
type tabView interface {
	Query() query.ListQuery
	SetQuery(q query.ListQuery)
	SetPage(n int)
	SetPageSize(n int)
	SetSearch(term string)
	Refresh()
	DismissError()
	Columns() []table.Column
	Rows() []table.Row
	Loading() bool
	Err() string
	TotalCount() int
	Aggregates() map[string]float64
}

type listView[T models.Entity] struct {
	ctrl  *listctrl.Controller[T]
	cols  []table.Column
	rowFn func(T) table.Row
}

func adapt[T models.Entity](ctrl *listctrl.Controller[T], cols []table.Column, rowFn func(T) table.Row) tabView {
	return &listView[T]{ctrl: ctrl, cols: cols, rowFn: rowFn}
}

func (v *listView[T]) Query() query.ListQuery     { return v.ctrl.Query() }
func (v *listView[T]) SetQuery(q query.ListQuery) { v.ctrl.SetQuery(q) }
func (v *listView[T]) SetPage(n int)              { v.ctrl.SetPage(n) }
func (v *listView[T]) SetPageSize(n int)          { v.ctrl.SetPageSize(n) }
func (v *listView[T]) SetSearch(term string)      { v.ctrl.SetSearchTerm(term) }
func (v *listView[T]) Refresh()                   { v.ctrl.Refresh() }
func (v *listView[T]) DismissError()              { v.ctrl.DismissError() }
func (v *listView[T]) Columns() []table.Column    { return v.cols }

func (v *listView[T]) Rows() []table.Row {
	snap := v.ctrl.Snapshot()
	if snap.Result == nil {
		return nil
	}
	rows := make([]table.Row, 0, len(snap.Result.Items))
	for _, item := range snap.Result.Items {
		rows = append(rows, v.rowFn(item))
	}
	return rows
}

func (v *listView[T]) Loading() bool { return v.ctrl.Snapshot().Loading }
func (v *listView[T]) Err() string   { return v.ctrl.Snapshot().Err }

func (v *listView[T]) TotalCount() int {
	snap := v.ctrl.Snapshot()
	if snap.Result == nil {
		return 0
	}
	return snap.Result.TotalCount
}

func (v *listView[T]) Aggregates() map[string]float64 {
	snap := v.ctrl.Snapshot()
	if snap.Result == nil {
		return nil
	}
	return snap.Result.Aggregates
}

func formatTime(ts int64) string {
	if ts == 0 {
		return "-"
	}
	return time.Unix(ts, 0).Format("01-02 15:04")
}

func shortAddr(addr string) string {
	if len(addr) <= 12 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func (m *Model) activeView() tabView {
	switch m.active {
	case nav.TabWithdrawals:
		return adapt(m.withdrawals,
			[]table.Column{
				{Title: "ID", Width: 10}, {Title: "User", Width: 10},
				{Title: "Amount", Width: 14}, {Title: "Currency", Width: 8},
				{Title: "To", Width: 14}, {Title: "Status", Width: 22},
				{Title: "Created", Width: 12},
			},
			func(w models.Withdrawal) table.Row {
				status := string(w.Status)
				if w.Status == models.WithdrawalAwaitingReview && w.AdminReviewReason != "" {
					status = fmt.Sprintf("%s (%s)", w.Status, models.ReviewReasonLabel(w.AdminReviewReason))
				}
				return table.Row{w.ID, w.UserID, w.Amount.String(), w.CurrencyCode,
					shortAddr(w.ToAddress), status, formatTime(w.CreatedAt)}
			})
	case nav.TabTransactions:
		return adapt(m.transactions,
			[]table.Column{
				{Title: "ID", Width: 10}, {Title: "Chain", Width: 10},
				{Title: "Amount", Width: 14}, {Title: "Currency", Width: 8},
				{Title: "Dir", Width: 6}, {Title: "Tx", Width: 14},
				{Title: "Status", Width: 10}, {Title: "Created", Width: 12},
			},
			func(t models.Transaction) table.Row {
				return table.Row{t.ID, string(t.Chain), t.Amount.String(), t.CurrencyCode,
					t.Direction, shortAddr(t.TxHash), t.Status, formatTime(t.CreatedAt)}
			})
	case nav.TabWallets:
		return adapt(m.wallets,
			[]table.Column{
				{Title: "ID", Width: 10}, {Title: "Kind", Width: 6},
				{Title: "Chain", Width: 10}, {Title: "Currency", Width: 8},
				{Title: "Address", Width: 16}, {Title: "Balance", Width: 16},
				{Title: "USD", Width: 12},
			},
			func(w models.Wallet) table.Row {
				return table.Row{w.ID, string(w.Kind), string(w.Chain), w.CurrencyCode,
					shortAddr(w.Address), w.Balance.String(), w.BalanceUsd.StringFixed(2)}
			})
	case nav.TabDepositEvents:
		return adapt(m.events,
			[]table.Column{
				{Title: "ID", Width: 10}, {Title: "Chain", Width: 10},
				{Title: "Amount", Width: 14}, {Title: "Address", Width: 16},
				{Title: "Block", Width: 10}, {Title: "Processed", Width: 9},
				{Title: "Failures", Width: 8}, {Title: "Created", Width: 12},
			},
			func(e models.DepositEvent) table.Row {
				processed := "no"
				if e.Processed {
					processed = "yes"
				}
				return table.Row{e.ID, string(e.Chain), e.Amount.String(), shortAddr(e.Address),
					fmt.Sprintf("%d", e.BlockNumber), processed,
					fmt.Sprintf("%d", e.FailureCount), formatTime(e.CreatedAt)}
			})
	case nav.TabWebhooks:
		return adapt(m.webhooks,
			[]table.Column{
				{Title: "ID", Width: 10}, {Title: "URL", Width: 32},
				{Title: "Scope", Width: 14}, {Title: "Enabled", Width: 8},
				{Title: "Last", Width: 6}, {Title: "Fired", Width: 12},
			},
			func(w models.Webhook) table.Row {
				enabled := "no"
				if w.Enabled {
					enabled = "yes"
				}
				return table.Row{w.ID, w.URL, w.EventScope, enabled,
					fmt.Sprintf("%d", w.LastStatus), formatTime(w.LastFiredAt)}
			})
	default:
		return adapt(m.deposits,
			[]table.Column{
				{Title: "ID", Width: 10}, {Title: "User", Width: 10},
				{Title: "Amount", Width: 14}, {Title: "Currency", Width: 8},
				{Title: "From", Width: 14}, {Title: "Tx", Width: 14},
				{Title: "Status", Width: 10}, {Title: "Created", Width: 12},
			},
			func(d models.Deposit) table.Row {
				return table.Row{d.ID, d.UserID, d.Amount.String(), d.CurrencyCode,
					shortAddr(d.FromAddress), shortAddr(d.TxHash), d.Status, formatTime(d.CreatedAt)}
			})
	}
}

func (m *Model) activeQuery() query.ListQuery {
	return m.activeView().Query()
}

func (m *Model) setPage(n int) {
	if n < 1 {
		return
	}
	m.activeView().SetPage(n)
	m.replaceRoute()
}

func (m *Model) cyclePageSize(delta int) {
	current := m.activeQuery().PageSize
	idx := 0
	for i, size := range query.PageSizes {
		if size == current {
			idx = i
			break
		}
	}
	idx += delta
	if idx < 0 || idx >= len(query.PageSizes) {
		return
	}
	m.activeView().SetPageSize(query.PageSizes[idx])
	m.replaceRoute()
}

func (m *Model) setSearchTerm(term string) {
	m.activeView().SetSearch(term)
	m.replaceRoute()
}

func (m *Model) refreshActive() {
	m.activeView().Refresh()
}

func (m *Model) dismissActiveError() {
	m.activeView().DismissError()
}

// syncViews rebuilds the table and paginator from the active controller's
// snapshot and closes modals whose workflow settled back to Idle.
func (m *Model) syncViews() {
	view := m.activeView()

	m.rows.SetColumns(view.Columns())
	m.rows.SetRows(view.Rows())

	q := view.Query()
	total := view.TotalCount()
	m.pager.PerPage = q.PageSize
	m.pager.SetTotalPages(total)
	if q.Page-1 < m.pager.TotalPages {
		m.pager.Page = q.Page - 1
	}

	switch m.modal {
	case modalReview:
		if m.review.State() == workflow.StateIdle {
			m.modal = modalNone
		}
	case modalConfirm:
		if m.confirm.State() == workflow.StateIdle {
			m.modal = modalNone
		}
	case modalBatch:
		if m.batch.State() == workflow.StateIdle {
			m.modal = modalNone
		}
	case modalTransfer:
		if m.transfer.Snapshot().State == workflow.StateIdle {
			m.modal = modalNone
		}
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	tabStyle   = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("244"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("205")).Underline(true)
	bannerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).Padding(0, 1)
)

func (m *Model) View() string {
	if m.quit {
		return "Shutting down...\n"
	}

	var s strings.Builder

	s.WriteString(titleStyle.Render("Wallet Ops Console"))
	s.WriteString("\n\n")

	// Tab bar
	var tabs []string
	for _, t := range nav.Tabs {
		if t == m.active {
			tabs = append(tabs, activeTabStyle.Render(string(t)))
		} else {
			tabs = append(tabs, tabStyle.Render(string(t)))
		}
	}
	s.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	s.WriteString("\n\n")

	view := m.activeView()

	// Search line
	searchLine := "search: " + m.search.View()
	if view.Loading() {
		searchLine += "  " + m.spinner.View() + " loading"
	}
	s.WriteString(searchLine)
	s.WriteString("\n")

	// Error banner: stale data stays visible underneath, never a blank table.
	if errMsg := view.Err(); errMsg != "" {
		s.WriteString(bannerStyle.Render(fmt.Sprintf("⚠ %s (r retry, x dismiss)", errMsg)))
		s.WriteString("\n")
	}

	if m.modal != modalNone {
		s.WriteString(m.modalView())
		s.WriteString("\n")
	} else {
		s.WriteString(frameStyle.Render(m.rows.View()))
		s.WriteString("\n")
	}

	// Aggregates + pagination status
	q := view.Query()
	status := fmt.Sprintf("page %d · %d/page · %d total", q.Page, q.PageSize, view.TotalCount())
	if aggs := view.Aggregates(); len(aggs) > 0 {
		keys := make([]string, 0, len(aggs))
		for k := range aggs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%.2f", k, aggs[k]))
		}
		status += " · " + strings.Join(parts, " ")
	}
	s.WriteString(faintStyle.Render(status))
	s.WriteString("  ")
	s.WriteString(m.pager.View())
	s.WriteString("\n\n")

	s.WriteString(faintStyle.Render(m.footer()))

	return s.String()
}

func (m *Model) footer() string {
	switch m.active {
	case nav.TabWithdrawals:
		return "tab views · / search · ←/→ page · enter release · c cancel · r refresh · q quit"
	case nav.TabWallets:
		return "tab views · / search · ←/→ page · enter transfer · b batch sweep · r refresh · q quit"
	case nav.TabDepositEvents:
		return "tab views · / search · ←/→ page · enter retry · c mark processed · r refresh · q quit"
	case nav.TabWebhooks:
		return "tab views · / search · ←/→ page · enter toggle · s sync · r refresh · q quit"
	default:
		return "tab views · / search · ←/→ page · [/] history · r refresh · q quit"
	}
}
