package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia/ops-console/internal/config"
	"github.com/custodia/ops-console/internal/listctrl"
	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/models"
	"github.com/custodia/ops-console/internal/nav"
	"github.com/custodia/ops-console/internal/query"
	"github.com/custodia/ops-console/internal/services"
	"github.com/custodia/ops-console/internal/workflow"
)

// StateChanged wakes the event loop after a controller or workflow mutated
// its state in the background. The model pulls fresh snapshots on render.
type StateChanged struct{}

// Console wires the backend, the list controllers and the Bubble Tea program
// together and owns their lifecycle.
type Console struct {
	cfg     *config.Config
	backend *services.Backend
	program *tea.Program
}

// NewConsole creates the console runner.
func NewConsole(cfg *config.Config, backend *services.Backend) *Console {
	return &Console{cfg: cfg, backend: backend}
}

// Run starts the TUI and blocks until the operator quits.
func (c *Console) Run() error {
	model := newModel(c.cfg, c.backend, c.notify)
	c.program = tea.NewProgram(model, tea.WithAltScreen())

	defer model.close()

	if _, err := c.program.Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

func (c *Console) notify() {
	if c.program != nil {
		c.program.Send(StateChanged{})
	}
}

type modalKind int

const (
	modalNone modalKind = iota
	modalReview
	modalConfirm
	modalTransfer
	modalBatch
)

// Model is the root Bubble Tea model: a tab bar over six list views plus the
// action modals.
type Model struct {
	cfg     *config.Config
	backend *services.Backend

	history *nav.History
	active  nav.Tab

	deposits     *listctrl.Controller[models.Deposit]
	withdrawals  *listctrl.Controller[models.Withdrawal]
	transactions *listctrl.Controller[models.Transaction]
	wallets      *listctrl.Controller[models.Wallet]
	events       *listctrl.Controller[models.DepositEvent]
	webhooks     *listctrl.Controller[models.Webhook]
	started      map[nav.Tab]bool

	review   *workflow.ReviewWorkflow
	transfer *workflow.TransferWorkflow
	batch    *workflow.BatchSweepWorkflow
	confirm  *workflow.ConfirmFlow
	modal    modalKind

	rows        table.Model
	search      textinput.Model
	searchFocus bool
	amount      textinput.Model
	pager       paginator.Model
	spinner     spinner.Model

	width  int
	height int
	quit   bool
}

func newModel(cfg *config.Config, backend *services.Backend, notify func()) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	search := textinput.New()
	search.Placeholder = "search"
	search.CharLimit = 64

	amount := textinput.New()
	amount.Placeholder = "amount"
	amount.CharLimit = 32

	pg := paginator.New()
	pg.Type = paginator.Dots

	rows := table.New(table.WithFocused(true), table.WithHeight(12))

	initial := nav.Route{Tab: nav.TabDeposits, Query: query.New().WithPageSize(cfg.DefaultPageSize)}

	m := &Model{
		cfg:     cfg,
		backend: backend,
		history: nav.NewHistory(initial),
		active:  initial.Tab,
		started: make(map[nav.Tab]bool),
		rows:    rows,
		search:  search,
		amount:  amount,
		pager:   pg,
		spinner: sp,
	}

	opts := listctrl.Options{
		PollInterval:   cfg.PollInterval,
		SearchDebounce: cfg.SearchDebounce,
	}

	m.deposits = listctrl.New(backend.Ledger.ListDeposits, initial.Query, opts, notify)
	m.withdrawals = listctrl.New(backend.Ledger.ListWithdrawals, initial.Query, opts, notify)
	m.transactions = listctrl.New(backend.Ledger.ListTransactions, initial.Query, opts, notify)
	m.wallets = listctrl.New(backend.Wallets.ListWallets, initial.Query, opts, notify)
	m.events = listctrl.New(backend.Events.ListDepositEvents, initial.Query, opts, notify)
	m.webhooks = listctrl.New(backend.Events.ListWebhooks, initial.Query, opts, notify)

	wfOpts := workflow.Options{
		EstimateDebounce: cfg.EstimateDebounce,
		SuccessAutoClose: cfg.SuccessAutoClose,
	}

	m.review = workflow.NewReviewWorkflow(backend.Treasury, wfOpts, notify)
	m.transfer = workflow.NewTransferWorkflow(backend.Treasury, wfOpts, notify, m.onTransferDone)
	m.batch = workflow.NewBatchSweepWorkflow(backend.Treasury, wfOpts, notify)
	m.confirm = workflow.NewConfirmFlow(wfOpts, notify)

	return m
}

// onTransferDone refreshes the wallets view after a successful fund movement.
func (m *Model) onTransferDone(intent models.TransferIntent) {
	logger.Info("Transfer settled: %s %s from %s", intent.Amount, intent.CurrencyCode, intent.SourceAddress)
	m.wallets.Refresh()
}

// close tears down every controller's timers deterministically.
func (m *Model) close() {
	m.deposits.Close()
	m.withdrawals.Close()
	m.transactions.Close()
	m.wallets.Close()
	m.events.Close()
	m.webhooks.Close()
}

func (m *Model) Init() tea.Cmd {
	m.mountActive()
	return m.spinner.Tick
}

// mountActive starts the active tab's controller on first visit. Already
// started controllers keep polling in the background across tab switches.
func (m *Model) mountActive() {
	if m.started[m.active] {
		return
	}
	m.started[m.active] = true

	switch m.active {
	case nav.TabDeposits:
		m.deposits.Start()
	case nav.TabWithdrawals:
		m.withdrawals.Start()
	case nav.TabTransactions:
		m.transactions.Start()
	case nav.TabWallets:
		m.wallets.Start()
	case nav.TabDepositEvents:
		m.events.Start()
	case nav.TabWebhooks:
		m.webhooks.Start()
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		cmd, quit := m.handleKey(msg)
		if quit {
			m.quit = true
			return m, tea.Quit
		}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rows.SetWidth(msg.Width - 4)
		m.rows.SetHeight(msg.Height - 14)

	case StateChanged:
		m.syncViews()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	// Modal keys take priority over everything else.
	if m.modal != modalNone {
		return m.handleModalKey(msg), false
	}

	if m.searchFocus {
		return m.handleSearchKey(msg), false
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return nil, true

	case "tab":
		m.switchTab(1)
	case "shift+tab":
		m.switchTab(-1)

	case "[":
		if route, ok := m.history.Back(); ok {
			m.restoreRoute(route)
		}
	case "]":
		if route, ok := m.history.Forward(); ok {
			m.restoreRoute(route)
		}

	case "/":
		m.searchFocus = true
		m.search.Focus()

	case "up", "k", "down", "j":
		var cmd tea.Cmd
		m.rows, cmd = m.rows.Update(msg)
		return cmd, false

	case "left", "h":
		m.setPage(m.activeQuery().Page - 1)
	case "right", "l":
		m.setPage(m.activeQuery().Page + 1)

	case "+":
		m.cyclePageSize(1)
	case "-":
		m.cyclePageSize(-1)

	case "r":
		m.refreshActive()

	case "x":
		m.dismissActiveError()

	case "enter":
		m.openPrimaryAction()
	case "c":
		m.openSecondaryAction()
	case "s":
		m.openScopedAction()
	case "b":
		m.openBatchSweep()
	}

	return nil, false
}

func (m *Model) handleSearchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.searchFocus = false
		m.search.Blur()
		return nil
	case "enter":
		m.searchFocus = false
		m.search.Blur()
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	// Every keystroke feeds the controller; the controller's debounce decides
	// when it becomes an effective query change.
	m.setSearchTerm(m.search.Value())
	return cmd
}

// switchTab is deliberate navigation: it pushes a history entry.
func (m *Model) switchTab(delta int) {
	idx := 0
	for i, t := range nav.Tabs {
		if t == m.active {
			idx = i
			break
		}
	}
	idx = (idx + delta + len(nav.Tabs)) % len(nav.Tabs)
	m.active = nav.Tabs[idx]

	m.history.Push(nav.Route{Tab: m.active, Query: m.activeQuery()})
	m.search.SetValue(m.activeQuery().SearchTerm)
	m.mountActive()
	m.syncViews()
}

// replaceRoute mirrors filter/page churn into the location without growing
// the history.
func (m *Model) replaceRoute() {
	m.history.Replace(nav.Route{Tab: m.active, Query: m.activeQuery()})
}

// restoreRoute re-applies a history entry: tab plus full query, with the
// search input reset to the restored term.
func (m *Model) restoreRoute(route nav.Route) {
	m.active = route.Tab
	m.mountActive()
	m.activeView().SetQuery(route.Query)
	m.search.SetValue(route.Query.SearchTerm)
	m.syncViews()
}
