package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/berlinbruno/money-trail/internal/database/repository"
	"github.com/berlinbruno/money-trail/internal/format"
	"github.com/berlinbruno/money-trail/internal/insights"
	"github.com/berlinbruno/money-trail/internal/service"
)

// App is the terminal approval queue for SMS-derived transactions.
type App struct {
	ctx      context.Context
	services Services
	state    appState
	modal    modalState

	pending  []repository.Transaction
	hints    map[int64]service.DuplicateHint
	kpi      insights.KPI
	progress []insights.AlertProgress
	cursor   int
	status   string
	tz       *time.Location
	currency string
}

type Services struct {
	Ledger      *service.LedgerService
	Reconciler  *service.Reconciler
	Engine      *insights.Engine
	Maintenance *service.MaintenanceService
}

type appState string

const (
	viewQueue     appState = "queue"
	viewDashboard appState = "dashboard"
)

type modalState string

const (
	modalNone          modalState = ""
	modalConfirmDelete modalState = "confirmDelete"
	modalConfirmReset  modalState = "confirmReset"
)

func New(ctx context.Context, services Services, tz *time.Location, currency string) *App {
	if tz == nil {
		tz = time.Local
	}
	if currency == "" {
		currency = format.DefaultCurrencySymbol
	}
	return &App{
		ctx:      ctx,
		services: services,
		state:    viewQueue,
		tz:       tz,
		currency: currency,
	}
}

type pendingMsg struct {
	txs   []repository.Transaction
	hints map[int64]service.DuplicateHint
}

type dashboardMsg struct {
	kpi      insights.KPI
	progress []insights.AlertProgress
}

// doneMsg reports a completed mutation; the queue reloads afterwards.
type doneMsg string

type statusMsg string

type errMsg struct{ error }

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadPending(), a.loadDashboard())
}

func (a *App) loadPending() tea.Cmd {
	return func() tea.Msg {
		txs, err := a.services.Ledger.Pending(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		var hints map[int64]service.DuplicateHint
		if a.services.Reconciler != nil {
			hints, err = a.services.Reconciler.HintsByPendingID(a.ctx)
			if err != nil {
				return errMsg{err}
			}
		}
		return pendingMsg{txs: txs, hints: hints}
	}
}

func (a *App) loadDashboard() tea.Cmd {
	return func() tea.Msg {
		if a.services.Engine == nil {
			return nil
		}
		kpi, err := a.services.Engine.MonthlyKPI(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		progress, err := a.services.Engine.AlertProgress(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return dashboardMsg{kpi: kpi, progress: progress}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if a.modal != modalNone {
			return a, a.updateModal(m)
		}
		switch m.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "tab", "d":
			if a.state == viewQueue {
				a.state = viewDashboard
			} else {
				a.state = viewQueue
			}
		case "r":
			a.status = "refreshing..."
			return a, tea.Batch(a.loadPending(), a.loadDashboard())
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(a.pending)-1 {
				a.cursor++
			}
		case "a", "enter":
			if tx, ok := a.selected(); ok {
				return a, a.approveCmd(tx.ID)
			}
		case "A":
			if len(a.pending) > 0 {
				return a, a.approveAllCmd()
			}
		case "x", "delete":
			if _, ok := a.selected(); ok {
				a.modal = modalConfirmDelete
			}
		case "R":
			if a.services.Maintenance != nil {
				a.modal = modalConfirmReset
			}
		}
	case pendingMsg:
		a.pending = m.txs
		a.hints = m.hints
		if a.cursor >= len(a.pending) {
			a.cursor = max(len(a.pending)-1, 0)
		}
	case dashboardMsg:
		a.kpi = m.kpi
		a.progress = m.progress
	case doneMsg:
		a.status = string(m)
		return a, tea.Batch(a.loadPending(), a.loadDashboard())
	case statusMsg:
		a.status = string(m)
	case errMsg:
		a.status = "error: " + m.Error()
	}
	return a, nil
}

func (a *App) updateModal(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "y", "enter":
		modal := a.modal
		a.modal = modalNone
		switch modal {
		case modalConfirmDelete:
			if tx, ok := a.selected(); ok {
				return a.deleteCmd(tx.ID)
			}
		case modalConfirmReset:
			return a.resetCmd()
		}
	case "n", "esc":
		a.modal = modalNone
		a.status = "cancelled"
	case "ctrl+c":
		return tea.Quit
	}
	return nil
}

func (a *App) selected() (repository.Transaction, bool) {
	if a.state != viewQueue || len(a.pending) == 0 {
		return repository.Transaction{}, false
	}
	return a.pending[a.cursor], true
}

// commands
func (a *App) approveCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Ledger.SetApproved(a.ctx, id, true); err != nil {
			return errMsg{err}
		}
		return doneMsg(fmt.Sprintf("approved #%d", id))
	}
}

func (a *App) approveAllCmd() tea.Cmd {
	return func() tea.Msg {
		n, err := a.services.Ledger.ApproveAll(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return doneMsg(fmt.Sprintf("approved %d transactions", n))
	}
}

func (a *App) deleteCmd(id int64) tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Ledger.Delete(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return doneMsg(fmt.Sprintf("deleted #%d", id))
	}
}

func (a *App) resetCmd() tea.Cmd {
	return func() tea.Msg {
		if err := a.services.Maintenance.Reset(a.ctx); err != nil {
			return errMsg{err}
		}
		return doneMsg("all data cleared")
	}
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewDashboard:
		body = a.renderDashboard()
	default:
		body = a.renderQueue()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	helpStyle  = lipgloss.NewStyle().Faint(true)
)

func (a *App) renderQueue() string {
	title := titleStyle.Render(fmt.Sprintf("Pending Approval (%d)", len(a.pending)))
	var b strings.Builder
	b.WriteString(title + "\n")
	if len(a.pending) == 0 {
		b.WriteString("Nothing waiting for review.\n")
	}
	for i, t := range a.pending {
		marker := " "
		if i == a.cursor {
			marker = "▶"
		}
		fmt.Fprintf(&b, "%s %s  %-6s  %-20s  %10s  %s\n",
			marker, format.Date(t.Date, a.tz), t.Type, t.Title,
			format.Amount(t.Amount, a.currency), format.Capitalize(string(t.Category)))
	}
	if tx, ok := a.selected(); ok {
		if h, ok := a.hints[tx.ID]; ok {
			b.WriteString(hintStyle.Render(fmt.Sprintf(
				"Possible duplicate of #%d %q on %s (similarity %.2f)",
				h.Existing.ID, h.Existing.Title, format.Date(h.Existing.Date, a.tz), h.Similarity)) + "\n")
		}
	}
	b.WriteString(helpStyle.Render("[a] Approve  [A] Approve all  [x] Delete  [r] Refresh  [d] Dashboard  [R] Reset  [q] Quit"))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) renderDashboard() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("This Month") + "\n")
	fmt.Fprintf(&b, "Income: %s  Expense: %s  Savings: %s\n",
		format.Amount(a.kpi.Income, a.currency),
		format.Amount(a.kpi.Expense, a.currency),
		format.Amount(a.kpi.Savings, a.currency))
	fmt.Fprintf(&b, "Pending approval: %d\n", len(a.pending))
	if len(a.progress) > 0 {
		b.WriteString("\n" + titleStyle.Render("Alerts") + "\n")
		for _, p := range a.progress {
			fmt.Fprintf(&b, "- %-8s %-8s %-14s %10s of %-10s %s%%\n",
				p.Alert.Type, p.Alert.Frequency, format.Capitalize(string(p.Alert.Category)),
				format.Amount(p.Alert.CurrentValue, a.currency),
				format.Amount(p.Alert.Threshold, a.currency),
				p.Progress.StringFixed(1))
		}
	}
	b.WriteString(helpStyle.Render("[d] Queue  [r] Refresh  [q] Quit"))
	if a.status != "" {
		b.WriteString("\n" + a.status)
	}
	return b.String()
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalConfirmDelete:
		tx, _ := a.selected()
		return titleStyle.Render("Delete transaction?") + fmt.Sprintf("\n#%d %s %s\n[y] Yes  [n] No", tx.ID, tx.Title, format.Amount(tx.Amount, a.currency))
	case modalConfirmReset:
		return titleStyle.Render("Reset database?") + "\nThis will delete all data.\n[y] Yes  [n] No"
	default:
		return ""
	}
}
