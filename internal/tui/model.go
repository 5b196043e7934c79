// Package tui is the single-screen terminal front end: a company picker, the
// quote of the selected company and its logo.
//
// The bubbletea event loop is the UI execution context. Fetch completions
// reach the Model as dispatchMsg values and run inside Update, so the Model
// is only ever touched by the loop goroutine.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"stocks/internal/directory"
	"stocks/internal/quoteclient"
	"stocks/internal/stock"
)

const placeholder = "-"

// maxVisibleRows bounds the picker height.
const maxVisibleRows = 10

// QuoteClient is the part of *quoteclient.Client the UI drives.
type QuoteClient interface {
	Start(ctx context.Context)
	Retry(ctx context.Context)
	RefreshQuote(ctx context.Context, symbol string) string
}

// DisplayState is what the quote panel shows.
type DisplayState struct {
	CompanyName string
	Symbol      string
	Price       string
	PriceChange string
	Direction   stock.Direction
	Logo        *stock.Logo
}

func blankState() DisplayState {
	return DisplayState{
		CompanyName: placeholder,
		Symbol:      placeholder,
		Price:       placeholder,
		PriceChange: placeholder,
	}
}

// Messages.
type dispatchMsg func()
type startMsg struct{}

// Dispatcher returns a quoteclient.Dispatcher that runs completions on the
// event loop of p.
func Dispatcher(p *tea.Program) quoteclient.Dispatcher {
	return quoteclient.DispatcherFunc(func(f func()) {
		p.Send(dispatchMsg(f))
	})
}

// Model.
type Model struct {
	ctx    context.Context
	client QuoteClient
	dir    *directory.Directory

	cursor  int
	state   DisplayState
	loading bool
	alert   string
	spinner spinner.Model
}

var _ quoteclient.Listener = (*Model)(nil)
var _ quoteclient.Selector = (*Model)(nil)

func New(ctx context.Context, dir *directory.Directory) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle
	return &Model{ctx: ctx, dir: dir, state: blankState(), spinner: sp}
}

// Attach sets the client. It must be called before the program starts.
func (m *Model) Attach(c QuoteClient) { m.client = c }

// State returns the current quote panel contents.
func (m *Model) State() DisplayState { return m.state }

// Alert returns the pending warning, if any.
func (m *Model) Alert() string { return m.alert }

// Loading reports whether a refresh cycle is waiting for its quote.
func (m *Model) Loading() bool { return m.loading }

func (m *Model) Init() tea.Cmd {
	return func() tea.Msg { return startMsg{} }
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case startMsg:
		m.beginCycle()
		m.client.Start(m.ctx)
		return m, m.spinner.Tick

	case dispatchMsg:
		msg()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
			return m, m.refresh()
		}

	case "down", "j":
		if m.cursor < m.dir.Len()-1 {
			m.cursor++
			return m, m.refresh()
		}

	case "enter", " ":
		return m, m.refresh()

	case "r":
		m.alert = ""
		m.beginCycle()
		m.client.Retry(m.ctx)
		return m, m.spinner.Tick
	}
	return m, nil
}

// refresh starts a cycle for the selected row.
func (m *Model) refresh() tea.Cmd {
	m.beginCycle()
	m.client.RefreshQuote(m.ctx, "")
	return m.spinner.Tick
}

// beginCycle resets the quote panel to placeholders, keeping the old logo
// until a new one arrives.
func (m *Model) beginCycle() {
	logo := m.state.Logo
	m.state = blankState()
	m.state.Logo = logo
	m.loading = true
}

// SelectedRow implements quoteclient.Selector.
func (m *Model) SelectedRow() int { return m.cursor }

// OnDirectoryUpdated implements quoteclient.Listener.
func (m *Model) OnDirectoryUpdated() {
	if n := m.dir.Len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// OnQuoteReady implements quoteclient.Listener.
func (m *Model) OnQuoteReady(q stock.Quote) {
	m.loading = false
	m.state.CompanyName = q.CompanyName
	m.state.Symbol = q.Symbol
	m.state.Price = formatDollars(q.Price)
	m.state.PriceChange = formatDollars(q.PriceChange)
	m.state.Direction = q.Direction()
}

// OnLogoReady implements quoteclient.Listener.
func (m *Model) OnLogoReady(l stock.Logo) {
	m.state.Logo = &l
}

// OnError implements quoteclient.Listener. The warning stays until retried.
// Only the quote settles the loading state; list and logo failures leave a
// pending quote spinning.
func (m *Model) OnError(op string, _ stock.ErrorKind, message string) {
	if op == stock.OpQuote {
		m.loading = false
	}
	m.alert = message
}

func formatDollars(v float64) string {
	return decimal.NewFromFloat(v).String() + " $"
}
