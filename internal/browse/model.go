// Package browse is the interactive terminal view over one parsed batch.
package browse

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/internal/reconcile"
)

// MarkFilter is the mark filter cycled with tab.
type MarkFilter int

const (
	MarkAll MarkFilter = iota
	MarkPassOnly
	MarkFailOnly
)

func (f MarkFilter) String() string {
	switch f {
	case MarkPassOnly:
		return "pass"
	case MarkFailOnly:
		return "fail"
	}
	return "all"
}

func (f MarkFilter) mark() *models.Mark {
	var m models.Mark
	switch f {
	case MarkPassOnly:
		m = models.MarkPass
	case MarkFailOnly:
		m = models.MarkFail
	default:
		return nil
	}
	return &m
}

type promptKind int

const (
	promptNone promptKind = iota
	promptExport
	promptCertificate
)

const allPersons = "(全員)"

type savedMsg struct {
	what   string
	target string
	err    error
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#808080"))
)

// Model is the bubbletea model of the browser.
type Model struct {
	batch   *models.Batch
	rules   reconcile.Rules
	actions Actions
	ctx     context.Context

	persons   []string // persons[0] is allPersons
	personIdx int
	filter    MarkFilter

	summaries []models.SummaryRecord
	table     table.Model

	prompt    textinput.Model
	prompting promptKind

	status string
	err    error
}

// New creates a browser over batch. Filters start at all persons and all marks.
func New(ctx context.Context, batch *models.Batch, rules reconcile.Rules, actions Actions) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "氏名", Width: 12},
			{Title: "コンテンツ名", Width: 28},
			{Title: "所要時間", Width: 10},
			{Title: "標準学習時間", Width: 12},
			{Title: "マーク", Width: 6},
			{Title: "足りない時間", Width: 12},
			{Title: "確認時間", Width: 10},
			{Title: "学習完了日", Width: 20},
			{Title: "修了証", Width: 6},
		}),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	pi := textinput.New()
	pi.CharLimit = 512
	pi.Width = 60

	m := Model{
		batch:   batch,
		rules:   rules,
		actions: actions,
		ctx:     ctx,
		persons: append([]string{allPersons}, reconcile.Persons(batch.Records)...),
		table:   t,
		prompt:  pi,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case savedMsg:
		m.err = nil
		switch {
		case errors.Is(msg.err, export.ErrCancelled):
			m.status = "保存をキャンセルしました"
		case msg.err != nil:
			m.err = msg.err
			m.status = ""
		default:
			m.status = fmt.Sprintf("%sを保存しました: %s", msg.what, msg.target)
		}
		return m, nil

	case tea.KeyMsg:
		if m.prompting != promptNone {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.filter = (m.filter + 1) % 3
			m.refresh()
			return m, nil
		case "n":
			m.personIdx = (m.personIdx + 1) % len(m.persons)
			m.refresh()
			return m, nil
		case "p":
			m.personIdx = (m.personIdx - 1 + len(m.persons)) % len(m.persons)
			m.refresh()
			return m, nil
		case "e":
			return m.openPrompt(promptExport, export.FileName(m.person())), textinput.Blink
		case "c":
			if m.person() == "" {
				m.status = "修了証を作成する受講者を n/p で選択してください"
				return m, nil
			}
			return m.openPrompt(promptCertificate, certificate.FileName(m.person())), textinput.Blink
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) openPrompt(kind promptKind, suggestion string) Model {
	m.prompting = kind
	m.prompt.SetValue(suggestion)
	m.prompt.CursorEnd()
	m.prompt.Focus()
	m.status = ""
	m.err = nil
	return m
}

func (m Model) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePrompt()
		m.status = "保存をキャンセルしました"
		return m, nil
	case "enter":
		kind, target := m.prompting, strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		return m, m.save(kind, target)
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompting = promptNone
	m.prompt.Blur()
	m.prompt.SetValue("")
}

// save returns the command performing the save. An empty target yields ErrCancelled.
func (m Model) save(kind promptKind, target string) tea.Cmd {
	ctx, actions := m.ctx, m.actions
	switch kind {
	case promptExport:
		summaries := m.summaries
		return func() tea.Msg {
			if target == "" {
				return savedMsg{what: "CSV", err: export.ErrCancelled}
			}
			return savedMsg{what: "CSV", target: target, err: actions.ExportCSV(ctx, target, summaries)}
		}
	case promptCertificate:
		person := m.person()
		res, err := reconcile.Reconcile(reconcile.Request{
			Records:              m.batch.Records,
			StandardTimes:        m.batch.StandardTimes,
			TotalStandardSeconds: m.batch.TotalStandardSeconds,
			Person:               person,
			Rules:                m.rules,
		})
		return func() tea.Msg {
			if target == "" {
				return savedMsg{what: "修了証", err: export.ErrCancelled}
			}
			if err != nil {
				return savedMsg{what: "修了証", target: target, err: err}
			}
			return savedMsg{what: "修了証", target: target, err: actions.SaveCertificate(ctx, target, person, res.Summaries, res.TotalStandardSeconds)}
		}
	}
	return nil
}

// person is the selected person, or "" for everyone.
func (m Model) person() string {
	if m.personIdx == 0 {
		return ""
	}
	return m.persons[m.personIdx]
}

// refresh re-derives the summaries from the raw rows with the current filters.
func (m *Model) refresh() {
	res, err := reconcile.Reconcile(reconcile.Request{
		Records:              m.batch.Records,
		StandardTimes:        m.batch.StandardTimes,
		TotalStandardSeconds: m.batch.TotalStandardSeconds,
		Person:               m.person(),
		Mark:                 m.filter.mark(),
		Rules:                m.rules,
	})
	if err != nil {
		m.err = err
		m.summaries = nil
		m.table.SetRows(nil)
		return
	}
	m.err = nil
	m.summaries = res.Summaries

	rows := make([]table.Row, 0, len(res.Summaries))
	for _, s := range res.Summaries {
		flag := ""
		if m.rules.IsCompletionCertificate(s.Content) {
			flag = "*"
		}
		rows = append(rows, table.Row{
			s.Person, s.Content, s.Duration, s.StandardDuration,
			s.Mark.Symbol(), s.Shortfall, s.Confirmed, s.End, flag,
		})
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder
	name := m.persons[m.personIdx]
	b.WriteString(titleStyle.Render(fmt.Sprintf("受講者: %s  マーク: %s  件数: %d", name, m.filter, len(m.summaries))))
	b.WriteString("\n\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")

	switch {
	case m.prompting == promptExport:
		b.WriteString("CSVの保存先: " + m.prompt.View())
	case m.prompting == promptCertificate:
		b.WriteString("修了証の保存先: " + m.prompt.View())
	case m.err != nil:
		b.WriteString(errorStyle.Render("エラー: " + m.err.Error()))
	case m.status != "":
		b.WriteString(statusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: マーク切替  n/p: 受講者  e: CSV出力  c: 修了証  q: 終了"))
	return b.String()
}
