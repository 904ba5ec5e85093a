package browse

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/internal/reconcile"
)

type saveCall struct {
	kind    string
	target  string
	person  string
	entries int
	total   int
}

type fakeActions struct {
	calls []saveCall
	err   error
}

func (f *fakeActions) ExportCSV(_ context.Context, target string, summaries []models.SummaryRecord) error {
	f.calls = append(f.calls, saveCall{kind: "csv", target: target, entries: len(summaries)})
	return f.err
}

func (f *fakeActions) SaveCertificate(_ context.Context, target, person string, summaries []models.SummaryRecord, total int) error {
	f.calls = append(f.calls, saveCall{kind: "certificate", target: target, person: person, entries: len(summaries), total: total})
	return f.err
}

func testBatch() *models.Batch {
	st := models.NewStandardTimes()
	st.Set("第1章", "00:30:00")
	st.Set("第2章", "01:00:00")
	st.Set("修了証", "00:00:00")
	return &models.Batch{
		Records: []models.RawRecord{
			{Person: "佐藤", Folder: "基礎", Content: "第1章", Start: "2024/04/01 09:00", Duration: "00:40:00"},
			{Person: "佐藤", Folder: "基礎", Content: "修了証", Start: "2024/04/05 09:00", Duration: "00:00:10"},
			{Person: "鈴木", Folder: "基礎", Content: "第2章", Start: "2024/04/02 10:00", Duration: "00:20:00"},
		},
		StandardTimes:        st,
		TotalStandardSeconds: 5400,
	}
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// deliver runs cmd and feeds its message back into the model.
func deliver(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	require.NotNil(t, cmd)
	next, _ := m.Update(cmd())
	return next.(Model)
}

func TestNew_ShowsEverything(t *testing.T) {
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), &fakeActions{})

	assert.NoError(t, m.err)
	assert.Len(t, m.table.Rows(), 3)
	assert.Equal(t, []string{allPersons, "佐藤", "鈴木"}, m.persons)
	assert.Equal(t, "", m.person())

	flagged := 0
	for _, row := range m.table.Rows() {
		if row[8] == "*" {
			flagged++
			assert.Equal(t, "修了証", row[1])
		}
	}
	assert.Equal(t, 1, flagged)
}

func TestTab_CyclesMarkFilter(t *testing.T) {
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), &fakeActions{})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, MarkPassOnly, m.filter)
	assert.Len(t, m.table.Rows(), 2)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, MarkFailOnly, m.filter)
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "鈴木", m.table.Rows()[0][0])
	assert.Equal(t, "00:40:00", m.table.Rows()[0][5])

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, MarkAll, m.filter)
	assert.Len(t, m.table.Rows(), 3)
}

func TestPersonCycling(t *testing.T) {
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), &fakeActions{})

	m, _ = press(t, m, runes("n"))
	assert.Equal(t, "佐藤", m.person())
	assert.Len(t, m.table.Rows(), 2)

	m, _ = press(t, m, runes("n"))
	assert.Equal(t, "鈴木", m.person())
	assert.Len(t, m.table.Rows(), 1)

	m, _ = press(t, m, runes("n"))
	assert.Equal(t, "", m.person())

	m, _ = press(t, m, runes("p"))
	assert.Equal(t, "鈴木", m.person())
	assert.Contains(t, m.View(), "受講者: 鈴木")
}

func TestMissingStandardShowsError(t *testing.T) {
	batch := testBatch()
	batch.Records = append(batch.Records, models.RawRecord{Person: "鈴木", Content: "付録", Duration: "00:05:00"})

	m := New(context.Background(), batch, reconcile.DefaultRules(), &fakeActions{})
	require.Error(t, m.err)
	assert.Empty(t, m.table.Rows())
	assert.Contains(t, m.View(), "付録")

	// 佐藤 alone has every standard, so narrowing the filter clears the error.
	m, _ = press(t, m, runes("n"))
	assert.NoError(t, m.err)
	assert.Len(t, m.table.Rows(), 2)
}

func TestExportPrompt(t *testing.T) {
	actions := &fakeActions{}
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), actions)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab}) // pass only
	m, _ = press(t, m, runes("e"))
	require.Equal(t, promptExport, m.prompting)
	assert.Equal(t, "study_time_summary.csv", m.prompt.Value())

	// Keys go to the prompt, not the filters.
	m, _ = press(t, m, runes("n"))
	assert.Equal(t, "", m.person())
	assert.Equal(t, "study_time_summary.csvn", m.prompt.Value())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, promptNone, m.prompting)
	m = deliver(t, m, cmd)

	require.Len(t, actions.calls, 1)
	assert.Equal(t, saveCall{kind: "csv", target: "study_time_summary.csvn", entries: 2}, actions.calls[0])
	assert.Contains(t, m.status, "study_time_summary.csvn")
}

func TestPrompt_Cancel(t *testing.T) {
	actions := &fakeActions{}
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), actions)

	m, _ = press(t, m, runes("e"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, promptNone, m.prompting)
	assert.Equal(t, "保存をキャンセルしました", m.status)

	// An emptied path cancels too.
	m, _ = press(t, m, runes("e"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlU})
	assert.Equal(t, "", m.prompt.Value())
	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(t, m, cmd)

	assert.Empty(t, actions.calls)
	assert.NoError(t, m.err)
	assert.Equal(t, "保存をキャンセルしました", m.status)
}

func TestCertificatePrompt(t *testing.T) {
	actions := &fakeActions{}
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), actions)

	m, _ = press(t, m, runes("c"))
	assert.Equal(t, promptNone, m.prompting)
	assert.True(t, strings.Contains(m.status, "n/p"))

	m, _ = press(t, m, runes("n"))
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "佐藤", m.person())
	assert.Equal(t, MarkFailOnly, m.filter)
	assert.Empty(t, m.table.Rows())

	m, _ = press(t, m, runes("c"))
	require.Equal(t, promptCertificate, m.prompting)
	assert.Equal(t, "佐藤_certificate.pdf", m.prompt.Value())

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(t, m, cmd)

	// Certificates ignore the mark filter.
	require.Len(t, actions.calls, 1)
	assert.Equal(t, saveCall{kind: "certificate", target: "佐藤_certificate.pdf", person: "佐藤", entries: 2, total: 5400}, actions.calls[0])
	assert.Contains(t, m.status, "修了証を保存しました")
}

func TestSaveFailureIsShown(t *testing.T) {
	actions := &fakeActions{err: errors.New("disk full")}
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), actions)

	m, _ = press(t, m, runes("e"))
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(t, m, cmd)

	require.Error(t, m.err)
	assert.Contains(t, m.View(), "disk full")
}

func TestQuit(t *testing.T) {
	m := New(context.Background(), testBatch(), reconcile.DefaultRules(), &fakeActions{})
	_, cmd := press(t, m, runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
