package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/utils"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#8BC34A")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	failStyle   = cellStyle.Foreground(lipgloss.Color("#e53935"))
	mutedStyle  = cellStyle.Foreground(lipgloss.Color("#808080"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#404040"))
)

var summaryHeaders = []string{"氏名", "フォルダ名", "コンテンツ名", "所要時間", "標準学習時間", "マーク", "足りない時間", "確認時間", "学習完了日"}

// renderSummaries draws summaries as a bordered table. Failing rows are red;
// completion-certificate entries are dimmed.
func renderSummaries(summaries []models.SummaryRecord, rules reconcile.Rules) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Headers(summaryHeaders...)

	for _, s := range summaries {
		t.Row(s.Person, s.Folder, s.Content, s.Duration, s.StandardDuration, s.Mark.Symbol(), s.Shortfall, s.Confirmed, s.End)
	}

	t.StyleFunc(func(row, col int) lipgloss.Style {
		if row == table.HeaderRow {
			return headerStyle
		}
		if row < 0 || row >= len(summaries) {
			return cellStyle
		}
		s := summaries[row]
		switch {
		case rules.IsCompletionCertificate(s.Content):
			return mutedStyle
		case s.Mark == models.MarkFail:
			return failStyle
		}
		return cellStyle
	})
	return t.Render()
}

func renderFooter(res *reconcile.Result) string {
	fail := 0
	for _, s := range res.Summaries {
		if s.Mark == models.MarkFail {
			fail++
		}
	}
	return fmt.Sprintf("%d rows, %d failing, standard total %s",
		len(res.Summaries), fail, utils.SecondsToTime(res.TotalStandardSeconds))
}
