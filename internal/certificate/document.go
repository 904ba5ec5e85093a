// Package certificate builds and renders per-person completion certificates.
package certificate

import (
	"fmt"
	"strings"
	"time"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/pkg/utils"
)

// IssueDateUnavailable is shown when no row has a parseable end time.
const IssueDateUnavailable = "N/A"

// ExcludeCompletionEntries drops summaries whose content contains marker.
func ExcludeCompletionEntries(summaries []models.SummaryRecord, marker string) []models.SummaryRecord {
	if marker == "" {
		return summaries
	}
	out := make([]models.SummaryRecord, 0, len(summaries))
	for _, s := range summaries {
		if !strings.Contains(s.Content, marker) {
			out = append(out, s)
		}
	}
	return out
}

// RowsFromSummaries maps summaries to certificate table rows.
func RowsFromSummaries(summaries []models.SummaryRecord) []models.CertificateRow {
	rows := make([]models.CertificateRow, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, models.CertificateRow{
			Folder:           s.Folder,
			Content:          s.Content,
			Start:            s.Start,
			End:              s.End,
			Duration:         s.Duration,
			StandardDuration: s.StandardDuration,
		})
	}
	return rows
}

type rowKey struct{ content, folder string }

// MergeDuplicates collapses rows sharing (content, folder). The first occurrence keeps its
// position; later duplicates overwrite start, end, duration and standard duration.
func MergeDuplicates(rows []models.CertificateRow) []models.CertificateRow {
	index := make(map[rowKey]int)
	out := make([]models.CertificateRow, 0, len(rows))
	for _, r := range rows {
		k := rowKey{content: r.Content, folder: r.Folder}
		if i, ok := index[k]; ok {
			out[i].Start = r.Start
			out[i].End = r.End
			out[i].Duration = r.Duration
			out[i].StandardDuration = r.StandardDuration
			continue
		}
		index[k] = len(out)
		out = append(out, r)
	}
	return out
}

// Build assembles the certificate document for one person.
func Build(person string, rows []models.CertificateRow, totalStandardSeconds int) (*models.CertificateDocument, error) {
	merged := MergeDuplicates(rows)

	total := 0
	var (
		latest time.Time
		found  bool
	)
	for _, r := range merged {
		n, err := utils.TimeToSeconds(r.Duration)
		if err != nil {
			return nil, fmt.Errorf("certificate row %q: %w", r.Content, err)
		}
		if total, err = utils.AddSeconds(total, n, r.Duration); err != nil {
			return nil, fmt.Errorf("certificate total: %w", err)
		}
		if t, ok := utils.ParseTimestamp(r.End); ok && (!found || t.After(latest)) {
			latest, found = t, true
		}
	}

	issue := IssueDateUnavailable
	if found {
		issue = latest.Format(utils.DateLayout)
	}
	return &models.CertificateDocument{
		Person:        person,
		Rows:          merged,
		TotalDuration: utils.SecondsToTime(total),
		TotalStandard: utils.SecondsToTime(totalStandardSeconds),
		IssueDate:     issue,
	}, nil
}

// FileName is the default save name for a person's certificate. It is always a single path
// element, whatever the person column holds.
func FileName(person string) string {
	return utils.SafeFileComponent(person) + "_certificate.pdf"
}
