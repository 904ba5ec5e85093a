// Package reconcile turns raw attendance rows into one pass/fail summary per person and content.
package reconcile

import (
	"time"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/pkg/utils"
)

type groupKey struct {
	content string
	person  string
}

// DeriveSummaries groups raw rows by (content, person), sums durations and marks each group
// against its standard time. Output order is the order in which groups first appear.
func DeriveSummaries(raw []models.RawRecord, standards models.StandardTimes, rules Rules) ([]models.SummaryRecord, error) {
	var order []groupKey
	groups := make(map[groupKey][]models.RawRecord)
	for _, r := range raw {
		k := groupKey{content: r.Content, person: r.Person}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]models.SummaryRecord, 0, len(order))
	for _, k := range order {
		s, err := summarize(groups[k], standards, rules)
		if err != nil {
			return nil, &GroupError{Person: k.person, Content: k.content, Err: err}
		}
		out = append(out, s)
	}
	return out, nil
}

func summarize(group []models.RawRecord, standards models.StandardTimes, rules Rules) (models.SummaryRecord, error) {
	first := group[0]

	total := 0
	for _, r := range group {
		n, err := utils.TimeToSeconds(r.Duration)
		if err != nil {
			return models.SummaryRecord{}, err
		}
		if total, err = utils.AddSeconds(total, n, r.Duration); err != nil {
			return models.SummaryRecord{}, err
		}
	}

	standardText, err := standardFor(first, standards, rules)
	if err != nil {
		return models.SummaryRecord{}, err
	}
	standard, err := utils.TimeToSeconds(standardText)
	if err != nil {
		return models.SummaryRecord{}, err
	}

	mark, shortfall, confirmed := judge(first.Content, total, standard, rules)

	return models.SummaryRecord{
		Person:           first.Person,
		Folder:           first.Folder,
		Content:          first.Content,
		Start:            first.Start,
		End:              latestEnd(group),
		Duration:         utils.SecondsToTime(total),
		StandardDuration: standardText,
		Mark:             mark,
		Shortfall:        shortfall,
		Confirmed:        confirmed,
		Group:            first.Group,
		GroupPath:        first.GroupPath,
		URL:              first.URL,
	}, nil
}

// standardFor prefers the lookup table, then the row's own column, then the policy.
func standardFor(first models.RawRecord, standards models.StandardTimes, rules Rules) (string, error) {
	if d, ok := standards.Lookup(first.Content); ok {
		return d, nil
	}
	if first.StandardDuration != "" {
		return first.StandardDuration, nil
	}
	if rules.MissingStandard == MissingAsZero {
		return utils.SecondsToTime(0), nil
	}
	return "", &MissingStandardTimeError{Content: first.Content}
}

// judge returns the mark, the shortfall (empty on pass) and the confirmed study time.
func judge(content string, total, standard int, rules Rules) (models.Mark, string, string) {
	if rules.IsComprehensionTest(content) {
		return models.MarkPass, "", utils.SecondsToTime(min(total, standard))
	}
	if total >= standard {
		return models.MarkPass, "", utils.SecondsToTime(standard)
	}
	return models.MarkFail, utils.SecondsToTime(standard - total), utils.SecondsToTime(0)
}

func latestEnd(group []models.RawRecord) string {
	var (
		best   time.Time
		bestAt = -1
	)
	for i, r := range group {
		t, ok := utils.ParseTimestamp(r.End)
		if !ok {
			continue
		}
		if bestAt < 0 || t.After(best) {
			best, bestAt = t, i
		}
	}
	if bestAt < 0 {
		return group[0].End
	}
	return group[bestAt].End
}
