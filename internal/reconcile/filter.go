package reconcile

import "github.com/aura-webinar/studytime/internal/models"

// FilterRaw keeps rows whose person matches exactly. An empty person keeps everything.
func FilterRaw(raw []models.RawRecord, person string) []models.RawRecord {
	if person == "" {
		return raw
	}
	out := make([]models.RawRecord, 0, len(raw))
	for _, r := range raw {
		if r.Person == person {
			out = append(out, r)
		}
	}
	return out
}

// FilterSummaries keeps summaries with the given mark. It must run on freshly derived
// summaries; a nil mark keeps everything.
func FilterSummaries(summaries []models.SummaryRecord, mark *models.Mark) []models.SummaryRecord {
	if mark == nil {
		return summaries
	}
	out := make([]models.SummaryRecord, 0, len(summaries))
	for _, s := range summaries {
		if s.Mark == *mark {
			out = append(out, s)
		}
	}
	return out
}

// Persons returns distinct person names in first-seen order.
func Persons(raw []models.RawRecord) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range raw {
		if _, ok := seen[r.Person]; ok {
			continue
		}
		seen[r.Person] = struct{}{}
		out = append(out, r.Person)
	}
	return out
}
