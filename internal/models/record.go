package models

// RawRecord is one attendance event row from an LMS completion export.
// Duration and StandardDuration are HH:MM:SS strings as exported.
type RawRecord struct {
	Group            string `json:"group,omitempty"`
	GroupPath        string `json:"group_path,omitempty"`
	Person           string `json:"person" validate:"required"`
	Folder           string `json:"folder"`
	Content          string `json:"content" validate:"required"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Duration         string `json:"duration" validate:"required"`
	StandardDuration string `json:"standard_duration"`
	Confirmed        string `json:"confirmed,omitempty"`
	URL              string `json:"url,omitempty"`
}

// SummaryRecord is the derived row for one (person, content) pair.
type SummaryRecord struct {
	Person           string `json:"person"`
	Folder           string `json:"folder"`
	Content          string `json:"content"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Duration         string `json:"duration"`
	StandardDuration string `json:"standard_duration"`
	Mark             Mark   `json:"mark"`
	Shortfall        string `json:"shortfall"`
	Confirmed        string `json:"confirmed"`
	Group            string `json:"group,omitempty"`
	GroupPath        string `json:"group_path,omitempty"`
	URL              string `json:"url,omitempty"`
}

// Batch is what the batch parser hands to the engine.
type Batch struct {
	Records              []RawRecord
	StandardTimes        StandardTimes
	TotalStandardSeconds int
}
