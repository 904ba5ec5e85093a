package ingest

import (
	"strings"

	"github.com/aura-webinar/studytime/internal/models"
)

// Column names of the LMS completion export and the standard-time table.
const (
	ColGroup     = "グループ"
	ColGroupPath = "グループ(全階層)"
	ColPerson    = "氏名"
	ColFolder    = "フォルダ名"
	ColContent   = "コンテンツ名"
	ColStart     = "学習開始日時"
	ColEnd       = "学習完了日"
	ColDuration  = "所要時間"
	ColStandard  = "標準学習時間"
	ColConfirmed = "確認時間"
	ColURL       = "URL"
)

var (
	requiredRecordColumns   = []string{ColPerson, ColContent, ColDuration}
	requiredStandardColumns = []string{ColContent, ColStandard}
)

// columns maps header names to positions.
type columns map[string]int

func newColumns(header []string) columns {
	c := make(columns, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))
		if _, dup := c[h]; !dup {
			c[h] = i
		}
	}
	return c
}

func (c columns) has(name string) bool {
	_, ok := c[name]
	return ok
}

func (c columns) missing(required []string) []string {
	var out []string
	for _, name := range required {
		if !c.has(name) {
			out = append(out, name)
		}
	}
	return out
}

func (c columns) get(row []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(row) {
		return ""
	}
	return cleanCell(row[i])
}

// cleanCell trims whitespace and blanks out the null spellings dataframes emit.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	switch s {
	case "nan", "NaN", "NaT", "None", "null":
		return ""
	}
	return s
}

func recordFrom(get func(string) string) models.RawRecord {
	return models.RawRecord{
		Group:            get(ColGroup),
		GroupPath:        get(ColGroupPath),
		Person:           get(ColPerson),
		Folder:           get(ColFolder),
		Content:          get(ColContent),
		Start:            get(ColStart),
		End:              get(ColEnd),
		Duration:         get(ColDuration),
		StandardDuration: get(ColStandard),
		Confirmed:        get(ColConfirmed),
		URL:              get(ColURL),
	}
}
