// Package export writes reconciliation results as spreadsheet-friendly CSV and delivers artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/aura-webinar/studytime/internal/models"
)

// BOM is prefixed so spreadsheet tools detect UTF-8.
const BOM = "\uFEFF"

// Header is the fixed export column order.
var Header = []string{
	"フォルダ名", "コンテンツ名", "学習開始日時", "学習完了日", "所要時間", "標準学習時間",
	"マーク", "足りない時間", "確認時間", "氏名", "グループ", "グループ(全階層)", "URL",
}

func row(s models.SummaryRecord) []string {
	return []string{
		s.Folder, s.Content, s.Start, s.End, s.Duration, s.StandardDuration,
		s.Mark.Symbol(), s.Shortfall, s.Confirmed, s.Person, s.Group, s.GroupPath, s.URL,
	}
}

// WriteCSV writes the BOM, the header and one quoted row per summary.
func WriteCSV(w io.Writer, summaries []models.SummaryRecord) error {
	if _, err := io.WriteString(w, BOM); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, s := range summaries {
		if err := cw.Write(row(s)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSV renders summaries into memory.
func CSV(summaries []models.SummaryRecord) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, summaries); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
