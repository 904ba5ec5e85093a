package certificate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile holds the wording printed on certificates.
type Profile struct {
	Title              string  `yaml:"title"`
	Honorific          string  `yaml:"honorific"`
	Statement          string  `yaml:"statement"`
	IssueDateLabel     string  `yaml:"issue_date_label"`
	IssuerOrgLabel     string  `yaml:"issuer_org_label"`
	IssuerOrg          string  `yaml:"issuer_org"`
	IssuerNameLabel    string  `yaml:"issuer_name_label"`
	IssuerName         string  `yaml:"issuer_name"`
	Columns            Columns `yaml:"columns"`
	TotalDurationLabel string  `yaml:"total_duration_label"`
	TotalStandardLabel string  `yaml:"total_standard_label"`
}

// Columns are the table headings.
type Columns struct {
	Folder   string `yaml:"folder"`
	Content  string `yaml:"content"`
	Start    string `yaml:"start"`
	End      string `yaml:"end"`
	Duration string `yaml:"duration"`
	Standard string `yaml:"standard"`
}

// DefaultProfile is the wording used when no profile file is configured.
func DefaultProfile() Profile {
	return Profile{
		Title:           "修了証",
		Honorific:       "殿",
		Statement:       "あなたは、所定の課程を修了されたことをここに証します。",
		IssueDateLabel:  "発行日",
		IssuerOrgLabel:  "発行元団体",
		IssuerNameLabel: "発行者名",
		Columns: Columns{
			Folder:   "フォルダ名",
			Content:  "コンテンツ名",
			Start:    "学習開始日",
			End:      "学習完了日",
			Duration: "所要時間",
			Standard: "標準学習時間",
		},
		TotalDurationLabel: "所要時間の合計",
		TotalStandardLabel: "標準学習時間の合計",
	}
}

// LoadProfile reads a YAML profile over the defaults. An empty path returns the defaults.
func LoadProfile(path string) (Profile, error) {
	p := DefaultProfile()
	if path == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read certificate profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse certificate profile: %w", err)
	}
	return p, nil
}
