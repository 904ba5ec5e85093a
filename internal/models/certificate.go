package models

// CertificateRow is one line of the completion certificate table.
type CertificateRow struct {
	Folder           string `json:"folder"`
	Content          string `json:"content"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Duration         string `json:"duration"`
	StandardDuration string `json:"standard_duration"`
}

// CertificateDocument is everything the certificate template needs.
type CertificateDocument struct {
	Person        string           `json:"person"`
	Rows          []CertificateRow `json:"rows"`
	TotalDuration string           `json:"total_duration"`
	TotalStandard string           `json:"total_standard"`
	IssueDate     string           `json:"issue_date"`
}
