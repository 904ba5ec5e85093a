package certificate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/pkg/utils"
)

func certRow(content, folder, end, duration string) models.CertificateRow {
	return models.CertificateRow{Folder: folder, Content: content, Start: "2024/04/01 09:00", End: end, Duration: duration, StandardDuration: "00:30:00"}
}

func TestMergeDuplicates_LastWriteWins(t *testing.T) {
	rows := []models.CertificateRow{
		certRow("A", "f1", "2024/04/01 10:00:00", "00:10:00"),
		certRow("B", "f1", "2024/04/02 10:00:00", "00:20:00"),
		certRow("A", "f1", "2024/04/03 10:00:00", "00:05:00"),
		certRow("A", "f2", "2024/04/04 10:00:00", "00:01:00"),
	}
	got := MergeDuplicates(rows)
	want := []models.CertificateRow{
		certRow("A", "f1", "2024/04/03 10:00:00", "00:05:00"),
		certRow("B", "f1", "2024/04/02 10:00:00", "00:20:00"),
		certRow("A", "f2", "2024/04/04 10:00:00", "00:01:00"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("merged rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild(t *testing.T) {
	doc, err := Build("山田", []models.CertificateRow{
		certRow("A", "f", "2024/04/01 10:00:00", "00:10:00"),
		certRow("B", "f", "2024/05/09 18:30:00", "01:00:00"),
		certRow("C", "f", "", "00:20:00"),
	}, 7200)
	require.NoError(t, err)
	assert.Equal(t, "山田", doc.Person)
	assert.Len(t, doc.Rows, 3)
	assert.Equal(t, "01:30:00", doc.TotalDuration)
	assert.Equal(t, "02:00:00", doc.TotalStandard)
	assert.Equal(t, "2024-05-09", doc.IssueDate)
}

func TestBuild_NoParseableEndTime(t *testing.T) {
	doc, err := Build("山田", []models.CertificateRow{
		certRow("A", "f", "", "00:10:00"),
		certRow("B", "f", "nan", "00:10:00"),
	}, 0)
	require.NoError(t, err)
	assert.Equal(t, IssueDateUnavailable, doc.IssueDate)

	doc, err = Build("山田", nil, 0)
	require.NoError(t, err)
	assert.Equal(t, IssueDateUnavailable, doc.IssueDate)
	assert.Equal(t, "00:00:00", doc.TotalDuration)
}

func TestBuild_TotalOutOfRange(t *testing.T) {
	_, err := Build("山田", []models.CertificateRow{
		certRow("A", "f", "", "2000000000000000:00:00"),
		certRow("B", "f", "", "2000000000000000:00:00"),
	}, 0)
	var mde *utils.MalformedDurationError
	require.True(t, errors.As(err, &mde))
	assert.Equal(t, "2000000000000000:00:00", mde.Value)
}

func TestBuild_MalformedDuration(t *testing.T) {
	_, err := Build("山田", []models.CertificateRow{certRow("A", "f", "", "ten")}, 0)
	var mde *utils.MalformedDurationError
	assert.True(t, errors.As(err, &mde))
}

func TestExcludeCompletionEntries(t *testing.T) {
	in := []models.SummaryRecord{{Content: "第1章"}, {Content: "修了証"}, {Content: "修了証の発行"}}
	got := ExcludeCompletionEntries(in, "修了証")
	require.Len(t, got, 1)
	assert.Equal(t, "第1章", got[0].Content)
	assert.Len(t, ExcludeCompletionEntries(in, ""), 3)
}

func TestPage(t *testing.T) {
	_, err := NewPage("<html></html>")
	assert.Error(t, err)
	_, err = NewPage(Placeholder + Placeholder)
	assert.Error(t, err)

	p, err := NewPage("<body>" + Placeholder + "</body>")
	require.NoError(t, err)
	doc := &models.CertificateDocument{
		Person:        "<script>x</script>",
		Rows:          []models.CertificateRow{certRow("安全衛生", "基礎", "2024/04/01 10:00:00", "00:10:00")},
		TotalDuration: "00:10:00",
		TotalStandard: "00:30:00",
		IssueDate:     "2024-04-01",
	}
	html, err := p.RenderHTML(doc, DefaultProfile())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(html, "<body>"))
	assert.NotContains(t, html, Placeholder)
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "安全衛生")
	assert.Contains(t, html, "発行日　2024-04-01")
	assert.Contains(t, html, "所要時間の合計: 00:10:00")
	assert.NotContains(t, html, "発行元団体")
}

func TestDefaultPageHasPlaceholder(t *testing.T) {
	_, err := NewPage(DefaultPage().html)
	require.NoError(t, err)
}

func TestLoadProfile(t *testing.T) {
	p, err := LoadProfile("")
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)

	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("issuer_org: 学習株式会社\ncolumns:\n  folder: Folder\n"), 0o644))
	p, err = LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "学習株式会社", p.IssuerOrg)
	assert.Equal(t, "Folder", p.Columns.Folder)
	assert.Equal(t, "修了証", p.Title)
}

type fakeRenderer struct {
	html string
	err  error
}

func (f *fakeRenderer) RenderPDF(_ context.Context, html string) ([]byte, error) {
	f.html = html
	if f.err != nil {
		return nil, f.err
	}
	return []byte("%PDF-1.4 fake"), nil
}

func TestService_Generate(t *testing.T) {
	r := &fakeRenderer{}
	svc := NewService(r, DefaultPage(), DefaultProfile(), "修了証", nil)
	summaries := []models.SummaryRecord{
		{Person: "山田", Folder: "f", Content: "A", End: "2024/04/01 10:00:00", Duration: "00:30:00", StandardDuration: "00:30:00"},
		{Person: "山田", Folder: "f", Content: "修了証", End: "2024/12/31 10:00:00", Duration: "00:00:10", StandardDuration: "00:00:00"},
	}
	pdf, doc, err := svc.Generate(context.Background(), "山田", summaries, 1800)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(pdf))
	assert.Len(t, doc.Rows, 1)
	assert.Equal(t, "2024-04-01", doc.IssueDate)
	assert.Contains(t, r.html, "山田 殿")

	r.err = errors.New("chrome crashed")
	_, doc, err = svc.Generate(context.Background(), "山田", summaries, 1800)
	assert.Error(t, err)
	assert.NotNil(t, doc)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "山田_certificate.pdf", FileName("山田"))
	assert.Equal(t, "営業部_山田_certificate.pdf", FileName("営業部/山田"))
	assert.Equal(t, ".._.._etc_evil_certificate.pdf", FileName("../../etc/evil"))
	assert.Equal(t, "__certificate.pdf", FileName(".."))
	for _, p := range []string{"../../etc/evil", "営業部/山田", ".."} {
		name := FileName(p)
		assert.Equal(t, name, filepath.Base(name), p)
	}
}
