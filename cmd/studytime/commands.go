package main

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aura-webinar/studytime/internal/app"
	"github.com/aura-webinar/studytime/internal/browse"
	"github.com/aura-webinar/studytime/internal/certificate"
	"github.com/aura-webinar/studytime/internal/export"
	"github.com/aura-webinar/studytime/internal/ingest"
	"github.com/aura-webinar/studytime/internal/models"
	"github.com/aura-webinar/studytime/internal/reconcile"
	"github.com/aura-webinar/studytime/pkg/storage"
)

// certificateConcurrency bounds parallel renders for --all; each one holds a browser page.
const certificateConcurrency = 2

// newRenderer starts the PDF renderer. The returned func releases it.
var newRenderer = func() (certificate.PDFRenderer, func()) {
	r := app.NewRodRenderer(cfg.Renderer, logger)
	return r, r.Close
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// loadBatch parses --records against --standard-times.
func loadBatch(ctx context.Context) (*models.Batch, reconcile.Rules, error) {
	rules, err := cfg.Rules.Engine()
	if err != nil {
		return nil, reconcile.Rules{}, err
	}
	batch, err := app.NewLoader(cfg.Ingest, rules, logger).Load(ctx, recordsPath, standardTimes)
	if err != nil {
		return nil, reconcile.Rules{}, err
	}
	return batch, rules, nil
}

// filteredRequest builds a request carrying the --person and --mark filters.
func filteredRequest(batch *models.Batch, rules reconcile.Rules) (reconcile.Request, error) {
	req := reconcile.NewRequest(batch)
	req.Rules = rules
	req.Person = strings.TrimSpace(person)
	if m := strings.TrimSpace(mark); m != "" && m != "all" {
		parsed, err := models.ParseMark(m)
		if err != nil {
			return reconcile.Request{}, &reconcile.FilterError{Field: "mark", Value: m, Err: err}
		}
		req.Mark = &parsed
	}
	return req, nil
}

// newSink returns a sink for target. S3 is set up only when a target or the config needs it.
func newSink(ctx context.Context, target string) (*export.Sink, error) {
	var store export.ObjectStore
	if storage.IsURI(target) || cfg.AWS.Enabled() {
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			CertificatesBucket:   cfg.AWS.CertificatesBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		store = s3Client
	}
	return export.NewSink(store, stdout, logger), nil
}

func newCertificateService() (*certificate.Service, func(), error) {
	renderer, release := newRenderer()
	svc, err := app.NewCertificateService(cfg, renderer, logger)
	if err != nil {
		release()
		return nil, nil, err
	}
	return svc, release, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	batch, rules, err := loadBatch(commandContext(cmd))
	if err != nil {
		return err
	}
	req, err := filteredRequest(batch, rules)
	if err != nil {
		return err
	}
	res, err := reconcile.Reconcile(req)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	fmt.Fprintln(stdout, renderSummaries(res.Summaries, rules))
	fmt.Fprintln(stdout, renderFooter(res))
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if _, err := export.ParseDestination(exportOut); err != nil {
		return err
	}
	batch, rules, err := loadBatch(ctx)
	if err != nil {
		return err
	}
	req, err := filteredRequest(batch, rules)
	if err != nil {
		return err
	}
	res, err := reconcile.Reconcile(req)
	if err != nil {
		return err
	}
	data, err := export.CSV(res.Summaries)
	if err != nil {
		return err
	}
	sink, err := newSink(ctx, exportOut)
	if err != nil {
		return err
	}
	return sink.Write(ctx, exportOut, export.ContentTypeCSV, data)
}

func runCertificate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	if !allPersons && strings.TrimSpace(person) == "" {
		return &reconcile.FilterError{Field: "person", Err: fmt.Errorf("--person or --all is required")}
	}
	batch, rules, err := loadBatch(ctx)
	if err != nil {
		return err
	}

	svc, release, err := newCertificateService()
	if err != nil {
		return err
	}
	defer release()

	if !allPersons {
		target := certOut
		if target == "" {
			target = certificate.FileName(strings.TrimSpace(person))
		}
		sink, err := newSink(ctx, target)
		if err != nil {
			return err
		}
		return writeCertificate(ctx, svc, sink, batch, rules, strings.TrimSpace(person), target)
	}

	sink, err := newSink(ctx, outDir)
	if err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(certificateConcurrency)
	for _, p := range reconcile.Persons(batch.Records) {
		target := joinTarget(outDir, certificate.FileName(p))
		g.Go(func() error {
			return writeCertificate(gctx, svc, sink, batch, rules, p, target)
		})
	}
	return g.Wait()
}

// joinTarget places name under dir, which may be a local directory or an s3:// prefix.
func joinTarget(dir, name string) string {
	if storage.IsURI(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

// writeCertificate reconciles one person without a mark filter and saves the rendered PDF.
func writeCertificate(ctx context.Context, svc *certificate.Service, sink *export.Sink, batch *models.Batch, rules reconcile.Rules, who, target string) error {
	req := reconcile.NewRequest(batch)
	req.Rules = rules
	req.Person = who
	res, err := reconcile.Reconcile(req)
	if err != nil {
		return err
	}
	if len(res.Summaries) == 0 {
		return &reconcile.FilterError{Field: "person", Value: who, Err: fmt.Errorf("no records")}
	}
	pdf, _, err := svc.Generate(ctx, who, res.Summaries, res.TotalStandardSeconds)
	if err != nil {
		return err
	}
	if err := sink.Write(ctx, target, storage.ContentTypePDF, pdf); err != nil {
		return err
	}
	logger.Debug("certificate saved", zap.String("person", who), zap.String("target", target))
	return nil
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	batch, rules, err := loadBatch(ctx)
	if err != nil {
		return err
	}
	svc, release, err := newCertificateService()
	if err != nil {
		return err
	}
	defer release()
	sink, err := newSink(ctx, "")
	if err != nil {
		return err
	}

	m := browse.New(ctx, batch, rules, browse.Saver{Sink: sink, Certificates: svc})
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

func runTables(cmd *cobra.Command, args []string) error {
	names, err := ingest.NewStandardTables(cfg.Ingest.StandardTimesDir).List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(stdout, "no standard-time tables in %s\n", cfg.Ingest.StandardTimesDir)
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(stdout, n)
	}
	return nil
}
