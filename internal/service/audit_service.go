package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ouerghi-selim/merelformation-api/internal/models"
	appErrors "github.com/ouerghi-selim/merelformation-api/pkg/errors"
	"github.com/ouerghi-selim/merelformation-api/pkg/export"
	"github.com/ouerghi-selim/merelformation-api/pkg/storage"
)

// ExportFormat selects the rendering of an audit trail export.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type auditListRepository interface {
	List(ctx context.Context, filter models.StatusAuditFilter) ([]models.StatusAudit, int, error)
}

type exportStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// AuditExportResult captures successful export generation metadata.
type AuditExportResult struct {
	RelativePath string       `json:"-"`
	Token        string       `json:"token"`
	URL          string       `json:"url"`
	Format       ExportFormat `json:"format"`
	ExpiresAt    time.Time    `json:"expires_at"`
}

// AuditService serves the transition audit trail and its file exports.
type AuditService struct {
	repo      auditListRepository
	storage   exportStorage
	csv       csvRenderer
	pdf       pdfRenderer
	signer    *storage.SignedURLSigner
	apiPrefix string
	logger    *zap.Logger
}

// NewAuditService constructs AuditService.
func NewAuditService(repo auditListRepository, files exportStorage, signer *storage.SignedURLSigner, apiPrefix string, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		repo:      repo,
		storage:   files,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		apiPrefix: apiPrefix,
		logger:    logger,
	}
}

// List returns audit rows with pagination metadata.
func (s *AuditService) List(ctx context.Context, filter models.StatusAuditFilter) ([]models.StatusAudit, *models.Pagination, error) {
	audits, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list status audits")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return audits, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Export renders the filtered audit trail to a stored file and returns a
// signed download link.
func (s *AuditService) Export(ctx context.Context, filter models.StatusAuditFilter, format ExportFormat) (*AuditExportResult, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	// Exports ignore pagination and dump the whole filtered trail.
	filter.Page = 1
	filter.PageSize = 200
	var rows []models.StatusAudit
	for {
		batch, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to collect audit rows")
		}
		rows = append(rows, batch...)
		if len(rows) >= total || len(batch) == 0 {
			break
		}
		filter.Page++
	}

	dataset := buildAuditDataset(rows)
	var payload []byte
	var err error
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Status transition audit")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("audit_%s_%s.%s", time.Now().UTC().Format("20060102_150405"), exportID[:8], format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export link")
	}
	prefix := strings.TrimRight(s.apiPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}

	s.logger.Info("audit export generated",
		zap.String("export_id", exportID),
		zap.String("format", string(format)),
		zap.Int("rows", len(rows)))
	return &AuditExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          fmt.Sprintf("%s/admin/audits/export/%s", prefix, token),
		Format:       format,
		ExpiresAt:    expiresAt,
	}, nil
}

// OpenExport validates a download token and opens the stored file.
func (s *AuditService) OpenExport(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export file no longer available")
	}
	return file, nil
}

// CleanupExports removes export files older than ttl.
func (s *AuditService) CleanupExports(ttl time.Duration) ([]string, error) {
	return s.storage.CleanupOlderThan(ttl)
}

func buildAuditDataset(rows []models.StatusAudit) export.Dataset {
	headers := []string{"Date", "Workflow", "Entity ID", "From", "To", "Actor", "Template", "Notified"}
	dataRows := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		template := ""
		if row.TemplateKey != nil {
			template = *row.TemplateKey
		}
		dataRows = append(dataRows, map[string]string{
			"Date":      row.CreatedAt.UTC().Format(time.RFC3339),
			"Workflow":  string(row.Workflow),
			"Entity ID": row.EntityID,
			"From":      string(row.OldStatus),
			"To":        string(row.NewStatus),
			"Actor":     row.Actor,
			"Template":  template,
			"Notified":  fmt.Sprintf("%t", row.Notified),
		})
	}
	return export.Dataset{Headers: headers, Rows: dataRows}
}
