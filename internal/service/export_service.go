package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/grid"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Read(filename string) ([]byte, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type workspaceSnapshotter interface {
	Snapshot(ctx context.Context, id string) (grid.Snapshot, string, error)
}

type sheetRenderer interface {
	RenderSheet(sheet export.Sheet) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	DayLabels []string
	ResultTTL time.Duration
}

// ExportService renders workspace grids to files and hands out signed download links.
type ExportService struct {
	workspaces workspaceSnapshotter
	storage    fileStorage
	signer     *storage.SignedURLSigner
	renderers  map[models.ExportFormat]sheetRenderer
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        ExportConfig
}

var defaultDayLabels = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

var exportContentTypes = map[models.ExportFormat]string{
	models.ExportFormatPDF:  "application/pdf",
	models.ExportFormatXLSX: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	models.ExportFormatCSV:  "text/csv",
}

// NewExportService constructs an ExportService.
func NewExportService(workspaces workspaceSnapshotter, files fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if len(cfg.DayLabels) < grid.DayRows {
		cfg.DayLabels = defaultDayLabels
	}
	return &ExportService{
		workspaces: workspaces,
		storage:    files,
		signer:     signer,
		renderers: map[models.ExportFormat]sheetRenderer{
			models.ExportFormatPDF:  export.NewPDFExporter(),
			models.ExportFormatXLSX: export.NewXLSXExporter(),
			models.ExportFormatCSV:  export.NewCSVExporter(),
		},
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Export renders a workspace and stores the file, returning a signed link.
func (s *ExportService) Export(ctx context.Context, workspaceID string, req dto.ExportRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid export payload")
	}
	snap, name, err := s.workspaces.Snapshot(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = name
	}
	sheet, err := s.BuildSheet(snap, title, req.ClassTag)
	if err != nil {
		return nil, err
	}

	payload, err := s.renderers[req.Format].RenderSheet(sheet)
	if err != nil {
		return nil, internalError(err, "failed to render timetable")
	}

	exportID := uuid.NewString()
	relPath, err := s.storage.Save(fmt.Sprintf("timetables/%s.%s", exportID, req.Format), payload)
	if err != nil {
		return nil, internalError(err, "failed to store export")
	}
	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, internalError(err, "failed to sign export link")
	}

	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	s.logger.Info("timetable exported",
		zap.String("workspace_id", workspaceID),
		zap.String("export_id", exportID),
		zap.String("format", string(req.Format)),
		zap.Int("bytes", len(payload)),
	)
	return &dto.ExportResponse{
		ID:        exportID,
		Filename:  downloadName(title, req.Format),
		URL:       fmt.Sprintf("%s/export/%s", prefix, token),
		ExpiresAt: expiresAt,
	}, nil
}

// Download validates a token and returns the stored file.
func (s *ExportService) Download(ctx context.Context, token string) (*dto.ExportFile, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Clone(appErrors.ErrLinkExpired, "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "download not found")
	}
	body, err := s.storage.Read(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "download not found")
		}
		return nil, internalError(err, "failed to read export")
	}
	format := models.ExportFormat(strings.TrimPrefix(path.Ext(relPath), "."))
	return &dto.ExportFile{
		Filename:    path.Base(relPath),
		ContentType: exportContentTypes[format],
		Body:        body,
	}, nil
}

// Cleanup removes stored exports older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

// BuildSheet lays a snapshot out for printing. With a class tag only cells
// carrying that tag keep their text; merged regions are always drawn.
func (s *ExportService) BuildSheet(snap grid.Snapshot, title, classTag string) (export.Sheet, error) {
	state, err := grid.FromSnapshot(snap)
	if err != nil {
		return export.Sheet{}, appErrors.Wrap(err, appErrors.ErrInvalidSnapshot.Code, appErrors.ErrInvalidSnapshot.Status, "workspace grid is invalid")
	}
	classTag = strings.TrimSpace(classTag)

	sheet := export.Sheet{
		Title:        title,
		RowLabels:    s.cfg.DayLabels[:grid.DayRows],
		ColumnLabels: state.TimeLabels(),
	}
	for _, c := range state.AddressableCells() {
		cell := export.SheetCell{Row: c.Row, Col: c.Col, RowSpan: 1, ColSpan: 1}
		span, merged := state.MergeAt(c)
		if merged {
			cell.RowSpan, cell.ColSpan = span.RowSpan, span.ColSpan
		}
		content, hasContent := state.Content(c)
		if hasContent && (classTag == "" || strings.EqualFold(content.ClassTag, classTag)) {
			cell.Text = content.Text
			cell.Align = string(content.Alignment)
			cell.Vertical = content.IsVertical
		}
		if cell.Text == "" && !merged {
			continue
		}
		sheet.Cells = append(sheet.Cells, cell)
	}
	return sheet, nil
}

func downloadName(title string, format models.ExportFormat) string {
	name := sanitizeFilename(title)
	return fmt.Sprintf("%s_%s.%s", name, time.Now().UTC().Format("20060102"), format)
}

func sanitizeFilename(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return "timetable"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "__", "_")
	result := replacer.Replace(strings.TrimSpace(raw))
	if len(result) > 100 {
		return result[:100]
	}
	return result
}
