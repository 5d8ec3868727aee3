package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-reg-api/internal/models"
	appErrors "github.com/noah-isme/course-reg-api/pkg/errors"
	"github.com/noah-isme/course-reg-api/pkg/export"
	"github.com/noah-isme/course-reg-api/pkg/jobs"
	"github.com/noah-isme/course-reg-api/pkg/storage"
)

type fileStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type courseTableReader interface {
	GetCourseTable(ctx context.Context, studentID string, date time.Time) (*models.CourseTable, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders a student's weekly course table to CSV or PDF
// asynchronously: requests are queued, a worker renders the file into the
// export storage, and completed jobs expose a signed download URL.
type ExportService struct {
	tables  courseTableReader
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	signer  *storage.SignedURLSigner
	logger  *zap.Logger
	cfg     ExportConfig

	queue *jobs.Queue

	mu       sync.RWMutex
	registry map[string]*models.ExportJob
}

// NewExportService constructs an ExportService and its worker queue. Start
// must be called before requests are accepted.
func NewExportService(tables courseTableReader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, queueCfg jobs.QueueConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	s := &ExportService{
		tables:   tables,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		registry: make(map[string]*models.ExportJob),
	}
	queueCfg.Logger = logger
	s.queue = jobs.NewQueue("course-table-exports", s.handleJob, queueCfg)
	return s
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) {
	s.queue.Start(ctx)
}

// Stop drains the worker pool.
func (s *ExportService) Stop() {
	s.queue.Stop()
}

// RequestExport queues a new export job for the student's week of date.
func (s *ExportService) RequestExport(ctx context.Context, studentID string, date time.Time, format models.ExportFormat) (*models.ExportJob, error) {
	switch format {
	case models.ExportFormatCSV, models.ExportFormatPDF:
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	now := time.Now().UTC()
	job := &models.ExportJob{
		ID:        uuid.NewString(),
		StudentID: studentID,
		Date:      date,
		Format:    format,
		Status:    models.ExportStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.registry[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: "course_table_export"}); err != nil {
		s.setFailed(job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return s.snapshot(job.ID), nil
}

// GetJob returns the current state of an export job.
func (s *ExportService) GetJob(id string) (*models.ExportJob, error) {
	job := s.snapshot(id)
	if job == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return job, nil
}

// Resolve validates a signed token and opens the exported file.
func (s *ExportService) Resolve(token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download token")
	}
	job := s.snapshot(jobID)
	if job == nil || job.Status != models.ExportStatusDone {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not available")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, relPath, nil
}

// CleanupExpired removes export files older than the result TTL.
func (s *ExportService) CleanupExpired() {
	deleted, err := s.storage.CleanupOlderThan(s.cfg.ResultTTL)
	if err != nil {
		s.logger.Warn("export cleanup failed", zap.Error(err))
		return
	}
	if len(deleted) > 0 {
		s.logger.Sugar().Infow("export cleanup", "deleted", len(deleted))
	}
}

func (s *ExportService) handleJob(ctx context.Context, job jobs.Job) error {
	stored := s.snapshot(job.ID)
	if stored == nil {
		return fmt.Errorf("unknown export job %s", job.ID)
	}
	s.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusRunning
	})

	table, err := s.tables.GetCourseTable(ctx, stored.StudentID, stored.Date)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	dataset := timetableDataset(table)
	title := fmt.Sprintf("Course table, week of %s", table.WeekStart.Format("2006-01-02"))

	var payload []byte
	switch stored.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", stored.Format)
	}
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	filename := fmt.Sprintf("course_tables/%s_%s.%s", stored.StudentID, table.WeekStart.Format("20060102"), strings.ToLower(string(stored.Format)))
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}

	token, expiresAt, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.setFailed(job.ID, err)
		return err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	url := fmt.Sprintf("%s/exports/download/%s", prefix, token)

	s.update(job.ID, func(j *models.ExportJob) {
		j.Status = models.ExportStatusDone
		j.FilePath = relPath
		j.Token = token
		j.URL = url
		j.ExpiresAt = &expiresAt
	})
	return nil
}

func (s *ExportService) snapshot(id string) *models.ExportJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.registry[id]
	if !ok {
		return nil
	}
	copied := *job
	return &copied
}

func (s *ExportService) update(id string, fn func(*models.ExportJob)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.registry[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now().UTC()
	}
}

func (s *ExportService) setFailed(id string, err error) {
	s.update(id, func(j *models.ExportJob) {
		j.Status = models.ExportStatusFailed
		j.Error = err.Error()
	})
}

// timetableDataset flattens a weekly table into Day/Course/Slots rows.
func timetableDataset(table *models.CourseTable) export.Dataset {
	headers := []string{"Day", "Course", "Instructor", "Slots", "Location"}
	var rows []map[string]string
	for day := models.Monday; day <= models.Sunday; day++ {
		for _, entry := range table.Days[day] {
			rows = append(rows, map[string]string{
				"Day":        day.String(),
				"Course":     entry.CourseFullName,
				"Instructor": entry.Instructor,
				"Slots":      fmt.Sprintf("%d-%d", entry.StartSlot, entry.StartSlot+entry.SlotCount-1),
				"Location":   entry.Location,
			})
		}
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
