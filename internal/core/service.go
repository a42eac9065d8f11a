package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"
	"time"

	"github.com/JonMunkholm/orderimport/internal/config"
	"github.com/JonMunkholm/orderimport/internal/logging"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// Upload rejection reasons.
var (
	ErrEmptyFile              = errors.New("empty file")
	ErrUnsupportedContentType = errors.New("unsupported content type")
	ErrFileTooLarge           = errors.New("file too large")
	ErrUnreadableFile         = errors.New("unreadable file")
	ErrUserNotFound           = errors.New("user not found")
)

// Service is the entry point used by transports: it runs uploads through
// the parser and aggregator and serves reads from the Store.
type Service struct {
	store   *Store
	limiter *UploadLimiter
	history UploadHistory
	metrics *Metrics

	maxFileSize  int64
	maxLineBytes int
	timeout      time.Duration
	contentTypes []string
	now          func() time.Time
}

// NewService wires a Service from configuration. A nil history keeps
// summaries in memory; a nil reg leaves metrics unregistered.
func NewService(cfg *config.Config, history UploadHistory, reg prometheus.Registerer) *Service {
	if history == nil {
		history = NewMemoryHistory(cfg.History.MemoryCapacity)
	}
	maxLine := cfg.Upload.MaxLineBytes
	if maxLine <= 0 {
		maxLine = MaxLineBytes
	}
	return &Service{
		store:        NewStore(),
		limiter:      NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime),
		history:      history,
		metrics:      NewMetrics(reg),
		maxFileSize:  cfg.Upload.MaxFileSize,
		maxLineBytes: maxLine,
		timeout:      cfg.Upload.Timeout,
		contentTypes: cfg.Upload.AllowedContentTypes,
		now:          time.Now,
	}
}

// UploadRequest describes a file handed over by a transport.
type UploadRequest struct {
	FileName    string
	ContentType string
	Size        int64 // -1 if unknown
	Body        io.Reader
}

// UploadResult is the outcome of a processed upload. Errors lists rejected
// lines; a result with errors is still a successful upload.
type UploadResult struct {
	UploadID  string        `json:"upload_id"`
	FileName  string        `json:"file_name"`
	Users     []User        `json:"users"`
	Errors    []string      `json:"errors"`
	LinesRead int           `json:"lines_read"`
	Duration  time.Duration `json:"-"`
}

// ProcessUpload parses the file, replaces the snapshot with the valid data
// and records the upload in history.
func (s *Service) ProcessUpload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	logger := logging.WithFields(ctx, "file_name", req.FileName)

	if err := s.checkUpload(req); err != nil {
		s.metrics.observeUpload(uploadRejected, 0)
		logger.Warn("upload rejected", "error", err)
		return nil, err
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		s.metrics.observeUpload(uploadRejected, 0)
		return nil, err
	}
	defer s.limiter.Release()

	uploadID := uuid.New().String()
	logger = logger.With("upload_id", uploadID)

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := s.now()
	body, counter := WrapForStreaming(req.Body, req.Size)
	res, err := processReader(ctx, body, s.maxLineBytes)
	duration := s.now().Sub(start)
	if err != nil {
		s.metrics.observeUpload(uploadFailed, duration)
		logger.Error("upload failed",
			"lines_read", res.LinesRead,
			"progress_pct", counter.Progress(),
			"error", err,
		)
		if ctx.Err() != nil {
			return nil, fmt.Errorf("process %s: %w", req.FileName, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadableFile, req.FileName, err)
	}
	if res.LinesRead == 0 {
		s.metrics.observeUpload(uploadRejected, duration)
		return nil, ErrEmptyFile
	}

	s.store.Save(res.Users)
	s.metrics.observeUpload(uploadOK, duration)
	s.metrics.observeLines(res)
	s.metrics.setSnapshotUsers(s.store.Len())

	summary := summarize(uploadID, req.FileName, res, duration, start)
	if err := s.history.Record(ctx, summary); err != nil {
		// History is best effort; the snapshot is already replaced.
		logger.Error("record upload history", "error", err)
	}

	logger.Info("upload processed",
		"bytes", counter.BytesRead,
		"lines", res.LinesRead,
		"users", summary.Users,
		"orders", summary.Orders,
		"products", summary.Products,
		"line_errors", summary.ErrorCount,
		"duration_ms", duration.Milliseconds(),
	)

	return &UploadResult{
		UploadID:  uploadID,
		FileName:  req.FileName,
		Users:     res.Users,
		Errors:    res.Errors,
		LinesRead: res.LinesRead,
		Duration:  duration,
	}, nil
}

func (s *Service) checkUpload(req UploadRequest) error {
	if req.Body == nil || req.Size == 0 {
		return ErrEmptyFile
	}
	if s.maxFileSize > 0 && req.Size > s.maxFileSize {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, req.Size, s.maxFileSize)
	}
	if !s.contentTypeAllowed(req.ContentType) {
		return fmt.Errorf("%w: %q", ErrUnsupportedContentType, req.ContentType)
	}
	return nil
}

// contentTypeAllowed compares media types only, so "text/plain;
// charset=utf-8" matches "text/plain". An empty allow list accepts anything.
func (s *Service) contentTypeAllowed(ct string) bool {
	if len(s.contentTypes) == 0 {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	for _, allowed := range s.contentTypes {
		if strings.EqualFold(mediaType, allowed) {
			return true
		}
	}
	return false
}

// ListUsers returns every user in the snapshot.
func (s *Service) ListUsers() []User {
	return s.store.ListAll()
}

// FindUser returns one user or ErrUserNotFound.
func (s *Service) FindUser(id int64) (User, error) {
	u, ok := s.store.FindByID(id)
	if !ok {
		return User{}, fmt.Errorf("%w: %d", ErrUserNotFound, id)
	}
	return u, nil
}

// QueryOrders validates f and filters the snapshot with it.
func (s *Service) QueryOrders(f OrderFilter) ([]User, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.store.Query(f), nil
}

// SortedUsers returns the snapshot sorted by key and direction.
func (s *Service) SortedUsers(key, dir string) []User {
	return s.store.SortedUsers(key, dir)
}

// Clear empties the snapshot. Upload history is kept.
func (s *Service) Clear(ctx context.Context) {
	s.store.Clear()
	s.metrics.setSnapshotUsers(0)
	logging.FromContext(ctx).Info("snapshot cleared")
}

// RecentUploads lists upload summaries, newest first.
func (s *Service) RecentUploads(ctx context.Context, limit int) ([]UploadSummary, error) {
	uploads, err := s.history.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}
	return uploads, nil
}

// Status is a summary of the service state for monitoring.
type Status struct {
	SnapshotUsers int                 `json:"snapshot_users"`
	Uploads       UploadLimiterStatus `json:"uploads"`
}

// Status reports the snapshot size and limiter usage.
func (s *Service) Status() Status {
	return Status{SnapshotUsers: s.store.Len(), Uploads: s.limiter.Status()}
}

// WaitForUploads blocks until in-flight uploads finish or ctx is done.
func (s *Service) WaitForUploads(ctx context.Context) error {
	active := s.limiter.ActiveCount()
	if active == 0 {
		return nil
	}
	slog.Info("waiting for uploads to complete", "active", active)
	return s.limiter.WaitForDrain(ctx)
}
