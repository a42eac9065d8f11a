package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/JonMunkholm/orderimport/internal/core"
	"github.com/go-chi/chi/v5"
)

// multipartOverhead is allowed on top of the file size for form boundaries
// and headers.
const multipartOverhead = 1 << 20

// uploadResponse is the JSON body returned by POST /api/upload.
type uploadResponse struct {
	UploadID   string      `json:"upload_id"`
	FileName   string      `json:"file_name"`
	Users      []core.User `json:"users"`
	Errors     []string    `json:"errors"`
	LinesRead  int         `json:"lines_read"`
	DurationMS int64       `json:"duration_ms"`
}

// handleUpload parses a multipart upload and replaces the snapshot with its
// valid records. Line errors are part of a successful response.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			respondError(w, r, core.ErrFileTooLarge)
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			respondError(w, r, errNoFile)
		default:
			respondError(w, r, errors.Join(errNoFile, err))
		}
		return
	}
	defer file.Close()

	result, err := s.service.ProcessUpload(r.Context(), core.UploadRequest{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		UploadID:   result.UploadID,
		FileName:   result.FileName,
		Users:      result.Users,
		Errors:     result.Errors,
		LinesRead:  result.LinesRead,
		DurationMS: result.Duration.Milliseconds(),
	})
}

// handleQueryOrders filters orders by orderId, startDate and endDate.
func (s *Server) handleQueryOrders(w http.ResponseWriter, r *http.Request) {
	filter, err := parseOrderFilter(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	users, err := s.service.QueryOrders(filter)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// handleListUsers returns the snapshot, sorted when a sort key is given.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if key := q.Get("sort"); key != "" {
		writeJSON(w, http.StatusOK, s.service.SortedUsers(key, q.Get("dir")))
		return
	}
	writeJSON(w, http.StatusOK, s.service.ListUsers())
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := parseID("userID", chi.URLParam(r, "userID"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	user, err := s.service.FindUser(id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.service.Clear(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// maxUploadsLimit caps the page size of GET /api/uploads.
const maxUploadsLimit = 500

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	limit := parseIntParam(r, "limit", s.cfg.History.DefaultLimit)
	if limit > maxUploadsLimit {
		limit = maxUploadsLimit
	}

	uploads, err := s.service.RecentUploads(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, uploads)
}

// handleStatus reports snapshot size and upload slot usage for monitoring.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Status())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
