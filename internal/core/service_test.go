package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/JonMunkholm/orderimport/internal/config"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Upload: config.UploadConfig{
			MaxFileSize:         1 << 20,
			MaxLineBytes:        1024,
			MaxConcurrent:       2,
			MaxWaitTime:         20 * time.Millisecond,
			Timeout:             time.Minute,
			AllowedContentTypes: []string{"text/plain"},
		},
		History: config.HistoryConfig{MemoryCapacity: 10, DefaultLimit: 5},
	}
}

func textUpload(name, body string) UploadRequest {
	return UploadRequest{
		FileName:    name,
		ContentType: "text/plain",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

const sampleFile = "" +
	"0000000070                              Palmer Prosacco00000007530000000003     1836.7420210308\n" +
	"0000000075                                  Bobbie Batz00000007980000000002     1578.5720211116\n" +
	"0000000070                              Palmer Prosacco00000007530000000004      618.7920210308\n" +
	"broken line\n"

func TestService_ProcessUpload(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	ctx := context.Background()

	res, err := svc.ProcessUpload(ctx, textUpload("orders.txt", sampleFile))
	require.NoError(t, err)

	assert.NotEmpty(t, res.UploadID)
	assert.Equal(t, "orders.txt", res.FileName)
	assert.Equal(t, 4, res.LinesRead)
	assert.Equal(t, []string{"Line 4: line too short: got 11, expected 95"}, res.Errors)
	require.Len(t, res.Users, 2)
	assert.Equal(t, "Palmer Prosacco", res.Users[0].Name)
	require.Len(t, res.Users[0].Orders, 1)
	assert.Equal(t, "2455.53", res.Users[0].Orders[0].Total().StringFixed(2))

	assert.Len(t, svc.ListUsers(), 2)
	u, err := svc.FindUser(75)
	require.NoError(t, err)
	assert.Equal(t, "Bobbie Batz", u.Name)

	uploads, err := svc.RecentUploads(ctx, 0)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, res.UploadID, uploads[0].UploadID)
	assert.Equal(t, 3, uploads[0].Products)
	assert.Equal(t, 1, uploads[0].ErrorCount)
}

func TestService_ProcessUpload_ReplacesSnapshot(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	ctx := context.Background()

	_, err := svc.ProcessUpload(ctx, textUpload("a.txt", sampleFile))
	require.NoError(t, err)

	second := makeLine("9", "Zed", "1", "1", "1.00", "20240101") + "\n"
	_, err = svc.ProcessUpload(ctx, textUpload("b.txt", second))
	require.NoError(t, err)

	users := svc.ListUsers()
	require.Len(t, users, 1)
	assert.Equal(t, int64(9), users[0].ID)
}

func TestService_ProcessUpload_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		req     UploadRequest
		wantErr error
	}{
		{
			name:    "zero size",
			req:     UploadRequest{FileName: "a.txt", ContentType: "text/plain", Size: 0, Body: strings.NewReader("")},
			wantErr: ErrEmptyFile,
		},
		{
			name:    "nil body",
			req:     UploadRequest{FileName: "a.txt", ContentType: "text/plain", Size: 10},
			wantErr: ErrEmptyFile,
		},
		{
			name:    "unknown size and no content",
			req:     UploadRequest{FileName: "a.txt", ContentType: "text/plain", Size: -1, Body: strings.NewReader("")},
			wantErr: ErrEmptyFile,
		},
		{
			name:    "wrong content type",
			req:     UploadRequest{FileName: "a.png", ContentType: "image/png", Size: 10, Body: strings.NewReader("0123456789")},
			wantErr: ErrUnsupportedContentType,
		},
		{
			name:    "missing content type",
			req:     UploadRequest{FileName: "a", Size: 10, Body: strings.NewReader("0123456789")},
			wantErr: ErrUnsupportedContentType,
		},
		{
			name:    "too large",
			req:     UploadRequest{FileName: "big.txt", ContentType: "text/plain", Size: 2 << 20, Body: strings.NewReader("x")},
			wantErr: ErrFileTooLarge,
		},
		{
			name: "body fails while reading",
			req: UploadRequest{
				FileName: "broken.txt", ContentType: "text/plain", Size: 10,
				Body: iotest.ErrReader(errors.New("unexpected EOF from client")),
			},
			wantErr: ErrUnreadableFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(testConfig(), nil, nil)

			res, err := svc.ProcessUpload(context.Background(), tt.req)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)

			uploads, _ := svc.RecentUploads(context.Background(), 0)
			assert.Empty(t, uploads)
		})
	}
}

func TestService_ProcessUpload_ContentTypeParameters(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	req := textUpload("orders.txt", sampleFile)
	req.ContentType = "Text/Plain; charset=utf-8"

	_, err := svc.ProcessUpload(context.Background(), req)
	assert.NoError(t, err)
}

func TestService_ProcessUpload_AnyContentTypeWhenUnrestricted(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.AllowedContentTypes = nil
	svc := NewService(cfg, nil, nil)
	req := textUpload("orders.dat", sampleFile)
	req.ContentType = "application/octet-stream"

	_, err := svc.ProcessUpload(context.Background(), req)
	assert.NoError(t, err)
}

func TestService_ProcessUpload_Busy(t *testing.T) {
	cfg := testConfig()
	cfg.Upload.MaxConcurrent = 1
	svc := NewService(cfg, nil, nil)
	require.True(t, svc.limiter.TryAcquire())
	defer svc.limiter.Release()

	_, err := svc.ProcessUpload(context.Background(), textUpload("orders.txt", sampleFile))
	assert.ErrorIs(t, err, ErrTooManyUploads)
	assert.Equal(t, 1, svc.Status().Uploads.Active)
}

type failingHistory struct{ err error }

func (f failingHistory) Record(context.Context, UploadSummary) error { return f.err }
func (f failingHistory) Recent(context.Context, int) ([]UploadSummary, error) {
	return nil, f.err
}

func TestService_HistoryFailureDoesNotFailUpload(t *testing.T) {
	hist := failingHistory{err: errors.New("connection refused")}
	svc := NewService(testConfig(), hist, nil)

	res, err := svc.ProcessUpload(context.Background(), textUpload("orders.txt", sampleFile))
	require.NoError(t, err)
	assert.Len(t, res.Users, 2)
	assert.Len(t, svc.ListUsers(), 2)

	_, err = svc.RecentUploads(context.Background(), 5)
	assert.ErrorIs(t, err, hist.err)
}

func TestService_QueryOrders(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	_, err := svc.ProcessUpload(context.Background(), textUpload("orders.txt", sampleFile))
	require.NoError(t, err)

	id := int64(798)
	users, err := svc.QueryOrders(OrderFilter{OrderID: &id})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(75), users[0].ID)

	_, err = svc.QueryOrders(OrderFilter{Start: ptr(date(2021, 12, 1)), End: ptr(date(2021, 1, 1))})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestService_FindUserNotFound(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)

	_, err := svc.FindUser(1)
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.FindUser(0)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_ClearKeepsHistory(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	ctx := context.Background()
	_, err := svc.ProcessUpload(ctx, textUpload("orders.txt", sampleFile))
	require.NoError(t, err)

	svc.Clear(ctx)

	assert.Empty(t, svc.ListUsers())
	assert.Equal(t, 0, svc.Status().SnapshotUsers)
	assert.Equal(t, 0.0, testutil.ToFloat64(svc.metrics.snapshotUsers))
	uploads, err := svc.RecentUploads(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, uploads, 1)
}

func TestService_SortedUsers(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	_, err := svc.ProcessUpload(context.Background(), textUpload("orders.txt", sampleFile))
	require.NoError(t, err)

	assert.Equal(t, []int64{75, 70}, ids(svc.SortedUsers("id", "desc")))
	assert.Equal(t, []int64{75, 70}, ids(svc.SortedUsers("name", "asc")))
}

func TestService_WaitForUploads(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	assert.NoError(t, svc.WaitForUploads(context.Background()))

	require.True(t, svc.limiter.TryAcquire())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.WaitForUploads(ctx), context.DeadlineExceeded)
	svc.limiter.Release()
}

func TestService_ProcessUpload_LineTooLongIsLineError(t *testing.T) {
	svc := NewService(testConfig(), nil, nil)
	body := makeLine("1", "Ann", "10", "100", "1.00", "20240101") + "\n" +
		strings.Repeat("x", 4096) + "\n" +
		makeLine("2", "Bob", "20", "200", "2.00", "20240101") + "\n"

	res, err := svc.ProcessUpload(context.Background(), textUpload("long.txt", body))
	require.NoError(t, err)
	assert.Equal(t, 3, res.LinesRead)
	assert.Equal(t, []string{"Line 2: line too long: exceeds 1024 bytes"}, res.Errors)
	assert.Equal(t, []int64{1, 2}, ids(svc.ListUsers()))
}

func TestService_ProcessUpload_ReadFailureLogsProgress(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	first := makeLine("1", "Ann", "10", "100", "1.00", "20240101") + "\n"
	req := UploadRequest{
		FileName:    "broken.txt",
		ContentType: "text/plain",
		Size:        int64(len(first) * 4),
		Body:        io.MultiReader(strings.NewReader(first), iotest.ErrReader(errors.New("client went away"))),
	}

	svc := NewService(testConfig(), nil, nil)
	_, err := svc.ProcessUpload(context.Background(), req)
	require.ErrorIs(t, err, ErrUnreadableFile)

	assert.Contains(t, buf.String(), `"progress_pct":25`)
	assert.Empty(t, svc.ListUsers())
}
