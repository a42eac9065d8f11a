package core

import (
	"context"
	"fmt"
	"time"

	db "github.com/JonMunkholm/orderimport/internal/database"
)

// PostgresHistory persists upload summaries in the order_uploads table so
// they survive restarts. The snapshot itself is never persisted.
type PostgresHistory struct {
	dbtx db.DBTX
}

// NewPostgresHistory returns a history backed by dbtx, typically a
// *pgxpool.Pool. The table must exist; see database.Migrate.
func NewPostgresHistory(dbtx db.DBTX) *PostgresHistory {
	return &PostgresHistory{dbtx: dbtx}
}

// Record inserts one summary.
func (h *PostgresHistory) Record(ctx context.Context, s UploadSummary) error {
	id := ToPgUUID(s.UploadID)
	if !id.Valid {
		return fmt.Errorf("record upload: invalid upload id %q", s.UploadID)
	}

	err := db.New(h.dbtx).InsertOrderUpload(ctx, db.InsertOrderUploadParams{
		UploadID:   id,
		FileName:   s.FileName,
		LinesRead:  clampInt32(s.LinesRead),
		Users:      clampInt32(s.Users),
		Orders:     clampInt32(s.Orders),
		Products:   clampInt32(s.Products),
		ErrorCount: clampInt32(s.ErrorCount),
		DurationNs: int64(s.Duration),
		UploadedAt: ToPgTimestamptz(s.UploadedAt),
	})
	if err != nil {
		return fmt.Errorf("record upload %s: %w", s.UploadID, err)
	}
	return nil
}

// Recent returns up to limit summaries, newest first. A non-positive limit
// returns all of them.
func (h *PostgresHistory) Recent(ctx context.Context, limit int) ([]UploadSummary, error) {
	var (
		rows []db.OrderUpload
		err  error
	)
	q := db.New(h.dbtx)
	if limit > 0 {
		rows, err = q.ListRecentOrderUploads(ctx, clampInt32(limit))
	} else {
		rows, err = q.ListOrderUploads(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("list uploads: %w", err)
	}

	out := make([]UploadSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, uploadRowToSummary(r))
	}
	return out, nil
}

// Prune deletes summaries uploaded before the cutoff.
func (h *PostgresHistory) Prune(ctx context.Context, before time.Time) (int64, error) {
	n, err := db.New(h.dbtx).DeleteOrderUploadsBefore(ctx, ToPgTimestamptz(before))
	if err != nil {
		return 0, fmt.Errorf("prune uploads: %w", err)
	}
	return n, nil
}

func uploadRowToSummary(r db.OrderUpload) UploadSummary {
	return UploadSummary{
		UploadID:   PgUUIDToString(r.UploadID),
		FileName:   r.FileName,
		LinesRead:  int(r.LinesRead),
		Users:      int(r.Users),
		Orders:     int(r.Orders),
		Products:   int(r.Products),
		ErrorCount: int(r.ErrorCount),
		Duration:   time.Duration(r.DurationNs),
		UploadedAt: r.UploadedAt.Time,
	}
}
