package registry

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/mkoziy/genome/monitor/internal/report"
)

// SaveSnapshot persists a quality report as a new snapshot and returns it.
func SaveSnapshot(ctx context.Context, db *bun.DB, source string, rep *report.Report) (*Snapshot, error) {
	snap := &Snapshot{
		SnapshotID:   uuid.NewString(),
		Source:       source,
		RowCount:     rep.Metrics.RowCount,
		QualityScore: rep.Score.Value,
		Report:       ReportPayload{Report: *rep},
		GeneratedAt:  rep.Metrics.GeneratedAt,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := db.NewInsert().Model(snap).Exec(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// LatestSnapshot returns the most recent snapshot for a source, or nil when
// no snapshot has been stored yet.
func LatestSnapshot(ctx context.Context, db *bun.DB, source string) (*Snapshot, error) {
	snap := new(Snapshot)
	err := db.NewSelect().
		Model(snap).
		Where("source = ?", source).
		OrderExpr("generated_at DESC, id DESC").
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListSnapshots returns snapshots for a source, newest first.
func ListSnapshots(ctx context.Context, db *bun.DB, source string, limit int) ([]*Snapshot, error) {
	var snaps []*Snapshot
	err := db.NewSelect().
		Model(&snaps).
		Where("source = ?", source).
		OrderExpr("generated_at DESC, id DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return snaps, nil
}
