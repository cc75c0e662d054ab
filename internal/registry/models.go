package registry

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/uptrace/bun"

	"github.com/mkoziy/genome/monitor/internal/report"
)

// Snapshot is one stored quality report for a dataset release. The latest
// snapshot per source is the drift baseline for the next run.
type Snapshot struct {
	bun.BaseModel `bun:"table:quality_snapshots,alias:qs"`

	ID           int64         `bun:"id,pk,autoincrement" json:"id"`
	SnapshotID   string        `bun:"snapshot_id,unique,notnull" json:"snapshot_id"`
	Source       string        `bun:"source,notnull" json:"source"`
	RowCount     int           `bun:"row_count,notnull" json:"row_count"`
	QualityScore float64       `bun:"quality_score,notnull" json:"quality_score"`
	Report       ReportPayload `bun:"report,type:json,notnull" json:"report"`
	GeneratedAt  time.Time     `bun:"generated_at,notnull" json:"generated_at"`
	CreatedAt    time.Time     `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// ReportPayload stores the full quality report as JSON.
type ReportPayload struct {
	report.Report
}

func (p ReportPayload) Value() (driver.Value, error) {
	return json.Marshal(p.Report)
}

func (p *ReportPayload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, &p.Report)
	case string:
		return json.Unmarshal([]byte(v), &p.Report)
	default:
		return errors.New("failed to scan ReportPayload")
	}
}
