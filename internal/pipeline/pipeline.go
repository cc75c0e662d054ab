// Package pipeline coordinates a monitor run: ingest a release, compute its
// metrics and score, compare against the previous release's metrics, and
// store the resulting quality report as a new snapshot.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/uptrace/bun"

	"github.com/mkoziy/genome/monitor/internal/config"
	"github.com/mkoziy/genome/monitor/internal/dataset"
	"github.com/mkoziy/genome/monitor/internal/drift"
	"github.com/mkoziy/genome/monitor/internal/ingest"
	"github.com/mkoziy/genome/monitor/internal/metrics"
	"github.com/mkoziy/genome/monitor/internal/ratelimit"
	"github.com/mkoziy/genome/monitor/internal/registry"
	"github.com/mkoziy/genome/monitor/internal/report"
	"github.com/mkoziy/genome/monitor/internal/scoring"
)

// Pipeline runs the quality monitoring workflow for one dataset source.
type Pipeline struct {
	cfg config.Config
	db  *bun.DB
}

// Result collects the artifacts of one run.
type Result struct {
	DataFile   string
	Report     *report.Report
	ReportPath string
	Snapshot   *registry.Snapshot
	// Verdict is nil on the first run, when no baseline snapshot exists.
	Verdict *drift.Verdict
}

// New creates a pipeline backed by the snapshot registry db.
func New(cfg config.Config, db *bun.DB) *Pipeline {
	return &Pipeline{cfg: cfg, db: db}
}

// Run executes the full workflow. dataFile may point at an already
// downloaded release; when empty and downloading is enabled, the release is
// fetched first.
func (p *Pipeline) Run(ctx context.Context, dataFile string) (*Result, error) {
	log.Printf("Starting quality monitor run for source %q", p.cfg.Source)

	if dataFile == "" {
		if !p.cfg.ClinVar.Download {
			return nil, fmt.Errorf("no data file given and downloading is disabled")
		}
		log.Printf("Step 1: downloading release data")
		limiter := ratelimit.NewTokenBucket(p.cfg.ClinVar.RateLimit)
		dl := ingest.NewDownloader(p.cfg.ClinVar.Config, limiter, p.cfg.ClinVar.RateLimit.MaxRetries)
		path, err := dl.DownloadAndVerify(ctx)
		if err != nil {
			return nil, fmt.Errorf("download: %w", err)
		}
		dataFile = path
	} else {
		log.Printf("Step 1: using local release data %s", dataFile)
	}

	log.Printf("Step 2: computing quality metrics")
	table, err := dataset.Load(dataFile)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	rec, err := metrics.Compute(table, p.cfg.Dataset)
	if err != nil {
		return nil, fmt.Errorf("compute metrics: %w", err)
	}

	score := scoring.Compute(rec, p.cfg.Quality.Weights)
	log.Printf("Computed quality score %.1f for %d rows", score.Value, rec.RowCount)

	rep := report.New(rec, score)

	log.Printf("Step 3: checking drift against previous release")
	verdict, err := p.detectDrift(ctx, rec)
	if err != nil {
		return nil, err
	}

	log.Printf("Step 4: storing snapshot and report")
	snap, err := registry.SaveSnapshot(ctx, p.db, p.cfg.Source, rep)
	if err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	reportPath, err := rep.Save(p.cfg.Quality.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("save report: %w", err)
	}

	log.Printf("Run complete: snapshot %s, report %s", snap.SnapshotID, reportPath)

	return &Result{
		DataFile:   dataFile,
		Report:     rep,
		ReportPath: reportPath,
		Snapshot:   snap,
		Verdict:    verdict,
	}, nil
}

func (p *Pipeline) detectDrift(ctx context.Context, rec *metrics.Record) (*drift.Verdict, error) {
	prev, err := registry.LatestSnapshot(ctx, p.db, p.cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("load previous snapshot: %w", err)
	}
	if prev == nil {
		log.Printf("No previous snapshot for %q, skipping drift detection", p.cfg.Source)
		return nil, nil
	}

	verdict, err := drift.Detect(rec, prev.Report.Metrics, p.cfg.Drift)
	if err != nil {
		return nil, fmt.Errorf("detect drift: %w", err)
	}

	if verdict.DriftDetected {
		log.Printf("ALERT: drift detected with severity %s (%d metrics changed)",
			verdict.Severity, len(verdict.MetricsChanged))
		for name, delta := range verdict.MetricsChanged {
			log.Printf("  %s: %s", name, delta)
		}
	} else {
		log.Printf("No drift detected against snapshot %s", prev.SnapshotID)
	}
	return verdict, nil
}
