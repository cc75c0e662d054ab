package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.Source != "clinvar" {
		t.Fatalf("unexpected default source: %s", cfg.Source)
	}
	if cfg.ClinVar.SourceURL != defaultVariantSummaryURL {
		t.Fatalf("unexpected default source URL: %s", cfg.ClinVar.SourceURL)
	}
	if cfg.ClinVar.ChecksumURL != defaultVariantSummaryURL+".md5" {
		t.Fatalf("unexpected default checksum URL: %s", cfg.ClinVar.ChecksumURL)
	}
	if cfg.Dataset.SignificanceColumn != "ClinicalSignificance" {
		t.Fatalf("unexpected significance column: %s", cfg.Dataset.SignificanceColumn)
	}
	if cfg.Quality.Weights.NullPenaltyCap != 30 {
		t.Fatalf("unexpected null penalty cap: %v", cfg.Quality.Weights.NullPenaltyCap)
	}
	if cfg.Drift.RowCountPct != 10 {
		t.Fatalf("unexpected drift threshold: %v", cfg.Drift.RowCountPct)
	}
	if cfg.Storage.DSN != "monitor.db" {
		t.Fatalf("unexpected storage DSN: %s", cfg.Storage.DSN)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`
source: clinvar-weekly
clinvar:
  download: true
  download_dir: /tmp/clinvar
  rate_limit:
    requests_per_second: 2
dataset:
  significance_column: Significance
quality:
  output_dir: out
  weights:
    null_penalty_per_pct: 1.0
drift:
  row_count_pct: 25
storage:
  dsn: history.db
  debug: true
`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Source != "clinvar-weekly" {
		t.Fatalf("unexpected source: %s", cfg.Source)
	}
	if !cfg.ClinVar.Download || cfg.ClinVar.DownloadDir != "/tmp/clinvar" {
		t.Fatalf("unexpected clinvar section: %+v", cfg.ClinVar)
	}
	if cfg.Dataset.SignificanceColumn != "Significance" {
		t.Fatalf("expected overridden significance column, got %s", cfg.Dataset.SignificanceColumn)
	}
	if cfg.Quality.Weights.NullPenaltyPerPct != 1.0 {
		t.Fatalf("expected overridden weight, got %v", cfg.Quality.Weights.NullPenaltyPerPct)
	}
	if cfg.Drift.RowCountPct != 25 {
		t.Fatalf("expected overridden drift threshold, got %v", cfg.Drift.RowCountPct)
	}
	if cfg.Storage.DSN != "history.db" || !cfg.Storage.Debug {
		t.Fatalf("unexpected storage section: %+v", cfg.Storage)
	}
}

func TestLoadFillsUnsetFields(t *testing.T) {
	// A partial file keeps defaults for everything it does not mention.
	cfg, err := Load([]byte("source: test\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ClinVar.SourceURL != defaultVariantSummaryURL {
		t.Fatalf("expected default URL for partial config, got %s", cfg.ClinVar.SourceURL)
	}
	if cfg.Quality.Weights.ConflictPenaltyPerPct != 2 {
		t.Fatalf("expected default conflict weight, got %v", cfg.Quality.Weights.ConflictPenaltyPerPct)
	}
	if cfg.Drift.ConflictRateDivisor != 10 {
		t.Fatalf("expected default divisor, got %v", cfg.Drift.ConflictRateDivisor)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("source: from-file\n"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.Source != "from-file" {
		t.Fatalf("unexpected source: %s", cfg.Source)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	if _, err := Load([]byte("source: [unterminated")); err == nil {
		t.Fatalf("expected parse error")
	}
}
