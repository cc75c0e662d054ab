package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mkoziy/genome/monitor/internal/drift"
	"github.com/mkoziy/genome/monitor/internal/ingest"
	"github.com/mkoziy/genome/monitor/internal/metrics"
	"github.com/mkoziy/genome/monitor/internal/ratelimit"
	"github.com/mkoziy/genome/monitor/internal/scoring"
)

const defaultVariantSummaryURL = "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/tab_delimited/variant_summary.txt.gz"

// Config is the full monitor configuration.
type Config struct {
	// Source is the logical dataset name that keys the snapshot history.
	Source  string           `yaml:"source"`
	ClinVar ClinVarSection   `yaml:"clinvar"`
	Dataset metrics.Options  `yaml:"dataset"`
	Quality QualitySection   `yaml:"quality"`
	Drift   drift.Thresholds `yaml:"drift"`
	Storage StorageSection   `yaml:"storage"`
}

// ClinVarSection configures the download step.
type ClinVarSection struct {
	// Download toggles the ingestion step; when off, a local data file must
	// be supplied to the pipeline.
	Download      bool `yaml:"download"`
	ingest.Config `yaml:",inline"`
	RateLimit     ratelimit.Config `yaml:"rate_limit"`
}

// QualitySection configures report output and the scoring formula.
type QualitySection struct {
	OutputDir string          `yaml:"output_dir"`
	Weights   scoring.Weights `yaml:"weights"`
}

// StorageSection configures the snapshot registry database.
type StorageSection struct {
	DSN   string `yaml:"dsn"`
	Debug bool   `yaml:"debug"`
}

// Load parses YAML bytes into a Config and applies defaults.
func Load(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return applyDefaults(cfg), nil
}

// LoadFile reads and parses a YAML config file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Load(data)
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return applyDefaults(Config{})
}

func applyDefaults(cfg Config) Config {
	if cfg.Source == "" {
		cfg.Source = "clinvar"
	}
	if cfg.ClinVar.SourceURL == "" {
		cfg.ClinVar.SourceURL = defaultVariantSummaryURL
	}
	if cfg.ClinVar.ChecksumURL == "" {
		cfg.ClinVar.ChecksumURL = defaultVariantSummaryURL + ".md5"
	}
	if cfg.ClinVar.DownloadDir == "" {
		cfg.ClinVar.DownloadDir = "data/raw"
	}

	def := metrics.DefaultOptions()
	if cfg.Dataset.SignificanceColumn == "" {
		cfg.Dataset.SignificanceColumn = def.SignificanceColumn
	}
	if cfg.Dataset.ReviewStatusColumn == "" {
		cfg.Dataset.ReviewStatusColumn = def.ReviewStatusColumn
	}
	if cfg.Dataset.ConflictColumn == "" {
		cfg.Dataset.ConflictColumn = def.ConflictColumn
	}

	if cfg.Quality.OutputDir == "" {
		cfg.Quality.OutputDir = "reports"
	}
	defW := scoring.DefaultWeights()
	if cfg.Quality.Weights.NullPenaltyPerPct <= 0 {
		cfg.Quality.Weights.NullPenaltyPerPct = defW.NullPenaltyPerPct
	}
	if cfg.Quality.Weights.NullPenaltyCap <= 0 {
		cfg.Quality.Weights.NullPenaltyCap = defW.NullPenaltyCap
	}
	if cfg.Quality.Weights.ConflictPenaltyPerPct <= 0 {
		cfg.Quality.Weights.ConflictPenaltyPerPct = defW.ConflictPenaltyPerPct
	}
	if cfg.Quality.Weights.ConflictPenaltyCap <= 0 {
		cfg.Quality.Weights.ConflictPenaltyCap = defW.ConflictPenaltyCap
	}
	if cfg.Quality.Weights.ConfidenceBonusPerPct <= 0 {
		cfg.Quality.Weights.ConfidenceBonusPerPct = defW.ConfidenceBonusPerPct
	}
	if cfg.Quality.Weights.ConfidenceBonusCap <= 0 {
		cfg.Quality.Weights.ConfidenceBonusCap = defW.ConfidenceBonusCap
	}

	defTh := drift.DefaultThresholds()
	if cfg.Drift.RowCountPct <= 0 {
		cfg.Drift.RowCountPct = defTh.RowCountPct
	}
	if cfg.Drift.ConflictRateDivisor <= 0 {
		cfg.Drift.ConflictRateDivisor = defTh.ConflictRateDivisor
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "monitor.db"
	}

	return cfg
}
