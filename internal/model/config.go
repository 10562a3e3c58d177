package model

import "time"

// Config holds all LogicGuard settings. Values come from (highest first)
// CLI flags, LOGICGUARD_* environment variables, the config file and
// DefaultConfig.
type Config struct {
	Oracle    OracleConfig    `yaml:"oracle" mapstructure:"oracle"`
	Spelling  SpellingConfig  `yaml:"spelling" mapstructure:"spelling"`
	Claims    ClaimsConfig    `yaml:"claims" mapstructure:"claims"`
	Terms     TermsConfig     `yaml:"terms" mapstructure:"terms"`
	Jumps     JumpsConfig     `yaml:"jumps" mapstructure:"jumps"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Ingest    IngestConfig    `yaml:"ingest" mapstructure:"ingest"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
	Authority AuthorityConfig `yaml:"authority" mapstructure:"authority"`
	Batch     BatchConfig     `yaml:"batch" mapstructure:"batch"`
}

// OracleConfig selects and tunes the semantic oracle
type OracleConfig struct {
	// Provider is openai, anthropic, ollama, gemini or heuristic.
	Provider      string        `yaml:"provider" mapstructure:"provider"`
	Model         string        `yaml:"model" mapstructure:"model"`
	APIKey        string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL       string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	StageTimeout  time.Duration `yaml:"stage_timeout" mapstructure:"stage_timeout"`
	Mode          string        `yaml:"mode" mapstructure:"mode"` // per_task or unified
	MaxTokens     int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature   float32       `yaml:"temperature" mapstructure:"temperature"`
	RateLimit     float64       `yaml:"rate_limit" mapstructure:"rate_limit"` // requests per second
	Burst         int           `yaml:"burst" mapstructure:"burst"`
	LocateOffsets bool          `yaml:"locate_offsets" mapstructure:"locate_offsets"`
}

// Oracle modes
const (
	OracleModePerTask = "per_task"
	OracleModeUnified = "unified"
)

// SpellingConfig tunes the spelling detector
type SpellingConfig struct {
	MinConfidence     float64  `yaml:"min_confidence" mapstructure:"min_confidence"`
	DefaultConfidence float64  `yaml:"default_confidence" mapstructure:"default_confidence"`
	ProperNouns       []string `yaml:"proper_nouns" mapstructure:"proper_nouns"` // Never flagged
}

// ClaimsConfig tunes the unsupported-claims detector
type ClaimsConfig struct {
	ProximityWindow int `yaml:"proximity_window" mapstructure:"proximity_window"` // Sentences either side
}

// TermsConfig tunes the undefined-terms detector
type TermsConfig struct {
	DefinitionWindow int `yaml:"definition_window" mapstructure:"definition_window"` // Sentences after first use
}

// MaxCoherenceThreshold is the highest jump threshold allowed. A pair
// scoring at or above it is coherent and never becomes a finding.
const MaxCoherenceThreshold = 0.7

// JumpsConfig tunes the logical-jumps detector
type JumpsConfig struct {
	CoherenceThreshold float64 `yaml:"coherence_threshold" mapstructure:"coherence_threshold"`
}

// Threshold returns CoherenceThreshold capped at MaxCoherenceThreshold.
// Unset or non-positive values also give the cap. Lowering the threshold
// makes the detector stricter about what counts as a jump.
func (c JumpsConfig) Threshold() float64 {
	t := c.CoherenceThreshold
	if !(t > 0) || t > MaxCoherenceThreshold {
		return MaxCoherenceThreshold
	}
	return t
}

// PipelineConfig controls stage retries
type PipelineConfig struct {
	StageRetries int `yaml:"stage_retries" mapstructure:"stage_retries"`
}

// IngestConfig controls how documents are loaded
type IngestConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy     string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig controls the oracle response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// StoreConfig controls the report history database
type StoreConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// LogConfig controls structured logging
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text or json
}

// MetricsConfig controls the Prometheus textfile export
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" mapstructure:"textfile"`
}

// AuthorityConfig classifies cited hosts into authority tiers
type AuthorityConfig struct {
	PrimaryDomains   []string          `yaml:"primary_domains" mapstructure:"primary_domains"`
	SecondaryDomains []string          `yaml:"secondary_domains" mapstructure:"secondary_domains"`
	DomainMap        map[string]string `yaml:"domain_map,omitempty" mapstructure:"domain_map"`
	PathPatterns     []PathPattern     `yaml:"path_patterns,omitempty" mapstructure:"path_patterns"`
}

// PathPattern assigns a tier to URLs whose path matches Pattern
type PathPattern struct {
	Pattern string `yaml:"pattern" mapstructure:"pattern"`
	Tier    string `yaml:"tier" mapstructure:"tier"`
}

// BatchConfig controls multi-document runs
type BatchConfig struct {
	Workers           int     `yaml:"workers" mapstructure:"workers"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Oracle: OracleConfig{
			Provider:     "heuristic",
			Model:        "",
			Timeout:      60 * time.Second,
			StageTimeout: 90 * time.Second,
			Mode:         OracleModePerTask,
			MaxTokens:    4096,
			Temperature:  0.1,
			RateLimit:    2,
			Burst:        2,
		},
		Spelling: SpellingConfig{
			MinConfidence:     0.70,
			DefaultConfidence: 0.70,
		},
		Claims: ClaimsConfig{
			ProximityWindow: 2,
		},
		Terms: TermsConfig{
			DefinitionWindow: 2,
		},
		Jumps: JumpsConfig{
			CoherenceThreshold: MaxCoherenceThreshold,
		},
		Pipeline: PipelineConfig{
			StageRetries: 1,
		},
		Ingest: IngestConfig{
			UserAgent:     "LogicGuard/0.1 (+https://github.com/ppiankov/logicguard)",
			Timeout:       30 * time.Second,
			MaxBytes:      5_000_000,
			RespectRobots: true,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "~/.logicguard/cache",
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Store: StoreConfig{
			Enabled: true,
			Path:    "~/.logicguard/history.db",
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Authority: AuthorityConfig{
			PrimaryDomains: []string{
				"doi.org", "arxiv.org", "pubmed.ncbi.nlm.nih.gov", "ncbi.nlm.nih.gov",
				"who.int", "oecd.org", "worldbank.org", "gso.gov.vn", "chinhphu.vn",
				"thuvienphapluat.vn", "nature.com", "science.org",
			},
			SecondaryDomains: []string{
				"wikipedia.org", "britannica.com", "reuters.com", "apnews.com",
				"bbc.co.uk", "bbc.com", "nytimes.com", "vnexpress.net", "tuoitre.vn",
			},
		},
		Batch: BatchConfig{
			Workers:           4,
			RequestsPerSecond: 2,
			BurstSize:         2,
		},
	}
}
