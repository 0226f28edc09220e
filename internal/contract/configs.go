package contract

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/commitpulse/schema"
)

// Default values for configuration.
const (
	DefaultPrecision          = 1
	DefaultStatsConcurrency   = 10
	DefaultRepoConcurrency    = 16
	DefaultProductConcurrency = 4
	DefaultPerRepoLimit       = 200
	DefaultVelocityRepoLimit  = 500
	DefaultProductTimeout     = 60 * time.Second
	DefaultGenAIModel         = "gemini-2.5-flash"
	MaxPerRepoLimit           = 5000
)

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the runtime configuration of a request.
// This struct is the "final, validated" config.
type Config struct {
	ProductID string
	UserID    string
	OrgID     string
	RepoIDs   []string
	Period    schema.Period
	Days      int
	SortBy    schema.ContributorSort
	RankBy    schema.RankBy
	Location  *time.Location

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool

	StatsConcurrency   int
	RepoConcurrency    int
	ProductConcurrency int
	PerRepoLimit       int
	ProductTimeout     time.Duration

	CacheBackend   schema.DatabaseBackend
	CacheDBConnect string // Please use env var as this is plaintext

	RegistryBackend   schema.DatabaseBackend
	RegistryDBConnect string // Please use env var as this is plaintext

	GitHubBaseURL string
	GenAIAPIKey   string
	GenAIModel    string
	SecretKey     string
	MetricsAddr   string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Scope ---
	Product string `mapstructure:"product"`
	User    string `mapstructure:"user"`
	Org     string `mapstructure:"org"`
	Repos   string `mapstructure:"repos"`
	Period  string `mapstructure:"period"`
	Days    int    `mapstructure:"days"`
	SortBy  string `mapstructure:"sort-by"`
	RankBy  string `mapstructure:"rank-by"`

	// --- Output ---
	Output     string `mapstructure:"output"`
	OutputFile string `mapstructure:"output-file"`
	Precision  int    `mapstructure:"precision"`
	Width      int    `mapstructure:"width"`
	Color      string `mapstructure:"color"`
	Timezone   string `mapstructure:"timezone"`

	// --- Concurrency ---
	StatsConcurrency   int    `mapstructure:"stats-concurrency"`
	RepoConcurrency    int    `mapstructure:"repo-concurrency"`
	ProductConcurrency int    `mapstructure:"product-concurrency"`
	PerRepoLimit       int    `mapstructure:"per-repo-limit"`
	ProductTimeout     string `mapstructure:"product-timeout"`

	// --- Persistence ---
	CacheBackend      string `mapstructure:"cache-backend"`
	CacheDBConnect    string `mapstructure:"cache-db-connect"`
	RegistryBackend   string `mapstructure:"registry-backend"`
	RegistryDBConnect string `mapstructure:"registry-db-connect"`

	// --- Integrations ---
	GitHubBaseURL string `mapstructure:"github-base-url"`
	GenAIAPIKey   string `mapstructure:"genai-api-key"`
	GenAIModel    string `mapstructure:"genai-model"`
	SecretKey     string `mapstructure:"secret-key"`
	MetricsAddr   string `mapstructure:"metrics-addr"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.RepoIDs != nil {
		clone.RepoIDs = make([]string, len(c.RepoIDs))
		copy(clone.RepoIDs, c.RepoIDs)
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateConcurrency(cfg, input); err != nil {
		return err
	}
	if err := validateBackendConfigs(cfg, input); err != nil {
		return err
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings
// for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if _, err := mysql.ParseDSN(connStr); err != nil {
			return fmt.Errorf("MySQL connection string is malformed: %w", err)
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("a connection string is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// ParseRepoIDs splits a comma-separated id list, dropping blanks.
func ParseRepoIDs(s string) []string {
	var ids []string
	for part := range strings.SplitSeq(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}

// ProcessProfilingConfig processes the profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}

// validateSimpleInputs processes and validates scope and output fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.ProductID = strings.TrimSpace(input.Product)
	cfg.UserID = strings.TrimSpace(input.User)
	cfg.OrgID = strings.TrimSpace(input.Org)
	cfg.RepoIDs = ParseRepoIDs(input.Repos)
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.GitHubBaseURL = input.GitHubBaseURL
	cfg.GenAIAPIKey = input.GenAIAPIKey
	cfg.SecretKey = input.SecretKey
	cfg.MetricsAddr = input.MetricsAddr

	cfg.GenAIModel = input.GenAIModel
	if cfg.GenAIModel == "" {
		cfg.GenAIModel = DefaultGenAIModel
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	// --- 1. Period Validation ---
	// Unknown periods fall back to the default rather than failing.
	cfg.Period = schema.ParsePeriod(strings.ToLower(strings.TrimSpace(input.Period)))
	cfg.Days = input.Days

	// --- 2. Sort and Rank Validation ---
	cfg.SortBy = schema.ContributorSort(strings.ToLower(input.SortBy))
	if _, ok := schema.ValidContributorSorts[cfg.SortBy]; !ok {
		cfg.SortBy = schema.SortByCommits
	}
	cfg.RankBy = schema.RankBy(strings.ToLower(input.RankBy))
	if _, ok := schema.ValidRankBy[cfg.RankBy]; !ok {
		cfg.RankBy = schema.RankByCommits
	}

	// --- 3. Precision and Output Validation ---
	if input.Precision < 1 || input.Precision > 2 {
		return fmt.Errorf("precision must be 1 or 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json", cfg.Output)
	}

	// --- 4. Timezone Validation ---
	cfg.Location = time.Local
	if tz := strings.TrimSpace(input.Timezone); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone '%s': %w", tz, err)
		}
		cfg.Location = loc
	}

	return nil
}

// validateConcurrency processes the fan-out limits and timeouts.
func validateConcurrency(cfg *Config, input *ConfigRawInput) error {
	// --- 1. Fan-out limits ---
	if input.StatsConcurrency <= 0 {
		return fmt.Errorf("stats-concurrency must be greater than 0 (received %d)", input.StatsConcurrency)
	}
	cfg.StatsConcurrency = input.StatsConcurrency

	if input.RepoConcurrency <= 0 {
		return fmt.Errorf("repo-concurrency must be greater than 0 (received %d)", input.RepoConcurrency)
	}
	cfg.RepoConcurrency = input.RepoConcurrency

	cfg.ProductConcurrency = input.ProductConcurrency
	if cfg.ProductConcurrency <= 0 {
		cfg.ProductConcurrency = DefaultProductConcurrency
	}

	// --- 2. Per-repository commit cap ---
	if input.PerRepoLimit <= 0 || input.PerRepoLimit > MaxPerRepoLimit {
		return fmt.Errorf("per-repo-limit must be greater than 0 and cannot exceed %d (received %d)", MaxPerRepoLimit, input.PerRepoLimit)
	}
	cfg.PerRepoLimit = input.PerRepoLimit

	// --- 3. Product timeout ---
	cfg.ProductTimeout = DefaultProductTimeout
	if input.ProductTimeout != "" {
		d, err := time.ParseDuration(input.ProductTimeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid product-timeout '%s'. must be a positive duration like 60s", input.ProductTimeout)
		}
		cfg.ProductTimeout = d
	}
	return nil
}

// validateBackendConfigs validates cache and registry backend configurations.
func validateBackendConfigs(cfg *Config, input *ConfigRawInput) error {
	// --- Cache Backend Validation ---
	cfg.CacheBackend = schema.DatabaseBackend(strings.ToLower(input.CacheBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.CacheBackend]; !ok {
		return fmt.Errorf("invalid cache backend '%s'. must be sqlite, mysql, postgresql, none", input.CacheBackend)
	}
	cfg.CacheDBConnect = input.CacheDBConnect
	if err := ValidateDatabaseConnectionString(cfg.CacheBackend, cfg.CacheDBConnect); err != nil {
		return err
	}

	// --- Registry Backend Validation ---
	cfg.RegistryBackend = schema.DatabaseBackend(strings.ToLower(input.RegistryBackend))
	if cfg.RegistryBackend == "" {
		cfg.RegistryBackend = schema.SQLiteBackend
	}
	if _, ok := schema.ValidDatabaseBackends[cfg.RegistryBackend]; !ok || cfg.RegistryBackend == schema.NoneBackend {
		return fmt.Errorf("invalid registry backend '%s'. must be sqlite, mysql, postgresql", input.RegistryBackend)
	}
	cfg.RegistryDBConnect = input.RegistryDBConnect
	if err := ValidateDatabaseConnectionString(cfg.RegistryBackend, cfg.RegistryDBConnect); err != nil {
		return err
	}

	// Clearing the cache removes its SQLite file, so the registry must live elsewhere.
	if cfg.CacheBackend == schema.SQLiteBackend && cfg.RegistryBackend == schema.SQLiteBackend {
		cachePath := cfg.CacheDBConnect
		if cachePath == "" {
			cachePath = GetCacheDBFilePath()
		}
		registryPath := cfg.RegistryDBConnect
		if registryPath == "" {
			registryPath = GetRegistryDBFilePath()
		}
		if cachePath == registryPath {
			return fmt.Errorf("cache and registry storage must use different SQLite database files. Both resolve to %q", cachePath)
		}
	}

	return nil
}
