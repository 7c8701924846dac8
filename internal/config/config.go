package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config carries everything the binaries read from the environment. The
// extractor's empirical tunables (fuzzy threshold, fare band) live here so
// they stay configuration, not constants.
type Config struct {
	// HTTP server
	HTTPAddr string

	// Google Cloud
	ProjectID       string
	Dataset         string
	Bucket          string
	StatementPrefix string

	// Merchant rules sheet
	RulesSheetID    string
	RulesSheetRange string

	// Extraction
	MatchThreshold int
	FareMin        decimal.Decimal
	FareMax        decimal.Decimal
	Parallelism    int
	GeminiModel    string

	// Jobs
	QueueSize   int
	WorkerCount int
	MaxRetries  int

	// Notion export
	NotionToken      string
	NotionDatabaseID string

	// Bookkeeping
	UserID string
}

// Load reads .env (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		ProjectID:       getEnv("GCP_PROJECT_ID", ""),
		Dataset:         getEnv("BQ_DATASET", "expenses"),
		Bucket:          getEnv("GCS_BUCKET", ""),
		StatementPrefix: getEnv("GCS_STATEMENT_PREFIX", "statements/"),

		RulesSheetID:    getEnv("RULES_SHEET_ID", ""),
		RulesSheetRange: getEnv("RULES_SHEET_RANGE", "Rules!A:C"),

		MatchThreshold: getEnvInt("MATCH_THRESHOLD", 70),
		FareMin:        getEnvDecimal("FARE_MIN", decimal.NewFromInt(15)),
		FareMax:        getEnvDecimal("FARE_MAX", decimal.NewFromInt(50)),
		Parallelism:    getEnvInt("PARSE_PARALLELISM", 4),
		GeminiModel:    getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		QueueSize:   getEnvInt("JOB_QUEUE_SIZE", 100),
		WorkerCount: getEnvInt("JOB_WORKER_COUNT", 5),
		MaxRetries:  getEnvInt("JOB_MAX_RETRIES", 3),

		NotionToken:      getEnv("NOTION_TOKEN", ""),
		NotionDatabaseID: getEnv("NOTION_DATABASE_ID", ""),

		UserID: getEnv("USER_ID", "default"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return fallback
	}
	return d
}
