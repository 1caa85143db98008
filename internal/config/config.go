package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	DataRoot    string
	CorpusFile  string
	TextDir     string
	BatchDir    string
	ResultsDir  string
	LogDir      string
	AgencyTable string
	EntityTable string
	OutputCSV   string
	OutputXLSX  string

	StartYear             int
	EndYear               int
	ListWorkers           int
	DownloadWorkers       int
	RateLimitCooldown     time.Duration
	MaxRateLimitRetries   int
	RequestsPerSecond     float64
	ProgressInterval      time.Duration
	TargetType            string
	FederalRegisterAPI    string
	PDFFallback           bool
	Model                 string
	TokenBudget           int
	Temperature           float64
	MaxLinesPerFile       int
	PollInterval          time.Duration
	BatchProvider         string
	BatchDescription      string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	InputPricePerMillion  float64
	OutputPricePerMillion float64

	PostgresURL       string
	TemporalAddress   string
	TemporalTaskQueue string
	LogLevel          string
	LogFormat         string
}

func Load() Config {
	root := getenv("FEDCITE_DATA_ROOT", "./data")
	return Config{
		DataRoot:    root,
		CorpusFile:  getenv("FEDCITE_CORPUS_FILE", filepath.Join(root, "all_doc_info.json")),
		TextDir:     getenv("FEDCITE_TEXT_DIR", filepath.Join(root, "final-rule-txts")),
		BatchDir:    getenv("FEDCITE_BATCH_DIR", filepath.Join(root, "final-rule-batches")),
		ResultsDir:  getenv("FEDCITE_RESULTS_DIR", filepath.Join(root, "final-rule-batch-results")),
		LogDir:      getenv("FEDCITE_LOG_DIR", filepath.Join(root, "logs")),
		AgencyTable: getenv("FEDCITE_AGENCY_TABLE", filepath.Join(root, "agency_hash.json")),
		EntityTable: getenv("FEDCITE_ENTITY_TABLE", filepath.Join(root, "entity_hash.json")),
		OutputCSV:   getenv("FEDCITE_OUTPUT_CSV", filepath.Join(root, "final_rules_all_data.csv")),
		OutputXLSX:  getenv("FEDCITE_OUTPUT_XLSX", ""),

		StartYear:             getenvInt("FEDCITE_START_YEAR", 1994),
		EndYear:               getenvInt("FEDCITE_END_YEAR", 2024),
		ListWorkers:           getenvInt("FEDCITE_LIST_WORKERS", 4),
		DownloadWorkers:       getenvInt("FEDCITE_DOWNLOAD_WORKERS", 16),
		RateLimitCooldown:     time.Duration(getenvInt("FEDCITE_RATE_LIMIT_COOLDOWN_SECONDS", 180)) * time.Second,
		MaxRateLimitRetries:   getenvInt("FEDCITE_MAX_RATE_LIMIT_RETRIES", 0),
		RequestsPerSecond:     getenvFloat("FEDCITE_REQUESTS_PER_SECOND", 0),
		ProgressInterval:      time.Duration(getenvInt("FEDCITE_PROGRESS_INTERVAL_SECONDS", 60)) * time.Second,
		TargetType:            getenv("FEDCITE_TARGET_TYPE", "rule"),
		FederalRegisterAPI:    getenv("FEDCITE_FEDERAL_REGISTER_API", "https://www.federalregister.gov/api/v1/documents.json"),
		PDFFallback:           getenvBool("FEDCITE_PDF_FALLBACK", false),
		Model:                 getenv("FEDCITE_MODEL", "gpt-4o"),
		TokenBudget:           getenvInt("FEDCITE_TOKEN_BUDGET", 2500),
		Temperature:           getenvFloat("FEDCITE_TEMPERATURE", 0.5),
		MaxLinesPerFile:       getenvInt("FEDCITE_MAX_LINES_PER_FILE", 25),
		PollInterval:          time.Duration(getenvInt("FEDCITE_POLL_INTERVAL_SECONDS", 30)) * time.Second,
		BatchProvider:         getenv("FEDCITE_BATCH_PROVIDER", "openai"),
		BatchDescription:      getenv("FEDCITE_BATCH_DESCRIPTION", "Final-Rules"),
		OpenAIAPIKey:          getenv("FEDCITE_OPENAI_API_KEY", os.Getenv("OPENAI_API_KEY")),
		OpenAIBaseURL:         getenv("FEDCITE_OPENAI_BASE_URL", ""),
		InputPricePerMillion:  getenvFloat("FEDCITE_INPUT_PRICE_PER_MILLION", 1.25),
		OutputPricePerMillion: getenvFloat("FEDCITE_OUTPUT_PRICE_PER_MILLION", 5),

		PostgresURL:       getenv("FEDCITE_POSTGRES_URL", ""),
		TemporalAddress:   getenv("FEDCITE_TEMPORAL_ADDRESS", "localhost:7233"),
		TemporalTaskQueue: getenv("FEDCITE_TEMPORAL_TASK_QUEUE", "fedcite"),
		LogLevel:          getenv("FEDCITE_LOG_LEVEL", "info"),
		LogFormat:         getenv("FEDCITE_LOG_FORMAT", "console"),
	}
}

func getenv(k, fallback string) string {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(k string, fallback int) int {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvFloat(k string, fallback float64) float64 {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getenvBool(k string, fallback bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
