package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port           string
	PostgresDSN    string
	MongoURI       string
	MongoDB        string
	RedisAddr      string
	RedisPassword  string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	LogLevel  string
	LogFormat string

	LLM    LLMConfig
	Chunk  ChunkConfig
	Search SearchConfig
}

// LLMConfig configures the completion gateway client.
type LLMConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	ExtractModel string
	MaxTokens    int
	Timeout      time.Duration
	MaxRetries   int
}

// ChunkConfig sizes the analyzer windows, in characters.
type ChunkConfig struct {
	Size    int
	Overlap int
}

// SearchConfig configures the retrieval providers.
type SearchConfig struct {
	Providers      []string
	Endpoints      map[string]string
	Timeout        time.Duration
	MaxPerProvider int
	CacheTTL       time.Duration
	PageFetchLimit int
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	apiKey := getenv("LLM_API_KEY", os.Getenv("OPENAI_API_KEY"))

	return &Config{
		Port:           getenv("PORT", "8080"),
		PostgresDSN:    getenv("POSTGRES_DSN", ""),
		MongoURI:       getenv("MONGO_URI", ""),
		MongoDB:        getenv("MONGO_DB", "research_assistant"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "documents"),
		MinioUseSSL:    getbool("MINIO_USE_SSL", false),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),

		LLM: LLMConfig{
			BaseURL:      getenv("LLM_BASE_URL", "https://api.openai.com/v1"),
			APIKey:       apiKey,
			Model:        getenv("LLM_MODEL", "gpt-3.5-turbo"),
			ExtractModel: getenv("LLM_EXTRACT_MODEL", "gpt-4o-mini"),
			MaxTokens:    getint("LLM_MAX_TOKENS", 2048),
			Timeout:      getduration("LLM_TIMEOUT", 30*time.Second),
			MaxRetries:   getint("LLM_MAX_RETRIES", 3),
		},
		Chunk: ChunkConfig{
			Size:    getint("CHUNK_SIZE", 5000),
			Overlap: getint("CHUNK_OVERLAP", 500),
		},
		Search: SearchConfig{
			Providers: getlist("SEARCH_PROVIDERS", []string{"wikipedia", "duckduckgo"}),
			Endpoints: map[string]string{
				"wikipedia":  getenv("WIKIPEDIA_ENDPOINT", "https://en.wikipedia.org/w/api.php"),
				"duckduckgo": getenv("DUCKDUCKGO_ENDPOINT", "https://html.duckduckgo.com/html/"),
			},
			Timeout:        getduration("SEARCH_TIMEOUT", 10*time.Second),
			MaxPerProvider: getint("SEARCH_MAX_PER_PROVIDER", 3),
			CacheTTL:       getduration("SEARCH_CACHE_TTL", time.Hour),
			PageFetchLimit: getint("PAGE_FETCH_LIMIT", 3),
		},
	}
}

// Validate reports settings the pipeline cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Chunk.Size <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.Chunk.Size))
	}
	if c.Chunk.Overlap < 0 || c.Chunk.Overlap >= c.Chunk.Size {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be in [0, CHUNK_SIZE), got %d", c.Chunk.Overlap))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_TOKENS must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("LLM_MAX_RETRIES must not be negative, got %d", c.LLM.MaxRetries))
	}
	if len(c.Search.Providers) == 0 {
		errs = append(errs, errors.New("SEARCH_PROVIDERS is empty"))
	}
	if c.Search.MaxPerProvider <= 0 {
		errs = append(errs, fmt.Errorf("SEARCH_MAX_PER_PROVIDER must be positive, got %d", c.Search.MaxPerProvider))
	}
	return errors.Join(errs...)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getbool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getduration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getlist(key string, fallback []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
