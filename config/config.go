package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/dyike/CortexChat/consts"
)

type Config struct {
	ProjectDir string `json:"project_dir"`
	ResultsDir string `json:"results_dir"`
	DataDir    string `json:"data_dir"`

	LLMProvider  string  `json:"llm_provider"`
	Model        string  `json:"model"`
	BackendURL   string  `json:"backend_url"`
	LLMAPIKey    string  `json:"llm_api_key"`
	Temperature  float32 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	MaxToolSteps int     `json:"max_tool_steps"`

	EmbeddingModel string `json:"embedding_model"`
	EmbeddingURL   string `json:"embedding_url"`
	IndexPath      string `json:"index_path"`
	RetrievalTopK  int    `json:"retrieval_top_k"`
	ChunkSize      int    `json:"chunk_size"`
	ChunkOverlap   int    `json:"chunk_overlap"`

	// Search tool credentials
	GoogleAPIKey      string `json:"google_api_key"`
	GoogleCSEID       string `json:"google_cse_id"`
	GitHubToken       string `json:"github_token"`
	GitHubRepo        string `json:"github_repo"`
	YouTubeMaxResults int    `json:"youtube_max_results"`
	// Seconds a search result is reused for the same query; 0 disables caching.
	SearchCacheTTLSeconds int `json:"search_cache_ttl_seconds"`

	PersonasFile string `json:"personas_file"`
	CloseKeyword string `json:"close_keyword"`
	HistoryPath  string `json:"history_path"`

	Debug bool `json:"debug"`

	// Eino Debug configuration
	EinoDebugEnabled bool `json:"eino_debug_enabled"`
	EinoDebugPort    int  `json:"eino_debug_port"`
}

func DefaultConfig() *Config {
	currentDir, _ := os.Getwd()

	cfg := DefaultConfigWithRoot(currentDir)

	// Load environment variables from .env file
	_ = godotenv.Load()

	// Override with environment variables if they exist
	cfg.loadFromEnv()

	return cfg
}

// DefaultConfigWithRoot returns the built-in defaults with every directory rooted at root.
func DefaultConfigWithRoot(root string) *Config {
	return &Config{
		ProjectDir: root,
		ResultsDir: filepath.Join(root, "results"),
		DataDir:    filepath.Join(root, "data"),

		LLMProvider:  "openai",
		Model:        "llama3",
		BackendURL:   "http://localhost:11434/v1",
		Temperature:  0.2,
		MaxTokens:    2048,
		MaxToolSteps: 12,

		EmbeddingModel: "mxbai-embed-large",
		EmbeddingURL:   "http://localhost:11434",
		IndexPath:      filepath.Join(root, "data", "index.db"),
		RetrievalTopK:  4,
		ChunkSize:      500,
		ChunkOverlap:   50,

		GitHubRepo:        "langchain-ai/langchain",
		YouTubeMaxResults: 5,

		SearchCacheTTLSeconds: 300,

		CloseKeyword: consts.CloseKeyword,
		HistoryPath:  filepath.Join(root, "data", "history.db"),

		EinoDebugEnabled: false,
		EinoDebugPort:    52538,
	}
}

// WithEnv returns a copy of c with .env and process environment overrides applied.
// Credentials picked up this way never reach the persisted config file.
func (c Config) WithEnv() *Config {
	_ = godotenv.Load()
	out := c
	out.loadFromEnv()
	return &out
}

func (c *Config) loadFromEnv() {
	if val := os.Getenv("PROJECT_DIR"); val != "" {
		c.ProjectDir = val
	}
	if val := os.Getenv("RESULTS_DIR"); val != "" {
		c.ResultsDir = val
	}
	if val := os.Getenv("DATA_DIR"); val != "" {
		c.DataDir = val
	}

	if val := os.Getenv("LLM_PROVIDER"); val != "" {
		c.LLMProvider = val
	}
	if val := os.Getenv("CORTEXCHAT_MODEL"); val != "" {
		c.Model = val
	}
	if val := os.Getenv("BACKEND_URL"); val != "" {
		c.BackendURL = val
	}
	// DEEPSEEK_API_KEY wins over OPENAI_API_KEY, an explicit key wins over both.
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("DEEPSEEK_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("CORTEXCHAT_LLM_API_KEY"); val != "" {
		c.LLMAPIKey = val
	}
	if val := os.Getenv("CORTEXCHAT_TEMPERATURE"); val != "" {
		if v, err := strconv.ParseFloat(val, 32); err == nil {
			c.Temperature = float32(v)
		}
	}
	if val := os.Getenv("CORTEXCHAT_MAX_TOKENS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxTokens = v
		}
	}
	if val := os.Getenv("CORTEXCHAT_MAX_TOOL_STEPS"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.MaxToolSteps = v
		}
	}

	if val := os.Getenv("CORTEXCHAT_EMBEDDING_MODEL"); val != "" {
		c.EmbeddingModel = val
	}
	if val := os.Getenv("CORTEXCHAT_EMBEDDING_URL"); val != "" {
		c.EmbeddingURL = val
	}
	if val := os.Getenv("CORTEXCHAT_INDEX_PATH"); val != "" {
		c.IndexPath = val
	}
	if val := os.Getenv("CORTEXCHAT_HISTORY_PATH"); val != "" {
		c.HistoryPath = val
	}
	if val := os.Getenv("CORTEXCHAT_TOP_K"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.RetrievalTopK = v
		}
	}
	if val := os.Getenv("CORTEXCHAT_CHUNK_SIZE"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ChunkSize = v
		}
	}
	if val := os.Getenv("CORTEXCHAT_CHUNK_OVERLAP"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.ChunkOverlap = v
		}
	}

	if val := os.Getenv("GOOGLE_API_KEY"); val != "" {
		c.GoogleAPIKey = val
	}
	if val := os.Getenv("GOOGLE_CSE_ID"); val != "" {
		c.GoogleCSEID = val
	}
	if val := os.Getenv("GITHUB_TOKEN"); val != "" {
		c.GitHubToken = val
	}
	if val := os.Getenv("CORTEXCHAT_GITHUB_REPO"); val != "" {
		c.GitHubRepo = val
	}
	if val := os.Getenv("CORTEXCHAT_SEARCH_CACHE_TTL"); val != "" {
		if v, err := strconv.Atoi(val); err == nil {
			c.SearchCacheTTLSeconds = v
		}
	}

	if val := os.Getenv("CORTEXCHAT_PERSONAS_FILE"); val != "" {
		c.PersonasFile = val
	}
	if val := os.Getenv("CORTEXCHAT_CLOSE_KEYWORD"); val != "" {
		c.CloseKeyword = val
	}

	if val := os.Getenv("CORTEXCHAT_DEBUG"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.Debug = enabled
		}
	}

	if val := os.Getenv("EINO_DEBUG_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			c.EinoDebugEnabled = enabled
		}
	}
	if val := os.Getenv("EINO_DEBUG_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			c.EinoDebugPort = port
		}
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Model) == "" {
		errs = append(errs, errors.New("model cannot be empty"))
	}
	switch c.LLMProvider {
	case "openai", "deepseek":
	default:
		errs = append(errs, fmt.Errorf("unsupported llm provider %q", c.LLMProvider))
	}
	if strings.TrimSpace(c.IndexPath) == "" {
		errs = append(errs, errors.New("index path cannot be empty"))
	}
	if c.ChunkSize <= 0 {
		errs = append(errs, errors.New("chunk size must be > 0"))
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		errs = append(errs, errors.New("chunk overlap must be >= 0 and smaller than chunk size"))
	}
	if c.RetrievalTopK <= 0 {
		errs = append(errs, errors.New("retrieval top-k must be > 0"))
	}
	if c.SearchCacheTTLSeconds < 0 {
		errs = append(errs, errors.New("search cache ttl cannot be negative"))
	}
	if strings.TrimSpace(c.CloseKeyword) == "" {
		errs = append(errs, errors.New("close keyword cannot be empty"))
	}
	return errors.Join(errs...)
}

func (c *Config) EnsureDirectories() error {
	dirs := []string{c.ProjectDir, c.ResultsDir, c.DataDir, filepath.Dir(c.IndexPath)}
	if c.HistoryPath != "" {
		dirs = append(dirs, filepath.Dir(c.HistoryPath))
	}
	for _, dir := range dirs {
		path := strings.TrimSpace(dir)
		if path == "" {
			continue
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", path, err)
		}
	}
	return nil
}
