// Package config loads and validates qmd's runtime configuration: store
// paths, chunking policy, the active embedding provider, RRF/fusion
// tunables, and LLM host timeouts.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete qmd configuration.
type Config struct {
	Version    int              `yaml:"version" json:"version"`
	Paths      PathsConfig      `yaml:"paths" json:"paths"`
	Chunk      ChunkConfig      `yaml:"chunk" json:"chunk"`
	Fusion     FusionConfig     `yaml:"fusion" json:"fusion"`
	Embeddings EmbeddingsConfig `yaml:"embeddings" json:"embeddings"`
	LLMHost    LLMHostConfig    `yaml:"llm_host" json:"llm_host"`
}

// PathsConfig locates qmd's on-disk state, defaulting to
// ${XDG_CACHE_HOME:-~/.cache}/qmd as described in section 6 of the
// external interfaces contract.
type PathsConfig struct {
	IndexPath  string `yaml:"index_path" json:"index_path"`
	ModelsDir  string `yaml:"models_dir" json:"models_dir"`
	DaemonSock string `yaml:"daemon_sock" json:"daemon_sock"`
	DaemonPID  string `yaml:"daemon_pid" json:"daemon_pid"`
}

// ChunkConfig configures the chunker's token/character targets and overlap
// fraction (4.B).
type ChunkConfig struct {
	TokenTarget     int     `yaml:"token_target" json:"token_target"`
	CharTarget      int     `yaml:"char_target" json:"char_target"`
	OverlapFraction float64 `yaml:"overlap_fraction" json:"overlap_fraction"`
}

// FusionConfig configures the hybrid pipeline's RRF and blend parameters
// (4.I).
type FusionConfig struct {
	ExpansionFanout    int     `yaml:"expansion_fanout" json:"expansion_fanout"`
	OriginalWeight     int     `yaml:"original_weight" json:"original_weight"`
	RRFConstant        int     `yaml:"rrf_constant" json:"rrf_constant"`
	TopRankBonusRank1  float64 `yaml:"top_rank_bonus_rank1" json:"top_rank_bonus_rank1"`
	TopRankBonusRank23 float64 `yaml:"top_rank_bonus_rank23" json:"top_rank_bonus_rank23"`
	FusionKeepTop      int     `yaml:"fusion_keep_top" json:"fusion_keep_top"`
	RetrievalLimit     int     `yaml:"retrieval_limit" json:"retrieval_limit"`
	VectorOversample   int     `yaml:"vector_oversample" json:"vector_oversample"`
}

// EmbeddingsConfig selects and configures the active embedding provider
// (4.C). Provider is one of "local", "openai", "gemini".
type EmbeddingsConfig struct {
	Provider string `yaml:"provider" json:"provider"`
	Model    string `yaml:"model" json:"model"`

	LocalEndpoint string `yaml:"local_endpoint" json:"local_endpoint"`

	OpenAIBaseURL string `yaml:"openai_base_url" json:"openai_base_url"`
	OpenAIAPIKey  string `yaml:"-" json:"-"`

	GeminiAPIKey string `yaml:"-" json:"-"`

	BatchSize int `yaml:"batch_size" json:"batch_size"`

	// CacheSize bounds the process-local LRU of query and document
	// embeddings sitting in front of the provider (0 uses
	// embed.DefaultCacheSize).
	CacheSize int `yaml:"cache_size" json:"cache_size"`
}

// LLMHostConfig configures the process-wide model host (4.D).
type LLMHostConfig struct {
	IdleTimeout    time.Duration `yaml:"idle_timeout" json:"idle_timeout"`
	RerankEndpoint string        `yaml:"rerank_endpoint" json:"rerank_endpoint"`
	GenEndpoint    string        `yaml:"generator_endpoint" json:"generator_endpoint"`
}

// NewConfig returns a Config populated with qmd's defaults, matching
// spec section 4 and 6.
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Paths: PathsConfig{
			IndexPath:  defaultIndexPath(),
			ModelsDir:  defaultModelsDir(),
			DaemonSock: defaultCachePath("daemon.sock"),
			DaemonPID:  defaultCachePath("daemon.pid"),
		},
		Chunk: ChunkConfig{
			TokenTarget:     800,
			CharTarget:      3200,
			OverlapFraction: 0.15,
		},
		Fusion: FusionConfig{
			ExpansionFanout:    2,
			OriginalWeight:     2,
			RRFConstant:        60,
			TopRankBonusRank1:  0.05,
			TopRankBonusRank23: 0.02,
			FusionKeepTop:      30,
			RetrievalLimit:     20,
			VectorOversample:   4,
		},
		Embeddings: EmbeddingsConfig{
			Provider:      "local",
			Model:         "default",
			LocalEndpoint: "http://localhost:9659",
			OpenAIBaseURL: "https://api.openai.com/v1",
			BatchSize:     100,
		},
		LLMHost: LLMHostConfig{
			IdleTimeout: 5 * time.Minute,
		},
	}
}

// defaultCacheDir returns ${XDG_CACHE_HOME:-~/.cache}/qmd.
func defaultCacheDir() string {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "qmd")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "qmd")
	}
	return filepath.Join(home, ".cache", "qmd")
}

func defaultCachePath(elem string) string {
	return filepath.Join(defaultCacheDir(), elem)
}

func defaultIndexPath() string {
	return defaultCachePath("index.sqlite")
}

func defaultModelsDir() string {
	return defaultCachePath("models")
}

// GetUserConfigPath returns the path to qmd's user configuration file,
// honouring XDG_CONFIG_HOME.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "qmd", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "qmd", "config.yaml")
	}
	return filepath.Join(home, ".config", "qmd", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists reports whether the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// Load loads configuration from defaults, the user config file (if
// present), and environment overrides, in that order of precedence.
func Load() (*Config, error) {
	cfg := NewConfig()

	if UserConfigExists() {
		if err := cfg.loadYAML(GetUserConfigPath()); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

// WriteYAML persists the configuration to path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// applyEnvOverrides applies environment variable overrides, highest
// precedence per section 6 of the external interfaces contract.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("QMD_EMBEDDING_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("QMD_EMBEDDING_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Embeddings.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Embeddings.OpenAIBaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.Embeddings.GeminiAPIKey = v
	}
	if v := os.Getenv("QMD_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Fusion.RRFConstant = n
		}
	}
	if v := os.Getenv("QMD_LLM_HOST_IDLE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.LLMHost.IdleTimeout = d
		}
	}
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		c.Paths.IndexPath = filepath.Join(v, "qmd", "index.sqlite")
		c.Paths.ModelsDir = filepath.Join(v, "qmd", "models")
		c.Paths.DaemonSock = filepath.Join(v, "qmd", "daemon.sock")
		c.Paths.DaemonPID = filepath.Join(v, "qmd", "daemon.pid")
	}
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	switch c.Embeddings.Provider {
	case "local", "openai", "gemini":
	default:
		return fmt.Errorf("unknown embedding provider %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == "openai" && c.Embeddings.OpenAIAPIKey == "" {
		return fmt.Errorf("embedding provider %q requires OPENAI_API_KEY", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == "gemini" && c.Embeddings.GeminiAPIKey == "" {
		return fmt.Errorf("embedding provider %q requires GEMINI_API_KEY", c.Embeddings.Provider)
	}
	if c.Chunk.OverlapFraction < 0 || c.Chunk.OverlapFraction >= 1 {
		return fmt.Errorf("chunk overlap fraction must be in [0,1), got %f", c.Chunk.OverlapFraction)
	}
	if c.Fusion.RRFConstant <= 0 {
		return fmt.Errorf("rrf constant must be positive, got %d", c.Fusion.RRFConstant)
	}
	if c.Fusion.FusionKeepTop <= 0 {
		return fmt.Errorf("fusion keep-top must be positive, got %d", c.Fusion.FusionKeepTop)
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
