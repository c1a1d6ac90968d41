package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Server  ServerConfig
	Uploads UploadConfig
	Whisper WhisperConfig
	Xunfei  XunfeiConfig
	LLM     LLMConfig
	Jobs    JobsConfig
	Redis   RedisConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type UploadConfig struct {
	UploadDir   string
	WorkDir     string
	MaxUploadMB int
	FFmpegBin   string
}

type WhisperConfig struct {
	Bin      string
	Model    string
	Language string
	Threads  int
}

type XunfeiConfig struct {
	AppID     string
	APIKey    string
	SecretKey string
	LfasrHost string
	RaasrHost string
}

type LLMConfig struct {
	APIKey     string
	BaseURL    string
	Models     []string // explicit candidate list, highest priority
	ModelsFile string   // scanned for quoted model ids when Models is empty
	Model      string   // single-model fallback
	MaxTokens  int
}

type JobsConfig struct {
	MaxConcurrent int
	Store         string // "memory" or "redis"
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func Load() (*Config, error) {
	port, err := getEnvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	maxUploadMB, err := getEnvInt("MAX_UPLOAD_MB", 500)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}

	threads, err := getEnvInt("WHISPER_THREADS", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid WHISPER_THREADS: %w", err)
	}

	maxTokens, err := getEnvInt("MATCH_MAX_TOKENS", 4096)
	if err != nil {
		return nil, fmt.Errorf("invalid MATCH_MAX_TOKENS: %w", err)
	}

	maxConcurrent, err := getEnvInt("JOBS_MAX_CONCURRENT", 4)
	if err != nil {
		return nil, fmt.Errorf("invalid JOBS_MAX_CONCURRENT: %w", err)
	}

	redisDB, err := getEnvInt("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Uploads: UploadConfig{
			UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
			WorkDir:     getEnv("WORK_DIR", "work"),
			MaxUploadMB: maxUploadMB,
			FFmpegBin:   getEnv("FFMPEG_BIN", "ffmpeg"),
		},
		Whisper: WhisperConfig{
			Bin:      getEnv("WHISPER_BIN", "whisper-cli"),
			Model:    getEnv("WHISPER_MODEL", "models/ggml-base.bin"),
			Language: getEnv("WHISPER_LANGUAGE", ""),
			Threads:  threads,
		},
		Xunfei: XunfeiConfig{
			AppID:     getEnv("XUNFEI_APP_ID", ""),
			APIKey:    getEnv("XUNFEI_API_KEY", ""),
			SecretKey: getEnv("XUNFEI_SECRET_KEY", ""),
			LfasrHost: getEnv("XUNFEI_LFASR_HOST", ""),
			RaasrHost: getEnv("XUNFEI_RAASR_HOST", ""),
		},
		LLM: LLMConfig{
			APIKey:     getEnv("OPENROUTER_API_KEY", ""),
			BaseURL:    getEnv("OPENROUTER_BASE_URL", ""),
			Models:     getEnvList("OPENROUTER_MODELS"),
			ModelsFile: getEnv("OPENROUTER_MODELS_FILE", ""),
			Model:      getEnv("OPENROUTER_MODEL", ""),
			MaxTokens:  maxTokens,
		},
		Jobs: JobsConfig{
			MaxConcurrent: maxConcurrent,
			Store:         getEnv("JOBS_STORE", "memory"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
	}

	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) Validate() error {
	var bad []string
	if c.Uploads.MaxUploadMB <= 0 {
		bad = append(bad, "MAX_UPLOAD_MB must be positive")
	}
	if c.Jobs.MaxConcurrent <= 0 {
		bad = append(bad, "JOBS_MAX_CONCURRENT must be positive")
	}
	switch c.Jobs.Store {
	case "memory", "redis":
	default:
		bad = append(bad, fmt.Sprintf("JOBS_STORE must be memory or redis, got %q", c.Jobs.Store))
	}
	if len(bad) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(bad, "; "))
	}
	return nil
}

// RemoteEnabled reports whether the cloud STT credentials are present.
func (c *Config) RemoteEnabled() bool {
	return c.Xunfei.AppID != "" && (c.Xunfei.APIKey != "" || c.Xunfei.SecretKey != "")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

// getEnvList splits a comma-separated env var, dropping empty entries.
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
