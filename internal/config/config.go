package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Config 是 Toneo 的顶层配置结构。
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Dictionary DictionaryConfig `yaml:"dictionary"`
	Segment    SegmentConfig    `yaml:"segment"`
	Frequency  FrequencyConfig  `yaml:"frequency"`
	Analyze    AnalyzeConfig    `yaml:"analyze"`
	TTS        TTSConfig        `yaml:"tts"`
	Translate  TranslateConfig  `yaml:"translate"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	CORS       CORSConfig       `yaml:"cors"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"TONEO_HOST"`
	Port            int           `yaml:"port"             env:"TONEO_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// TrustedProxies 可信反向代理网段，只有来自这些地址的请求才采信转发头。
	TrustedProxies []string `yaml:"trusted_proxies" env:"TONEO_TRUSTED_PROXIES" env-separator:","`
}

// Addr 返回监听地址。
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DictionaryConfig 词典数据库配置。
type DictionaryConfig struct {
	Path      string `yaml:"path"       env:"TONEO_DB_PATH"`
	CacheDir  string `yaml:"cache_dir"`
	CEDICTURL string `yaml:"cedict_url"`
	HSKURL    string `yaml:"hsk_url"`
}

// SegmentConfig 分词配置。
type SegmentConfig struct {
	// Engine 分词器: gse（默认）或 maxmatch（基于词典词表）。
	Engine     string   `yaml:"engine"       env:"TONEO_SEGMENT_ENGINE"`
	DictFiles  []string `yaml:"dict_files"`
	MaxWordLen int      `yaml:"max_word_len"`
}

// FrequencyConfig 词频缓存配置。
type FrequencyConfig struct {
	CacheSize int `yaml:"cache_size"`
}

// AnalyzeConfig 文本分析配置。
type AnalyzeConfig struct {
	MaxChars int `yaml:"max_chars"`
}

// TTSConfig 语音合成配置。
type TTSConfig struct {
	// Engine: edge（默认）、tencent 或 none（禁用）。
	Engine     string         `yaml:"engine"        env:"TONEO_TTS_ENGINE"`
	MaxChars   int            `yaml:"max_chars"`
	CacheDir   string         `yaml:"cache_dir"`
	CacheMaxMB int64          `yaml:"cache_max_mb"`
	Tencent    TencentSecrets `yaml:"tencent"`
}

// TencentSecrets 腾讯云密钥。
type TencentSecrets struct {
	SecretID  string `yaml:"secret_id"  env:"TENCENTCLOUD_SECRET_ID"`
	SecretKey string `yaml:"secret_key" env:"TENCENTCLOUD_SECRET_KEY"`
	Region    string `yaml:"region"`
}

// Configured 返回密钥是否齐全。
func (t TencentSecrets) Configured() bool {
	return t.SecretID != "" && t.SecretKey != ""
}

// TranslateConfig 词典外词语的机器翻译释义。
type TranslateConfig struct {
	Enabled bool           `yaml:"enabled" env:"TONEO_TRANSLATE_ENABLED"`
	Target  string         `yaml:"target"`
	Tencent TencentSecrets `yaml:"tencent"`
}

// RateLimitConfig 按客户端 IP 的限流配置（每分钟请求数，0 表示不限）。
type RateLimitConfig struct {
	Enabled          *bool `yaml:"enabled"`
	AnalyzePerMinute int   `yaml:"analyze_per_minute"`
	TTSPerMinute     int   `yaml:"tts_per_minute"`
}

// On 返回是否启用限流（默认启用）。
func (r RateLimitConfig) On() bool {
	return r.Enabled == nil || *r.Enabled
}

// CORSConfig 跨域配置。
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS" env-separator:","`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"       env:"TONEO_LOG_LEVEL"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开；带 env 标签的字段可再由环境变量覆盖。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${TENCENTCLOUD_SECRET_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("读取环境变量失败: %w", err)
	}

	setDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回只包含默认值和环境变量的配置（没有配置文件时使用）。
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("读取环境变量失败: %w", err)
	}
	setDefaults(cfg)
	return cfg, cfg.Validate()
}

// setDefaults 为未设置的配置项填充默认值。
func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.TrustedProxies == nil {
		cfg.Server.TrustedProxies = []string{"127.0.0.0/8", "::1/128", "10.0.0.0/8", "172.16.0.0/12"}
	}

	if cfg.Dictionary.Path == "" {
		cfg.Dictionary.Path = "data/cedict.db"
	}
	if cfg.Dictionary.CacheDir == "" {
		cfg.Dictionary.CacheDir = "data/cache"
	}

	cfg.Segment.Engine = strings.ToLower(strings.TrimSpace(cfg.Segment.Engine))
	if cfg.Segment.Engine == "" {
		cfg.Segment.Engine = "gse"
	}
	if cfg.Segment.MaxWordLen == 0 {
		cfg.Segment.MaxWordLen = 8
	}
	if cfg.Frequency.CacheSize == 0 {
		cfg.Frequency.CacheSize = 10000
	}
	if cfg.Analyze.MaxChars == 0 {
		cfg.Analyze.MaxChars = 1000
	}

	cfg.TTS.Engine = strings.ToLower(strings.TrimSpace(cfg.TTS.Engine))
	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "edge"
	}
	if cfg.TTS.MaxChars == 0 {
		cfg.TTS.MaxChars = 200
	}
	if cfg.TTS.CacheDir == "" {
		cfg.TTS.CacheDir = "data/tts_cache"
	}
	if cfg.TTS.CacheMaxMB == 0 {
		cfg.TTS.CacheMaxMB = 200
	}
	if cfg.Translate.Target == "" {
		cfg.Translate.Target = "en"
	}
	// 翻译未单独配置密钥时复用 TTS 的腾讯云密钥
	if !cfg.Translate.Tencent.Configured() {
		cfg.Translate.Tencent = cfg.TTS.Tencent
	}

	if cfg.RateLimit.AnalyzePerMinute == 0 {
		cfg.RateLimit.AnalyzePerMinute = 60
	}
	if cfg.RateLimit.TTSPerMinute == 0 {
		cfg.RateLimit.TTSPerMinute = 30
	}
	if cfg.CORS.AllowedOrigins == nil {
		cfg.CORS.AllowedOrigins = []string{
			"http://localhost:3000",
			"http://localhost:3001",
			"http://127.0.0.1:3000",
		}
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// 去除密钥两端可能的空白（环境变量展开后常见）
	cfg.TTS.Tencent.SecretID = strings.TrimSpace(cfg.TTS.Tencent.SecretID)
	cfg.TTS.Tencent.SecretKey = strings.TrimSpace(cfg.TTS.Tencent.SecretKey)
	cfg.Translate.Tencent.SecretID = strings.TrimSpace(cfg.Translate.Tencent.SecretID)
	cfg.Translate.Tencent.SecretKey = strings.TrimSpace(cfg.Translate.Tencent.SecretKey)
}

// Validate 检查枚举值和取值范围。
func (c *Config) Validate() error {
	switch c.Segment.Engine {
	case "gse", "maxmatch":
	default:
		return fmt.Errorf("config: 不支持的分词器 %q", c.Segment.Engine)
	}
	switch c.TTS.Engine {
	case "edge", "tencent", "none":
	default:
		return fmt.Errorf("config: 不支持的 TTS 引擎 %q", c.TTS.Engine)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: 端口非法 %d", c.Server.Port)
	}
	if c.RateLimit.AnalyzePerMinute < 0 || c.RateLimit.TTSPerMinute < 0 {
		return fmt.Errorf("config: 限流次数不能为负数")
	}
	return nil
}
