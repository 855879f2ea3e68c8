package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSetDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	setDefaults(cfg)

	checks := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"Server.Host", cfg.Server.Host, "0.0.0.0"},
		{"Server.Port", cfg.Server.Port, 8000},
		{"Server.ShutdownTimeout", cfg.Server.ShutdownTimeout, 10 * time.Second},
		{"Dictionary.Path", cfg.Dictionary.Path, "data/cedict.db"},
		{"Segment.Engine", cfg.Segment.Engine, "gse"},
		{"Segment.MaxWordLen", cfg.Segment.MaxWordLen, 8},
		{"Frequency.CacheSize", cfg.Frequency.CacheSize, 10000},
		{"Analyze.MaxChars", cfg.Analyze.MaxChars, 1000},
		{"TTS.Engine", cfg.TTS.Engine, "edge"},
		{"TTS.MaxChars", cfg.TTS.MaxChars, 200},
		{"TTS.CacheDir", cfg.TTS.CacheDir, "data/tts_cache"},
		{"Translate.Target", cfg.Translate.Target, "en"},
		{"RateLimit.AnalyzePerMinute", cfg.RateLimit.AnalyzePerMinute, 60},
		{"RateLimit.TTSPerMinute", cfg.RateLimit.TTSPerMinute, 30},
		{"Log.Level", cfg.Log.Level, "info"},
	}

	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s: got %v, want %v", c.name, c.got, c.want)
		}
	}
	if !cfg.RateLimit.On() {
		t.Error("限流默认应启用")
	}
	if len(cfg.CORS.AllowedOrigins) == 0 || len(cfg.Server.TrustedProxies) == 0 {
		t.Error("CORS 和可信代理应有默认值")
	}
}

func TestSetDefaults_DoesNotOverride(t *testing.T) {
	off := false
	cfg := &Config{
		Server:    ServerConfig{Port: 9000},
		Segment:   SegmentConfig{Engine: " MaxMatch "},
		TTS:       TTSConfig{Engine: "tencent", MaxChars: 100},
		RateLimit: RateLimitConfig{Enabled: &off, TTSPerMinute: 5},
		Log:       LogConfig{Level: "debug"},
	}
	setDefaults(cfg)

	if cfg.Server.Port != 9000 {
		t.Errorf("Port should not be overridden: got %d", cfg.Server.Port)
	}
	if cfg.Segment.Engine != "maxmatch" {
		t.Errorf("Segment.Engine 应被规范化: got %q", cfg.Segment.Engine)
	}
	if cfg.TTS.Engine != "tencent" || cfg.TTS.MaxChars != 100 {
		t.Errorf("TTS should not be overridden: got %+v", cfg.TTS)
	}
	if cfg.RateLimit.On() || cfg.RateLimit.TTSPerMinute != 5 {
		t.Errorf("RateLimit should not be overridden: got %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level should not be overridden: got %s", cfg.Log.Level)
	}
}

func TestSetDefaults_TranslateReusesTTSSecrets(t *testing.T) {
	cfg := &Config{
		TTS: TTSConfig{Tencent: TencentSecrets{SecretID: " id ", SecretKey: "key", Region: "ap-shanghai"}},
	}
	setDefaults(cfg)
	if cfg.Translate.Tencent.SecretID != "id" || cfg.Translate.Tencent.Region != "ap-shanghai" {
		t.Errorf("翻译应复用 TTS 密钥，得到 %+v", cfg.Translate.Tencent)
	}
	if !cfg.TTS.Tencent.Configured() {
		t.Error("密钥应视为已配置")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	return path
}

func TestLoad_ValidYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  read_timeout: 5s
  trusted_proxies: ["10.0.0.0/8"]
dictionary:
  path: /tmp/cedict.db
segment:
  engine: maxmatch
tts:
  engine: none
rate_limit:
  analyze_per_minute: 10
log:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 9090 || cfg.Server.ReadTimeout != 5*time.Second {
		t.Errorf("Server: got %+v", cfg.Server)
	}
	if len(cfg.Server.TrustedProxies) != 1 {
		t.Errorf("TrustedProxies: got %v", cfg.Server.TrustedProxies)
	}
	if cfg.Dictionary.Path != "/tmp/cedict.db" {
		t.Errorf("Dictionary.Path: got %q", cfg.Dictionary.Path)
	}
	if cfg.Segment.Engine != "maxmatch" || cfg.TTS.Engine != "none" {
		t.Errorf("engines: got %q / %q", cfg.Segment.Engine, cfg.TTS.Engine)
	}
	if cfg.RateLimit.AnalyzePerMinute != 10 || cfg.RateLimit.TTSPerMinute != 30 {
		t.Errorf("RateLimit: got %+v", cfg.RateLimit)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level: got %q", cfg.Log.Level)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_SECRET_KEY", "secret-from-env")

	path := writeConfig(t, `
tts:
  tencent:
    secret_id: "abc"
    secret_key: "${TEST_SECRET_KEY}"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TTS.Tencent.SecretKey != "secret-from-env" {
		t.Errorf("expected env var expansion, got %q", cfg.TTS.Tencent.SecretKey)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TONEO_PORT", "7000")
	t.Setenv("TONEO_LOG_LEVEL", "warn")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	path := writeConfig(t, `
server:
  port: 9090
log:
  level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != 7000 {
		t.Errorf("环境变量应覆盖端口，得到 %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("环境变量应覆盖日志级别，得到 %q", cfg.Log.Level)
	}
	if len(cfg.CORS.AllowedOrigins) != 2 || cfg.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("CORS_ORIGINS: got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Invalid(t *testing.T) {
	if _, err := Load("/nonexistent/path/config.yaml"); err == nil {
		t.Fatal("expected error for nonexistent file")
	}
	if _, err := Load(writeConfig(t, "segment:\n  engine: jieba\n")); err == nil {
		t.Error("不支持的分词器应报错")
	}
	if _, err := Load(writeConfig(t, "tts:\n  engine: azure\n")); err == nil {
		t.Error("不支持的 TTS 引擎应报错")
	}
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Error("YAML 格式错误应报错")
	}
}

func TestWatch_Reload(t *testing.T) {
	path := writeConfig(t, "log:\n  level: info\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan *Config, 4)
	if err := Watch(ctx, path, func(c *Config) { changed <- c }); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changed:
		if c.Log.Level != "debug" {
			t.Errorf("重新加载后的级别应为 debug，得到 %q", c.Log.Level)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("未收到配置变更通知")
	}
}
