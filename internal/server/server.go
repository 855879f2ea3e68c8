// Package server 提供 Toneo 的 HTTP API：文本声调分析、单词查询和语音合成。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/iabetor/toneo/internal/config"
	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/lookup"
	"github.com/iabetor/toneo/internal/tone"
	"github.com/iabetor/toneo/internal/tts"
)

const (
	// AppName 应用名称。
	AppName = "Toneo"
	// Version API 版本。
	Version = "1.0.0"

	maxBodyBytes = 64 << 10
)

// Analyzer 文本声调分析。
type Analyzer interface {
	AnalyzeText(ctx context.Context, text string) (*tone.Analysis, error)
}

// Dictionary 单词查询。
type Dictionary interface {
	Lookup(ctx context.Context, word string) (*lookup.View, error)
}

// Speech 语音合成。
type Speech interface {
	Synthesize(ctx context.Context, req tts.Request) (*tts.Result, error)
	Available() bool
	EngineName() string
}

// Pinger 数据库健康检查。
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps 服务依赖。Analyzer、Dictionary、Speech 必填；DB 为 nil 表示没有词典数据库。
type Deps struct {
	Analyzer   Analyzer
	Dictionary Dictionary
	Speech     Speech
	DB         Pinger
}

// Server HTTP 服务。
type Server struct {
	cfg     *config.Config
	deps    Deps
	limiter *RateLimiter
	handler http.Handler
	http    *http.Server
}

// New 组装路由和中间件。
func New(cfg *config.Config, deps Deps) (*Server, error) {
	if deps.Analyzer == nil || deps.Dictionary == nil || deps.Speech == nil {
		return nil, errors.New("server: 缺少必要依赖")
	}
	ips, err := NewIPResolver(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		deps:    deps,
		limiter: NewRateLimiter(ips, time.Minute),
	}

	analyzeLimit, ttsLimit := 0, 0
	if cfg.RateLimit.On() {
		analyzeLimit = cfg.RateLimit.AnalyzePerMinute
		ttsLimit = cfg.RateLimit.TTSPerMinute
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("POST /api/analyze", s.limiter.Limit("analyze", analyzeLimit)(http.HandlerFunc(s.handleAnalyze)))
	mux.HandleFunc("GET /api/dictionary/{word}", s.handleDictionary)
	mux.HandleFunc("GET /api/tts/voices", s.handleVoices)
	mux.Handle("POST /api/tts", s.limiter.Limit("tts", ttsLimit)(http.HandlerFunc(s.handleTTS)))
	mux.HandleFunc("GET /api/tts/health", s.handleTTSHealth)

	s.handler = Chain(
		Recovery(),
		RequestID(),
		AccessLog(ips),
		CORS(cfg.CORS.AllowedOrigins),
	)(mux)
	return s, nil
}

// Handler 返回完整的 http.Handler（测试使用）。
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start 开始监听，阻塞直到服务关闭。正常关闭时返回 nil。
func (s *Server) Start() error {
	s.http = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.handler,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}
	logger.Infof("[server] 监听 %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP 服务异常退出: %w", err)
	}
	return nil
}

// Shutdown 停止接收新请求并等待处理中的请求结束。
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
