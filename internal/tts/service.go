// Package tts 提供中文语音合成：Edge / 腾讯云引擎、音色表和带磁盘缓存的合成服务。
package tts

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/hajimehoshi/go-mp3"

	"github.com/iabetor/toneo/internal/logger"
)

// DefaultMaxChars 单次合成的默认最大字符数。
const DefaultMaxChars = 200

// Result 合成结果。Duration 无法解析时为 0。
type Result struct {
	Audio    []byte
	Duration time.Duration
	Cached   bool
}

// Service 语音合成服务，可并发使用。
type Service struct {
	engine   Engine
	cache    *Cache
	maxChars int
}

// NewService 创建合成服务。engine 为 nil 表示未配置（Synthesize 返回 ErrUnavailable），
// cache 可为 nil。
func NewService(engine Engine, cache *Cache, maxChars int) *Service {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Service{engine: engine, cache: cache, maxChars: maxChars}
}

// Available 返回是否配置了合成引擎。
func (s *Service) Available() bool {
	return s.engine != nil
}

// EngineName 返回引擎名称，未配置时为空。
func (s *Service) EngineName() string {
	if s.engine == nil {
		return ""
	}
	return s.engine.Name()
}

// MaxChars 单次合成的最大字符数。
func (s *Service) MaxChars() int {
	return s.maxChars
}

// Synthesize 校验请求，命中缓存直接返回，否则调用引擎合成并写入缓存。
func (s *Service) Synthesize(ctx context.Context, req Request) (*Result, error) {
	req.Normalize()
	if err := req.Validate(s.maxChars); err != nil {
		return nil, err
	}
	if _, ok := LookupVoice(req.Voice); !ok {
		logger.Debugf("[tts] 未知音色 %q，使用默认音色", req.Voice)
		req.Voice = DefaultVoice
	}
	if s.engine == nil {
		return nil, ErrUnavailable
	}

	key := CacheKey(req)
	if data, ok := s.cache.Get(key); ok {
		logger.Debugf("[tts] 命中缓存: %s", key)
		return &Result{Audio: data, Duration: probeDuration(data), Cached: true}, nil
	}

	start := time.Now()
	data, err := s.engine.Synthesize(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s 合成失败: %w", s.engine.Name(), err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s 合成失败: 音频为空", s.engine.Name())
	}
	logger.Infof("[tts] %s 合成完成: %d 字节，耗时 %s", s.engine.Name(), len(data), time.Since(start).Round(time.Millisecond))

	if err := s.cache.Put(key, req, data); err != nil {
		logger.Warnf("[tts] 写入缓存失败: %v", err)
	}
	return &Result{Audio: data, Duration: probeDuration(data)}, nil
}

// probeDuration 解码 MP3 头估算时长，失败返回 0。
func probeDuration(data []byte) time.Duration {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return 0
	}
	// 解码输出为 16-bit 立体声，每帧 4 字节
	const bytesPerFrame = 4
	length := dec.Length()
	rate := dec.SampleRate()
	if length <= 0 || rate <= 0 {
		return 0
	}
	frames := length / bytesPerFrame
	return time.Duration(frames) * time.Second / time.Duration(rate)
}
