// Package pipeline 根据配置组装 Toneo 的各个组件：词典、分词、词频、
// 声调分析、单词查询和语音合成。服务进程和命令行工具共用。
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/iabetor/toneo/internal/config"
	"github.com/iabetor/toneo/internal/dictionary"
	"github.com/iabetor/toneo/internal/frequency"
	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/lookup"
	"github.com/iabetor/toneo/internal/phonetic"
	"github.com/iabetor/toneo/internal/segment"
	"github.com/iabetor/toneo/internal/server"
	"github.com/iabetor/toneo/internal/tone"
	"github.com/iabetor/toneo/internal/tts"
)

// Pipeline 持有所有组件。Store 和 Frequency 可能为 nil。
type Pipeline struct {
	cfg *config.Config

	Store     *dictionary.Store
	Frequency *frequency.Cached
	Analyzer  *tone.Analyzer
	Lookup    *lookup.Service
	Speech    *tts.Service
}

// Options 控制可选组件的构建。
type Options struct {
	// SkipTTS 不创建语音合成（命令行分析不需要）。
	SkipTTS bool
}

// New 按配置创建所有组件。词典数据库不存在时以读音回退模式运行。
func New(ctx context.Context, cfg *config.Config, opts Options) (*Pipeline, error) {
	p := &Pipeline{cfg: cfg}

	if err := p.openStore(ctx); err != nil {
		return nil, err
	}

	seg, err := p.newSegmenter(ctx)
	if err != nil {
		p.Close()
		return nil, err
	}

	reader := phonetic.New()
	analyzerOpts := []tone.Option{}
	var (
		store lookup.Store
		freq  lookup.FrequencySource
	)
	if p.Store != nil {
		analyzerOpts = append(analyzerOpts, tone.WithDictionary(p.Store))
		store = p.Store
	}
	if p.Frequency != nil {
		analyzerOpts = append(analyzerOpts, tone.WithFrequency(p.Frequency))
		freq = p.Frequency
	}
	p.Analyzer = tone.NewAnalyzer(reader, seg, analyzerOpts...)

	translator, err := newTranslator(cfg.Translate)
	if err != nil {
		p.Close()
		return nil, err
	}
	p.Lookup = lookup.NewService(store, reader, freq, translator)

	if opts.SkipTTS {
		p.Speech = tts.NewService(nil, nil, cfg.TTS.MaxChars)
	} else if p.Speech, err = newSpeech(cfg.TTS); err != nil {
		p.Close()
		return nil, err
	}

	logger.Infof("[pipeline] 初始化完成 (dictionary=%t, segment=%s, frequency=%t, tts=%s)",
		p.Store != nil, cfg.Segment.Engine, p.Frequency != nil, p.Speech.EngineName())
	return p, nil
}

func (p *Pipeline) openStore(ctx context.Context) error {
	path := p.cfg.Dictionary.Path
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		logger.Warnf("[pipeline] 词典数据库 %s 不存在，请先运行 cedict-import；当前仅使用读音回退", path)
		return nil
	}
	store, err := dictionary.Open(ctx, path)
	if err != nil {
		return fmt.Errorf("打开词典失败: %w", err)
	}
	p.Store = store
	return nil
}

// newSegmenter gse 同时提供分词和词频；maxmatch 只依赖词典词表，不提供词频。
func (p *Pipeline) newSegmenter(ctx context.Context) (tone.Segmenter, error) {
	switch p.cfg.Segment.Engine {
	case "maxmatch":
		var words []string
		if p.Store != nil {
			var err error
			if words, err = p.Store.Words(ctx); err != nil {
				return nil, fmt.Errorf("读取词表失败: %w", err)
			}
		}
		mm := segment.NewMaxMatch(words, p.cfg.Segment.MaxWordLen)
		logger.Infof("[pipeline] 最大匹配分词: %d 个词", mm.Len())
		return mm, nil
	default:
		g, err := segment.NewGse(p.cfg.Segment.DictFiles...)
		if err != nil {
			return nil, err
		}
		if p.Frequency, err = frequency.NewCached(g, p.cfg.Frequency.CacheSize); err != nil {
			return nil, err
		}
		return g, nil
	}
}

func newTranslator(cfg config.TranslateConfig) (lookup.Translator, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if !cfg.Tencent.Configured() {
		logger.Warnf("[pipeline] 已启用翻译但未配置腾讯云密钥，忽略")
		return nil, nil
	}
	t, err := lookup.NewTencentTranslator(cfg.Tencent.SecretID, cfg.Tencent.SecretKey, cfg.Tencent.Region, cfg.Target)
	if err != nil {
		return nil, fmt.Errorf("初始化翻译失败: %w", err)
	}
	return t, nil
}

func newSpeech(cfg config.TTSConfig) (*tts.Service, error) {
	var engine tts.Engine
	switch cfg.Engine {
	case "edge":
		engine = tts.NewEdgeEngine()
	case "tencent":
		e, err := tts.NewTencentEngine(tts.TencentConfig{
			SecretID:  cfg.Tencent.SecretID,
			SecretKey: cfg.Tencent.SecretKey,
			Region:    cfg.Tencent.Region,
		})
		if err != nil {
			return nil, fmt.Errorf("初始化腾讯云 TTS 失败: %w", err)
		}
		engine = e
	case "none":
		logger.Info("[pipeline] 语音合成已禁用")
		return tts.NewService(nil, nil, cfg.MaxChars), nil
	}

	cache, err := tts.NewCache(cfg.CacheDir, cfg.CacheMaxMB)
	if err != nil {
		return nil, fmt.Errorf("初始化 TTS 缓存失败: %w", err)
	}
	return tts.NewService(engine, cache, cfg.MaxChars), nil
}

// ServerDeps 返回 HTTP 服务所需的依赖。
func (p *Pipeline) ServerDeps() server.Deps {
	deps := server.Deps{
		Analyzer:   p.Analyzer,
		Dictionary: p.Lookup,
		Speech:     p.Speech,
	}
	if p.Store != nil {
		deps.DB = p.Store
	}
	return deps
}

// Close 释放资源，可重复调用。
func (p *Pipeline) Close() {
	if p.Store != nil {
		if err := p.Store.Close(); err != nil {
			logger.Warnf("[pipeline] 关闭词典失败: %v", err)
		}
		p.Store = nil
	}
}
