package tone

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iabetor/toneo/internal/dictionary"
	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/phonetic"
	"github.com/iabetor/toneo/internal/sandhi"
)

// Dictionary 按简体精确查词，未找到返回 dictionary.ErrNotFound。
type Dictionary interface {
	Lookup(ctx context.Context, word string) (*dictionary.Entry, error)
}

// Segmenter 把文本切分为词。
type Segmenter interface {
	Segment(text string) []string
}

// FrequencySource 词频（Zipf），ok=false 表示未知。
type FrequencySource interface {
	Frequency(word string) (float64, bool)
}

// Analyzer 文本声调分析器。只持有只读依赖，可并发使用。
type Analyzer struct {
	resolver *Resolver
	dict     Dictionary
	seg      Segmenter
	freq     FrequencySource
}

// Option 配置 Analyzer。
type Option func(*Analyzer)

// WithDictionary 设置词典；未设置时所有词都走读音回退。
func WithDictionary(d Dictionary) Option {
	return func(a *Analyzer) { a.dict = d }
}

// WithFrequency 设置词频来源。
func WithFrequency(f FrequencySource) Option {
	return func(a *Analyzer) { a.freq = f }
}

// NewAnalyzer 创建分析器。
func NewAnalyzer(p Pronouncer, seg Segmenter, opts ...Option) *Analyzer {
	a := &Analyzer{resolver: NewResolver(p), seg: seg}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AnalyzeWord 分析单个词，entry 为 nil 表示词典中没有该词。
func (a *Analyzer) AnalyzeWord(word string, entry *dictionary.Entry) WordTone {
	pre := a.resolver.Resolve(word, entry)

	chars := make([]string, len(pre))
	tones := make([]int, len(pre))
	for i, s := range pre {
		chars[i] = s.Char
		tones[i] = s.Tone
	}

	res, err := sandhi.Apply(chars, tones)
	if err != nil {
		// 保留原始声调，不影响其他词
		logger.Warnf("[tone] 词 %q 变调失败，使用原始声调: %v", word, err)
		res = keepTones(tones)
	}

	src := SourceFallback
	if entry != nil {
		src = SourceDictionary
	}
	wt := Assemble(word, pre, res, src)

	if entry != nil {
		wt.HSKLevel = entry.HSKLevel
		if entry.Definition != "" {
			def := entry.Definition
			wt.Definition = &def
		}
	}
	if a.freq != nil {
		if f, ok := a.freq.Frequency(word); ok {
			wt.Frequency = &f
		}
	}
	return wt
}

// keepTones 变调失败时的结果：声调不变，两个切片互不共享底层数组。
func keepTones(tones []int) sandhi.Result {
	original := make([]int, len(tones))
	copy(original, tones)
	modified := make([]int, len(tones))
	copy(modified, tones)
	return sandhi.Result{OriginalTones: original, ModifiedTones: modified}
}

// AnalyzeText 分词后逐词分析，跳过空白和不含汉字的词，结果保持分词顺序。
// 词典读取出错时返回错误。
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (*Analysis, error) {
	if a.seg == nil {
		return nil, fmt.Errorf("分析器未配置分词器")
	}

	words := make([]WordTone, 0)
	for _, token := range a.seg.Segment(text) {
		if strings.TrimSpace(token) == "" || !phonetic.ContainsHan(token) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		entry, err := a.lookup(ctx, token)
		if err != nil {
			return nil, err
		}
		words = append(words, a.AnalyzeWord(token, entry))
	}

	return &Analysis{Text: text, Words: words}, nil
}

func (a *Analyzer) lookup(ctx context.Context, word string) (*dictionary.Entry, error) {
	if a.dict == nil {
		return nil, nil
	}
	entry, err := a.dict.Lookup(ctx, word)
	if errors.Is(err, dictionary.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("查询词典 %q 失败: %w", word, err)
	}
	return entry, nil
}
