// Package lookup 组装单词查询页的数据：词典词条、带调拼音、词频分级和相关词。
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iabetor/toneo/internal/dictionary"
	"github.com/iabetor/toneo/internal/frequency"
	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/pinyin"
)

var (
	// ErrUnavailable 词典不可用。
	ErrUnavailable = errors.New("lookup: 词典不可用")
	// ErrNoReading 词典中没有且无法生成读音。
	ErrNoReading = errors.New("lookup: 未找到该词")
)

const (
	relatedLimit    = 5
	noEntryText     = "(No dictionary entry found)"
	noDefinitionTxt = "(No definition available)"
)

// Store 词典查询。
type Store interface {
	LookupAny(ctx context.Context, word string) (*dictionary.Entry, error)
	Related(ctx context.Context, simplified string, limit int) ([]string, error)
}

// Reader 逐字读音，词典中没有该词时使用。
type Reader interface {
	Word(word string) (marked, numbered []string)
}

// FrequencySource 词频。
type FrequencySource interface {
	Frequency(word string) (float64, bool)
}

// Translator 为词典外的词生成释义（可选）。
type Translator interface {
	Translate(ctx context.Context, text string) (string, error)
}

// View 单词查询结果。
type View struct {
	Simplified    string   `json:"simplified"`
	Traditional   *string  `json:"traditional"`
	Pinyin        string   `json:"pinyin"`
	PinyinNum     string   `json:"pinyin_num"`
	Tones         []int    `json:"tones"`
	Definitions   []string `json:"definitions"`
	HSKLevel      int      `json:"hsk_level"`
	Frequency     *float64 `json:"frequency"`
	FrequencyTier string   `json:"frequency_tier"`
	Examples      []string `json:"examples"`
	Related       []string `json:"related"`
}

// Service 单词查询服务。
type Service struct {
	store      Store
	reader     Reader
	freq       FrequencySource
	translator Translator
}

// NewService 创建查询服务。store 为 nil 时 Lookup 返回 ErrUnavailable；
// translator 可为 nil。
func NewService(store Store, reader Reader, freq FrequencySource, translator Translator) *Service {
	return &Service{store: store, reader: reader, freq: freq, translator: translator}
}

// Lookup 按简体或繁体查词；词典中没有时用逐字读音生成结果。
func (s *Service) Lookup(ctx context.Context, word string) (*View, error) {
	if s.store == nil {
		return nil, ErrUnavailable
	}
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, ErrNoReading
	}

	entry, err := s.store.LookupAny(ctx, word)
	if errors.Is(err, dictionary.ErrNotFound) {
		return s.fallback(ctx, word)
	}
	if err != nil {
		return nil, fmt.Errorf("查询词典失败: %w", err)
	}
	return s.fromEntry(ctx, entry)
}

func (s *Service) fromEntry(ctx context.Context, e *dictionary.Entry) (*View, error) {
	syllables := e.Syllables()
	marked := make([]string, len(syllables))
	for i, syl := range syllables {
		marked[i] = pinyin.FromNumbered(syl)
	}

	v := &View{
		Simplified:  e.Simplified,
		Pinyin:      strings.Join(marked, " "),
		PinyinNum:   e.Pinyin,
		Tones:       nonNil(e.Tones),
		Definitions: e.Definitions(),
		HSKLevel:    e.HSKLevel,
		Examples:    []string{},
	}
	if e.Traditional != "" {
		trad := e.Traditional
		v.Traditional = &trad
	}
	if len(v.Definitions) == 0 {
		v.Definitions = []string{noDefinitionTxt}
	}
	s.setFrequency(v, e.Simplified)

	related, err := s.store.Related(ctx, e.Simplified, relatedLimit)
	if err != nil {
		return nil, fmt.Errorf("查询相关词失败: %w", err)
	}
	v.Related = nonNilStrings(related)
	return v, nil
}

func (s *Service) fallback(ctx context.Context, word string) (*View, error) {
	if s.reader == nil {
		return nil, ErrNoReading
	}
	marked, numbered := s.reader.Word(word)
	if len(marked) == 0 {
		return nil, ErrNoReading
	}

	tones := make([]int, len(marked))
	for i, m := range marked {
		tones[i] = pinyin.ToneFromMarked(m)
	}

	v := &View{
		Simplified:  word,
		Pinyin:      strings.Join(marked, " "),
		PinyinNum:   strings.Join(numbered, " "),
		Tones:       tones,
		Definitions: []string{s.translate(ctx, word)},
		Examples:    []string{},
		Related:     []string{},
	}
	s.setFrequency(v, word)
	return v, nil
}

// translate 翻译失败不影响查询结果。
func (s *Service) translate(ctx context.Context, word string) string {
	if s.translator == nil {
		return noEntryText
	}
	text, err := s.translator.Translate(ctx, word)
	if err != nil {
		logger.Warnf("[lookup] 翻译 %q 失败: %v", word, err)
		return noEntryText
	}
	if text = strings.TrimSpace(text); text == "" {
		return noEntryText
	}
	return text
}

func (s *Service) setFrequency(v *View, word string) {
	var (
		f  float64
		ok bool
	)
	if s.freq != nil {
		f, ok = s.freq.Frequency(word)
	}
	if ok {
		v.Frequency = &f
	}
	v.FrequencyTier = frequency.Tier(f, ok)
}

func nonNil(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

func nonNilStrings(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
