// Package segment 中文分词。
//
// Gse 基于 go-ego/gse（结巴词典 + HMM），同时提供词频；
// MaxMatch 是基于词典词表的正向最大匹配，不依赖外部词典文件。
package segment

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/go-ego/gse"

	"github.com/iabetor/toneo/internal/logger"
)

// Gse 结巴风格分词器，只读，可并发使用。
type Gse struct {
	seg gse.Segmenter
}

// NewGse 加载内置词典，dictFiles 为附加的用户词典（逗号分隔格式同 gse）。
func NewGse(dictFiles ...string) (*Gse, error) {
	start := time.Now()
	// 只加载简体词典；同时加载繁体词典时 Find 返回的不是语料词频
	seg, err := gse.New("zh_s")
	if err != nil {
		return nil, fmt.Errorf("加载分词词典失败: %w", err)
	}
	g := &Gse{seg: seg}

	if files := strings.Join(dictFiles, ","); files != "" {
		if err := g.seg.LoadDict(files); err != nil {
			return nil, fmt.Errorf("加载用户词典失败: %w", err)
		}
	}

	logger.Infof("[segment] 分词词典加载完成，耗时 %s", time.Since(start).Round(time.Millisecond))
	return g, nil
}

// Segment 切分文本（开启 HMM 识别未登录词）。
func (g *Gse) Segment(text string) []string {
	if text == "" {
		return nil
	}
	return g.seg.Cut(text, true)
}

// Zipf 返回词的 Zipf 频率（log10 每十亿词出现次数），未收录返回 0。
func (g *Gse) Zipf(word string) float64 {
	freq, _, ok := g.seg.Find(word)
	if !ok || freq <= 0 {
		return 0
	}
	total := g.seg.Dict.TotalFreq()
	if total <= 0 {
		return 0
	}
	return math.Log10(freq / total * 1e9)
}

// DefaultMaxWordLen 最大匹配的默认最大词长（字）。
const DefaultMaxWordLen = 8

// MaxMatch 正向最大匹配分词器。
type MaxMatch struct {
	words  map[string]struct{}
	maxLen int
}

// NewMaxMatch 用词表构造分词器，maxLen<=0 时使用 DefaultMaxWordLen。
func NewMaxMatch(words []string, maxLen int) *MaxMatch {
	if maxLen <= 0 {
		maxLen = DefaultMaxWordLen
	}
	m := &MaxMatch{words: make(map[string]struct{}, len(words)), maxLen: maxLen}
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			m.words[w] = struct{}{}
		}
	}
	return m
}

// Len 词表大小。
func (m *MaxMatch) Len() int {
	return len(m.words)
}

// Segment 从左到右取词表中最长的词；连续的字母数字合为一段，其他未登录字单独成词。
func (m *MaxMatch) Segment(text string) []string {
	runes := []rune(text)
	var tokens []string

	for i := 0; i < len(runes); {
		if isAlnum(runes[i]) {
			j := i + 1
			for j < len(runes) && isAlnum(runes[j]) {
				j++
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
			continue
		}

		n := 1
		for l := min(m.maxLen, len(runes)-i); l > 1; l-- {
			if _, ok := m.words[string(runes[i:i+l])]; ok {
				n = l
				break
			}
		}
		tokens = append(tokens, string(runes[i:i+n]))
		i += n
	}
	return tokens
}

func isAlnum(r rune) bool {
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
