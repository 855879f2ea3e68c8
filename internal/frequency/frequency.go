// Package frequency 提供带缓存的词频（Zipf）查询和常用度分级。
package frequency

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize 默认缓存词数。
const DefaultCacheSize = 10000

// Source 词频来源，未收录返回 0。
type Source interface {
	Zipf(word string) float64
}

// Cached 对 Source 做只读缓存，可并发使用。
// 同一个词的并发未命中可能各自计算一次，结果相同。
type Cached struct {
	src   Source
	cache *lru.Cache[string, float64]
}

// NewCached 创建缓存，size<=0 时使用 DefaultCacheSize。
func NewCached(src Source, size int) (*Cached, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, float64](size)
	if err != nil {
		return nil, fmt.Errorf("创建词频缓存失败: %w", err)
	}
	return &Cached{src: src, cache: cache}, nil
}

// Frequency 返回保留两位小数的 Zipf 频率，未收录时 ok=false。
func (c *Cached) Frequency(word string) (float64, bool) {
	v, hit := c.cache.Get(word)
	if !hit {
		v = round2(c.src.Zipf(word))
		c.cache.Add(word, v)
	}
	if v <= 0 {
		return 0, false
	}
	return v, true
}

// Len 当前缓存的词数。
func (c *Cached) Len() int {
	return c.cache.Len()
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// 常用度分级。
const (
	TierVeryCommon = "veryCommon"
	TierCommon     = "common"
	TierUncommon   = "uncommon"
	TierRare       = "rare"
	TierUnknown    = "unknown"
)

// Tier 按 Zipf 频率分级，ok=false 表示未知。
func Tier(zipf float64, ok bool) string {
	switch {
	case !ok:
		return TierUnknown
	case zipf >= 6:
		return TierVeryCommon
	case zipf >= 4:
		return TierCommon
	case zipf >= 2:
		return TierUncommon
	default:
		return TierRare
	}
}
