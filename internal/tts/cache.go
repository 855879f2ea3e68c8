package tts

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/iabetor/toneo/internal/logger"
)

const indexFile = "cache_index.json"

// CacheEntry 缓存索引中的一条记录。
type CacheEntry struct {
	Voice    string `json:"voice"`
	Chars    int    `json:"chars"`
	Size     int64  `json:"size"`
	CachedAt string `json:"cached_at"`
	LastUsed string `json:"last_used"`
}

// Cache 管理合成音频的磁盘缓存和索引，总大小超限时淘汰最久未使用的文件。
type Cache struct {
	mu      sync.Mutex
	dir     string
	maxSize int64 // 最大缓存大小（字节），0 表示禁用缓存
	index   map[string]*CacheEntry
}

// NewCache 创建缓存。maxSizeMB 为 0 时禁用缓存。
func NewCache(dir string, maxSizeMB int64) (*Cache, error) {
	c := &Cache{
		dir:   dir,
		index: make(map[string]*CacheEntry),
	}
	if maxSizeMB <= 0 {
		return c, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建缓存目录失败: %w", err)
	}
	c.maxSize = maxSizeMB * 1024 * 1024

	if err := c.loadIndex(); err != nil {
		logger.Warnf("[tts] 加载缓存索引失败（将使用空索引）: %v", err)
	}
	// 移除本地文件不存在的条目
	c.validateIndex()
	return c, nil
}

// CacheKey 由文本、音色、语速、音调生成缓存键（md5）。
func CacheKey(req Request) string {
	raw := req.Text + "_" + req.Voice + "_" +
		strconv.FormatFloat(req.Rate, 'f', -1, 64) + "_" +
		strconv.FormatFloat(req.Pitch, 'f', -1, 64)
	sum := md5.Sum([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// Enabled 返回缓存是否启用。
func (c *Cache) Enabled() bool {
	return c != nil && c.maxSize > 0
}

// Len 返回缓存条目数。
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.index)
}

// Get 读取缓存音频并更新最后使用时间。
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.Enabled() {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.index[key]
	if !ok {
		return nil, false
	}
	data, err := os.ReadFile(c.filePath(key))
	if err != nil {
		logger.Warnf("[tts] 读取缓存文件失败，移除索引: %s: %v", key, err)
		delete(c.index, key)
		c.saveIndexLocked()
		return nil, false
	}
	entry.LastUsed = now()
	return data, true
}

// Put 写入缓存文件（先写临时文件再改名）并更新索引。
func (c *Cache) Put(key string, req Request, data []byte) error {
	if !c.Enabled() {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tmp := c.filePath(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("写入缓存文件失败: %w", err)
	}
	if err := os.Rename(tmp, c.filePath(key)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("保存缓存文件失败: %w", err)
	}

	ts := now()
	c.index[key] = &CacheEntry{
		Voice:    req.Voice,
		Chars:    len([]rune(req.Text)),
		Size:     int64(len(data)),
		CachedAt: ts,
		LastUsed: ts,
	}
	c.evictLocked()

	if err := c.saveIndexLocked(); err != nil {
		return fmt.Errorf("保存缓存索引失败: %w", err)
	}
	logger.Debugf("[tts] 已缓存: %s (%d bytes)", key, len(data))
	return nil
}

// Clear 删除全部缓存文件，返回删除数量。
func (c *Cache) Clear() int {
	if !c.Enabled() {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	deleted := 0
	for key := range c.index {
		if err := os.Remove(c.filePath(key)); err != nil && !os.IsNotExist(err) {
			logger.Warnf("[tts] 删除缓存文件失败: %s: %v", key, err)
			continue
		}
		delete(c.index, key)
		deleted++
	}
	c.saveIndexLocked()
	return deleted
}

func (c *Cache) filePath(key string) string {
	return filepath.Join(c.dir, key+".mp3")
}

func (c *Cache) loadIndex() error {
	data, err := os.ReadFile(filepath.Join(c.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &c.index)
}

// saveIndexLocked 持久化缓存索引（调用方需持有锁）。
func (c *Cache) saveIndexLocked() error {
	data, err := json.MarshalIndent(c.index, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, indexFile), data, 0644)
}

func (c *Cache) validateIndex() {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key := range c.index {
		if _, err := os.Stat(c.filePath(key)); err != nil {
			delete(c.index, key)
			removed++
		}
	}
	if removed > 0 {
		logger.Infof("[tts] 索引校验：移除 %d 个无效条目", removed)
		c.saveIndexLocked()
	}
	logger.Infof("[tts] 缓存已加载: %d 条音频, 目录 %s", len(c.index), c.dir)
}

// evictLocked 总大小超限时按最后使用时间淘汰（调用方需持有锁）。
func (c *Cache) evictLocked() {
	var total int64
	for _, e := range c.index {
		total += e.Size
	}
	if total <= c.maxSize {
		return
	}

	keys := make([]string, 0, len(c.index))
	for k := range c.index {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return c.index[keys[i]].LastUsed < c.index[keys[j]].LastUsed
	})

	for _, key := range keys {
		if total <= c.maxSize {
			break
		}
		if err := os.Remove(c.filePath(key)); err != nil && !os.IsNotExist(err) {
			logger.Warnf("[tts] 删除缓存文件失败: %s: %v", key, err)
			continue
		}
		total -= c.index[key].Size
		delete(c.index, key)
		logger.Debugf("[tts] LRU 淘汰: %s", key)
	}
}

// timeLayout 定长纳秒格式，字符串比较即时间先后。
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func now() string {
	return time.Now().UTC().Format(timeLayout)
}
