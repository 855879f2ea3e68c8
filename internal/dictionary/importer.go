package dictionary

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/iabetor/toneo/internal/logger"
)

const (
	// DefaultCEDICTURL CC-CEDICT 下载地址（CC BY-SA 4.0）。
	DefaultCEDICTURL = "https://www.mdbg.net/chinese/export/cedict/cedict_1_0_ts_utf-8_mdbg.txt.gz"
	// DefaultHSKURL HSK 3.0 词表。
	DefaultHSKURL = "https://raw.githubusercontent.com/ivankra/hsk30/master/hsk30.csv"
)

// Importer 把 CC-CEDICT 和 HSK 词表导入 Store。
type Importer struct {
	Store     *Store
	CacheDir  string // 下载缓存目录
	CEDICTURL string
	HSKURL    string
	Force     bool // 忽略缓存重新下载
	BatchSize int
	Client    *http.Client
}

// Run 下载（或复用缓存）、解析并写入词典，返回写入条数。
func (im *Importer) Run(ctx context.Context) (int, error) {
	if im.Store == nil {
		return 0, fmt.Errorf("导入器未设置词典存储")
	}
	if im.BatchSize <= 0 {
		im.BatchSize = 2000
	}

	cedictPath, err := im.fetch(ctx, orDefault(im.CEDICTURL, DefaultCEDICTURL), "cedict.txt.gz")
	if err != nil {
		return 0, err
	}

	var hsk map[string]int
	if hskPath, err := im.fetch(ctx, orDefault(im.HSKURL, DefaultHSKURL), "hsk30.csv"); err != nil {
		logger.Warnf("[import] 无法获取 HSK 数据，HSK 等级将为 0: %v", err)
	} else if hsk, err = loadHSKFile(hskPath); err != nil {
		logger.Warnf("[import] 解析 HSK 数据失败，HSK 等级将为 0: %v", err)
	} else {
		logger.Infof("[import] 已加载 %d 个 HSK 3.0 词条", len(hsk))
	}

	f, err := os.Open(cedictPath)
	if err != nil {
		return 0, fmt.Errorf("打开 CC-CEDICT 失败: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(cedictPath, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return 0, fmt.Errorf("解压 CC-CEDICT 失败: %w", err)
		}
		defer gz.Close()
		r = gz
	}

	return im.Load(ctx, r, hsk)
}

// Load 清空词典后从 r 读取 CC-CEDICT 写入，hsk 可为 nil。
func (im *Importer) Load(ctx context.Context, r io.Reader, hsk map[string]int) (int, error) {
	if im.BatchSize <= 0 {
		im.BatchSize = 2000
	}
	if err := im.Store.Reset(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	batch := make([]Entry, 0, im.BatchSize)
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := im.Store.InsertBatch(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		return nil
	}

	parsed, err := ParseCEDICT(r, func(e Entry) error {
		if level, ok := hsk[e.Simplified]; ok {
			e.HSKLevel = level
		}
		batch = append(batch, e)
		if len(batch) >= im.BatchSize {
			if err := flush(); err != nil {
				return err
			}
			logger.Debugf("[import] 已写入 %d 条", total)
		}
		return nil
	})
	if err != nil {
		return total, err
	}
	if err := flush(); err != nil {
		return total, err
	}

	logger.Infof("[import] 解析 %d 条，写入 %d 条，耗时 %s", parsed, total, time.Since(start).Round(time.Millisecond))
	return total, nil
}

// fetch 返回本地文件路径；url 为本地路径时直接使用，否则下载到缓存目录。
func (im *Importer) fetch(ctx context.Context, url, name string) (string, error) {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		if _, err := os.Stat(url); err != nil {
			return "", fmt.Errorf("本地文件不可用 %s: %w", url, err)
		}
		return url, nil
	}

	cacheDir := orDefault(im.CacheDir, filepath.Join("data", "cache"))
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return "", fmt.Errorf("创建缓存目录失败: %w", err)
	}
	target := filepath.Join(cacheDir, name)
	if _, err := os.Stat(target); err == nil && !im.Force {
		logger.Infof("[import] 使用缓存文件: %s", target)
		return target, nil
	}

	logger.Infof("[import] 正在下载 %s", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	client := im.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("下载 %s 失败: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("下载 %s 失败: HTTP %d", url, resp.StatusCode)
	}

	// 先写临时文件，完整下载后再改名
	tmp := target + ".tmp"
	out, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("创建缓存文件失败: %w", err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("写入缓存文件失败: %w", err)
	}
	if err := out.Close(); err != nil {
		os.Remove(tmp)
		return "", err
	}
	if err := os.Rename(tmp, target); err != nil {
		return "", fmt.Errorf("保存缓存文件失败: %w", err)
	}
	logger.Infof("[import] 已下载到 %s", target)
	return target, nil
}

func loadHSKFile(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseHSK(f)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
