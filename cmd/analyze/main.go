package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/iabetor/toneo/internal/config"
	"github.com/iabetor/toneo/internal/logger"
	"github.com/iabetor/toneo/internal/pipeline"
	"github.com/iabetor/toneo/internal/tone"
)

var demoTexts = []string{"你好", "中国", "我爱你", "不是", "一个人", "妈妈", "学习中文"}

func main() {
	configPath := flag.String("config", "configs/toneo.yaml", "配置文件路径（不存在时使用默认配置）")
	asJSON := flag.Bool("json", false, "输出 JSON")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "用法: analyze [-config path] [-json] [文本...]\n不带文本时分析内置示例。\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}
	// 命令行输出只保留警告以上的日志
	if err := logger.Init(logger.Config{Level: "warn"}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	p, err := pipeline.New(ctx, cfg, pipeline.Options{SkipTTS: true})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化失败: %v\n", err)
		os.Exit(1)
	}
	defer p.Close()

	texts := flag.Args()
	if len(texts) == 0 {
		texts = demoTexts
	}

	for _, text := range texts {
		res, err := p.Analyzer.AnalyzeText(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "分析 %q 失败: %v\n", text, err)
			continue
		}
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			_ = enc.Encode(res)
			continue
		}
		printAnalysis(res)
	}
}

func printAnalysis(res *tone.Analysis) {
	fmt.Printf("\n%s\n", res.Text)
	for _, w := range res.Words {
		fmt.Printf("  %s: %s (tones: %s) [%s]\n", w.Characters, w.Pinyin, joinInts(w.Tones), w.Source)
		if w.HasSandhi && w.SandhiRule != nil {
			fmt.Printf("    变调: %s -> %s (%s)\n", joinInts(w.OriginalTones), joinInts(w.Tones), *w.SandhiRule)
		}
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return config.Default()
	}
	return config.Load(path)
}
