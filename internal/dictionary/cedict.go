package dictionary

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// cedictLine 匹配 "繁體 简体 [pin1 yin1] /释义1/释义2/"。
var cedictLine = regexp.MustCompile(`^(\S+)\s+(\S+)\s+\[([^\]]+)\]\s+/(.+)/$`)

// ParseCEDICTLine 解析一行 CC-CEDICT。注释行、空行和格式不符的行返回 false。
func ParseCEDICTLine(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Entry{}, false
	}

	m := cedictLine.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false
	}
	traditional, simplified, rawPinyin, definitions := m[1], m[2], m[3], m[4]

	pinyin := strings.ToLower(strings.Join(strings.Fields(rawPinyin), " "))
	return Entry{
		Simplified:  simplified,
		Traditional: traditional,
		Pinyin:      pinyin,
		Tones:       TonesFromPinyin(pinyin),
		Definition:  strings.ReplaceAll(definitions, "/", "; "),
	}, true
}

// ParseCEDICT 逐行读取 CC-CEDICT，对每个有效词条调用 fn。
// fn 返回错误时停止读取并返回该错误。
func ParseCEDICT(r io.Reader, fn func(Entry) error) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	n := 0
	for scanner.Scan() {
		e, ok := ParseCEDICTLine(scanner.Text())
		if !ok {
			continue
		}
		if err := fn(e); err != nil {
			return n, err
		}
		n++
	}
	if err := scanner.Err(); err != nil {
		return n, fmt.Errorf("读取 CC-CEDICT 失败: %w", err)
	}
	return n, nil
}

// ParseHSK 解析 hsk30.csv，返回 简体词 -> HSK 等级。
// 列: ID,Simplified,Traditional,Pinyin,POS,Level,...；"7-9" 记为 7，
// "爸爸|爸" 形式的变体分别记录，同一个词以首次出现的等级为准。
func ParseHSK(r io.Reader) (map[string]int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]int{}, nil
		}
		return nil, fmt.Errorf("读取 HSK 表头失败: %w", err)
	}

	levels := make(map[string]int)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("读取 HSK 数据失败: %w", err)
		}
		if len(row) < 6 {
			continue
		}

		level, ok := parseHSKLevel(row[5])
		if !ok {
			continue
		}
		for _, word := range strings.Split(row[1], "|") {
			word = strings.TrimSpace(word)
			if word == "" {
				continue
			}
			if _, exists := levels[word]; !exists {
				levels[word] = level
			}
		}
	}
	return levels, nil
}

func parseHSKLevel(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "7-9" {
		return 7, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 9 {
		return 0, false
	}
	return n, true
}
