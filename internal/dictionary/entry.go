// Package dictionary 提供 CC-CEDICT 词典的存储、查询与导入。
package dictionary

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ErrNotFound 词典中没有该词。
var ErrNotFound = errors.New("dictionary: 未找到词条")

// Entry 词典词条。
// Pinyin 为空格分隔的数字拼音（如 "zhong1 guo2"），Tones 与之逐一对应。
type Entry struct {
	Simplified  string
	Traditional string // 可为空
	Pinyin      string
	Tones       []int
	Definition  string // 以 "; " 分隔的释义，可为空
	HSKLevel    int
}

// Syllables 返回拆分后的数字拼音音节。
func (e *Entry) Syllables() []string {
	return strings.Fields(e.Pinyin)
}

// Definitions 拆分释义列表，去掉空白项。
func (e *Entry) Definitions() []string {
	var defs []string
	for _, d := range strings.Split(e.Definition, ";") {
		if d = strings.TrimSpace(d); d != "" {
			defs = append(defs, d)
		}
	}
	return defs
}

// Validate 在存储边界校验词条。
// 声调数与字数不一致不视为错误，由解析器按字回退处理。
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.Simplified) == "" {
		return fmt.Errorf("dictionary: 词条缺少简体字")
	}
	if strings.TrimSpace(e.Pinyin) == "" {
		return fmt.Errorf("dictionary: 词条 %s 缺少拼音", e.Simplified)
	}
	if e.HSKLevel < 0 {
		return fmt.Errorf("dictionary: 词条 %s 的 HSK 等级非法: %d", e.Simplified, e.HSKLevel)
	}
	for _, t := range e.Tones {
		if t < 1 || t > 5 {
			return fmt.Errorf("dictionary: 词条 %s 的声调非法: %d", e.Simplified, t)
		}
	}
	return nil
}

// CharCount 返回简体字的字数。
func (e *Entry) CharCount() int {
	return utf8.RuneCountInString(e.Simplified)
}

// ParseTones 解析逗号分隔的声调列，忽略非数字项。
func ParseTones(s string) []int {
	var tones []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 1 || n > 5 {
			continue
		}
		tones = append(tones, n)
	}
	return tones
}

// FormatTones 将声调序列编码为逗号分隔的字符串。
func FormatTones(tones []int) string {
	parts := make([]string, len(tones))
	for i, t := range tones {
		parts[i] = strconv.Itoa(t)
	}
	return strings.Join(parts, ",")
}

// TonesFromPinyin 从数字拼音中提取每个音节的声调，缺少数字的音节为 5。
func TonesFromPinyin(pinyin string) []int {
	syllables := strings.Fields(pinyin)
	tones := make([]int, 0, len(syllables))
	for _, s := range syllables {
		tone := 5
		if r, size := utf8.DecodeLastRuneInString(s); size > 0 && r >= '1' && r <= '5' {
			tone = int(r - '0')
		}
		tones = append(tones, tone)
	}
	return tones
}
