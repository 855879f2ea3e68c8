// Package phonetic 提供基于 go-pinyin 的单字读音回退。
// 词典中没有的字通过它取得标准读音。
package phonetic

import (
	"strings"
	"unicode"

	gopinyin "github.com/mozillazg/go-pinyin"

	"github.com/iabetor/toneo/internal/pinyin"
)

// Pronouncer 单字读音查询，只读，可并发使用。
type Pronouncer struct {
	marked   gopinyin.Args
	numbered gopinyin.Args
}

// New 创建读音查询器（不启用多音字，取首选读音）。
func New() *Pronouncer {
	marked := gopinyin.NewArgs()
	marked.Style = gopinyin.Tone

	numbered := gopinyin.NewArgs()
	numbered.Style = gopinyin.Tone3

	return &Pronouncer{marked: marked, numbered: numbered}
}

// Pronounce 返回单个汉字的带调拼音和声调。
// 非汉字或未收录的字返回 ok=false。
func (p *Pronouncer) Pronounce(char string) (marked string, tone int, ok bool) {
	if !IsHan(char) {
		return "", 0, false
	}
	readings := gopinyin.Pinyin(char, p.marked)
	if len(readings) == 0 || len(readings[0]) == 0 || readings[0][0] == "" {
		return "", 0, false
	}
	marked = readings[0][0]
	return marked, pinyin.ToneFromMarked(marked), true
}

// Word 返回整词逐字的带调拼音和数字拼音，未收录的字跳过。
func (p *Pronouncer) Word(word string) (marked, numbered []string) {
	for _, r := range word {
		ch := string(r)
		m, _, ok := p.Pronounce(ch)
		if !ok {
			continue
		}
		marked = append(marked, m)

		n := ""
		if readings := gopinyin.Pinyin(ch, p.numbered); len(readings) > 0 && len(readings[0]) > 0 {
			n = readings[0][0]
		}
		// 轻声在 Tone3 风格下没有数字
		if n == "" || !pinyin.IsToneDigit(lastRune(n)) {
			n = pinyin.ToNumbered(m)
		}
		numbered = append(numbered, n)
	}
	return marked, numbered
}

// IsHan 判断 s 是否为单个汉字。
func IsHan(s string) bool {
	runes := []rune(s)
	return len(runes) == 1 && unicode.Is(unicode.Han, runes[0])
}

// ContainsHan 判断 s 中是否含有汉字。
func ContainsHan(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return unicode.Is(unicode.Han, r)
	}) >= 0
}

func lastRune(s string) rune {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0
	}
	return runes[len(runes)-1]
}
