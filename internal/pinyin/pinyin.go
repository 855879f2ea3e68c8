// Package pinyin 在声调数字拼音与声调符号拼音之间转换单个音节。
package pinyin

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// NeutralTone 轻声，不标调号。
const NeutralTone = 5

type markedVowel struct {
	base rune
	tone int
}

// toneMarks 带调元音 -> (基础元音, 声调)。
var toneMarks = map[rune]markedVowel{
	'ā': {'a', 1}, 'á': {'a', 2}, 'ǎ': {'a', 3}, 'à': {'a', 4},
	'ē': {'e', 1}, 'é': {'e', 2}, 'ě': {'e', 3}, 'è': {'e', 4},
	'ī': {'i', 1}, 'í': {'i', 2}, 'ǐ': {'i', 3}, 'ì': {'i', 4},
	'ō': {'o', 1}, 'ó': {'o', 2}, 'ǒ': {'o', 3}, 'ò': {'o', 4},
	'ū': {'u', 1}, 'ú': {'u', 2}, 'ǔ': {'u', 3}, 'ù': {'u', 4},
	'ǖ': {'ü', 1}, 'ǘ': {'ü', 2}, 'ǚ': {'ü', 3}, 'ǜ': {'ü', 4},
}

// vowelMarks 基础元音 -> 1~4 声的带调形式。
var vowelMarks = map[rune][4]rune{
	'a': {'ā', 'á', 'ǎ', 'à'},
	'e': {'ē', 'é', 'ě', 'è'},
	'i': {'ī', 'í', 'ǐ', 'ì'},
	'o': {'ō', 'ó', 'ǒ', 'ò'},
	'u': {'ū', 'ú', 'ǔ', 'ù'},
	'ü': {'ǖ', 'ǘ', 'ǚ', 'ǜ'},
}

// markFor 返回 (base, tone) 对应的带调元音，tone 不在 1~4 时返回 base。
func markFor(base rune, tone int) rune {
	marks, ok := vowelMarks[base]
	if !ok || tone < 1 || tone > 4 {
		return base
	}
	return marks[tone-1]
}

// IsToneDigit 判断 r 是否为合法声调数字 1~5。
func IsToneDigit(r rune) bool {
	return r >= '1' && r <= '5'
}

// trailingTone 返回末尾声调数字及去掉数字后的部分。
func trailingTone(s string) (string, int, bool) {
	r, size := utf8.DecodeLastRuneInString(s)
	if size == 0 || r < '0' || r > '9' {
		return s, 0, false
	}
	tone := int(r - '0')
	if tone < 1 || tone > 5 {
		tone = NeutralTone
	}
	return s[:len(s)-size], tone, true
}

// ToneFromNumbered 返回数字拼音末尾数字表示的声调，没有数字时为 5。
// 调号不参与判断。
func ToneFromNumbered(syllable string) int {
	if _, tone, ok := trailingTone(syllable); ok {
		return tone
	}
	return NeutralTone
}

// ToneFromMarked 从拼音中提取声调。
// 以从左到右第一个带调元音为准；没有调号时使用末尾数字；都没有则为轻声 5。
func ToneFromMarked(syllable string) int {
	for _, r := range syllable {
		if mv, ok := toneMarks[r]; ok {
			return mv.tone
		}
	}
	if _, tone, ok := trailingTone(syllable); ok {
		return tone
	}
	return NeutralTone
}

// stripMarks 去掉所有调号，返回基础拼音和第一个调号对应的声调（无调号为 0）。
func stripMarks(syllable string) (string, int) {
	var b strings.Builder
	b.Grow(len(syllable))
	tone := 0
	for _, r := range syllable {
		if mv, ok := toneMarks[r]; ok {
			if tone == 0 {
				tone = mv.tone
			}
			b.WriteRune(mv.base)
			continue
		}
		b.WriteRune(r)
	}
	return b.String(), tone
}

// ToNumbered 将带调号拼音转换为数字拼音，如 "zhōng" -> "zhong1"。
// 已经以数字结尾的音节原样返回；没有调号的音节追加 5。
func ToNumbered(syllable string) string {
	if _, _, ok := trailingTone(syllable); ok {
		return syllable
	}
	base, tone := stripMarks(syllable)
	if tone == 0 {
		tone = NeutralTone
	}
	return base + string(rune('0'+tone))
}

// Retone 将音节改为新声调。
// 新声调为 5 时去掉全部调号；否则只替换第一个带调元音。
// 没有带调元音时原样返回（不会为未标调的音节补标调号）。
func Retone(syllable string, tone int) string {
	if tone == NeutralTone {
		base, _ := stripMarks(syllable)
		return base
	}
	if tone < 1 || tone > 4 {
		return syllable
	}
	for i, r := range syllable {
		mv, ok := toneMarks[r]
		if !ok {
			continue
		}
		return syllable[:i] + string(markFor(mv.base, tone)) + syllable[i+utf8.RuneLen(r):]
	}
	return syllable
}

// FromNumbered 将数字拼音转换为带调号拼音，如 "zhong1" -> "zhōng"。
// "u:" 与 "v" 视为 ü；5 声只去掉数字；找不到元音的音节原样返回。
func FromNumbered(syllable string) string {
	body, tone, ok := trailingTone(syllable)
	if !ok {
		return syllable
	}
	body = normalizeUmlaut(body)

	idx := markIndex(body)
	if idx < 0 {
		return syllable
	}
	if tone == NeutralTone {
		return body
	}
	r, size := utf8.DecodeRuneInString(body[idx:])
	mark := markFor(unicode.ToLower(r), tone)
	if unicode.IsUpper(r) {
		mark = unicode.ToUpper(mark)
	}
	return body[:idx] + string(mark) + body[idx+size:]
}

// ReplaceToneDigit 替换数字拼音末尾的声调数字，如 ("ni3", 2) -> "ni2"。
// 没有数字的音节先去掉调号再追加数字，如 ("bù", 2) -> "bu2"。
func ReplaceToneDigit(numbered string, tone int) string {
	base, _, ok := trailingTone(numbered)
	if !ok {
		base, _ = stripMarks(numbered)
	}
	return base + string(rune('0'+tone))
}

func normalizeUmlaut(s string) string {
	if !strings.ContainsAny(s, "vV:") {
		return s
	}
	s = strings.ReplaceAll(s, "u:", "ü")
	s = strings.ReplaceAll(s, "U:", "Ü")
	s = strings.ReplaceAll(s, "v", "ü")
	return strings.ReplaceAll(s, "V", "Ü")
}

// markIndex 返回应标调元音的字节下标，没有元音返回 -1。
// 有 a/e 标在 a/e 上，"ou" 标在 o 上，否则标在最后一个元音上。
func markIndex(s string) int {
	lower := strings.ToLower(s)
	if i := strings.IndexAny(lower, "ae"); i >= 0 {
		return i
	}
	if i := strings.Index(lower, "ou"); i >= 0 {
		return i
	}
	last := -1
	for i, r := range lower {
		if _, ok := vowelMarks[r]; ok {
			last = i
		}
	}
	return last
}
