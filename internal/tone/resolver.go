package tone

import (
	"strings"

	"github.com/iabetor/toneo/internal/dictionary"
	"github.com/iabetor/toneo/internal/phonetic"
	"github.com/iabetor/toneo/internal/pinyin"
)

// Pronouncer 单字读音来源，未收录时返回 ok=false。
type Pronouncer interface {
	Pronounce(char string) (marked string, tone int, ok bool)
}

// Resolver 把词解析为变调前的逐字读音。
type Resolver struct {
	pronouncer Pronouncer
}

// NewResolver 创建解析器，p 为 nil 时所有回退字都按未知读音处理。
func NewResolver(p Pronouncer) *Resolver {
	return &Resolver{pronouncer: p}
}

// Resolve 返回 word 每个字的读音，长度与字数相同。
//
// entry 不为 nil 时按下标使用词典拼音；词典拼音比字数少时，多出的字走读音回退。
// 非汉字一律原样输出，声调为 5。不会失败。
func (r *Resolver) Resolve(word string, entry *dictionary.Entry) []Syllable {
	chars := splitChars(word)

	var tokens []string
	if entry != nil {
		tokens = strings.Fields(entry.Pinyin)
	}

	syllables := make([]Syllable, len(chars))
	for i, ch := range chars {
		switch {
		case !phonetic.IsHan(ch):
			syllables[i] = passThrough(ch)
		case i < len(tokens):
			syllables[i] = fromToken(ch, tokens[i])
		default:
			syllables[i] = r.fallback(ch)
		}
	}
	return syllables
}

// fromToken 用词典中的数字拼音构造音节，没有数字时为 5。
func fromToken(ch, token string) Syllable {
	return Syllable{
		Char:      ch,
		Pinyin:    pinyin.FromNumbered(token),
		PinyinNum: token,
		Tone:      pinyin.ToneFromNumbered(token),
	}
}

func (r *Resolver) fallback(ch string) Syllable {
	if r.pronouncer == nil {
		return passThrough(ch)
	}
	marked, tone, ok := r.pronouncer.Pronounce(ch)
	if !ok || marked == "" {
		return passThrough(ch)
	}
	if tone < 1 || tone > 5 {
		tone = pinyin.NeutralTone
	}
	return Syllable{
		Char:      ch,
		Pinyin:    marked,
		PinyinNum: pinyin.ToNumbered(marked),
		Tone:      tone,
	}
}

func passThrough(ch string) Syllable {
	return Syllable{Char: ch, Pinyin: ch, PinyinNum: ch, Tone: pinyin.NeutralTone}
}

func splitChars(word string) []string {
	chars := make([]string, 0, len(word))
	for _, r := range word {
		chars = append(chars, string(r))
	}
	return chars
}
