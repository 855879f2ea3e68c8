package tone

import (
	"strings"

	"github.com/iabetor/toneo/internal/pinyin"
	"github.com/iabetor/toneo/internal/sandhi"
)

// Assemble 把变调结果合入变调前的音节，生成 WordTone。
// 只有声调改变的音节才重新渲染拼音；元数据（HSK、词频、释义）由调用方填写。
func Assemble(word string, pre []Syllable, res sandhi.Result, src Source) WordTone {
	syllables := make([]Syllable, len(pre))
	copy(syllables, pre)

	preTones := make([]int, len(pre))
	for i, s := range pre {
		preTones[i] = s.Tone
	}

	tones := preTones
	if len(res.ModifiedTones) == len(pre) {
		tones = res.ModifiedTones
		for i, t := range tones {
			if t == pre[i].Tone {
				continue
			}
			syllables[i].Pinyin = pinyin.Retone(pre[i].Pinyin, t)
			syllables[i].PinyinNum = pinyin.ReplaceToneDigit(pre[i].PinyinNum, t)
			syllables[i].Tone = t
		}
	}

	marked := make([]string, len(syllables))
	numbered := make([]string, len(syllables))
	for i, s := range syllables {
		marked[i] = s.Pinyin
		numbered[i] = s.PinyinNum
	}

	wt := WordTone{
		Characters: word,
		Pinyin:     strings.Join(marked, " "),
		PinyinNum:  strings.Join(numbered, " "),
		Tones:      tones,
		Syllables:  syllables,
		HasSandhi:  res.HasSandhi,
		Source:     src,
		Confidence: ConfidenceMedium,
	}
	if src == SourceDictionary {
		wt.Confidence = ConfidenceHigh
	}
	if res.HasSandhi {
		wt.OriginalTones = preTones
		rule := res.RuleDescription()
		wt.SandhiRule = &rule
	}
	return wt
}
