// Package tone 把分词结果解析为逐字声调，并应用变调规则生成最终的词级分析。
//
// 流程: Resolver（词典/读音回退）→ sandhi.Apply → Assemble（只重渲染变调的音节）。
// 所有组件均无可变状态，可并发调用。
package tone

// Source 声调数据来源。
type Source string

const (
	SourceDictionary Source = "dictionary"
	SourceFallback   Source = "phonetic-fallback"
)

// Confidence 声调结果的可信度。
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Syllable 单个字的读音。非汉字原样输出，声调为 5。
type Syllable struct {
	Char      string `json:"char"`
	Pinyin    string `json:"pinyin"`
	PinyinNum string `json:"pinyin_num"`
	Tone      int    `json:"tone"`
}

// WordTone 一个词的声调分析结果。
type WordTone struct {
	Characters string     `json:"characters"`
	Pinyin     string     `json:"pinyin"`
	PinyinNum  string     `json:"pinyin_num"`
	Tones      []int      `json:"tones"`
	Syllables  []Syllable `json:"syllables"`

	// 仅在发生变调时给出变调前的声调
	OriginalTones []int   `json:"original_tones"`
	HasSandhi     bool    `json:"has_sandhi"`
	SandhiRule    *string `json:"sandhi_rule"`

	HSKLevel   int        `json:"hsk_level"`
	Frequency  *float64   `json:"frequency"`
	Source     Source     `json:"source"`
	Confidence Confidence `json:"confidence"`
	Definition *string    `json:"definition"`
}

// Analysis 整段文本的分析结果，Words 按分词顺序排列。
type Analysis struct {
	Text  string     `json:"text"`
	Words []WordTone `json:"words"`
}
