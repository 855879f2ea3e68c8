package tts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnavailable 没有可用的合成引擎。
	ErrUnavailable = errors.New("tts: 语音合成不可用")
	// ErrTextTooLong 文本超过单次合成上限。
	ErrTextTooLong = errors.New("tts: 文本过长")
	// ErrInvalidRequest 请求参数非法。
	ErrInvalidRequest = errors.New("tts: 请求参数非法")
)

// Engine 定义语音合成后端接口。
type Engine interface {
	// Name 返回引擎名称（用于健康检查和日志）。
	Name() string
	// Synthesize 将文本合成为 MP3 音频。
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// Request 合成请求。Voice 为音色 ID（如 female1）。
type Request struct {
	Text   string  `json:"text"`
	Voice  string  `json:"voice"`
	Rate   float64 `json:"rate"`   // 语速 0.5~2.0，1.0 为正常
	Pitch  float64 `json:"pitch"`  // 音调 -50~50
	Volume float64 `json:"volume"` // 音量 -50~50
}

// Normalize 填充默认值：空音色为 female1，语速 0 视为 1.0。
func (r *Request) Normalize() {
	r.Text = strings.TrimSpace(r.Text)
	if r.Voice == "" {
		r.Voice = DefaultVoice
	}
	if r.Rate == 0 {
		r.Rate = 1.0
	}
}

// Validate 校验参数范围，maxChars<=0 时不限制长度。
func (r *Request) Validate(maxChars int) error {
	n := utf8.RuneCountInString(r.Text)
	switch {
	case n == 0:
		return fmt.Errorf("%w: 文本为空", ErrInvalidRequest)
	case maxChars > 0 && n > maxChars:
		return fmt.Errorf("%w: 最多 %d 个字符", ErrTextTooLong, maxChars)
	case r.Rate < 0.5 || r.Rate > 2.0:
		return fmt.Errorf("%w: 语速 %.2f 超出 0.5~2.0", ErrInvalidRequest, r.Rate)
	case r.Pitch < -50 || r.Pitch > 50:
		return fmt.Errorf("%w: 音调 %.0f 超出 -50~50", ErrInvalidRequest, r.Pitch)
	case r.Volume < -50 || r.Volume > 50:
		return fmt.Errorf("%w: 音量 %.0f 超出 -50~50", ErrInvalidRequest, r.Volume)
	}
	return nil
}
