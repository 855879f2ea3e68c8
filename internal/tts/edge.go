package tts

import (
	"bytes"
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/toneo/internal/logger"
)

// EdgeEngine 使用微软 Edge TTS 合成，直接返回 MP3。
// 只使用音色，语速和音调由服务端默认。
type EdgeEngine struct{}

// NewEdgeEngine 创建 Edge TTS 引擎。
func NewEdgeEngine() *EdgeEngine {
	return &EdgeEngine{}
}

// Name 返回引擎名称。
func (e *EdgeEngine) Name() string {
	return "edge-tts"
}

// Synthesize 将文本合成为 MP3。
func (e *EdgeEngine) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	voice, _ := LookupVoice(req.Voice)
	logger.Debugf("[tts] edge-tts: 正在合成 %d 个字符，语音=%s", utf8.RuneCountInString(req.Text), voice.Neural)

	comm, err := edge.NewCommunicate(req.Text, edge.WithVoice(voice.Neural))
	if err != nil {
		return nil, fmt.Errorf("edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return nil, fmt.Errorf("edge-tts 开始流式合成失败: %w", err)
	}

	// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
	var buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				buf.Write(data)
			}
		}
	}

	if buf.Len() == 0 {
		return nil, fmt.Errorf("edge-tts: 未收到音频数据")
	}
	logger.Debugf("[tts] edge-tts: 收到 %d 字节 MP3 数据", buf.Len())
	return buf.Bytes(), nil
}
