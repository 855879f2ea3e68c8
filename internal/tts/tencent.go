package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/iabetor/toneo/internal/logger"
)

// TencentEngine 使用腾讯云 TTS 合成，适用于中国大陆网络环境。
type TencentEngine struct {
	client *tts.Client
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	Region    string
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("腾讯云 TTS 需要 SecretID 和 SecretKey")
	}
	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[tts] 腾讯云 TTS 引擎已初始化 (region=%s)", cfg.Region)
	return &TencentEngine{client: client}, nil
}

// Name 返回引擎名称。
func (e *TencentEngine) Name() string {
	return "tencent-tts"
}

// Synthesize 将文本合成为 MP3。
func (e *TencentEngine) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	voice, _ := LookupVoice(req.Voice)
	logger.Debugf("[tts] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", utf8.RuneCountInString(req.Text), voice.TencentType)

	request := tts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(req.Text)
	request.SessionId = common.StringPtr(uuid.NewString())
	request.VoiceType = common.Int64Ptr(voice.TencentType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(tencentSpeed(req.Rate))
	request.Volume = common.Float64Ptr(req.Volume / 5)

	response, err := e.client.TextToVoiceWithContext(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("腾讯云 TTS 合成失败: %w", err)
	}
	if response.Response == nil || response.Response.Audio == nil {
		return nil, fmt.Errorf("腾讯云 TTS: 未返回音频数据")
	}

	data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return nil, fmt.Errorf("Base64 解码失败: %w", err)
	}
	logger.Debugf("[tts] 腾讯云 TTS: 收到 %d 字节 MP3 数据", len(data))
	return data, nil
}

// tencentSpeed 把倍速换算为腾讯云语速档位：
// -2=0.6x, -1=0.8x, 0=1.0x, 1=1.2x, 2=1.5x。
func tencentSpeed(rate float64) float64 {
	switch {
	case rate <= 0.7:
		return -2
	case rate <= 0.9:
		return -1
	case rate < 1.1:
		return 0
	case rate < 1.35:
		return 1
	default:
		return 2
	}
}
