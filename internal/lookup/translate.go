package lookup

import (
	"context"
	"fmt"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tmt "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tmt/v20180321"

	"github.com/iabetor/toneo/internal/logger"
)

// TencentTranslator 腾讯云机器翻译，把词典外的中文词译为英文释义。
type TencentTranslator struct {
	client *tmt.Client
	target string
}

// NewTencentTranslator 创建翻译器，target 为空时译为英文。
func NewTencentTranslator(secretID, secretKey, region, target string) (*TencentTranslator, error) {
	credential := common.NewCredential(secretID, secretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tmt.tencentcloudapi.com"

	client, err := tmt.NewClient(credential, region, cpf)
	if err != nil {
		return nil, fmt.Errorf("创建翻译客户端失败: %w", err)
	}
	if target == "" {
		target = "en"
	}

	logger.Info("[lookup] 腾讯云翻译已初始化")
	return &TencentTranslator{client: client, target: target}, nil
}

// Translate 把中文译为目标语言。
func (t *TencentTranslator) Translate(ctx context.Context, text string) (string, error) {
	request := tmt.NewTextTranslateRequest()
	request.SourceText = common.StringPtr(text)
	request.Source = common.StringPtr("zh")
	request.Target = common.StringPtr(t.target)
	request.ProjectId = common.Int64Ptr(0)

	response, err := t.client.TextTranslateWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("翻译请求失败: %w", err)
	}
	if response.Response == nil || response.Response.TargetText == nil {
		return "", fmt.Errorf("翻译响应为空")
	}

	result := *response.Response.TargetText
	logger.Debugf("[lookup] 翻译完成: %s -> %s", text, result)
	return result, nil
}
