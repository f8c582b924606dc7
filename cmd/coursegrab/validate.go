package main

import (
	"fmt"
	"net/url"
	"time"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
)

// ValidateURL 验证URL格式
func ValidateURL(urlStr string) error {
	return models.ValidateURL(urlStr)
}

// ValidateFlags 验证合并后的运行参数
func ValidateFlags(config *models.TraversalConfig, debugPort int) error {
	// 验证深度上限,避免误配导致无界遍历
	if config.MaxDepth > 10 {
		return fmt.Errorf("遍历深度必须在0-10之间,当前值: %d", config.MaxDepth)
	}

	// 验证等待时间
	if config.WaitTime < 0 || config.WaitTime > 60*time.Second {
		return fmt.Errorf("等待时间必须在0-60秒之间,当前值: %v", config.WaitTime)
	}

	// 验证调试端口
	if debugPort < 1 || debugPort > 65535 {
		return fmt.Errorf("调试端口必须在1-65535之间,当前值: %d", debugPort)
	}

	// 其余约束由配置自身校验
	if err := config.Validate(); err != nil {
		return fmt.Errorf("运行参数无效: %w", err)
	}

	return nil
}

// NormalizeURL 规范化URL
func NormalizeURL(urlStr string) (string, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return "", err
	}

	// 如果没有协议,默认使用https
	if parsed.Scheme == "" {
		urlStr = "https://" + urlStr
		parsed, err = url.Parse(urlStr)
		if err != nil {
			return "", err
		}
	}

	return parsed.String(), nil
}
