package utils

import (
	"net/url"
	"strings"
)

// SameNavigationIntent 判断实际到达的URL是否仍属于预期的导航意图
//
// 条件: 主机名相同,且实际路径以预期路径为前缀(允许站内续航,
// 如 /courses/123 → /courses/123/modules)。查询串不参与比较。
// 任一URL解析失败视为不匹配
func SameNavigationIntent(intendedURL, actualURL string) bool {
	intended, err := url.Parse(intendedURL)
	if err != nil {
		return false
	}
	actual, err := url.Parse(actualURL)
	if err != nil {
		return false
	}
	if intended.Host == "" || intended.Host != actual.Host {
		return false
	}

	intendedPath := strings.TrimRight(intended.Path, "/")
	actualPath := strings.TrimRight(actual.Path, "/")
	if intendedPath == actualPath {
		return true
	}
	return strings.HasPrefix(actualPath, intendedPath+"/")
}

// HostOf 返回URL的主机名,解析失败返回空串
func HostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}
