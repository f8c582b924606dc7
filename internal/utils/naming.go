package utils

import (
	"net/url"
	"regexp"
	"strings"
)

// 目录名长度上限
const (
	MaxFolderNameLength    = 100 // 根层目录(完整URL派生)
	MaxSubfolderNameLength = 50  // 子层目录(路径片段派生)
)

// unsafeNameChars 文件系统不安全字符(含路径分隔符和控制字符)
var unsafeNameChars = regexp.MustCompile(`[<>:"/\\|?*\x00-\x1f]`)

// collectionSegments 已知的集合型路径段
// 末段为数字且前一段命中时,组合为"单数_数字"形式(assignments/456 → assignment_456)
var collectionSegments = map[string]string{
	"assignments": "assignment",
	"quizzes":     "quiz",
}

// FolderNameForURL 将URL转换为安全的根层目录名
// 主机名加路径段以下划线连接,超长截断,结果总是非空
func FolderNameForURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		// 解析失败时退化为逐字符替换
		name := strings.NewReplacer("://", "_", "/", "_", ":", "_").Replace(rawURL)
		return finishName(name, MaxFolderNameLength, "unknown")
	}

	name := parsed.Host
	if path := strings.Trim(parsed.Path, "/"); path != "" {
		name += "_" + strings.ReplaceAll(path, "/", "_")
	}
	return finishName(name, MaxFolderNameLength, "unknown")
}

// SubfolderNameForURL 从URL路径末段派生子目录名
//
// 路径结构决定取法:
//   - 单段路径直接使用该段
//   - 两段路径(courses/123)使用第二段
//   - 三段及以上看末段: 数字且前一段为已知集合时组合(assignment_456),
//     否则使用末段本身
//
// 无路径或解析失败时返回"page"
func SubfolderNameForURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "page"
	}

	var parts []string
	for _, p := range strings.Split(strings.Trim(parsed.Path, "/"), "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "page"
	}

	var subfolder string
	switch {
	case len(parts) == 1:
		subfolder = parts[0]
	case len(parts) == 2:
		subfolder = parts[1]
	default:
		last := parts[len(parts)-1]
		secondLast := parts[len(parts)-2]
		if singular, ok := collectionSegments[secondLast]; ok && isDigits(last) {
			subfolder = singular + "_" + last
		} else {
			subfolder = last
		}
	}

	return finishName(subfolder, MaxSubfolderNameLength, "page")
}

// SanitizeName 将人类可读名称(课程名)清洗为安全目录名
// 节点带显示名时优先于URL派生的目录名
func SanitizeName(name string, maxLength int) string {
	cleaned := unsafeNameChars.ReplaceAllString(name, "_")
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	return finishName(cleaned, maxLength, "unknown")
}

// finishName 统一收尾: 替换不安全字符、截断、去除末尾点和空格、空值兜底
func finishName(name string, maxLength int, fallback string) string {
	name = unsafeNameChars.ReplaceAllString(name, "_")
	if len(name) > maxLength {
		name = name[:maxLength]
	}
	name = strings.TrimRight(name, ". ")
	if name == "" {
		return fallback
	}
	return name
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
