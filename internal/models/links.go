package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// CoursePathPattern 课程URL路径模式: /courses/<数字ID>
var CoursePathPattern = regexp.MustCompile(`/courses/(\d+)`)

// CourseLink dashboard中发现的一条课程链接
// 在提取器边界完成校验,引擎内不再出现无类型的键值字典
type CourseLink struct {
	ID    string `json:"id"`    // 课程数字ID
	Path  string `json:"path"`  // 规范化路径(/courses/123)
	URL   string `json:"url"`   // 绝对URL
	Label string `json:"label"` // 课程显示名(originalName),可为空
}

// Validate 校验课程链接
func (c CourseLink) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("课程链接缺少ID")
	}
	if !CoursePathPattern.MatchString(c.Path) {
		return fmt.Errorf("课程路径格式无效: %s", c.Path)
	}
	if err := ValidateURL(c.URL); err != nil {
		return fmt.Errorf("课程URL无效 [%s]: %w", c.URL, err)
	}
	return nil
}

// ClickSelector 返回点击进入课程主页的CSS选择器
// dashboard上课程卡片以 /courses/<id> 为链接目标
func (c CourseLink) ClickSelector() string {
	return fmt.Sprintf(`a[href*="%s"]`, c.Path)
}

// AssignmentsURL 返回该课程的作业列表页URL
func (c CourseLink) AssignmentsURL() string {
	return strings.TrimRight(c.URL, "/") + "/assignments"
}

// AssignmentLink 作业列表页某个分组下的一条作业详情链接
type AssignmentLink struct {
	URL       string `json:"url"`        // 作业详情页绝对URL
	Name      string `json:"name"`       // 作业名(链接文本)
	SectionID string `json:"section_id"` // 所属分组容器ID(aria-controls)
}

// Validate 校验作业链接
func (a AssignmentLink) Validate() error {
	if err := ValidateURL(a.URL); err != nil {
		return fmt.Errorf("作业URL无效 [%s]: %w", a.URL, err)
	}
	if a.SectionID == "" {
		return fmt.Errorf("作业链接缺少分组容器ID: %s", a.URL)
	}
	return nil
}

// ClickSelector 返回点击进入作业详情页的CSS选择器
// 限定在所属分组容器内,避免不同分组下同名链接串位
func (a AssignmentLink) ClickSelector() string {
	parsed, err := url.Parse(a.URL)
	if err != nil {
		return fmt.Sprintf(`#%s a.ig-title`, a.SectionID)
	}
	return fmt.Sprintf(`#%s a.ig-title[href*="%s"]`, a.SectionID, parsed.EscapedPath())
}

// SectionToggleSelector 返回展开分组的折叠按钮选择器
func (a AssignmentLink) SectionToggleSelector() string {
	return fmt.Sprintf(`button.element_toggler[aria-controls="%s"]`, a.SectionID)
}

// ValidateURL 验证URL格式
func ValidateURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("URL格式无效: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL协议必须是http或https")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL缺少主机名")
	}
	return nil
}
