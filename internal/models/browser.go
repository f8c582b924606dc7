package models

import (
	"strings"
	"time"
)

// Tab 浏览器标签页的只读快照
// TabRef是不透明的标签页标识(CDP TargetID),URL是枚举时刻的页面地址
type Tab struct {
	URL    string `json:"url"`
	TabRef string `json:"tab_ref"`
}

// NonContentPrefixes 非内容页面前缀(浏览器内部页面、开发者工具)
// 标签页识别时一律跳过
var NonContentPrefixes = []string{
	"chrome://",
	"chrome-extension://",
	"edge://",
	"about:",
	"devtools://",
}

// IsContentTab 判断标签页是否为普通内容页面
func (t Tab) IsContentTab() bool {
	for _, prefix := range NonContentPrefixes {
		if strings.HasPrefix(t.URL, prefix) {
			return false
		}
	}
	return true
}

// TargetSpec 目标页面描述
// 标签页识别策略的参数化输入: 每个调用点提供不同的描述,而不是不同的代码
type TargetSpec struct {
	// OriginalURL 点击发起页的URL(需要排除,点击后不应仍停留在该页)
	OriginalURL string

	// IncludeContains 候选URL必须包含的全部子串(如 "/assignments/")
	IncludeContains []string

	// ExcludeContains 候选URL不允许包含的子串(如课程主页识别时排除 "/assignments")
	ExcludeContains []string

	// ExcludeSuffixes 候选URL(去掉尾部斜杠后)不允许的精确后缀
	// 用于排除列表页: /courses/1/assignments 是列表页而非详情页
	ExcludeSuffixes []string
}

// BrowserControl 浏览器控制接口
// 遍历引擎只通过该接口操作浏览器,不持有任何全局会话状态
// 所有实现必须可被同一goroutine顺序调用(浏览器是共享有状态资源,不做并发访问)
type BrowserControl interface {
	// Tabs 枚举当前打开的标签页,按最近打开在前排序
	Tabs() ([]Tab, error)

	// OpenTab 新建标签页并导航到URL,返回新标签页
	OpenTab(url string) (Tab, error)

	// Navigate 在指定标签页中导航到URL,等待初始加载完成
	Navigate(tabRef string, url string, timeout time.Duration) error

	// CurrentURL 返回标签页当前URL(跳转监控轮询使用)
	CurrentURL(tabRef string) (string, error)

	// Click 在指定标签页中点击CSS选择器命中的首个元素
	Click(tabRef string, selector string) error

	// WaitQuiescent 等待页面达到静默状态,超时则退化为固定延迟后返回false
	WaitQuiescent(tabRef string, timeout time.Duration) bool

	// GoBack 浏览器后退一步
	GoBack(tabRef string) error

	// Markup 获取页面当前渲染后的完整HTML
	Markup(tabRef string) (string, error)

	// Screenshot 获取页面截图
	Screenshot(tabRef string, fullPage bool) ([]byte, error)

	// Close 释放浏览器连接(不关闭外部浏览器进程)
	Close() error
}
