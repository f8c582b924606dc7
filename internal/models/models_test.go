package models

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTraversalConfigValidate(t *testing.T) {
	valid := func() *TraversalConfig {
		return NewTraversalConfig("https://lms.example.edu/dashboard", "output")
	}

	tests := []struct {
		name    string
		mutate  func(c *TraversalConfig)
		wantErr bool
	}{
		{"默认配置有效", func(c *TraversalConfig) {}, false},
		{"起始URL为空", func(c *TraversalConfig) { c.StartURL = "" }, true},
		{"起始URL协议无效", func(c *TraversalConfig) { c.StartURL = "ftp://example.com" }, true},
		{"输出目录为空", func(c *TraversalConfig) { c.OutputDir = "" }, true},
		{"最大深度为负", func(c *TraversalConfig) { c.MaxDepth = -1 }, true},
		{"深度为0仅捕获根页面", func(c *TraversalConfig) { c.MaxDepth = 0 }, false},
		{"轮询间隔为0", func(c *TraversalConfig) { c.CheckInterval = 0 }, true},
		{"跳转超时小于轮询间隔", func(c *TraversalConfig) {
			c.RedirectTimeout = time.Second
			c.CheckInterval = 5 * time.Second
		}, true},
		{"根页面超时小于普通超时", func(c *TraversalConfig) {
			c.DashboardRedirectTimeout = 10 * time.Second
			c.RedirectTimeout = 30 * time.Second
		}, true},
		{"分组名为空", func(c *TraversalConfig) { c.SectionLabel = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTraversalConfigRedirectTimeoutFor(t *testing.T) {
	cfg := NewTraversalConfig("https://lms.example.edu/dashboard", "output")
	root := NewRootNode(cfg.StartURL)
	child := root.NewChildNode("https://lms.example.edu/courses/123", KindCourse, "数学")

	if got := cfg.RedirectTimeoutFor(root); got != cfg.DashboardRedirectTimeout {
		t.Errorf("根节点超时 = %v, 期望 %v", got, cfg.DashboardRedirectTimeout)
	}
	if got := cfg.RedirectTimeoutFor(child); got != cfg.RedirectTimeout {
		t.Errorf("子节点超时 = %v, 期望 %v", got, cfg.RedirectTimeout)
	}
}

func TestCourseLinkValidate(t *testing.T) {
	tests := []struct {
		name    string
		link    CourseLink
		wantErr bool
	}{
		{
			"有效课程链接",
			CourseLink{ID: "123", Path: "/courses/123", URL: "https://lms.example.edu/courses/123", Label: "数学"},
			false,
		},
		{
			"缺少ID",
			CourseLink{Path: "/courses/123", URL: "https://lms.example.edu/courses/123"},
			true,
		},
		{
			"路径格式无效",
			CourseLink{ID: "123", Path: "/pages/abc", URL: "https://lms.example.edu/pages/abc"},
			true,
		},
		{
			"URL无效",
			CourseLink{ID: "123", Path: "/courses/123", URL: "not-a-url"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.link.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCourseLinkSelectors(t *testing.T) {
	link := CourseLink{ID: "456", Path: "/courses/456", URL: "https://lms.example.edu/courses/456"}

	if sel := link.ClickSelector(); !strings.Contains(sel, "/courses/456") {
		t.Errorf("点击选择器未包含课程路径: %s", sel)
	}
	if got := link.AssignmentsURL(); got != "https://lms.example.edu/courses/456/assignments" {
		t.Errorf("作业列表URL = %s", got)
	}

	// 尾部斜杠不产生双斜杠
	link.URL = "https://lms.example.edu/courses/456/"
	if got := link.AssignmentsURL(); got != "https://lms.example.edu/courses/456/assignments" {
		t.Errorf("作业列表URL(尾部斜杠) = %s", got)
	}
}

func TestAssignmentLinkSelectors(t *testing.T) {
	link := AssignmentLink{
		URL:       "https://lms.example.edu/courses/1/assignments/99",
		Name:      "期末作业",
		SectionID: "assignment_group_7",
	}

	if err := link.Validate(); err != nil {
		t.Fatalf("有效作业链接校验失败: %v", err)
	}

	sel := link.ClickSelector()
	if !strings.HasPrefix(sel, "#assignment_group_7 ") {
		t.Errorf("点击选择器未限定分组容器: %s", sel)
	}
	if !strings.Contains(sel, "/courses/1/assignments/99") {
		t.Errorf("点击选择器未包含作业路径: %s", sel)
	}

	toggle := link.SectionToggleSelector()
	if !strings.Contains(toggle, `aria-controls="assignment_group_7"`) {
		t.Errorf("分组展开选择器无效: %s", toggle)
	}
}

func TestTabIsContentTab(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://lms.example.edu/courses/1", true},
		{"http://127.0.0.1:8080/", true},
		{"chrome://newtab/", false},
		{"chrome-extension://abcdef/page.html", false},
		{"edge://settings/", false},
		{"about:blank", false},
		{"devtools://devtools/bundled/inspector.html", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			tab := Tab{URL: tt.url, TabRef: "target-1"}
			if got := tab.IsContentTab(); got != tt.want {
				t.Errorf("IsContentTab(%s) = %v, 期望 %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRunStatsTally(t *testing.T) {
	stats := NewRunStats("https://lms.example.edu/dashboard")

	stats.MarkAttempted(0)
	stats.MarkCaptured(0, NewCaptureRecord("https://lms.example.edu/dashboard", "a.html", "a.png", 0, time.Now()))
	stats.MarkAttempted(1)
	stats.MarkFailed(1)
	stats.MarkAttempted(1)
	stats.MarkCaptured(1, nil)
	stats.Finish()

	if stats.TotalCaptured != 2 || stats.TotalFailed != 1 {
		t.Errorf("总计 captured=%d failed=%d, 期望 2/1", stats.TotalCaptured, stats.TotalFailed)
	}
	if len(stats.Levels) != 2 {
		t.Fatalf("层级数 = %d, 期望 2", len(stats.Levels))
	}
	if stats.Levels[0].Depth != 0 || stats.Levels[1].Depth != 1 {
		t.Errorf("层级未按深度升序: %+v", stats.Levels)
	}
	if stats.Levels[1].Attempted != 2 || stats.Levels[1].Failed != 1 || stats.Levels[1].Captured != 1 {
		t.Errorf("深度1计数错误: %+v", stats.Levels[1])
	}
	if len(stats.Records) != 1 {
		t.Errorf("捕获记录数 = %d, 期望 1", len(stats.Records))
	}
	if stats.Duration == "" {
		t.Error("Finish后持续时间为空")
	}
}

func TestTypedErrors(t *testing.T) {
	inner := errors.New("connection refused")
	var err error = &BrowserUnavailableError{Endpoint: "http://127.0.0.1:9222", Err: inner}
	if !errors.Is(err, inner) {
		t.Error("BrowserUnavailableError应可解包到底层错误")
	}

	var navErr *NavigationTimeoutError
	err = &NavigationTimeoutError{URL: "https://lms.example.edu/courses/1", Timeout: 30 * time.Second}
	if !errors.As(err, &navErr) {
		t.Error("errors.As应匹配NavigationTimeoutError")
	}
	if !strings.Contains(err.Error(), "30s") {
		t.Errorf("超时错误信息未包含时限: %s", err.Error())
	}

	saveErr := &SaveError{Path: "/tmp/out/a.html", Err: inner}
	if !errors.Is(saveErr, inner) {
		t.Error("SaveError应可解包到底层错误")
	}
}
