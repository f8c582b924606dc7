package crawlers

import (
	"testing"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
)

func TestResolveTargetStrictMatch(t *testing.T) {
	tabs := []models.Tab{
		{URL: "https://lms.example.edu/courses/1/assignments", TabRef: "t3"},
		{URL: "https://lms.example.edu/courses/1/assignments/99", TabRef: "t2"},
		{URL: "https://lms.example.edu/dashboard", TabRef: "t1"},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/courses/1/assignments",
		IncludeContains: []string{"/assignments/"},
		ExcludeSuffixes: []string{"/assignments"},
	}

	got, ok := ResolveTarget(tabs, spec)
	if !ok {
		t.Fatal("应识别到作业详情标签页")
	}
	if got.TabRef != "t2" {
		t.Errorf("识别到 %s (%s), 期望 t2", got.TabRef, got.URL)
	}
}

func TestResolveTargetSkipsNonContentTabs(t *testing.T) {
	tabs := []models.Tab{
		{URL: "devtools://devtools/bundled/inspector.html", TabRef: "t4"},
		{URL: "chrome://newtab/", TabRef: "t3"},
		{URL: "https://lms.example.edu/courses/7", TabRef: "t2"},
		{URL: "about:blank", TabRef: "t1"},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/dashboard",
		IncludeContains: []string{"/courses/"},
	}

	got, ok := ResolveTarget(tabs, spec)
	if !ok || got.TabRef != "t2" {
		t.Errorf("应跳过浏览器内部页面识别到 t2, 实际 %+v ok=%v", got, ok)
	}
}

func TestResolveTargetExcludesOriginalURL(t *testing.T) {
	tabs := []models.Tab{
		{URL: "https://lms.example.edu/dashboard", TabRef: "t2"},
		{URL: "https://lms.example.edu/courses/3", TabRef: "t1"},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/dashboard",
		IncludeContains: []string{"/courses/"},
	}

	got, ok := ResolveTarget(tabs, spec)
	if !ok || got.TabRef != "t1" {
		t.Errorf("发起页标签页不应入选, 实际 %+v ok=%v", got, ok)
	}
}

func TestResolveTargetRelaxedFallback(t *testing.T) {
	// 严格匹配因排除子串全部落空,宽松匹配只看必含子串
	tabs := []models.Tab{
		{URL: "https://lms.example.edu/courses/5/assignments?page=2", TabRef: "t1"},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/dashboard",
		IncludeContains: []string{"/courses/"},
		ExcludeContains: []string{"page=2"},
	}

	got, ok := ResolveTarget(tabs, spec)
	if !ok || got.TabRef != "t1" {
		t.Errorf("宽松匹配应兜住严格匹配落空的情况, 实际 %+v ok=%v", got, ok)
	}
}

func TestResolveTargetLastResortMostRecent(t *testing.T) {
	// 无任何必含子串命中时取最近打开的内容标签页
	tabs := []models.Tab{
		{URL: "https://lms.example.edu/profile", TabRef: "t2"},
		{URL: "https://lms.example.edu/settings", TabRef: "t1"},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/dashboard",
		IncludeContains: []string{"/courses/"},
	}

	got, ok := ResolveTarget(tabs, spec)
	if !ok || got.TabRef != "t2" {
		t.Errorf("兜底应取最近标签页 t2, 实际 %+v ok=%v", got, ok)
	}
}

func TestResolveTargetAllListingTabs(t *testing.T) {
	// 兜底也不收列表页: 全部候选都是列表页时返回未找到
	tabs := []models.Tab{
		{URL: "https://lms.example.edu/courses/1/assignments", TabRef: "t2"},
		{URL: "https://lms.example.edu/courses/2/assignments/", TabRef: "t1"},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/dashboard",
		IncludeContains: []string{"/assignments/"},
		ExcludeSuffixes: []string{"/assignments"},
	}

	if got, ok := ResolveTarget(tabs, spec); ok {
		t.Errorf("全部为列表页时应返回未找到, 实际 %+v", got)
	}
}

func TestResolveTargetNotFound(t *testing.T) {
	tests := []struct {
		name string
		tabs []models.Tab
	}{
		{"无标签页", nil},
		{"全部为内部页面", []models.Tab{
			{URL: "chrome://newtab/", TabRef: "t1"},
			{URL: "about:blank", TabRef: "t2"},
		}},
		{"全部停留在发起页", []models.Tab{
			{URL: "https://lms.example.edu/dashboard", TabRef: "t1"},
		}},
	}

	spec := models.TargetSpec{
		OriginalURL:     "https://lms.example.edu/dashboard",
		IncludeContains: []string{"/courses/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ResolveTarget(tt.tabs, spec); ok {
				t.Error("应返回未找到")
			}
		})
	}
}
