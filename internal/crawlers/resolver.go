package crawlers

import (
	"strings"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// ResolveTarget 从标签页列表中识别点击后到达的目标页面
//
// 点击课程卡片或作业链接后,落点可能在原标签页原位跳转,也可能开了新标签页,
// 还可能混入浏览器内部页面。输入标签页按最近打开在前排序,按以下顺序识别:
//
//  1. 过滤: 跳过浏览器内部页面(chrome://等)和仍停留在发起页URL的标签页
//  2. 严格匹配: 候选URL包含全部必含子串、不含任何排除子串、
//     去尾斜杠后不以任何排除后缀结尾
//  3. 宽松匹配: 候选URL包含任一必含子串即可,列表页后缀仍排除
//  4. 兜底: 取最近打开的、URL不同于发起页且不是列表页的内容标签页
//  5. 全部落空: 返回未找到(合法结果,不是错误)
func ResolveTarget(tabs []models.Tab, spec models.TargetSpec) (models.Tab, bool) {
	candidates := make([]models.Tab, 0, len(tabs))
	for _, tab := range tabs {
		if !tab.IsContentTab() {
			continue
		}
		if spec.OriginalURL != "" && tab.URL == spec.OriginalURL {
			continue
		}
		candidates = append(candidates, tab)
	}
	if len(candidates) == 0 {
		return models.Tab{}, false
	}

	// 严格匹配
	for _, tab := range candidates {
		if matchesStrict(tab.URL, spec) {
			utils.Debugf("标签页识别: 严格匹配命中 %s", tab.URL)
			return tab, true
		}
	}

	// 宽松匹配: 只要求包含任一必含子串,列表页后缀仍排除
	if len(spec.IncludeContains) > 0 {
		for _, tab := range candidates {
			if containsAny(tab.URL, spec.IncludeContains) && !suffixExcluded(tab.URL, spec) {
				utils.Debugf("标签页识别: 宽松匹配命中 %s", tab.URL)
				return tab, true
			}
		}
	}

	// 兜底: 最近打开的、不是列表页的内容标签页
	for _, tab := range candidates {
		if !suffixExcluded(tab.URL, spec) {
			utils.Debugf("标签页识别: 兜底取最近标签页 %s", tab.URL)
			return tab, true
		}
	}
	return models.Tab{}, false
}

// matchesStrict 严格匹配: 全部必含命中且无任何排除命中
func matchesStrict(url string, spec models.TargetSpec) bool {
	for _, inc := range spec.IncludeContains {
		if !strings.Contains(url, inc) {
			return false
		}
	}
	for _, exc := range spec.ExcludeContains {
		if strings.Contains(url, exc) {
			return false
		}
	}
	return !suffixExcluded(url, spec)
}

// suffixExcluded 判断URL(去尾斜杠后)是否以任一排除后缀结尾
func suffixExcluded(url string, spec models.TargetSpec) bool {
	trimmed := strings.TrimRight(url, "/")
	for _, suffix := range spec.ExcludeSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return true
		}
	}
	return false
}

func containsAny(url string, subs []string) bool {
	for _, s := range subs {
		if strings.Contains(url, s) {
			return true
		}
	}
	return false
}
