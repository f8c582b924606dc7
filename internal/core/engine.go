package core

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/RecoveryAshes/CourseGrab/internal/crawlers"
	"github.com/RecoveryAshes/CourseGrab/internal/models"
	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// Engine 遍历引擎
// 驱动 dashboard → 课程 → 作业列表 → 作业详情 的深度优先遍历,
// 每个节点走 待处理 → 导航 → 快照 → 展开 → 完成/失败 的状态机。
// 子节点的发现只依赖已落盘的HTML,单节点失败不影响兄弟节点
type Engine struct {
	config    *models.TraversalConfig
	browser   models.BrowserControl
	store     *crawlers.SnapshotStore
	extractor *crawlers.LinkExtractor
	stats     *models.RunStats

	// 可注入的时钟和休眠,测试用
	now   func() time.Time
	sleep func(time.Duration)
}

// NewEngine 创建遍历引擎
func NewEngine(config *models.TraversalConfig, browser models.BrowserControl) *Engine {
	return &Engine{
		config:    config,
		browser:   browser,
		store:     crawlers.NewSnapshotStore(config.OutputDir, config.QuiesceTimeout, config.WaitTime),
		extractor: crawlers.NewLinkExtractor(siteOrigin(config.StartURL)),
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Run 执行一次完整遍历,返回运行统计
// 只有浏览器会话级故障会让Run返回错误,单个节点的失败计入统计后继续
func (e *Engine) Run(ctx context.Context) (*models.RunStats, error) {
	e.stats = models.NewRunStats(e.config.StartURL)
	defer e.stats.Finish()

	utils.Infof("🚀 开始遍历: %s (最大深度 %d)", e.config.StartURL, e.config.MaxDepth)

	root := models.NewRootNode(e.config.StartURL)

	tabRef, err := e.rootTab()
	if err != nil {
		return e.stats, err
	}

	e.processNode(ctx, tabRef, root)

	utils.Infof("🏁 遍历完成: 捕获 %d, 失败 %d", e.stats.TotalCaptured, e.stats.TotalFailed)
	return e.stats, nil
}

// rootTab 选择承载遍历的标签页
// 优先复用已打开dashboard的标签页(登录态所在),否则新开一个
func (e *Engine) rootTab() (string, error) {
	tabs, err := e.browser.Tabs()
	if err != nil {
		return "", fmt.Errorf("枚举标签页失败: %w", err)
	}

	for _, tab := range tabs {
		if tab.IsContentTab() && utils.SameNavigationIntent(e.config.StartURL, tab.URL) {
			utils.Infof("复用已打开的标签页: %s", tab.URL)
			return tab.TabRef, nil
		}
	}

	tab, err := e.browser.OpenTab(e.config.StartURL)
	if err != nil {
		return "", fmt.Errorf("打开起始页失败: %w", err)
	}
	return tab.TabRef, nil
}

// processNode 处理单个节点及其子树
// 返回节点最终使用的标签页(点击可能落到新标签页)
func (e *Engine) processNode(ctx context.Context, tabRef string, node *models.NavigationNode) string {
	if ctx.Err() != nil {
		// 取消时已进入处理的节点计入失败,统计与节点状态保持一致
		e.stats.MarkAttempted(node.Depth)
		e.fail(node, ctx.Err())
		return tabRef
	}

	e.stats.MarkAttempted(node.Depth)

	// 导航
	node.State = models.NodeNavigating
	activeTab, err := e.navigate(tabRef, node)
	if err != nil {
		e.fail(node, err)
		return tabRef
	}

	// 快照
	node.State = models.NodeSnapshotting
	record, err := e.store.Snapshot(e.browser, activeTab, node)
	if err != nil {
		e.fail(node, err)
		return activeTab
	}
	e.stats.MarkCaptured(node.Depth, record)

	// 展开
	if node.Depth < e.config.MaxDepth {
		node.State = models.NodeExpanding
		if err := e.expand(node); err != nil {
			utils.Warnf("⚠️ 子节点发现失败 [%s]: %v", node.URL, err)
		}
		e.processChildren(ctx, activeTab, node)
	}

	node.State = models.NodeDone
	return activeTab
}

// navigate 把浏览器带到节点页面并等待跳转稳定
func (e *Engine) navigate(tabRef string, node *models.NavigationNode) (string, error) {
	activeTab := tabRef

	switch {
	case node.IsRoot(), node.Kind == models.KindListing:
		// 直接导航: 根页面和作业列表页的URL是确定的
		if err := e.browser.Navigate(tabRef, node.URL, e.config.RedirectTimeout); err != nil {
			return "", err
		}

	default:
		// 点击导航: 课程卡片和作业链接靠点击触发,落点标签页需识别
		if node.SectionID != "" {
			// 作业分组默认折叠,点击前先展开
			toggle := fmt.Sprintf(`button.element_toggler[aria-controls="%s"]`, node.SectionID)
			if err := e.browser.Click(tabRef, toggle); err != nil {
				utils.Debugf("分组展开点击未命中(可能已展开): %v", err)
			}
			// 等折叠动画结束再点链接
			e.sleep(e.config.WaitTime)
		}

		originalURL, _ := e.browser.CurrentURL(tabRef)
		if err := e.browser.Click(tabRef, node.ClickSelector); err != nil {
			return "", err
		}
		e.sleep(e.config.WaitTime)

		tabs, err := e.browser.Tabs()
		if err != nil {
			return "", err
		}
		target, ok := crawlers.ResolveTarget(tabs, e.targetSpec(node, originalURL))
		if !ok {
			return "", models.ErrNoMatchingTab
		}
		activeTab = target.TabRef
	}

	if err := e.waitSettled(activeTab, node); err != nil {
		return "", err
	}
	return activeTab, nil
}

// targetSpec 按节点类型构造标签页识别描述
func (e *Engine) targetSpec(node *models.NavigationNode, originalURL string) models.TargetSpec {
	switch node.Kind {
	case models.KindDetail:
		return models.TargetSpec{
			OriginalURL:     originalURL,
			IncludeContains: []string{"/assignments/"},
			// 列表页自身以/assignments结尾,不是详情页
			ExcludeSuffixes: []string{"/assignments"},
		}
	default:
		return models.TargetSpec{
			OriginalURL:     originalURL,
			IncludeContains: []string{"/courses/"},
		}
	}
}

// waitSettled 轮询等待页面跳转稳定
//
// 到达条件: 连续两次轮询URL不变,且落点属于节点的导航意图
// (主机相同、路径前缀延续)。中间跳转页(SSO、登录中转)可能短暂停留,
// 停在偏离页面不立即判负,继续轮询直到时间上限。上限耗尽时:
// 仍停在偏离页面返回RedirectMismatchError,始终未稳定返回
// NavigationTimeoutError,两者都不保存部分内容
func (e *Engine) waitSettled(tabRef string, node *models.NavigationNode) error {
	timeout := e.config.RedirectTimeoutFor(node)
	deadline := e.now().Add(timeout)

	var previous string
	for {
		current, err := e.browser.CurrentURL(tabRef)
		if err != nil {
			return err
		}

		stable := current != "" && current == previous
		if stable && utils.SameNavigationIntent(node.URL, current) {
			utils.Debugf("页面已稳定: %s", current)
			return nil
		}
		previous = current

		if e.now().After(deadline) {
			if stable {
				return &models.RedirectMismatchError{Intended: node.URL, Actual: current}
			}
			return &models.NavigationTimeoutError{URL: node.URL, Timeout: timeout}
		}
		e.sleep(e.config.CheckInterval)
	}
}

// expand 从节点已落盘的HTML中发现子节点
// 离线解析: 只读快照文件,不访问浏览器
func (e *Engine) expand(node *models.NavigationNode) error {
	if node.Record == nil {
		return fmt.Errorf("节点无捕获记录,无法展开")
	}
	markup, err := os.ReadFile(node.Record.HTMLPath)
	if err != nil {
		return fmt.Errorf("读取快照HTML失败: %w", err)
	}

	switch node.Kind {
	case models.KindDashboard:
		links, err := e.extractor.ExtractCourseLinks(markup)
		if err != nil {
			return err
		}
		for _, link := range links {
			child := node.NewChildNode(link.URL, models.KindCourse, link.Label)
			child.ClickSelector = link.ClickSelector()
		}

	case models.KindCourse:
		// 课程主页的下一层固定是作业列表页,URL可直接构造
		node.NewChildNode(node.URL+"/assignments", models.KindListing, "")

	case models.KindListing:
		links, err := e.extractor.ExtractSectionLinks(markup, e.config.SectionLabel)
		if err != nil {
			return err
		}
		for _, link := range links {
			child := node.NewChildNode(link.URL, models.KindDetail, link.Name)
			child.ClickSelector = link.ClickSelector()
			child.SectionID = link.SectionID
		}

	case models.KindDetail:
		// 叶子节点
	}
	return nil
}

// processChildren 依次处理子节点
// 每个子节点的子树处理完后在其标签页上后退一步,把浏览器带回父页面
func (e *Engine) processChildren(ctx context.Context, tabRef string, node *models.NavigationNode) {
	if len(node.Children) == 0 {
		return
	}

	var bar interface{ Add(int) error }
	if node.Kind == models.KindDashboard {
		bar = utils.NewProgressBar(len(node.Children), "处理课程")
	}

	for _, child := range node.Children {
		if ctx.Err() != nil {
			utils.Warn("收到取消信号,停止处理后续节点")
			return
		}

		childTab := e.processNode(ctx, tabRef, child)

		if err := e.browser.GoBack(childTab); err != nil {
			utils.Warnf("⚠️ 后退失败: %v", err)
		}
		e.sleep(e.config.WaitTime)

		if bar != nil {
			_ = bar.Add(1)
		}
	}
}

// fail 标记节点失败
func (e *Engine) fail(node *models.NavigationNode, err error) {
	node.State = models.NodeFailed
	e.stats.MarkFailed(node.Depth)
	utils.Errorf("❌ 节点处理失败 [深度%d] %s: %v", node.Depth, node.URL, err)
}

// siteOrigin 从URL提取scheme://host,作为链接提取的兜底基础URL
func siteOrigin(rawURL string) string {
	host := utils.HostOf(rawURL)
	if host == "" {
		return ""
	}
	return "https://" + host
}
