package crawlers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// Session 基于CDP调试端点的浏览器会话
// 连接到外部已登录的浏览器,实现models.BrowserControl
// 会话不拥有浏览器进程: Close只断开连接,页面和登录态全部保留
type Session struct {
	browser  *rod.Browser
	endpoint string
	cancel   context.CancelFunc

	// elementTimeout 元素查找超时
	elementTimeout time.Duration
}

// NewSession 连接到浏览器调试端点并创建会话
// 连接失败返回BrowserUnavailableError,这是唯一致命的浏览器错误
func NewSession(endpoint string) (*Session, error) {
	controlURL, err := launcher.ResolveURL(endpoint)
	if err != nil {
		return nil, &models.BrowserUnavailableError{Endpoint: endpoint, Err: err}
	}

	ctx, cancel := context.WithCancel(context.Background())
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		cancel()
		return nil, &models.BrowserUnavailableError{Endpoint: endpoint, Err: err}
	}

	utils.Infof("✅ 已连接浏览器调试端点: %s", endpoint)
	return &Session{
		browser:        browser,
		endpoint:       endpoint,
		cancel:         cancel,
		elementTimeout: 10 * time.Second,
	}, nil
}

// Tabs 枚举当前打开的标签页,最近打开在前
func (s *Session) Tabs() ([]models.Tab, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("枚举标签页失败: %w", err)
	}

	// CDP按创建顺序返回,反转为最近打开在前
	tabs := make([]models.Tab, 0, len(pages))
	for i := len(pages) - 1; i >= 0; i-- {
		info, err := pages[i].Info()
		if err != nil {
			utils.Debugf("获取标签页信息失败,跳过: %v", err)
			continue
		}
		tabs = append(tabs, models.Tab{
			URL:    info.URL,
			TabRef: string(pages[i].TargetID),
		})
	}
	return tabs, nil
}

// OpenTab 新建标签页并导航到URL
func (s *Session) OpenTab(url string) (models.Tab, error) {
	page, err := s.browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return models.Tab{}, fmt.Errorf("新建标签页失败: %w", err)
	}
	return models.Tab{URL: url, TabRef: string(page.TargetID)}, nil
}

// Navigate 在标签页中导航到URL并等待初始加载
func (s *Session) Navigate(tabRef string, url string, timeout time.Duration) error {
	page, err := s.page(tabRef)
	if err != nil {
		return err
	}

	p := page.Timeout(timeout)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("导航失败 [%s]: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("页面加载超时 [%s]: %w", url, err)
	}
	return nil
}

// CurrentURL 返回标签页当前URL
func (s *Session) CurrentURL(tabRef string) (string, error) {
	page, err := s.page(tabRef)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("获取标签页信息失败: %w", err)
	}
	return info.URL, nil
}

// Click 点击选择器命中的首个元素
func (s *Session) Click(tabRef string, selector string) error {
	page, err := s.page(tabRef)
	if err != nil {
		return err
	}

	el, err := page.Timeout(s.elementTimeout).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s", models.ErrElementNotFound, selector)
	}
	if err := el.ScrollIntoView(); err != nil {
		utils.Debugf("元素滚动失败,直接点击: %v", err)
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("点击元素失败 [%s]: %w", selector, err)
	}
	return nil
}

// WaitQuiescent 等待页面加载完成
// 超时返回false,调用方自行决定退化策略
func (s *Session) WaitQuiescent(tabRef string, timeout time.Duration) bool {
	page, err := s.page(tabRef)
	if err != nil {
		return false
	}
	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return false
	}
	return true
}

// GoBack 浏览器后退一步
func (s *Session) GoBack(tabRef string) error {
	page, err := s.page(tabRef)
	if err != nil {
		return err
	}
	if err := page.NavigateBack(); err != nil {
		return fmt.Errorf("后退失败: %w", err)
	}
	return nil
}

// Markup 获取页面渲染后的完整HTML
func (s *Session) Markup(tabRef string) (string, error) {
	page, err := s.page(tabRef)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("获取页面HTML失败: %w", err)
	}
	return html, nil
}

// Screenshot 获取页面截图
func (s *Session) Screenshot(tabRef string, fullPage bool) ([]byte, error) {
	page, err := s.page(tabRef)
	if err != nil {
		return nil, err
	}
	format := proto.PageCaptureScreenshotFormatPng
	data, err := page.Screenshot(fullPage, &proto.PageCaptureScreenshot{Format: format})
	if err != nil {
		return nil, fmt.Errorf("截图失败: %w", err)
	}
	return data, nil
}

// Close 断开与浏览器的连接
// 只取消连接上下文,不关闭外部浏览器进程,登录态保留
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	utils.Debug("已断开浏览器连接")
	return nil
}

// page 按TargetID查找标签页
func (s *Session) page(tabRef string) (*rod.Page, error) {
	pages, err := s.browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("枚举标签页失败: %w", err)
	}
	for _, p := range pages {
		if string(p.TargetID) == tabRef {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", models.ErrNoMatchingTab, tabRef)
}
