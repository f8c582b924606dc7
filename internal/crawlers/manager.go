package crawlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// browserProcessNames 常见浏览器进程名(各平台)
var browserProcessNames = []string{
	"chrome",
	"chromium",
	"chromium-browser",
	"google chrome",
	"msedge",
	"microsoft edge",
}

// Manager 浏览器进程管理器
// 负责检测外部浏览器是否在运行、必要时带调试端口拉起浏览器、
// 以及确认调试端点可达。不负责页面操作,那是Session的事
type Manager struct {
	port        int
	userDataDir string
	headless    bool
}

// NewManager 创建浏览器管理器
func NewManager(port int, userDataDir string, headless bool) *Manager {
	return &Manager{
		port:        port,
		userDataDir: userDataDir,
		headless:    headless,
	}
}

// Endpoint 返回调试端点地址
func (m *Manager) Endpoint() string {
	return fmt.Sprintf("http://127.0.0.1:%d", m.port)
}

// IsRunning 通过进程扫描检测浏览器是否已在运行
func (m *Manager) IsRunning() bool {
	procs, err := process.Processes()
	if err != nil {
		utils.Debugf("进程扫描失败: %v", err)
		return false
	}

	for _, p := range procs {
		name, err := p.Name()
		if err != nil {
			continue
		}
		lowered := strings.ToLower(name)
		for _, candidate := range browserProcessNames {
			if strings.Contains(lowered, candidate) {
				return true
			}
		}
	}
	return false
}

// EndpointReachable 探测调试端点是否可达
func (m *Manager) EndpointReachable() bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(m.Endpoint() + "/json/version")
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// EnsureRunning 确保存在带调试端口的浏览器
//
// 端点已可达时直接复用(外部浏览器保留登录态的关键路径);
// 否则带调试端口拉起新的浏览器实例,并等待端点就绪
func (m *Manager) EnsureRunning() error {
	if m.EndpointReachable() {
		utils.Infof("✅ 复用已运行的浏览器: %s", m.Endpoint())
		return nil
	}

	if m.IsRunning() {
		// 浏览器在跑但没开调试端口,无法附着
		utils.Warnf("⚠️ 检测到浏览器进程,但调试端口 %d 未开放,将另起实例", m.port)
	}

	return m.launch()
}

// launch 带调试端口拉起浏览器
func (m *Manager) launch() error {
	l := launcher.New().
		Headless(m.headless).
		Set("remote-debugging-port", fmt.Sprintf("%d", m.port))

	if m.userDataDir != "" {
		l = l.UserDataDir(m.userDataDir)
	}

	if _, err := l.Launch(); err != nil {
		return fmt.Errorf("启动浏览器失败: %w", err)
	}
	utils.Debugf("浏览器已启动,调试端口: %d", m.port)

	// 等待调试端点就绪
	for i := 0; i < 10; i++ {
		if m.EndpointReachable() {
			utils.Infof("✅ 浏览器调试端点就绪: %s", m.Endpoint())
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("浏览器调试端点在重试后仍不可达: %s", m.Endpoint())
}
