package crawlers

import (
	"os"
	"path/filepath"
	"time"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// SnapshotStore 页面快照存储
// 负责快照落盘的全部细节: 目录派生、时间戳命名、HTML与截图写入
// 磁盘写入只发生在这里,引擎和提取器不直接碰文件系统
type SnapshotStore struct {
	outputRoot string

	// quiesceTimeout 快照前页面静默等待上限
	quiesceTimeout time.Duration

	// fallbackDelay 静默等待超时后的固定延迟
	fallbackDelay time.Duration

	// now 可注入的时钟,测试用
	now func() time.Time
}

// NewSnapshotStore 创建快照存储
func NewSnapshotStore(outputRoot string, quiesceTimeout, fallbackDelay time.Duration) *SnapshotStore {
	return &SnapshotStore{
		outputRoot:     outputRoot,
		quiesceTimeout: quiesceTimeout,
		fallbackDelay:  fallbackDelay,
		now:            time.Now,
	}
}

// SetClock 注入时间戳时钟,测试用
func (s *SnapshotStore) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot 对节点当前页面做一次完整快照
//
// 流程: 等待页面静默(超时则固定延迟后继续) → 取渲染后HTML和整页截图 →
// 共用一个时间戳写入 <目录>/<时间戳>.html 和 <时间戳>.png。
// 目录由节点树位置派生,快照成功时回填node.CaptureDir和node.Record。
// 截图失败时返回SaveError,已写入的HTML保留在磁盘上
func (s *SnapshotStore) Snapshot(b models.BrowserControl, tabRef string, node *models.NavigationNode) (*models.CaptureRecord, error) {
	if !b.WaitQuiescent(tabRef, s.quiesceTimeout) {
		utils.Warnf("⚠️ 页面静默等待超时,延迟 %v 后继续: %s", s.fallbackDelay, node.URL)
		time.Sleep(s.fallbackDelay)
	}

	actualURL, err := b.CurrentURL(tabRef)
	if err != nil {
		actualURL = node.URL
	}

	markup, err := b.Markup(tabRef)
	if err != nil {
		return nil, &models.SaveError{Path: node.URL, Err: err}
	}

	dir := s.dirFor(node)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &models.SaveError{Path: dir, Err: err}
	}

	stem := s.now().Format(models.TimestampLayout)
	htmlPath := filepath.Join(dir, stem+".html")
	screenshotPath := filepath.Join(dir, stem+".png")

	if err := os.WriteFile(htmlPath, []byte(markup), 0644); err != nil {
		return nil, &models.SaveError{Path: htmlPath, Err: err}
	}
	utils.Debugf("已保存HTML: %s", htmlPath)

	// 截图失败视为快照失败,但已写入的HTML保留不回滚
	png, err := b.Screenshot(tabRef, true)
	if err != nil {
		utils.Warnf("⚠️ 截图失败,保留已写入的HTML [%s]", htmlPath)
		return nil, &models.SaveError{Path: screenshotPath, Err: err}
	}
	if err := os.WriteFile(screenshotPath, png, 0644); err != nil {
		utils.Warnf("⚠️ 截图写入失败,保留已写入的HTML [%s]", htmlPath)
		return nil, &models.SaveError{Path: screenshotPath, Err: err}
	}
	utils.Debugf("已保存截图: %s", screenshotPath)

	record := models.NewCaptureRecord(actualURL, htmlPath, screenshotPath, node.Depth, s.now())
	node.CaptureDir = dir
	node.Record = record

	utils.Infof("✅ 已捕获页面 [深度%d]: %s", node.Depth, actualURL)
	return record, nil
}

// dirFor 派生节点的快照目录
//
// 根节点: <输出根>/<完整URL派生名>
// 子节点: <父节点目录>/<显示名或路径末段派生名>
// 同一URL在不同运行中落到同一目录,时间戳文件名保证不互相覆盖
func (s *SnapshotStore) dirFor(node *models.NavigationNode) string {
	if node.IsRoot() {
		return filepath.Join(s.outputRoot, utils.FolderNameForURL(node.URL))
	}

	// 课程节点用清洗后的课程名,其余节点(列表页/详情页)用URL路径末段,
	// 详情页因此得到 assignment_<ID> 形式的稳定目录名
	var name string
	if node.Kind == models.KindCourse && node.Label != "" {
		name = utils.SanitizeName(node.Label, utils.MaxSubfolderNameLength)
	} else {
		name = utils.SubfolderNameForURL(node.URL)
	}

	parentDir := node.Parent.CaptureDir
	if parentDir == "" {
		// 父节点未捕获时退化为根布局,避免产出游离路径
		parentDir = filepath.Join(s.outputRoot, utils.FolderNameForURL(node.URL))
		return parentDir
	}
	return filepath.Join(parentDir, name)
}
