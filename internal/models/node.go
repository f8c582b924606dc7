package models

// NodeState 遍历节点状态
type NodeState string

const (
	NodePending      NodeState = "pending"      // 已入队,URL或点击目标已知
	NodeNavigating   NodeState = "navigating"   // 导航/跳转监控中
	NodeSnapshotting NodeState = "snapshotting" // 保存HTML和截图中
	NodeExpanding    NodeState = "expanding"    // 发现并处理子节点中
	NodeDone         NodeState = "done"         // 本节点及全部子树处理完成
	NodeFailed       NodeState = "failed"       // 任一阶段失败,兄弟节点继续
)

// NodeKind 遍历节点类型
// 决定子节点发现方式和导航方式(点击/直接导航)
type NodeKind string

const (
	KindDashboard NodeKind = "dashboard" // 根节点: 课程总览页
	KindCourse    NodeKind = "course"    // 课程主页(从dashboard卡片点击进入)
	KindListing   NodeKind = "listing"   // 作业列表页(课程URL + /assignments)
	KindDetail    NodeKind = "detail"    // 单个作业详情页
)

// NavigationNode 遍历树中的一个节点
// 快照成功后除Children/State外视为不可变; 树只存在于单次运行的内存中,
// 持久化的是它的"效果"——输出目录树
type NavigationNode struct {
	URL   string   // 期望到达的URL(实际到达以CaptureRecord.URL为准)
	Depth int      // 根节点为0
	Kind  NodeKind // 节点类型
	Label string   // 人类可读名称(课程名),优先于URL派生的目录名

	// Parent 仅用于计算存储路径,不做反向修改
	Parent *NavigationNode

	// ClickSelector 非根节点的点击定位器(由父节点提取的链接生成)
	ClickSelector string

	// SectionID 详情节点所属折叠分组的容器ID(点击前需展开分组)
	SectionID string

	// Children 快照成功后由离线提取懒填充,按提取顺序处理
	Children []*NavigationNode

	State NodeState

	// CaptureDir 本节点快照所在目录,快照成功时赋值
	CaptureDir string

	// Record 快照结果,失败时为nil
	Record *CaptureRecord
}

// NewRootNode 创建根节点(dashboard)
func NewRootNode(url string) *NavigationNode {
	return &NavigationNode{
		URL:   url,
		Depth: 0,
		Kind:  KindDashboard,
		State: NodePending,
	}
}

// NewChildNode 创建子节点并挂到父节点下
func (n *NavigationNode) NewChildNode(url string, kind NodeKind, label string) *NavigationNode {
	child := &NavigationNode{
		URL:    url,
		Depth:  n.Depth + 1,
		Kind:   kind,
		Label:  label,
		Parent: n,
		State:  NodePending,
	}
	n.Children = append(n.Children, child)
	return child
}

// IsRoot 是否为根节点
func (n *NavigationNode) IsRoot() bool {
	return n.Parent == nil
}
