package models

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// 遍历参数默认值
const (
	DefaultMaxDepth                 = 3
	DefaultWaitTime                 = 2 * time.Second
	DefaultCheckInterval            = 5 * time.Second
	DefaultRedirectTimeout          = 30 * time.Second
	DefaultDashboardRedirectTimeout = 300 * time.Second
	DefaultQuiesceTimeout           = 10 * time.Second
	DefaultSectionLabel             = "Past Assignments"
)

// TraversalConfig 单次遍历运行的参数
type TraversalConfig struct {
	StartURL  string `mapstructure:"start_url"`  // 起始dashboard URL
	OutputDir string `mapstructure:"output_dir"` // 输出根目录
	MaxDepth  int    `mapstructure:"max_depth"`  // 最大遍历深度(根为0)

	// WaitTime 快照前的固定等待时间(页面静默退化兜底)
	WaitTime time.Duration `mapstructure:"wait_time"`

	// CheckInterval 跳转监控轮询间隔
	CheckInterval time.Duration `mapstructure:"check_interval"`

	// RedirectTimeout 普通页面跳转稳定超时
	RedirectTimeout time.Duration `mapstructure:"redirect_timeout"`

	// DashboardRedirectTimeout 根页面跳转稳定超时
	// 起始页可能经过登录跳转链,容忍时间远大于普通页面
	DashboardRedirectTimeout time.Duration `mapstructure:"dashboard_redirect_timeout"`

	// QuiesceTimeout 页面静默等待超时
	QuiesceTimeout time.Duration `mapstructure:"quiesce_timeout"`

	// SectionLabel 目标折叠分组的显示名
	SectionLabel string `mapstructure:"section_label"`

	// CleanOutput 运行前清空输出目录
	CleanOutput bool `mapstructure:"clean_output"`
}

// NewTraversalConfig 创建带默认值的遍历配置
func NewTraversalConfig(startURL, outputDir string) *TraversalConfig {
	return &TraversalConfig{
		StartURL:                 startURL,
		OutputDir:                outputDir,
		MaxDepth:                 DefaultMaxDepth,
		WaitTime:                 DefaultWaitTime,
		CheckInterval:            DefaultCheckInterval,
		RedirectTimeout:          DefaultRedirectTimeout,
		DashboardRedirectTimeout: DefaultDashboardRedirectTimeout,
		QuiesceTimeout:           DefaultQuiesceTimeout,
		SectionLabel:             DefaultSectionLabel,
	}
}

// Validate 校验遍历配置
func (c *TraversalConfig) Validate() error {
	if err := ValidateURL(c.StartURL); err != nil {
		return fmt.Errorf("起始URL无效: %w", err)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("输出目录不能为空")
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("最大深度不能为负数: %d", c.MaxDepth)
	}
	if c.CheckInterval <= 0 {
		return fmt.Errorf("轮询间隔必须大于0: %v", c.CheckInterval)
	}
	if c.RedirectTimeout < c.CheckInterval {
		return fmt.Errorf("跳转超时(%v)不能小于轮询间隔(%v)", c.RedirectTimeout, c.CheckInterval)
	}
	if c.DashboardRedirectTimeout < c.RedirectTimeout {
		return fmt.Errorf("根页面跳转超时(%v)不能小于普通跳转超时(%v)", c.DashboardRedirectTimeout, c.RedirectTimeout)
	}
	if c.SectionLabel == "" {
		return fmt.Errorf("目标分组名不能为空")
	}
	return nil
}

// RedirectTimeoutFor 返回节点对应的跳转稳定超时
func (c *TraversalConfig) RedirectTimeoutFor(node *NavigationNode) time.Duration {
	if node.IsRoot() {
		return c.DashboardRedirectTimeout
	}
	return c.RedirectTimeout
}

// LevelTally 单个深度层级的处理计数
type LevelTally struct {
	Depth     int `json:"depth"`
	Attempted int `json:"attempted"` // 进入处理的节点数
	Captured  int `json:"captured"`  // 快照成功的节点数
	Failed    int `json:"failed"`    // 任一阶段失败的节点数
}

// RunStats 单次遍历运行的统计
type RunStats struct {
	RunID     string    `json:"run_id"`
	StartURL  string    `json:"start_url"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Duration  string    `json:"duration"`

	levels map[int]*LevelTally

	Levels []*LevelTally `json:"levels"` // 按深度升序,Finish时生成

	TotalCaptured int `json:"total_captured"`
	TotalFailed   int `json:"total_failed"`

	Records []*CaptureRecord `json:"-"` // 全部成功捕获记录,报告单独落盘
}

// NewRunStats 创建运行统计
func NewRunStats(startURL string) *RunStats {
	return &RunStats{
		RunID:     uuid.New().String(),
		StartURL:  startURL,
		StartTime: time.Now(),
		levels:    make(map[int]*LevelTally),
	}
}

func (s *RunStats) level(depth int) *LevelTally {
	t, ok := s.levels[depth]
	if !ok {
		t = &LevelTally{Depth: depth}
		s.levels[depth] = t
	}
	return t
}

// MarkAttempted 记录某深度一次处理尝试
func (s *RunStats) MarkAttempted(depth int) {
	s.level(depth).Attempted++
}

// MarkCaptured 记录某深度一次成功捕获
func (s *RunStats) MarkCaptured(depth int, record *CaptureRecord) {
	s.level(depth).Captured++
	s.TotalCaptured++
	if record != nil {
		s.Records = append(s.Records, record)
	}
}

// MarkFailed 记录某深度一次失败
func (s *RunStats) MarkFailed(depth int) {
	s.level(depth).Failed++
	s.TotalFailed++
}

// Finish 结束统计并整理层级列表
func (s *RunStats) Finish() {
	s.EndTime = time.Now()
	s.Duration = s.EndTime.Sub(s.StartTime).Round(time.Millisecond).String()

	s.Levels = s.Levels[:0]
	for _, t := range s.levels {
		s.Levels = append(s.Levels, t)
	}
	sort.Slice(s.Levels, func(i, j int) bool {
		return s.Levels[i].Depth < s.Levels[j].Depth
	})
}
