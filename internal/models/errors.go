package models

import (
	"errors"
	"fmt"
	"time"
)

// 预定义错误
var (
	// ErrNoMatchingTab 标签页识别策略全部落空
	ErrNoMatchingTab = errors.New("未找到匹配的标签页")

	// ErrElementNotFound 页面中不存在点击目标元素
	ErrElementNotFound = errors.New("未找到目标元素")
)

// BrowserUnavailableError 无法连接浏览器调试端点
// 仅在根连接阶段致命,整个运行中止
type BrowserUnavailableError struct {
	Endpoint string
	Err      error
}

func (e *BrowserUnavailableError) Error() string {
	return fmt.Sprintf("浏览器调试端点不可用 [%s]: %v", e.Endpoint, e.Err)
}

func (e *BrowserUnavailableError) Unwrap() error {
	return e.Err
}

// NavigationTimeoutError 跳转监控在时间上限内未达到稳定条件
// 节点标记为失败,不保存部分内容
type NavigationTimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *NavigationTimeoutError) Error() string {
	return fmt.Sprintf("页面跳转在%v内未稳定: %s", e.Timeout, e.URL)
}

// RedirectMismatchError 跳转落点校验失败
// 实际到达页面与预期目标不属于同一导航意图,丢弃不保存
type RedirectMismatchError struct {
	Intended string
	Actual   string
}

func (e *RedirectMismatchError) Error() string {
	return fmt.Sprintf("跳转落点与预期不符: 预期 %s, 实际 %s", e.Intended, e.Actual)
}

// SaveError 快照写盘失败(目录创建或文件写入)
type SaveError struct {
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("保存快照失败 [%s]: %v", e.Path, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
