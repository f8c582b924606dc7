package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout 快照文件名时间戳格式
// HTML与截图共用同一时间戳,保证成对文件无歧义配对
const TimestampLayout = "20060102_150405"

// CaptureRecord 单次页面快照的结果
// 由PageSnapshotStore创建,创建后不可变; 磁盘写入只由store完成
type CaptureRecord struct {
	ID             string    `json:"id"`              // 捕获唯一ID
	URL            string    `json:"url"`             // 实际到达的URL(重定向后)
	HTMLPath       string    `json:"html_path"`       // HTML文件路径
	ScreenshotPath string    `json:"screenshot_path"` // 截图文件路径
	Depth          int       `json:"depth"`           // 节点在遍历树中的深度
	CapturedAt     time.Time `json:"captured_at"`     // 捕获时间
}

// NewCaptureRecord 创建捕获记录
func NewCaptureRecord(url, htmlPath, screenshotPath string, depth int, capturedAt time.Time) *CaptureRecord {
	return &CaptureRecord{
		ID:             uuid.New().String(),
		URL:            url,
		HTMLPath:       htmlPath,
		ScreenshotPath: screenshotPath,
		Depth:          depth,
		CapturedAt:     capturedAt,
	}
}

// ToJSON 序列化为JSON
func (r *CaptureRecord) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}
