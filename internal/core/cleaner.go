package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

// CleanOutputDir 清空输出目录的全部内容,保留目录本身
// 目录不存在视为已清空,不报错
func CleanOutputDir(outputDir string) error {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			utils.Debugf("输出目录不存在,无需清理: %s", outputDir)
			return nil
		}
		return fmt.Errorf("读取输出目录失败: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		path := filepath.Join(outputDir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("删除失败 [%s]: %w", path, err)
		}
		removed++
	}

	utils.Infof("✅ 已清空输出目录 %s (%d 项)", outputDir, removed)
	return nil
}
