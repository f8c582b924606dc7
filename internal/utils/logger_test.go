package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultLogConfig(t *testing.T) {
	cfg := DefaultLogConfig()

	if cfg.Level != "info" {
		t.Errorf("默认级别 = %s, 期望 info", cfg.Level)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("默认日志目录 = %s, 期望 logs", cfg.LogDir)
	}
	if cfg.MaxSize <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAge <= 0 {
		t.Error("轮转参数应为正数")
	}
}

func TestInitLogger(t *testing.T) {
	logDir := filepath.Join(t.TempDir(), "logs")
	cfg := DefaultLogConfig()
	cfg.LogDir = logDir

	if err := InitLogger(cfg); err != nil {
		t.Fatalf("初始化日志系统失败: %v", err)
	}

	if _, err := os.Stat(logDir); err != nil {
		t.Errorf("日志目录未创建: %v", err)
	}

	// 写一条日志触发文件创建
	Infof("测试日志 %d", 1)
	if _, err := os.Stat(filepath.Join(logDir, "coursegrab.log")); err != nil {
		t.Errorf("主日志文件未创建: %v", err)
	}
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	cfg := DefaultLogConfig()
	cfg.LogDir = t.TempDir()
	cfg.Level = "not-a-level"

	// 无效级别退化为info,不报错
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("无效级别不应导致初始化失败: %v", err)
	}
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("全局级别 = %v, 期望 info", zerolog.GlobalLevel())
	}
}

func TestFilteredWriterWriteLevel(t *testing.T) {
	var buf bytes.Buffer
	w := &FilteredWriter{Writer: &buf, MinLevel: zerolog.ErrorLevel}

	if _, err := w.WriteLevel(zerolog.InfoLevel, []byte("info行")); err != nil {
		t.Fatalf("低级别写入报错: %v", err)
	}
	if buf.Len() != 0 {
		t.Error("低于最小级别的日志不应写入")
	}

	if _, err := w.WriteLevel(zerolog.ErrorLevel, []byte("error行")); err != nil {
		t.Fatalf("错误级别写入报错: %v", err)
	}
	if buf.String() != "error行" {
		t.Errorf("错误级别日志应写入, 实际内容 %q", buf.String())
	}
}
