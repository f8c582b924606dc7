package core

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/RecoveryAshes/CourseGrab/internal/models"
)

// Config 应用程序配置
type Config struct {
	Crawl   models.TraversalConfig `mapstructure:"crawl"`
	Browser BrowserConfig          `mapstructure:"browser"`
	Logging LoggingConfig          `mapstructure:"logging"`
}

// BrowserConfig 浏览器配置
type BrowserConfig struct {
	DebugPort   int    `mapstructure:"debug_port"`    // CDP调试端口
	UserDataDir string `mapstructure:"user_data_dir"` // 浏览器用户数据目录(保留登录态)
	Headless    bool   `mapstructure:"headless"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level    string         `mapstructure:"level"`
	LogDir   string         `mapstructure:"log_dir"`
	Rotation RotationConfig `mapstructure:"rotation"`
}

// RotationConfig 日志轮转配置
type RotationConfig struct {
	MaxSize    int  `mapstructure:"max_size"`
	MaxBackups int  `mapstructure:"max_backups"`
	MaxAge     int  `mapstructure:"max_age"`
	Compress   bool `mapstructure:"compress"`
}

// LoadConfig 加载配置文件
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// 设置配置文件
	if configPath != "" {
		// 使用指定的配置文件
		v.SetConfigFile(configPath)
	} else {
		// 搜索默认位置
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 添加配置搜索路径
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")

		// 用户主目录
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".coursegrab"))
		}
	}

	// 设置默认值
	setDefaults(v)

	// 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 如果配置文件不存在,使用默认值
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
		// 配置文件不存在,使用默认值
	}

	// 解析配置
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	return &config, nil
}

// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// 遍历配置默认值
	v.SetDefault("crawl.start_url", "")
	v.SetDefault("crawl.output_dir", "output")
	v.SetDefault("crawl.max_depth", models.DefaultMaxDepth)
	v.SetDefault("crawl.wait_time", "2s")
	v.SetDefault("crawl.check_interval", "5s")
	v.SetDefault("crawl.redirect_timeout", "30s")
	v.SetDefault("crawl.dashboard_redirect_timeout", "300s")
	v.SetDefault("crawl.quiesce_timeout", "10s")
	v.SetDefault("crawl.section_label", models.DefaultSectionLabel)
	v.SetDefault("crawl.clean_output", false)

	// 浏览器配置默认值
	v.SetDefault("browser.debug_port", 9222)
	v.SetDefault("browser.user_data_dir", "")
	v.SetDefault("browser.headless", false)

	// 日志配置默认值
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.log_dir", "logs")
	v.SetDefault("logging.rotation.max_size", 10)
	v.SetDefault("logging.rotation.max_backups", 3)
	v.SetDefault("logging.rotation.max_age", 28)
	v.SetDefault("logging.rotation.compress", true)
}

// MergeCLIFlags 合并命令行参数到配置
// 命令行参数优先于配置文件
func (c *Config) MergeCLIFlags(startURL, outputDir, sectionLabel string, depth, port int, clean bool) {
	if startURL != "" {
		c.Crawl.StartURL = startURL
	}
	if outputDir != "" {
		c.Crawl.OutputDir = outputDir
	}
	if sectionLabel != "" {
		c.Crawl.SectionLabel = sectionLabel
	}
	if depth >= 0 {
		c.Crawl.MaxDepth = depth
	}
	if port > 0 {
		c.Browser.DebugPort = port
	}
	if clean {
		c.Crawl.CleanOutput = true
	}
}
