package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/RecoveryAshes/CourseGrab/internal/core"
	"github.com/RecoveryAshes/CourseGrab/internal/crawlers"
	"github.com/RecoveryAshes/CourseGrab/internal/utils"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

// 命令行参数
var (
	// 全局参数
	configFile string
	verbose    bool
	logLevel   string

	// 遍历参数
	startURL     string
	outputDir    string
	depth        int
	sectionLabel string
	waitTime     int
	cleanOutput  bool

	// 浏览器参数
	debugPort int
	headless  bool
)

var rootCmd = &cobra.Command{
	Use:   "coursegrab",
	Short: "LMS课程作业页面批量捕获工具",
	Long: `CourseGrab - LMS课程作业页面批量捕获工具 (Go版本)

连接外部已登录的浏览器,从课程总览页出发逐层遍历:
  • dashboard → 课程主页 → 作业列表 → 作业详情
  • 每个页面保存渲染后HTML和整页截图
  • 输出目录树与导航树一一对应
  • 时间戳文件名,多次运行互不覆盖

使用示例:
  # 带调试端口启动浏览器并登录后执行
  coursegrab -u https://lms.example.edu/dashboard -o output

  # 指定作业分组和遍历深度
  coursegrab -u https://lms.example.edu/dashboard --section "Past Assignments" -d 3

版本: ` + Version + `
构建时间: ` + BuildTime,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// 加载配置
		config, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}

		// 初始化日志系统
		logConfig := utils.LogConfig{
			Level:      config.Logging.Level,
			LogDir:     config.Logging.LogDir,
			MaxSize:    config.Logging.Rotation.MaxSize,
			MaxBackups: config.Logging.Rotation.MaxBackups,
			MaxAge:     config.Logging.Rotation.MaxAge,
			Compress:   config.Logging.Rotation.Compress,
		}

		// 命令行参数覆盖配置文件
		if logLevel != "" {
			logConfig.Level = logLevel
		}

		if err := utils.InitLogger(logConfig); err != nil {
			return fmt.Errorf("初始化日志系统失败: %w", err)
		}

		if verbose {
			utils.Info("详细模式已启用")
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// 没有起始URL时显示帮助
		if startURL == "" {
			return cmd.Help()
		}

		// 规范化起始URL(补全协议)
		normalized, err := NormalizeURL(startURL)
		if err != nil {
			return fmt.Errorf("无效的起始URL: %w", err)
		}
		startURL = normalized

		// 加载配置并合并命令行参数
		appConfig, err := core.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("加载配置失败: %w", err)
		}
		appConfig.MergeCLIFlags(startURL, outputDir, sectionLabel, depth, debugPort, cleanOutput)
		if cmd.Flags().Changed("wait") {
			appConfig.Crawl.WaitTime = time.Duration(waitTime) * time.Second
		}
		if cmd.Flags().Changed("headless") {
			appConfig.Browser.Headless = headless
		}

		// 验证参数
		if err := ValidateFlags(&appConfig.Crawl, appConfig.Browser.DebugPort); err != nil {
			return err
		}

		// 信号处理(Ctrl+C优雅退出)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		go func() {
			sig := <-sigChan
			utils.Warnf("\n收到中断信号: %v, 正在优雅关闭...", sig)
			cancel()
		}()

		// 运行前清理输出目录
		if appConfig.Crawl.CleanOutput {
			if err := core.CleanOutputDir(appConfig.Crawl.OutputDir); err != nil {
				return fmt.Errorf("清理输出目录失败: %w", err)
			}
		}

		// 确保浏览器可用并建立会话
		manager := crawlers.NewManager(appConfig.Browser.DebugPort, appConfig.Browser.UserDataDir, appConfig.Browser.Headless)
		if err := manager.EnsureRunning(); err != nil {
			return fmt.Errorf("浏览器不可用: %w", err)
		}

		session, err := crawlers.NewSession(manager.Endpoint())
		if err != nil {
			return fmt.Errorf("连接浏览器失败: %w", err)
		}
		defer session.Close()

		// 执行遍历
		engine := core.NewEngine(&appConfig.Crawl, session)
		stats, err := engine.Run(ctx)
		if err != nil {
			return fmt.Errorf("遍历失败: %w", err)
		}

		// 生成报告
		reporter := utils.NewReporter(appConfig.Crawl.OutputDir)
		if err := reporter.GenerateReport(stats, &appConfig.Crawl); err != nil {
			utils.Warnf("⚠️ 报告生成失败: %v", err)
		}

		// 显示统计结果
		fmt.Println("\n==================================================")
		fmt.Println("📊 捕获统计")
		fmt.Println("==================================================")
		for _, tally := range stats.Levels {
			fmt.Printf("深度 %d: 尝试 %d, 捕获 %d, 失败 %d\n",
				tally.Depth, tally.Attempted, tally.Captured, tally.Failed)
		}
		fmt.Printf("✅ 捕获页面总数: %d\n", stats.TotalCaptured)
		fmt.Printf("❌ 失败节点总数: %d\n", stats.TotalFailed)
		fmt.Printf("⏱️  总耗时: %s\n", stats.Duration)
		fmt.Println("==================================================")

		utils.Info("✨ 捕获任务完成!")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "显示版本信息",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("CourseGrab %s\n", Version)
		fmt.Printf("构建时间: %s\n", BuildTime)
		fmt.Println("Go实现版本 - LMS课程页面捕获工具")
	},
}

func init() {
	// 全局参数
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "配置文件路径")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "详细输出模式")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "日志级别 (trace|debug|info|warn|error)")

	// 遍历参数
	rootCmd.Flags().StringVarP(&startURL, "url", "u", "", "课程总览页URL (必需)")
	rootCmd.Flags().StringVarP(&outputDir, "output", "o", "", "输出目录")
	rootCmd.Flags().IntVarP(&depth, "depth", "d", -1, "最大遍历深度 (0=仅根页面)")
	rootCmd.Flags().StringVar(&sectionLabel, "section", "", "目标作业分组名 (默认 Past Assignments)")
	rootCmd.Flags().IntVarP(&waitTime, "wait", "w", 2, "页面等待时间(秒)")
	rootCmd.Flags().BoolVar(&cleanOutput, "clean", false, "运行前清空输出目录")

	// 浏览器参数
	rootCmd.Flags().IntVar(&debugPort, "port", 0, "浏览器调试端口 (默认 9222)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "无头浏览器模式(仅新拉起实例时生效)")

	// 添加子命令
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}
