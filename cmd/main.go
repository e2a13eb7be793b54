package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	_ "go.uber.org/automaxprocs"
	"gopkg.in/natefinch/lumberjack.v2"

	appconfig "github.com/fyerfyer/doc-preview-system/config"
	"github.com/fyerfyer/doc-preview-system/internal/document"
	"github.com/fyerfyer/doc-preview-system/internal/preview"
	"github.com/fyerfyer/doc-preview-system/internal/services"
	"github.com/fyerfyer/doc-preview-system/internal/source"
	"github.com/fyerfyer/doc-preview-system/pkg/storage"
)

// 命令行选项
type options struct {
	ConfigFile   string        // 配置文件路径
	OutputDir    string        // HTML输出目录
	TemplatePath string        // 模板文件路径
	Concurrency  int           // worker数量
	OnError      string        // 错误策略
	SpanPolicy   string        // 越界span策略
	LogLevel     string        // 日志级别
	LogFile      string        // 日志文件路径
	PresignTTL   time.Duration // 预签名链接有效期
}

func main() {
	os.Exit(run())
}

func run() int {
	opts, inputPath := parseFlags()

	// 加载.env中的存储凭证(如果存在)
	_ = godotenv.Load()

	// 加载配置文件并用显式指定的命令行参数覆盖
	cfg, err := appconfig.Load(opts.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	applyFlagOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		return 1
	}

	logger := setupLogger(cfg.Log)
	logger.WithFields(logrus.Fields{
		"input":      inputPath,
		"output_dir": cfg.Output.Dir,
		"on_error":   cfg.Pipeline.OnError,
	}).Info("Starting document preview generation...")

	// Ctrl+C取消整个批次
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		logger.Errorf("Failed to create output directory: %v", err)
		return 1
	}

	tmpl, err := preview.LoadTemplate(cfg.Output.TemplatePath)
	if err != nil {
		logger.Errorf("Failed to load template: %v", err)
		return 1
	}

	store := setupStorage(cfg.Storage, logger)

	assembler := services.NewAssembler(services.AssemblerConfig{
		Store:      store,
		Rasterizer: document.NewFitzRasterizer(),
		Template:   tmpl,
		OutputDir:  cfg.Output.Dir,
		SpanPolicy: document.SpanPolicy(cfg.Pipeline.SpanPolicy),
		PresignTTL: cfg.Storage.PresignTTL,
		Logger:     logger,
	})

	pipeline := services.NewPipeline(services.PipelineConfig{
		Assembler:   assembler,
		Concurrency: cfg.Pipeline.Concurrency,
		OnError:     services.ErrorPolicy(cfg.Pipeline.OnError),
		Logger:      logger,
	})

	lines, err := source.Open(ctx, store, inputPath)
	if err != nil {
		logger.Errorf("Failed to open input %s: %v", inputPath, err)
		return 1
	}
	defer lines.Close()

	report, err := pipeline.Run(ctx, lines)
	if err != nil {
		logger.Errorf("Batch failed: %v", err)
		return 1
	}

	logger.WithFields(logrus.Fields{
		"total":     report.Total,
		"succeeded": report.Succeeded,
		"failed":    len(report.Failures),
	}).Info("Batch finished")

	if len(report.Failures) > 0 {
		for _, failure := range report.Failures {
			logger.WithField("record_id", failure.ID).Warnf("Record failed: %v", failure.Err)
		}
		return 1
	}
	return 0
}

// parseFlags 解析命令行参数
func parseFlags() (options, string) {
	var opts options

	flag.StringVar(&opts.ConfigFile, "config", "", "Path to config file")
	flag.StringVar(&opts.OutputDir, "output_dir", "dolma_previews", "Directory to save HTML files")
	flag.StringVar(&opts.TemplatePath, "template_path", "", "Path to the HTML template file (empty for built-in)")
	flag.IntVar(&opts.Concurrency, "concurrency", 0, "Number of parallel workers (0 for GOMAXPROCS)")
	flag.StringVar(&opts.OnError, "on-error", "continue", "Batch error policy: abort or continue")
	flag.StringVar(&opts.SpanPolicy, "span-policy", "clamp", "Out-of-range span policy: clamp or strict")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug/info/warn/error)")
	flag.StringVar(&opts.LogFile, "log-file", "", "Log file path (empty for stderr)")
	flag.DurationVar(&opts.PresignTTL, "presign-ttl", storage.PresignMaxTTL-100*time.Second, "Presigned link lifetime")

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] <jsonl path>\n\nGenerate HTML preview pages from a JSONL file of annotated documents.\nThe input path may be local or s3://bucket/key.\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	return opts, flag.Arg(0)
}

// applyFlagOverrides 用显式指定的命令行参数覆盖配置文件中的值
func applyFlagOverrides(cfg *appconfig.Config, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "output_dir":
			cfg.Output.Dir = opts.OutputDir
		case "template_path":
			cfg.Output.TemplatePath = opts.TemplatePath
		case "concurrency":
			cfg.Pipeline.Concurrency = opts.Concurrency
		case "on-error":
			cfg.Pipeline.OnError = opts.OnError
		case "span-policy":
			cfg.Pipeline.SpanPolicy = opts.SpanPolicy
		case "log-level":
			cfg.Log.Level = opts.LogLevel
		case "log-file":
			cfg.Log.File = opts.LogFile
		case "presign-ttl":
			cfg.Storage.PresignTTL = opts.PresignTTL
		}
	})
}

// setupLogger 设置日志系统
func setupLogger(cfg appconfig.LogConfig) *logrus.Logger {
	logger := logrus.New()

	switch cfg.Level {
	case "debug":
		logger.SetLevel(logrus.DebugLevel)
	case "info":
		logger.SetLevel(logrus.InfoLevel)
	case "warn":
		logger.SetLevel(logrus.WarnLevel)
	case "error":
		logger.SetLevel(logrus.ErrorLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // 天
		}
		logger.SetOutput(io.MultiWriter(os.Stderr, rotator))
	}

	return logger
}

// setupStorage 设置对象存储
// 远程存储初始化失败不是致命错误：纯本地输入的批次照常工作，
// 遇到s3://路径时才会报错
func setupStorage(cfg appconfig.StorageConfig, logger *logrus.Logger) storage.ObjectStore {
	remote, err := storage.NewMinioStore(storage.MinioConfig{
		Endpoint:  cfg.Endpoint,
		AccessKey: cfg.AccessKey,
		SecretKey: cfg.SecretKey,
		UseSSL:    cfg.UseSSL,
		Region:    cfg.Region,
	})
	if err != nil {
		logger.Warnf("Remote storage unavailable: %v", err)
		return storage.NewRouter(storage.NewLocalStore(), nil)
	}
	return storage.NewRouter(storage.NewLocalStore(), remote)
}
