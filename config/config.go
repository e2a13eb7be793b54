package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fyerfyer/doc-preview-system/pkg/storage"
)

// Config 应用程序配置结构体
type Config struct {
	Output   OutputConfig   `mapstructure:"output"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Log      LogConfig      `mapstructure:"log"`
}

// OutputConfig 输出配置
type OutputConfig struct {
	Dir          string `mapstructure:"dir"`           // HTML输出目录
	TemplatePath string `mapstructure:"template_path"` // 模板文件路径，空则使用内置模板
}

// PipelineConfig 流水线配置
type PipelineConfig struct {
	Concurrency int    `mapstructure:"concurrency"` // worker数量，0表示GOMAXPROCS
	OnError     string `mapstructure:"on_error"`    // 错误策略：abort 或 continue
	SpanPolicy  string `mapstructure:"span_policy"` // 越界span策略：clamp 或 strict
}

// StorageConfig 对象存储配置
type StorageConfig struct {
	Endpoint   string        `mapstructure:"endpoint"` // S3兼容服务端点
	AccessKey  string        `mapstructure:"access_key"`
	SecretKey  string        `mapstructure:"secret_key"`
	UseSSL     bool          `mapstructure:"use_ssl"`     // 是否使用SSL
	Region     string        `mapstructure:"region"`      // 区域（可选）
	PresignTTL time.Duration `mapstructure:"presign_ttl"` // 预签名链接有效期
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"` // 日志级别
	File  string `mapstructure:"file"`  // 日志文件路径，空则输出到stderr
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 支持环境变量覆盖，例如PREVIEWER_STORAGE_ENDPOINT
	v.SetEnvPrefix("previewer")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate 校验配置的合法性
func (c *Config) Validate() error {
	switch c.Pipeline.OnError {
	case "abort", "continue":
	default:
		return fmt.Errorf("pipeline.on_error must be abort or continue, got %q", c.Pipeline.OnError)
	}

	switch c.Pipeline.SpanPolicy {
	case "clamp", "strict":
	default:
		return fmt.Errorf("pipeline.span_policy must be clamp or strict, got %q", c.Pipeline.SpanPolicy)
	}

	// S3预签名的后端上限是7天，必须留出余量
	if c.Storage.PresignTTL <= 0 || c.Storage.PresignTTL >= storage.PresignMaxTTL {
		return fmt.Errorf("storage.presign_ttl must be positive and strictly below %v, got %v",
			storage.PresignMaxTTL, c.Storage.PresignTTL)
	}

	return nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 输出默认配置
	v.SetDefault("output.dir", "dolma_previews")
	v.SetDefault("output.template_path", "")

	// 流水线默认配置
	v.SetDefault("pipeline.concurrency", 0)
	v.SetDefault("pipeline.on_error", "continue")
	v.SetDefault("pipeline.span_policy", "clamp")

	// 存储默认配置
	v.SetDefault("storage.endpoint", "s3.amazonaws.com")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("storage.presign_ttl", storage.PresignMaxTTL-100*time.Second)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
}
