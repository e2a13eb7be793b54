package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyerfyer/doc-preview-system/pkg/storage"
)

// TestLoadDefaults 测试无配置文件时的默认值
func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "dolma_previews", cfg.Output.Dir)
	assert.Equal(t, "continue", cfg.Pipeline.OnError)
	assert.Equal(t, "clamp", cfg.Pipeline.SpanPolicy)
	assert.Equal(t, 0, cfg.Pipeline.Concurrency)

	// 预签名有效期必须严格小于后端的7天上限
	assert.Greater(t, cfg.Storage.PresignTTL, time.Duration(0))
	assert.Less(t, cfg.Storage.PresignTTL, 7*24*time.Hour)
}

// TestLoadFromFile 测试从YAML文件加载配置
func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
output:
  dir: ./previews
  template_path: ./tmpl.html
pipeline:
  concurrency: 4
  on_error: abort
  span_policy: strict
storage:
  endpoint: minio.local:9000
  use_ssl: false
  presign_ttl: 24h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "./previews", cfg.Output.Dir)
	assert.Equal(t, 4, cfg.Pipeline.Concurrency)
	assert.Equal(t, "abort", cfg.Pipeline.OnError)
	assert.Equal(t, "strict", cfg.Pipeline.SpanPolicy)
	assert.Equal(t, "minio.local:9000", cfg.Storage.Endpoint)
	assert.Equal(t, 24*time.Hour, cfg.Storage.PresignTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

// TestLoadMissingFile 测试显式指定的配置文件不存在时报错
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

// TestValidate 测试配置校验
func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Pipeline: PipelineConfig{OnError: "continue", SpanPolicy: "clamp"},
			Storage:  StorageConfig{PresignTTL: 24 * time.Hour},
		}
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("BadOnError", func(t *testing.T) {
		cfg := valid()
		cfg.Pipeline.OnError = "explode"
		assert.Error(t, cfg.Validate())
	})

	t.Run("BadSpanPolicy", func(t *testing.T) {
		cfg := valid()
		cfg.Pipeline.SpanPolicy = "wrap"
		assert.Error(t, cfg.Validate())
	})

	t.Run("TTLTooLong", func(t *testing.T) {
		// 上限与存储层定义的后端上限是同一个常量
		cfg := valid()
		cfg.Storage.PresignTTL = storage.PresignMaxTTL
		assert.Error(t, cfg.Validate())

		cfg.Storage.PresignTTL = storage.PresignMaxTTL + 24*time.Hour
		assert.Error(t, cfg.Validate())
	})

	t.Run("TTLJustBelowMaximum", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.PresignTTL = storage.PresignMaxTTL - time.Second
		assert.NoError(t, cfg.Validate())
	})

	t.Run("TTLNonPositive", func(t *testing.T) {
		cfg := valid()
		cfg.Storage.PresignTTL = 0
		assert.Error(t, cfg.Validate())
	})
}

// TestEnvOverride 测试环境变量覆盖
func TestEnvOverride(t *testing.T) {
	t.Setenv("PREVIEWER_OUTPUT_DIR", "/tmp/env-previews")
	t.Setenv("PREVIEWER_PIPELINE_ON_ERROR", "abort")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/env-previews", cfg.Output.Dir)
	assert.Equal(t, "abort", cfg.Pipeline.OnError)
}
