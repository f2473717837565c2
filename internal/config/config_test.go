package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfigFile 写入临时配置文件
func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("加载有效配置文件", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  host: "127.0.0.1"
  port: 9090
  mode: "production"
database:
  type: "sqlite"
  path: "test.db"
logging:
  level: "debug"
  format: "json"
  output: "stdout"
recommendation:
  default_top_n: 10
  neighbor_count: 3
`)

		config, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", config.Server.Host)
		assert.Equal(t, 9090, config.Server.Port)
		assert.Equal(t, "production", config.Server.Mode)
		assert.Equal(t, "test.db", config.Database.Path)
		assert.Equal(t, 10, config.Recommendation.DefaultTopN)
		assert.Equal(t, 3, config.Recommendation.NeighborCount)
	})

	t.Run("未指定的字段保留默认值", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  path: "test.db"
`)

		config, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, 8080, config.Server.Port)
		assert.Equal(t, 5, config.Recommendation.DefaultTopN)
		assert.InDelta(t, 0.6, config.Recommendation.ContentWeight, 1e-9)
		assert.InDelta(t, 3.0, config.Recommendation.MinPredictedRating, 1e-9)
		assert.Equal(t, "beginner", config.Recommendation.DefaultPreferredLevel)
	})

	t.Run("配置文件不存在返回错误", func(t *testing.T) {
		_, err := Load("/nonexistent/config.yaml")
		assert.Error(t, err)
	})

	t.Run("非法端口返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  port: 70000
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("非法运行模式返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `
server:
  mode: "staging"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("不支持的数据库类型返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `
database:
  type: "postgres"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("非法日志级别返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: "verbose"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("非法推荐配置返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `
recommendation:
  default_top_n: -1
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("非法默认偏好难度返回错误", func(t *testing.T) {
		path := writeConfigFile(t, `
recommendation:
  default_preferred_level: "expert"
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}

func TestDefault(t *testing.T) {
	config := Default()

	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "development", config.Server.Mode)
	assert.Equal(t, "sqlite", config.Database.Type)
	assert.Equal(t, 5, config.Recommendation.DefaultTopN)
	assert.Equal(t, 5, config.Recommendation.NeighborCount)
	assert.Equal(t, 100, config.Recommendation.UserSampleCap)

	// 默认配置必须通过自身的验证
	assert.NoError(t, validateConfig(config))
}

func TestGetServerAddress(t *testing.T) {
	globalConfig = Default()
	defer func() { globalConfig = nil }()

	assert.Equal(t, "0.0.0.0:8080", GetServerAddress())
}

func TestIsProduction(t *testing.T) {
	globalConfig = Default()
	defer func() { globalConfig = nil }()

	assert.False(t, IsProduction())
	globalConfig.Server.Mode = "production"
	assert.True(t, IsProduction())
}
