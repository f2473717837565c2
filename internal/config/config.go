package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"coursehub/internal/errors"
	"coursehub/internal/logger"
)

// Config 应用配置结构
type Config struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Logging        LoggingConfig        `mapstructure:"logging"`
	Recommendation RecommendationConfig `mapstructure:"recommendation"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Type        string `mapstructure:"type"`
	Path        string `mapstructure:"path"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// RecommendationConfig 推荐引擎配置
// 评分策略的所有默认值都集中在这里，便于审计和独立测试
type RecommendationConfig struct {
	DefaultTopN           int     `mapstructure:"default_top_n"`           // 默认返回数量
	ContentWeight         float64 `mapstructure:"content_weight"`          // 内容相似度权重
	TagsWeight            float64 `mapstructure:"tags_weight"`             // 标签相似度权重
	LevelWeight           float64 `mapstructure:"level_weight"`            // 难度匹配权重
	NeighborCount         int     `mapstructure:"neighbor_count"`          // 协同过滤近邻数量(k)
	UserSampleCap         int     `mapstructure:"user_sample_cap"`         // 协同过滤用户采样上限
	MinPredictedRating    float64 `mapstructure:"min_predicted_rating"`    // 预测评分的质量下限
	DefaultImplicitRating float64 `mapstructure:"default_implicit_rating"` // 已报名无进度记录时的默认隐式评分
	DefaultPreferredLevel string  `mapstructure:"default_preferred_level"` // 无法推导时的默认偏好难度
	RatingWeight          float64 `mapstructure:"rating_weight"`           // 热门度中评分的权重
	EnrollmentWeight      float64 `mapstructure:"enrollment_weight"`       // 热门度中报名数的权重
	HybridContentWeight   float64 `mapstructure:"hybrid_content_weight"`   // 混合推荐中内容方法的权重
	HybridCollabWeight    float64 `mapstructure:"hybrid_collab_weight"`    // 混合推荐中协同方法的权重
}

var (
	globalConfig *Config
	configLogger *logger.Logger
)

// Load 加载配置文件
func Load(configPath string) (*Config, error) {
	configLogger = logger.NewLogger("config")

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// 设置环境变量前缀
	viper.SetEnvPrefix("COURSEHUB")
	viper.AutomaticEnv()

	// 绑定特定的环境变量
	viper.BindEnv("database.path", "COURSEHUB_DATABASE_PATH")
	viper.BindEnv("server.port", "COURSEHUB_SERVER_PORT")

	configLogger.Info("Loading configuration", logger.Fields{
		"config_path": configPath,
	})

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		chErr := errors.ErrConfigInvalid("config_file", err.Error()).
			WithCause(err).
			WithContext(map[string]interface{}{
				"config_path": configPath,
			})
		configLogger.LogCoursehubError(chErr, "Failed to read configuration file")
		return nil, chErr
	}

	// 解析配置到结构体
	config := Default()
	if err := viper.Unmarshal(config); err != nil {
		chErr := errors.ErrConfigInvalid("config_unmarshal", err.Error()).
			WithCause(err)
		configLogger.LogCoursehubError(chErr, "Failed to unmarshal configuration")
		return nil, chErr
	}

	// 验证配置
	if err := validateConfig(config); err != nil {
		configLogger.LogCoursehubError(err.(*errors.CoursehubError), "Configuration validation failed")
		return nil, err
	}

	// 处理环境变量覆盖
	if dbPath := os.Getenv("COURSEHUB_DATABASE_PATH"); dbPath != "" {
		config.Database.Path = dbPath
		configLogger.Debug("Database path loaded from environment variable")
	}

	globalConfig = config
	configLogger.Info("Configuration loaded successfully", logger.Fields{
		"server_port":   config.Server.Port,
		"database_type": config.Database.Type,
		"default_top_n": config.Recommendation.DefaultTopN,
	})

	return config, nil
}

// Default 返回带默认评分策略的配置
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Mode:            "development",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Database: DatabaseConfig{
			Type:        "sqlite",
			Path:        "coursehub.db",
			AutoMigrate: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Recommendation: RecommendationConfig{
			DefaultTopN:           5,
			ContentWeight:         0.6,
			TagsWeight:            0.3,
			LevelWeight:           0.1,
			NeighborCount:         5,
			UserSampleCap:         100,
			MinPredictedRating:    3.0,
			DefaultImplicitRating: 3.0,
			DefaultPreferredLevel: "beginner",
			RatingWeight:          0.5,
			EnrollmentWeight:      0.5,
			HybridContentWeight:   0.5,
			HybridCollabWeight:    0.5,
		},
	}
}

// validateConfig 验证配置的有效性
func validateConfig(config *Config) error {
	// 验证服务器配置
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return errors.ErrConfigInvalid("server.port", "must be between 1 and 65535")
	}

	if config.Server.Mode != "development" && config.Server.Mode != "production" {
		return errors.ErrConfigInvalid("server.mode", "must be 'development' or 'production'")
	}

	// 验证数据库配置
	if config.Database.Type != "sqlite" {
		return errors.ErrConfigInvalid("database.type", "only 'sqlite' is supported")
	}

	if config.Database.Path == "" {
		return errors.ErrConfigMissing("database.path")
	}

	// 验证日志配置
	if config.Logging.Level == "" {
		return errors.ErrConfigMissing("logging.level")
	}

	validLogLevels := []string{"debug", "info", "warn", "error"}
	isValidLevel := false
	for _, level := range validLogLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return errors.ErrConfigInvalid("logging.level", "must be one of: debug, info, warn, error")
	}

	// 验证推荐配置
	rec := config.Recommendation
	if rec.DefaultTopN <= 0 {
		return errors.ErrConfigInvalid("recommendation.default_top_n", "must be greater than 0")
	}

	if rec.NeighborCount <= 0 {
		return errors.ErrConfigInvalid("recommendation.neighbor_count", "must be greater than 0")
	}

	if rec.UserSampleCap <= 0 {
		return errors.ErrConfigInvalid("recommendation.user_sample_cap", "must be greater than 0")
	}

	if rec.ContentWeight < 0 || rec.TagsWeight < 0 || rec.LevelWeight < 0 {
		return errors.ErrConfigInvalid("recommendation.weights", "weights must not be negative")
	}

	if rec.DefaultImplicitRating < 1 || rec.DefaultImplicitRating > 5 {
		return errors.ErrConfigInvalid("recommendation.default_implicit_rating", "must be between 1 and 5")
	}

	validLevels := []string{"beginner", "intermediate", "advanced"}
	isValidPreferred := false
	for _, level := range validLevels {
		if rec.DefaultPreferredLevel == level {
			isValidPreferred = true
			break
		}
	}
	if !isValidPreferred {
		return errors.ErrConfigInvalid("recommendation.default_preferred_level", "must be one of: beginner, intermediate, advanced")
	}

	return nil
}

// Get 获取全局配置
func Get() *Config {
	if globalConfig == nil {
		return Default()
	}
	return globalConfig
}

// GetRecommendationConfig 获取推荐引擎配置
func GetRecommendationConfig() RecommendationConfig {
	return Get().Recommendation
}

// GetDatabaseConfig 获取数据库配置
func GetDatabaseConfig() DatabaseConfig {
	return Get().Database
}

// IsProduction 检查是否为生产环境
func IsProduction() bool {
	return Get().Server.Mode == "production"
}

// GetServerAddress 获取服务器地址
func GetServerAddress() string {
	cfg := Get()
	return fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
}
