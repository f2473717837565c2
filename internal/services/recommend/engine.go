package recommend

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"

	"coursehub/internal/config"
	"coursehub/internal/errors"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// Strategy 推荐策略枚举
type Strategy string

const (
	StrategyContent       Strategy = "content"
	StrategyCollaborative Strategy = "collaborative"
	StrategyHybrid        Strategy = "hybrid"
	StrategyPopular       Strategy = "popular"
)

// IsValidStrategy 验证推荐策略是否有效
func IsValidStrategy(s Strategy) bool {
	switch s {
	case StrategyContent, StrategyCollaborative, StrategyHybrid, StrategyPopular:
		return true
	}
	return false
}

// 数据不足时的说明信息（不是错误）
const (
	MsgNoEnrollments = "user has no enrolled courses"
	MsgNoNewCourses  = "no new courses"
	MsgNotEnoughData = "not enough data"
	MsgNoCatalog     = "no published courses"
)

// DataStore 推荐引擎消费的只读存储接口
// 全部操作接受context，由调用方注入实现
type DataStore interface {
	FindPublishedCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	FindUsersWithEnrollments(ctx context.Context, excludeID string, cap int) ([]*models.User, error)
	FindProgress(ctx context.Context, userID, courseID string) (*models.Progress, error)
}

// Response 统一推荐响应结构
type Response struct {
	Success     bool             `json:"success"`
	Count       int              `json:"count"`
	Data        interface{}      `json:"data"`
	Message     string           `json:"message,omitempty"`
	Strategy    string           `json:"strategy,omitempty"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// Engine 推荐引擎门面
// 请求之间不保留任何状态；目录和评分快照每次重新拉取
type Engine struct {
	store      DataStore
	content    *ContentBasedRecommender
	collab     *CollaborativeRecommender
	popularity *PopularityRanker
	hybrid     *HybridCombiner
	logger     *logger.Logger
}

// NewEngine 创建推荐引擎
func NewEngine(store DataStore, cfg config.RecommendationConfig) *Engine {
	content := NewContentBasedRecommender(store, cfg)
	collab := NewCollaborativeRecommender(store, cfg)

	return &Engine{
		store:      store,
		content:    content,
		collab:     collab,
		popularity: NewPopularityRanker(store, cfg),
		hybrid:     NewHybridCombiner(content, collab, cfg),
		logger:     logger.NewLogger("recommend-engine"),
	}
}

// RecommendContentBased 基于内容的推荐
func (e *Engine) RecommendContentBased(ctx context.Context, userID string, opts ContentOptions) (*Response, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validatePositive(map[string]float64{
		"top_n":          float64(opts.TopN),
		"content_weight": opts.ContentWeight,
		"tags_weight":    opts.TagsWeight,
		"level_weight":   opts.LevelWeight,
	}); err != nil {
		return nil, err
	}

	scores, preferences, message, err := e.content.Recommend(ctx, userID, opts)
	if err != nil {
		return nil, wrapEngineError(string(StrategyContent), err)
	}

	return &Response{
		Success:     true,
		Count:       len(scores),
		Data:        scores,
		Message:     message,
		Strategy:    string(StrategyContent),
		Preferences: preferences,
	}, nil
}

// RecommendCollaborative 协同过滤推荐
func (e *Engine) RecommendCollaborative(ctx context.Context, userID string, opts CollaborativeOptions) (*Response, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validatePositive(map[string]float64{
		"top_n": float64(opts.TopN),
		"k":     float64(opts.K),
	}); err != nil {
		return nil, err
	}

	scores, message, err := e.collab.Recommend(ctx, userID, opts)
	if err != nil {
		return nil, wrapEngineError(string(StrategyCollaborative), err)
	}

	return &Response{
		Success:  true,
		Count:    len(scores),
		Data:     scores,
		Message:  message,
		Strategy: string(StrategyCollaborative),
	}, nil
}

// RecommendHybrid 混合推荐
func (e *Engine) RecommendHybrid(ctx context.Context, userID string, opts HybridOptions) (*Response, error) {
	if err := validateUserID(userID); err != nil {
		return nil, err
	}
	if err := validatePositive(map[string]float64{
		"top_n":                float64(opts.TopN),
		"content_weight":       opts.ContentWeight,
		"collaborative_weight": opts.CollaborativeWeight,
	}); err != nil {
		return nil, err
	}

	scores, method, message, err := e.hybrid.Recommend(ctx, userID, opts)
	if err != nil {
		return nil, wrapEngineError(string(StrategyHybrid), err)
	}

	return &Response{
		Success:  true,
		Count:    len(scores),
		Data:     scores,
		Message:  message,
		Strategy: method,
	}, nil
}

// RecommendPopular 热门课程推荐（无用户依赖，也是冷启动兜底）
func (e *Engine) RecommendPopular(ctx context.Context, opts PopularOptions) (*Response, error) {
	if err := validatePositive(map[string]float64{
		"top_n":             float64(opts.TopN),
		"rating_weight":     opts.RatingWeight,
		"enrollment_weight": opts.EnrollmentWeight,
	}); err != nil {
		return nil, err
	}

	scores, message, err := e.popularity.Rank(ctx, opts)
	if err != nil {
		return nil, wrapEngineError(string(StrategyPopular), err)
	}

	return &Response{
		Success:  true,
		Count:    len(scores),
		Data:     scores,
		Message:  message,
		Strategy: string(StrategyPopular),
	}, nil
}

// validateUserID 验证用户ID参数
func validateUserID(userID string) error {
	if userID == "" {
		return errInvalidInput("user_id", "cannot be empty")
	}
	return nil
}

// validatePositive 数值参数校验：0表示"使用默认值"，负数和NaN直接拒绝
// 校验失败时不做任何计算
func validatePositive(params map[string]float64) error {
	for name, value := range params {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return errInvalidInput(name, "must be a finite number")
		}
		if value < 0 {
			return errInvalidInput(name, "must be positive")
		}
	}
	return nil
}

// errInvalidInput 请求参数错误
// 与模型字段验证(ErrValidationFailed)区分错误码，便于客户端定位
func errInvalidInput(param, reason string) *errors.CoursehubError {
	return errors.NewCoursehubError(errors.ErrorTypeValidation, errors.ErrCodeInvalidInput, "Invalid request parameter").
		WithDetails(fmt.Sprintf("Parameter '%s': %s", param, reason))
}

// wrapEngineError 把底层未分类的错误包装为推荐引擎错误
// 已经是CoursehubError的原样透传，保留原有的类型到状态码映射
func wrapEngineError(strategy string, err error) error {
	var chErr *errors.CoursehubError
	if stderrors.As(err, &chErr) {
		return err
	}
	return errors.ErrRecommendFailed(strategy+" recommendation failed", err)
}

// round2 四舍五入到2位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// round1 四舍五入到1位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
