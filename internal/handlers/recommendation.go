package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"coursehub/internal/errors"
	"coursehub/internal/logger"
	"coursehub/internal/services/recommend"
)

// RecommendationHandler 推荐API处理器
type RecommendationHandler struct {
	engine EngineInterface
	logger *logger.Logger
}

// EngineInterface 推荐引擎接口
type EngineInterface interface {
	RecommendContentBased(ctx context.Context, userID string, opts recommend.ContentOptions) (*recommend.Response, error)
	RecommendCollaborative(ctx context.Context, userID string, opts recommend.CollaborativeOptions) (*recommend.Response, error)
	RecommendHybrid(ctx context.Context, userID string, opts recommend.HybridOptions) (*recommend.Response, error)
	RecommendPopular(ctx context.Context, opts recommend.PopularOptions) (*recommend.Response, error)
}

// ErrorResponse 错误响应结构
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// NewRecommendationHandler 创建推荐处理器
func NewRecommendationHandler(engine EngineInterface) *RecommendationHandler {
	return &RecommendationHandler{
		engine: engine,
		logger: logger.NewLogger("recommendation-handler"),
	}
}

// RegisterRoutes 注册推荐路由
func (h *RecommendationHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/recommendations/content", h.ContentBased)
	group.POST("/recommendations/collaborative", h.Collaborative)
	group.POST("/recommendations/hybrid", h.Hybrid)
	group.POST("/recommendations/popular", h.Popular)
}

// ContentRequest 内容推荐请求结构
type ContentRequest struct {
	UserID        string  `json:"user_id" binding:"required"`
	TopN          int     `json:"top_n,omitempty"`
	ContentWeight float64 `json:"content_weight,omitempty"`
	TagsWeight    float64 `json:"tags_weight,omitempty"`
	LevelWeight   float64 `json:"level_weight,omitempty"`
}

// ContentBased 基于内容的推荐
// @Summary 基于内容的课程推荐
// @Tags recommendations
// @Accept json
// @Produce json
// @Router /api/v1/recommendations/content [post]
func (h *RecommendationHandler) ContentBased(c *gin.Context) {
	startTime := time.Now()

	var req ContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	response, err := h.engine.RecommendContentBased(c.Request.Context(), req.UserID, recommend.ContentOptions{
		TopN:          req.TopN,
		ContentWeight: req.ContentWeight,
		TagsWeight:    req.TagsWeight,
		LevelWeight:   req.LevelWeight,
	})
	if err != nil {
		h.handleEngineError(c, err, "content", req.UserID)
		return
	}

	h.logCompleted("content", req.UserID, response.Count, startTime)
	c.JSON(http.StatusOK, response)
}

// CollaborativeRequest 协同过滤请求结构
type CollaborativeRequest struct {
	UserID string `json:"user_id" binding:"required"`
	TopN   int    `json:"top_n,omitempty"`
	K      int    `json:"k,omitempty"`
}

// Collaborative 协同过滤推荐
// @Summary 协同过滤课程推荐
// @Tags recommendations
// @Accept json
// @Produce json
// @Router /api/v1/recommendations/collaborative [post]
func (h *RecommendationHandler) Collaborative(c *gin.Context) {
	startTime := time.Now()

	var req CollaborativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	response, err := h.engine.RecommendCollaborative(c.Request.Context(), req.UserID, recommend.CollaborativeOptions{
		TopN: req.TopN,
		K:    req.K,
	})
	if err != nil {
		h.handleEngineError(c, err, "collaborative", req.UserID)
		return
	}

	h.logCompleted("collaborative", req.UserID, response.Count, startTime)
	c.JSON(http.StatusOK, response)
}

// HybridRequest 混合推荐请求结构
type HybridRequest struct {
	UserID              string  `json:"user_id" binding:"required"`
	TopN                int     `json:"top_n,omitempty"`
	ContentWeight       float64 `json:"content_weight,omitempty"`
	CollaborativeWeight float64 `json:"collaborative_weight,omitempty"`
}

// Hybrid 混合推荐
// @Summary 混合课程推荐
// @Tags recommendations
// @Accept json
// @Produce json
// @Router /api/v1/recommendations/hybrid [post]
func (h *RecommendationHandler) Hybrid(c *gin.Context) {
	startTime := time.Now()

	var req HybridRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err)
		return
	}

	response, err := h.engine.RecommendHybrid(c.Request.Context(), req.UserID, recommend.HybridOptions{
		TopN:                req.TopN,
		ContentWeight:       req.ContentWeight,
		CollaborativeWeight: req.CollaborativeWeight,
	})
	if err != nil {
		h.handleEngineError(c, err, "hybrid", req.UserID)
		return
	}

	h.logCompleted("hybrid", req.UserID, response.Count, startTime)
	c.JSON(http.StatusOK, response)
}

// PopularRequest 热门推荐请求结构
type PopularRequest struct {
	TopN             int     `json:"top_n,omitempty"`
	RatingWeight     float64 `json:"rating_weight,omitempty"`
	EnrollmentWeight float64 `json:"enrollment_weight,omitempty"`
}

// Popular 热门课程推荐
// @Summary 热门课程排行
// @Tags recommendations
// @Accept json
// @Produce json
// @Router /api/v1/recommendations/popular [post]
func (h *RecommendationHandler) Popular(c *gin.Context) {
	startTime := time.Now()

	// 请求体可以为空，全部参数走默认值
	var req PopularRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, err)
			return
		}
	}

	response, err := h.engine.RecommendPopular(c.Request.Context(), recommend.PopularOptions{
		TopN:             req.TopN,
		RatingWeight:     req.RatingWeight,
		EnrollmentWeight: req.EnrollmentWeight,
	})
	if err != nil {
		h.handleEngineError(c, err, "popular", "")
		return
	}

	h.logCompleted("popular", "", response.Count, startTime)
	c.JSON(http.StatusOK, response)
}

// badRequest 请求解析失败
func (h *RecommendationHandler) badRequest(c *gin.Context, err error) {
	h.logger.Error("Invalid recommendation request", logger.Fields{
		"error": err.Error(),
	})
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Success: false,
		Message: "Invalid request parameters: " + err.Error(),
	})
}

// handleEngineError 按错误类型映射HTTP状态码
func (h *RecommendationHandler) handleEngineError(c *gin.Context, err error, strategy, userID string) {
	h.logger.Error("Recommendation failed", logger.Fields{
		"error":    err.Error(),
		"strategy": strategy,
		"user_id":  userID,
	})

	status := http.StatusInternalServerError
	if chErr, ok := err.(*errors.CoursehubError); ok {
		switch chErr.Type {
		case errors.ErrorTypeValidation:
			status = http.StatusBadRequest
		case errors.ErrorTypeBusiness:
			status = http.StatusNotFound
		}
	}

	c.JSON(status, ErrorResponse{
		Success: false,
		Message: err.Error(),
	})
}

// logCompleted 记录推荐完成日志
func (h *RecommendationHandler) logCompleted(strategy, userID string, count int, startTime time.Time) {
	h.logger.Info("Recommendation completed", logger.Fields{
		"strategy":     strategy,
		"user_id":      userID,
		"results":      count,
		"process_time": time.Since(startTime),
	})
}
