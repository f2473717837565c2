package recommend

import (
	"context"
	"math"
	"sort"

	"coursehub/internal/config"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// CollaborativeRecommender 协同过滤推荐器
// 用户-用户相似度 + k近邻加权预测隐式评分
type CollaborativeRecommender struct {
	store   DataStore
	builder *RatingMatrixBuilder
	cfg     config.RecommendationConfig
	logger  *logger.Logger
}

// CollaborativeOptions 协同过滤参数
type CollaborativeOptions struct {
	TopN int `json:"top_n"`
	K    int `json:"k"` // 近邻数量
}

// CollaborativeScore 协同过滤结果项
type CollaborativeScore struct {
	Course          *models.Course `json:"course"`
	PredictedRating float64        `json:"predicted_rating"`
}

// neighbor 候选近邻
type neighbor struct {
	similarity float64
	rating     float64
}

// NewCollaborativeRecommender 创建协同过滤推荐器
func NewCollaborativeRecommender(store DataStore, cfg config.RecommendationConfig) *CollaborativeRecommender {
	return &CollaborativeRecommender{
		store:   store,
		builder: NewRatingMatrixBuilder(store, cfg),
		cfg:     cfg,
		logger:  logger.NewLogger("collaborative-recommender"),
	}
}

// applyDefaults 填充未设置的参数
func (r *CollaborativeRecommender) applyDefaults(opts CollaborativeOptions) CollaborativeOptions {
	if opts.TopN <= 0 {
		opts.TopN = r.cfg.DefaultTopN
	}
	if opts.K <= 0 {
		opts.K = r.cfg.NeighborCount
	}
	return opts
}

// Recommend 为用户生成协同过滤推荐
// 无可比较用户或无新课程时返回空结果和说明信息，不算错误
func (r *CollaborativeRecommender) Recommend(ctx context.Context, userID string, opts CollaborativeOptions) ([]*CollaborativeScore, string, error) {
	opts = r.applyDefaults(opts)

	user, err := r.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	catalog, err := r.store.FindPublishedCourses(ctx, models.CourseFilter{})
	if err != nil {
		return nil, "", err
	}

	_, unwatched := splitWatched(user, catalog)
	if len(unwatched) == 0 {
		return []*CollaborativeScore{}, MsgNoNewCourses, nil
	}

	others, err := r.store.FindUsersWithEnrollments(ctx, userID, r.cfg.UserSampleCap)
	if err != nil {
		return nil, "", err
	}
	if len(others) == 0 {
		return []*CollaborativeScore{}, MsgNotEnoughData, nil
	}

	// 当前用户固定在第0行
	population := make([]*models.User, 0, len(others)+1)
	population = append(population, user)
	population = append(population, others...)

	matrix, err := r.builder.Build(ctx, population, catalog)
	if err != nil {
		return nil, "", err
	}
	similarity := BuildUserSimilarityMatrix(matrix)

	r.logger.Debug("Collaborative scoring", logger.Fields{
		"user_id":         userID,
		"population_size": len(population),
		"unwatched_count": len(unwatched),
		"neighbor_count":  opts.K,
	})

	scores := make([]*CollaborativeScore, 0, len(unwatched))
	for _, course := range unwatched {
		prediction := r.predictRating(matrix, similarity, 0, course.ID, opts.K)
		if prediction < r.cfg.MinPredictedRating {
			continue // 质量下限，预测为0表示"无法预测"
		}
		scores = append(scores, &CollaborativeScore{
			Course:          course,
			PredictedRating: round1(prediction),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].PredictedRating != scores[j].PredictedRating {
			return scores[i].PredictedRating > scores[j].PredictedRating
		}
		return scores[i].Course.ID < scores[j].Course.ID
	})

	if len(scores) > opts.TopN {
		scores = scores[:opts.TopN]
	}

	return scores, "", nil
}

// predictRating 用k近邻加权平均预测某用户对某课程的评分
// 自己的单元已有评分时直接返回；没有近邻或权重和为0时返回0
func (r *CollaborativeRecommender) predictRating(matrix *RatingMatrix, similarity [][]float64, userRow int, courseID string, k int) float64 {
	col, ok := matrix.CourseColumn(courseID)
	if !ok {
		return 0
	}

	if own := matrix.Ratings[userRow][col]; own != 0 {
		return own
	}

	// 收集该课程上有评分的其他用户
	candidates := make([]neighbor, 0)
	for row := range matrix.Ratings {
		if row == userRow {
			continue
		}
		if rating := matrix.Ratings[row][col]; rating != 0 {
			candidates = append(candidates, neighbor{
				similarity: similarity[userRow][row],
				rating:     rating,
			})
		}
	}
	if len(candidates) == 0 {
		return 0
	}

	// 按相似度降序取前k个近邻
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].similarity > candidates[j].similarity
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	var weightedSum, weightTotal float64
	for _, n := range candidates {
		weightedSum += n.similarity * n.rating
		weightTotal += math.Abs(n.similarity)
	}
	if weightTotal == 0 {
		return 0
	}

	return weightedSum / weightTotal
}
