package recommend

import (
	"context"

	"coursehub/internal/config"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// 完成度到隐式评分的固定阈值
// 0表示"无信号"，不是零分评价
const (
	completionForRating5 = 80.0
	completionForRating4 = 60.0
	completionForRating3 = 40.0
	completionForRating2 = 20.0
)

// RatingMatrix 用户×课程隐式评分矩阵
// 行列索引在同一次请求内保持一致；请求结束即丢弃
type RatingMatrix struct {
	UserIDs   []string    `json:"user_ids"`
	CourseIDs []string    `json:"course_ids"`
	Ratings   [][]float64 `json:"ratings"`

	userIndex   map[string]int
	courseIndex map[string]int
}

// RowOf 返回某用户的评分行
func (m *RatingMatrix) RowOf(userID string) ([]float64, bool) {
	idx, ok := m.userIndex[userID]
	if !ok {
		return nil, false
	}
	return m.Ratings[idx], true
}

// UserRow 返回某用户的行下标
func (m *RatingMatrix) UserRow(userID string) (int, bool) {
	idx, ok := m.userIndex[userID]
	return idx, ok
}

// CourseColumn 返回某课程的列下标
func (m *RatingMatrix) CourseColumn(courseID string) (int, bool) {
	idx, ok := m.courseIndex[courseID]
	return idx, ok
}

// RatingMatrixBuilder 隐式评分矩阵构建器
// 把报名+完成度数据转换为{0..5}的隐式评分
type RatingMatrixBuilder struct {
	store  DataStore
	cfg    config.RecommendationConfig
	logger *logger.Logger
}

// NewRatingMatrixBuilder 创建评分矩阵构建器
func NewRatingMatrixBuilder(store DataStore, cfg config.RecommendationConfig) *RatingMatrixBuilder {
	return &RatingMatrixBuilder{
		store:  store,
		cfg:    cfg,
		logger: logger.NewLogger("rating-matrix"),
	}
}

// implicitRatingFromCompletion 完成度映射为隐式评分
func implicitRatingFromCompletion(completion float64) float64 {
	switch {
	case completion > completionForRating5:
		return 5
	case completion > completionForRating4:
		return 4
	case completion > completionForRating3:
		return 3
	case completion > completionForRating2:
		return 2
	default:
		return 1
	}
}

// Build 构建用户群体在课程目录上的隐式评分矩阵
// 已报名但无进度记录的单元取默认评分；未报名的单元保持0
func (b *RatingMatrixBuilder) Build(ctx context.Context, users []*models.User, courses []*models.Course) (*RatingMatrix, error) {
	matrix := &RatingMatrix{
		UserIDs:     make([]string, len(users)),
		CourseIDs:   make([]string, len(courses)),
		Ratings:     make([][]float64, len(users)),
		userIndex:   make(map[string]int, len(users)),
		courseIndex: make(map[string]int, len(courses)),
	}

	for i, user := range users {
		matrix.UserIDs[i] = user.ID
		matrix.userIndex[user.ID] = i
		matrix.Ratings[i] = make([]float64, len(courses))
	}
	for j, course := range courses {
		matrix.CourseIDs[j] = course.ID
		matrix.courseIndex[course.ID] = j
	}

	for i, user := range users {
		for _, courseID := range user.GetEnrolledCourses() {
			j, ok := matrix.courseIndex[courseID]
			if !ok {
				continue // 已下架或未发布的课程不参与
			}

			progress, err := b.store.FindProgress(ctx, user.ID, courseID)
			if err != nil {
				return nil, err
			}

			if progress == nil {
				matrix.Ratings[i][j] = b.cfg.DefaultImplicitRating
			} else {
				matrix.Ratings[i][j] = implicitRatingFromCompletion(progress.CompletionPercentage)
			}
		}
	}

	b.logger.Debug("Rating matrix built", logger.Fields{
		"user_count":   len(users),
		"course_count": len(courses),
	})

	return matrix, nil
}

// BuildUserSimilarityMatrix 计算用户两两余弦相似度矩阵
// 对角线恒为1；矩阵对称，只计算上三角后镜像
func BuildUserSimilarityMatrix(matrix *RatingMatrix) [][]float64 {
	n := len(matrix.UserIDs)
	similarity := make([][]float64, n)
	for i := range similarity {
		similarity[i] = make([]float64, n)
		similarity[i][i] = 1.0
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := CosineSimilarity(matrix.Ratings[i], matrix.Ratings[j])
			similarity[i][j] = sim
			similarity[j][i] = sim
		}
	}

	return similarity
}
