package recommend

import (
	"context"
	"sort"

	"coursehub/internal/config"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// 评分缺失时的中性默认值
const neutralRatingScore = 0.5

// PopularityRanker 热门度排序器
// 无用户依赖的无状态打分：归一化平均评分 + 归一化报名数
// 既做公开的"热门课程"查询，也做冷启动兜底
type PopularityRanker struct {
	store  DataStore
	cfg    config.RecommendationConfig
	logger *logger.Logger
}

// PopularOptions 热门度参数
type PopularOptions struct {
	TopN             int     `json:"top_n"`
	RatingWeight     float64 `json:"rating_weight"`
	EnrollmentWeight float64 `json:"enrollment_weight"`
}

// PopularityScore 热门度结果项
type PopularityScore struct {
	Course          *models.Course `json:"course"`
	PopularityScore float64        `json:"popularity_score"`
}

// NewPopularityRanker 创建热门度排序器
func NewPopularityRanker(store DataStore, cfg config.RecommendationConfig) *PopularityRanker {
	return &PopularityRanker{
		store:  store,
		cfg:    cfg,
		logger: logger.NewLogger("popularity-ranker"),
	}
}

// applyDefaults 填充未设置的参数
func (p *PopularityRanker) applyDefaults(opts PopularOptions) PopularOptions {
	if opts.TopN <= 0 {
		opts.TopN = p.cfg.DefaultTopN
	}
	if opts.RatingWeight <= 0 {
		opts.RatingWeight = p.cfg.RatingWeight
	}
	if opts.EnrollmentWeight <= 0 {
		opts.EnrollmentWeight = p.cfg.EnrollmentWeight
	}
	return opts
}

// Rank 对已发布且已审核的课程按热门度排序
func (p *PopularityRanker) Rank(ctx context.Context, opts PopularOptions) ([]*PopularityScore, string, error) {
	opts = p.applyDefaults(opts)

	catalog, err := p.store.FindPublishedCourses(ctx, models.CourseFilter{ApprovedOnly: true})
	if err != nil {
		return nil, "", err
	}
	if len(catalog) == 0 {
		return []*PopularityScore{}, MsgNoCatalog, nil
	}

	maxEnrollment := 0
	for _, course := range catalog {
		if course.EnrollmentCount > maxEnrollment {
			maxEnrollment = course.EnrollmentCount
		}
	}

	scores := make([]*PopularityScore, 0, len(catalog))
	for _, course := range catalog {
		ratingScore := normalizeRating(course.AverageRating)

		enrollmentScore := 0.0
		if maxEnrollment > 0 {
			enrollmentScore = float64(course.EnrollmentCount) / float64(maxEnrollment)
		}

		popularity := ratingScore*opts.RatingWeight + enrollmentScore*opts.EnrollmentWeight
		scores = append(scores, &PopularityScore{
			Course:          course,
			PopularityScore: round2(popularity),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].PopularityScore != scores[j].PopularityScore {
			return scores[i].PopularityScore > scores[j].PopularityScore
		}
		return scores[i].Course.ID < scores[j].Course.ID
	})

	if len(scores) > opts.TopN {
		scores = scores[:opts.TopN]
	}

	p.logger.Debug("Popularity ranking completed", logger.Fields{
		"catalog_size":   len(catalog),
		"result_count":   len(scores),
		"max_enrollment": maxEnrollment,
	})

	return scores, "", nil
}

// normalizeRating 平均评分归一化到[0,1]
// 数据来源不统一：大于5的按0-10制除以10，否则按0-5制除以5；缺失取中性值
func normalizeRating(rating float64) float64 {
	if rating <= 0 {
		return neutralRatingScore
	}
	if rating > 5 {
		return rating / 10
	}
	return rating / 5
}
