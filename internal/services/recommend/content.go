package recommend

import (
	"context"
	"sort"
	"strings"

	"coursehub/internal/config"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// ContentBasedRecommender 基于内容的推荐器
// 用TF-IDF画像向量+标签+难度偏好给未学课程打分
type ContentBasedRecommender struct {
	store      DataStore
	vectorizer *TextVectorizer
	cfg        config.RecommendationConfig
	logger     *logger.Logger
}

// ContentOptions 内容推荐参数
// 权重不要求和为1，由调用方负责
type ContentOptions struct {
	TopN          int     `json:"top_n"`
	ContentWeight float64 `json:"content_weight"`
	TagsWeight    float64 `json:"tags_weight"`
	LevelWeight   float64 `json:"level_weight"`
}

// ContentScore 内容推荐结果项
type ContentScore struct {
	Course            *models.Course `json:"course"`
	ContentSimilarity float64        `json:"content_similarity"`
	TagSimilarity     float64        `json:"tag_similarity"`
	LevelMatch        float64        `json:"level_match"`
	CombinedScore     float64        `json:"combined_score"`
}

// UserPreferences 从已学课程推导出的用户偏好
type UserPreferences struct {
	PreferredLevel models.CourseLevel `json:"preferred_level"`
	PreferredTags  []string           `json:"preferred_tags"`
}

// NewContentBasedRecommender 创建内容推荐器
func NewContentBasedRecommender(store DataStore, cfg config.RecommendationConfig) *ContentBasedRecommender {
	return &ContentBasedRecommender{
		store:      store,
		vectorizer: NewTextVectorizer(),
		cfg:        cfg,
		logger:     logger.NewLogger("content-recommender"),
	}
}

// applyDefaults 填充未设置的参数
func (r *ContentBasedRecommender) applyDefaults(opts ContentOptions) ContentOptions {
	if opts.TopN <= 0 {
		opts.TopN = r.cfg.DefaultTopN
	}
	if opts.ContentWeight <= 0 {
		opts.ContentWeight = r.cfg.ContentWeight
	}
	if opts.TagsWeight <= 0 {
		opts.TagsWeight = r.cfg.TagsWeight
	}
	if opts.LevelWeight <= 0 {
		opts.LevelWeight = r.cfg.LevelWeight
	}
	return opts
}

// Recommend 为用户生成基于内容的推荐
// 数据不足不是错误：返回空结果和说明信息
func (r *ContentBasedRecommender) Recommend(ctx context.Context, userID string, opts ContentOptions) ([]*ContentScore, *UserPreferences, string, error) {
	opts = r.applyDefaults(opts)

	user, err := r.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, nil, "", err
	}

	catalog, err := r.store.FindPublishedCourses(ctx, models.CourseFilter{})
	if err != nil {
		return nil, nil, "", err
	}

	// 拆分已学/未学课程
	watched, unwatched := splitWatched(user, catalog)
	if len(watched) == 0 {
		return []*ContentScore{}, nil, MsgNoEnrollments, nil
	}
	if len(unwatched) == 0 {
		return []*ContentScore{}, nil, MsgNoNewCourses, nil
	}

	// 已学∪未学合并构建一个TF-IDF批次，保证向量可比较
	docs := make([]string, 0, len(watched)+len(unwatched))
	for _, course := range watched {
		docs = append(docs, course.RecommendationText())
	}
	for _, course := range unwatched {
		docs = append(docs, course.RecommendationText())
	}
	model := r.vectorizer.BuildModel(docs)

	profile := buildProfileVector(model.Vectors[:len(watched)])
	preferences := r.derivePreferences(watched)

	r.logger.Debug("Content-based scoring", logger.Fields{
		"user_id":         userID,
		"watched_count":   len(watched),
		"unwatched_count": len(unwatched),
		"vocabulary_size": len(model.Vocabulary),
		"preferred_level": string(preferences.PreferredLevel),
	})

	// 给每门未学课程打分
	scores := make([]*ContentScore, 0, len(unwatched))
	for i, course := range unwatched {
		courseVector := model.Vectors[len(watched)+i]

		contentSim := CosineSimilarity(profile, courseVector)
		tagSim := JaccardTagSimilarity(preferences.PreferredTags, course.GetTags())
		levelMatch := LevelMatchScore(preferences.PreferredLevel, course.Level)

		combined := contentSim*opts.ContentWeight +
			tagSim*opts.TagsWeight +
			levelMatch*opts.LevelWeight

		scores = append(scores, &ContentScore{
			Course:            course,
			ContentSimilarity: round2(contentSim),
			TagSimilarity:     round2(tagSim),
			LevelMatch:        round2(levelMatch),
			CombinedScore:     round2(combined),
		})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].CombinedScore != scores[j].CombinedScore {
			return scores[i].CombinedScore > scores[j].CombinedScore
		}
		return scores[i].Course.ID < scores[j].Course.ID
	})

	if len(scores) > opts.TopN {
		scores = scores[:opts.TopN]
	}

	return scores, preferences, "", nil
}

// splitWatched 按用户报名记录把目录拆成已学/未学
// 已学课程永远不会回到推荐列表里
func splitWatched(user *models.User, catalog []*models.Course) (watched, unwatched []*models.Course) {
	for _, course := range catalog {
		if user.IsEnrolledIn(course.ID) {
			watched = append(watched, course)
		} else {
			unwatched = append(unwatched, course)
		}
	}
	return watched, unwatched
}

// buildProfileVector 构建用户画像向量
// 每个维度只在贡献非零值的向量上取均值，而不是标准的等长向量均值。
// 这是有意保留的简化语义，下游排序依赖这一行为。
func buildProfileVector(vectors [][]float64) []float64 {
	if len(vectors) == 0 {
		return nil
	}

	maxLen := 0
	for _, v := range vectors {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}

	profile := make([]float64, maxLen)
	counts := make([]int, maxLen)
	for _, v := range vectors {
		for i, value := range v {
			if value != 0 {
				profile[i] += value
				counts[i]++
			}
		}
	}

	for i := range profile {
		if counts[i] > 0 {
			profile[i] /= float64(counts[i])
		}
	}

	return profile
}

// derivePreferences 从已学课程推导用户偏好
func (r *ContentBasedRecommender) derivePreferences(watched []*models.Course) *UserPreferences {
	// 标签取并集，统一小写
	tagSet := make(map[string]struct{})
	for _, course := range watched {
		for _, tag := range course.GetTags() {
			clean := strings.ToLower(strings.TrimSpace(tag))
			if clean != "" {
				tagSet[clean] = struct{}{}
			}
		}
	}
	tags := make([]string, 0, len(tagSet))
	for tag := range tagSet {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return &UserPreferences{
		PreferredLevel: r.deriveLevel(watched),
		PreferredTags:  tags,
	}
}

// deriveLevel 偏好难度取众数；并列或为空时落回默认难度
func (r *ContentBasedRecommender) deriveLevel(watched []*models.Course) models.CourseLevel {
	fallback := models.CourseLevel(r.cfg.DefaultPreferredLevel)
	if fallback == "" {
		fallback = models.CourseLevelBeginner
	}

	counts := make(map[models.CourseLevel]int)
	for _, course := range watched {
		counts[course.Level]++
	}
	if len(counts) == 0 {
		return fallback
	}

	maxCount := 0
	for _, count := range counts {
		if count > maxCount {
			maxCount = count
		}
	}

	var mode models.CourseLevel
	modeCount := 0
	for level, count := range counts {
		if count == maxCount {
			mode = level
			modeCount++
		}
	}
	if modeCount > 1 {
		return fallback
	}

	return mode
}
