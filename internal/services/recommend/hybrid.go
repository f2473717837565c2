package recommend

import (
	"context"
	"sort"

	"coursehub/internal/config"
	"coursehub/internal/logger"
	"coursehub/internal/models"
)

// 混合推荐的来源标记
const (
	SourceContentBased  = "content-based"
	SourceCollaborative = "collaborative"

	MethodHybrid            = "hybrid"
	MethodContentOnly       = "content-based-only"
	MethodCollaborativeOnly = "collaborative-only"
)

// HybridCombiner 混合推荐组合器
// 独立调用内容推荐和协同过滤，按排名位置归一化后合并。
// 两种方法的原始分数不可比，只有相对位置可比。
type HybridCombiner struct {
	content *ContentBasedRecommender
	collab  *CollaborativeRecommender
	cfg     config.RecommendationConfig
	logger  *logger.Logger
}

// HybridOptions 混合推荐参数
type HybridOptions struct {
	TopN                int     `json:"top_n"`
	ContentWeight       float64 `json:"content_weight"`
	CollaborativeWeight float64 `json:"collaborative_weight"`
}

// HybridScore 混合推荐结果项
type HybridScore struct {
	Course      *models.Course `json:"course"`
	HybridScore float64        `json:"hybrid_score"`
	Sources     []string       `json:"sources"`
}

// NewHybridCombiner 创建混合推荐组合器
func NewHybridCombiner(content *ContentBasedRecommender, collab *CollaborativeRecommender, cfg config.RecommendationConfig) *HybridCombiner {
	return &HybridCombiner{
		content: content,
		collab:  collab,
		cfg:     cfg,
		logger:  logger.NewLogger("hybrid-combiner"),
	}
}

// applyDefaults 填充未设置的参数
func (h *HybridCombiner) applyDefaults(opts HybridOptions) HybridOptions {
	if opts.TopN <= 0 {
		opts.TopN = h.cfg.DefaultTopN
	}
	if opts.ContentWeight <= 0 {
		opts.ContentWeight = h.cfg.HybridContentWeight
	}
	if opts.CollaborativeWeight <= 0 {
		opts.CollaborativeWeight = h.cfg.HybridCollabWeight
	}
	return opts
}

// Recommend 生成混合推荐
// 返回值第二项是实际使用的方法标记：hybrid / content-based-only / collaborative-only
func (h *HybridCombiner) Recommend(ctx context.Context, userID string, opts HybridOptions) ([]*HybridScore, string, string, error) {
	opts = h.applyDefaults(opts)

	// 两种方法各取topN*2个候选，留出混合空间；内层调用使用固定默认子权重
	fetchN := opts.TopN * 2

	contentScores, _, contentMsg, err := h.content.Recommend(ctx, userID, ContentOptions{TopN: fetchN})
	if err != nil {
		return nil, "", "", err
	}

	collabScores, collabMsg, err := h.collab.Recommend(ctx, userID, CollaborativeOptions{TopN: fetchN})
	if err != nil {
		return nil, "", "", err
	}

	if len(contentScores) == 0 && len(collabScores) == 0 {
		message := combineMessages(contentMsg, collabMsg)
		return []*HybridScore{}, MethodHybrid, message, nil
	}

	merged := make(map[string]*HybridScore)
	order := make([]string, 0, len(contentScores)+len(collabScores))

	// 排名位置归一化：weight * (1 - 位置/列表长度)，落在(0, weight]
	for i, item := range contentScores {
		score := opts.ContentWeight * (1 - float64(i)/float64(len(contentScores)))
		merged[item.Course.ID] = &HybridScore{
			Course:      item.Course,
			HybridScore: score,
			Sources:     []string{SourceContentBased},
		}
		order = append(order, item.Course.ID)
	}

	for i, item := range collabScores {
		score := opts.CollaborativeWeight * (1 - float64(i)/float64(len(collabScores)))
		if existing, ok := merged[item.Course.ID]; ok {
			existing.HybridScore += score
			existing.Sources = append(existing.Sources, SourceCollaborative)
		} else {
			merged[item.Course.ID] = &HybridScore{
				Course:      item.Course,
				HybridScore: score,
				Sources:     []string{SourceCollaborative},
			}
			order = append(order, item.Course.ID)
		}
	}

	results := make([]*HybridScore, 0, len(merged))
	for _, courseID := range order {
		item := merged[courseID]
		item.HybridScore = round2(item.HybridScore)
		results = append(results, item)
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].HybridScore != results[j].HybridScore {
			return results[i].HybridScore > results[j].HybridScore
		}
		return results[i].Course.ID < results[j].Course.ID
	})

	if len(results) > opts.TopN {
		results = results[:opts.TopN]
	}

	// 单方法兜底标记
	method := MethodHybrid
	if len(collabScores) == 0 {
		method = MethodContentOnly
	} else if len(contentScores) == 0 {
		method = MethodCollaborativeOnly
	}

	h.logger.Debug("Hybrid recommendation completed", logger.Fields{
		"user_id":       userID,
		"content_count": len(contentScores),
		"collab_count":  len(collabScores),
		"result_count":  len(results),
		"method":        method,
	})

	return results, method, "", nil
}

// combineMessages 合并两个方法的说明信息
func combineMessages(contentMsg, collabMsg string) string {
	switch {
	case contentMsg != "" && collabMsg != "" && contentMsg != collabMsg:
		return contentMsg + "; " + collabMsg
	case contentMsg != "":
		return contentMsg
	case collabMsg != "":
		return collabMsg
	default:
		return MsgNotEnoughData
	}
}
