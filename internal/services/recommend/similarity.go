package recommend

import (
	"math"
	"strings"

	"coursehub/internal/models"
)

// 难度匹配分数
// 距离0 -> 完全匹配，距离1 -> 相邻难度，距离2 -> 相隔两档
// 数据缺失时取中性默认值，这是有意的设计选择
const (
	LevelMatchExact   = 1.0
	LevelMatchNear    = 0.6
	LevelMatchFar     = 0.3
	LevelMatchNeutral = 0.5
)

// levelRank 难度到序数的映射
var levelRank = map[models.CourseLevel]int{
	models.CourseLevelBeginner:     1,
	models.CourseLevelIntermediate: 2,
	models.CourseLevelAdvanced:     3,
}

// CosineSimilarity 计算余弦相似度
// 较短的向量按零填充对齐；任一向量模长为零时返回0，避免除零
// 对非负TF-IDF向量结果落在[0,1]
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	n := len(a)
	if len(b) > n {
		n = len(b)
	}

	var dotProduct, normA, normB float64
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		dotProduct += av * bv
		normA += av * av
		normB += bv * bv
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))

	// 浮点误差防护
	if similarity > 1.0 {
		similarity = 1.0
	} else if similarity < -1.0 {
		similarity = -1.0
	}

	return similarity
}

// JaccardTagSimilarity 计算标签集合的Jaccard相似度
// 大小写不敏感；任一集合为空时返回0
func JaccardTagSimilarity(tagsA, tagsB []string) float64 {
	setA := normalizeTagSet(tagsA)
	setB := normalizeTagSet(tagsB)

	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}

	return float64(intersection) / float64(union)
}

// normalizeTagSet 标签列表转小写集合
func normalizeTagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		clean := strings.ToLower(strings.TrimSpace(tag))
		if clean == "" {
			continue
		}
		set[clean] = struct{}{}
	}
	return set
}

// LevelMatchScore 计算难度匹配分数
func LevelMatchScore(preferred, actual models.CourseLevel) float64 {
	prefRank, prefOK := levelRank[preferred]
	actualRank, actualOK := levelRank[actual]
	if !prefOK || !actualOK {
		return LevelMatchNeutral
	}

	distance := prefRank - actualRank
	if distance < 0 {
		distance = -distance
	}

	switch distance {
	case 0:
		return LevelMatchExact
	case 1:
		return LevelMatchNear
	default:
		return LevelMatchFar
	}
}
