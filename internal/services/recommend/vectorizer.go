package recommend

import (
	"math"
	"strings"
	"unicode"

	"coursehub/internal/logger"
)

// TextVectorizer TF-IDF文本向量化器
// 每个推荐请求基于当前课程批次重建模型，不跨请求缓存
type TextVectorizer struct {
	logger *logger.Logger
}

// TermDocumentModel 一个批次的TF-IDF模型
// 词表在整个批次上共享，保证所有向量长度一致、可比较
type TermDocumentModel struct {
	Vocabulary map[string]int `json:"vocabulary"` // 词 -> 向量维度下标
	Vectors    [][]float64    `json:"vectors"`    // 每个文档一个稠密向量
}

// NewTextVectorizer 创建文本向量化器
func NewTextVectorizer() *TextVectorizer {
	return &TextVectorizer{
		logger: logger.NewLogger("text-vectorizer"),
	}
}

// NormalizeText 规范化文本：小写、去标点、折叠空白
func NormalizeText(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// tokenize 切分规范化后的文本
func tokenize(text string) []string {
	normalized := NormalizeText(text)
	if normalized == "" {
		return nil
	}
	return strings.Split(normalized, " ")
}

// BuildModel 对一批文档构建TF-IDF模型
// IDF = ln(N/df)，不做平滑：单文档语料的所有向量退化为零向量，
// 调用方须将全零向量视为"无相似度"
func (tv *TextVectorizer) BuildModel(docs []string) *TermDocumentModel {
	model := &TermDocumentModel{
		Vocabulary: make(map[string]int),
		Vectors:    make([][]float64, len(docs)),
	}

	if len(docs) == 0 {
		return model
	}

	// 第一遍：构建词表和文档频率
	docTokens := make([][]string, len(docs))
	documentFrequency := make(map[string]int)
	for i, doc := range docs {
		tokens := tokenize(doc)
		docTokens[i] = tokens

		seen := make(map[string]struct{}, len(tokens))
		for _, term := range tokens {
			if _, ok := model.Vocabulary[term]; !ok {
				model.Vocabulary[term] = len(model.Vocabulary)
			}
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				documentFrequency[term]++
			}
		}
	}

	vocabSize := len(model.Vocabulary)
	totalDocs := float64(len(docs))

	// 第二遍：计算每个文档的TF-IDF向量
	for i, tokens := range docTokens {
		vector := make([]float64, vocabSize)
		if len(tokens) == 0 {
			model.Vectors[i] = vector
			continue
		}

		termCounts := make(map[string]int, len(tokens))
		for _, term := range tokens {
			termCounts[term]++
		}

		totalTerms := float64(len(tokens))
		for term, count := range termCounts {
			tf := float64(count) / totalTerms
			idf := math.Log(totalDocs / float64(documentFrequency[term]))
			vector[model.Vocabulary[term]] = tf * idf
		}

		model.Vectors[i] = vector
	}

	tv.logger.Debug("TF-IDF model built", logger.Fields{
		"document_count":  len(docs),
		"vocabulary_size": vocabSize,
	})

	return model
}

// IsZeroVector 检查向量是否全零
func IsZeroVector(vector []float64) bool {
	for _, v := range vector {
		if v != 0 {
			return false
		}
	}
	return true
}
