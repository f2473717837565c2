package recommend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/models"
)

func TestCollaborativeRecommender_Recommend(t *testing.T) {
	ctx := context.Background()

	t.Run("相似用户学完的课程被预测推荐", func(t *testing.T) {
		store := newMemStore()
		store.addCourse(publishedCourse("c1", "Go Basics", "learn go", nil, models.CourseLevelBeginner))
		store.addCourse(publishedCourse("c2", "Go Web", "web go", nil, models.CourseLevelBeginner))
		store.addCourse(publishedCourse("c3", "Go Advanced", "advanced go", nil, models.CourseLevelAdvanced))

		// u1与u2在c1、c2上完全一致，u1对c3评分5
		store.addUser(testUser("u1", "c1", "c2", "c3"))
		store.addUser(testUser("u2", "c1", "c2"))
		for _, courseID := range []string{"c1", "c2", "c3"} {
			store.addProgress("u1", courseID, 90)
		}
		store.addProgress("u2", "c1", 90)
		store.addProgress("u2", "c2", 90)

		r := NewCollaborativeRecommender(store, testRecommendationConfig())
		scores, message, err := r.Recommend(ctx, "u2", CollaborativeOptions{})

		require.NoError(t, err)
		assert.Empty(t, message)
		require.Len(t, scores, 1)
		assert.Equal(t, "c3", scores[0].Course.ID)
		assert.Equal(t, 5.0, scores[0].PredictedRating)
	})

	t.Run("预测评分低于下限被过滤", func(t *testing.T) {
		store := newMemStore()
		store.addCourse(publishedCourse("c1", "Go Basics", "learn go", nil, models.CourseLevelBeginner))
		store.addCourse(publishedCourse("c2", "Go Web", "web go", nil, models.CourseLevelBeginner))

		// u1对c2的完成度很低，预测评分1 < 3.0
		store.addUser(testUser("u1", "c1", "c2"))
		store.addUser(testUser("u2", "c1"))
		store.addProgress("u1", "c1", 90)
		store.addProgress("u1", "c2", 10)
		store.addProgress("u2", "c1", 90)

		r := NewCollaborativeRecommender(store, testRecommendationConfig())
		scores, message, err := r.Recommend(ctx, "u2", CollaborativeOptions{})

		require.NoError(t, err)
		assert.Empty(t, message)
		assert.Empty(t, scores)
	})

	t.Run("没有其他用户返回数据不足信息", func(t *testing.T) {
		store := newMemStore()
		store.addCourse(publishedCourse("c1", "Go Basics", "learn go", nil, models.CourseLevelBeginner))
		store.addUser(testUser("u1"))

		r := NewCollaborativeRecommender(store, testRecommendationConfig())
		scores, message, err := r.Recommend(ctx, "u1", CollaborativeOptions{})

		require.NoError(t, err)
		assert.Empty(t, scores)
		assert.Equal(t, MsgNotEnoughData, message)
	})

	t.Run("没有新课程返回说明信息", func(t *testing.T) {
		store := newMemStore()
		store.addCourse(publishedCourse("c1", "Go Basics", "learn go", nil, models.CourseLevelBeginner))
		store.addUser(testUser("u1", "c1"))
		store.addUser(testUser("u2", "c1"))

		r := NewCollaborativeRecommender(store, testRecommendationConfig())
		scores, message, err := r.Recommend(ctx, "u1", CollaborativeOptions{})

		require.NoError(t, err)
		assert.Empty(t, scores)
		assert.Equal(t, MsgNoNewCourses, message)
	})

	t.Run("用户不存在返回错误", func(t *testing.T) {
		store := newMemStore()
		r := NewCollaborativeRecommender(store, testRecommendationConfig())

		_, _, err := r.Recommend(ctx, "missing", CollaborativeOptions{})
		assert.Error(t, err)
	})

	t.Run("推荐结果不包含已报名课程", func(t *testing.T) {
		store := newMemStore()
		store.addCourse(publishedCourse("c1", "Go Basics", "learn go", nil, models.CourseLevelBeginner))
		store.addCourse(publishedCourse("c2", "Go Web", "web go", nil, models.CourseLevelBeginner))
		store.addUser(testUser("u1", "c1"))
		store.addUser(testUser("u2", "c1", "c2"))
		store.addProgress("u2", "c2", 90)

		r := NewCollaborativeRecommender(store, testRecommendationConfig())
		scores, _, err := r.Recommend(ctx, "u1", CollaborativeOptions{})

		require.NoError(t, err)
		for _, score := range scores {
			assert.NotEqual(t, "c1", score.Course.ID)
		}
	})
}

func TestCollaborativeRecommender_predictRating(t *testing.T) {
	r := NewCollaborativeRecommender(newMemStore(), testRecommendationConfig())

	matrix := &RatingMatrix{
		UserIDs:   []string{"u1", "u2", "u3"},
		CourseIDs: []string{"c1", "c2"},
		Ratings: [][]float64{
			{5, 0},
			{5, 4},
			{0, 2},
		},
		userIndex:   map[string]int{"u1": 0, "u2": 1, "u3": 2},
		courseIndex: map[string]int{"c1": 0, "c2": 1},
	}
	similarity := BuildUserSimilarityMatrix(matrix)

	t.Run("加权平均预测", func(t *testing.T) {
		// u2相似度高且评4分，u3相似度0不贡献权重之外的值
		prediction := r.predictRating(matrix, similarity, 0, "c2", 5)
		assert.InDelta(t, 4.0, prediction, 0.2)
	})

	t.Run("自己已有评分直接返回", func(t *testing.T) {
		prediction := r.predictRating(matrix, similarity, 0, "c1", 5)
		assert.Equal(t, 5.0, prediction)
	})

	t.Run("未知课程返回0", func(t *testing.T) {
		assert.Equal(t, 0.0, r.predictRating(matrix, similarity, 0, "missing", 5))
	})

	t.Run("没有评分过该课程的用户返回0", func(t *testing.T) {
		empty := &RatingMatrix{
			UserIDs:     []string{"u1", "u2"},
			CourseIDs:   []string{"c1"},
			Ratings:     [][]float64{{0}, {0}},
			userIndex:   map[string]int{"u1": 0, "u2": 1},
			courseIndex: map[string]int{"c1": 0},
		}
		sim := BuildUserSimilarityMatrix(empty)
		assert.Equal(t, 0.0, r.predictRating(empty, sim, 0, "c1", 5))
	})
}
