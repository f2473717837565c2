package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewCourse(t *testing.T) {
	t.Run("创建有效课程", func(t *testing.T) {
		course := NewCourse("Go Basics", "learn go from scratch", CourseLevelBeginner)

		require.NotNil(t, course)
		assert.NotEmpty(t, course.ID)
		assert.Equal(t, "Go Basics", course.Title)
		assert.Equal(t, CourseLevelBeginner, course.Level)
		assert.Equal(t, CourseStatusDraft, course.Status)
		assert.Empty(t, course.GetTags())
	})

	t.Run("空标题返回nil", func(t *testing.T) {
		assert.Nil(t, NewCourse("", "description", CourseLevelBeginner))
		assert.Nil(t, NewCourse("   ", "description", CourseLevelBeginner))
	})

	t.Run("非法难度返回nil", func(t *testing.T) {
		assert.Nil(t, NewCourse("Go Basics", "description", CourseLevel("expert")))
	})
}

func TestCourse_Validate(t *testing.T) {
	valid := func() *Course {
		return NewCourse("Go Basics", "learn go", CourseLevelBeginner)
	}

	t.Run("有效课程通过验证", func(t *testing.T) {
		assert.NoError(t, valid().Validate())
	})

	t.Run("空ID验证失败", func(t *testing.T) {
		course := valid()
		course.ID = ""
		assert.Error(t, course.Validate())
	})

	t.Run("负价格验证失败", func(t *testing.T) {
		course := valid()
		course.Price = -1
		assert.Error(t, course.Validate())
	})

	t.Run("评分超出0到10验证失败", func(t *testing.T) {
		course := valid()
		course.AverageRating = 11
		assert.Error(t, course.Validate())

		course.AverageRating = -0.5
		assert.Error(t, course.Validate())
	})

	t.Run("负报名数验证失败", func(t *testing.T) {
		course := valid()
		course.EnrollmentCount = -1
		assert.Error(t, course.Validate())
	})
}

func TestCourse_SetTags(t *testing.T) {
	course := NewCourse("Go Basics", "learn go", CourseLevelBeginner)

	t.Run("去除空白标签", func(t *testing.T) {
		require.NoError(t, course.SetTags([]string{" go ", "", "  ", "web"}))
		assert.Equal(t, []string{"go", "web"}, course.GetTags())
	})

	t.Run("超长标签返回错误", func(t *testing.T) {
		assert.Error(t, course.SetTags([]string{strings.Repeat("x", 101)}))
	})
}

func TestCourse_RecommendationText(t *testing.T) {
	course := NewCourse("Go Basics", "learn go", CourseLevelBeginner)
	// 标题出现两次，权重高于描述
	assert.Equal(t, "Go Basics Go Basics learn go", course.RecommendationText())
}

func TestCourse_IsRecommendable(t *testing.T) {
	course := NewCourse("Go Basics", "learn go", CourseLevelBeginner)
	assert.False(t, course.IsRecommendable())

	course.Status = CourseStatusPublished
	assert.True(t, course.IsRecommendable())

	course.Status = CourseStatusArchived
	assert.False(t, course.IsRecommendable())
}

func TestIsValidCourseLevel(t *testing.T) {
	assert.True(t, IsValidCourseLevel(CourseLevelBeginner))
	assert.True(t, IsValidCourseLevel(CourseLevelIntermediate))
	assert.True(t, IsValidCourseLevel(CourseLevelAdvanced))
	assert.False(t, IsValidCourseLevel(CourseLevel("expert")))
	assert.False(t, IsValidCourseLevel(CourseLevel("")))
}

func TestCourse_GormRoundTrip(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&Course{}))

	course := NewCourse("Go Basics", "learn go", CourseLevelBeginner)
	require.NoError(t, course.SetTags([]string{"go", "backend"}))
	course.Status = CourseStatusPublished
	require.NoError(t, db.Create(course).Error)

	var loaded Course
	require.NoError(t, db.First(&loaded, "id = ?", course.ID).Error)

	// 标签经过JSON列序列化后完整还原
	assert.Equal(t, []string{"go", "backend"}, loaded.GetTags())
	assert.Equal(t, course.Title, loaded.Title)
	assert.Equal(t, CourseStatusPublished, loaded.Status)
}
