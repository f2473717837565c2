package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursehub/internal/config"
	"coursehub/internal/errors"
	"coursehub/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(config.DatabaseConfig{
		Type:        "sqlite",
		Path:        ":memory:",
		AutoMigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedCourse(t *testing.T, s *Store, id, title string, level models.CourseLevel, status models.CourseStatus, approved bool, tags []string, price float64) {
	t.Helper()
	course := models.NewCourse(title, "description of "+title, level)
	course.ID = id
	course.Status = status
	course.IsApproved = approved
	course.Price = price
	require.NoError(t, course.SetTags(tags))
	require.NoError(t, s.CreateCourse(context.Background(), course))
}

func TestStore_FindPublishedCourses(t *testing.T) {
	ctx := context.Background()

	t.Run("只返回已发布课程", func(t *testing.T) {
		s := openTestStore(t)
		seedCourse(t, s, "c1", "Go Basics", models.CourseLevelBeginner, models.CourseStatusPublished, true, []string{"go"}, 10)
		seedCourse(t, s, "c2", "Draft Course", models.CourseLevelBeginner, models.CourseStatusDraft, true, nil, 10)
		seedCourse(t, s, "c3", "Archived Course", models.CourseLevelBeginner, models.CourseStatusArchived, true, nil, 10)

		courses, err := s.FindPublishedCourses(ctx, models.CourseFilter{})

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "c1", courses[0].ID)
	})

	t.Run("按难度过滤", func(t *testing.T) {
		s := openTestStore(t)
		seedCourse(t, s, "c1", "Go Basics", models.CourseLevelBeginner, models.CourseStatusPublished, true, nil, 10)
		seedCourse(t, s, "c2", "Go Advanced", models.CourseLevelAdvanced, models.CourseStatusPublished, true, nil, 10)

		courses, err := s.FindPublishedCourses(ctx, models.CourseFilter{Level: models.CourseLevelAdvanced})

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "c2", courses[0].ID)
	})

	t.Run("按标签过滤", func(t *testing.T) {
		s := openTestStore(t)
		seedCourse(t, s, "c1", "Go Basics", models.CourseLevelBeginner, models.CourseStatusPublished, true, []string{"go", "backend"}, 10)
		seedCourse(t, s, "c2", "Python Basics", models.CourseLevelBeginner, models.CourseStatusPublished, true, []string{"python"}, 10)

		courses, err := s.FindPublishedCourses(ctx, models.CourseFilter{Tag: "go"})

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "c1", courses[0].ID)
	})

	t.Run("按最高价格过滤", func(t *testing.T) {
		s := openTestStore(t)
		seedCourse(t, s, "c1", "Cheap Course", models.CourseLevelBeginner, models.CourseStatusPublished, true, nil, 10)
		seedCourse(t, s, "c2", "Expensive Course", models.CourseLevelBeginner, models.CourseStatusPublished, true, nil, 200)

		courses, err := s.FindPublishedCourses(ctx, models.CourseFilter{MaxPrice: 50})

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "c1", courses[0].ID)
	})

	t.Run("只看已审核课程", func(t *testing.T) {
		s := openTestStore(t)
		seedCourse(t, s, "c1", "Approved Course", models.CourseLevelBeginner, models.CourseStatusPublished, true, nil, 10)
		seedCourse(t, s, "c2", "Pending Course", models.CourseLevelBeginner, models.CourseStatusPublished, false, nil, 10)

		courses, err := s.FindPublishedCourses(ctx, models.CourseFilter{ApprovedOnly: true})

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, "c1", courses[0].ID)
	})

	t.Run("查询结果标签被还原", func(t *testing.T) {
		s := openTestStore(t)
		seedCourse(t, s, "c1", "Go Basics", models.CourseLevelBeginner, models.CourseStatusPublished, true, []string{"go", "backend"}, 10)

		courses, err := s.FindPublishedCourses(ctx, models.CourseFilter{})

		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, []string{"go", "backend"}, courses[0].GetTags())
	})
}

func TestStore_FindUserByID(t *testing.T) {
	ctx := context.Background()

	t.Run("查询已存在的用户", func(t *testing.T) {
		s := openTestStore(t)
		user := models.NewUser("alice")
		user.ID = "u1"
		user.SetEnrolledCourses([]string{"c1"})
		require.NoError(t, s.CreateUser(ctx, user))

		loaded, err := s.FindUserByID(ctx, "u1")

		require.NoError(t, err)
		assert.Equal(t, "alice", loaded.Name)
		assert.Equal(t, []string{"c1"}, loaded.GetEnrolledCourses())
	})

	t.Run("用户不存在返回业务错误", func(t *testing.T) {
		s := openTestStore(t)

		_, err := s.FindUserByID(ctx, "missing")

		require.Error(t, err)
		var chErr *errors.CoursehubError
		require.ErrorAs(t, err, &chErr)
		assert.Equal(t, errors.ErrorTypeBusiness, chErr.Type)
	})
}

func TestStore_FindUsersWithEnrollments(t *testing.T) {
	ctx := context.Background()

	newUser := func(id string, enrolled ...string) *models.User {
		user := models.NewUser("user-" + id)
		user.ID = id
		user.SetEnrolledCourses(enrolled)
		return user
	}

	t.Run("排除指定用户和无报名用户", func(t *testing.T) {
		s := openTestStore(t)
		require.NoError(t, s.CreateUser(ctx, newUser("u1", "c1")))
		require.NoError(t, s.CreateUser(ctx, newUser("u2", "c1", "c2")))
		require.NoError(t, s.CreateUser(ctx, newUser("u3")))

		users, err := s.FindUsersWithEnrollments(ctx, "u1", 100)

		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, "u2", users[0].ID)
	})

	t.Run("采样上限生效", func(t *testing.T) {
		s := openTestStore(t)
		for _, id := range []string{"u1", "u2", "u3", "u4"} {
			require.NoError(t, s.CreateUser(ctx, newUser(id, "c1")))
		}

		users, err := s.FindUsersWithEnrollments(ctx, "u1", 2)

		require.NoError(t, err)
		assert.Len(t, users, 2)
	})
}

func TestStore_FindProgress(t *testing.T) {
	ctx := context.Background()

	t.Run("查询已存在的进度", func(t *testing.T) {
		s := openTestStore(t)
		require.NoError(t, s.CreateProgress(ctx, models.NewProgress("u1", "c1", 75)))

		progress, err := s.FindProgress(ctx, "u1", "c1")

		require.NoError(t, err)
		require.NotNil(t, progress)
		assert.Equal(t, 75.0, progress.CompletionPercentage)
	})

	t.Run("无记录返回nil而不是错误", func(t *testing.T) {
		s := openTestStore(t)

		progress, err := s.FindProgress(ctx, "u1", "c1")

		require.NoError(t, err)
		assert.Nil(t, progress)
	})
}
