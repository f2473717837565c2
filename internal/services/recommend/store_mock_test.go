package recommend

import (
	"context"
	"sort"

	"coursehub/internal/config"
	"coursehub/internal/errors"
	"coursehub/internal/models"
)

// memStore 测试用内存存储
type memStore struct {
	courses  []*models.Course
	users    map[string]*models.User
	progress map[string]*models.Progress // userID|courseID
	failWith error                       // 非nil时所有查询返回该错误
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[string]*models.User),
		progress: make(map[string]*models.Progress),
	}
}

func (s *memStore) addCourse(course *models.Course) {
	s.courses = append(s.courses, course)
}

func (s *memStore) addUser(user *models.User) {
	s.users[user.ID] = user
}

func (s *memStore) addProgress(userID, courseID string, completion float64) {
	s.progress[userID+"|"+courseID] = models.NewProgress(userID, courseID, completion)
}

func (s *memStore) FindPublishedCourses(ctx context.Context, filter models.CourseFilter) ([]*models.Course, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	result := make([]*models.Course, 0, len(s.courses))
	for _, course := range s.courses {
		if course.Status != models.CourseStatusPublished {
			continue
		}
		if filter.ApprovedOnly && !course.IsApproved {
			continue
		}
		if filter.Level != "" && course.Level != filter.Level {
			continue
		}
		result = append(result, course)
	}
	return result, nil
}

func (s *memStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	user, ok := s.users[id]
	if !ok {
		return nil, errors.ErrResourceNotFound("User", id)
	}
	return user, nil
}

func (s *memStore) FindUsersWithEnrollments(ctx context.Context, excludeID string, cap int) ([]*models.User, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	result := make([]*models.User, 0, len(s.users))
	// 按课程目录顺序无关紧要，但测试需要确定性：按插入无关的ID排序
	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		user := s.users[id]
		if user.ID == excludeID || len(user.GetEnrolledCourses()) == 0 {
			continue
		}
		if len(result) >= cap {
			break
		}
		result = append(result, user)
	}
	return result, nil
}

func (s *memStore) FindProgress(ctx context.Context, userID, courseID string) (*models.Progress, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	progress, ok := s.progress[userID+"|"+courseID]
	if !ok {
		return nil, nil
	}
	return progress, nil
}

// publishedCourse 构造测试课程
func publishedCourse(id, title, description string, tags []string, level models.CourseLevel) *models.Course {
	course := models.NewCourse(title, description, level)
	course.ID = id
	course.SetTags(tags)
	course.Status = models.CourseStatusPublished
	course.IsApproved = true
	return course
}

// testUser 构造测试用户
func testUser(id string, enrolled ...string) *models.User {
	user := models.NewUser("user-" + id)
	user.ID = id
	user.SetEnrolledCourses(enrolled)
	return user
}

// testRecommendationConfig 测试用推荐配置，与默认配置保持一致
func testRecommendationConfig() config.RecommendationConfig {
	return config.RecommendationConfig{
		DefaultTopN:           5,
		ContentWeight:         0.6,
		TagsWeight:            0.3,
		LevelWeight:           0.1,
		NeighborCount:         5,
		UserSampleCap:         100,
		MinPredictedRating:    3.0,
		DefaultImplicitRating: 3.0,
		DefaultPreferredLevel: "beginner",
		RatingWeight:          0.5,
		EnrollmentWeight:      0.5,
		HybridContentWeight:   0.5,
		HybridCollabWeight:    0.5,
	}
}
