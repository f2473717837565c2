package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coursehub/internal/errors"
	"coursehub/internal/logger"
)

// CourseLevel 课程难度枚举
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "beginner"
	CourseLevelIntermediate CourseLevel = "intermediate"
	CourseLevelAdvanced     CourseLevel = "advanced"
)

// IsValidCourseLevel 验证课程难度是否有效
func IsValidCourseLevel(level CourseLevel) bool {
	switch level {
	case CourseLevelBeginner, CourseLevelIntermediate, CourseLevelAdvanced:
		return true
	}
	return false
}

// CourseStatus 课程状态枚举
type CourseStatus string

const (
	CourseStatusDraft     CourseStatus = "draft"
	CourseStatusPublished CourseStatus = "published"
	CourseStatusArchived  CourseStatus = "archived"
)

// Course 课程数据模型
// 推荐请求期间视为不可变快照
type Course struct {
	ID              string       `json:"id" gorm:"primaryKey"`
	Title           string       `json:"title"`
	Description     string       `json:"description"`
	Tags            string       `json:"-" gorm:"column:tags"` // 标签列表JSON字符串
	Level           CourseLevel  `json:"level"`
	Price           float64      `json:"price"`
	AverageRating   float64      `json:"average_rating"` // 0表示暂无评分
	EnrollmentCount int          `json:"enrollment_count"`
	Status          CourseStatus `json:"status"`
	IsApproved      bool         `json:"is_approved"`
	CreatedAt       time.Time    `json:"created_at"`
	UpdatedAt       time.Time    `json:"updated_at"`

	// 内存中的字段，不存储到数据库
	tagsList []string       `gorm:"-"`
	logger   *logger.Logger `json:"-" gorm:"-"`
}

// NewCourse 创建新的课程
func NewCourse(title, description string, level CourseLevel) *Course {
	if err := validateCourseInput(title, level); err != nil {
		logger.Error("Failed to create Course due to validation error", logger.Fields{
			"error": err.Error(),
			"title": title,
		})
		return nil
	}

	now := time.Now()
	course := &Course{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		Level:       level,
		Status:      CourseStatusDraft,
		CreatedAt:   now,
		UpdatedAt:   now,
		tagsList:    make([]string, 0),
		logger:      logger.NewLogger("course-model"),
	}

	course.logger.Debug("Created new Course", logger.Fields{
		"id":    course.ID,
		"title": course.Title,
		"level": string(course.Level),
	})

	return course
}

// validateCourseInput 验证Course输入参数
func validateCourseInput(title string, level CourseLevel) error {
	if strings.TrimSpace(title) == "" {
		return errors.ErrValidationFailed("title", "cannot be empty")
	}

	if !IsValidCourseLevel(level) {
		return errors.ErrValidationFailed("level", fmt.Sprintf("invalid course level: %s", level))
	}

	return nil
}

// Validate 验证Course数据完整性
func (c *Course) Validate() error {
	if c.ID == "" {
		return errors.ErrValidationFailed("id", "cannot be empty")
	}

	if err := validateCourseInput(c.Title, c.Level); err != nil {
		return err
	}

	if c.Price < 0 {
		return errors.ErrValidationFailed("price", "cannot be negative")
	}

	if c.AverageRating < 0 || c.AverageRating > 10 {
		return errors.ErrValidationFailed("average_rating", "must be between 0 and 10")
	}

	if c.EnrollmentCount < 0 {
		return errors.ErrValidationFailed("enrollment_count", "cannot be negative")
	}

	return nil
}

// IsRecommendable 课程是否可以被推荐
func (c *Course) IsRecommendable() bool {
	return c.Status == CourseStatusPublished
}

// SetTags 设置标签列表
func (c *Course) SetTags(tags []string) error {
	cleanTags := make([]string, 0, len(tags))
	for i, tag := range tags {
		cleanTag := strings.TrimSpace(tag)
		if cleanTag == "" {
			continue // 跳过空标签
		}
		if len(cleanTag) > 100 {
			return errors.ErrValidationFailed("tags", fmt.Sprintf("tag at index %d exceeds 100 characters", i))
		}
		cleanTags = append(cleanTags, cleanTag)
	}

	c.tagsList = cleanTags
	c.UpdatedAt = time.Now()

	return nil
}

// GetTags 获取标签列表
func (c *Course) GetTags() []string {
	if c.tagsList == nil {
		c.tagsList = make([]string, 0)
	}
	return c.tagsList
}

// RecommendationText 用于向量化的课程文本
// 标题出现两次以获得比描述更高的权重
func (c *Course) RecommendationText() string {
	return strings.TrimSpace(c.Title + " " + c.Title + " " + c.Description)
}

// BeforeCreate GORM钩子：创建前执行
func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.logger == nil {
		c.logger = logger.NewLogger("course-model")
	}

	if err := c.Validate(); err != nil {
		c.logger.LogCoursehubError(err.(*errors.CoursehubError), "Validation failed before create")
		return err
	}

	return c.serializeTags()
}

// BeforeUpdate GORM钩子：更新前执行
func (c *Course) BeforeUpdate(tx *gorm.DB) error {
	if c.logger == nil {
		c.logger = logger.NewLogger("course-model")
	}

	if err := c.Validate(); err != nil {
		c.logger.LogCoursehubError(err.(*errors.CoursehubError), "Validation failed before update")
		return err
	}

	return c.serializeTags()
}

// AfterFind GORM钩子：查询后执行
func (c *Course) AfterFind(tx *gorm.DB) error {
	if c.logger == nil {
		c.logger = logger.NewLogger("course-model")
	}

	return c.deserializeTags()
}

// serializeTags 序列化标签
func (c *Course) serializeTags() error {
	if len(c.tagsList) > 0 {
		jsonData, err := json.Marshal(c.tagsList)
		if err != nil {
			chErr := errors.NewCoursehubError(errors.ErrorTypeSystem, errors.ErrCodeSystemGeneric, "Failed to marshal tags").
				WithCause(err).
				WithContext(map[string]interface{}{
					"course_id": c.ID,
					"tag_count": len(c.tagsList),
				})
			c.logger.LogCoursehubError(chErr, "Tags marshaling failed")
			return chErr
		}
		c.Tags = string(jsonData)
	}
	return nil
}

// deserializeTags 反序列化标签
func (c *Course) deserializeTags() error {
	if c.Tags != "" {
		var tags []string
		if err := json.Unmarshal([]byte(c.Tags), &tags); err != nil {
			chErr := errors.NewCoursehubError(errors.ErrorTypeSystem, errors.ErrCodeSystemGeneric, "Failed to unmarshal tags").
				WithCause(err).
				WithContext(map[string]interface{}{
					"course_id":   c.ID,
					"tags_length": len(c.Tags),
				})
			c.logger.LogCoursehubError(chErr, "Tags unmarshaling failed")
			return chErr
		}
		c.tagsList = tags
	} else {
		c.tagsList = make([]string, 0)
	}
	return nil
}
